package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// openAIProvider targets any chat-completions-compatible backend.
type openAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func newOpenAIProvider(opts Options) *openAIProvider {
	model := opts.OpenAIModel
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := strings.TrimRight(opts.OpenAIBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &openAIProvider{
		apiKey:  opts.OpenAIAPIKey,
		model:   model,
		baseURL: baseURL,
		http:    &http.Client{Timeout: opts.Timeout},
	}
}

func (p *openAIProvider) Name() string { return ProviderOpenAI }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *openAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	key, err := resolveKey(req.KeyOverride, p.apiKey)
	if err != nil {
		return "", err
	}

	body := chatRequest{Model: p.model}
	for _, t := range req.History {
		role := "user"
		if t.Role == RoleModel {
			role = "assistant"
		}
		body.Messages = append(body.Messages, chatMessage{Role: role, Content: t.Content})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Instruction})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", NewUpstreamError(0, fmt.Sprintf("encode request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", NewTransportError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	res, err := p.http.Do(httpReq)
	if err != nil {
		return "", NewTransportError(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", NewTransportError(err)
	}

	var resp chatResponse
	decodeErr := json.Unmarshal(raw, &resp)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if decodeErr == nil && resp.Error != nil && resp.Error.Message != "" {
			return "", NewUpstreamError(res.StatusCode, resp.Error.Message)
		}
		return "", NewUpstreamError(res.StatusCode, strings.TrimSpace(string(raw)))
	}
	if decodeErr != nil {
		return "", NewUpstreamError(res.StatusCode, "malformed backend envelope")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", NewUpstreamError(res.StatusCode, "empty response from backend")
	}
	return resp.Choices[0].Message.Content, nil
}
