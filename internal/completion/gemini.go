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
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
)

// geminiProvider calls the generateContent REST endpoint. History turns
// map onto Gemini's contents array ahead of the final instruction.
type geminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func newGeminiProvider(opts Options) *geminiProvider {
	model := opts.GeminiModel
	if model == "" {
		model = defaultGeminiModel
	}
	baseURL := strings.TrimRight(opts.GeminiBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &geminiProvider{
		apiKey:  opts.GeminiAPIKey,
		model:   model,
		baseURL: baseURL,
		http:    &http.Client{Timeout: opts.Timeout},
	}
}

func (p *geminiProvider) Name() string { return ProviderGemini }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *geminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	key, err := resolveKey(req.KeyOverride, p.apiKey)
	if err != nil {
		return "", err
	}

	body := geminiRequest{}
	for _, t := range req.History {
		body.Contents = append(body.Contents, geminiContent{
			Role:  string(t.Role),
			Parts: []geminiPart{{Text: t.Content}},
		})
	}
	body.Contents = append(body.Contents, geminiContent{
		Role:  string(RoleUser),
		Parts: []geminiPart{{Text: req.Instruction}},
	})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", NewUpstreamError(0, fmt.Sprintf("encode request: %v", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", NewTransportError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", key)

	res, err := p.http.Do(httpReq)
	if err != nil {
		return "", NewTransportError(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", NewTransportError(err)
	}

	var resp geminiResponse
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
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", NewUpstreamError(res.StatusCode, "empty response from backend")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
