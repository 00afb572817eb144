// Package apiclient is a thin HTTP client for the xandalyzed API, used
// by the xanctl CLI.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xandalyze/xandalyze/internal/assistant"
	"github.com/xandalyze/xandalyze/internal/insight"
	"github.com/xandalyze/xandalyze/internal/pnode"
)

// Client talks to a running xandalyzed instance.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a client for the given base URL (e.g. http://host:port).
// apiKey, when non-empty, is sent as the per-user credential override.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			// Assistant round trips can take a while.
			Timeout: 2 * time.Minute,
		},
	}
}

// NodesResponse mirrors GET /api/v1/nodes.
type NodesResponse struct {
	Nodes       []pnode.Node `json:"nodes"`
	RefreshedAt time.Time    `json:"refreshedAt"`
	Source      string       `json:"source"`
}

func (c *Client) Nodes(ctx context.Context) (NodesResponse, error) {
	var resp NodesResponse
	return resp, c.getJSON(ctx, "/api/v1/nodes", &resp)
}

func (c *Client) Refresh(ctx context.Context) (NodesResponse, error) {
	var resp NodesResponse
	return resp, c.postJSON(ctx, "/api/v1/nodes/refresh", nil, &resp)
}

func (c *Client) Stats(ctx context.Context) (pnode.Stats, error) {
	var resp pnode.Stats
	return resp, c.getJSON(ctx, "/api/v1/stats", &resp)
}

type insightsResponse struct {
	Insights []insight.Card `json:"insights"`
}

func (c *Client) Insights(ctx context.Context) ([]insight.Card, error) {
	var resp insightsResponse
	if err := c.getJSON(ctx, "/api/v1/insights", &resp); err != nil {
		return nil, err
	}
	return resp.Insights, nil
}

func (c *Client) Ask(ctx context.Context, prompt string) (assistant.Turn, error) {
	var turn assistant.Turn
	body := map[string]string{"prompt": prompt}
	return turn, c.postJSON(ctx, "/api/v1/assistant/message", body, &turn)
}

type historyResponse struct {
	Turns   []assistant.Turn `json:"turns"`
	Pending bool             `json:"pending"`
}

func (c *Client) History(ctx context.Context) ([]assistant.Turn, error) {
	var resp historyResponse
	if err := c.getJSON(ctx, "/api/v1/assistant/history", &resp); err != nil {
		return nil, err
	}
	return resp.Turns, nil
}

func (c *Client) ClearHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/assistant/history", nil, nil)
}

func (c *Client) Report(ctx context.Context) (assistant.Report, error) {
	var report assistant.Report
	return report, c.postJSON(ctx, "/api/v1/report", nil, &report)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-User-API-Key", c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(res.Body)
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
			return fmt.Errorf("request failed: %s: %s", res.Status, errBody.Error)
		}
		return fmt.Errorf("request failed: %s", res.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
