// Package cluster fetches the pNode list from the cluster RPC endpoint.
package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xandalyze/xandalyze/internal/pnode"
)

const rpcMethod = "getClusterNodes"

// Client is a thin JSON-RPC client for the node source. One request per
// refresh; callers own the fallback policy.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
}

// NewClient creates a client for the given RPC endpoint. timeout bounds
// each FetchNodes call; zero means 3s.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		http:     &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result []pnode.Node `json:"result"`
	Error  *rpcError    `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// FetchNodes performs one getClusterNodes call. Any transport failure,
// non-2xx status, or malformed body is returned as an error; the
// registry substitutes mock data in that case.
func (c *Client) FetchNodes(ctx context.Context) ([]pnode.Node, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  rpcMethod,
		Params:  []any{},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return nil, fmt.Errorf("rpc failed: %s: %s", res.Status, msg)
		}
		return nil, fmt.Errorf("rpc failed: %s", res.Status)
	}

	var resp rpcResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode rpc response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("rpc response missing result")
	}
	return resp.Result, nil
}
