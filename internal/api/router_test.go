package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xandalyze/xandalyze/internal/assistant"
	"github.com/xandalyze/xandalyze/internal/completion"
	"github.com/xandalyze/xandalyze/internal/pnode"
	"github.com/xandalyze/xandalyze/internal/registry"
	"github.com/xandalyze/xandalyze/internal/settings"
	"github.com/xandalyze/xandalyze/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type scriptedCompleter struct {
	resp    string
	err     error
	started chan struct{}
	block   chan struct{}
	lastKey string
}

func (s *scriptedCompleter) Complete(_ context.Context, req completion.Request) (string, error) {
	s.lastKey = req.KeyOverride
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		<-s.block
	}
	return s.resp, s.err
}

func (s *scriptedCompleter) Name() string { return "scripted" }

type staticFetcher struct{ nodes []pnode.Node }

func (f *staticFetcher) FetchNodes(context.Context) ([]pnode.Node, error) {
	return f.nodes, nil
}

func testRouter(t *testing.T, gateway completion.Completer) (*gin.Engine, *settings.Service) {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	disk := 50.0
	reg := registry.New(&staticFetcher{nodes: []pnode.Node{
		{IdentityPubkey: "pk1", Status: pnode.StatusActive, LatencyMs: 40, DiskSpaceTB: &disk},
		{IdentityPubkey: "pk2", Status: pnode.StatusOffline},
	}}, 1, log)
	reg.Refresh(ctx)

	kv := store.NewMemoryKV()
	conv := assistant.NewConversation(ctx, kv)
	st := settings.NewService(ctx, kv)
	orch := assistant.NewOrchestrator(conv, gateway, reg.Nodes, log)

	return NewRouter(Deps{Registry: reg, Orchestrator: orch, Settings: st}), st
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func TestHealthz(t *testing.T) {
	r, _ := testRouter(t, &scriptedCompleter{})
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/healthz", "", nil)
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("code=%d body=%v", w.Code, body)
	}
}

func TestListNodes(t *testing.T) {
	r, _ := testRouter(t, &scriptedCompleter{})
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/nodes", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if body["source"] != "rpc" {
		t.Fatalf("source = %v", body["source"])
	}
	nodes, ok := body["nodes"].([]any)
	if !ok || len(nodes) != 2 {
		t.Fatalf("nodes = %v", body["nodes"])
	}
}

func TestGetStats(t *testing.T) {
	r, _ := testRouter(t, &scriptedCompleter{})
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/stats", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if body["total_nodes"].(float64) != 2 || body["offline_nodes"].(float64) != 1 {
		t.Fatalf("stats = %v", body)
	}
}

func TestGetInsights(t *testing.T) {
	r, _ := testRouter(t, &scriptedCompleter{})
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/insights", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if _, ok := body["insights"].([]any); !ok {
		t.Fatalf("insights = %v", body["insights"])
	}
}

func TestPostMessage_Success(t *testing.T) {
	gw := &scriptedCompleter{resp: `{"message":"two nodes tracked","intent":"analyze_network"}`}
	r, _ := testRouter(t, gw)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/assistant/message",
		`{"prompt":"how many nodes?"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%v", w.Code, body)
	}
	reply, ok := body["reply"].(map[string]any)
	if !ok || reply["message"] != "two nodes tracked" {
		t.Fatalf("body = %v", body)
	}

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/assistant/history", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history code = %d", w.Code)
	}
	turns, ok := body["turns"].([]any)
	if !ok || len(turns) != 2 {
		t.Fatalf("turns = %v", body["turns"])
	}
	if body["pending"] != false {
		t.Fatalf("pending = %v", body["pending"])
	}
}

func TestPostMessage_MissingPromptIs400(t *testing.T) {
	r, _ := testRouter(t, &scriptedCompleter{})
	for _, payload := range []string{`{}`, `{"prompt":"   "}`, `not json`} {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/assistant/message", payload, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: code = %d", payload, w.Code)
		}
	}
}

func TestPostMessage_ConfigErrorIs503(t *testing.T) {
	gw := &scriptedCompleter{err: completion.NewConfigError("no API key configured")}
	r, _ := testRouter(t, gw)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/assistant/message", `{"prompt":"hi"}`, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("code=%d body=%v", w.Code, body)
	}
	if body["error"] == "" {
		t.Fatalf("body = %v", body)
	}
}

func TestPostMessage_BusyIs409(t *testing.T) {
	gw := &scriptedCompleter{
		resp:    `{"message":"done"}`,
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	r, _ := testRouter(t, gw)

	done := make(chan int, 1)
	go func() {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/assistant/message", `{"prompt":"first"}`, nil)
		done <- w.Code
	}()
	<-gw.started

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/assistant/message", `{"prompt":"second"}`, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second submit code = %d, want 409", w.Code)
	}

	close(gw.block)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("first submit code = %d", code)
	}
}

func TestPostMessage_HeaderKeyOverridesSettings(t *testing.T) {
	gw := &scriptedCompleter{resp: `{"message":"ok"}`}
	r, st := testRouter(t, gw)
	if _, err := st.Update(context.Background(), settings.Settings{CustomAPIKey: "persisted-key"}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	header := http.Header{}
	header.Set("X-User-API-Key", "header-key")
	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/assistant/message", `{"prompt":"hi"}`, header)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if gw.lastKey != "header-key" {
		t.Fatalf("override = %q, want header value", gw.lastKey)
	}

	// Without the header the persisted settings key applies.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/assistant/message", `{"prompt":"hi again"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if gw.lastKey != "persisted-key" {
		t.Fatalf("override = %q, want persisted settings key", gw.lastKey)
	}
}

func TestClearHistory_WhilePendingIs409(t *testing.T) {
	gw := &scriptedCompleter{
		resp:    `{"message":"done"}`,
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	r, _ := testRouter(t, gw)

	done := make(chan int, 1)
	go func() {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/assistant/message", `{"prompt":"first"}`, nil)
		done <- w.Code
	}()
	<-gw.started

	w, _ := doJSON(t, r, http.MethodDelete, "/api/v1/assistant/history", "", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("clear during flight code = %d, want 409", w.Code)
	}

	close(gw.block)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("first submit code = %d", code)
	}
	_, body := doJSON(t, r, http.MethodGet, "/api/v1/assistant/history", "", nil)
	if turns := body["turns"].([]any); len(turns) != 2 {
		t.Fatalf("turns after rejected clear = %d, want 2", len(turns))
	}
}

func TestClearHistory(t *testing.T) {
	gw := &scriptedCompleter{resp: `{"message":"ok"}`}
	r, _ := testRouter(t, gw)

	if w, _ := doJSON(t, r, http.MethodPost, "/api/v1/assistant/message", `{"prompt":"hi"}`, nil); w.Code != http.StatusOK {
		t.Fatalf("seed turn: %d", w.Code)
	}
	if w, _ := doJSON(t, r, http.MethodDelete, "/api/v1/assistant/history", "", nil); w.Code != http.StatusNoContent {
		t.Fatalf("clear code = %d", w.Code)
	}
	_, body := doJSON(t, r, http.MethodGet, "/api/v1/assistant/history", "", nil)
	if turns := body["turns"].([]any); len(turns) != 0 {
		t.Fatalf("turns after clear = %v", turns)
	}
}

func TestGetSuggestions(t *testing.T) {
	r, _ := testRouter(t, &scriptedCompleter{})
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/assistant/suggestions", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if s := body["suggestions"].([]any); len(s) == 0 {
		t.Fatal("no suggestions")
	}
}

func TestPostReport(t *testing.T) {
	gw := &scriptedCompleter{resp: `{"summary":"stable","healthScore":88,"recommendations":[]}`}
	r, _ := testRouter(t, gw)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/report", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%v", w.Code, body)
	}
	if body["summary"] != "stable" || body["healthScore"].(float64) != 88 {
		t.Fatalf("report = %v", body)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	r, _ := testRouter(t, &scriptedCompleter{})

	w, body := doJSON(t, r, http.MethodPut, "/api/v1/settings",
		`{"custom_api_key":"sk-secret","theme":"dark"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("put code = %d", w.Code)
	}
	if body["has_custom_api_key"] != true || body["theme"] != "dark" {
		t.Fatalf("put body = %v", body)
	}
	// The stored credential is never echoed back.
	if strings.Contains(w.Body.String(), "sk-secret") {
		t.Fatalf("response leaks the key: %s", w.Body.String())
	}

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/settings", "", nil)
	if w.Code != http.StatusOK || body["has_custom_api_key"] != true {
		t.Fatalf("get body = %v", body)
	}

	// An explicit empty key clears the override.
	w, body = doJSON(t, r, http.MethodPut, "/api/v1/settings", `{"custom_api_key":""}`, nil)
	if w.Code != http.StatusOK || body["has_custom_api_key"] != false {
		t.Fatalf("clear body = %v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := testRouter(t, &scriptedCompleter{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/nodes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight code = %d", w.Code)
	}
	allowed := w.Header().Get("Access-Control-Allow-Headers")
	if !strings.Contains(allowed, "X-User-API-Key") {
		t.Fatalf("allow-headers = %q", allowed)
	}
}
