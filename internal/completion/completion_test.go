package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_ProviderSelection(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		opts Options
		want string
	}{
		{"explicit gemini", Options{Provider: "gemini", OpenAIAPIKey: "sk"}, ProviderGemini},
		{"explicit openai", Options{Provider: "OpenAI", GeminiAPIKey: "g"}, ProviderOpenAI},
		{"gemini key wins", Options{GeminiAPIKey: "g", OpenAIAPIKey: "sk"}, ProviderGemini},
		{"openai key only", Options{OpenAIAPIKey: "sk"}, ProviderOpenAI},
		{"no keys defaults to gemini", Options{}, ProviderGemini},
	}
	for _, tc := range cases {
		if got := New(tc.opts).Name(); got != tc.want {
			t.Fatalf("%s: provider = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveKey(t *testing.T) {
	t.Parallel()
	if k, err := resolveKey("  override ", "configured"); err != nil || k != "override" {
		t.Fatalf("override: %q, %v", k, err)
	}
	if k, err := resolveKey("", "configured"); err != nil || k != "configured" {
		t.Fatalf("configured: %q, %v", k, err)
	}
	_, err := resolveKey("  ", "")
	if KindOf(err) != KindConfig {
		t.Fatalf("no key: %v", err)
	}
}

func TestGemini_NoKeyFailsWithoutNetworkCall(t *testing.T) {
	t.Parallel()
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	gw := New(Options{Provider: ProviderGemini, GeminiBaseURL: srv.URL})
	_, err := gw.Complete(context.Background(), Request{Instruction: "hi"})
	if KindOf(err) != KindConfig {
		t.Fatalf("err = %v, want config kind", err)
	}
	if called {
		t.Fatal("backend was contacted without a credential")
	}
}

func TestGemini_Success(t *testing.T) {
	t.Parallel()
	var gotKey, gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"message\":"},{"text":"\"ok\"}"}]}}]}`)
	}))
	defer srv.Close()

	gw := New(Options{
		Provider:      ProviderGemini,
		GeminiAPIKey:  "proc-key",
		GeminiBaseURL: srv.URL,
		Timeout:       2 * time.Second,
	})
	raw, err := gw.Complete(context.Background(), Request{
		Instruction: "current question",
		History: []Turn{
			{Role: RoleUser, Content: "earlier question"},
			{Role: RoleModel, Content: "earlier answer"},
		},
		KeyOverride: "user-key",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	// Multi-part candidates concatenate in order.
	if raw != `{"message":"ok"}` {
		t.Fatalf("raw = %q", raw)
	}
	if gotKey != "user-key" {
		t.Fatalf("sent key %q, want the request override", gotKey)
	}
	if gotPath != "/models/gemini-2.0-flash:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}

	var req struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if len(req.Contents) != 3 {
		t.Fatalf("contents len = %d, want history + instruction", len(req.Contents))
	}
	if req.Contents[1].Role != "model" || req.Contents[1].Parts[0].Text != "earlier answer" {
		t.Fatalf("contents[1] = %+v", req.Contents[1])
	}
	if req.Contents[2].Parts[0].Text != "current question" {
		t.Fatalf("contents[2] = %+v", req.Contents[2])
	}
}

func TestGemini_UpstreamErrorCarriesStatusAndMessage(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"code":401,"message":"API key not valid"}}`)
	}))
	defer srv.Close()

	gw := New(Options{Provider: ProviderGemini, GeminiAPIKey: "bad", GeminiBaseURL: srv.URL})
	_, err := gw.Complete(context.Background(), Request{Instruction: "hi"})

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v", err)
	}
	if cerr.Kind != KindUpstream || cerr.Status != 401 {
		t.Fatalf("error = %+v", cerr)
	}
	if cerr.Message != "API key not valid" {
		t.Fatalf("message = %q", cerr.Message)
	}
}

func TestGemini_EmptyCandidatesIsUpstreamError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	gw := New(Options{Provider: ProviderGemini, GeminiAPIKey: "k", GeminiBaseURL: srv.URL})
	_, err := gw.Complete(context.Background(), Request{Instruction: "hi"})
	if KindOf(err) != KindUpstream {
		t.Fatalf("err = %v, want upstream kind", err)
	}
}

func TestGemini_TimeoutIsTransportError(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	gw := New(Options{
		Provider:      ProviderGemini,
		GeminiAPIKey:  "k",
		GeminiBaseURL: srv.URL,
		Timeout:       50 * time.Millisecond,
	})
	_, err := gw.Complete(context.Background(), Request{Instruction: "hi"})
	if KindOf(err) != KindTransport {
		t.Fatalf("err = %v, want transport kind", err)
	}
}

func TestOpenAI_Success(t *testing.T) {
	t.Parallel()
	var gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`)
	}))
	defer srv.Close()

	gw := New(Options{
		Provider:      ProviderOpenAI,
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: srv.URL,
	})
	raw, err := gw.Complete(context.Background(), Request{
		Instruction: "hi",
		History:     []Turn{{Role: RoleModel, Content: "prior answer"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if raw != "hello there" {
		t.Fatalf("raw = %q", raw)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth = %q", gotAuth)
	}

	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("request body: %v", err)
	}
	// Model role rewrites to OpenAI's "assistant".
	if req.Messages[0].Role != "assistant" {
		t.Fatalf("messages[0] = %+v", req.Messages[0])
	}
}
