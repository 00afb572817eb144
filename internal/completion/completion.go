// Package completion sends composed prompts to a text-completion
// backend and returns the raw response text. The concrete provider is
// selected once at startup; per-request key overrides swap only the
// credential, never the provider.
package completion

import (
	"context"
	"strings"
	"time"
)

// Role labels one side of the conversation history.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one prior exchange handed to the backend as history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is one completion round trip.
type Request struct {
	// Instruction is the combined system-prompt + user utterance.
	Instruction string
	// History carries prior turns, oldest first.
	History []Turn
	// KeyOverride, when non-empty, takes precedence over the
	// process-wide credential.
	KeyOverride string
}

// Completer abstracts over interchangeable completion backends.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Provider names for config selection.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Options configures the gateway built by New.
type Options struct {
	// Provider forces a backend; empty means pick by configured key
	// (gemini first, then openai).
	Provider string
	// GeminiAPIKey is the process-wide Gemini credential.
	GeminiAPIKey string
	// GeminiModel defaults to "gemini-2.0-flash".
	GeminiModel string
	// GeminiBaseURL overrides the API host, mainly for tests.
	GeminiBaseURL string
	// OpenAIAPIKey is the process-wide key for an OpenAI-compatible
	// backend.
	OpenAIAPIKey string
	// OpenAIModel names the chat model.
	OpenAIModel string
	// OpenAIBaseURL is the API root, e.g. https://api.openai.com/v1.
	OpenAIBaseURL string
	// Timeout bounds one round trip. The upstream dashboard had no
	// bound here; an unbounded pending turn is a latent bug, so expiry
	// surfaces as a transport error. Zero means 30s.
	Timeout time.Duration
}

const defaultTimeout = 30 * time.Second

// New selects the backend from configuration. The returned Completer
// still reports a config error at call time when no credential resolves
// (a request-level override can arrive later).
func New(opts Options) Completer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		switch {
		case opts.GeminiAPIKey != "":
			provider = ProviderGemini
		case opts.OpenAIAPIKey != "":
			provider = ProviderOpenAI
		default:
			provider = ProviderGemini
		}
	}

	if provider == ProviderOpenAI {
		return newOpenAIProvider(opts)
	}
	return newGeminiProvider(opts)
}

// resolveKey applies the credential precedence: request override first,
// then the process-wide key.
func resolveKey(override, configured string) (string, error) {
	if k := strings.TrimSpace(override); k != "" {
		return k, nil
	}
	if configured != "" {
		return configured, nil
	}
	return "", NewConfigError("no API key configured")
}
