package assistant

import (
	"encoding/json"
	"strings"

	"github.com/xandalyze/xandalyze/internal/completion"
)

// Intent labels what the backend decided the user wants.
type Intent string

const (
	IntentAnalyzeNetwork Intent = "analyze_network"
	IntentOptimizeNodes  Intent = "optimize_nodes"
	IntentExplainMetric  Intent = "explain_metric"
	IntentGeneralChat    Intent = "general_chat"
)

// Reply is the normalized structured result of one assistant turn.
// Message is always non-empty on a successful interpretation; the other
// fields default to empty when the backend omitted them.
type Reply struct {
	Message     string            `json:"message"`
	Intent      Intent            `json:"intent,omitempty"`
	Suggestions []string          `json:"suggestions"`
	DataPoints  map[string]string `json:"data_points"`
}

// ExtractJSON returns the first balanced {...} region of text,
// tolerating surrounding prose and markdown code fences. ok is false
// when no balanced region exists. Brace counting ignores braces inside
// JSON string literals.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// rawReply mirrors the shape the prompt directive asks the backend for,
// plus the legacy "summary" key older prompts produced.
type rawReply struct {
	Message     string            `json:"message"`
	Summary     string            `json:"summary"`
	Intent      string            `json:"intent"`
	Suggestions []string          `json:"suggestions"`
	DataPoints  map[string]string `json:"data_points"`
}

// Interpret normalizes raw backend text into a Reply. The backend is
// only advised, never guaranteed, to return the fixed JSON shape, so:
// a balanced {...} region is extracted from any surrounding prose or
// fences; a parsed bare string becomes the message; a legacy "summary"
// field stands in for a missing "message". When nothing interpretable
// is found a parse-kind error is returned rather than a guessed reply.
func Interpret(raw string) (Reply, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Reply{}, completion.NewParseError("empty backend reply", nil)
	}

	region, found := ExtractJSON(trimmed)
	if !found {
		// The whole reply may still be a JSON-encoded bare string.
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil && s != "" {
			return normalize(rawReply{Message: s})
		}
		return Reply{}, completion.NewParseError("no JSON object in backend reply", nil)
	}

	var r rawReply
	if err := json.Unmarshal([]byte(region), &r); err != nil {
		return Reply{}, completion.NewParseError("malformed JSON in backend reply", err)
	}
	return normalize(r)
}

func normalize(r rawReply) (Reply, error) {
	message := r.Message
	if message == "" {
		message = r.Summary
	}
	if message == "" {
		return Reply{}, completion.NewParseError("backend reply carries no message", nil)
	}

	reply := Reply{
		Message:     message,
		Suggestions: r.Suggestions,
		DataPoints:  r.DataPoints,
	}
	if reply.Suggestions == nil {
		reply.Suggestions = []string{}
	}
	if reply.DataPoints == nil {
		reply.DataPoints = map[string]string{}
	}

	// An omitted intent stays empty; only an unrecognized label is
	// coerced to the safe default.
	switch Intent(r.Intent) {
	case IntentAnalyzeNetwork, IntentOptimizeNodes, IntentExplainMetric, IntentGeneralChat, "":
		reply.Intent = Intent(r.Intent)
	default:
		reply.Intent = IntentGeneralChat
	}
	return reply, nil
}
