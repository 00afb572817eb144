package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/xandalyze/xandalyze/internal/completion"
	"github.com/xandalyze/xandalyze/internal/pnode"
)

// DefaultSuggestions are the canned follow-up chips offered before the
// backend supplies its own.
var DefaultSuggestions = []string{
	"Analyze network health",
	"Find highest latency nodes",
	"Summarize storage capacity",
	"Identify offline pNodes",
}

// BuildInstruction composes the system instruction for one assistant
// turn: a human-readable digest of the current snapshot plus the strict
// output-format directive. The directive is advisory only; the
// interpreter tolerates non-compliant replies.
func BuildInstruction(digest pnode.Digest, now time.Time) string {
	var b strings.Builder

	b.WriteString("You are an intelligent assistant for Xandalyze, a Xandeum pNode monitoring platform.\n")
	b.WriteString("Answer questions about the network using the statistics below.\n\n")
	fmt.Fprintf(&b, "Current Date: %s\n\n", now.UTC().Format(time.RFC3339))

	b.WriteString("Network statistics:\n")
	fmt.Fprintf(&b, "- Total nodes: %d (%d active, %d offline)\n",
		digest.TotalNodes, digest.ActiveNodes, digest.OfflineNodes)
	fmt.Fprintf(&b, "- Average latency: %.2f ms\n", digest.AvgLatencyMs)
	fmt.Fprintf(&b, "- Total storage: %.0f TB\n", digest.TotalStorageTB)
	if len(digest.TopLatency) > 0 {
		b.WriteString("- Highest latency nodes:\n")
		for _, nl := range digest.TopLatency {
			fmt.Fprintf(&b, "  - %s: %d ms\n", nl.IdentityPubkey, nl.LatencyMs)
		}
	}
	if len(digest.Versions) > 0 {
		fmt.Fprintf(&b, "- Versions in use: %s\n", strings.Join(digest.Versions, ", "))
	}

	b.WriteString("\nReturn ONLY a valid JSON object with this structure:\n")
	b.WriteString(`{
  "message": "your answer as plain text",
  "intent": "analyze_network" | "optimize_nodes" | "explain_metric" | "general_chat",
  "suggestions": ["follow-up question", ...],
  "data_points": {"metric name": "value", ...}
}`)
	b.WriteString("\nDo not wrap the JSON in markdown fences or add any prose around it.\n")

	return b.String()
}

// ComposePrompt produces the combined instruction+utterance string sent
// as the final message of the round trip.
func ComposePrompt(digest pnode.Digest, utterance string, now time.Time) string {
	return fmt.Sprintf("%s\nUser Request: %s", BuildInstruction(digest, now), utterance)
}

// HistoryFromTurns translates stored conversation turns into the
// role/content pairs backends expect, oldest first.
func HistoryFromTurns(turns []Turn) []completion.Turn {
	history := make([]completion.Turn, 0, len(turns))
	for _, t := range turns {
		role := completion.RoleUser
		if t.Role == RoleAssistant {
			role = completion.RoleModel
		}
		history = append(history, completion.Turn{Role: role, Content: t.Content})
	}
	return history
}

// BuildReportPrompt asks for the one-shot network health report: a
// compact stats digest in, {summary, healthScore, recommendations} out.
func BuildReportPrompt(digest pnode.Digest) string {
	var b strings.Builder
	b.WriteString("Analyze these Xandeum pNode network statistics and provide a technical health report.\n")
	fmt.Fprintf(&b, "Data: {\"totalNodes\": %d, \"activeNodes\": %d, \"offlineNodes\": %d, \"averageLatency\": \"%.2f\", \"totalStorage\": \"%.0f TB\"",
		digest.TotalNodes, digest.ActiveNodes, digest.OfflineNodes, digest.AvgLatencyMs, digest.TotalStorageTB)
	if len(digest.Versions) > 0 {
		fmt.Fprintf(&b, ", \"versionsInUse\": [\"%s\"]", strings.Join(digest.Versions, "\", \""))
	}
	b.WriteString("}.\n")
	b.WriteString("Return ONLY a JSON object with fields: summary (string), healthScore (number 0-100), and recommendations (string array).\n")
	return b.String()
}
