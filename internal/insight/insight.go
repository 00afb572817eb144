// Package insight derives qualitative alert cards from a node snapshot.
package insight

import (
	"fmt"
	"math"

	"github.com/xandalyze/xandalyze/internal/pnode"
)

// Severity classifies a card for display.
type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityGood      Severity = "good"
	SeverityAttention Severity = "attention"
	SeverityInfo      Severity = "info"
)

// Card is one insight shown in the assistant sidebar.
type Card struct {
	Title       string   `json:"title"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// Summarize evaluates the insight rules in fixed order. Pure function of
// the snapshot; an empty node list yields no cards.
func Summarize(nodes []pnode.Node) []Card {
	if len(nodes) == 0 {
		return nil
	}

	stats := pnode.ComputeStats(nodes)
	offline := len(nodes) - stats.ActiveNodes
	cards := make([]Card, 0, 3)

	if offline > 0 {
		cards = append(cards, Card{
			Title:       "Network Alert",
			Severity:    SeverityCritical,
			Description: fmt.Sprintf("%d nodes are currently offline or unreachable.", offline),
		})
	}

	avg := int(math.Round(stats.AvgLatencyMs))
	if stats.AvgLatencyMs < 100 {
		cards = append(cards, Card{
			Title:       "Performance",
			Severity:    SeverityGood,
			Description: fmt.Sprintf("Average latency is optimal at %dms.", avg),
		})
	} else {
		cards = append(cards, Card{
			Title:       "Latency Warning",
			Severity:    SeverityAttention,
			Description: fmt.Sprintf("High average latency detected: %dms.", avg),
		})
	}

	cards = append(cards, Card{
		Title:       "Capacity",
		Severity:    SeverityInfo,
		Description: fmt.Sprintf("Total network storage is %s TB.", formatTB(stats.TotalStorageTB)),
	})

	return cards
}

// formatTB drops the decimal part when the total is whole, so "2100 TB"
// rather than "2100.0 TB".
func formatTB(tb float64) string {
	if tb == math.Trunc(tb) {
		return fmt.Sprintf("%d", int64(tb))
	}
	return fmt.Sprintf("%.1f", tb)
}
