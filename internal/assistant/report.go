package assistant

import (
	"context"
	"encoding/json"

	"github.com/xandalyze/xandalyze/internal/completion"
	"github.com/xandalyze/xandalyze/internal/pnode"
)

// Report is the one-shot network health report. Unlike chat turns it is
// not appended to the conversation.
type Report struct {
	Summary         string   `json:"summary"`
	HealthScore     float64  `json:"healthScore"`
	Recommendations []string `json:"recommendations"`
}

// GenerateReport asks the backend for a digest-grounded health report.
// It shares the admission guard with Ask: a report while a chat turn is
// pending is rejected with ErrBusy.
func (o *Orchestrator) GenerateReport(ctx context.Context, keyOverride string) (Report, error) {
	if !o.acquire() {
		return Report{}, ErrBusy
	}
	defer o.release()

	digest := pnode.BuildDigest(o.snapshot())
	req := completion.Request{
		Instruction: BuildReportPrompt(digest),
		KeyOverride: keyOverride,
	}

	raw, err := o.complete(ctx, req)
	if err != nil {
		return Report{}, err
	}

	region, found := ExtractJSON(raw)
	if !found {
		return Report{}, completion.NewParseError("no JSON object in report reply", nil)
	}
	var report Report
	if err := json.Unmarshal([]byte(region), &report); err != nil {
		return Report{}, completion.NewParseError("malformed report reply", err)
	}
	if report.Summary == "" {
		return Report{}, completion.NewParseError("report reply carries no summary", nil)
	}
	if report.Recommendations == nil {
		report.Recommendations = []string{}
	}
	return report, nil
}
