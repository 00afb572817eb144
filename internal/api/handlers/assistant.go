package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xandalyze/xandalyze/internal/assistant"
	"github.com/xandalyze/xandalyze/internal/completion"
	"github.com/xandalyze/xandalyze/internal/settings"
)

// UserKeyHeader carries the per-user credential override. It takes
// precedence over the persisted settings key and the process-wide key.
const UserKeyHeader = "X-User-API-Key"

type messageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// resolveOverride applies the credential precedence shared by the
// assistant endpoints: request header first, then persisted settings.
// An empty result defers to the gateway's process-wide key.
func resolveOverride(c *gin.Context, st *settings.Service) string {
	if k := strings.TrimSpace(c.GetHeader(UserKeyHeader)); k != "" {
		return k
	}
	return st.Get().CustomAPIKey
}

// completionStatus maps the error taxonomy onto HTTP statuses.
func completionStatus(err error) int {
	if errors.Is(err, assistant.ErrBusy) {
		return http.StatusConflict
	}
	switch completion.KindOf(err) {
	case completion.KindConfig:
		return http.StatusServiceUnavailable
	case completion.KindTransport:
		return http.StatusGatewayTimeout
	case completion.KindUpstream, completion.KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PostMessage submits one user utterance to the assistant.
func PostMessage(c *gin.Context, orch *assistant.Orchestrator, st *settings.Service) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	turn, err := orch.Ask(c.Request.Context(), req.Prompt, resolveOverride(c, st))
	if err != nil {
		c.JSON(completionStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, turn)
}

// GetHistory returns the ordered conversation.
func GetHistory(c *gin.Context, orch *assistant.Orchestrator) {
	turns := orch.History()
	if turns == nil {
		turns = []assistant.Turn{}
	}
	c.JSON(http.StatusOK, gin.H{"turns": turns, "pending": orch.Pending()})
}

// ClearHistory starts a new conversation. Clearing while a round trip
// is pending is rejected, like a second submit.
func ClearHistory(c *gin.Context, orch *assistant.Orchestrator) {
	if err := orch.Clear(c.Request.Context()); err != nil {
		if errors.Is(err, assistant.ErrBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSuggestions returns the canned follow-up prompts.
func GetSuggestions(c *gin.Context, orch *assistant.Orchestrator) {
	c.JSON(http.StatusOK, gin.H{"suggestions": orch.Suggestions()})
}

// PostReport generates the one-shot network health report.
func PostReport(c *gin.Context, orch *assistant.Orchestrator, st *settings.Service) {
	report, err := orch.GenerateReport(c.Request.Context(), resolveOverride(c, st))
	if err != nil {
		c.JSON(completionStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
