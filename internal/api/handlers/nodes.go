package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xandalyze/xandalyze/internal/insight"
	"github.com/xandalyze/xandalyze/internal/pnode"
	"github.com/xandalyze/xandalyze/internal/registry"
)

func HealthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListNodes returns the current snapshot.
func ListNodes(c *gin.Context, reg *registry.Registry) {
	snap := reg.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"nodes":       snap.Nodes,
		"refreshedAt": snap.RefreshedAt,
		"source":      snap.Source,
	})
}

// RefreshNodes forces an immediate poll and returns the new snapshot.
func RefreshNodes(c *gin.Context, reg *registry.Registry) {
	snap := reg.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"nodes":       snap.Nodes,
		"refreshedAt": snap.RefreshedAt,
		"source":      snap.Source,
	})
}

// GetStats returns the headline aggregates.
func GetStats(c *gin.Context, reg *registry.Registry) {
	c.JSON(http.StatusOK, pnode.ComputeStats(reg.Nodes()))
}

// GetInsights returns the derived insight cards.
func GetInsights(c *gin.Context, reg *registry.Registry) {
	cards := insight.Summarize(reg.Nodes())
	if cards == nil {
		cards = []insight.Card{}
	}
	c.JSON(http.StatusOK, gin.H{"insights": cards})
}
