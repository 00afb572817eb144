package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xandalyze/xandalyze/internal/api/handlers"
	"github.com/xandalyze/xandalyze/internal/api/middleware"
	"github.com/xandalyze/xandalyze/internal/assistant"
	"github.com/xandalyze/xandalyze/internal/registry"
	"github.com/xandalyze/xandalyze/internal/settings"
)

// Deps are the services the router exposes.
type Deps struct {
	Registry     *registry.Registry
	Orchestrator *assistant.Orchestrator
	Settings     *settings.Service
	Hub          *Hub
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api/v1")
	{
		api.GET("/healthz", handlers.HealthzHandler)
		api.GET("/nodes", func(c *gin.Context) { handlers.ListNodes(c, deps.Registry) })
		api.POST("/nodes/refresh", func(c *gin.Context) { handlers.RefreshNodes(c, deps.Registry) })
		api.GET("/stats", func(c *gin.Context) { handlers.GetStats(c, deps.Registry) })
		api.GET("/insights", func(c *gin.Context) { handlers.GetInsights(c, deps.Registry) })

		api.POST("/assistant/message", func(c *gin.Context) { handlers.PostMessage(c, deps.Orchestrator, deps.Settings) })
		api.GET("/assistant/history", func(c *gin.Context) { handlers.GetHistory(c, deps.Orchestrator) })
		api.DELETE("/assistant/history", func(c *gin.Context) { handlers.ClearHistory(c, deps.Orchestrator) })
		api.GET("/assistant/suggestions", func(c *gin.Context) { handlers.GetSuggestions(c, deps.Orchestrator) })
		api.POST("/report", func(c *gin.Context) { handlers.PostReport(c, deps.Orchestrator, deps.Settings) })

		api.GET("/settings", func(c *gin.Context) { handlers.GetSettings(c, deps.Settings) })
		api.PUT("/settings", func(c *gin.Context) { handlers.PutSettings(c, deps.Settings) })
	}

	if deps.Hub != nil {
		r.GET("/ws", deps.Hub.Serve)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
