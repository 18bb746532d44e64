// Package http assembles the HTTP surface: router, middleware and server
// lifecycle.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/prometheus"
	"github.com/coscheck/coscheck/internal/interfaces/http/handlers"
	"github.com/coscheck/coscheck/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.
type RouterConfig struct {
	CheckHandler   *handlers.CheckHandler
	EnrichHandler  *handlers.EnrichHandler
	SourcesHandler *handlers.SourcesHandler
	HealthHandler  *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.Metrics
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if cfg.Logger != nil {
		r.Use(middleware.Logging(cfg.Logger))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}

	api := r.Group("/api/v1")
	{
		if cfg.CheckHandler != nil {
			api.POST("/check/cas", cfg.CheckHandler.CheckCAS)
			api.POST("/check/ingredients", cfg.CheckHandler.CheckIngredients)
		}
		if cfg.EnrichHandler != nil {
			api.POST("/enrich", cfg.EnrichHandler.Enrich)
		}
		if cfg.SourcesHandler != nil {
			api.GET("/sources", cfg.SourcesHandler.List)
		}
	}
	return r
}
