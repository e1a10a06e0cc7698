// Package api exposes the extraction engine and player registry over HTTP.
package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/futmarket/api/handler"
	"github.com/use-agent/futmarket/api/middleware"
	"github.com/use-agent/futmarket/config"
	"github.com/use-agent/futmarket/registry"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(engine handler.Engine, reg *registry.Registry, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(reg, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// The engine drives a single browser session; serialize extractions.
	var extractMu sync.Mutex
	protected.POST("/extract", handler.Extract(engine, &extractMu))

	// Player registry
	protected.GET("/players", handler.ListPlayers(reg))
	protected.POST("/players", handler.AddPlayer(reg))
	protected.DELETE("/players/:name", handler.RemovePlayer(reg))
	protected.PATCH("/players/:name", handler.SetPlayerEnabled(reg))

	return r
}
