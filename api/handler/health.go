package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/futmarket/models"
	"github.com/use-agent/futmarket/registry"
)

// Health returns a handler for GET /api/v1/health.
func Health(reg *registry.Registry, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         "healthy",
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			TrackedPlayers: len(reg.Players()),
			EnabledPlayers: len(reg.Enabled()),
			Version:        "0.1.0",
		})
	}
}
