package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/futmarket/models"
	"github.com/use-agent/futmarket/registry"
)

// ListPlayers returns a handler for GET /api/v1/players.
func ListPlayers(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"players": reg.Players()})
	}
}

// AddPlayer returns a handler for POST /api/v1/players.
func AddPlayer(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AddPlayerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondPlayerError(c, http.StatusBadRequest, err)
			return
		}

		player, err := reg.Add(req.Name, req.URL, req.Notes)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, registry.ErrDuplicate) {
				status = http.StatusConflict
			}
			respondPlayerError(c, status, err)
			return
		}
		c.JSON(http.StatusCreated, player)
	}
}

// RemovePlayer returns a handler for DELETE /api/v1/players/:name.
func RemovePlayer(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := reg.Remove(c.Param("name")); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, registry.ErrNotFound) {
				status = http.StatusNotFound
			}
			respondPlayerError(c, status, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// SetPlayerEnabled returns a handler for PATCH /api/v1/players/:name,
// which toggles monitoring for one player via {"enabled": bool}.
func SetPlayerEnabled(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Enabled *bool `json:"enabled" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondPlayerError(c, http.StatusBadRequest, err)
			return
		}

		if err := reg.SetEnabled(c.Param("name"), *req.Enabled); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, registry.ErrNotFound) {
				status = http.StatusNotFound
			}
			respondPlayerError(c, status, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func respondPlayerError(c *gin.Context, status int, err error) {
	code := models.ErrCodeInvalidInput
	if status >= 500 {
		code = models.ErrCodeInternal
	}
	c.JSON(status, gin.H{
		"error": models.ErrorDetail{Code: code, Message: err.Error()},
	})
}
