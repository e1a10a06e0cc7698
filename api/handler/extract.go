package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/futmarket/models"
)

// Engine is the extraction backend driven by the API. Satisfied by
// *extractor.Extractor.
type Engine interface {
	Extract(ctx context.Context, url string) *models.ExtractionResult
}

// Extract returns a handler for POST /api/v1/extract.
//
// Extractions are serialized through mu: the engine drives a single browser
// session, and concurrent navigations on it would interleave.
func Extract(engine Engine, mu *sync.Mutex) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractionResult{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		mu.Lock()
		result := engine.Extract(c.Request.Context(), req.URL)
		mu.Unlock()

		c.JSON(statusFor(result), result)
	}
}

// statusFor translates extraction outcomes to HTTP status codes. A page that
// rendered but yielded no fields is still a completed extraction, so it maps
// to 422 rather than a 5xx.
func statusFor(result *models.ExtractionResult) int {
	if result.Success {
		return http.StatusOK
	}
	if result.Error == nil {
		return http.StatusInternalServerError
	}
	switch result.Error.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNoFieldsMatched:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeRenderTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeBotChallenge:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
