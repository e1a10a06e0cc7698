// Package renderer owns the browser automation session used to turn a
// market page URL into a fully rendered HTML snapshot.
package renderer

import (
	"context"
	"errors"

	"github.com/use-agent/futmarket/models"
)

// Renderer loads a URL and returns the rendered document markup after
// dynamic content has settled. Implementations must be safe to Close more
// than once. A fake Renderer returning canned markup satisfies the same
// contract for tests.
type Renderer interface {
	// Load navigates to url and returns the rendered HTML snapshot.
	// At most one Load may be in flight per Renderer instance.
	Load(ctx context.Context, url string) (string, error)

	// Close releases the underlying browser. Idempotent.
	Close() error
}

// categorizeError wraps raw rod/navigation errors into typed ExtractErrors
// so the orchestrator can map them to the failure taxonomy.
func categorizeError(err error, msg string) *models.ExtractError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewExtractError(models.ErrCodeRenderTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewExtractError(models.ErrCodeRenderTimeout, "load canceled", err)
	default:
		return models.NewExtractError(models.ErrCodeNavigation, msg, err)
	}
}
