// Package extractor orchestrates one market-data extraction: URL
// validation, page rendering, field location, result assembly, and
// diagnostic capture on total failure. All failure is represented in the
// returned result; nothing here is fatal to the host process.
package extractor

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/use-agent/futmarket/config"
	"github.com/use-agent/futmarket/drift"
	"github.com/use-agent/futmarket/locator"
	"github.com/use-agent/futmarket/models"
	"github.com/use-agent/futmarket/renderer"
)

// Extractor drives a Renderer and a Locator to produce ExtractionResults.
// It does not close the renderer; session lifetime belongs to the caller.
// It performs no retries: retry policy, if any, belongs to the caller too.
type Extractor struct {
	renderer    renderer.Renderer
	locator     *locator.Locator
	sink        FailureSink
	allowedHost string

	// Layout fingerprint of the last successful extraction, used to
	// quantify drift when a later extraction fails completely.
	mu          sync.Mutex
	lastGood    uint64
	hasLastGood bool
}

// New assembles an Extractor. sink may be nil to disable diagnostic capture.
func New(r renderer.Renderer, l *locator.Locator, sink FailureSink, cfg config.ExtractorConfig) *Extractor {
	host := cfg.AllowedHost
	if host == "" {
		host = "futbin.com"
	}
	return &Extractor{
		renderer:    r,
		locator:     l,
		sink:        sink,
		allowedHost: host,
	}
}

// Extract retrieves the market fields and card metadata for one item URL.
//
// Success is true if and only if at least one market field was located;
// metadata never affects it. On total failure the rendered document is
// handed to the failure sink so layout drift can be inspected offline.
func (e *Extractor) Extract(ctx context.Context, rawURL string) *models.ExtractionResult {
	if err := e.validateURL(rawURL); err != nil {
		return models.FailureResult(rawURL, err)
	}

	rendered, err := e.renderer.Load(ctx, rawURL)
	if err != nil {
		var xerr *models.ExtractError
		if !errors.As(err, &xerr) {
			xerr = models.NewExtractError(models.ErrCodeSessionFailure, "page load failed", err)
		}
		slog.Error("page load failed", "url", rawURL, "error", err)
		return models.FailureResult(rawURL, xerr)
	}

	fields, metadata := e.locator.Locate(rendered)

	result := &models.ExtractionResult{
		Success:  !fields.Empty(),
		URL:      rawURL,
		Fields:   fields,
		Metadata: metadata,
	}

	if result.Success {
		e.recordLayout(rendered)
		slog.Info("extraction succeeded",
			"url", rawURL,
			"cheapest_sale", fields.CheapestSale != nil,
			"average_bin", fields.AverageBIN != nil,
			"ea_avg_price", fields.EAAverage != nil,
		)
		return result
	}

	result.Error = &models.ErrorDetail{
		Code:    models.ErrCodeNoFieldsMatched,
		Message: "no market field matched; page structure may have changed",
	}
	e.reportDrift(rendered)
	e.capture(rawURL, rendered)
	return result
}

// validateURL checks the input belongs to the supported site. Runs before
// any session is touched so a bad URL never opens a browser.
func (e *Extractor) validateURL(rawURL string) *models.ExtractError {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.NewExtractError(
			models.ErrCodeInvalidInput,
			"invalid url: must be an absolute http(s) URL",
			err,
		)
	}

	host := strings.ToLower(u.Hostname())
	if host != e.allowedHost && !strings.HasSuffix(host, "."+e.allowedHost) {
		return models.NewExtractError(
			models.ErrCodeInvalidInput,
			"invalid url: must be a "+e.allowedHost+" URL",
			nil,
		)
	}
	return nil
}

func (e *Extractor) recordLayout(rendered string) {
	fp := drift.FingerprintLayout(rendered)
	e.mu.Lock()
	e.lastGood = fp
	e.hasLastGood = true
	e.mu.Unlock()
}

// reportDrift logs how far the failing document's layout is from the last
// document that extracted successfully.
func (e *Extractor) reportDrift(rendered string) {
	e.mu.Lock()
	lastGood, ok := e.lastGood, e.hasLastGood
	e.mu.Unlock()
	if !ok {
		return
	}

	distance := drift.Distance(lastGood, drift.FingerprintLayout(rendered))
	slog.Warn("extraction failed on all fields",
		"layout_drift_distance", distance,
	)
}

func (e *Extractor) capture(rawURL, rendered string) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Capture(rawURL, rendered); err != nil {
		// Failing to write the artifact must not mask the extraction failure.
		slog.Warn("failed to persist diagnostic artifact", "error", err)
		return
	}
	slog.Info("diagnostic artifact captured", "url", rawURL)
}
