package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/futmarket/config"
	"github.com/use-agent/futmarket/models"
)

const defaultUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Session is the rod-backed Renderer. It launches one browser process on
// first use and keeps it until Close. A Session supports a single in-flight
// Load; callers needing parallel extraction use one Session per worker.
type Session struct {
	browserCfg config.BrowserConfig
	waitCfg    config.ExtractorConfig

	mu      sync.Mutex
	browser *rod.Browser
	closed  bool
}

// NewSession creates a Session. The browser is not launched until the first
// Load (or an explicit Open).
func NewSession(browserCfg config.BrowserConfig, waitCfg config.ExtractorConfig) *Session {
	return &Session{browserCfg: browserCfg, waitCfg: waitCfg}
}

// Open launches and connects the browser. Idempotent: subsequent calls are
// no-ops while the session is open.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

func (s *Session) openLocked() error {
	if s.browser != nil {
		return nil
	}
	if s.closed {
		return models.NewExtractError(models.ErrCodeSessionFailure, "session already closed", nil)
	}

	if s.browserCfg.Headless {
		slog.Warn("headless rendering is best-effort: the target site's bot defenses may block it")
	}

	l := launcher.New().
		Headless(s.browserCfg.Headless).
		NoSandbox(s.browserCfg.NoSandbox)

	if s.browserCfg.BrowserBin != "" {
		l = l.Bin(s.browserCfg.BrowserBin)
	}
	if s.browserCfg.Proxy != "" {
		l = l.Proxy(s.browserCfg.Proxy)
	}

	// ── Anti-automation flags ───────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("window-size"), windowSize(s.browserCfg))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return models.NewExtractError(
			models.ErrCodeSessionFailure,
			"failed to launch browser",
			err,
		)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return models.NewExtractError(
			models.ErrCodeSessionFailure,
			"failed to connect to browser",
			err,
		)
	}

	slog.Info("browser session opened",
		"headless", s.browserCfg.Headless,
		"controlURL", controlURL,
	)
	s.browser = browser
	return nil
}

// Load navigates to url and returns the rendered markup once dynamic
// content has settled.
//
// Lifecycle:
//
//  1. Lazy open             – launch browser on first use
//  2. Create page           – fresh tab, closed on every exit path
//  3. Stealth injection     – mask navigator.webdriver etc. (before navigation!)
//  4. UA + headers          – Chrome UA override, Google search Referer
//  5. Hijack mount          – block images/fonts/media and ad domains
//  6. Navigate              – bounded by the overall load timeout
//  7. Primary wait          – document body present; exceeding it is fatal
//  8. Secondary wait        – market grid container; exceeding it is logged only
//  9. Settle delay          – fixed pause for asynchronous population
//  10. Snapshot             – page.HTML()
func (s *Session) Load(ctx context.Context, targetURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openLocked(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.waitCfg.LoadTimeout)
	defer cancel()

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", models.NewExtractError(
			models.ErrCodeSessionFailure,
			"failed to create page",
			err,
		)
	}
	// Close the ORIGINAL page reference (without request context) so
	// cleanup succeeds even after the request context has expired.
	defer func() { _ = page.Close() }()

	// Stealth and headers must be installed before navigation: they only
	// take effect for loads that happen after they are set.
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}

	ua := s.browserCfg.UserAgent
	if ua == "" {
		ua = defaultUA
	}
	if uaErr := (proto.NetworkSetUserAgentOverride{UserAgent: ua}).Call(page); uaErr != nil {
		slog.Warn("user agent override failed", "error", uaErr)
	}

	if u, parseErr := url.Parse(targetURL); parseErr == nil {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{
				"Referer": "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname()),
			}),
		}.Call(page)
	}

	router := setupHijack(page, s.browserCfg.BlockedResourceTypes, s.browserCfg.BlockAds)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if navErr := p.Navigate(targetURL); navErr != nil {
		return "", categorizeError(navErr, "navigation to target URL failed")
	}

	// Primary readiness: the document body must appear.
	if _, waitErr := p.Timeout(s.waitCfg.ReadyTimeout).Element("body"); waitErr != nil {
		return "", categorizeError(waitErr, "page body did not appear within the readiness timeout")
	}

	// Secondary readiness: the market grid renders asynchronously. Its
	// absence is tolerated since partial content may still be minable.
	if s.waitCfg.ContentSelector != "" {
		if waitErr := p.Timeout(s.waitCfg.ContentTimeout).WaitElementsMoreThan(s.waitCfg.ContentSelector, 0); waitErr != nil {
			slog.Warn("dynamic content container did not appear, continuing with available content",
				"selector", s.waitCfg.ContentSelector,
				"error", waitErr,
			)
		}
	}

	if s.waitCfg.SettleDelay > 0 {
		select {
		case <-time.After(s.waitCfg.SettleDelay):
		case <-ctx.Done():
			return "", categorizeError(ctx.Err(), "settle delay interrupted")
		}
	}

	html, htmlErr := p.HTML()
	if htmlErr != nil {
		return "", categorizeError(htmlErr, "failed to snapshot rendered page")
	}
	return html, nil
}

// Close kills the browser process. Safe to call multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.browser == nil {
		return nil
	}

	browser := s.browser
	s.browser = nil
	if err := browser.Close(); err != nil {
		slog.Warn("browser close reported error", "error", err)
		return err
	}
	slog.Info("browser session closed")
	return nil
}

func windowSize(cfg config.BrowserConfig) string {
	w, h := cfg.WindowWidth, cfg.WindowHeight
	if w <= 0 || h <= 0 {
		w, h = 1920, 1080
	}
	return fmt.Sprintf("%d,%d", w, h)
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
