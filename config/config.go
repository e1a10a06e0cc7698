package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Extractor ExtractorConfig
	Search    SearchConfig
	Monitor   MonitorConfig
	Output    OutputConfig
	Registry  RegistryConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser session.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless. Headless
	// rendering is best-effort: the target site's bot defenses may block it.
	Headless bool // default: false

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional proxy URL for all browser traffic.
	Proxy string

	// UserAgent overrides the browser user agent string.
	UserAgent string

	// WindowWidth and WindowHeight fix the viewport size.
	WindowWidth  int // default: 1920
	WindowHeight int // default: 1080

	// BlockedResourceTypes lists resource types to block during page load.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockAds blocks requests to known ad/tracking domains.
	BlockAds bool // default: true
}

// ExtractorConfig controls the extraction engine.
type ExtractorConfig struct {
	// AllowedHost is the host the input URL must belong to.
	AllowedHost string // default: "futbin.com"

	// LoadTimeout is the deadline for the entire page load.
	LoadTimeout time.Duration // default: 30s

	// ReadyTimeout bounds the primary readiness wait (document body).
	ReadyTimeout time.Duration // default: 15s

	// ContentTimeout bounds the secondary wait for the market grid
	// container. Exceeding it is tolerated: partial content may still
	// be minable.
	ContentTimeout time.Duration // default: 10s

	// ContentSelector is the page-specific dynamic-content container the
	// secondary wait targets.
	ContentSelector string // default: "div.market-grid-container"

	// SettleDelay is the fixed extra wait after readiness so asynchronous
	// content can finish populating.
	SettleDelay time.Duration // default: 2s

	// MinPrice is the plausibility threshold: a parsed candidate is
	// accepted only if it exceeds this value. Filters accidental matches
	// from unrelated UI chrome. The default is inherited, unverified
	// against real data, hence configurable.
	MinPrice int // default: 100

	// DebugFile is where the rendered page is written when no field
	// matched, for offline inspection of layout drift.
	DebugFile string // default: "debug_page.html"
}

// SearchConfig controls plain-HTTP player lookups.
type SearchConfig struct {
	// Timeout is the per-request deadline for search/listing fetches.
	Timeout time.Duration // default: 15s

	// Proxy is an optional proxy URL for search traffic.
	Proxy string
}

// MonitorConfig controls the continuous monitoring loop.
type MonitorConfig struct {
	// Interval is the pause between monitoring cycles.
	Interval time.Duration // default: 5m

	// RequestDelay is the minimum spacing between per-player extractions
	// within a cycle.
	RequestDelay time.Duration // default: 2s

	// DropThreshold flags a price drop of at least this fraction.
	DropThreshold float64 // default: 0.10

	// ProfitMargin flags a cheapest-vs-reference margin of at least
	// this fraction.
	ProfitMargin float64 // default: 0.08

	// WebhookURL, when set, receives a signed event after each cycle.
	WebhookURL string

	// WebhookSecret signs webhook payloads (HMAC-SHA256).
	WebhookSecret string
}

// OutputConfig controls result persistence.
type OutputConfig struct {
	CSVFile  string // default: "futbin_prices.csv"
	JSONFile string // default: "extraction_results.json"
}

// RegistryConfig locates the tracked-player registry file.
type RegistryConfig struct {
	Path string // default: "player_links.json"
}

// AuthConfig controls API key authentication for the HTTP API.
type AuthConfig struct {
	Enabled bool     // default: false
	APIKeys []string //
}

// RateLimitConfig controls per-identity rate limiting on the HTTP API.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 1
	Burst             int     // default: 3
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"

	// File, when set, sends logs to a size-rotated file instead of stdout.
	File       string
	MaxSizeMB  int // default: 20
	MaxBackups int // default: 5
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("FUTMARKET_HOST", "0.0.0.0"),
			Port: envIntOr("FUTMARKET_PORT", 8080),
			Mode: envOr("FUTMARKET_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("FUTMARKET_HEADLESS", false),
			NoSandbox:    envBoolOr("FUTMARKET_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("FUTMARKET_BROWSER_BIN"),
			Proxy:        os.Getenv("FUTMARKET_PROXY"),
			UserAgent:    envOr("FUTMARKET_USER_AGENT", ""),
			WindowWidth:  envIntOr("FUTMARKET_WINDOW_WIDTH", 1920),
			WindowHeight: envIntOr("FUTMARKET_WINDOW_HEIGHT", 1080),
			BlockedResourceTypes: envSliceOr("FUTMARKET_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			BlockAds: envBoolOr("FUTMARKET_BLOCK_ADS", true),
		},
		Extractor: ExtractorConfig{
			AllowedHost:     envOr("FUTMARKET_ALLOWED_HOST", "futbin.com"),
			LoadTimeout:     envDurationOr("FUTMARKET_LOAD_TIMEOUT", 30*time.Second),
			ReadyTimeout:    envDurationOr("FUTMARKET_READY_TIMEOUT", 15*time.Second),
			ContentTimeout:  envDurationOr("FUTMARKET_CONTENT_TIMEOUT", 10*time.Second),
			ContentSelector: envOr("FUTMARKET_CONTENT_SELECTOR", "div.market-grid-container"),
			SettleDelay:     envDurationOr("FUTMARKET_SETTLE_DELAY", 2*time.Second),
			MinPrice:        envIntOr("FUTMARKET_MIN_PRICE", 100),
			DebugFile:       envOr("FUTMARKET_DEBUG_FILE", "debug_page.html"),
		},
		Search: SearchConfig{
			Timeout: envDurationOr("FUTMARKET_SEARCH_TIMEOUT", 15*time.Second),
			Proxy:   os.Getenv("FUTMARKET_SEARCH_PROXY"),
		},
		Monitor: MonitorConfig{
			Interval:      envDurationOr("FUTMARKET_MONITOR_INTERVAL", 5*time.Minute),
			RequestDelay:  envDurationOr("FUTMARKET_REQUEST_DELAY", 2*time.Second),
			DropThreshold: envFloatOr("FUTMARKET_DROP_THRESHOLD", 0.10),
			ProfitMargin:  envFloatOr("FUTMARKET_PROFIT_MARGIN", 0.08),
			WebhookURL:    os.Getenv("FUTMARKET_WEBHOOK_URL"),
			WebhookSecret: os.Getenv("FUTMARKET_WEBHOOK_SECRET"),
		},
		Output: OutputConfig{
			CSVFile:  envOr("FUTMARKET_CSV_FILE", "futbin_prices.csv"),
			JSONFile: envOr("FUTMARKET_JSON_FILE", "extraction_results.json"),
		},
		Registry: RegistryConfig{
			Path: envOr("FUTMARKET_PLAYERS_FILE", "player_links.json"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("FUTMARKET_AUTH_ENABLED", false),
			APIKeys: envSliceOr("FUTMARKET_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("FUTMARKET_RATE_LIMIT_RPS", 1),
			Burst:             envIntOr("FUTMARKET_RATE_LIMIT_BURST", 3),
		},
		Log: LogConfig{
			Level:      envOr("FUTMARKET_LOG_LEVEL", "info"),
			Format:     envOr("FUTMARKET_LOG_FORMAT", "text"),
			File:       os.Getenv("FUTMARKET_LOG_FILE"),
			MaxSizeMB:  envIntOr("FUTMARKET_LOG_MAX_SIZE_MB", 20),
			MaxBackups: envIntOr("FUTMARKET_LOG_MAX_BACKUPS", 5),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
