package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/futmarket/config"
	"github.com/use-agent/futmarket/models"
	"github.com/use-agent/futmarket/registry"
)

type stubEngine struct {
	result *models.ExtractionResult
}

func (s *stubEngine) Extract(_ context.Context, url string) *models.ExtractionResult {
	res := *s.result
	res.URL = url
	return &res
}

func intp(n int) *int { return &n }

func testSetup(t *testing.T, engine *stubEngine, apiKeys []string) http.Handler {
	t.Helper()
	reg, err := registry.Load(filepath.Join(t.TempDir(), "players.json"))
	if err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		Auth:      config.AuthConfig{Enabled: len(apiKeys) > 0, APIKeys: apiKeys},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}
	return NewRouter(engine, reg, cfg, time.Now())
}

func TestExtractEndpoint(t *testing.T) {
	engine := &stubEngine{result: &models.ExtractionResult{
		Success: true,
		Fields:  models.MarketFields{CheapestSale: intp(54500)},
	}}
	router := testSetup(t, engine, nil)

	body := `{"url":"https://www.futbin.com/26/player/123/x/market"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"cheapest_sale":54500`) {
		t.Errorf("body missing price: %s", rec.Body.String())
	}
}

func TestExtractEndpoint_NoFieldsIs422(t *testing.T) {
	engine := &stubEngine{result: models.FailureResult("",
		models.NewExtractError(models.ErrCodeNoFieldsMatched, "no market field matched", nil))}
	router := testSetup(t, engine, nil)

	body := `{"url":"https://www.futbin.com/26/player/123/x/market"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestExtractEndpoint_MissingURL(t *testing.T) {
	router := testSetup(t, &stubEngine{result: &models.ExtractionResult{}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAuth_RejectsMissingKey(t *testing.T) {
	router := testSetup(t, &stubEngine{result: &models.ExtractionResult{}}, []string{"sekrit"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	// Health stays open even with auth enabled.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}

	// Bearer token is accepted.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status with key = %d, want 200", rec.Code)
	}
}

func TestPlayersCRUD(t *testing.T) {
	router := testSetup(t, &stubEngine{result: &models.ExtractionResult{}}, nil)

	// Add
	body := `{"name":"Dumornay","url":"/26/player/123/melchie-dumornay","notes":"totw"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/players", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Duplicate URL conflicts
	req = httptest.NewRequest(http.MethodPost, "/api/v1/players", strings.NewReader(
		`{"name":"Dupe","url":"/26/player/123/melchie-dumornay"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}

	// Disable
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/players/Dumornay", strings.NewReader(`{"enabled":false}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("disable status = %d", rec.Code)
	}

	// List
	req = httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Dumornay") {
		t.Fatalf("list status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Remove
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/players/Dumornay", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove status = %d", rec.Code)
	}

	// Removing again is 404
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/players/Dumornay", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second remove status = %d, want 404", rec.Code)
	}
}
