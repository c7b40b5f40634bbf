package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"joblens/internal/api/handlers"
	"joblens/internal/config"
	"joblens/internal/runstore"
	"joblens/pkg/models"
)

func TestHealthHandlerReportsRunStore(t *testing.T) {
	cfg := &config.Config{}
	cfg.Fetch.Backend = "browser"

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handlers.HealthHandler(cfg, runstore.NewMemoryStore())(c); err != nil {
		t.Fatalf("HealthHandler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", resp.Status)
	}
	if resp.Checks["run_store"] != "ok" {
		t.Errorf(`Checks["run_store"] = %q, want ok`, resp.Checks["run_store"])
	}
	if resp.Checks["fetch_backend"] != "browser" {
		t.Errorf(`Checks["fetch_backend"] = %q, want browser`, resp.Checks["fetch_backend"])
	}
}

func TestHealthHandlerDegradedWithoutStore(t *testing.T) {
	cfg := &config.Config{}
	cfg.Fetch.Backend = "searchapi"

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handlers.HealthHandler(cfg, nil)(c); err != nil {
		t.Fatalf("HealthHandler: %v", err)
	}

	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", resp.Status)
	}
}

func TestLivenessHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handlers.LivenessHandler(c); err != nil {
		t.Fatalf("LivenessHandler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
