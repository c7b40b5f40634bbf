package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"joblens/internal/config"
	"joblens/internal/logging"
	"joblens/internal/runstore"
	"joblens/pkg/models"
	"joblens/pkg/utils"
)

var startTime = time.Now()

// HealthHandler reports service health, including whether the run store
// answers queries.
func HealthHandler(cfg *config.Config, store runstore.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		logger.Debug("Health check requested", map[string]interface{}{"request_id": requestID})

		checks := map[string]string{
			"api":           "ok",
			"fetch_backend": cfg.Fetch.Backend,
			"run_store":     runStoreCheck(c, store),
		}

		status := "healthy"
		if checks["run_store"] != "ok" {
			status = "degraded"
		}

		response := models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime),
			Checks:    checks,
		}

		return c.JSON(http.StatusOK, response)
	}
}

// runStoreCheck issues a lookup for an ID that cannot exist;
// ErrNotFound means the store answered.
func runStoreCheck(c echo.Context, store runstore.Store) string {
	if store == nil {
		return "not configured"
	}
	_, err := store.Get(c.Request().Context(), "health-check")
	if err != nil && !errors.Is(err, runstore.ErrNotFound) {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "alive"})
}
