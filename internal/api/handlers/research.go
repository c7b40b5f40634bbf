package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"joblens/internal/config"
	"joblens/internal/insights"
	"joblens/internal/logging"
	"joblens/internal/pipeline"
	"joblens/internal/runstore"
	"joblens/pkg/models"
)

// TriggerResearchHandler starts a research run in the background and
// returns its ID immediately. The optional request body narrows the run
// to a subset of the configured roles and locations.
func TriggerResearchHandler(cfg *config.Config, store runstore.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()

		var req models.ResearchRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: "request body must be JSON",
			})
		}

		runCfg := scopedConfig(cfg, req)
		if len(runCfg.Queries()) == 0 {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: "no queries to run",
			})
		}

		runner, err := pipeline.NewRunner(runCfg)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "configuration_error",
				Message: err.Error(),
			})
		}

		run := &runstore.Run{
			ID:        uuid.New().String(),
			Status:    runstore.StatusPending,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.Save(c.Request().Context(), run); err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "store_error",
				Message: err.Error(),
			})
		}

		go executeRun(runCfg, store, runner, run.ID)

		logger.Info("Research run queued", map[string]interface{}{
			"run_id":  run.ID,
			"queries": len(runCfg.Queries()),
		})

		return c.JSON(http.StatusAccepted, models.ResearchAccepted{
			RunID:  run.ID,
			Status: string(runstore.StatusPending),
		})
	}
}

// GetResearchHandler returns the status or result of a run.
func GetResearchHandler(store runstore.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		run, err := store.Get(c.Request().Context(), c.Param("id"))
		if errors.Is(err, runstore.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "no run with that ID",
			})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "store_error",
				Message: err.Error(),
			})
		}
		return c.JSON(http.StatusOK, run)
	}
}

// executeRun drives a run to completion in the background, updating the
// stored record as it goes.
func executeRun(cfg *config.Config, store runstore.Store, runner *pipeline.Runner, runID string) {
	logger := logging.GetGlobalLogger()
	ctx := context.Background()

	update := func(run *runstore.Run) {
		if err := store.Save(ctx, run); err != nil {
			logger.Error("Failed to persist run state", map[string]interface{}{
				"run_id": runID,
				"error":  err.Error(),
			})
		}
	}

	run := &runstore.Run{ID: runID, Status: runstore.StatusRunning, CreatedAt: time.Now().UTC()}
	update(run)

	defer runner.Cleanup()

	result, err := runner.Run(ctx)
	if err != nil {
		run.Status = runstore.StatusFailed
		run.Error = err.Error()
		update(run)
		return
	}

	result.Insights = insights.NewManager(cfg).Generate(ctx, result.Statistics)

	run.Status = runstore.StatusCompleted
	run.Result = result
	update(run)
}

// scopedConfig copies the config with the request's role and location
// overrides applied.
func scopedConfig(cfg *config.Config, req models.ResearchRequest) *config.Config {
	scoped := *cfg
	if len(req.Roles) > 0 {
		scoped.Search.Roles = req.Roles
	}
	if len(req.Locations) > 0 {
		scoped.Search.Locations = req.Locations
	}
	return &scoped
}
