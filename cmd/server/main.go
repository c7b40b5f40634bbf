package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"

	"joblens/internal/api/routes"
	"joblens/internal/config"
	"joblens/internal/exporter"
	"joblens/internal/insights"
	"joblens/internal/logging"
	"joblens/internal/pipeline"
	"joblens/internal/runstore"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger := logging.GetGlobalLogger()
	logger.Info("Starting job market research service", map[string]interface{}{
		"backend": cfg.Fetch.Backend,
	})

	ctx := context.Background()
	store := runstore.NewStore(ctx, cfg)

	e := echo.New()
	e.HideBanner = true
	routes.SetupRoutes(e, cfg, store)

	var scheduler *cron.Cron
	if cfg.Scheduler.Enabled {
		scheduler = startScheduler(cfg)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...", map[string]interface{}{})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if err := store.Close(); err != nil {
			logger.Error("Error closing run store", map[string]interface{}{
				"error": err.Error(),
			})
		}
		logger.Info("Server shutdown complete", map[string]interface{}{})
	}()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Fatal("Server failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// startScheduler runs the full pipeline on the configured cron
// expression and exports each run's output files.
func startScheduler(cfg *config.Config) *cron.Cron {
	logger := logging.GetGlobalLogger()

	c := cron.New()
	_, err := c.AddFunc(cfg.Scheduler.Cron, func() {
		logger.Info("Scheduled research run starting", map[string]interface{}{})

		runner, err := pipeline.NewRunner(cfg)
		if err != nil {
			logger.Error("Scheduled run failed to start", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		defer runner.Cleanup()

		result, err := runner.Run(context.Background())
		if err != nil {
			logger.Error("Scheduled run failed", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}

		result.Insights = insights.NewManager(cfg).Generate(context.Background(), result.Statistics)

		if _, err := exporter.ExportRun(cfg, result); err != nil {
			logger.Error("Scheduled run export failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	})
	if err != nil {
		logger.Error("Invalid cron expression, scheduler disabled", map[string]interface{}{
			"cron":  cfg.Scheduler.Cron,
			"error": err.Error(),
		})
		return nil
	}

	c.Start()
	logger.Info("Scheduler started", map[string]interface{}{"cron": cfg.Scheduler.Cron})
	return c
}
