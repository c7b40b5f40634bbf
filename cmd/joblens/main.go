package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"joblens/internal/config"
	"joblens/internal/exporter"
	"joblens/internal/insights"
	"joblens/internal/logging"
	"joblens/internal/pipeline"
	"joblens/pkg/models"
)

func main() {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	} else if env := os.Getenv("CONFIG_PATH"); env != "" {
		configPath = env
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger := logging.GetGlobalLogger()

	runner, err := pipeline.NewRunner(cfg)
	if err != nil {
		logger.Fatal("Failed to build pipeline", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer runner.Cleanup()

	ctx := context.Background()
	result, err := runner.Run(ctx)
	if err != nil {
		logger.Fatal("Run failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	result.Insights = insights.NewManager(cfg).Generate(ctx, result.Statistics)

	paths, err := exporter.ExportRun(cfg, result)
	if err != nil {
		logger.Fatal("Export failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	printSummary(result, paths)
}

func printSummary(result *models.RunResult, paths exporter.Paths) {
	s := result.Summary
	fmt.Printf("Run finished in %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	fmt.Printf("  queries: %d completed, %d degraded, %d skipped\n", s.Completed, s.Degraded, s.Skipped)
	fmt.Printf("  records: %d unique (%d duplicates removed, %d parse errors)\n",
		s.TotalRecords, s.Duplicates, s.ParseErrors)

	stats := result.Statistics
	fmt.Printf("  regions: %d US, %d India, %d other\n", stats.USJobs, stats.IndiaJobs, stats.OtherJobs)
	if len(stats.RoleStats) > 0 {
		fmt.Printf("  top category: %s (%d)\n", stats.RoleStats[0].Category, stats.RoleStats[0].TotalCount)
	}

	for _, insight := range result.Insights {
		fmt.Printf("  - %s\n", insight)
	}

	fmt.Printf("Output written to %s, %s, %s\n", paths.JSONL, paths.CSV, paths.Summary)
}
