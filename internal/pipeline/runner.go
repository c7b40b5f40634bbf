package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"joblens/internal/aggregate"
	"joblens/internal/classify"
	"joblens/internal/config"
	"joblens/internal/fetch"
	"joblens/internal/logging"
	"joblens/internal/logging/types"
	"joblens/internal/parser"
	"joblens/pkg/models"
)

// Runner executes one full research run: fetch every configured query
// through a bounded worker pool, parse and classify the payloads,
// deduplicate, and aggregate. A failing query never fails the run; the
// only run-fatal errors are the ones raised before any fetch starts.
type Runner struct {
	cfg        *config.Config
	controller *fetch.Controller
	parser     *parser.Parser
	backends   []fetch.Backend
	logger     types.Logger
}

// NewRunner builds the backends named by the config and wires the fetch
// controller. Construction fails when a backend name is unknown, which
// is a configuration error and therefore run-fatal.
func NewRunner(cfg *config.Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	primary, err := fetch.NewBackend(cfg.Fetch.Backend, cfg)
	if err != nil {
		return nil, fmt.Errorf("primary backend: %w", err)
	}

	backends := []fetch.Backend{primary}

	var fallback fetch.Backend
	if cfg.Fetch.FallbackBackend != "" {
		fallback, err = fetch.NewBackend(cfg.Fetch.FallbackBackend, cfg)
		if err != nil {
			return nil, fmt.Errorf("fallback backend: %w", err)
		}
		backends = append(backends, fallback)
	}

	controller := fetch.NewController(cfg, primary, fallback, fetch.NewRateLimiter(cfg))

	return &Runner{
		cfg:        cfg,
		controller: controller,
		parser:     parser.New(),
		backends:   backends,
		logger:     logging.GetGlobalLogger(),
	}, nil
}

// NewRunnerWithController is the test seam: it accepts a prebuilt
// controller instead of constructing real backends.
func NewRunnerWithController(cfg *config.Config, controller *fetch.Controller) *Runner {
	return &Runner{
		cfg:        cfg,
		controller: controller,
		parser:     parser.New(),
		logger:     logging.GetGlobalLogger(),
	}
}

type queryResult struct {
	outcome     models.QueryOutcome
	records     []models.IntermediateRecord
	parseErrors int
}

// Run executes the full pipeline and returns the run result. The
// returned error is non-nil only for pre-fetch configuration problems;
// per-query failures surface in the run summary instead.
func (r *Runner) Run(ctx context.Context) (*models.RunResult, error) {
	queries := r.cfg.Queries()
	if len(queries) == 0 {
		return nil, errors.New("no queries configured")
	}

	if timeout := r.cfg.Workers.RunTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	startedAt := time.Now().UTC()
	r.logger.Info("Starting research run", map[string]interface{}{
		"queries":   len(queries),
		"backend":   r.cfg.Fetch.Backend,
		"pool_size": r.cfg.Workers.PoolSize,
	})

	results := r.fetchAll(ctx, queries)

	summary := models.RunSummary{StartedAt: startedAt}
	classifier := classify.NewClassifier(r.cfg.Vocabulary, startedAt)

	var postings []models.JobPosting
	for _, res := range results {
		summary.Outcomes = append(summary.Outcomes, res.outcome)
		summary.ParseErrors += res.parseErrors
		switch res.outcome.Status {
		case models.QueryCompleted:
			summary.Completed++
		case models.QueryDegraded:
			summary.Degraded++
		case models.QuerySkipped:
			summary.Skipped++
		}
		for _, rec := range res.records {
			postings = append(postings, classifier.Classify(rec))
		}
	}

	unique, dupes := classify.Deduplicate(postings)
	summary.Duplicates = dupes
	summary.TotalRecords = len(unique)

	engine := aggregate.NewEngine(aggregate.Options{
		TrendWindowMonths: r.cfg.Aggregation.TrendWindowMonths,
		TopSkills:         r.cfg.Aggregation.TopSkills,
		TopCompanies:      r.cfg.Aggregation.TopCompanies,
	}, startedAt)
	stats := engine.Aggregate(unique)

	summary.FinishedAt = time.Now().UTC()

	r.logger.Info("Research run finished", map[string]interface{}{
		"records":    len(unique),
		"duplicates": dupes,
		"completed":  summary.Completed,
		"degraded":   summary.Degraded,
		"skipped":    summary.Skipped,
		"duration":   summary.FinishedAt.Sub(startedAt).String(),
	})

	return &models.RunResult{
		Records:    unique,
		Statistics: stats,
		Summary:    summary,
	}, nil
}

// fetchAll runs every query through the worker pool and collects the
// per-query results in query order.
func (r *Runner) fetchAll(ctx context.Context, queries []models.Query) []queryResult {
	poolSize := r.cfg.Workers.PoolSize
	if poolSize <= 0 {
		poolSize = 1
	}
	if poolSize > len(queries) {
		poolSize = len(queries)
	}

	type indexedQuery struct {
		idx   int
		query models.Query
	}

	jobs := make(chan indexedQuery)
	results := make([]queryResult, len(queries))

	var wg sync.WaitGroup
	for w := 0; w < poolSize; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobs {
				results[job.idx] = r.runQuery(ctx, job.query)
			}
		}(w + 1)
	}

	for i, q := range queries {
		jobs <- indexedQuery{idx: i, query: q}
	}
	close(jobs)
	wg.Wait()

	return results
}

// runQuery fetches one query's pages and parses them. Parse failures on
// individual payloads are counted, not fatal; a non-empty page set with
// only unparseable payloads degrades the outcome.
func (r *Runner) runQuery(ctx context.Context, q models.Query) queryResult {
	if ctx.Err() != nil {
		return queryResult{outcome: models.QueryOutcome{
			Query:  q,
			Status: models.QuerySkipped,
			Reason: "run cancelled",
		}}
	}

	payloads, outcome := r.controller.RunQuery(ctx, q)

	var res queryResult
	for _, payload := range payloads {
		records, err := r.parser.Parse(payload)
		if err != nil {
			res.parseErrors++
			r.logger.Warn("Payload parse failed", map[string]interface{}{
				"query":   q.Key(),
				"backend": payload.Backend,
				"page":    payload.Page,
				"error":   err.Error(),
			})
			continue
		}
		res.records = append(res.records, records...)
	}

	if outcome.Status == models.QueryCompleted && len(payloads) > 0 && res.parseErrors == len(payloads) {
		outcome.Status = models.QueryDegraded
		outcome.Reason = "all pages unparseable"
	}

	outcome.Records = len(res.records)
	res.outcome = outcome
	return res
}

// Cleanup releases backend resources after a run.
func (r *Runner) Cleanup() {
	for _, backend := range r.backends {
		if err := backend.Cleanup(); err != nil {
			r.logger.Warn("Backend cleanup failed", map[string]interface{}{
				"backend": backend.Name(),
				"error":   err.Error(),
			})
		}
	}
}
