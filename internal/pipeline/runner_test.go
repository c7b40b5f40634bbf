package pipeline_test

import (
	"context"
	"testing"
	"time"

	"joblens/internal/config"
	"joblens/internal/fetch"
	"joblens/internal/pipeline"
	"joblens/pkg/models"
	"joblens/pkg/utils"
)

// stubBackend serves one canned payload per query and reports exhaustion
// immediately, so every query is a single-page fetch.
type stubBackend struct {
	name    string
	body    []byte
	kind    models.PayloadKind
	failure error
}

func (s *stubBackend) Name() string    { return s.name }
func (s *stubBackend) IsHealthy() bool { return true }
func (s *stubBackend) Cleanup() error  { return nil }

func (s *stubBackend) FetchPage(_ context.Context, q models.Query, page int) (*models.RawPayload, bool, error) {
	if s.failure != nil {
		return nil, false, s.failure
	}
	return &models.RawPayload{
		Kind:      s.kind,
		Body:      s.body,
		Query:     q,
		Backend:   s.name,
		Page:      page,
		FetchedAt: time.Now().UTC(),
	}, true, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Search.Roles = []string{"Backend Engineer"}
	cfg.Search.Locations = []string{"United States"}
	cfg.Fetch.Backend = "searchapi"
	cfg.Fetch.MaxPages = 3
	cfg.Fetch.MaxRetries = 0
	cfg.Fetch.RateLimit = 600000
	cfg.Workers.PoolSize = 2
	cfg.Aggregation.TrendWindowMonths = 12
	cfg.Vocabulary = config.DefaultVocabulary()
	return cfg
}

func newRunner(cfg *config.Config, backend fetch.Backend) *pipeline.Runner {
	controller := fetch.NewController(cfg, backend, nil, fetch.NewRateLimiter(cfg))
	controller.SetSleep(func(context.Context, time.Duration) error { return nil })
	return pipeline.NewRunnerWithController(cfg, controller)
}

const resultsBody = `[
  {"title": "Senior Go Engineer", "company_name": "Acme", "location": "Austin, TX",
   "description": "Backend services in Go and PostgreSQL"},
  {"title": "Senior Go Engineer", "company_name": "Acme", "location": "Austin, TX",
   "description": "Backend services in Go and PostgreSQL"}
]`

// ── Full pipeline ──────────────────────────────────────────────────────────

func TestRunProducesClassifiedDedupedResult(t *testing.T) {
	cfg := testConfig()
	runner := newRunner(cfg, &stubBackend{
		name: "stub",
		kind: models.PayloadJSON,
		body: []byte(resultsBody),
	})

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The two identical records collapse to one.
	if len(result.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(result.Records))
	}
	if result.Summary.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", result.Summary.Duplicates)
	}
	if result.Summary.Completed != 1 || result.Summary.Degraded != 0 || result.Summary.Skipped != 0 {
		t.Errorf("summary counts = %+v", result.Summary)
	}

	rec := result.Records[0]
	if rec.JobID == "" {
		t.Error("classified record must carry a job ID")
	}
	if rec.Region != models.RegionUS {
		t.Errorf("Region = %q", rec.Region)
	}
	if !utils.Contains(rec.Skills, "Go") {
		t.Errorf("Skills = %v, want Go extracted", rec.Skills)
	}

	if result.Statistics == nil || result.Statistics.TotalJobs != 1 {
		t.Errorf("Statistics = %+v", result.Statistics)
	}
	if result.Summary.FinishedAt.Before(result.Summary.StartedAt) {
		t.Error("FinishedAt precedes StartedAt")
	}
}

func TestRunMultipleQueries(t *testing.T) {
	cfg := testConfig()
	cfg.Search.Roles = []string{"Backend Engineer", "Data Scientist"}
	cfg.Search.Locations = []string{"United States", "India"}

	runner := newRunner(cfg, &stubBackend{
		name: "stub",
		kind: models.PayloadJSON,
		body: []byte(resultsBody),
	})

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Summary.Outcomes) != 4 {
		t.Fatalf("len(Outcomes) = %d, want 4", len(result.Summary.Outcomes))
	}
	if result.Summary.Completed != 4 {
		t.Errorf("Completed = %d, want 4", result.Summary.Completed)
	}
	// All queries return the same posting; the run keeps one.
	if len(result.Records) != 1 {
		t.Errorf("len(Records) = %d, want 1", len(result.Records))
	}
}

// ── Failure isolation ──────────────────────────────────────────────────────

func TestRunSkippedQueryDoesNotFailRun(t *testing.T) {
	cfg := testConfig()
	runner := newRunner(cfg, &stubBackend{
		name:    "stub",
		failure: utils.NewAuthError("stub", "bad key", nil),
	})

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Summary.Skipped)
	}
	if len(result.Records) != 0 {
		t.Errorf("len(Records) = %d, want 0", len(result.Records))
	}
	if result.Statistics == nil {
		t.Error("an empty run still produces a statistics model")
	}
}

func TestRunUnparseablePagesDegradeOutcome(t *testing.T) {
	cfg := testConfig()
	runner := newRunner(cfg, &stubBackend{
		name: "stub",
		kind: models.PayloadJSON,
		body: []byte("not json at all"),
	})

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summary.Degraded != 1 {
		t.Errorf("Degraded = %d, want 1", result.Summary.Degraded)
	}
	if result.Summary.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", result.Summary.ParseErrors)
	}
	outcome := result.Summary.Outcomes[0]
	if outcome.Reason != "all pages unparseable" {
		t.Errorf("Reason = %q", outcome.Reason)
	}
}

func TestRunNoQueriesIsError(t *testing.T) {
	cfg := testConfig()
	cfg.Search.Roles = nil

	runner := newRunner(cfg, &stubBackend{name: "stub"})
	if _, err := runner.Run(context.Background()); err == nil {
		t.Error("expected error for an empty query set")
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newRunner(cfg, &stubBackend{
		name: "stub",
		kind: models.PayloadJSON,
		body: []byte(resultsBody),
	})

	result, err := runner.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Summary.Skipped)
	}
	if result.Summary.Outcomes[0].Reason != "run cancelled" {
		t.Errorf("Reason = %q", result.Summary.Outcomes[0].Reason)
	}
}
