package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"joblens/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// ── Loading and defaults ───────────────────────────────────────────────────

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Fetch.Backend != "browser" {
		t.Errorf("Fetch.Backend = %q", cfg.Fetch.Backend)
	}
	if cfg.Fetch.MaxPages != 5 {
		t.Errorf("Fetch.MaxPages = %d", cfg.Fetch.MaxPages)
	}
	if len(cfg.Search.Roles) == 0 || len(cfg.Search.Locations) == 0 {
		t.Error("default search roles and locations must be non-empty")
	}
	if len(cfg.Vocabulary.RoleRules) == 0 || len(cfg.Vocabulary.Skills) == 0 {
		t.Error("default vocabulary must be populated")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfigFile(t, `
search:
  roles: ["Platform Engineer"]
  locations: ["United States"]
fetch:
  backend: searchapi
  max_pages: 2
  min_delay: 1s
  max_delay: 3s
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Fetch.Backend != "searchapi" {
		t.Errorf("Fetch.Backend = %q", cfg.Fetch.Backend)
	}
	if cfg.Fetch.MaxPages != 2 {
		t.Errorf("Fetch.MaxPages = %d", cfg.Fetch.MaxPages)
	}
	if cfg.Fetch.MinDelay != time.Second {
		t.Errorf("Fetch.MinDelay = %v", cfg.Fetch.MinDelay)
	}
	if len(cfg.Search.Roles) != 1 || cfg.Search.Roles[0] != "Platform Engineer" {
		t.Errorf("Search.Roles = %v", cfg.Search.Roles)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadConfigExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_JOBLENS_KEY", "secret-from-env")
	path := writeConfigFile(t, `
search_api:
  api_key: ${TEST_JOBLENS_KEY}
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SearchAPI.APIKey != "secret-from-env" {
		t.Errorf("SearchAPI.APIKey = %q", cfg.SearchAPI.APIKey)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("FETCH_BACKEND", "firecrawl")
	t.Setenv("FETCH_MAX_PAGES", "7")
	t.Setenv("INSIGHTS_API_KEY", "sk-test")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Fetch.Backend != "firecrawl" {
		t.Errorf("Fetch.Backend = %q", cfg.Fetch.Backend)
	}
	if cfg.Fetch.MaxPages != 7 {
		t.Errorf("Fetch.MaxPages = %d", cfg.Fetch.MaxPages)
	}
	if !cfg.Insights.Enabled {
		t.Error("Insights.Enabled = false, want true when key is set")
	}
}

// ── Query cross-product ────────────────────────────────────────────────────

func TestQueriesCrossProduct(t *testing.T) {
	cfg := &config.Config{}
	cfg.Search.Roles = []string{"Backend Engineer", "Data Scientist"}
	cfg.Search.Locations = []string{"United States", "India"}
	cfg.Fetch.Backend = "browser"

	queries := cfg.Queries()
	if len(queries) != 4 {
		t.Fatalf("len(queries) = %d, want 4", len(queries))
	}
	if queries[0].Role != "Backend Engineer" || queries[0].Location != "United States" {
		t.Errorf("queries[0] = %+v", queries[0])
	}
	if queries[3].Role != "Data Scientist" || queries[3].Location != "India" {
		t.Errorf("queries[3] = %+v", queries[3])
	}
	for _, q := range queries {
		if q.Backend != "browser" {
			t.Errorf("query %+v missing backend", q)
		}
	}
}

func TestQueriesEmptyWhenNoRoles(t *testing.T) {
	cfg := &config.Config{}
	cfg.Search.Locations = []string{"United States"}
	if got := cfg.Queries(); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

// ── Validation ─────────────────────────────────────────────────────────────

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := validConfig(t)
	cfg.Fetch.Backend = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestValidateRejectsInvertedDelays(t *testing.T) {
	cfg := validConfig(t)
	cfg.Fetch.MinDelay = 10 * time.Second
	cfg.Fetch.MaxDelay = 1 * time.Second
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when min_delay exceeds max_delay")
	}
	if !strings.Contains(err.Error(), "min_delay") {
		t.Errorf("err = %v", err)
	}
}

func TestValidateRejectsSameFallback(t *testing.T) {
	cfg := validConfig(t)
	cfg.Fetch.FallbackBackend = cfg.Fetch.Backend
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when fallback equals primary")
	}
}

func TestValidateRejectsEmptyRoles(t *testing.T) {
	cfg := validConfig(t)
	cfg.Search.Roles = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty roles")
	}
}
