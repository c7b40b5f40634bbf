package exporter_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"joblens/internal/config"
	"joblens/internal/exporter"
	"joblens/pkg/models"
)

func sampleRecords() []models.JobPosting {
	posted := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	return []models.JobPosting{
		{
			JobID:           "job-1",
			Title:           "Senior Backend Engineer",
			RoleCategory:    models.RoleBackend,
			CompanyName:     "Acme Corp",
			LocationRaw:     "Austin, TX",
			Region:          models.RegionUS,
			WorkType:        models.WorkRemote,
			ExperienceLevel: models.ExperienceSenior,
			EmploymentType:  models.EmploymentFullTime,
			Skills:          []string{"Go", "PostgreSQL"},
			DatePosted:      &posted,
			HasAIMention:    true,
			AIKeywords:      []string{"llm"},
			SourceURL:       "https://example.com/jobs/1",
			Query:           models.Query{Role: "Backend Engineer", Location: "United States", Backend: "browser"},
		},
		{
			JobID:           "job-2",
			Title:           "Data Analyst",
			RoleCategory:    models.RoleDataScientist,
			CompanyName:     "Globex",
			LocationRaw:     "Pune, India",
			Region:          models.RegionIndia,
			WorkType:        models.WorkNotSpecified,
			ExperienceLevel: models.ExperienceNotSpecified,
			EmploymentType:  models.EmploymentNotSpecified,
			SourceURL:       "https://example.com/jobs/2",
			Query:           models.Query{Role: "Data Analyst", Location: "India", Backend: "searchapi"},
		},
	}
}

func testOutputConfig(dir string) *config.Config {
	cfg := &config.Config{}
	cfg.Output.Directory = dir
	cfg.Output.JSONLFile = "jobs.jsonl"
	cfg.Output.CSVFile = "jobs.csv"
	cfg.Output.SummaryFile = "run_summary.json"
	return cfg
}

// ── JSONL ──────────────────────────────────────────────────────────────────

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.jsonl")
	want := sampleRecords()

	if err := exporter.WriteJSONL(path, want); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	got, err := exporter.ReadJSONL(path)
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestJSONLEmptyRecordSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.jsonl")
	if err := exporter.WriteJSONL(path, nil); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	got, err := exporter.ReadJSONL(path)
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

// ── CSV ────────────────────────────────────────────────────────────────────

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	want := sampleRecords()

	if err := exporter.WriteCSV(path, want); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := exporter.ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestCSVHasHeaderRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	if err := exporter.WriteCSV(path, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) == "" {
		t.Error("header row missing from empty export")
	}
}

// ── Full export ────────────────────────────────────────────────────────────

func TestExportRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testOutputConfig(dir)

	result := &models.RunResult{
		Records: sampleRecords(),
		Statistics: &models.StatisticsModel{
			TotalJobs: 2,
		},
		Summary: models.RunSummary{
			Completed:    2,
			TotalRecords: 2,
		},
		Insights: []string{"Remote roles dominate backend hiring."},
	}

	paths, err := exporter.ExportRun(cfg, result)
	if err != nil {
		t.Fatalf("ExportRun: %v", err)
	}

	for _, path := range []string{paths.JSONL, paths.CSV, paths.Summary} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected output file %s: %v", path, err)
		}
	}

	data, err := os.ReadFile(paths.Summary)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var doc struct {
		Statistics *models.StatisticsModel `json:"statistics"`
		Summary    models.RunSummary       `json:"summary"`
		Insights   []string                `json:"insights"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("summary is not valid JSON: %v", err)
	}
	if doc.Statistics == nil || doc.Statistics.TotalJobs != 2 {
		t.Errorf("summary statistics = %+v", doc.Statistics)
	}
	if len(doc.Insights) != 1 {
		t.Errorf("insights = %v", doc.Insights)
	}
}

func TestResolvePathsDefaultsDirectory(t *testing.T) {
	cfg := testOutputConfig("")
	paths := exporter.ResolvePaths(cfg)
	if paths.JSONL != filepath.Join("output", "jobs.jsonl") {
		t.Errorf("JSONL = %q", paths.JSONL)
	}
}
