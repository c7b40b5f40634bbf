package exporter

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"joblens/internal/config"
	"joblens/internal/logging"
	"joblens/pkg/models"
)

// Sentinel errors to allow precise mapping in handlers
var (
	ErrNoRecords = errors.New("no_records")
	ErrWrite     = errors.New("write_failed")
)

// Paths resolves the configured output file locations.
type Paths struct {
	JSONL   string
	CSV     string
	Summary string
}

// ResolvePaths joins the configured output directory and file names.
func ResolvePaths(cfg *config.Config) Paths {
	dir := cfg.Output.Directory
	if dir == "" {
		dir = "output"
	}
	return Paths{
		JSONL:   filepath.Join(dir, cfg.Output.JSONLFile),
		CSV:     filepath.Join(dir, cfg.Output.CSVFile),
		Summary: filepath.Join(dir, cfg.Output.SummaryFile),
	}
}

// ExportRun writes the record set, the statistics summary and the run
// report to the configured output directory. Exports are projections of
// the in-memory result; nothing is recomputed here.
func ExportRun(cfg *config.Config, result *models.RunResult) (Paths, error) {
	logger := logging.GetGlobalLogger()
	paths := ResolvePaths(cfg)

	if err := os.MkdirAll(filepath.Dir(paths.JSONL), 0o755); err != nil {
		return paths, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := WriteJSONL(paths.JSONL, result.Records); err != nil {
		return paths, err
	}
	if err := WriteCSV(paths.CSV, result.Records); err != nil {
		return paths, err
	}
	if err := WriteSummary(paths.Summary, result); err != nil {
		return paths, err
	}

	logger.Info("Run exported", map[string]interface{}{
		"records": len(result.Records),
		"jsonl":   paths.JSONL,
		"csv":     paths.CSV,
		"summary": paths.Summary,
	})
	return paths, nil
}

// WriteJSONL writes one JSON object per line. The encoding is lossless:
// ReadJSONL returns an identical record set.
func WriteJSONL(path string, records []models.JobPosting) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	return w.Flush()
}

// ReadJSONL loads a record set written by WriteJSONL.
func ReadJSONL(path string) ([]models.JobPosting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []models.JobPosting
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec models.JobPosting
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// WriteSummary writes the statistics model and run summary as one
// indented JSON document.
func WriteSummary(path string, result *models.RunResult) error {
	doc := struct {
		Statistics *models.StatisticsModel `json:"statistics"`
		Summary    models.RunSummary       `json:"summary"`
		Insights   []string                `json:"insights,omitempty"`
	}{
		Statistics: result.Statistics,
		Summary:    result.Summary,
		Insights:   result.Insights,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
