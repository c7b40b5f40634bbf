package models

import "time"

// QueryStatus is the terminal state of a single query. Every query submitted
// to the pipeline ends in exactly one of these.
type QueryStatus string

const (
	// QueryCompleted means at least one page was fetched and parsed.
	QueryCompleted QueryStatus = "Completed"
	// QueryDegraded means the retry budget was exhausted without success.
	QueryDegraded QueryStatus = "Degraded"
	// QuerySkipped means the query was abandoned without retrying
	// (blocked/quota on all backends, or a malformed query).
	QuerySkipped QueryStatus = "Skipped"
)

// QueryOutcome records how one query terminated, for run-level coverage
// reporting.
type QueryOutcome struct {
	Query        Query       `json:"query"`
	Status       QueryStatus `json:"status"`
	Reason       string      `json:"reason,omitempty"`
	Backend      string      `json:"backend,omitempty"`
	PagesFetched int         `json:"pages_fetched"`
	Records      int         `json:"records"`
}

// RunSummary reports the coverage of one pipeline run. It is emitted even
// when zero queries completed.
type RunSummary struct {
	Outcomes     []QueryOutcome `json:"outcomes"`
	Completed    int            `json:"completed"`
	Degraded     int            `json:"degraded"`
	Skipped      int            `json:"skipped"`
	ParseErrors  int            `json:"parse_errors"`
	Duplicates   int            `json:"duplicates"`
	TotalRecords int            `json:"total_records"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
}

// RunResult bundles everything one pipeline run produces.
type RunResult struct {
	Records    []JobPosting     `json:"records"`
	Statistics *StatisticsModel `json:"statistics"`
	Summary    RunSummary       `json:"summary"`
	Insights   []string         `json:"insights,omitempty"`
}
