package models

import "time"

// HealthResponse is the body of health and readiness probes.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ResearchRequest optionally narrows a triggered run to a subset of the
// configured roles and locations.
type ResearchRequest struct {
	Roles     []string `json:"roles,omitempty"`
	Locations []string `json:"locations,omitempty"`
}

// ResearchAccepted is returned when a run has been queued.
type ResearchAccepted struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// ErrorResponse is the uniform error body of the HTTP API.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
