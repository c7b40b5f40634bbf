package runstore

import (
	"context"
	"errors"
	"time"

	"joblens/pkg/models"
)

// ErrNotFound is returned when no run exists for the requested ID.
var ErrNotFound = errors.New("run not found")

// RunStatus tracks an async run through its lifecycle.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is a stored research run: its status while in flight, its result
// once finished.
type Run struct {
	ID        string            `json:"id"`
	Status    RunStatus         `json:"status"`
	Result    *models.RunResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store persists runs so the API can answer status queries after the
// triggering request returns.
type Store interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	Close() error
}
