package runstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps runs in process memory. It is the default when no
// Redis URL is configured; runs do not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

// Save stores a copy of the run.
func (s *MemoryStore) Save(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *run
	copied.UpdatedAt = time.Now().UTC()
	s.runs[run.ID] = &copied
	return nil
}

// Get returns a copy of the stored run.
func (s *MemoryStore) Get(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *run
	return &copied, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
