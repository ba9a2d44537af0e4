// Package inmem provides an in-memory run store for tests and single-process
// deployments.
package inmem

import (
	"context"
	"sync"

	"github.com/agencyboard/agentrun/runstore"
)

// Store keeps run records in a map guarded by a mutex.
type Store struct {
	mu   sync.RWMutex
	recs map[string]runstore.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{recs: make(map[string]runstore.Record)}
}

// Save implements runstore.Store.
func (s *Store) Save(_ context.Context, rec runstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.RunID] = rec
	return nil
}

// Load implements runstore.Store.
func (s *Store) Load(_ context.Context, runID string) (runstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[runID]
	if !ok {
		return runstore.Record{}, runstore.ErrNotFound
	}
	return rec, nil
}

// Close implements runstore.Store.
func (s *Store) Close() error { return nil }
