// Package memstore provides an in-memory implementation of notify.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/datasalt-svg/stormnotify/internal/notify"
)

// Store holds run results in memory. Run results are ephemeral by design;
// generated notification bodies live only inside them and are never
// persisted elsewhere.
type Store struct {
	mu      sync.RWMutex
	results map[string]*notify.Result // run ID -> result
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		results: make(map[string]*notify.Result),
	}
}

// Get retrieves a run result by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*notify.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

// Put stores a copy of the run result.
func (s *Store) Put(_ context.Context, r *notify.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.results[r.ID] = &cp
	return nil
}
