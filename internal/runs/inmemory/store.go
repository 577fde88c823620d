package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/pharmacy-sales/internal/runs"
)

// Store is an in-memory implementation of runs.Store. It is safe for
// concurrent use. Records are lost on restart.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*runs.Run
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		runs: make(map[string]*runs.Run),
	}
}

// Save stores a copy of run, replacing any run with the same ID.
func (s *Store) Save(ctx context.Context, run *runs.Run) error {
	if run.RunID == "" {
		return fmt.Errorf("run ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runCopy := *run
	s.runs[run.RunID] = &runCopy

	return nil
}

// Get returns a copy of the run with the given ID.
func (s *Store) Get(ctx context.Context, runID string) (*runs.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", runs.ErrNotFound, runID)
	}

	runCopy := *run
	return &runCopy, nil
}

// List returns copies of the matching runs, newest first.
func (s *Store) List(ctx context.Context, filter runs.Filter) ([]*runs.Run, error) {
	s.mu.RLock()
	result := make([]*runs.Run, 0, len(s.runs))
	for _, run := range s.runs {
		if filter.FileHash != "" && run.FileHash != filter.FileHash {
			continue
		}
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}

		runCopy := *run
		result = append(result, &runCopy)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].RunID > result[j].RunID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*runs.Run{}, nil
		}
		result = result[filter.Offset:]
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

var _ runs.Store = (*Store)(nil)
