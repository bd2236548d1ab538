package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"slecriteria/internal/testcase"
	"slecriteria/pkg/platform/sentinel"
)

// InMemoryStore keeps run records for the lifetime of the process.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]testcase.RunRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[uuid.UUID]testcase.RunRecord)}
}

func (s *InMemoryStore) Save(_ context.Context, run testcase.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (testcase.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if run, ok := s.runs[id]; ok {
		return run, nil
	}
	return testcase.RunRecord{}, sentinel.ErrNotFound
}

// List returns up to limit runs, newest first. Runs started at the same
// instant are ordered by id.
func (s *InMemoryStore) List(_ context.Context, limit int) ([]testcase.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]testcase.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	// Same order as the SQL store: started_at DESC, then id text ascending.
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID.String() < runs[j].ID.String()
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
