// Package jobstore holds domain.JobStore implementations: an in-process map,
// Redis, and SQLite.
package jobstore

import (
	"context"
	"sync"

	"github.com/abdidvp/pourfix/internal/domain"
)

// MemoryStore keeps jobs in a map. Values are copied in and out so callers
// never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

func NewMemory() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*domain.Job)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job.Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}
