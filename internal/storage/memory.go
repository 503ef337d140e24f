package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mebegu/audiocorrect/internal/domain"
)

// MemoryStore is a JobStore backed by an in-process map. It is the default
// backend for single-node deployments and tests; the mutex is the
// single-writer discipline.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]*domain.Job
	nextSeq int64
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*domain.Job),
	}
}

func (s *MemoryStore) Create(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}

	s.nextSeq++
	stored := *job
	stored.Seq = s.nextSeq
	s.jobs[job.ID] = &stored
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.NotFound(id)
	}

	copied := *job
	return &copied, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		copied := *job
		jobs = append(jobs, &copied)
	}

	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
		}
		return jobs[i].Seq > jobs[j].Seq
	})

	return jobs, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, next domain.Status, resultLocation string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.NotFound(id)
	}

	if err := job.Advance(next, resultLocation, time.Now().UTC()); err != nil {
		return nil, err
	}

	copied := *job
	return &copied, nil
}
