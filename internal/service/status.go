package service

import (
	"context"
	"log/slog"

	"github.com/mebegu/audiocorrect/internal/domain"
	"github.com/mebegu/audiocorrect/internal/storage"
)

// StatusQuery answers read-only questions about jobs. It never mutates.
type StatusQuery struct {
	store  storage.JobStore
	logger *slog.Logger
}

func NewStatusQuery(store storage.JobStore, logger *slog.Logger) *StatusQuery {
	return &StatusQuery{
		store:  store,
		logger: logger,
	}
}

// Get returns the job with the given id, or a NotFound error.
func (s *StatusQuery) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.store.Get(ctx, id)
}

// List returns every job, most recent first.
func (s *StatusQuery) List(ctx context.Context) ([]*domain.Job, error) {
	jobs, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list jobs", slog.Any("error", err))
		return nil, err
	}
	return jobs, nil
}
