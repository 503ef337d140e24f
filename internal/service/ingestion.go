// Package service implements the audio correction use cases: ingesting an
// uploaded clip, querying job status, and delivering the corrected result.
// Each operation returns a successful result or exactly one domain error
// kind; no partial successes.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mebegu/audiocorrect/internal/domain"
	"github.com/mebegu/audiocorrect/internal/objectstore"
	"github.com/mebegu/audiocorrect/internal/storage"
)

// QueuePublisher hands a queued job off to the correction worker.
// Satisfied by the shared rabbitmq client.
type QueuePublisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// queuedMessage is the wire format consumed by the worker service.
type queuedMessage struct {
	JobID string `json:"job_id"`
}

// Ingestion accepts new audio submissions.
type Ingestion struct {
	store  storage.JobStore
	blobs  objectstore.Store
	queue  QueuePublisher
	logger *slog.Logger
	nowFn  func() time.Time
}

// NewIngestion creates the ingestion service. queue may be nil, in which
// case jobs are created without a hand-off (a worker can still poll).
func NewIngestion(store storage.JobStore, blobs objectstore.Store, queue QueuePublisher, logger *slog.Logger) *Ingestion {
	return &Ingestion{
		store:  store,
		blobs:  blobs,
		queue:  queue,
		logger: logger,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores the audio bytes, creates a queued job record, and returns
// the new job's id. Validation failures happen before any storage attempt;
// a blob storage failure creates no record.
func (s *Ingestion) Submit(ctx context.Context, email string, audio []byte) (string, error) {
	if email == "" {
		return "", domain.Validation("email is required")
	}
	if len(audio) == 0 {
		return "", domain.Validation("audio file is required")
	}

	id := uuid.NewString()
	key := fmt.Sprintf("audio-%s.wav", id)

	location, err := s.blobs.Put(ctx, key, audio)
	if err != nil {
		s.logger.Error("Failed to store uploaded audio",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return "", domain.Ingestion(err)
	}

	job := domain.NewJob(id, email, location, s.nowFn())
	if err := s.store.Create(ctx, job); err != nil {
		s.logger.Error("Failed to create job record",
			slog.String("job_id", id),
			slog.Any("error", err),
		)
		return "", domain.Ingestion(err)
	}

	s.logger.Info("Audio submission accepted",
		slog.String("job_id", id),
		slog.String("source_location", location),
		slog.Int("bytes", len(audio)),
	)

	s.enqueue(ctx, id)
	return id, nil
}

// enqueue hands the job to the worker queue. The record is the source of
// truth, so a publish failure after the client's retries leaves the job
// queued and only logs.
func (s *Ingestion) enqueue(ctx context.Context, id string) {
	if s.queue == nil {
		return
	}

	body, err := json.Marshal(queuedMessage{JobID: id})
	if err != nil {
		s.logger.Error("Failed to marshal queue message",
			slog.String("job_id", id),
			slog.Any("error", err),
		)
		return
	}

	if err := s.queue.PublishWithRetry(ctx, body, "application/json"); err != nil {
		s.logger.Warn("Failed to publish job to queue, job remains queued",
			slog.String("job_id", id),
			slog.Any("error", err),
		)
	}
}
