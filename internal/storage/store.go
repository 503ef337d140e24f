package storage

import (
	"context"

	"github.com/mebegu/audiocorrect/internal/domain"
)

// JobStore is the source of truth for job records. Implementations must
// serialize writes per job id so the forward-only status invariant holds
// under concurrent updates, and must never delete a record.
type JobStore interface {
	// Create persists a new job. The id must be unique for the lifetime
	// of the store.
	Create(ctx context.Context, job *domain.Job) error

	// Get returns the job with the given id, or a NotFound error.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// List returns every job ordered by creation time descending, ties
	// broken by insertion order (later insert first). An empty store
	// yields an empty slice, never an error.
	List(ctx context.Context) ([]*domain.Job, error)

	// UpdateStatus moves a job to next, applying the state machine guard.
	// resultLocation must be set exactly when next is processed. The
	// update is atomic against concurrent status changes; a lost race
	// surfaces as an InvalidTransition error. Returns the updated job.
	UpdateStatus(ctx context.Context, id string, next domain.Status, resultLocation string) (*domain.Job, error)
}
