package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mebegu/audiocorrect/internal/domain"
	"github.com/mebegu/audiocorrect/internal/objectstore"
	"github.com/mebegu/audiocorrect/internal/storage"
)

// retryableError marks failures that happened before the job record reached
// a terminal state, so the delivery can be requeued.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Processor runs a single audio job end to end: claim the record, read the
// source audio, apply the correction, store the result, and record the
// outcome.
type Processor struct {
	store      storage.JobStore
	blobs      objectstore.Store
	logger     *slog.Logger
	jobTimeout time.Duration
}

// NewProcessor creates a processor over the given job store and blob store.
func NewProcessor(store storage.JobStore, blobs objectstore.Store, logger *slog.Logger, jobTimeout time.Duration) *Processor {
	return &Processor{
		store:      store,
		blobs:      blobs,
		logger:     logger,
		jobTimeout: jobTimeout,
	}
}

// Process handles one delivery. A nil return means the message should be
// acknowledged, including the case where the job was already claimed by
// another worker.
func (p *Processor) Process(ctx context.Context, jobID string) error {
	p.logger.Info("Processing job",
		slog.String("job_id", jobID),
	)

	// Claim the job (queued -> processing). Losing the race means another
	// worker owns it and this delivery is a duplicate.
	job, err := p.store.UpdateStatus(ctx, jobID, domain.StatusProcessing, "")
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindNotFound:
			p.logger.Warn("Job record missing, dropping message",
				slog.String("job_id", jobID),
			)
			return nil
		case domain.KindInvalidTransition:
			p.logger.Warn("Job already claimed, dropping message",
				slog.String("job_id", jobID),
			)
			return nil
		default:
			return &retryableError{err: fmt.Errorf("failed to claim job: %w", err)}
		}
	}

	jobCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	resultLocation, err := p.correct(jobCtx, job)
	if err != nil {
		p.logger.Error("Job execution failed",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)

		// Record the terminal state on the parent context so a timed out
		// jobCtx does not also lose the status update.
		if _, updateErr := p.store.UpdateStatus(ctx, jobID, domain.StatusFailed, ""); updateErr != nil {
			p.logger.Error("Failed to mark job as failed",
				slog.String("job_id", jobID),
				slog.String("error", updateErr.Error()),
			)
		}
		return err
	}

	if _, err := p.store.UpdateStatus(ctx, jobID, domain.StatusProcessed, resultLocation); err != nil {
		return fmt.Errorf("failed to mark job as processed: %w", err)
	}

	p.logger.Info("Job completed successfully",
		slog.String("job_id", jobID),
		slog.String("result_location", resultLocation),
	)

	return nil
}

// correct reads the source audio, applies the correction, and stores the
// corrected output. It returns the location of the stored result.
func (p *Processor) correct(ctx context.Context, job *domain.Job) (string, error) {
	rc, err := p.blobs.Get(ctx, job.SourceLocation)
	if err != nil {
		return "", fmt.Errorf("failed to read source audio: %w", err)
	}
	defer rc.Close()

	source, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read source audio: %w", err)
	}

	corrected := applyCorrection(source)

	key := fmt.Sprintf("corrected-%s.wav", job.ID)
	location, err := p.blobs.Put(ctx, key, corrected)
	if err != nil {
		return "", fmt.Errorf("failed to store corrected audio: %w", err)
	}

	return location, nil
}

// applyCorrection produces the corrected rendition of the source audio.
// The current pipeline passes the audio through unchanged.
func applyCorrection(source []byte) []byte {
	corrected := make([]byte, len(source))
	copy(corrected, source)
	return corrected
}
