package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/mebegu/audiocorrect/internal/domain"
	"github.com/mebegu/audiocorrect/internal/objectstore"
	"github.com/mebegu/audiocorrect/internal/storage"
)

// Delivery serves corrected audio for jobs in the processed state.
type Delivery struct {
	store  storage.JobStore
	blobs  objectstore.Store
	logger *slog.Logger
}

func NewDelivery(store storage.JobStore, blobs objectstore.Store, logger *slog.Logger) *Delivery {
	return &Delivery{
		store:  store,
		blobs:  blobs,
		logger: logger,
	}
}

// Fetch resolves the corrected audio for a job. The stream is only
// available once the job is processed; earlier states fail with NotReady
// carrying the current status. The caller must close the stream.
func (s *Delivery) Fetch(ctx context.Context, id string) (io.ReadCloser, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if job.Status != domain.StatusProcessed {
		return nil, domain.NotReady(job.Status)
	}

	rc, err := s.blobs.Get(ctx, job.ResultLocation)
	if err != nil {
		s.logger.Error("Failed to fetch corrected audio",
			slog.String("job_id", id),
			slog.String("result_location", job.ResultLocation),
			slog.Any("error", err),
		)
		return nil, domain.Delivery(err)
	}

	return rc, nil
}
