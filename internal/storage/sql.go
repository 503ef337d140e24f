package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mebegu/audiocorrect/internal/domain"
)

// Schema per driver. The seq column breaks created_at ties when listing;
// it is filled from a scalar subquery so both drivers share the insert.
const (
	schemaPostgres = `
		CREATE TABLE IF NOT EXISTS audio_jobs (
			id              TEXT PRIMARY KEY,
			email           TEXT NOT NULL,
			source_location TEXT NOT NULL,
			result_location TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL,
			seq             BIGINT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL
		)`

	schemaSQLite = `
		CREATE TABLE IF NOT EXISTS audio_jobs (
			id              TEXT PRIMARY KEY,
			email           TEXT NOT NULL,
			source_location TEXT NOT NULL,
			result_location TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL,
			seq             INTEGER NOT NULL,
			created_at      TIMESTAMP NOT NULL,
			updated_at      TIMESTAMP NOT NULL
		)`
)

// SQLStore is a JobStore backed by PostgreSQL or SQLite through sqlx.
type SQLStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLStore creates a SQLStore on an open sqlx connection.
func NewSQLStore(db *sqlx.DB, logger *slog.Logger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the audio_jobs table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	schema := schemaSQLite
	if s.db.DriverName() == "postgres" {
		schema = schemaPostgres
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create audio_jobs table: %w", err)
	}
	return nil
}

func (s *SQLStore) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO audio_jobs (
			id, email, source_location, result_location,
			status, seq, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, (SELECT COALESCE(MAX(seq), 0) + 1 FROM audio_jobs), $6, $7
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.Email,
		job.SourceLocation,
		job.ResultLocation,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.Info("Job record created",
		slog.String("job_id", job.ID),
		slog.String("status", string(job.Status)),
	)

	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	query := `
		SELECT id, email, source_location, result_location,
		       status, seq, created_at, updated_at
		FROM audio_jobs
		WHERE id = $1
	`

	var job domain.Job
	err := s.db.GetContext(ctx, &job, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

func (s *SQLStore) List(ctx context.Context) ([]*domain.Job, error) {
	query := `
		SELECT id, email, source_location, result_location,
		       status, seq, created_at, updated_at
		FROM audio_jobs
		ORDER BY created_at DESC, seq DESC
	`

	jobs := []*domain.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// UpdateStatus applies the transition guard, then commits it with a
// compare-and-swap on the expected current status. A lost race against a
// concurrent writer affects zero rows and is reported as InvalidTransition.
func (s *SQLStore) UpdateStatus(ctx context.Context, id string, next domain.Status, resultLocation string) (*domain.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := job.Status
	if err := job.Advance(next, resultLocation, time.Now().UTC()); err != nil {
		return nil, err
	}

	query := `
		UPDATE audio_jobs
		SET status = $1,
		    result_location = $2,
		    updated_at = $3
		WHERE id = $4 AND status = $5
	`

	res, err := s.db.ExecContext(ctx, query, job.Status, job.ResultLocation, job.UpdatedAt, job.ID, prev)
	if err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		s.logger.Warn("Job status changed concurrently, update rejected",
			slog.String("job_id", id),
			slog.String("expected", string(prev)),
			slog.String("next", string(next)),
		)
		return nil, domain.InvalidTransition(prev, next)
	}

	s.logger.Info("Job status updated",
		slog.String("job_id", id),
		slog.String("from", string(prev)),
		slog.String("to", string(next)),
	)

	return job, nil
}
