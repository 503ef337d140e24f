package domain

import (
	"time"
)

// Status is the lifecycle state of an audio correction job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// transitions enumerates the forward-only edges of the job lifecycle.
// queued -> processing -> processed | failed. No edge skips processing
// and no edge leaves a terminal state.
var transitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing},
	StatusProcessing: {StatusProcessed, StatusFailed},
	StatusProcessed:  {},
	StatusFailed:     {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether a job may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Job is one audio correction work item. A record is created when a clip
// is uploaded and is never deleted; only its status, result location and
// updated_at change afterwards.
type Job struct {
	ID             string    `db:"id"`
	Email          string    `db:"email"`
	SourceLocation string    `db:"source_location"`
	ResultLocation string    `db:"result_location"`
	Status         Status    `db:"status"`
	Seq            int64     `db:"seq"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// NewJob returns a job in the initial queued state.
func NewJob(id, email, sourceLocation string, now time.Time) *Job {
	return &Job{
		ID:             id,
		Email:          email,
		SourceLocation: sourceLocation,
		Status:         StatusQueued,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Advance moves the job to next, refreshing UpdatedAt. The result location
// must be given exactly when next is processed, keeping the invariant that
// ResultLocation is non-empty iff Status is processed.
func (j *Job) Advance(next Status, resultLocation string, now time.Time) error {
	if !next.Valid() {
		return InvalidTransition(j.Status, next)
	}
	if !j.Status.CanTransition(next) {
		return InvalidTransition(j.Status, next)
	}
	if next == StatusProcessed && resultLocation == "" {
		return Validation("a processed job requires a result location")
	}
	if next != StatusProcessed && resultLocation != "" {
		return Validation("result location is only set when a job is processed")
	}

	j.Status = next
	j.ResultLocation = resultLocation
	j.UpdatedAt = now
	return nil
}
