package domain

import (
	"errors"
	"fmt"
)

// Kind is the closed enumeration of failure classes a service operation
// may report. Every error crossing a service boundary carries exactly one.
type Kind string

const (
	// KindValidation marks bad or missing input; no side effects occurred.
	KindValidation Kind = "validation"

	// KindNotFound marks an unknown job id.
	KindNotFound Kind = "not_found"

	// KindNotReady marks a delivery attempt on a job that exists but has
	// not reached the processed state.
	KindNotReady Kind = "not_ready"

	// KindInvalidTransition marks an illegal state mutation attempt.
	KindInvalidTransition Kind = "invalid_transition"

	// KindIngestion marks an object store failure while accepting a clip.
	KindIngestion Kind = "ingestion_failure"

	// KindDelivery marks an object store failure while streaming a result.
	KindDelivery Kind = "delivery_failure"
)

// Error pairs a machine-readable kind with a human-readable message and
// an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from err, or "" if err does not carry one.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Validation reports bad or missing input.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound reports an unknown job id.
func NotFound(id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("job %s not found", id)}
}

// NotReady reports a delivery attempt on a job whose status is not processed.
func NotReady(current Status) error {
	return &Error{Kind: KindNotReady, Message: fmt.Sprintf("audio processing is not yet completed (status %s)", current)}
}

// InvalidTransition reports an illegal state machine move.
func InvalidTransition(from, to Status) error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf("invalid transition %s -> %s", from, to)}
}

// Ingestion wraps an object store failure during upload.
func Ingestion(err error) error {
	return &Error{Kind: KindIngestion, Message: "failed to ingest audio", Err: err}
}

// Delivery wraps an object store failure during download.
func Delivery(err error) error {
	return &Error{Kind: KindDelivery, Message: "failed to deliver corrected audio", Err: err}
}
