package domain

import "errors"

var (
	// ErrMessageNotFound is returned by the message store when no pending
	// row exists for the given identity. Dispatch treats it as a stale
	// signal, not a failure.
	ErrMessageNotFound = errors.New("pending message not found")

	// ErrHistoryNotFound is returned by history queries with no rows.
	ErrHistoryNotFound = errors.New("no history records found")

	// ErrMalformedContent signals that a persisted content snapshot no
	// longer deserializes into its request shape. This indicates a
	// data-integrity bug and is never retried.
	ErrMalformedContent = errors.New("malformed persisted message content")
)
