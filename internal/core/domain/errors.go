package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed input, such as an empty title.
	// Rejected before normalisation and never retried.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownOwner indicates the owner could not be resolved.
	// Callers surface it as an authorisation failure.
	ErrUnknownOwner = errors.New("unknown owner")

	// ErrOwnerMismatch indicates a write targeted data owned by someone else.
	// Fingerprint writes fail closed with this error.
	ErrOwnerMismatch = errors.New("owner mismatch")

	// ErrStoreUnavailable indicates the fingerprint store cannot be reached.
	// Suggestion queries degrade to "no suggestion" on this error.
	ErrStoreUnavailable = errors.New("fingerprint store unavailable")

	// ErrIndexDrift indicates stored normalised fields no longer match a
	// fresh recomputation from the raw fields.
	ErrIndexDrift = errors.New("index drift")
)
