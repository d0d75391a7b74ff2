package domain

import "errors"

var (
	// ErrValidation marks caller errors (bad input, unknown enum values).
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks lookups that matched no row scoped to the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks writes rejected by a uniqueness or state constraint.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable marks transient store failures; callers degrade, never surface the cause.
	ErrUnavailable = errors.New("store unavailable")
)
