package database

import "errors"

var (
	// ErrDuplicateKey is returned when a write violates a uniqueness constraint,
	// e.g. a second check-in for the same staff member and date.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound is returned when a conditional write matched no row.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable is returned when the store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)
