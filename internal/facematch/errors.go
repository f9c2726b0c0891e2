package facematch

import "errors"

var (
	// ErrInvalidInput is returned for an empty probe, a non-finite value, or a length mismatch.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoEnrollments is returned when there is nobody to match against.
	ErrNoEnrollments = errors.New("no enrollments")

	// ErrNoMatch means the nearest enrollment is farther than the threshold.
	ErrNoMatch = errors.New("no matching face")

	// ErrAmbiguousMatch means two enrollments are equally close to the probe.
	ErrAmbiguousMatch = errors.New("ambiguous face match")
)
