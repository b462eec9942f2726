package domain

import "errors"

// Error taxonomy shared by every adapter. Callers wrap these with context
// and convert them to a visible placeholder at the edge; none is fatal.
var (
	// ErrMissingResource means a required file is absent or unreadable.
	ErrMissingResource = errors.New("missing resource")

	// ErrEmptyInput means a resource parsed to zero usable records or samples.
	ErrEmptyInput = errors.New("empty input")

	// ErrNotFound means a lookup key (event id, station code) has no record.
	ErrNotFound = errors.New("not found")

	// ErrUnknownFeature means a feature name or index is outside the closed set.
	ErrUnknownFeature = errors.New("unknown feature")
)
