package store

import "errors"

var (
	// ErrNotFound is returned when an update targets a missing episode.
	ErrNotFound = errors.New("episode not found")
	// ErrInvalidStateTransition guards the cleaning/tagging state machine.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrDuplicateGUID is returned when an insert collides with a stored guid.
	ErrDuplicateGUID = errors.New("duplicate guid")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)
