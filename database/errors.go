package database

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a compare-and-swap update finds the
	// record at a different version than expected.
	ErrVersionConflict = errors.New("record version conflict")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)
