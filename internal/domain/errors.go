package domain

import "errors"

var (
	// ErrValidation marks caller-supplied input that can never succeed.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a persistence write that lost an optimistic
	// concurrency check against a newer version of the record.
	ErrConflict = errors.New("conflict")
)
