package repository

import "errors"

var (
	// ErrNotFound is returned for unknown attempts and submission IDs.
	ErrNotFound = errors.New("record not found")
	// ErrEmptyKey rejects records without an exercise, student or submission ID.
	ErrEmptyKey = errors.New("empty record key")
)
