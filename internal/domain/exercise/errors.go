package exercise

import "errors"

var (
	// ErrInvalidAnswer reports a board state with the wrong shape.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrInvalidExercise reports an exercise definition that cannot be graded.
	ErrInvalidExercise = errors.New("invalid exercise")
	// ErrNotFound is returned by the catalog for unknown exercise IDs.
	ErrNotFound = errors.New("exercise not found")
)
