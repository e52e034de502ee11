package grader

import "errors"

var (
	// ErrUnknownCheck is a configuration error: a check names a kind that is
	// not registered with the grader.
	ErrUnknownCheck = errors.New("unknown check")
	// ErrInvalidBoard reports board coordinates that cannot form a point.
	ErrInvalidBoard = errors.New("invalid board state")
)
