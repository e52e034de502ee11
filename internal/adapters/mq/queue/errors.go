package queue

import "errors"

var (
	// ErrClosed is returned once shutdown has begun.
	ErrClosed = errors.New("submission queue closed")
	// ErrFull is returned when every slot holds a pending submission.
	ErrFull = errors.New("submission queue full")
)
