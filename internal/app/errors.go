package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrUnknownExercise   = errors.New("unknown exercise")
	ErrBackpressure      = errors.New("submission queue is full")
	ErrInvalidSubmission = errors.New("invalid submission")
)
