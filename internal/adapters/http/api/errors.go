package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/vectordraw/internal/adapters/repository"
	service "github.com/okian/vectordraw/internal/app"
	"github.com/okian/vectordraw/internal/domain/check"
	"github.com/okian/vectordraw/internal/domain/exercise"
	"github.com/okian/vectordraw/internal/domain/grader"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrBodyTooBig = errors.New("request body too large")
)

// Error codes carried in error bodies.
const (
	codeBadRequest    = "bad_request"
	codeNotFound      = "not_found"
	codeConfiguration = "configuration_error"
	codeBackpressure  = "backpressure"
	codeUnavailable   = "unavailable"
	codeInternal      = "internal_error"
)

// classify returns the status and error code for err.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, exercise.ErrInvalidAnswer),
		errors.Is(err, grader.ErrInvalidBoard),
		errors.Is(err, check.ErrMissingTarget),
		errors.Is(err, check.ErrMalformedExpected),
		errors.Is(err, service.ErrInvalidSubmission):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, ErrBodyTooBig):
		return http.StatusRequestEntityTooLarge, codeBadRequest
	case errors.Is(err, service.ErrUnknownExercise),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, exercise.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, grader.ErrUnknownCheck):
		return http.StatusUnprocessableEntity, codeConfiguration
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, codeBackpressure
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
