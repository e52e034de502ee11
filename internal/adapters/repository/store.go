// Package repository stores student attempts and submission records.
package repository

import (
	"context"

	"github.com/okian/vectordraw/internal/domain/model"
)

// Store provides read/write access to grading state.
type Store interface {
	// SaveAttempt replaces the latest attempt of a student on an exercise.
	SaveAttempt(ctx context.Context, a model.Attempt) error
	// LatestAttempt returns ErrNotFound if the student never submitted.
	LatestAttempt(ctx context.Context, exerciseID, studentID string) (model.Attempt, error)

	// PutSubmission creates or updates a submission record.
	PutSubmission(ctx context.Context, rec model.SubmissionRecord) error
	// Submission returns ErrNotFound for unknown IDs.
	Submission(ctx context.Context, id string) (model.SubmissionRecord, error)

	// Count returns the number of stored attempts.
	Count(ctx context.Context) int
}
