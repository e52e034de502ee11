package loadtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/vectordraw/internal/domain/grader"
	"github.com/okian/vectordraw/internal/domain/model"
	"github.com/okian/vectordraw/pkg/logger"
)

// ErrMismatch reports graded results that differ from the local grader.
var ErrMismatch = errors.New("service and local grader disagree")

// verifyResults regrades every accepted board locally and compares the
// verdict and message with what the service stored.
func verifyResults(ctx context.Context, cfg *Config, subs []submission, records map[string]model.SubmissionRecord, stats *Stats) error {
	e := cfg.Exercise
	checks, err := e.BuildChecks()
	if err != nil {
		return fmt.Errorf("build local checks: %w", err)
	}
	g := grader.New(grader.WithSuccessMessage(e.SuccessMessage))

	for _, sub := range subs {
		rec, ok := records[sub.SubmissionID]
		if !ok || rec.Status != model.StatusGraded || rec.Result == nil {
			continue
		}
		answer := sub.Answer
		answer.Checks = checks
		want, err := g.Grade(ctx, answer)
		if err != nil {
			return fmt.Errorf("local grade of %s: %w", sub.SubmissionID, err)
		}
		if want != *rec.Result {
			stats.Mismatched++
			if cfg.Verbose {
				logger.Get().Warn(ctx, "result mismatch",
					logger.String("submissionID", sub.SubmissionID),
					logger.Any("service", *rec.Result),
					logger.Any("local", want))
			}
		}
	}
	if stats.Mismatched > 0 {
		return fmt.Errorf("%w: %d of %d results", ErrMismatch, stats.Mismatched, len(subs))
	}
	logger.Get().Info(ctx, "results verified", logger.Int("count", len(subs)))
	return nil
}
