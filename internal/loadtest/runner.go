package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/vectordraw/internal/domain/exercise"
	"github.com/okian/vectordraw/internal/domain/model"
	"github.com/okian/vectordraw/pkg/logger"
)

const outputFilePermission = 0o600

// Run executes the complete load test and returns the collected stats.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadtest")
	log.Info(ctx, "starting load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("exercise", cfg.ExerciseID),
		logger.Int("submissions", cfg.Submissions),
		logger.Int("workers", cfg.Workers),
		logger.Bool("verify", cfg.Exercise != nil))

	c := newClient(cfg.BaseURL, cfg.Timeout)

	status, err := c.get(ctx, "/healthz", nil)
	if err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: health check returned %d", errStatus, status)
	}

	vectors, err := exerciseVectors(ctx, c, cfg.ExerciseID)
	if err != nil {
		return nil, err
	}

	subs, err := generateSubmissions(ctx, cfg, vectors, stats)
	if err != nil {
		return nil, err
	}

	accepted, err := submitAll(ctx, cfg, c, subs, stats)
	if err != nil {
		return nil, fmt.Errorf("submission failed: %w", err)
	}

	records, err := awaitResults(ctx, cfg, c, accepted, stats)
	if err != nil {
		return nil, fmt.Errorf("waiting for results failed: %w", err)
	}

	if cfg.Exercise != nil {
		if err := verifyResults(ctx, cfg, accepted, records, stats); err != nil {
			return nil, err
		}
	}

	if cfg.OutputFile != "" {
		if err := saveSubmissions(cfg.OutputFile, subs); err != nil {
			log.Warn(ctx, "failed to save submissions", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

func exerciseVectors(ctx context.Context, c *client, id string) ([]string, error) {
	var list exercisesResponse
	if _, err := c.get(ctx, "/exercises", &list); err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	i := slices.IndexFunc(list.Exercises, func(s exercise.Summary) bool { return s.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("exercise %q is not served", id)
	}
	return list.Exercises[i].Vectors, nil
}

// submitAll posts every submission with cfg.Workers concurrent requests and
// returns the ones the service accepted.
func submitAll(ctx context.Context, cfg *Config, c *client, subs []submission, stats *Stats) ([]submission, error) {
	var (
		mu        sync.Mutex
		accepted  = make([]submission, 0, len(subs))
		duplicate atomic.Int64
		refused   atomic.Int64
		failed    atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, sub := range subs {
		g.Go(func() error {
			var ack ackResponse
			status, err := c.post(gctx, "/submissions", sub, &ack)
			switch {
			case err != nil:
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
			case status == http.StatusAccepted:
				mu.Lock()
				accepted = append(accepted, sub)
				mu.Unlock()
			case status == http.StatusOK && ack.Duplicate:
				duplicate.Add(1)
			case status == http.StatusTooManyRequests:
				refused.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.Accepted = len(accepted)
	stats.Duplicate = int(duplicate.Load())
	stats.Refused = int(refused.Load())
	stats.Failed = int(failed.Load())
	logger.Get().Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("refused", stats.Refused),
		logger.Int("failed", stats.Failed))
	return accepted, nil
}

// awaitResults polls every accepted submission until it leaves the pending
// state or cfg.WaitTimeout elapses.
func awaitResults(ctx context.Context, cfg *Config, c *client, subs []submission, stats *Stats) (map[string]model.SubmissionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.WaitTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		records = make(map[string]model.SubmissionRecord, len(subs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, sub := range subs {
		g.Go(func() error {
			rec, err := pollSubmission(gctx, cfg, c, sub.SubmissionID)
			if err != nil {
				return err
			}
			mu.Lock()
			records[sub.SubmissionID] = rec
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rec := range records {
		switch rec.Status {
		case model.StatusGraded:
			stats.Graded++
			if rec.Result != nil && rec.Result.Correct {
				stats.Correct++
			}
		case model.StatusFailed:
			stats.GradeError++
		}
	}
	return records, nil
}

func pollSubmission(ctx context.Context, cfg *Config, c *client, id string) (model.SubmissionRecord, error) {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		var rec model.SubmissionRecord
		status, err := c.get(ctx, "/submissions/"+id, &rec)
		if err == nil && status == http.StatusOK && rec.Status != model.StatusPending {
			return rec, nil
		}
		if err == nil && status != http.StatusOK {
			return model.SubmissionRecord{}, fmt.Errorf("%w: submission %s: %d", errStatus, id, status)
		}
		select {
		case <-ctx.Done():
			return model.SubmissionRecord{}, fmt.Errorf("submission %s still pending: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

func saveSubmissions(path string, subs []submission) error {
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal submissions: %w", err)
	}
	if err := os.WriteFile(path, data, outputFilePermission); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Accepted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("accepted", stats.Accepted),
		logger.Int("refused", stats.Refused),
		logger.Int("failed", stats.Failed),
		logger.Int("graded", stats.Graded),
		logger.Int("gradeErrors", stats.GradeError),
		logger.Int("correct", stats.Correct),
		logger.Int("mismatched", stats.Mismatched),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("submissionsPerSecond", perSecond))
}
