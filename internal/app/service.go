// Package service wires grading, storage and the asynchronous pipeline
// behind the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/vectordraw/internal/adapters/mq/queue"
	"github.com/okian/vectordraw/internal/adapters/mq/worker"
	"github.com/okian/vectordraw/internal/adapters/repository"
	"github.com/okian/vectordraw/internal/domain/check"
	"github.com/okian/vectordraw/internal/domain/dedupe"
	"github.com/okian/vectordraw/internal/domain/exercise"
	"github.com/okian/vectordraw/internal/domain/grader"
	"github.com/okian/vectordraw/internal/domain/model"
	"github.com/okian/vectordraw/pkg/logger"
	"github.com/okian/vectordraw/pkg/metrics"
)

const (
	defaultQueueSize  = 10000
	defaultDedupeSize = 50000
	defaultShardCount = 16
	stopTimeout       = 10 * time.Second
)

// Service implements the API dependencies for the grading system.
type Service struct {
	mu sync.RWMutex

	store   *repository.ShardedStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	catalog *exercise.Catalog
	raw     *grader.Grader

	// graders holds one grader per exercise ID.
	gmu     sync.RWMutex
	graders map[string]*grader.Grader

	workerCount    int
	queueSize      int
	dedupeSize     int
	shardCount     int
	successMessage string
	customChecks   map[check.Kind]check.Func
	exercises      []exercise.Exercise

	// cancel ends the background context of the store and the pool.
	cancel  context.CancelFunc
	started bool
	logger  logger.Logger
}

// New constructs a new Service. Components are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      defaultQueueSize,
		dedupeSize:     defaultDedupeSize,
		shardCount:     defaultShardCount,
		successMessage: grader.DefaultSuccessMessage,
		customChecks:   make(map[check.Kind]check.Func),
		catalog:        exercise.NewCatalog(),
		graders:        make(map[string]*grader.Grader),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the components, registers the configured exercises and
// starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting grading service...")

	s.raw = s.newGrader("")
	for _, e := range s.exercises {
		if err := s.addExerciseLocked(e); err != nil {
			return fmt.Errorf("register exercise: %w", err)
		}
	}
	metrics.UpdateExercisesLoaded(s.catalog.Len())

	// Background components outlive ctx so that Stop can drain the queue.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.store = repository.NewShardedStore(runCtx, repository.WithShardCount(s.shardCount))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s, worker.WithPoolLogger(s.logger.Named("workers")))
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "grading service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
		logger.Int("exercises", s.catalog.Len()),
	)
	return nil
}

// Stop refuses new work, drains the queue and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	pool, store, cancelRun := s.pool, s.store, s.cancel
	s.mu.Unlock()
	defer cancelRun()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping grading service...")

	// Workers still grade what is queued, so the lock must not be held here.
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not stop cleanly", logger.Error(err))
	}
	_ = store.Close()
	s.logger.Info(ctx, "grading service stopped")
}

func (s *Service) newGrader(successMessage string) *grader.Grader {
	if successMessage == "" {
		successMessage = s.successMessage
	}
	return grader.New(
		grader.WithSuccessMessage(successMessage),
		grader.WithCustomChecks(s.customChecks),
		grader.WithLogger(s.logger.Named("grader")),
	)
}

// AddExercise registers or replaces an exercise while the service runs.
func (s *Service) AddExercise(e exercise.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if err := s.addExerciseLocked(e); err != nil {
		return err
	}
	metrics.UpdateExercisesLoaded(s.catalog.Len())
	return nil
}

func (s *Service) addExerciseLocked(e exercise.Exercise) error {
	if err := s.catalog.Put(e); err != nil {
		return err
	}
	g := s.newGrader(e.SuccessMessage)
	s.gmu.Lock()
	s.graders[e.ID] = g
	s.gmu.Unlock()
	return nil
}

// Exercises lists the public view of every exercise.
func (s *Service) Exercises(_ context.Context) []exercise.Summary {
	list := s.catalog.List()
	out := make([]exercise.Summary, len(list))
	for i, e := range list {
		out[i] = e.Summary()
	}
	return out
}

func (s *Service) exercise(id string) (exercise.Exercise, *grader.Grader, error) {
	e, err := s.catalog.Get(id)
	if err != nil {
		return exercise.Exercise{}, nil, fmt.Errorf("%w: %s", ErrUnknownExercise, id)
	}
	s.gmu.RLock()
	g := s.graders[id]
	s.gmu.RUnlock()
	return e, g, nil
}

// Grade validates a raw answer and grades it against its own checks.
func (s *Service) Grade(ctx context.Context, answer model.Answer) (model.Result, error) {
	if err := s.requireStarted(); err != nil {
		return model.Result{}, err
	}
	if err := exercise.ValidateAnswer(answer, true); err != nil {
		metrics.RecordGradingError("invalid_answer")
		return model.Result{}, err
	}
	return s.grade(ctx, s.raw, answer)
}

// Check grades a board state for an exercise and saves it as the
// student's latest attempt. Checks sent by the client are ignored.
func (s *Service) Check(ctx context.Context, exerciseID, studentID string, answer model.Answer) (model.Attempt, error) {
	if err := s.requireStarted(); err != nil {
		return model.Attempt{}, err
	}
	e, g, err := s.exercise(exerciseID)
	if err != nil {
		return model.Attempt{}, err
	}
	if err := exercise.ValidateAnswer(answer, false); err != nil {
		metrics.RecordGradingError("invalid_answer")
		return model.Attempt{}, err
	}
	return s.checkAndSave(ctx, e, g, studentID, answer)
}

func (s *Service) checkAndSave(ctx context.Context, e exercise.Exercise, g *grader.Grader, studentID string, answer model.Answer) (model.Attempt, error) { //nolint:gocritic // value semantics
	checks, err := e.BuildChecks()
	if err != nil {
		return model.Attempt{}, err
	}
	board := model.Answer{Vectors: answer.Vectors, Points: answer.Points}
	graded := board
	graded.Checks = checks

	result, err := s.grade(ctx, g, graded)
	if err != nil {
		return model.Attempt{}, err
	}

	attempt := model.Attempt{
		ExerciseID: e.ID,
		StudentID:  studentID,
		Answer:     board,
		Result:     result,
		Score:      model.Score(result),
		MaxScore:   model.MaxScore,
		GradedAt:   time.Now().UTC(),
	}
	if studentID != "" {
		if err := s.store.SaveAttempt(ctx, attempt); err != nil {
			return model.Attempt{}, err
		}
	}
	s.logger.Info(ctx, "grade published",
		logger.String("exercise", e.ID),
		logger.String("student", studentID),
		logger.Float64("value", attempt.Score),
		logger.Float64("max_value", attempt.MaxScore),
	)
	return attempt, nil
}

// grade runs g and records grading metrics.
func (s *Service) grade(ctx context.Context, g *grader.Grader, answer model.Answer) (model.Result, error) {
	start := time.Now()
	out, err := g.Evaluate(ctx, answer)
	metrics.RecordGradingLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordGradingError(errorReason(err))
		if errors.Is(err, grader.ErrUnknownCheck) {
			s.logger.Error(ctx, "grading configuration error", logger.Error(err))
		}
		return model.Result{}, err
	}
	metrics.RecordGrade(out.Result.Correct)
	if out.Failed != nil {
		metrics.RecordCheckFailure(out.Failed.Kind.String())
	}
	return out.Result, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, grader.ErrUnknownCheck):
		return "unknown_check"
	case errors.Is(err, grader.ErrInvalidBoard):
		return "invalid_board"
	case errors.Is(err, check.ErrMissingTarget):
		return "missing_target"
	case errors.Is(err, check.ErrMalformedExpected):
		return "malformed_expected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}

// Submit queues a board for asynchronous grading and returns its record.
// A submission ID seen before is reported as a duplicate together with the
// stored record. A missing ID is generated.
func (s *Service) Submit(ctx context.Context, sub model.Submission) (model.SubmissionRecord, bool, error) { //nolint:gocritic // value semantics
	if err := s.requireStarted(); err != nil {
		return model.SubmissionRecord{}, false, err
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.StudentID == "" {
		return model.SubmissionRecord{}, false, fmt.Errorf("%w: student_id is required", ErrInvalidSubmission)
	}
	if _, _, err := s.exercise(sub.ExerciseID); err != nil {
		return model.SubmissionRecord{}, false, err
	}
	if err := exercise.ValidateAnswer(sub.Answer, false); err != nil {
		return model.SubmissionRecord{}, false, err
	}

	if s.deduper.SeenAndRecord(ctx, sub.ID) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission", logger.String("submissionID", sub.ID))
		rec, err := s.store.Submission(ctx, sub.ID)
		if err != nil {
			// Evicted from the store but still remembered by the deduper.
			rec = model.SubmissionRecord{ID: sub.ID, Status: model.StatusPending}
		}
		return rec, true, nil
	}

	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = time.Now().UTC()
	}
	rec := model.SubmissionRecord{
		ID:         sub.ID,
		ExerciseID: sub.ExerciseID,
		StudentID:  sub.StudentID,
		Status:     model.StatusPending,
		UpdatedAt:  sub.ReceivedAt,
	}
	if err := s.store.PutSubmission(ctx, rec); err != nil {
		s.deduper.Unrecord(ctx, sub.ID)
		return model.SubmissionRecord{}, false, err
	}
	if err := s.queue.Enqueue(ctx, sub); err != nil {
		s.deduper.Unrecord(ctx, sub.ID)
		s.store.DeleteSubmission(ctx, sub.ID)
		s.logger.Warn(ctx, "submission refused", logger.String("submissionID", sub.ID), logger.Error(err))
		return model.SubmissionRecord{}, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
	}
	metrics.RecordSubmissionAccepted()
	return rec, false, nil
}

// GradeSubmission implements worker.Grader.
func (s *Service) GradeSubmission(ctx context.Context, sub model.Submission) (model.Result, error) { //nolint:gocritic // value semantics
	e, g, err := s.exercise(sub.ExerciseID)
	if err != nil {
		return model.Result{}, err
	}
	attempt, err := s.checkAndSave(ctx, e, g, sub.StudentID, sub.Answer)
	if err != nil {
		return model.Result{}, err
	}
	return attempt.Result, nil
}

// CompleteSubmission implements worker.Recorder.
func (s *Service) CompleteSubmission(ctx context.Context, rec model.SubmissionRecord) error { //nolint:gocritic // value semantics
	return s.store.PutSubmission(ctx, rec)
}

// SubmissionResult returns the current state of a submission.
func (s *Service) SubmissionResult(ctx context.Context, id string) (model.SubmissionRecord, error) {
	if err := s.requireStarted(); err != nil {
		return model.SubmissionRecord{}, err
	}
	return s.store.Submission(ctx, id)
}

// LatestAttempt returns the stored state of a student on an exercise.
func (s *Service) LatestAttempt(ctx context.Context, exerciseID, studentID string) (model.Attempt, error) {
	if err := s.requireStarted(); err != nil {
		return model.Attempt{}, err
	}
	if _, _, err := s.exercise(exerciseID); err != nil {
		return model.Attempt{}, err
	}
	return s.store.LatestAttempt(ctx, exerciseID, studentID)
}

func (s *Service) requireStarted() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"shardCount":  s.shardCount,
		"exercises":   s.catalog.Len(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["attempts"] = s.store.Count(ctx)
		stats["submissions"] = s.store.SubmissionCount(ctx)
		stats["processed"] = s.pool.Processed()
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
