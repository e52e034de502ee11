package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/vectordraw/internal/domain/model"
	"github.com/okian/vectordraw/pkg/metrics"
)

const (
	defaultShardCount            = 16
	defaultMetricsUpdateInterval = 5 * time.Second
)

type attemptKey struct {
	exerciseID string
	studentID  string
}

type shard struct {
	mu          sync.RWMutex
	attempts    map[attemptKey]model.Attempt
	submissions map[string]model.SubmissionRecord
}

// ShardedStore is an in-memory Store. Keys are spread over shards by
// xxhash so unrelated students do not contend on one lock.
type ShardedStore struct {
	shards                []*shard
	shardCount            int
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewShardedStore constructs the store and starts its metrics updater,
// which runs until ctx is done or Close is called.
func NewShardedStore(ctx context.Context, opts ...Option) *ShardedStore {
	s := &ShardedStore{
		shardCount:            defaultShardCount,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{
			attempts:    make(map[attemptKey]model.Attempt),
			submissions: make(map[string]model.SubmissionRecord),
		}
	}

	metrics.UpdateRepositoryShardCount(s.shardCount)
	s.startMetricsUpdater(ctx)
	return s
}

func (s *ShardedStore) shardFor(key string) *shard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// attempts of one student live together so a student's history never spans shards.
func (s *ShardedStore) attemptShard(k attemptKey) *shard {
	return s.shardFor(k.studentID)
}

// SaveAttempt implements Store.
func (s *ShardedStore) SaveAttempt(_ context.Context, a model.Attempt) error { //nolint:gocritic // value semantics
	start := time.Now()
	defer observe(metrics.RecordRepositoryUpdateLatency, start)

	if a.ExerciseID == "" || a.StudentID == "" {
		metrics.RecordErrorByComponent("repository", "empty_key")
		return fmt.Errorf("save attempt: %w", ErrEmptyKey)
	}
	k := attemptKey{exerciseID: a.ExerciseID, studentID: a.StudentID}
	sh := s.attemptShard(k)
	sh.mu.Lock()
	sh.attempts[k] = a
	sh.mu.Unlock()
	return nil
}

// LatestAttempt implements Store.
func (s *ShardedStore) LatestAttempt(_ context.Context, exerciseID, studentID string) (model.Attempt, error) {
	start := time.Now()
	defer observe(metrics.RecordRepositoryQueryLatency, start)

	k := attemptKey{exerciseID: exerciseID, studentID: studentID}
	sh := s.attemptShard(k)
	sh.mu.RLock()
	a, ok := sh.attempts[k]
	sh.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Attempt{}, fmt.Errorf("attempt %s/%s: %w", exerciseID, studentID, ErrNotFound)
	}
	return a, nil
}

// PutSubmission implements Store.
func (s *ShardedStore) PutSubmission(_ context.Context, rec model.SubmissionRecord) error { //nolint:gocritic // value semantics
	start := time.Now()
	defer observe(metrics.RecordRepositoryUpdateLatency, start)

	if rec.ID == "" {
		metrics.RecordErrorByComponent("repository", "empty_key")
		return fmt.Errorf("put submission: %w", ErrEmptyKey)
	}
	sh := s.shardFor(rec.ID)
	sh.mu.Lock()
	sh.submissions[rec.ID] = rec
	sh.mu.Unlock()
	return nil
}

// DeleteSubmission removes a record. Unknown IDs are ignored.
func (s *ShardedStore) DeleteSubmission(_ context.Context, id string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	delete(sh.submissions, id)
	sh.mu.Unlock()
}

// Submission implements Store.
func (s *ShardedStore) Submission(_ context.Context, id string) (model.SubmissionRecord, error) {
	start := time.Now()
	defer observe(metrics.RecordRepositoryQueryLatency, start)

	sh := s.shardFor(id)
	sh.mu.RLock()
	rec, ok := sh.submissions[id]
	sh.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.SubmissionRecord{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// Count implements Store.
func (s *ShardedStore) Count(_ context.Context) int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.attempts)
		sh.mu.RUnlock()
	}
	return n
}

// SubmissionCount returns the number of stored submission records.
func (s *ShardedStore) SubmissionCount(_ context.Context) int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.submissions)
		sh.mu.RUnlock()
	}
	return n
}

// Close stops the metrics updater.
func (s *ShardedStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *ShardedStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *ShardedStore) updateMetrics() {
	total := 0
	for i, sh := range s.shards {
		sh.mu.RLock()
		n := len(sh.attempts) + len(sh.submissions)
		sh.mu.RUnlock()
		metrics.UpdateRepositoryRecordsPerShard("shard_"+strconv.Itoa(i), n)
		total += n
	}
	metrics.UpdateRepositoryRecordsTotal(total)
}

func observe(record func(float64), start time.Time) {
	record(float64(time.Since(start).Microseconds()) / 1000)
}
