package service

import (
	"github.com/okian/vectordraw/internal/domain/check"
	"github.com/okian/vectordraw/internal/domain/exercise"
	"github.com/okian/vectordraw/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of grading workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of repository shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithSuccessMessage sets the message for correct answers on exercises
// that do not define their own.
func WithSuccessMessage(msg string) Option {
	return func(s *Service) {
		if msg != "" {
			s.successMessage = msg
		}
	}
}

// WithCustomCheck makes fn available to every exercise under kind.
func WithCustomCheck(kind check.Kind, fn check.Func) Option {
	return func(s *Service) {
		if kind != "" && fn != nil {
			s.customChecks[kind] = fn
		}
	}
}

// WithExercises registers exercises when the service starts.
func WithExercises(exercises ...exercise.Exercise) Option {
	return func(s *Service) {
		s.exercises = append(s.exercises, exercises...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
