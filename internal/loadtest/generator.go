package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/vectordraw/internal/domain/model"
	"github.com/okian/vectordraw/pkg/logger"
)

// Board coordinates are drawn from [-gridHalf, gridHalf].
const gridHalf = 10

// generateSubmissions creates cfg.Submissions boards for the named vectors.
// Roughly half of the boards keep every tail at the origin of the first
// vector so that some of them pass tail checks.
func generateSubmissions(ctx context.Context, cfg *Config, vectors []string, stats *Stats) ([]submission, error) {
	logger.Get().Info(ctx, "generating submissions",
		logger.Int("count", cfg.Submissions),
		logger.Int("vectors", len(vectors)))

	students := make([]string, max(cfg.Students, 1))
	for i := range students {
		students[i] = "student-" + uuid.NewString()
	}

	subs := make([]submission, cfg.Submissions)
	for i := range subs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}
		subs[i] = submission{
			SubmissionID: uuid.NewString(),
			ExerciseID:   cfg.ExerciseID,
			StudentID:    students[i%len(students)],
			Answer:       randomBoard(vectors, rand.IntN(2) == 0),
		}
	}
	stats.Generated = len(subs)
	return subs, nil
}

func randomBoard(vectors []string, sharedTail bool) model.Answer {
	board := model.Answer{
		Vectors: make(map[string]model.VectorState, len(vectors)),
		Points:  map[string][]float64{},
	}
	tail := randomPair()
	for _, name := range vectors {
		if !sharedTail {
			tail = randomPair()
		}
		board.Vectors[name] = model.VectorState{Tail: tail, Tip: randomPair()}
	}
	return board
}

func randomPair() []float64 {
	return []float64{
		float64(rand.IntN(2*gridHalf+1) - gridHalf),
		float64(rand.IntN(2*gridHalf+1) - gridHalf),
	}
}
