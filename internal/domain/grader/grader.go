// Package grader evaluates a board state against an ordered list of checks.
package grader

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/vectordraw/internal/domain/check"
	"github.com/okian/vectordraw/internal/domain/geometry"
	"github.com/okian/vectordraw/internal/domain/model"
	"github.com/okian/vectordraw/pkg/logger"
)

// Grader owns an immutable check registry. It is safe for concurrent use.
type Grader struct {
	registry       map[check.Kind]check.Func
	successMessage string
	log            logger.Logger
}

// New creates a Grader with the built-in checks plus any registered by opts.
// Later registrations win over earlier ones and over built-ins.
func New(opts ...Option) *Grader {
	g := &Grader{
		registry:       check.Builtins(),
		successMessage: DefaultSuccessMessage,
		log:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SuccessMessage returns the message used for correct answers.
func (g *Grader) SuccessMessage() string {
	return g.successMessage
}

// Kinds returns the registered check kinds in lexical order.
func (g *Grader) Kinds() []check.Kind {
	kinds := make([]check.Kind, 0, len(g.registry))
	for k := range g.registry {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Outcome is a grading result plus the check failure that produced it.
type Outcome struct {
	Result model.Result
	// Failed is nil when the answer is correct.
	Failed *check.ValidationError
}

// Grade runs the checks of answer in order and stops at the first failure.
// A failing check yields an incorrect Result and a nil error. Errors are
// reserved for malformed input and for unknown check kinds.
func (g *Grader) Grade(ctx context.Context, answer model.Answer) (model.Result, error) {
	out, err := g.Evaluate(ctx, answer)
	return out.Result, err
}

// Evaluate is Grade that also reports which check rejected the answer.
func (g *Grader) Evaluate(ctx context.Context, answer model.Answer) (Outcome, error) {
	const op = "grader.Evaluate"

	vectors, points, err := board(answer)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	for i, c := range answer.Checks {
		if err := ctx.Err(); err != nil {
			return Outcome{}, fmt.Errorf("%s: %w", op, err)
		}
		fn, ok := g.registry[c.Kind]
		if !ok {
			g.log.Error(ctx, "check kind not registered",
				logger.String("kind", c.Kind.String()),
				logger.Int("index", i))
			return Outcome{}, fmt.Errorf("%s: %w: %q", op, ErrUnknownCheck, c.Kind)
		}
		err := fn(c, vectors, points)
		if err == nil {
			continue
		}
		if ve, ok := check.AsValidation(err); ok {
			g.log.Debug(ctx, "check failed",
				logger.String("kind", c.Kind.String()),
				logger.String("target", ve.Target),
				logger.Int("index", i))
			return Outcome{Result: model.Result{Correct: false, Msg: ve.Msg}, Failed: ve}, nil
		}
		return Outcome{}, fmt.Errorf("%s: check %d (%s): %w", op, i, c.Kind, err)
	}

	return Outcome{Result: model.Result{Correct: true, Msg: g.successMessage}}, nil
}

// board converts the wire board state into geometry values.
func board(answer model.Answer) (map[string]geometry.Vector, map[string]geometry.Point, error) {
	vectors := make(map[string]geometry.Vector, len(answer.Vectors))
	for name, state := range answer.Vectors {
		v, err := geometry.VectorFrom(name, state.Tail, state.Tip)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidBoard, err)
		}
		vectors[name] = v
	}
	points := make(map[string]geometry.Point, len(answer.Points))
	for name, coords := range answer.Points {
		p, err := geometry.PointFrom(coords)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: point %s: %w", ErrInvalidBoard, name, err)
		}
		points[name] = p
	}
	return vectors, points, nil
}
