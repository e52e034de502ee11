package grader

import (
	"github.com/okian/vectordraw/internal/domain/check"
	"github.com/okian/vectordraw/pkg/logger"
)

// DefaultSuccessMessage is returned when every check passes.
const DefaultSuccessMessage = "Test passed"

// Option applies a configuration option to the Grader.
type Option func(*Grader)

// WithSuccessMessage sets the message returned for a correct answer.
func WithSuccessMessage(msg string) Option {
	return func(g *Grader) {
		if msg != "" {
			g.successMessage = msg
		}
	}
}

// WithCustomCheck registers fn under kind, replacing any built-in of the same name.
func WithCustomCheck(kind check.Kind, fn check.Func) Option {
	return func(g *Grader) {
		if kind != "" && fn != nil {
			g.registry[kind] = fn
		}
	}
}

// WithCustomChecks registers every entry of checks.
func WithCustomChecks(checks map[check.Kind]check.Func) Option {
	return func(g *Grader) {
		for kind, fn := range checks {
			WithCustomCheck(kind, fn)(g)
		}
	}
}

// WithLogger sets the logger used for failing checks and configuration errors.
func WithLogger(l logger.Logger) Option {
	return func(g *Grader) {
		if l != nil {
			g.log = l
		}
	}
}
