// Package exercise describes authored drawing exercises and turns their
// expected results into ordered check lists.
package exercise

import (
	"fmt"
	"maps"
	"slices"

	"github.com/okian/vectordraw/internal/domain/check"
	"github.com/okian/vectordraw/internal/domain/model"
)

const coordsLen = 2

// Exercise is one authored vector drawing problem.
type Exercise struct {
	ID             string         `yaml:"id"`
	Title          string         `yaml:"title"`
	Description    string         `yaml:"description"`
	SuccessMessage string         `yaml:"success_message"`
	Weight         float64        `yaml:"weight"`
	ExpectedResult ExpectedResult `yaml:"expected_result"`
	// Checks are appended after the ones built from ExpectedResult.
	Checks []check.Check `yaml:"checks"`
}

// Summary is the public view of an exercise. It never exposes the answer.
type Summary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Weight      float64  `json:"weight"`
	Vectors     []string `json:"vectors"`
}

// Summary returns the public view of e.
func (e Exercise) Summary() Summary {
	return Summary{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Weight:      e.Weight,
		Vectors:     e.ExpectedResult.Names(),
	}
}

// BuildChecks returns the ordered check list of the exercise.
func (e Exercise) BuildChecks() ([]check.Check, error) {
	var checks []check.Check
	for _, v := range e.ExpectedResult {
		cs, err := v.checksFor()
		if err != nil {
			return nil, err
		}
		checks = append(checks, cs...)
	}
	return append(checks, e.Checks...), nil
}

// Validate checks that the exercise can be served and graded.
// Unknown check kinds are left to the grader, which may have custom ones.
func (e Exercise) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidExercise)
	}
	if e.Weight < 0 {
		return fmt.Errorf("%w: %s: negative weight", ErrInvalidExercise, e.ID)
	}
	seen := make(map[string]struct{}, len(e.ExpectedResult))
	for _, v := range e.ExpectedResult {
		if v.Name == "" {
			return fmt.Errorf("%w: %s: unnamed vector", ErrInvalidExercise, e.ID)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("%w: %s: duplicate vector %s", ErrInvalidExercise, e.ID, v.Name)
		}
		seen[v.Name] = struct{}{}
	}
	for i, c := range e.Checks {
		if c.Kind == "" {
			return fmt.Errorf("%w: %s: check %d has no kind", ErrInvalidExercise, e.ID, i)
		}
		if c.Target() == "" {
			return fmt.Errorf("%w: %s: check %d has no target", ErrInvalidExercise, e.ID, i)
		}
	}
	if _, err := e.BuildChecks(); err != nil {
		return fmt.Errorf("%s: %w", e.ID, err)
	}
	return nil
}

// ValidateAnswer checks the shape of a submitted board. Every vector needs
// a tail and a tip and every point must be a coordinate pair. When
// requireChecks is set the answer must carry a check list, even an empty one.
func ValidateAnswer(a model.Answer, requireChecks bool) error {
	if a.Vectors == nil {
		return fmt.Errorf("%w: vectors missing", ErrInvalidAnswer)
	}
	for _, name := range slices.Sorted(maps.Keys(a.Vectors)) {
		v := a.Vectors[name]
		if len(v.Tail) != coordsLen || len(v.Tip) != coordsLen {
			return fmt.Errorf("%w: vector %s needs a tail and a tip pair", ErrInvalidAnswer, name)
		}
	}
	if a.Points == nil {
		return fmt.Errorf("%w: points missing", ErrInvalidAnswer)
	}
	for _, name := range slices.Sorted(maps.Keys(a.Points)) {
		if len(a.Points[name]) != coordsLen {
			return fmt.Errorf("%w: point %s is not a pair", ErrInvalidAnswer, name)
		}
	}
	if requireChecks && a.Checks == nil {
		return fmt.Errorf("%w: checks missing", ErrInvalidAnswer)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
