// Package model contains domain models passed between layers.
package model

import "github.com/okian/vectordraw/internal/domain/check"

// MaxScore is the maximum value published for a graded answer.
const MaxScore = 1.0

// VectorState is a drawn vector as submitted by the board.
type VectorState struct {
	Tail []float64 `json:"tail"`
	Tip  []float64 `json:"tip"`
}

// Answer is the board state plus the checks it is graded against.
type Answer struct {
	Vectors map[string]VectorState `json:"vectors"`
	Points  map[string][]float64   `json:"points"`
	Checks  []check.Check          `json:"checks,omitempty"`
}

// Result is the grading verdict returned to the student.
type Result struct {
	Correct bool   `json:"correct"`
	Msg     string `json:"msg"`
}

// Score converts a verdict into the published grade value.
func Score(r Result) float64 {
	if r.Correct {
		return MaxScore
	}
	return 0
}
