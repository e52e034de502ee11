// Package loadtest drives the asynchronous grading API with generated
// boards and checks what comes back.
package loadtest

import (
	"time"

	"github.com/okian/vectordraw/internal/domain/exercise"
	"github.com/okian/vectordraw/internal/domain/model"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	ExerciseID   string        // Exercise every board is submitted to
	Submissions  int           // Number of boards to generate
	Students     int           // Number of distinct students the boards are spread over
	Workers      int           // Number of concurrent HTTP workers
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between result polls
	WaitTimeout  time.Duration // How long to wait for grading to finish
	OutputFile   string        // Output file for generated submissions, empty to skip
	Verbose      bool          // Enable verbose logging

	// Exercise is the local copy of the exercise. When set every graded
	// result is compared with a local grader.
	Exercise *exercise.Exercise
}

// Stats holds test statistics.
type Stats struct {
	Generated  int
	Accepted   int
	Duplicate  int
	Refused    int
	Failed     int
	Graded     int
	GradeError int
	Correct    int
	Mismatched int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// submission is the body of POST /submissions.
type submission struct {
	SubmissionID string       `json:"submission_id"`
	ExerciseID   string       `json:"exercise_id"`
	StudentID    string       `json:"student_id"`
	Answer       model.Answer `json:"answer"`
}

type ackResponse struct {
	SubmissionID string                 `json:"submission_id"`
	Status       model.SubmissionStatus `json:"status"`
	Duplicate    bool                   `json:"duplicate"`
}

type exercisesResponse struct {
	Exercises []exercise.Summary `json:"exercises"`
}
