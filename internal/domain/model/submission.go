package model

import "time"

// Attempt is the latest answer a student submitted for an exercise.
type Attempt struct {
	ExerciseID string    `json:"exercise_id"`
	StudentID  string    `json:"student_id"`
	Answer     Answer    `json:"answer"`
	Result     Result    `json:"result"`
	Score      float64   `json:"score"`
	MaxScore   float64   `json:"max_score"`
	GradedAt   time.Time `json:"graded_at"`
}

// Submission is an answer queued for asynchronous grading.
type Submission struct {
	ID         string    `json:"submission_id"`
	ExerciseID string    `json:"exercise_id"`
	StudentID  string    `json:"student_id"`
	Answer     Answer    `json:"answer"`
	ReceivedAt time.Time `json:"received_at"`
}

// SubmissionStatus tracks a submission through the pipeline.
type SubmissionStatus string

const (
	StatusPending SubmissionStatus = "pending"
	StatusGraded  SubmissionStatus = "graded"
	StatusFailed  SubmissionStatus = "failed"
)

// SubmissionRecord is the observable state of a submission.
type SubmissionRecord struct {
	ID         string           `json:"submission_id"`
	ExerciseID string           `json:"exercise_id"`
	StudentID  string           `json:"student_id"`
	Status     SubmissionStatus `json:"status"`
	Result     *Result          `json:"result,omitempty"`
	Score      float64          `json:"score"`
	Error      string           `json:"error,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
