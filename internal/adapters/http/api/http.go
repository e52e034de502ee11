// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/vectordraw/internal/domain/exercise"
	"github.com/okian/vectordraw/internal/domain/model"
)

// Grader grades a raw answer against its own checks.
type Grader interface {
	Grade(ctx context.Context, answer model.Answer) (model.Result, error)
}

// ExerciseService exposes the authored exercises and the synchronous check path.
type ExerciseService interface {
	Exercises(ctx context.Context) []exercise.Summary
	Check(ctx context.Context, exerciseID, studentID string, answer model.Answer) (model.Attempt, error)
	LatestAttempt(ctx context.Context, exerciseID, studentID string) (model.Attempt, error)
}

// SubmissionService exposes the asynchronous grading pipeline.
type SubmissionService interface {
	Submit(ctx context.Context, sub model.Submission) (model.SubmissionRecord, bool, error)
	SubmissionResult(ctx context.Context, id string) (model.SubmissionRecord, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Grader
	ExerciseService
	SubmissionService
}

// Server wires HTTP routes for the business API.
type Server struct {
	opsHandler         *OpsHandler
	gradeHandler       *GradeHandler
	exercisesHandler   *ExercisesHandler
	submissionsHandler *SubmissionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		opsHandler:         NewOpsHandler(statsProvider, nil),
		gradeHandler:       NewGradeHandler(deps),
		exercisesHandler:   NewExercisesHandler(deps),
		submissionsHandler: NewSubmissionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.opsHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.opsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /grade", MetricsMiddleware(s.gradeHandler.HandleGrade, "grade"))
	mux.HandleFunc("GET /exercises", MetricsMiddleware(s.exercisesHandler.HandleList, "exercises"))
	mux.HandleFunc("POST /exercises/{id}/check", MetricsMiddleware(s.exercisesHandler.HandleCheck, "check"))
	mux.HandleFunc("GET /exercises/{id}/attempts/{student}", MetricsMiddleware(s.exercisesHandler.HandleAttempt, "attempts"))
	mux.HandleFunc("POST /submissions", MetricsMiddleware(s.submissionsHandler.HandleSubmit, "submissions"))
	mux.HandleFunc("GET /submissions/{id}", MetricsMiddleware(s.submissionsHandler.HandleStatus, "submission_status"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a service error onto its HTTP status and code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
