package api

import (
	"net/http"

	"github.com/okian/vectordraw/internal/domain/exercise"
	"github.com/okian/vectordraw/internal/domain/model"
)

// ExercisesHandler handles exercise listing, checking and attempt lookups.
type ExercisesHandler struct {
	deps ExerciseService
}

// NewExercisesHandler creates a new exercises handler.
func NewExercisesHandler(deps ExerciseService) *ExercisesHandler {
	return &ExercisesHandler{deps: deps}
}

type exercisesResponse struct {
	Exercises []exercise.Summary `json:"exercises"`
}

type checkResponse struct {
	Result   model.Result `json:"result"`
	Score    float64      `json:"score"`
	MaxScore float64      `json:"max_score"`
}

// HandleList handles GET /exercises requests.
func (h *ExercisesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list := h.deps.Exercises(r.Context())
	if list == nil {
		list = []exercise.Summary{}
	}
	writeJSON(w, http.StatusOK, exercisesResponse{Exercises: list})
}

// HandleCheck handles POST /exercises/{id}/check requests. The optional
// student query parameter stores the attempt as the student's latest.
func (h *ExercisesHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var answer model.Answer
	if err := decodeJSON(w, r, &answer); err != nil {
		writeFailure(w, err)
		return
	}
	attempt, err := h.deps.Check(r.Context(), r.PathValue("id"), r.URL.Query().Get("student"), answer)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{
		Result:   attempt.Result,
		Score:    attempt.Score,
		MaxScore: attempt.MaxScore,
	})
}

// HandleAttempt handles GET /exercises/{id}/attempts/{student} requests.
func (h *ExercisesHandler) HandleAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.deps.LatestAttempt(r.Context(), r.PathValue("id"), r.PathValue("student"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}
