package api

import (
	"net/http"

	"github.com/okian/vectordraw/internal/domain/model"
)

// GradeHandler handles raw grading requests.
type GradeHandler struct {
	deps Grader
}

// NewGradeHandler creates a new grade handler.
func NewGradeHandler(deps Grader) *GradeHandler {
	return &GradeHandler{deps: deps}
}

// HandleGrade handles POST /grade requests. The body is a board state
// together with the checks to run.
func (h *GradeHandler) HandleGrade(w http.ResponseWriter, r *http.Request) {
	var answer model.Answer
	if err := decodeJSON(w, r, &answer); err != nil {
		writeFailure(w, err)
		return
	}
	result, err := h.deps.Grade(r.Context(), answer)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
