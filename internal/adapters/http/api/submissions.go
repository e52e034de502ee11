package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/vectordraw/internal/domain/model"
)

// SubmissionsHandler handles the asynchronous grading endpoints.
type SubmissionsHandler struct {
	deps SubmissionService
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmissionService) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// submissionRequest mirrors the OpenAPI schema for POST /submissions.
type submissionRequest struct {
	SubmissionID string       `json:"submission_id"`
	ExerciseID   string       `json:"exercise_id"`
	StudentID    string       `json:"student_id"`
	Answer       model.Answer `json:"answer"`
}

func (s submissionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.ExerciseID) == "":
		return errors.New("missing exercise_id")
	case strings.TrimSpace(s.StudentID) == "":
		return errors.New("missing student_id")
	}
	return nil
}

type ackResponse struct {
	SubmissionID string                 `json:"submission_id"`
	Status       model.SubmissionStatus `json:"status"`
	Duplicate    bool                   `json:"duplicate"`
}

// HandleSubmit handles POST /submissions requests.
func (h *SubmissionsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}

	rec, dup, err := h.deps.Submit(r.Context(), model.Submission{
		ID:         req.SubmissionID,
		ExerciseID: req.ExerciseID,
		StudentID:  req.StudentID,
		Answer:     req.Answer,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	status := http.StatusAccepted
	if dup {
		status = http.StatusOK
	}
	writeJSON(w, status, ackResponse{SubmissionID: rec.ID, Status: rec.Status, Duplicate: dup})
}

// HandleStatus handles GET /submissions/{id} requests.
func (h *SubmissionsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.SubmissionResult(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
