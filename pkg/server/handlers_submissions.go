package server

import (
	"net/http"

	"github.com/autocomply/casework/pkg/actor"
)

type createSubmissionRequest struct {
	DecisionType string         `json:"decision_type"`
	FormData     map[string]any `json:"form_data"`
	SubmittedBy  string         `json:"submitted_by"`
	AccountID    string         `json:"account_id"`
	LocationID   string         `json:"location_id"`
}

type createSubmissionResponse struct {
	Submission any `json:"submission"`
	Case       any `json:"case"`
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req createSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	act := actor.FromContext(r.Context())
	submission, c, err := s.workflow.CreateSubmission(r.Context(), req.DecisionType, req.FormData, req.SubmittedBy, req.AccountID, req.LocationID, act)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSubmissionResponse{Submission: submission, Case: c})
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	submission, err := s.workflow.GetSubmission(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

type updateSubmissionRequest struct {
	FormData map[string]any `json:"form_data"`
}

func (s *Server) handleUpdateSubmission(w http.ResponseWriter, r *http.Request) {
	var req updateSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	act := actor.FromContext(r.Context())
	submission, err := s.workflow.UpdateSubmission(r.Context(), r.PathValue("id"), req.FormData, act)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

func (s *Server) handleCancelSubmission(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if err := s.workflow.CancelSubmission(r.Context(), r.PathValue("id"), act); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
