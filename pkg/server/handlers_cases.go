package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/autocomply/casework/pkg/actor"
	"github.com/autocomply/casework/pkg/domain"
	"github.com/autocomply/casework/pkg/store"
)

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.CaseFilters{
		Status:       q.Get("status"),
		AssignedTo:   q.Get("assignedTo"),
		DecisionType: q.Get("decisionType"),
		Query:        q.Get("q"),
		Overdue:      q.Get("overdue") == "true",
		Unassigned:   q.Get("unassigned") == "true",
		Limit:        parseIntDefault(q.Get("limit"), 50),
		Offset:       parseIntDefault(q.Get("offset"), 0),
		Now:          time.Now().UTC(),
	}

	cases, err := s.workflow.ListCases(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.workflow.GetCase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// patchCaseRequest applies whichever fields are present, in a fixed
// order (status, assignment, note) — a PATCH may combine all three in
// one call, each emitting its own timeline event (spec.md §6.1).
type patchCaseRequest struct {
	Status     *string `json:"status"`
	Reason     string  `json:"reason"`
	AssignedTo *string `json:"assigned_to"`
	Note       *string `json:"note"`
}

func (s *Server) handlePatchCase(w http.ResponseWriter, r *http.Request) {
	var req patchCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	caseID := r.PathValue("id")
	act := actor.FromContext(r.Context())

	if req.Status != nil {
		if _, err := s.workflow.SetStatus(r.Context(), caseID, domain.CaseStatus(*req.Status), req.Reason, act); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.AssignedTo != nil {
		var err error
		if *req.AssignedTo == "" {
			_, err = s.workflow.Unassign(r.Context(), caseID, act)
		} else {
			_, err = s.workflow.Assign(r.Context(), caseID, *req.AssignedTo, act)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.Note != nil {
		if err := s.workflow.AddNote(r.Context(), caseID, *req.Note, act); err != nil {
			writeError(w, r, err)
			return
		}
	}

	c, err := s.workflow.GetCase(r.Context(), caseID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type assignRequest struct {
	AssignedTo string `json:"assigned_to"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	act := actor.FromContext(r.Context())
	c, err := s.workflow.Assign(r.Context(), r.PathValue("id"), req.AssignedTo, act)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUnassign(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	c, err := s.workflow.Unassign(r.Context(), r.PathValue("id"), act)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type setStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	act := actor.FromContext(r.Context())
	c, err := s.workflow.SetStatus(r.Context(), r.PathValue("id"), domain.CaseStatus(req.Status), req.Reason, act)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
	events, err := s.workflow.ListEvents(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type addNoteRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var req addNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	act := actor.FromContext(r.Context())
	if err := s.workflow.AddNote(r.Context(), r.PathValue("id"), req.Message, act); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
