package server

import (
	"net/http"

	"github.com/autocomply/casework/pkg/actor"
)

type attachEvidenceRequest struct {
	Title     string         `json:"title"`
	Snippet   string         `json:"snippet"`
	Citation  string         `json:"citation"`
	SourceID  string         `json:"source_id"`
	Tags      []string       `json:"tags"`
	Metadata  map[string]any `json:"metadata"`
}

func (s *Server) handleAttachEvidence(w http.ResponseWriter, r *http.Request) {
	var req attachEvidenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	act := actor.FromContext(r.Context())
	item, err := s.workflow.AddEvidence(r.Context(), r.PathValue("id"), req.Title, req.Snippet, req.Citation, req.SourceID, req.Tags, req.Metadata, act)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleListEvidence(w http.ResponseWriter, r *http.Request) {
	items, err := s.workflow.ListEvidence(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRemoveEvidence(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if err := s.workflow.RemoveEvidence(r.Context(), r.PathValue("id"), r.PathValue("evidenceId"), act); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setPacketRequest struct {
	EvidenceIDs []string `json:"evidence_ids"`
}

func (s *Server) handleSetPacket(w http.ResponseWriter, r *http.Request) {
	var req setPacketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	act := actor.FromContext(r.Context())
	c, err := s.workflow.SetPacketEvidenceIDs(r.Context(), r.PathValue("id"), req.EvidenceIDs, act)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
