package server

import (
	"net/http"

	"github.com/autocomply/casework/pkg/actor"
)

// handleAuditExport runs the full Audit Export + Signing pipeline
// (spec.md §4.8). ?include_payload=true carries each history entry's
// rule-evaluation payload; ?full=true requests unredacted mode, which
// actor.Actor.CanRedactFull downgrades back to safe mode for any role
// other than admin/devsupport regardless of what was requested.
func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("id")
	act := actor.FromContext(r.Context())

	includePayload := r.URL.Query().Get("include_payload") == "true"
	requestFull := r.URL.Query().Get("full") == "true"

	bundle, err := s.exporter.Export(r.Context(), caseID, includePayload, requestFull, act)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.workflow.RecordExport(r.Context(), caseID, act); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}
