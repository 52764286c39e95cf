package server

import (
	"net/http"

	"github.com/autocomply/casework/pkg/actor"
	"github.com/autocomply/casework/pkg/domain"
)

type recomputeRequest struct {
	Reason string `json:"reason"`
	Force  bool   `json:"force"`
}

type recomputeResponse struct {
	Recomputed bool                             `json:"recomputed"`
	Entry      *domain.IntelligenceHistoryEntry `json:"entry,omitempty"`
}

// handleRecompute runs maybe_recompute (spec.md §4.6 hook 6, the manual
// trigger). Force bypasses Auto-Recompute's process-wide throttle but
// not the Intelligence Repository's own 2-second write floor.
func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	var req recomputeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	caseID := r.PathValue("id")
	act := actor.FromContext(r.Context())

	throttleSeconds := s.cfg.Intelligence.ThrottleSeconds
	if req.Force {
		throttleSeconds = 0
	}

	ran := s.hook.MaybeRecompute(r.Context(), caseID, req.Reason, throttleSeconds, act.Role)

	entry, err := s.chain.Latest(r.Context(), caseID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recomputeResponse{Recomputed: ran, Entry: entry})
}

// handleIntelligenceHistory returns a case's chain newest-first,
// bounded by limit (spec.md §6.1); ChainStore.History returns it
// oldest-first since that is what integrity verification expects.
func (s *Server) handleIntelligenceHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.chain.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 0)
	reversed := make([]domain.IntelligenceHistoryEntry, len(history))
	for i, e := range history {
		reversed[len(history)-1-i] = e
	}
	if limit > 0 && limit < len(reversed) {
		reversed = reversed[:limit]
	}
	writeJSON(w, http.StatusOK, reversed)
}
