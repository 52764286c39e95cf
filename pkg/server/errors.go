package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/autocomply/casework/pkg/domain"
)

// errorBody is the JSON shape of every non-2xx response (spec.md §7):
// a short human-readable message plus the conceptual error kind, so a
// UI can render soft-deleted/redacted downloads with specific wording.
type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindGone:
		return http.StatusGone
	case domain.KindUnavailableForLegalReasons:
		return http.StatusUnavailableForLegalReasons
	case domain.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to an HTTP status and body. Errors that are not a
// *domain.Error are treated as internal and logged with full context
// (spec.md §7's "Internal ... logged with full context" rule).
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = &domain.Error{Kind: domain.KindInternal, Message: "unexpected error", Cause: err}
	}
	if de.Kind == domain.KindInternal {
		slog.ErrorContext(r.Context(), "internal error serving request",
			"method", r.Method, "path", r.URL.Path, "error", de)
	}

	var body errorBody
	body.Error.Kind = string(de.Kind)
	body.Error.Message = de.Message
	if body.Error.Message == "" {
		body.Error.Message = de.Error()
	}

	writeJSON(w, statusForKind(de.Kind), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return domain.BadRequest("request body required")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return domain.BadRequest("malformed request body: " + err.Error())
	}
	return nil
}
