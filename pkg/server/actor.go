package server

import (
	"net/http"

	"github.com/autocomply/casework/pkg/actor"
	"github.com/autocomply/casework/pkg/domain"
)

// withActor parses the X-AutoComply-Role header (spec.md §6.2) and
// attaches the resulting actor.Actor to the request context. Validation
// of the header's authenticity is the transport layer's job; this only
// rejects values the workflow doesn't recognize.
func withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(actor.RoleHeader)
		if raw == "" {
			writeError(w, r, domain.BadRequest(actor.RoleHeader+" header is required"))
			return
		}
		role, err := actor.ParseRole(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}

		act := actor.Actor{Role: role, ID: r.Header.Get("X-AutoComply-Actor-ID")}
		ctx := actor.WithActor(r.Context(), act)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
