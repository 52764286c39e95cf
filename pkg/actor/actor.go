// Package actor carries the request-scoped identity the Case Workflow
// component consults for transition permission and export redaction mode
// (spec.md §6.2). Authentication and role-header validation live in the
// HTTP frontend; this package only models the resulting identity and
// propagates it through context.Context.
package actor

import (
	"context"

	"github.com/autocomply/casework/pkg/domain"
)

// RoleHeader is the HTTP header the transport layer is expected to have
// validated upstream before an Actor reaches this package.
const RoleHeader = "X-AutoComply-Role"

// Actor identifies who is performing an operation.
type Actor struct {
	Role domain.ActorRole
	ID   string
}

// System is the actor used for operations with no human caller (scheduled
// retention sweeps, hook-site recomputes not attributable to a request).
var System = Actor{Role: domain.RoleSystem}

// ParseRole validates a raw header value against the roles the workflow
// understands, returning domain.BadRequest for anything else.
func ParseRole(raw string) (domain.ActorRole, error) {
	switch domain.ActorRole(raw) {
	case domain.RoleSubmitter, domain.RoleVerifier, domain.RoleAdmin, domain.RoleDevsupport:
		return domain.ActorRole(raw), nil
	default:
		return "", domain.BadRequest("unrecognized actor role: " + raw)
	}
}

// CanRedactFull reports whether a's role is permitted to request full
// (unredacted) export mode. Only admin and devsupport may; verifier is
// forced into safe mode regardless of what it requests (spec.md §4.5).
func (a Actor) CanRedactFull() bool {
	return a.Role == domain.RoleAdmin || a.Role == domain.RoleDevsupport
}

type contextKey int

const actorContextKey contextKey = iota

// WithActor returns a copy of ctx carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, a)
}

// FromContext returns the Actor carried by ctx, or System if none was set
// — callers invoked outside a request path (cron sweeps, startup hooks)
// get the system identity by default.
func FromContext(ctx context.Context) Actor {
	a, ok := ctx.Value(actorContextKey).(Actor)
	if !ok {
		return System
	}
	return a
}
