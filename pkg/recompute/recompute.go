// Package recompute implements Auto-Recompute (spec.md §4.6): a single
// procedure, maybe_recompute, hooked into every case-mutating workflow
// step. It owns the process-wide per-case throttle and a crash-safety
// envelope around the Intelligence Repository so a recompute failure
// never rolls back the mutation that triggered it.
package recompute

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/autocomply/casework/pkg/domain"
	"github.com/autocomply/casework/pkg/intelligence"
	"github.com/autocomply/casework/pkg/telemetry/metrics"
)

// DefaultThrottleSeconds is the spacing Auto-Recompute enforces between
// triggers for the same case absent an explicit override.
const DefaultThrottleSeconds = 30

// Hook wraps an Intelligence Repository with the throttle map and
// crash-safety envelope of spec.md §4.6. A Hook is safe for concurrent
// use by multiple request handlers.
type Hook struct {
	repo    *intelligence.Repository
	logger  *slog.Logger
	metrics *metrics.Collector

	mu   sync.Mutex
	last map[string]time.Time // case_id -> last recompute timestamp
}

// NewHook constructs a Hook over repo.
func NewHook(repo *intelligence.Repository) *Hook {
	return &Hook{
		repo:   repo,
		logger: slog.Default().With("component", "recompute"),
		last:   make(map[string]time.Time),
	}
}

// SetMetrics attaches a metrics collector. It is optional; a Hook with
// no collector attached records nothing.
func (h *Hook) SetMetrics(m *metrics.Collector) {
	h.metrics = m
}

// MaybeRecompute is maybe_recompute(case_id, reason, throttle_seconds,
// actor) (spec.md §4.6). It returns true when the repository's Compute
// succeeded, including when the repository's own internal throttle
// returned the existing latest entry; it returns false when this hook's
// throttle skipped the call or the recompute failed. It never returns an
// error — failures are logged with full context and folded into a false
// return, per the "crash safety" contract.
func (h *Hook) MaybeRecompute(ctx context.Context, caseID, reason string, throttleSeconds int, actor domain.ActorRole) (ran bool) {
	if throttleSeconds < 0 {
		throttleSeconds = DefaultThrottleSeconds
	}

	trigger := triggerFor(reason)

	if throttleSeconds > 0 && !h.claim(caseID, throttleSeconds) {
		h.logger.Debug("recompute throttled", "case_id", caseID, "reason", reason)
		h.metrics.RecordRecomputeThrottled(string(trigger), "hook")
		return false
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("recompute panicked", "case_id", caseID, "reason", reason, "panic", r)
			h.metrics.RecordRecompute(string(trigger), "panic", time.Since(start))
			ran = false
		}
	}()

	if _, throttledByRepo, err := h.repo.Compute(ctx, caseID, trigger, actor); err != nil {
		h.logger.Error("recompute failed", "case_id", caseID, "reason", reason, "trigger", trigger, "error", err)
		h.metrics.RecordRecompute(string(trigger), "error", time.Since(start))
		return false
	} else if throttledByRepo {
		// The Intelligence Repository's own 2-second internal throttle
		// (spec.md §4.3) fired; this still counts as "did not skip" from
		// Auto-Recompute's perspective since it returned a valid entry.
		// The repository itself records the throttle metric.
		return true
	}
	h.metrics.RecordRecompute(string(trigger), "ok", time.Since(start))
	return true
}

// claim reports whether caseID may recompute now, updating the
// last-recompute timestamp if so. throttleSeconds == 0 always claims
// (the manual-recompute "force" path, spec.md §4.6 hook 6).
func (h *Hook) claim(caseID string, throttleSeconds int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	if last, ok := h.last[caseID]; ok {
		if now.Sub(last) < time.Duration(throttleSeconds)*time.Second {
			return false
		}
	}
	h.last[caseID] = now
	return true
}

// triggerFor maps a free-text reason to a RecomputeTrigger by
// case-insensitive substring match (spec.md §4.6). Checked in a fixed
// order so a reason matching more than one substring (e.g. "evidence
// request") resolves deterministically.
func triggerFor(reason string) domain.RecomputeTrigger {
	lower := strings.ToLower(reason)
	switch {
	case lower == "manual_recompute":
		return domain.TriggerManual
	case strings.Contains(lower, "submission"):
		return domain.TriggerSubmission
	case strings.Contains(lower, "evidence"), strings.Contains(lower, "attachment"):
		return domain.TriggerEvidence
	case strings.Contains(lower, "request"), strings.Contains(lower, "info"):
		return domain.TriggerRequestInfo
	case strings.Contains(lower, "decision"):
		return domain.TriggerDecision
	default:
		return domain.TriggerUnknown
	}
}
