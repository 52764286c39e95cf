package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/autocomply/casework/pkg/actor"
	"github.com/autocomply/casework/pkg/domain"
	"github.com/autocomply/casework/pkg/recompute"
)

// AddEvidence inserts an evidence item under a case and emits
// evidence_attached (spec.md §4.7).
func (w *Workflow) AddEvidence(ctx context.Context, caseID, title, snippet, citation, sourceID string, tags []string, metadata map[string]any, act actor.Actor) (*domain.EvidenceItem, error) {
	c, err := w.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := w.guardWritable(ctx, c); err != nil {
		return nil, err
	}

	e := &domain.EvidenceItem{
		ID: uuid.New().String(), CaseID: caseID, Title: title, Snippet: snippet,
		Citation: citation, SourceID: sourceID, Tags: tags, Metadata: metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := w.store.CreateEvidence(ctx, e); err != nil {
		return nil, err
	}

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: caseID, CreatedAt: e.CreatedAt,
		EventType: domain.EventEvidenceAttached, ActorRole: act.Role, ActorID: act.ID,
		Message:     "evidence attached",
		PayloadJSON: map[string]any{"evidence_id": e.ID, "title": title},
	}
	if err := w.store.AppendEvent(ctx, ev); err != nil {
		return nil, err
	}

	w.recompute.MaybeRecompute(ctx, caseID, "evidence uploaded", recompute.DefaultThrottleSeconds, act.Role)
	return e, nil
}

// RemoveEvidence deletes an evidence item and emits evidence_removed.
func (w *Workflow) RemoveEvidence(ctx context.Context, caseID, evidenceID string, act actor.Actor) error {
	c, err := w.store.GetCase(ctx, caseID)
	if err != nil {
		return err
	}
	if err := w.guardWritable(ctx, c); err != nil {
		return err
	}
	if _, err := w.store.GetEvidence(ctx, caseID, evidenceID); err != nil {
		return err
	}
	if err := w.store.RemoveEvidence(ctx, evidenceID); err != nil {
		return err
	}

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: caseID, CreatedAt: time.Now().UTC(),
		EventType: domain.EventEvidenceRemoved, ActorRole: act.Role, ActorID: act.ID,
		Message:     "evidence removed",
		PayloadJSON: map[string]any{"evidence_id": evidenceID},
	}
	return w.store.AppendEvent(ctx, ev)
}

// SetPacketEvidenceIDs replaces a case's curated evidence packet,
// validating that every id belongs to the case before persisting
// (spec.md §4.7), and emits packet_updated.
func (w *Workflow) SetPacketEvidenceIDs(ctx context.Context, caseID string, ids []string, act actor.Actor) (*domain.Case, error) {
	c, err := w.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := w.guardWritable(ctx, c); err != nil {
		return nil, err
	}
	if err := w.store.ValidateEvidenceOwnership(ctx, caseID, ids); err != nil {
		return nil, err
	}

	c.PacketEvidenceIDs = ids
	c.UpdatedAt = time.Now().UTC()

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: caseID, CreatedAt: c.UpdatedAt,
		EventType: domain.EventPacketUpdated, ActorRole: act.Role, ActorID: act.ID,
		Message:     "evidence packet updated",
		PayloadJSON: map[string]any{"evidence_ids": ids},
	}
	return c, w.store.UpdateCaseWithEvent(ctx, c, ev)
}

// ListEvidence returns every evidence item attached to a case.
func (w *Workflow) ListEvidence(ctx context.Context, caseID string) ([]*domain.EvidenceItem, error) {
	return w.store.ListEvidence(ctx, caseID)
}
