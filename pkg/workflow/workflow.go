// Package workflow owns the case state machine, the cancelled-submission
// read-only guard, assignment, SLA computation, evidence packet
// curation, and the attachment lifecycle (spec.md §4.7). Every mutation
// here either persists atomically with its event (via the store's
// transactional helpers) or is itself a no-op — nothing here leaves the
// timeline out of sync with the case row it describes.
package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/autocomply/casework/pkg/actor"
	"github.com/autocomply/casework/pkg/domain"
	"github.com/autocomply/casework/pkg/recompute"
	"github.com/autocomply/casework/pkg/rules"
	"github.com/autocomply/casework/pkg/store"
)

// Workflow is the Case Workflow component.
type Workflow struct {
	store       *store.Store
	recompute   *recompute.Hook
	uploadsRoot string
}

// New constructs a Workflow. uploadsRoot is the blob directory root;
// attachments are written to {uploadsRoot}/{case_id}/{attachment_id}.{ext}
// (spec.md §6.4).
func New(s *store.Store, hook *recompute.Hook, uploadsRoot string) *Workflow {
	return &Workflow{store: s, recompute: hook, uploadsRoot: uploadsRoot}
}

// CreateSubmission creates a submission and its linked case, then hooks
// Auto-Recompute (spec.md §4.6 hook 1).
func (w *Workflow) CreateSubmission(ctx context.Context, decisionType string, formData map[string]any, submittedBy, accountID, locationID string, act actor.Actor) (*domain.Submission, *domain.Case, error) {
	if _, ok := rules.PackFor(decisionType); !ok {
		return nil, nil, domain.BadRequest("unknown decision_type " + decisionType)
	}

	now := time.Now().UTC()
	sub := &domain.Submission{
		ID:           uuid.New().String(),
		DecisionType: decisionType,
		SubmittedBy:  submittedBy,
		AccountID:    accountID,
		LocationID:   locationID,
		FormData:     formData,
		Status:       domain.SubmissionSubmitted,
		CreatedAt:    now,
	}
	if err := w.store.CreateSubmission(ctx, sub); err != nil {
		return nil, nil, err
	}

	c := &domain.Case{
		ID:                uuid.New().String(),
		SubmissionID:      sub.ID,
		DecisionType:      decisionType,
		Title:             caseTitle(decisionType, formData),
		Status:            domain.CaseNew,
		DueAt:             now.Add(domain.SLAHours(decisionType)),
		PacketEvidenceIDs: []string{},
		SearchableText:    buildSearchableText(decisionType, formData),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := w.store.CreateCase(ctx, c); err != nil {
		return nil, nil, err
	}

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: c.ID, CreatedAt: now,
		EventType: domain.EventCaseCreated, ActorRole: act.Role, ActorID: act.ID,
		Message: "case created from submission",
	}
	if err := w.store.AppendEvent(ctx, ev); err != nil {
		return nil, nil, err
	}

	w.recompute.MaybeRecompute(ctx, c.ID, "submission created", recompute.DefaultThrottleSeconds, act.Role)

	return sub, c, nil
}

// UpdateSubmission persists a resubmission's form_data (spec.md §4.7) and,
// when the linked case is in needs_info, advances it back to in_review and
// re-hooks Auto-Recompute. Blocked by the cancelled-submission guard.
func (w *Workflow) UpdateSubmission(ctx context.Context, submissionID string, formData map[string]any, act actor.Actor) (*domain.Submission, error) {
	sub, err := w.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == domain.SubmissionCancelled {
		return nil, domain.Conflict("submission is cancelled and read-only")
	}

	sub.FormData = formData
	sub.Status = domain.SubmissionUpdated
	if err := w.store.UpdateSubmission(ctx, sub); err != nil {
		return nil, err
	}

	cases, err := w.store.ListCases(ctx, store.CaseFilters{Limit: 1000})
	if err != nil {
		return nil, err
	}
	for _, c := range cases {
		if c.SubmissionID != submissionID {
			continue
		}
		now := time.Now().UTC()
		ev := &domain.CaseEvent{
			ID: uuid.New().String(), CaseID: c.ID, CreatedAt: now,
			EventType: domain.EventSubmissionUpdated, ActorRole: act.Role, ActorID: act.ID,
			Message: "linked submission updated",
		}
		if c.Status == domain.CaseNeedsInfo {
			c.Status = domain.CaseInReview
			c.UpdatedAt = now
			if err := w.store.UpdateCaseWithEvent(ctx, c, ev); err != nil {
				return nil, err
			}
		} else {
			if err := w.store.AppendEvent(ctx, ev); err != nil {
				return nil, err
			}
		}
		w.recompute.MaybeRecompute(ctx, c.ID, "submission updated", recompute.DefaultThrottleSeconds, act.Role)
	}
	return sub, nil
}

// CancelSubmission marks a submission cancelled and puts its case into
// read-only mode, emitting submission_cancelled (and, if the case was
// not already terminal, a status_changed to closed is NOT implied —
// cancellation freezes the case in its current status; spec.md §4.7
// only requires the guard, not a forced status change).
func (w *Workflow) CancelSubmission(ctx context.Context, submissionID string, act actor.Actor) error {
	sub, err := w.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub.Status == domain.SubmissionCancelled {
		return nil
	}
	if err := w.store.CancelSubmission(ctx, submissionID); err != nil {
		return err
	}

	cases, err := w.store.ListCases(ctx, store.CaseFilters{Limit: 1000})
	if err != nil {
		return err
	}
	for _, c := range cases {
		if c.SubmissionID != submissionID {
			continue
		}
		ev := &domain.CaseEvent{
			ID: uuid.New().String(), CaseID: c.ID, CreatedAt: time.Now().UTC(),
			EventType: domain.EventSubmissionCancelled, ActorRole: act.Role, ActorID: act.ID,
			Message: "linked submission cancelled; case is now read-only",
		}
		if err := w.store.AppendEvent(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// guardWritable returns Conflict if the case's linked submission has
// been cancelled (spec.md §4.7 "cancelled-submission guard").
func (w *Workflow) guardWritable(ctx context.Context, c *domain.Case) error {
	if c.SubmissionID == "" {
		return nil
	}
	sub, err := w.store.GetSubmission(ctx, c.SubmissionID)
	if err != nil {
		return err
	}
	if sub.Status == domain.SubmissionCancelled {
		return domain.Conflict("case is read-only")
	}
	return nil
}

// SetStatus runs a status transition through the state machine, persists
// it, and emits status_changed (spec.md §4.7).
func (w *Workflow) SetStatus(ctx context.Context, caseID string, to domain.CaseStatus, reason string, act actor.Actor) (*domain.Case, error) {
	c, err := w.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := w.guardWritable(ctx, c); err != nil {
		return nil, err
	}
	if !CanTransition(c.Status, to, act.Role) {
		return nil, domain.Conflict("illegal transition from " + string(c.Status) + " to " + string(to))
	}

	from := c.Status
	c.Status = to
	c.UpdatedAt = time.Now().UTC()

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: c.ID, CreatedAt: c.UpdatedAt,
		EventType: domain.EventStatusChanged, ActorRole: act.Role, ActorID: act.ID,
		Message:     "status changed",
		PayloadJSON: map[string]any{"from": string(from), "to": string(to), "reason": reason},
	}
	if err := w.store.UpdateCaseWithEvent(ctx, c, ev); err != nil {
		return nil, err
	}

	w.recompute.MaybeRecompute(ctx, c.ID, "decision status changed", recompute.DefaultThrottleSeconds, act.Role)
	return c, nil
}

// Assign sets a case's assignee, emitting assigned.
func (w *Workflow) Assign(ctx context.Context, caseID, assignee string, act actor.Actor) (*domain.Case, error) {
	c, err := w.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := w.guardWritable(ctx, c); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c.AssignedTo = assignee
	c.AssignedAt = &now
	c.UpdatedAt = now

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: c.ID, CreatedAt: now,
		EventType: domain.EventAssigned, ActorRole: act.Role, ActorID: act.ID,
		Message:     "assigned",
		PayloadJSON: map[string]any{"assignee": assignee},
	}
	return c, w.store.UpdateCaseWithEvent(ctx, c, ev)
}

// Unassign clears a case's assignee, emitting unassigned.
func (w *Workflow) Unassign(ctx context.Context, caseID string, act actor.Actor) (*domain.Case, error) {
	c, err := w.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := w.guardWritable(ctx, c); err != nil {
		return nil, err
	}

	prevAssignee := c.AssignedTo
	c.AssignedTo = ""
	c.AssignedAt = nil
	c.UpdatedAt = time.Now().UTC()

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: c.ID, CreatedAt: c.UpdatedAt,
		EventType: domain.EventUnassigned, ActorRole: act.Role, ActorID: act.ID,
		Message:     "unassigned",
		PayloadJSON: map[string]any{"previous_assignee": prevAssignee},
	}
	return c, w.store.UpdateCaseWithEvent(ctx, c, ev)
}

// AddNote appends a manual audit event carrying a reviewer/admin note
// (the POST /cases/{id}/notes endpoint, spec.md §6.1).
func (w *Workflow) AddNote(ctx context.Context, caseID, message string, act actor.Actor) error {
	c, err := w.store.GetCase(ctx, caseID)
	if err != nil {
		return err
	}
	if err := w.guardWritable(ctx, c); err != nil {
		return err
	}
	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: caseID, CreatedAt: time.Now().UTC(),
		EventType: domain.EventNoteAdded, ActorRole: act.Role, ActorID: act.ID,
		Message: message,
	}
	return w.store.AppendEvent(ctx, ev)
}

// RecordExport emits the exported event an audit export produces once its
// bundle has been signed (spec.md §5: "on timeout, return a
// partial-failure response without emitting an exported event" implies
// the event is the caller's signal of a completed export, not the
// Exporter's).
func (w *Workflow) RecordExport(ctx context.Context, caseID string, act actor.Actor) error {
	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: caseID, CreatedAt: time.Now().UTC(),
		EventType: domain.EventExported, ActorRole: act.Role, ActorID: act.ID,
		Message: "case exported",
	}
	return w.store.AppendEvent(ctx, ev)
}

// GetCase loads a case by ID.
func (w *Workflow) GetCase(ctx context.Context, id string) (*domain.Case, error) {
	return w.store.GetCase(ctx, id)
}

// ListCases lists cases matching f.
func (w *Workflow) ListCases(ctx context.Context, f store.CaseFilters) ([]*domain.Case, error) {
	return w.store.ListCases(ctx, f)
}

// GetSubmission loads a submission by ID.
func (w *Workflow) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	return w.store.GetSubmission(ctx, id)
}

// ListEvents returns a case's timeline, newest-first.
func (w *Workflow) ListEvents(ctx context.Context, caseID string, limit int) ([]*domain.CaseEvent, error) {
	return w.store.ListEvents(ctx, caseID, limit)
}

// SLA is the point-in-time SLA snapshot of spec.md §4.7.
type SLA struct {
	Age       time.Duration `json:"age"`
	Remaining time.Duration `json:"remaining"`
	Overdue   bool          `json:"overdue"`
}

// ComputeSLA returns c's SLA snapshot as of now. Pure: no side effects.
func ComputeSLA(c *domain.Case, now time.Time) SLA {
	remaining := c.DueAt.Sub(now)
	return SLA{
		Age:       now.Sub(c.CreatedAt),
		Remaining: remaining,
		Overdue:   remaining < 0 && !c.Status.Terminal(),
	}
}

func caseTitle(decisionType string, formData map[string]any) string {
	if name, ok := formData["name"].(string); ok && name != "" {
		return name + " (" + decisionType + ")"
	}
	return strings.ToUpper(decisionType) + " submission"
}

// buildSearchableText matches the whitespace-collapsed, lowercased form
// the store's free-text filter expects (spec.md §4.1).
func buildSearchableText(decisionType string, formData map[string]any) string {
	var parts []string
	parts = append(parts, decisionType)
	for _, key := range []string{"name", "license", "address", "state", "specialty", "email"} {
		if v, ok := formData[key].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// hashBlob returns the hex-encoded SHA-256 of r's contents, writing the
// same bytes to w as it reads them — used so UploadAttachment can hash
// and persist a blob in a single pass.
func hashBlob(w io.Writer, r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(w, h), r)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func attachmentPath(root, caseID, attachmentID, ext string) string {
	return filepath.Join(root, caseID, attachmentID+ext)
}

// ensureDir creates dir (and parents) if absent.
func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
