package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/autocomply/casework/pkg/actor"
	"github.com/autocomply/casework/pkg/domain"
	"github.com/autocomply/casework/pkg/recompute"
)

// UploadAttachment validates filename/content-type/size, writes the blob
// to {uploadsRoot}/{case_id}/{attachment_id}.{ext}, persists metadata, and
// emits attachment_added (spec.md §4.7, §6.4).
func (w *Workflow) UploadAttachment(ctx context.Context, caseID, filename, contentType string, size int64, r io.Reader, uploadedBy, description string, act actor.Actor) (*domain.Attachment, error) {
	c, err := w.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := w.guardWritable(ctx, c); err != nil {
		return nil, err
	}
	if !domain.AcceptedAttachmentContentTypes[contentType] {
		return nil, domain.BadRequest("unsupported content type " + contentType)
	}
	if size > domain.MaxAttachmentSizeBytes {
		return nil, domain.BadRequest(fmt.Sprintf("attachment exceeds max size of %d bytes", domain.MaxAttachmentSizeBytes))
	}

	id := uuid.New().String()
	ext := filepath.Ext(filename)
	path := attachmentPath(w.uploadsRoot, caseID, id, ext)
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return nil, domain.Internal("create upload directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, domain.Internal("create attachment blob", err)
	}
	defer f.Close()

	sum, written, err := hashBlob(f, io.LimitReader(r, domain.MaxAttachmentSizeBytes+1))
	if err != nil {
		os.Remove(path)
		return nil, domain.Internal("write attachment blob", err)
	}
	if written > domain.MaxAttachmentSizeBytes {
		os.Remove(path)
		return nil, domain.BadRequest(fmt.Sprintf("attachment exceeds max size of %d bytes", domain.MaxAttachmentSizeBytes))
	}

	a := &domain.Attachment{
		ID: id, CaseID: caseID, SubmissionID: c.SubmissionID, Filename: filename,
		ContentType: contentType, SizeBytes: written, StoragePath: path,
		UploadedBy: uploadedBy, Description: description, OriginalSHA256: sum,
		CreatedAt: time.Now().UTC(),
	}
	if err := w.store.CreateAttachment(ctx, a); err != nil {
		os.Remove(path)
		return nil, err
	}

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: caseID, CreatedAt: a.CreatedAt,
		EventType: domain.EventAttachmentAdded, ActorRole: act.Role, ActorID: act.ID,
		Message:     "attachment added",
		PayloadJSON: map[string]any{"attachment_id": a.ID, "filename": filename},
	}
	if err := w.store.AppendEvent(ctx, ev); err != nil {
		return nil, err
	}

	w.recompute.MaybeRecompute(ctx, caseID, "attachment uploaded", recompute.DefaultThrottleSeconds, act.Role)
	return a, nil
}

// DownloadAttachment gates on the attachment's deletion/redaction flags
// (spec.md §7: Gone for soft-deleted, UnavailableForLegalReasons for
// redacted) and, if permitted, returns an open handle on the blob along
// with its metadata. The caller is responsible for closing the handle.
func (w *Workflow) DownloadAttachment(ctx context.Context, caseID, attachmentID string, act actor.Actor) (*domain.Attachment, io.ReadCloser, error) {
	a, err := w.store.GetAttachment(ctx, attachmentID)
	if err != nil {
		return nil, nil, err
	}
	if a.CaseID != caseID {
		return nil, nil, domain.BadRequest("attachment " + attachmentID + " is not owned by case " + caseID)
	}
	if a.IsDeleted {
		return nil, nil, domain.Gone("attachment has been deleted")
	}
	if a.IsRedacted {
		return nil, nil, domain.UnavailableForLegalReasons("attachment has been redacted")
	}

	f, err := os.Open(a.StoragePath)
	if err != nil {
		return nil, nil, domain.Internal("open attachment blob", err)
	}

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: caseID, CreatedAt: time.Now().UTC(),
		EventType: domain.EventAttachmentDownloaded, ActorRole: act.Role, ActorID: act.ID,
		Message:     "attachment downloaded",
		PayloadJSON: map[string]any{"attachment_id": attachmentID},
	}
	if err := w.store.AppendEvent(ctx, ev); err != nil {
		f.Close()
		return nil, nil, err
	}
	return a, f, nil
}

// SoftDeleteAttachment flags an attachment as deleted; the blob is
// removed later by the retention sweep, not here.
func (w *Workflow) SoftDeleteAttachment(ctx context.Context, caseID, attachmentID, reason string, act actor.Actor) error {
	a, err := w.store.GetAttachment(ctx, attachmentID)
	if err != nil {
		return err
	}
	if a.CaseID != caseID {
		return domain.BadRequest("attachment " + attachmentID + " is not owned by case " + caseID)
	}

	now := time.Now().UTC()
	if err := w.store.SoftDeleteAttachment(ctx, attachmentID, act.ID, reason, now); err != nil {
		return err
	}

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: caseID, CreatedAt: now,
		EventType: domain.EventAttachmentDeleted, ActorRole: act.Role, ActorID: act.ID,
		Message:     "attachment deleted",
		PayloadJSON: map[string]any{"attachment_id": attachmentID, "reason": reason},
	}
	return w.store.AppendEvent(ctx, ev)
}

// RedactAttachment flags an attachment as redacted; downloads are blocked
// with UnavailableForLegalReasons until un-redacted.
func (w *Workflow) RedactAttachment(ctx context.Context, caseID, attachmentID, reason string, act actor.Actor) error {
	a, err := w.store.GetAttachment(ctx, attachmentID)
	if err != nil {
		return err
	}
	if a.CaseID != caseID {
		return domain.BadRequest("attachment " + attachmentID + " is not owned by case " + caseID)
	}

	now := time.Now().UTC()
	if err := w.store.RedactAttachment(ctx, attachmentID, act.ID, reason, now); err != nil {
		return err
	}

	ev := &domain.CaseEvent{
		ID: uuid.New().String(), CaseID: caseID, CreatedAt: now,
		EventType: domain.EventAttachmentRedacted, ActorRole: act.Role, ActorID: act.ID,
		Message:     "attachment redacted",
		PayloadJSON: map[string]any{"attachment_id": attachmentID, "reason": reason},
	}
	return w.store.AppendEvent(ctx, ev)
}

// ListAttachments returns every attachment for a case.
func (w *Workflow) ListAttachments(ctx context.Context, caseID string) ([]*domain.Attachment, error) {
	return w.store.ListAttachments(ctx, caseID)
}
