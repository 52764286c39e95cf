package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/autocomply/casework/pkg/domain"
)

// CreateAttachment inserts attachment metadata; the blob itself is
// written to the filesystem by the caller before this call.
func (s *Store) CreateAttachment(ctx context.Context, a *domain.Attachment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (
			id, case_id, submission_id, filename, content_type, size_bytes,
			storage_path, uploaded_by, description, original_sha256, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CaseID, nullable(a.SubmissionID), a.Filename, a.ContentType, a.SizeBytes,
		a.StoragePath, nullable(a.UploadedBy), a.Description, a.OriginalSHA256, a.CreatedAt,
	)
	return wrapErr("create attachment", err)
}

// GetAttachment loads a single attachment by ID.
func (s *Store) GetAttachment(ctx context.Context, id string) (*domain.Attachment, error) {
	row := s.db.QueryRowContext(ctx, attachmentSelectColumns+` FROM attachments WHERE id = ?`, id)
	return scanAttachment(row)
}

// ListAttachments returns every attachment for a case, newest-first.
func (s *Store) ListAttachments(ctx context.Context, caseID string) ([]*domain.Attachment, error) {
	rows, err := s.db.QueryContext(ctx,
		attachmentSelectColumns+` FROM attachments WHERE case_id = ? ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, wrapErr("list attachments", err)
	}
	defer rows.Close()

	var out []*domain.Attachment
	for rows.Next() {
		a, err := scanAttachmentRows(rows)
		if err != nil {
			return nil, wrapErr("scan attachment", err)
		}
		out = append(out, a)
	}
	return out, wrapErr("list attachments", rows.Err())
}

// SoftDeleteAttachment marks an attachment deleted without removing its
// metadata row or blob file; the blob is swept later by retention.
func (s *Store) SoftDeleteAttachment(ctx context.Context, id, deletedBy, reason string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE attachments
		SET is_deleted = 1, deleted_at = ?, deleted_by = ?, delete_reason = ?
		WHERE id = ?`, at, nullable(deletedBy), reason, id)
	if err != nil {
		return wrapErr("soft delete attachment", err)
	}
	return requireRowAffected(res, "attachment", id)
}

// RedactAttachment marks an attachment redacted; downloads return
// UnavailableForLegalReasons until un-redacted (spec.md §7).
func (s *Store) RedactAttachment(ctx context.Context, id, redactedBy, reason string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE attachments
		SET is_redacted = 1, redacted_at = ?, redacted_by = ?, redact_reason = ?
		WHERE id = ?`, at, nullable(redactedBy), reason, id)
	if err != nil {
		return wrapErr("redact attachment", err)
	}
	return requireRowAffected(res, "attachment", id)
}

// ListSoftDeletedAttachmentsForPurge returns every soft-deleted
// attachment, across all cases, whose deleted_at precedes cutoff and
// whose blob has not yet been purged (spec.md §7's "physical file
// retained until retention sweep").
func (s *Store) ListSoftDeletedAttachmentsForPurge(ctx context.Context, cutoff time.Time) ([]*domain.Attachment, error) {
	rows, err := s.db.QueryContext(ctx,
		attachmentSelectColumns+` FROM attachments
			WHERE is_deleted = 1 AND blob_purged_at IS NULL AND deleted_at < ?
			ORDER BY deleted_at ASC`, cutoff)
	if err != nil {
		return nil, wrapErr("list attachments for purge", err)
	}
	defer rows.Close()

	var out []*domain.Attachment
	for rows.Next() {
		a, err := scanAttachmentRows(rows)
		if err != nil {
			return nil, wrapErr("scan attachment", err)
		}
		out = append(out, a)
	}
	return out, wrapErr("list attachments for purge", rows.Err())
}

// MarkAttachmentBlobPurged records that an attachment's physical blob
// file has been removed from disk; the metadata row is retained.
func (s *Store) MarkAttachmentBlobPurged(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE attachments SET blob_purged_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return wrapErr("mark attachment blob purged", err)
	}
	return requireRowAffected(res, "attachment", id)
}

const attachmentSelectColumns = `
	SELECT id, case_id, submission_id, filename, content_type, size_bytes,
	       storage_path, uploaded_by, description, original_sha256,
	       is_deleted, deleted_at, deleted_by, delete_reason,
	       is_redacted, redacted_at, redacted_by, redact_reason,
	       blob_purged_at, created_at`

func scanAttachment(row *sql.Row) (*domain.Attachment, error) {
	var a domain.Attachment
	var submissionID, uploadedBy, deletedBy, redactedBy sql.NullString
	var deletedAt, redactedAt, blobPurgedAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.CaseID, &submissionID, &a.Filename, &a.ContentType, &a.SizeBytes,
		&a.StoragePath, &uploadedBy, &a.Description, &a.OriginalSHA256,
		&a.IsDeleted, &deletedAt, &deletedBy, &a.DeleteReason,
		&a.IsRedacted, &redactedAt, &redactedBy, &a.RedactReason, &blobPurgedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, wrapErr("get attachment", err)
	}
	applyAttachmentNullables(&a, submissionID, uploadedBy, deletedBy, redactedBy, deletedAt, redactedAt, blobPurgedAt)
	return &a, nil
}

func scanAttachmentRows(rows *sql.Rows) (*domain.Attachment, error) {
	var a domain.Attachment
	var submissionID, uploadedBy, deletedBy, redactedBy sql.NullString
	var deletedAt, redactedAt, blobPurgedAt sql.NullTime

	err := rows.Scan(
		&a.ID, &a.CaseID, &submissionID, &a.Filename, &a.ContentType, &a.SizeBytes,
		&a.StoragePath, &uploadedBy, &a.Description, &a.OriginalSHA256,
		&a.IsDeleted, &deletedAt, &deletedBy, &a.DeleteReason,
		&a.IsRedacted, &redactedAt, &redactedBy, &a.RedactReason, &blobPurgedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	applyAttachmentNullables(&a, submissionID, uploadedBy, deletedBy, redactedBy, deletedAt, redactedAt, blobPurgedAt)
	return &a, nil
}

func applyAttachmentNullables(a *domain.Attachment, submissionID, uploadedBy, deletedBy, redactedBy sql.NullString, deletedAt, redactedAt, blobPurgedAt sql.NullTime) {
	a.SubmissionID = submissionID.String
	a.UploadedBy = uploadedBy.String
	a.DeletedBy = deletedBy.String
	a.RedactedBy = redactedBy.String
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	if redactedAt.Valid {
		t := redactedAt.Time
		a.RedactedAt = &t
	}
	if blobPurgedAt.Valid {
		t := blobPurgedAt.Time
		a.BlobPurgedAt = &t
	}
}
