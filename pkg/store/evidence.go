package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/autocomply/casework/pkg/domain"
)

// CreateEvidence inserts a new evidence item under a case.
func (s *Store) CreateEvidence(ctx context.Context, e *domain.EvidenceItem) error {
	tags, _ := json.Marshal(e.Tags)
	metadata, _ := json.Marshal(e.Metadata)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evidence_items (
			id, case_id, title, snippet, citation, source_id, tags, metadata,
			included_in_packet, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CaseID, e.Title, e.Snippet, nullable(e.Citation), nullable(e.SourceID),
		string(tags), string(metadata), e.IncludedInPacket, e.CreatedAt,
	)
	return wrapErr("create evidence", err)
}

// ListEvidence returns every evidence item for a case, oldest-first.
func (s *Store) ListEvidence(ctx context.Context, caseID string) ([]*domain.EvidenceItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, title, snippet, citation, source_id, tags, metadata,
		       included_in_packet, created_at
		FROM evidence_items WHERE case_id = ? ORDER BY created_at ASC`, caseID)
	if err != nil {
		return nil, wrapErr("list evidence", err)
	}
	defer rows.Close()

	var items []*domain.EvidenceItem
	for rows.Next() {
		e, err := scanEvidenceRow(rows)
		if err != nil {
			return nil, wrapErr("scan evidence", err)
		}
		items = append(items, e)
	}
	return items, wrapErr("list evidence", rows.Err())
}

// GetEvidence loads a single evidence item, verifying it belongs to
// caseID — callers pass a caller-supplied evidence id to curate a
// packet, and spec.md §7 requires BadRequest (not NotFound) when the id
// belongs to a different case.
func (s *Store) GetEvidence(ctx context.Context, caseID, evidenceID string) (*domain.EvidenceItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, case_id, title, snippet, citation, source_id, tags, metadata,
		       included_in_packet, created_at
		FROM evidence_items WHERE id = ?`, evidenceID)

	e, err := scanEvidence(row)
	if err != nil {
		return nil, err
	}
	if e.CaseID != caseID {
		return nil, domain.BadRequest("evidence " + evidenceID + " is not owned by case " + caseID)
	}
	return e, nil
}

// ValidateEvidenceOwnership checks that every id in ids belongs to
// caseID, returning BadRequest on the first mismatch (spec.md §7) — the
// guard the packet-curation endpoint runs before persisting a new
// packet_evidence_ids list.
func (s *Store) ValidateEvidenceOwnership(ctx context.Context, caseID string, ids []string) error {
	for _, id := range ids {
		if _, err := s.GetEvidence(ctx, caseID, id); err != nil {
			return err
		}
	}
	return nil
}

// ListEvidenceOlderThan returns evidence items across all cases whose
// created_at precedes cutoff, for the retention sweep (spec.md §4.5).
func (s *Store) ListEvidenceOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.EvidenceItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, title, snippet, citation, source_id, tags, metadata,
		       included_in_packet, created_at
		FROM evidence_items WHERE created_at < ? ORDER BY created_at ASC`, cutoff)
	if err != nil {
		return nil, wrapErr("list evidence older than cutoff", err)
	}
	defer rows.Close()

	var items []*domain.EvidenceItem
	for rows.Next() {
		e, err := scanEvidenceRow(rows)
		if err != nil {
			return nil, wrapErr("scan evidence", err)
		}
		items = append(items, e)
	}
	return items, wrapErr("list evidence older than cutoff", rows.Err())
}

// RemoveEvidence deletes an evidence item.
func (s *Store) RemoveEvidence(ctx context.Context, evidenceID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM evidence_items WHERE id = ?`, evidenceID)
	if err != nil {
		return wrapErr("remove evidence", err)
	}
	return requireRowAffected(res, "evidence", evidenceID)
}

func scanEvidence(row *sql.Row) (*domain.EvidenceItem, error) {
	var e domain.EvidenceItem
	var citation, sourceID, tags, metadata sql.NullString

	err := row.Scan(&e.ID, &e.CaseID, &e.Title, &e.Snippet, &citation, &sourceID,
		&tags, &metadata, &e.IncludedInPacket, &e.CreatedAt)
	if err != nil {
		return nil, wrapErr("get evidence", err)
	}
	e.Citation = citation.String
	e.SourceID = sourceID.String
	if tags.Valid && tags.String != "" && tags.String != "null" {
		json.Unmarshal([]byte(tags.String), &e.Tags)
	}
	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		json.Unmarshal([]byte(metadata.String), &e.Metadata)
	}
	return &e, nil
}

func scanEvidenceRow(rows *sql.Rows) (*domain.EvidenceItem, error) {
	var e domain.EvidenceItem
	var citation, sourceID, tags, metadata sql.NullString

	err := rows.Scan(&e.ID, &e.CaseID, &e.Title, &e.Snippet, &citation, &sourceID,
		&tags, &metadata, &e.IncludedInPacket, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Citation = citation.String
	e.SourceID = sourceID.String
	if tags.Valid && tags.String != "" && tags.String != "null" {
		json.Unmarshal([]byte(tags.String), &e.Tags)
	}
	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		json.Unmarshal([]byte(metadata.String), &e.Metadata)
	}
	return &e, nil
}
