package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/autocomply/casework/pkg/domain"
)

// CreateCase inserts a new case row, derived from a submission or standing
// alone (SubmissionID empty).
func (s *Store) CreateCase(ctx context.Context, c *domain.Case) error {
	packetIDs, _ := json.Marshal(c.PacketEvidenceIDs)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cases (
			id, submission_id, decision_type, title, summary, status,
			assigned_to, assigned_at, due_at, packet_evidence_ids,
			searchable_text, reviewer_notes, admin_notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, nullable(c.SubmissionID), c.DecisionType, c.Title, c.Summary, string(c.Status),
		nullable(c.AssignedTo), nullableTime(c.AssignedAt), c.DueAt, string(packetIDs),
		c.SearchableText, c.ReviewerNotes, c.AdminNotes, c.CreatedAt, c.UpdatedAt,
	)
	return wrapErr("create case", err)
}

// GetCase loads a case by ID.
func (s *Store) GetCase(ctx context.Context, id string) (*domain.Case, error) {
	row := s.db.QueryRowContext(ctx, caseSelectColumns+` FROM cases WHERE id = ?`, id)
	return scanCase(row)
}

// GetCaseTx loads a case by ID inside an existing transaction — used by
// callers that need to lock the case row for the duration of a multi-step
// mutation (spec.md §5 "writers to the same case must serialize").
func (s *Store) GetCaseTx(ctx context.Context, tx *sql.Tx, id string) (*domain.Case, error) {
	row := tx.QueryRowContext(ctx, caseSelectColumns+` FROM cases WHERE id = ?`, id)
	return scanCase(row)
}

const caseSelectColumns = `
	SELECT id, submission_id, decision_type, title, summary, status,
	       assigned_to, assigned_at, due_at, packet_evidence_ids,
	       searchable_text, reviewer_notes, admin_notes, created_at, updated_at`

func scanCase(row *sql.Row) (*domain.Case, error) {
	var c domain.Case
	var submissionID, assignedTo sql.NullString
	var assignedAt sql.NullTime
	var packetIDs string

	err := row.Scan(
		&c.ID, &submissionID, &c.DecisionType, &c.Title, &c.Summary, &c.Status,
		&assignedTo, &assignedAt, &c.DueAt, &packetIDs,
		&c.SearchableText, &c.ReviewerNotes, &c.AdminNotes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, wrapErr("get case", err)
	}

	c.SubmissionID = submissionID.String
	c.AssignedTo = assignedTo.String
	if assignedAt.Valid {
		t := assignedAt.Time
		c.AssignedAt = &t
	}
	if packetIDs != "" {
		json.Unmarshal([]byte(packetIDs), &c.PacketEvidenceIDs)
	}
	return &c, nil
}

// UpdateCaseWithEvent persists the full case row and appends an event in
// one transaction — the pattern spec.md §4.1 requires for every case
// mutation (status change, assignment, notes, packet updates) so the
// timeline never drifts from the case's visible state.
func (s *Store) UpdateCaseWithEvent(ctx context.Context, c *domain.Case, ev *domain.CaseEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		packetIDs, _ := json.Marshal(c.PacketEvidenceIDs)

		res, err := tx.ExecContext(ctx, `
			UPDATE cases SET
				title = ?, summary = ?, status = ?, assigned_to = ?, assigned_at = ?,
				packet_evidence_ids = ?, searchable_text = ?, reviewer_notes = ?,
				admin_notes = ?, updated_at = ?
			WHERE id = ?`,
			c.Title, c.Summary, string(c.Status), nullable(c.AssignedTo), nullableTime(c.AssignedAt),
			string(packetIDs), c.SearchableText, c.ReviewerNotes, c.AdminNotes, c.UpdatedAt, c.ID,
		)
		if err != nil {
			return wrapErr("update case", err)
		}
		if err := requireRowAffected(res, "case", c.ID); err != nil {
			return err
		}

		if ev != nil {
			if err := insertEvent(ctx, tx, ev); err != nil {
				return err
			}
		}
		return nil
	})
}

// CaseFilters is the filter set accepted by ListCases (spec.md §4.1).
type CaseFilters struct {
	Status       string
	AssignedTo   string
	DecisionType string
	Query        string // free-text, matched against searchable_text
	Overdue      bool
	Unassigned   bool
	Limit        int
	Offset       int
	Now          time.Time // clock used to evaluate Overdue
}

// ListCases returns cases matching filters, sorted newest-first by
// created_at.
func (s *Store) ListCases(ctx context.Context, f CaseFilters) ([]*domain.Case, error) {
	var conditions []string
	var args []any

	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if f.AssignedTo != "" {
		conditions = append(conditions, "assigned_to = ?")
		args = append(args, f.AssignedTo)
	}
	if f.DecisionType != "" {
		conditions = append(conditions, "decision_type = ?")
		args = append(args, f.DecisionType)
	}
	if f.Query != "" {
		conditions = append(conditions, "searchable_text LIKE ?")
		args = append(args, "%"+normalizeSearchText(f.Query)+"%")
	}
	if f.Unassigned {
		conditions = append(conditions, "(assigned_to IS NULL OR assigned_to = '')")
	}
	if f.Overdue {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		conditions = append(conditions, fmt.Sprintf("due_at < ? AND status NOT IN (%s)", terminalStatusList()))
		args = append(args, now)
	}

	query := `SELECT id, submission_id, decision_type, title, summary, status,
	       assigned_to, assigned_at, due_at, packet_evidence_ids,
	       searchable_text, reviewer_notes, admin_notes, created_at, updated_at
		FROM cases`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := 100
	if f.Limit > 0 {
		limit = f.Limit
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list cases", err)
	}
	defer rows.Close()

	var cases []*domain.Case
	for rows.Next() {
		c, err := scanCaseRows(rows)
		if err != nil {
			return nil, wrapErr("scan case", err)
		}
		cases = append(cases, c)
	}
	return cases, wrapErr("list cases", rows.Err())
}

func scanCaseRows(rows *sql.Rows) (*domain.Case, error) {
	var c domain.Case
	var submissionID, assignedTo sql.NullString
	var assignedAt sql.NullTime
	var packetIDs string

	err := rows.Scan(
		&c.ID, &submissionID, &c.DecisionType, &c.Title, &c.Summary, &c.Status,
		&assignedTo, &assignedAt, &c.DueAt, &packetIDs,
		&c.SearchableText, &c.ReviewerNotes, &c.AdminNotes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.SubmissionID = submissionID.String
	c.AssignedTo = assignedTo.String
	if assignedAt.Valid {
		t := assignedAt.Time
		c.AssignedAt = &t
	}
	if packetIDs != "" {
		json.Unmarshal([]byte(packetIDs), &c.PacketEvidenceIDs)
	}
	return &c, nil
}

// DeleteCase removes a case and cascades to its evidence, events, and
// attachment metadata via the schema's ON DELETE CASCADE foreign keys
// (spec.md §4.1). Attachment blob files are not touched here; they are
// swept by retention. The intelligence history chain lives in a separate
// database and must be deleted by the caller via the intelligence
// package before or after this call.
func (s *Store) DeleteCase(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete case", err)
	}
	return requireRowAffected(res, "case", id)
}

// terminalStatusList returns a SQL IN-list literal of terminal statuses.
func terminalStatusList() string {
	statuses := []domain.CaseStatus{
		domain.CaseApproved, domain.CaseRejected, domain.CaseBlocked, domain.CaseClosed,
	}
	quoted := make([]string, len(statuses))
	for i, st := range statuses {
		quoted[i] = "'" + string(st) + "'"
	}
	return strings.Join(quoted, ", ")
}

// normalizeSearchText matches the whitespace-collapsed, lowercased form
// searchable_text is stored in (spec.md §4.1), so a query built from raw
// user input still matches.
func normalizeSearchText(q string) string {
	fields := strings.Fields(strings.ToLower(q))
	return strings.Join(fields, " ")
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
