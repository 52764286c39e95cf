package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/autocomply/casework/pkg/domain"
)

// AppendEvent inserts a case event standalone (outside any other
// mutation's transaction). Prefer UpdateCaseWithEvent when the event
// describes a case mutation that must commit atomically with it.
func (s *Store) AppendEvent(ctx context.Context, ev *domain.CaseEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertEvent(ctx, tx, ev)
	})
}

func insertEvent(ctx context.Context, tx *sql.Tx, ev *domain.CaseEvent) error {
	payload, err := json.Marshal(ev.PayloadJSON)
	if err != nil {
		return domain.Internal("encode event payload", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO case_events (
			id, case_id, created_at, event_type, actor_role, actor_id, message, payload_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.CaseID, ev.CreatedAt, string(ev.EventType), string(ev.ActorRole),
		nullable(ev.ActorID), ev.Message, string(payload),
	)
	return wrapErr("append event", err)
}

// ListEvents returns a case's timeline, newest-first.
func (s *Store) ListEvents(ctx context.Context, caseID string, limit int) ([]*domain.CaseEvent, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, created_at, event_type, actor_role, actor_id, message, payload_json
		FROM case_events
		WHERE case_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, caseID, limit)
	if err != nil {
		return nil, wrapErr("list events", err)
	}
	defer rows.Close()

	var events []*domain.CaseEvent
	for rows.Next() {
		var ev domain.CaseEvent
		var actorID sql.NullString
		var payload string

		if err := rows.Scan(&ev.ID, &ev.CaseID, &ev.CreatedAt, &ev.EventType, &ev.ActorRole, &actorID, &ev.Message, &payload); err != nil {
			return nil, wrapErr("scan event", err)
		}
		ev.ActorID = actorID.String
		if payload != "" && payload != "null" {
			json.Unmarshal([]byte(payload), &ev.PayloadJSON)
		}
		events = append(events, &ev)
	}
	return events, wrapErr("list events", rows.Err())
}
