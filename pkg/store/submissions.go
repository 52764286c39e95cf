package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/autocomply/casework/pkg/domain"
)

// CreateSubmission inserts a new submission row.
func (s *Store) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	formData, err := json.Marshal(sub.FormData)
	if err != nil {
		return domain.BadRequest("encode form_data: " + err.Error())
	}
	rawPayload, _ := json.Marshal(sub.RawPayload)
	evaluatorOutput, _ := json.Marshal(sub.EvaluatorOutput)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (
			id, decision_type, submitted_by, account_id, location_id,
			form_data, raw_payload, evaluator_output, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.DecisionType, nullable(sub.SubmittedBy), nullable(sub.AccountID), nullable(sub.LocationID),
		string(formData), string(rawPayload), string(evaluatorOutput), string(sub.Status), sub.CreatedAt,
	)
	return wrapErr("create submission", err)
}

// GetSubmission loads a submission by ID.
func (s *Store) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, decision_type, submitted_by, account_id, location_id,
		       form_data, raw_payload, evaluator_output, status, created_at
		FROM submissions WHERE id = ?`, id)
	return scanSubmission(row)
}

// UpdateSubmission persists changes to an existing submission's mutable
// fields (form_data, raw_payload, evaluator_output, status).
func (s *Store) UpdateSubmission(ctx context.Context, sub *domain.Submission) error {
	formData, err := json.Marshal(sub.FormData)
	if err != nil {
		return domain.BadRequest("encode form_data: " + err.Error())
	}
	rawPayload, _ := json.Marshal(sub.RawPayload)
	evaluatorOutput, _ := json.Marshal(sub.EvaluatorOutput)

	res, err := s.db.ExecContext(ctx, `
		UPDATE submissions
		SET form_data = ?, raw_payload = ?, evaluator_output = ?, status = ?
		WHERE id = ?`,
		string(formData), string(rawPayload), string(evaluatorOutput), string(sub.Status), sub.ID,
	)
	if err != nil {
		return wrapErr("update submission", err)
	}
	return requireRowAffected(res, "submission", sub.ID)
}

// CancelSubmission marks a submission cancelled; once cancelled it (and
// its linked case) becomes read-only (spec.md §4.7).
func (s *Store) CancelSubmission(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET status = ? WHERE id = ?`,
		string(domain.SubmissionCancelled), id,
	)
	if err != nil {
		return wrapErr("cancel submission", err)
	}
	return requireRowAffected(res, "submission", id)
}

func scanSubmission(row *sql.Row) (*domain.Submission, error) {
	var sub domain.Submission
	var submittedBy, accountID, locationID, formData, rawPayload, evaluatorOutput, status sql.NullString

	err := row.Scan(
		&sub.ID, &sub.DecisionType, &submittedBy, &accountID, &locationID,
		&formData, &rawPayload, &evaluatorOutput, &status, &sub.CreatedAt,
	)
	if err != nil {
		return nil, wrapErr("get submission", err)
	}

	sub.SubmittedBy = submittedBy.String
	sub.AccountID = accountID.String
	sub.LocationID = locationID.String
	sub.Status = domain.SubmissionStatus(status.String)

	if formData.Valid && formData.String != "" {
		if err := json.Unmarshal([]byte(formData.String), &sub.FormData); err != nil {
			return nil, domain.Internal("decode form_data", err)
		}
	}
	if rawPayload.Valid && rawPayload.String != "" && rawPayload.String != "null" {
		json.Unmarshal([]byte(rawPayload.String), &sub.RawPayload)
	}
	if evaluatorOutput.Valid && evaluatorOutput.String != "" && evaluatorOutput.String != "null" {
		json.Unmarshal([]byte(evaluatorOutput.String), &sub.EvaluatorOutput)
	}

	return &sub, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRowAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Internal("check rows affected", err)
	}
	if n == 0 {
		return domain.NotFound(entity + " " + id + " not found")
	}
	return nil
}
