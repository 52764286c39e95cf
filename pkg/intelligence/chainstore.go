// Package intelligence implements the Intelligence Repository of
// spec.md §4.3: confidence computation over Rule Engine results, backed
// by an append-only history chain that lives in its own SQLite database
// (a separate driver and file from the primary store), so the chain's
// "no update, no single-row delete" invariant is enforced by the Go API
// surface itself rather than by discipline alone.
package intelligence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/autocomply/casework/pkg/domain"
)

// ChainConfig configures the chain store's SQLite database.
type ChainConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// DefaultChainConfig returns the default chain-store configuration.
func DefaultChainConfig() *ChainConfig {
	return &ChainConfig{
		Path:        "data/intelligence_chain.db",
		BusyTimeout: 5 * time.Second,
	}
}

// ChainStore is the append-only intelligence history chain.
type ChainStore struct {
	db *sql.DB
}

// NewChainStore opens (creating if absent) the chain database and
// applies its schema.
func NewChainStore(config *ChainConfig) (*ChainStore, error) {
	if config == nil {
		config = DefaultChainConfig()
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, domain.Internal("open intelligence chain database", err)
	}

	busyMs := config.BusyTimeout.Milliseconds()
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyMs)); err != nil {
		db.Close()
		return nil, domain.Internal("set chain busy timeout", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, domain.Internal("enable chain wal mode", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, domain.Internal("create chain schema", err)
	}
	if _, err := db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		db.Close()
		return nil, domain.Internal("insert chain schema version", err)
	}

	return &ChainStore{db: db}, nil
}

// Close releases the chain database handle.
func (c *ChainStore) Close() error {
	if err := c.db.Close(); err != nil {
		return domain.Internal("close chain store", err)
	}
	return nil
}

// Append inserts a new history entry. Callers are responsible for
// resolving PreviousRunID before calling Append — this method performs
// no implicit linking, preserving the Intelligence Repository's control
// of the chain algorithm (spec.md §4.3 step 6).
func (c *ChainStore) Append(ctx context.Context, e *domain.IntelligenceHistoryEntry) error {
	payload, err := json.Marshal(e.PayloadJSON)
	if err != nil {
		return domain.Internal("encode history payload", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO intelligence_history (
			id, case_id, computed_at, confidence_score, confidence_band,
			rules_passed, rules_total, gap_count, bias_count, trigger,
			actor_role, input_hash, previous_run_id, payload_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CaseID, e.ComputedAt, e.ConfidenceScore, string(e.ConfidenceBand),
		e.RulesPassed, e.RulesTotal, e.GapCount, e.BiasCount, string(e.Trigger),
		string(e.ActorRole), e.InputHash, nullableStr(e.PreviousRunID), string(payload),
	)
	if err != nil {
		return domain.Internal("append history entry", err)
	}
	return nil
}

// Latest returns the most recent history entry for caseID, or nil if the
// case has no history yet.
func (c *ChainStore) Latest(ctx context.Context, caseID string) (*domain.IntelligenceHistoryEntry, error) {
	row := c.db.QueryRowContext(ctx, selectColumns+`
		FROM intelligence_history WHERE case_id = ? ORDER BY computed_at DESC LIMIT 1`, caseID)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal("load latest history entry", err)
	}
	return e, nil
}

// History returns a case's full history, oldest-first (the ordering
// VerifyChain and audit export both expect).
func (c *ChainStore) History(ctx context.Context, caseID string) ([]domain.IntelligenceHistoryEntry, error) {
	rows, err := c.db.QueryContext(ctx, selectColumns+`
		FROM intelligence_history WHERE case_id = ? ORDER BY computed_at ASC`, caseID)
	if err != nil {
		return nil, domain.Internal("load history", err)
	}
	defer rows.Close()

	var out []domain.IntelligenceHistoryEntry
	for rows.Next() {
		e, err := scanEntryRows(rows)
		if err != nil {
			return nil, domain.Internal("scan history entry", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal("load history", err)
	}
	return out, nil
}

// DeleteCaseHistory removes every history entry for caseID — the only
// deletion this package exposes, used when a case itself is deleted
// (spec.md §4.1 cascade rule).
func (c *ChainStore) DeleteCaseHistory(ctx context.Context, caseID string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM intelligence_history WHERE case_id = ?`, caseID); err != nil {
		return domain.Internal("delete case history", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, case_id, computed_at, confidence_score, confidence_band,
	       rules_passed, rules_total, gap_count, bias_count, trigger,
	       actor_role, input_hash, previous_run_id, payload_json`

func scanEntry(row *sql.Row) (*domain.IntelligenceHistoryEntry, error) {
	var e domain.IntelligenceHistoryEntry
	var band, trigger, actorRole string
	var previousRunID sql.NullString
	var payload string

	err := row.Scan(&e.ID, &e.CaseID, &e.ComputedAt, &e.ConfidenceScore, &band,
		&e.RulesPassed, &e.RulesTotal, &e.GapCount, &e.BiasCount, &trigger,
		&actorRole, &e.InputHash, &previousRunID, &payload)
	if err != nil {
		return nil, err
	}
	applyEntryNullables(&e, band, trigger, actorRole, previousRunID, payload)
	return &e, nil
}

func scanEntryRows(rows *sql.Rows) (*domain.IntelligenceHistoryEntry, error) {
	var e domain.IntelligenceHistoryEntry
	var band, trigger, actorRole string
	var previousRunID sql.NullString
	var payload string

	err := rows.Scan(&e.ID, &e.CaseID, &e.ComputedAt, &e.ConfidenceScore, &band,
		&e.RulesPassed, &e.RulesTotal, &e.GapCount, &e.BiasCount, &trigger,
		&actorRole, &e.InputHash, &previousRunID, &payload)
	if err != nil {
		return nil, err
	}
	applyEntryNullables(&e, band, trigger, actorRole, previousRunID, payload)
	return &e, nil
}

func applyEntryNullables(e *domain.IntelligenceHistoryEntry, band, trigger, actorRole string, previousRunID sql.NullString, payload string) {
	e.ConfidenceBand = domain.ConfidenceBand(band)
	e.Trigger = domain.RecomputeTrigger(trigger)
	e.ActorRole = domain.ActorRole(actorRole)
	e.PreviousRunID = previousRunID.String
	if payload != "" && payload != "null" {
		json.Unmarshal([]byte(payload), &e.PayloadJSON)
	}
}

func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
