package intelligence

// SchemaVersion is the current chain-store schema version.
const SchemaVersion = 1

// Schema creates the append-only intelligence history chain in its own
// database file, independent of the primary store (spec.md §4.3, §4.4).
// There is deliberately no UPDATE or single-row DELETE statement anywhere
// in this package: the only way to remove history rows is
// DeleteCaseHistory, which removes an entire case's chain at once
// (mirroring the primary store's cascade-on-case-delete rule).
const Schema = `
CREATE TABLE IF NOT EXISTS intelligence_history (
    id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    computed_at TIMESTAMP NOT NULL,
    confidence_score REAL NOT NULL,
    confidence_band TEXT NOT NULL,
    rules_passed INTEGER NOT NULL,
    rules_total INTEGER NOT NULL,
    gap_count INTEGER NOT NULL,
    bias_count INTEGER NOT NULL,
    trigger TEXT NOT NULL,
    actor_role TEXT NOT NULL,
    input_hash TEXT NOT NULL,
    previous_run_id TEXT,
    payload_json TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_intelligence_history_case_computed
    ON intelligence_history(case_id, computed_at DESC);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
