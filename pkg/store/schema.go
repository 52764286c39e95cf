package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the additive CREATE IF NOT EXISTS statements for the
// primary store (spec.md §4.1, §6.4). Migrations beyond this point must
// only ALTER or add; nothing here may run a destructive rewrite during
// startup.
const Schema = `
CREATE TABLE IF NOT EXISTS submissions (
    id TEXT PRIMARY KEY,
    decision_type TEXT NOT NULL,
    submitted_by TEXT,
    account_id TEXT,
    location_id TEXT,
    form_data TEXT NOT NULL,
    raw_payload TEXT,
    evaluator_output TEXT,
    status TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS cases (
    id TEXT PRIMARY KEY,
    submission_id TEXT,
    decision_type TEXT NOT NULL,
    title TEXT NOT NULL,
    summary TEXT,
    status TEXT NOT NULL,
    assigned_to TEXT,
    assigned_at TIMESTAMP,
    due_at TIMESTAMP NOT NULL,
    packet_evidence_ids TEXT,
    searchable_text TEXT NOT NULL,
    reviewer_notes TEXT,
    admin_notes TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    FOREIGN KEY (submission_id) REFERENCES submissions(id)
);

CREATE TABLE IF NOT EXISTS evidence_items (
    id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    title TEXT NOT NULL,
    snippet TEXT,
    citation TEXT,
    source_id TEXT,
    tags TEXT,
    metadata TEXT,
    included_in_packet BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS case_events (
    id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    event_type TEXT NOT NULL,
    actor_role TEXT NOT NULL,
    actor_id TEXT,
    message TEXT,
    payload_json TEXT,
    FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS attachments (
    id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    submission_id TEXT,
    filename TEXT NOT NULL,
    content_type TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    storage_path TEXT NOT NULL,
    uploaded_by TEXT,
    description TEXT,
    original_sha256 TEXT NOT NULL,
    is_deleted BOOLEAN NOT NULL DEFAULT 0,
    deleted_at TIMESTAMP,
    deleted_by TEXT,
    delete_reason TEXT,
    is_redacted BOOLEAN NOT NULL DEFAULT 0,
    redacted_at TIMESTAMP,
    redacted_by TEXT,
    redact_reason TEXT,
    blob_purged_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status);
CREATE INDEX IF NOT EXISTS idx_cases_assigned_to ON cases(assigned_to);
CREATE INDEX IF NOT EXISTS idx_cases_created_at ON cases(created_at);
CREATE INDEX IF NOT EXISTS idx_cases_searchable_text ON cases(searchable_text);
CREATE INDEX IF NOT EXISTS idx_case_events_case_created ON case_events(case_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_evidence_items_case_id ON evidence_items(case_id);
CREATE INDEX IF NOT EXISTS idx_attachments_case_id ON attachments(case_id);
`

// InsertSchemaVersion records a schema version exactly once.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the highest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
