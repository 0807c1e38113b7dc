package storage

// SchemaVersion is the current ledger schema version.
const SchemaVersion = 1

// Schema creates the ledger tables. Timestamps are stored as Unix
// nanoseconds so range filters compare numerically.
const Schema = `
CREATE TABLE IF NOT EXISTS usage_entries (
    id TEXT PRIMARY KEY,
    request_id TEXT,
    user_id TEXT NOT NULL,
    model TEXT NOT NULL,

    status TEXT NOT NULL,
    error_type TEXT,
    error_message TEXT,

    query_chars INTEGER NOT NULL DEFAULT 0,
    file_backed INTEGER NOT NULL DEFAULT 0,
    queued INTEGER NOT NULL DEFAULT 0,
    queue_wait_ms INTEGER NOT NULL DEFAULT 0,
    latency_ms INTEGER NOT NULL DEFAULT 0,

    input_tokens INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    total_tokens INTEGER NOT NULL DEFAULT 0,

    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_entries_created_at ON usage_entries(created_at);
CREATE INDEX IF NOT EXISTS idx_usage_entries_user_created ON usage_entries(user_id, created_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads the highest recorded schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`

const insertEntry = `
INSERT INTO usage_entries (
    id, request_id, user_id, model,
    status, error_type, error_message,
    query_chars, file_backed, queued, queue_wait_ms, latency_ms,
    input_tokens, output_tokens, total_tokens,
    created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `
    id, request_id, user_id, model,
    status, error_type, error_message,
    query_chars, file_backed, queued, queue_wait_ms, latency_ms,
    input_tokens, output_tokens, total_tokens,
    created_at
`
