package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"vadapro/analyzer/pkg/config"
	"vadapro/analyzer/pkg/ledger"
)

const backendSQLite = "sqlite"

// SQLiteStorage implements ledger.Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config config.SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the database at cfg.Path and
// applies the schema.
func NewSQLiteStorage(cfg config.SQLiteConfig) (*SQLiteStorage, error) {
	if cfg.Path == "" {
		return nil, ledger.NewStorageError(backendSQLite, "open", fmt.Errorf("path is empty"))
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 1
	}

	logger := slog.Default().With("component", "ledger.storage.sqlite")

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, ledger.NewStorageError(backendSQLite, "mkdir", err)
		}
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.Path, cfg.BusyTimeout.Milliseconds())
	if cfg.WALMode {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, ledger.NewStorageError(backendSQLite, "open", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite ledger initialized",
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
		"max_open_conns", cfg.MaxOpenConns,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return ledger.NewStorageError(backendSQLite, "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return ledger.NewStorageError(backendSQLite, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return ledger.NewStorageError(backendSQLite, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return ledger.NewStorageError(backendSQLite, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Store inserts entry.
func (s *SQLiteStorage) Store(ctx context.Context, e *ledger.Entry) error {
	_, err := s.db.ExecContext(ctx, insertEntry,
		e.ID, e.RequestID, e.UserID, e.Model,
		string(e.Status), e.ErrorType, e.ErrorMessage,
		e.QueryChars, e.FileBacked, e.Queued, e.QueueWaitMs, e.LatencyMs,
		e.InputTokens, e.OutputTokens, e.TotalTokens,
		e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return ledger.NewStorageError(backendSQLite, "store", err)
	}
	return nil
}

// Query returns the matching entries, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, q *ledger.Query) ([]*ledger.Entry, error) {
	where, args := buildWhereClause(q)

	stmt := "SELECT " + selectColumns + " FROM usage_entries"
	if where != "" {
		stmt += " WHERE " + where
	}
	stmt += " ORDER BY created_at DESC"
	if q != nil && (q.Limit > 0 || q.Offset > 0) {
		limit := q.Limit
		if limit <= 0 {
			limit = -1
		}
		stmt += " LIMIT ? OFFSET ?"
		args = append(args, limit, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, ledger.NewStorageError(backendSQLite, "query", err)
	}
	defer rows.Close()

	var out []*ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, ledger.NewStorageError(backendSQLite, "scan", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewStorageError(backendSQLite, "query", err)
	}
	return out, nil
}

// Count returns the number of matching entries.
func (s *SQLiteStorage) Count(ctx context.Context, q *ledger.Query) (int64, error) {
	where, args := buildWhereClause(q)

	stmt := "SELECT COUNT(*) FROM usage_entries"
	if where != "" {
		stmt += " WHERE " + where
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, ledger.NewStorageError(backendSQLite, "count", err)
	}
	return n, nil
}

// Summarize aggregates the matching entries.
func (s *SQLiteStorage) Summarize(ctx context.Context, q *ledger.Query) (*ledger.Summary, error) {
	where, args := buildWhereClause(q)

	stmt := `SELECT COUNT(*),
        COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
        COALESCE(SUM(input_tokens), 0),
        COALESCE(SUM(output_tokens), 0),
        COALESCE(SUM(total_tokens), 0)
        FROM usage_entries`
	if where != "" {
		stmt += " WHERE " + where
	}

	sum := &ledger.Summary{}
	err := s.db.QueryRowContext(ctx, stmt, args...).Scan(
		&sum.Requests, &sum.Errors, &sum.InputTokens, &sum.OutputTokens, &sum.TotalTokens)
	if err != nil {
		return nil, ledger.NewStorageError(backendSQLite, "summarize", err)
	}
	return sum, nil
}

// Delete removes the matching entries.
func (s *SQLiteStorage) Delete(ctx context.Context, q *ledger.Query) (int64, error) {
	where, args := buildWhereClause(q)

	stmt := "DELETE FROM usage_entries"
	if where != "" {
		stmt += " WHERE " + where
	}

	result, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, ledger.NewStorageError(backendSQLite, "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, ledger.NewStorageError(backendSQLite, "delete", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return ledger.NewStorageError(backendSQLite, "close", err)
	}
	s.logger.Info("SQLite ledger closed")
	return nil
}

// buildWhereClause returns the WHERE clause (without the keyword) and its
// arguments.
func buildWhereClause(q *ledger.Query) (string, []any) {
	if q == nil {
		return "", nil
	}

	var (
		conditions []string
		args       []any
	)
	if q.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, q.UserID)
	}
	if q.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(q.Status))
	}
	if q.StartTime != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, q.StartTime.UnixNano())
	}
	if q.EndTime != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, q.EndTime.UnixNano())
	}
	return strings.Join(conditions, " AND "), args
}

func scanEntry(rows *sql.Rows) (*ledger.Entry, error) {
	var (
		e                                  ledger.Entry
		status                             string
		requestID, errorType, errorMessage sql.NullString
		createdAt                          int64
	)
	err := rows.Scan(
		&e.ID, &requestID, &e.UserID, &e.Model,
		&status, &errorType, &errorMessage,
		&e.QueryChars, &e.FileBacked, &e.Queued, &e.QueueWaitMs, &e.LatencyMs,
		&e.InputTokens, &e.OutputTokens, &e.TotalTokens,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	e.Status = ledger.Status(status)
	e.RequestID = requestID.String
	e.ErrorType = errorType.String
	e.ErrorMessage = errorMessage.String
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	return &e, nil
}
