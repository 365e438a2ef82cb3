package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"quillpress/wordguard/pkg/audit"
)

// SchemaVersion is the current audit schema version.
const SchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS violations (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	subject_id TEXT,
	user_id TEXT,
	matched TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_violations_created_at ON violations(created_at);
CREATE INDEX IF NOT EXISTS idx_violations_user_id ON violations(user_id);
CREATE INDEX IF NOT EXISTS idx_violations_source ON violations(source);
`

// SQLiteConfig configures the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/violations.db",
		MaxOpenConns: 4,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage on SQLite.
type SQLiteStorage struct {
	db        *sql.DB
	config    *SQLiteConfig
	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error

	insertStmt *sql.Stmt
}

// NewSQLiteStorage opens (creating if needed) the audit database.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = DefaultSQLiteConfig().MaxOpenConns
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = DefaultSQLiteConfig().BusyTimeout
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d",
		config.Path, config.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit storage initialized", "path", config.Path)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	stmt, err := s.db.Prepare(`
		INSERT INTO violations (id, source, subject_id, user_id, matched, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return audit.NewStorageError("sqlite", "prepare", err)
	}
	s.insertStmt = stmt
	return nil
}

// Store inserts v.
func (s *SQLiteStorage) Store(ctx context.Context, v *audit.Violation) error {
	if v == nil || v.ID == "" {
		return audit.NewStorageError("sqlite", "store", audit.ErrInvalidViolation)
	}

	matched, err := json.Marshal(v.Matched)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}

	_, err = s.insertStmt.ExecContext(ctx,
		v.ID, v.Source, nullable(v.SubjectID), nullable(v.UserID),
		string(matched), v.ContentHash, v.CreatedAt.UnixNano(),
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns matching violations newest first.
func (s *SQLiteStorage) Query(ctx context.Context, q *audit.Query) ([]*audit.Violation, error) {
	if q == nil {
		q = &audit.Query{}
	}
	if err := q.Validate(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	where, args := buildWhereClause(q)
	query := `SELECT id, source, subject_id, user_id, matched, content_hash, created_at
		FROM violations` + where + ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, q.EffectiveLimit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	out := make([]*audit.Violation, 0)
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	return out, nil
}

// Count returns the number of matching violations.
func (s *SQLiteStorage) Count(ctx context.Context, q *audit.Query) (int64, error) {
	if q == nil {
		q = &audit.Query{}
	}
	where, args := buildWhereClause(q)

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM violations`+where, args...).Scan(&n); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// DeleteOlderThan removes violations created before cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM violations WHERE created_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	if n > 0 {
		s.logger.Info("deleted old violations", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database. It is safe to call more than once.
func (s *SQLiteStorage) Close() error {
	s.closeOnce.Do(func() {
		if s.insertStmt != nil {
			s.insertStmt.Close()
		}
		s.closeErr = s.db.Close()
		s.logger.Info("SQLite audit storage closed")
	})
	return s.closeErr
}

func buildWhereClause(q *audit.Query) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, q.Source)
	}
	if q.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, q.UserID)
	}
	if !q.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if !q.Until.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, q.Until.UnixNano())
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanViolation(rows *sql.Rows) (*audit.Violation, error) {
	var (
		v         audit.Violation
		subjectID sql.NullString
		userID    sql.NullString
		matched   string
		createdAt int64
	)
	if err := rows.Scan(&v.ID, &v.Source, &subjectID, &userID, &matched, &v.ContentHash, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(matched), &v.Matched); err != nil {
		return nil, fmt.Errorf("failed to decode matched terms: %w", err)
	}
	v.SubjectID = subjectID.String
	v.UserID = userID.String
	v.CreatedAt = time.Unix(0, createdAt).UTC()
	return &v, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
