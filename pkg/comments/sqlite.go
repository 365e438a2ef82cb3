package comments

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteConfig configures the SQLite comment store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db        *sql.DB
	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error

	insertStmt *sql.Stmt
	listStmt   *sql.Stmt
	deleteStmt *sql.Stmt
}

// NewSQLiteStore opens (creating if needed) a SQLite comment store.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, newStoreError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		logger: slog.Default().With("component", "comments.sqlite"),
	}

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS article_comments (
		id TEXT PRIMARY KEY,
		article_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_article_comments_article ON article_comments(article_id, created_at);
	`); err != nil {
		db.Close()
		return nil, newStoreError("sqlite", "create_schema", err)
	}

	if err := s.prepare(); err != nil {
		db.Close()
		return nil, newStoreError("sqlite", "prepare", err)
	}

	s.logger.Info("comment store opened", "path", cfg.Path)
	return s, nil
}

func (s *SQLiteStore) prepare() error {
	var err error
	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO article_comments (id, article_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	s.listStmt, err = s.db.Prepare(`
		SELECT id, article_id, user_id, content, created_at
		FROM article_comments WHERE article_id = ?
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}
	s.deleteStmt, err = s.db.Prepare(`DELETE FROM article_comments WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, c *Comment) error {
	_, err := s.insertStmt.ExecContext(ctx, c.ID, c.ArticleID, c.UserID, c.Content, c.CreatedAt.UnixNano())
	if err != nil {
		return newStoreError("sqlite", "insert", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, articleID string) ([]*Comment, error) {
	rows, err := s.listStmt.QueryContext(ctx, articleID)
	if err != nil {
		return nil, newStoreError("sqlite", "list", err)
	}
	defer rows.Close()

	out := make([]*Comment, 0)
	for rows.Next() {
		var (
			c         Comment
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Content, &createdAt); err != nil {
			return nil, newStoreError("sqlite", "scan", err)
		}
		c.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("sqlite", "list", err)
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.deleteStmt.ExecContext(ctx, id)
	if err != nil {
		return newStoreError("sqlite", "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return newStoreError("sqlite", "delete", err)
	}
	if n == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database. It is safe to call more than once.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.insertStmt, s.listStmt, s.deleteStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
