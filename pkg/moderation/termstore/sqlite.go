package termstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	logger    *slog.Logger
	closeOnce sync.Once

	wordsStmt  *sql.Stmt
	listStmt   *sql.Stmt
	addStmt    *sql.Stmt
	removeStmt *sql.Stmt
}

// SQLiteConfig configures the SQLite term store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (creating if needed) a SQLite term store.
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
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{
		db:     db,
		path:   cfg.Path,
		logger: slog.Default().With("component", "termstore.sqlite"),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, newStoreError("sqlite", "create_schema", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, newStoreError("sqlite", "prepare", err)
	}

	s.logger.Info("term store opened", "path", cfg.Path)
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS banned_words (
		id TEXT PRIMARY KEY,
		word TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	);
	`)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.wordsStmt, err = s.db.Prepare(`SELECT word FROM banned_words ORDER BY word`)
	if err != nil {
		return fmt.Errorf("failed to prepare words statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`SELECT id, word, created_at FROM banned_words ORDER BY word`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.addStmt, err = s.db.Prepare(`
		INSERT INTO banned_words (id, word, created_at) VALUES (?, ?, ?)
		ON CONFLICT (word) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare add statement: %w", err)
	}

	s.removeStmt, err = s.db.Prepare(`DELETE FROM banned_words WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare remove statement: %w", err)
	}

	return nil
}

// Words returns every stored word ordered by word.
func (s *SQLiteStore) Words(ctx context.Context) ([]string, error) {
	rows, err := s.wordsStmt.QueryContext(ctx)
	if err != nil {
		return nil, newStoreError("sqlite", "words", err)
	}
	defer rows.Close()

	words := make([]string, 0)
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, newStoreError("sqlite", "words", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("sqlite", "words", err)
	}
	return words, nil
}

// List returns every stored term ordered by word.
func (s *SQLiteStore) List(ctx context.Context) ([]*Term, error) {
	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, newStoreError("sqlite", "list", err)
	}
	defer rows.Close()

	terms := make([]*Term, 0)
	for rows.Next() {
		var (
			t         Term
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &t.Word, &createdAt); err != nil {
			return nil, newStoreError("sqlite", "list", err)
		}
		t.CreatedAt = time.Unix(0, createdAt).UTC()
		terms = append(terms, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("sqlite", "list", err)
	}
	return terms, nil
}

// Add stores a new word.
func (s *SQLiteStore) Add(ctx context.Context, word string) (*Term, error) {
	word = Normalize(word)
	if word == "" {
		return nil, ErrEmptyTerm
	}

	t := &Term{
		ID:        uuid.New().String(),
		Word:      word,
		CreatedAt: time.Now().UTC(),
	}

	res, err := s.addStmt.ExecContext(ctx, t.ID, t.Word, t.CreatedAt.UnixNano())
	if err != nil {
		return nil, newStoreError("sqlite", "add", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, newStoreError("sqlite", "add", err)
	}
	if n == 0 {
		return nil, ErrTermExists
	}
	return t, nil
}

// Remove deletes a term by ID.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	res, err := s.removeStmt.ExecContext(ctx, id)
	if err != nil {
		return newStoreError("sqlite", "remove", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return newStoreError("sqlite", "remove", err)
	}
	if n == 0 {
		return ErrTermNotFound
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return newStoreError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the prepared statements and the database. It is idempotent.
func (s *SQLiteStore) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.wordsStmt, s.listStmt, s.addStmt, s.removeStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		closeErr = s.db.Close()
	})
	if closeErr != nil {
		return newStoreError("sqlite", "close", closeErr)
	}
	return nil
}
