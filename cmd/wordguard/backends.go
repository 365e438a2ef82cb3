package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"quillpress/wordguard/pkg/audit"
	auditstorage "quillpress/wordguard/pkg/audit/storage"
	"quillpress/wordguard/pkg/cli"
	"quillpress/wordguard/pkg/comments"
	"quillpress/wordguard/pkg/config"
	"quillpress/wordguard/pkg/moderation"
	"quillpress/wordguard/pkg/moderation/termstore"
)

// pinger is implemented by backends that can report connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

func loadConfig() (*config.Config, error) {
	if err := config.ReloadConfig(cfgFile); err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}
	return config.MustGetConfig(), nil
}

func moderationConfig(cfg *config.ModerationConfig) moderation.Config {
	return moderation.Config{
		CacheTTL:     cfg.CacheTTL,
		FetchTimeout: cfg.FetchTimeout,
		FailMode:     moderation.FailMode(cfg.FailMode),
	}
}

func openTermStore(cfg *config.TermsConfig) (termstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return termstore.NewMemoryStore(), nil
	case "sqlite":
		if err := ensureDir(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		return termstore.NewSQLiteStore(termstore.SQLiteConfig{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported terms backend: %s", cfg.Backend)
	}
}

func openCommentStore(cfg *config.CommentsConfig) (comments.Store, error) {
	switch cfg.Backend {
	case "memory":
		return comments.NewMemoryStore(), nil
	case "sqlite":
		if err := ensureDir(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		return comments.NewSQLiteStore(comments.SQLiteConfig{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported comments backend: %s", cfg.Backend)
	}
}

func openAuditStorage(cfg *config.AuditConfig) (audit.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return auditstorage.NewMemoryStorage(), nil
	case "sqlite":
		if err := ensureDir(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		sqliteCfg := auditstorage.DefaultSQLiteConfig()
		sqliteCfg.Path = cfg.SQLite.Path
		sqliteCfg.BusyTimeout = cfg.SQLite.BusyTimeout
		return auditstorage.NewSQLiteStorage(sqliteCfg)
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", cfg.Backend)
	}
}

// ensureDir creates the parent directory of a database file.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %q: %w", dir, err)
	}
	return nil
}
