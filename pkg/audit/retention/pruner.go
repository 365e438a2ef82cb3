package retention

import (
	"context"
	"log/slog"
	"time"

	"quillpress/wordguard/pkg/audit"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to keep violations.
	// 0 keeps violations forever.
	RetentionDays int

	// PruneSchedule is a standard cron expression, for example "0 3 * * *".
	// Empty disables scheduled pruning.
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner deletes violations older than the retention period.
type Pruner struct {
	storage audit.Storage
	config  *Config
	logger  *slog.Logger
	now     func() time.Time
}

// NewPruner creates a Pruner.
func NewPruner(storage audit.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.retention"),
		now:     time.Now,
	}
}

// Cutoff returns the oldest creation time that is kept, and false when
// retention is unlimited.
func (p *Pruner) Cutoff() (time.Time, bool) {
	if p.config.RetentionDays <= 0 {
		return time.Time{}, false
	}
	return p.now().Add(-time.Duration(p.config.RetentionDays) * 24 * time.Hour), true
}

// Prune deletes expired violations and returns how many were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff, ok := p.Cutoff()
	if !ok {
		p.logger.Debug("retention unlimited, nothing to prune")
		return 0, nil
	}

	start := time.Now()
	deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	p.logger.Info("violation pruning completed",
		"deleted", deleted,
		"cutoff", cutoff,
		"duration", time.Since(start),
	)
	return deleted, nil
}
