package moderation

import (
	"context"
	"fmt"
	"time"
)

// FailMode controls what FilterError does when no term list has ever been
// loaded from the store.
type FailMode string

const (
	// FailOpen lets writes through with an empty term list until the first
	// successful refresh.
	FailOpen FailMode = "fail-open"

	// FailClosed rejects writes with ErrModerationUnavailable until the first
	// successful refresh.
	FailClosed FailMode = "fail-closed"
)

// Source supplies the current list of prohibited terms.
// termstore.Store implements it.
type Source interface {
	// Words returns every prohibited term. The order is preserved for
	// matching and reporting.
	Words(ctx context.Context) ([]string, error)
}

// Result is the outcome of a single Check call.
type Result struct {
	// Clean is true when no prohibited term matched.
	Clean bool `json:"clean"`

	// Matched lists the terms that matched, in term-list order.
	Matched []string `json:"matched"`
}

// Observer receives filter events. telemetry/metrics.Collector implements it.
type Observer interface {
	ObserveCheck(clean bool, matches int, duration time.Duration)
	ObserveRefresh(ok bool, terms int)
	ObserveCacheLookup(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveCheck(bool, int, time.Duration) {}
func (nopObserver) ObserveRefresh(bool, int)              {}
func (nopObserver) ObserveCacheLookup(bool)               {}

// Config contains filter settings.
type Config struct {
	// CacheTTL is the maximum age of the cached term list.
	// Default: 60s
	CacheTTL time.Duration

	// FetchTimeout bounds a single store fetch.
	// Default: 5s
	FetchTimeout time.Duration

	// FailMode decides behaviour before the first successful refresh.
	// Default: FailOpen
	FailMode FailMode
}

// DefaultConfig returns the default filter configuration.
func DefaultConfig() Config {
	return Config{
		CacheTTL:     60 * time.Second,
		FetchTimeout: 5 * time.Second,
		FailMode:     FailOpen,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.CacheTTL)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	switch c.FailMode {
	case FailOpen, FailClosed:
	default:
		return fmt.Errorf("invalid fail mode %q", c.FailMode)
	}
	return nil
}
