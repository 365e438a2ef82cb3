package moderation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"
)

// refreshKey is the singleflight key shared by all concurrent refreshes.
const refreshKey = "terms"

// Filter checks text against the prohibited term list.
// It is safe for concurrent use; construct one per process and share it.
type Filter struct {
	source   Source
	config   Config
	cache    termCache
	group    singleflight.Group
	observer Observer
	tracer   trace.Tracer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Filter.
type Option func(*Filter)

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(f *Filter) {
		if o != nil {
			f.observer = o
		}
	}
}

// WithTracer sets the tracer used for check and refresh spans.
func WithTracer(t trace.Tracer) Option {
	return func(f *Filter) {
		if t != nil {
			f.tracer = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) {
		f.now = now
	}
}

// New creates a Filter reading terms from source. Zero-valued config fields
// fall back to DefaultConfig.
func New(source Source, cfg Config, opts ...Option) *Filter {
	defaults := DefaultConfig()
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}
	if cfg.FailMode == "" {
		cfg.FailMode = defaults.FailMode
	}

	f := &Filter{
		source:   source,
		config:   cfg,
		observer: nopObserver{},
		tracer:   noop.NewTracerProvider().Tracer("wordguard/moderation"),
		logger:   slog.Default().With("component", "moderation.filter"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Refresh fetches the term list from the source and replaces the cache.
// A failed fetch is logged and absorbed: the last list that loaded
// successfully is returned, or an empty list if there is none.
func (f *Filter) Refresh(ctx context.Context) []string {
	return f.refresh(ctx, true).Terms()
}

// Terms returns the cached term list while it is younger than the TTL and
// refreshes it otherwise.
func (f *Filter) Terms(ctx context.Context) []string {
	return f.snapshot(ctx).Terms()
}

// Check scans text for prohibited terms. Markup is flattened first.
func (f *Filter) Check(ctx context.Context, text string) Result {
	ctx, span := f.tracer.Start(ctx, "moderation.check")
	defer span.End()

	start := f.now()
	snap := f.snapshot(ctx)
	matched := match(snap.patterns, Flatten(text))
	result := Result{Clean: len(matched) == 0, Matched: matched}

	f.observer.ObserveCheck(result.Clean, len(matched), f.now().Sub(start))
	span.SetAttributes(
		attribute.Bool("moderation.clean", result.Clean),
		attribute.Int("moderation.matches", len(matched)),
		attribute.Int("moderation.terms", len(snap.terms)),
	)

	return result
}

// FilterError returns a *ViolationError when text contains prohibited
// terms and nil when it is clean. In FailClosed mode it returns an
// *UnavailableError until a term list has loaded.
func (f *Filter) FilterError(ctx context.Context, text string) error {
	result := f.Check(ctx, text)
	if !result.Clean {
		return NewViolationError(result.Matched)
	}
	if f.config.FailMode == FailClosed && !f.cache.loaded() {
		return &UnavailableError{}
	}
	return nil
}

// Invalidate expires the cached list so the next check refreshes it.
// A fetch already in flight is not joined by later callers, and its result
// does not count as fresh.
func (f *Filter) Invalidate() {
	f.cache.invalidate()
	f.group.Forget(refreshKey)
	f.logger.Debug("term cache invalidated")
}

// Ready returns an error until a term list has been loaded. It backs the
// readiness probe.
func (f *Filter) Ready(ctx context.Context) error {
	if !f.cache.loaded() {
		return errors.New("term list not loaded")
	}
	return nil
}

// CacheAge reports how old the cached list is, and false when nothing is
// cached.
func (f *Filter) CacheAge() (time.Duration, bool) {
	return f.cache.age(f.now())
}

// snapshot returns a consistent view of the term list, refreshing it when
// the cache is empty or stale.
func (f *Filter) snapshot(ctx context.Context) *snapshot {
	if snap, fresh := f.cache.lookup(f.now(), f.config.CacheTTL); fresh {
		f.observer.ObserveCacheLookup(true)
		return snap
	}
	f.observer.ObserveCacheLookup(false)
	return f.refresh(ctx, false)
}

// refresh loads terms from the source. Concurrent callers share one fetch.
// Unless force is set, a cache filled by a fetch that finished after the
// caller's lookup is reused.
func (f *Filter) refresh(ctx context.Context, force bool) *snapshot {
	v, _, _ := f.group.Do(refreshKey, func() (any, error) {
		if !force {
			if snap, fresh := f.cache.lookup(f.now(), f.config.CacheTTL); fresh {
				return snap, nil
			}
		}
		return f.fetch(ctx), nil
	})
	return v.(*snapshot)
}

func (f *Filter) fetch(ctx context.Context) *snapshot {
	gen := f.cache.generation()

	// The shared fetch must not be cut short by the first caller going away.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.config.FetchTimeout)
	defer cancel()

	fetchCtx, span := f.tracer.Start(fetchCtx, "moderation.refresh")
	defer span.End()

	words, err := f.source.Words(fetchCtx)
	if err != nil {
		fallback := f.cache.lastKnownGood()
		f.logger.Error("term refresh failed, serving last known list",
			"error", err,
			"cached_terms", len(fallback.terms),
			"loaded", fallback.loaded,
		)
		f.observer.ObserveRefresh(false, len(fallback.terms))
		span.RecordError(err)
		span.SetStatus(codes.Error, "term store unavailable")
		return fallback
	}

	snap := &snapshot{
		terms:     words,
		patterns:  compileTerms(words, f.logger),
		fetchedAt: f.now(),
		loaded:    true,
	}
	f.cache.store(snap, gen)

	f.logger.Debug("term list refreshed", "terms", len(words))
	f.observer.ObserveRefresh(true, len(words))
	span.SetAttributes(attribute.Int("moderation.terms", len(words)))

	return snap
}
