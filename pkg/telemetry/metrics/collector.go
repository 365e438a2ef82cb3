package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"quillpress/wordguard/pkg/config"
)

// Collector records every wordguard metric.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	moderation *ModerationMetrics
	terms      *TermMetrics
	comments   *CommentMetrics
	http       *HTTPMetrics
}

// NewCollector creates a Collector. A nil registry gets a fresh one with the
// Go runtime and process collectors registered.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		moderation: NewModerationMetrics(cfg.Namespace, registry),
		terms:      NewTermMetrics(cfg.Namespace, registry),
		comments:   NewCommentMetrics(cfg.Namespace, registry),
		http:       NewHTTPMetrics(cfg.Namespace, registry),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveCheck records a single moderation check.
func (c *Collector) ObserveCheck(clean bool, matches int, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.moderation.record(clean, matches, d)
}

// ObserveRefresh records a term list fetch.
func (c *Collector) ObserveRefresh(ok bool, terms int) {
	if !c.config.Enabled {
		return
	}
	c.terms.recordRefresh(ok, terms)
}

// ObserveCacheLookup records a term cache hit or miss.
func (c *Collector) ObserveCacheLookup(hit bool) {
	if !c.config.Enabled {
		return
	}
	c.terms.recordLookup(hit)
}

// ObserveComment records a comment submission outcome.
func (c *Collector) ObserveComment(result string) {
	if !c.config.Enabled {
		return
	}
	c.comments.posted.WithLabelValues(result).Inc()
}

// ObserveHTTP records a completed HTTP request.
func (c *Collector) ObserveHTTP(route string, status int, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.http.record(route, status, d)
}

// RegisterAuditStats exposes the audit recorder's written and dropped
// counts. stats is called on every scrape.
func (c *Collector) RegisterAuditStats(stats func() (written, dropped uint64)) error {
	written := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: c.config.Namespace,
		Name:      "audit_violations_written_total",
		Help:      "Violations written to the audit log",
	}, func() float64 {
		w, _ := stats()
		return float64(w)
	})
	dropped := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: c.config.Namespace,
		Name:      "audit_violations_dropped_total",
		Help:      "Violations dropped because the audit buffer was full or storage failed",
	}, func() float64 {
		_, d := stats()
		return float64(d)
	})

	if err := c.registry.Register(written); err != nil {
		return err
	}
	return c.registry.Register(dropped)
}
