package metrics

import "github.com/prometheus/client_golang/prometheus"

// TermMetrics tracks the banned term cache.
//
// Metrics:
//   - wordguard_term_refreshes_total{result}: fetches by "success" or "error"
//   - wordguard_term_cache_hits_total
//   - wordguard_term_cache_misses_total
//   - wordguard_terms_loaded: terms in the last successful fetch
type TermMetrics struct {
	refreshesTotal *prometheus.CounterVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	termsLoaded    prometheus.Gauge
}

// NewTermMetrics creates and registers term cache metrics.
func NewTermMetrics(namespace string, registry *prometheus.Registry) *TermMetrics {
	m := &TermMetrics{
		refreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "term_refreshes_total",
				Help:      "Term list fetches by result",
			},
			[]string{"result"},
		),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "term_cache_hits_total",
			Help:      "Lookups served from a fresh cached term list",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "term_cache_misses_total",
			Help:      "Lookups that found the cached term list missing or stale",
		}),
		termsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "terms_loaded",
			Help:      "Number of terms in the last successfully fetched list",
		}),
	}

	registry.MustRegister(m.refreshesTotal, m.cacheHits, m.cacheMisses, m.termsLoaded)
	return m
}

func (m *TermMetrics) recordRefresh(ok bool, terms int) {
	if !ok {
		m.refreshesTotal.WithLabelValues("error").Inc()
		return
	}
	m.refreshesTotal.WithLabelValues("success").Inc()
	m.termsLoaded.Set(float64(terms))
}

func (m *TermMetrics) recordLookup(hit bool) {
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
