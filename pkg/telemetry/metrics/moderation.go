package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ModerationMetrics tracks content checks.
//
// Metrics:
//   - wordguard_moderation_checks_total{result}: checks by "clean" or "violation"
//   - wordguard_moderation_check_duration_seconds: check latency
//   - wordguard_moderation_matches_total: banned terms matched across all checks
type ModerationMetrics struct {
	checksTotal   *prometheus.CounterVec
	checkDuration prometheus.Histogram
	matchesTotal  prometheus.Counter
}

// NewModerationMetrics creates and registers moderation metrics.
func NewModerationMetrics(namespace string, registry *prometheus.Registry) *ModerationMetrics {
	m := &ModerationMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moderation_checks_total",
				Help:      "Content checks by result",
			},
			[]string{"result"},
		),
		checkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "moderation_check_duration_seconds",
				Help:      "Time spent checking content, including any term list fetch",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		matchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moderation_matches_total",
				Help:      "Banned terms matched across all checks",
			},
		),
	}

	registry.MustRegister(m.checksTotal, m.checkDuration, m.matchesTotal)
	return m
}

func (m *ModerationMetrics) record(clean bool, matches int, d time.Duration) {
	result := "violation"
	if clean {
		result = "clean"
	}
	m.checksTotal.WithLabelValues(result).Inc()
	m.checkDuration.Observe(d.Seconds())
	m.matchesTotal.Add(float64(matches))
}
