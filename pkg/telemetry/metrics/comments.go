package metrics

import "github.com/prometheus/client_golang/prometheus"

// CommentMetrics tracks comment submissions.
//
// Metrics:
//   - wordguard_comments_posted_total{result}: "accepted", "rejected" or "invalid"
type CommentMetrics struct {
	posted *prometheus.CounterVec
}

// NewCommentMetrics creates and registers comment metrics.
func NewCommentMetrics(namespace string, registry *prometheus.Registry) *CommentMetrics {
	m := &CommentMetrics{
		posted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comments_posted_total",
				Help:      "Comment submissions by outcome",
			},
			[]string{"result"},
		),
	}
	registry.MustRegister(m.posted)
	return m
}
