// Package metrics exposes wordguard's Prometheus metrics.
//
// A Collector owns a private registry and implements the observer interfaces
// of the moderation and comments packages, so wiring it in is a matter of
// passing it as an option:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	filter := moderation.New(store, modCfg, moderation.WithObserver(collector))
//	http.Handle("/metrics", collector.Handler())
package metrics
