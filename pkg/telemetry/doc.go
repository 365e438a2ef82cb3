// Package telemetry groups the observability packages used by wordguard.
//
// # Components
//
//   - logging: slog setup, request-scoped attributes and log redaction
//   - metrics: Prometheus collector for checks, term refreshes, comments and HTTP
//   - tracing: OpenTelemetry tracer with an OTLP/gRPC exporter
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{Level: "info", Format: "json", Redact: true})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	filter := moderation.New(store, modCfg, moderation.WithObserver(collector))
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.Register("moderation", filter.Ready)
//
// # Redaction
//
// When redaction is enabled, string attributes are masked before they are
// written:
//
//   - Bearer tokens: Bearer abc.def → Bearer ***
//   - API keys and secrets: api_key=abc123 → api_key=***
//   - Emails: reader@example.com → ***@example.com
//
// Comment text is never logged. Spans carry only the number of matched
// terms.
package telemetry
