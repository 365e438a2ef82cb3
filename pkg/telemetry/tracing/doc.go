// Package tracing sets up OpenTelemetry tracing with an OTLP gRPC exporter.
//
// When tracing is disabled New returns a Tracer backed by the no-op
// provider, so callers can create spans unconditionally. Incoming W3C trace
// context is honoured by HTTPMiddleware.
package tracing
