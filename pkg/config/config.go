package config

import "time"

// Config is the root configuration structure for wordguard.
type Config struct {
	// Server contains HTTP listener settings.
	Server ServerConfig `yaml:"server"`

	// Moderation configures the content filter cache and failure handling.
	Moderation ModerationConfig `yaml:"moderation"`

	// Terms configures where the banned term list is stored and seeded from.
	Terms TermsConfig `yaml:"terms"`

	// Comments configures comment storage and limits.
	Comments CommentsConfig `yaml:"comments"`

	// Audit configures the violation log.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the "host:port" to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 15s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes caps request bodies.
	// Default: 64KiB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS configures cross-origin access for the browser front end.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists permitted origins. ["*"] allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`

	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	AllowCredentials bool `yaml:"allow_credentials"`
}

// ModerationConfig configures the content filter.
type ModerationConfig struct {
	// CacheTTL is how long a fetched term list is served before refetching.
	// Default: 60s
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// FetchTimeout bounds a single term list fetch.
	// Default: 5s
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// FailMode decides what happens when no term list has ever loaded.
	// Options: "fail-open", "fail-closed"
	// Default: "fail-open"
	FailMode string `yaml:"fail_mode"`
}

// SQLiteConfig locates a SQLite database file.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TermsConfig configures the banned term store.
type TermsConfig struct {
	// Backend selects the store.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// SeedFile is an optional YAML file of terms added at startup.
	SeedFile string `yaml:"seed_file"`

	// Watch re-syncs SeedFile whenever it changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce coalesces bursts of file events.
	// Default: 500ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// CommentsConfig configures comment storage.
type CommentsConfig struct {
	// Backend selects the store.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// MaxLength is the maximum comment length in characters.
	// Default: 1000
	MaxLength int `yaml:"max_length"`
}

// AuditConfig configures the violation audit log.
type AuditConfig struct {
	// Enabled turns violation recording on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the store.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// AsyncBuffer is the recorder queue size.
	// Default: 256
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds enqueueing and each storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// RetentionDays is how long violations are kept. 0 keeps them forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for retention pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line in log entries.
	AddSource bool `yaml:"add_source"`

	// Redact masks emails and bearer tokens in log attributes.
	// Default: true
	Redact bool `yaml:"redact"`
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "wordguard"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains OpenTelemetry configuration.
type TracingConfig struct {
	// Enabled turns tracing on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// ServiceName is reported on every span.
	// Default: "wordguard"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces sampled, 0.0 to 1.0.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the liveness probe path.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the readiness probe path.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 2s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
