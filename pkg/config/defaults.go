package config

import "time"

// Default values for configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodyBytes    = int64(64 << 10)
	DefaultCORSMaxAge      = 3600

	DefaultCacheTTL     = 60 * time.Second
	DefaultFetchTimeout = 5 * time.Second
	DefaultFailMode     = "fail-open"

	DefaultBackend         = "sqlite"
	DefaultBusyTimeout     = 5 * time.Second
	DefaultTermsSQLitePath = "data/terms.db"
	DefaultWatchDebounce   = 500 * time.Millisecond

	DefaultCommentsSQLitePath = "data/comments.db"
	DefaultCommentMaxLength   = 1000

	DefaultAuditEnabled       = true
	DefaultAuditSQLitePath    = "data/violations.db"
	DefaultAuditAsyncBuffer   = 256
	DefaultAuditWriteTimeout  = 5 * time.Second
	DefaultAuditRetentionDays = 90
	DefaultAuditPruneSchedule = "0 3 * * *"

	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "wordguard"
	DefaultTracingServiceName = "wordguard"
	DefaultTracingSampleRatio = 1.0
	DefaultLivenessPath       = "/health"
	DefaultReadinessPath      = "/ready"
	DefaultHealthCheckTimeout = 2 * time.Second
)

// Default returns a complete configuration with every default applied.
// YAML files are decoded on top of it so absent keys keep these values.
func Default() *Config {
	cfg := &Config{
		Audit: AuditConfig{
			Enabled:       DefaultAuditEnabled,
			RetentionDays: DefaultAuditRetentionDays,
			PruneSchedule: DefaultAuditPruneSchedule,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Redact: true},
			Metrics: MetricsConfig{Enabled: true},
			Tracing: TracingConfig{Insecure: true, SampleRatio: DefaultTracingSampleRatio},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Booleans,
// RetentionDays and PruneSchedule are left alone because their zero values
// are meaningful.
func ApplyDefaults(cfg *Config) {
	s := &cfg.Server
	setString(&s.ListenAddress, DefaultListenAddress)
	setDuration(&s.ReadTimeout, DefaultReadTimeout)
	setDuration(&s.WriteTimeout, DefaultWriteTimeout)
	setDuration(&s.IdleTimeout, DefaultIdleTimeout)
	setDuration(&s.ShutdownTimeout, DefaultShutdownTimeout)
	if s.MaxBodyBytes == 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(s.CORS.AllowedMethods) == 0 {
		s.CORS.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(s.CORS.AllowedHeaders) == 0 {
		s.CORS.AllowedHeaders = []string{"Content-Type", "X-Request-ID", "X-User-ID"}
	}
	if len(s.CORS.ExposedHeaders) == 0 {
		s.CORS.ExposedHeaders = []string{"X-Request-ID"}
	}
	if s.CORS.MaxAge == 0 {
		s.CORS.MaxAge = DefaultCORSMaxAge
	}

	m := &cfg.Moderation
	setDuration(&m.CacheTTL, DefaultCacheTTL)
	setDuration(&m.FetchTimeout, DefaultFetchTimeout)
	setString(&m.FailMode, DefaultFailMode)

	t := &cfg.Terms
	setString(&t.Backend, DefaultBackend)
	setString(&t.SQLite.Path, DefaultTermsSQLitePath)
	setDuration(&t.SQLite.BusyTimeout, DefaultBusyTimeout)
	setDuration(&t.WatchDebounce, DefaultWatchDebounce)

	c := &cfg.Comments
	setString(&c.Backend, DefaultBackend)
	setString(&c.SQLite.Path, DefaultCommentsSQLitePath)
	setDuration(&c.SQLite.BusyTimeout, DefaultBusyTimeout)
	if c.MaxLength == 0 {
		c.MaxLength = DefaultCommentMaxLength
	}

	a := &cfg.Audit
	setString(&a.Backend, DefaultBackend)
	setString(&a.SQLite.Path, DefaultAuditSQLitePath)
	setDuration(&a.SQLite.BusyTimeout, DefaultBusyTimeout)
	setDuration(&a.WriteTimeout, DefaultAuditWriteTimeout)
	if a.AsyncBuffer == 0 {
		a.AsyncBuffer = DefaultAuditAsyncBuffer
	}

	tel := &cfg.Telemetry
	setString(&tel.Logging.Level, DefaultLogLevel)
	setString(&tel.Logging.Format, DefaultLogFormat)
	setString(&tel.Metrics.Path, DefaultMetricsPath)
	setString(&tel.Metrics.Namespace, DefaultMetricsNamespace)
	setString(&tel.Tracing.ServiceName, DefaultTracingServiceName)
	setString(&tel.Health.LivenessPath, DefaultLivenessPath)
	setString(&tel.Health.ReadinessPath, DefaultReadinessPath)
	setDuration(&tel.Health.CheckTimeout, DefaultHealthCheckTimeout)
}

func setString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func setDuration(field *time.Duration, def time.Duration) {
	if *field == 0 {
		*field = def
	}
}
