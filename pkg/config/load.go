package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WORDGUARD_"

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result. Environment variables are ignored; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults without validating.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads a YAML file and applies WORDGUARD_*
// environment overrides. An empty path starts from the defaults alone.
//
// The loading sequence is:
//  1. Defaults
//  2. YAML from file
//  3. Environment overrides
//  4. Validation
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies WORDGUARD_SECTION_FIELD variables. Malformed
// values are reported rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	e := &envReader{}

	e.str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	e.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	e.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	e.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	e.boolean("SERVER_CORS_ENABLED", &cfg.Server.CORS.Enabled)
	e.list("SERVER_CORS_ALLOWED_ORIGINS", &cfg.Server.CORS.AllowedOrigins)

	e.duration("MODERATION_CACHE_TTL", &cfg.Moderation.CacheTTL)
	e.duration("MODERATION_FETCH_TIMEOUT", &cfg.Moderation.FetchTimeout)
	e.str("MODERATION_FAIL_MODE", &cfg.Moderation.FailMode)

	e.str("TERMS_BACKEND", &cfg.Terms.Backend)
	e.str("TERMS_SQLITE_PATH", &cfg.Terms.SQLite.Path)
	e.str("TERMS_SEED_FILE", &cfg.Terms.SeedFile)
	e.boolean("TERMS_WATCH", &cfg.Terms.Watch)

	e.str("COMMENTS_BACKEND", &cfg.Comments.Backend)
	e.str("COMMENTS_SQLITE_PATH", &cfg.Comments.SQLite.Path)
	e.integer("COMMENTS_MAX_LENGTH", &cfg.Comments.MaxLength)

	e.boolean("AUDIT_ENABLED", &cfg.Audit.Enabled)
	e.str("AUDIT_BACKEND", &cfg.Audit.Backend)
	e.str("AUDIT_SQLITE_PATH", &cfg.Audit.SQLite.Path)
	e.integer("AUDIT_RETENTION_DAYS", &cfg.Audit.RetentionDays)
	e.str("AUDIT_PRUNE_SCHEDULE", &cfg.Audit.PruneSchedule)

	e.str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	e.str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	e.boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	e.boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	e.str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)

	if len(e.errs) > 0 {
		return ValidationError{Errors: e.errs}
	}
	return nil
}

type envReader struct {
	errs []FieldError
}

func (e *envReader) lookup(key string) (string, bool) {
	val, ok := os.LookupEnv(EnvPrefix + key)
	return val, ok && val != ""
}

func (e *envReader) fail(key string, err error) {
	e.errs = append(e.errs, FieldError{Field: EnvPrefix + key, Message: err.Error()})
}

func (e *envReader) str(key string, dst *string) {
	if val, ok := e.lookup(key); ok {
		*dst = val
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if val, ok := e.lookup(key); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = d
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if val, ok := e.lookup(key); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) integer(key string, dst *int) {
	if val, ok := e.lookup(key); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = i
	}
}

// list reads a comma-separated value, dropping empty items.
func (e *envReader) list(key string, dst *[]string) {
	if val, ok := e.lookup(key); ok {
		var items []string
		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*dst = items
	}
}
