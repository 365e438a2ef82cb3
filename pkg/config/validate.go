package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError is a validation error for a single configuration field.
type FieldError struct {
	// Field is the dotted path to the field, e.g. "moderation.cache_ttl".
	Field string

	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the whole configuration and returns a ValidationError
// listing every problem, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateModeration(&cfg.Moderation)...)
	errs = append(errs, validateBackend("terms", cfg.Terms.Backend, cfg.Terms.SQLite)...)
	errs = append(errs, validateBackend("comments", cfg.Comments.Backend, cfg.Comments.SQLite)...)
	errs = append(errs, validateComments(&cfg.Comments)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server", Message: "timeouts must not be negative"})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_body_bytes", Message: "must not be negative"})
	}
	if cfg.CORS.Enabled && len(cfg.CORS.AllowedOrigins) == 0 {
		errs = append(errs, FieldError{Field: "server.cors.allowed_origins", Message: "required when cors is enabled"})
	}
	return errs
}

func validateModeration(cfg *ModerationConfig) []FieldError {
	var errs []FieldError

	if cfg.CacheTTL <= 0 {
		errs = append(errs, FieldError{Field: "moderation.cache_ttl", Message: "must be positive"})
	}
	if cfg.FetchTimeout <= 0 {
		errs = append(errs, FieldError{Field: "moderation.fetch_timeout", Message: "must be positive"})
	}
	if cfg.FailMode != "fail-open" && cfg.FailMode != "fail-closed" {
		errs = append(errs, FieldError{
			Field:   "moderation.fail_mode",
			Message: fmt.Sprintf("invalid fail mode %q: must be 'fail-open' or 'fail-closed'", cfg.FailMode),
		})
	}
	return errs
}

func validateBackend(section, backend string, sqlite SQLiteConfig) []FieldError {
	switch backend {
	case "memory":
		return nil
	case "sqlite":
		if sqlite.Path == "" {
			return []FieldError{{Field: section + ".sqlite.path", Message: "path is required for the sqlite backend"}}
		}
		return nil
	default:
		return []FieldError{{
			Field:   section + ".backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", backend),
		}}
	}
}

func validateComments(cfg *CommentsConfig) []FieldError {
	if cfg.MaxLength <= 0 {
		return []FieldError{{Field: "comments.max_length", Message: "must be positive"}}
	}
	return nil
}

func validateAudit(cfg *AuditConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	errs := validateBackend("audit", cfg.Backend, cfg.SQLite)
	if cfg.AsyncBuffer <= 0 {
		errs = append(errs, FieldError{Field: "audit.async_buffer", Message: "must be positive"})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{Field: "audit.retention_days", Message: "must not be negative"})
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PruneSchedule, err),
			})
		}
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "metrics path must start with /"})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	for field, path := range map[string]string{
		"telemetry.health.liveness_path":  cfg.Health.LivenessPath,
		"telemetry.health.readiness_path": cfg.Health.ReadinessPath,
	} {
		if !strings.HasPrefix(path, "/") {
			errs = append(errs, FieldError{Field: field, Message: "path must start with /"})
		}
	}
	return errs
}
