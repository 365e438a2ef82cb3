package config

import "time"

// ConfigBuilder builds Config values for tests, starting from Default.
type ConfigBuilder struct {
	cfg *Config
}

// NewTestConfig returns a builder whose result is valid and uses in-memory
// backends throughout.
func NewTestConfig() *ConfigBuilder {
	cfg := Default()
	cfg.Terms.Backend = "memory"
	cfg.Comments.Backend = "memory"
	cfg.Audit.Backend = "memory"
	return &ConfigBuilder{cfg: cfg}
}

func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

func (b *ConfigBuilder) WithCacheTTL(d time.Duration) *ConfigBuilder {
	b.cfg.Moderation.CacheTTL = d
	return b
}

func (b *ConfigBuilder) WithFailMode(mode string) *ConfigBuilder {
	b.cfg.Moderation.FailMode = mode
	return b
}

func (b *ConfigBuilder) WithTermsBackend(backend, path string) *ConfigBuilder {
	b.cfg.Terms.Backend = backend
	b.cfg.Terms.SQLite.Path = path
	return b
}

func (b *ConfigBuilder) WithPruneSchedule(schedule string) *ConfigBuilder {
	b.cfg.Audit.PruneSchedule = schedule
	return b
}

func (b *ConfigBuilder) WithTracing(endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	return b
}
