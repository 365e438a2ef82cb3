// Package config provides configuration management for wordguard.
//
// Configuration is read from a YAML file, layered over built-in defaults and
// then overridden by environment variables:
//
//  1. Default values (see Default and defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides (WORDGUARD_SECTION_FIELD)
//  4. Validation, which reports every invalid field at once
//
// For example WORDGUARD_MODERATION_CACHE_TTL=30s overrides
// moderation.cache_ttl and WORDGUARD_TERMS_BACKEND=memory overrides
// terms.backend.
//
// # Singleton
//
// Commands that need process-wide access call Initialize once at startup and
// GetConfig afterwards. Library code should take an explicit *Config.
package config
