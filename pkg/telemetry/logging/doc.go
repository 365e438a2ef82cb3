// Package logging configures the process-wide log/slog logger.
//
// New builds a *slog.Logger whose handler adds request-scoped fields from
// the context (request_id, user_id) and masks email addresses, bearer tokens
// and API keys in string attributes. Components log through
// slog.Default().With("component", ...) and pick up the configured handler
// once Setup has run.
package logging
