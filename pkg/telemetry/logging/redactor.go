package logging

import (
	"log/slog"
	"regexp"
)

// Redactor masks sensitive substrings in log values.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	return &Redactor{patterns: []redactPattern{
		{
			name:        "bearer_token",
			regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
			replacement: "Bearer ***",
		},
		{
			name:        "api_key",
			regex:       regexp.MustCompile(`(?i)(api[-_]?key|token|secret)(["']?\s*[:=]\s*["']?)[a-zA-Z0-9\-._]+`),
			replacement: "$1$2***",
		},
		{
			name:        "email",
			regex:       regexp.MustCompile(`[a-zA-Z0-9._%+-]+@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
			replacement: "***@$1",
		},
	}}
}

// Redact returns s with every sensitive match masked.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// RedactAttr redacts string values, descending into groups.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.Redact(v.String()))
	case slog.KindGroup:
		group := v.Group()
		out := make([]any, len(group))
		for i, ga := range group {
			out[i] = r.RedactAttr(ga)
		}
		return slog.Group(a.Key, out...)
	default:
		return slog.Attr{Key: a.Key, Value: v}
	}
}
