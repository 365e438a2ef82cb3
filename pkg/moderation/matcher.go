package moderation

import (
	"log/slog"
	"regexp"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]*>`)
	// Named entities only. Numeric references such as &#121; are left in
	// place and do not separate words.
	entityPattern = regexp.MustCompile(`(?i)&[a-z]+;`)
)

// Flatten replaces HTML tags and named entities with a single space so that
// rich text is checked as plain words.
func Flatten(text string) string {
	plain := tagPattern.ReplaceAllString(text, " ")
	return entityPattern.ReplaceAllString(plain, " ")
}

// termPattern is a compiled whole-word matcher for one term.
type termPattern struct {
	term string
	re   *regexp.Regexp
}

// compileTerms builds one case-insensitive, word-bounded pattern per term.
// Terms that fail to compile are skipped and logged.
func compileTerms(terms []string, logger *slog.Logger) []termPattern {
	patterns := make([]termPattern, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		if err != nil {
			logger.Warn("skipping uncompilable term", "error", err)
			continue
		}
		patterns = append(patterns, termPattern{term: term, re: re})
	}
	return patterns
}

// match returns the terms whose pattern matches the flattened text,
// preserving pattern order.
func match(patterns []termPattern, plain string) []string {
	matched := make([]string, 0)
	for _, p := range patterns {
		if p.re.MatchString(plain) {
			matched = append(matched, p.term)
		}
	}
	return matched
}
