// Package moderation implements the banned-word content filter that gates
// comment, article and blog post writes.
//
// The filter keeps a cached snapshot of the prohibited terms loaded from a
// Source (normally a termstore.Store) and checks text against it:
//
//   - HTML tags and entities are replaced with a space before matching, so
//     markup cannot split or hide a word
//   - each term is matched case-insensitively as a whole word or phrase
//     ("ass" never matches inside "class")
//   - regex metacharacters in terms are always escaped
//
// # Caching
//
// The term list is cached for Config.CacheTTL (60 seconds by default). A
// failed refresh keeps serving the last list that loaded successfully; if no
// list has ever loaded, the filter serves an empty list (FailOpen) or refuses
// writes with ErrModerationUnavailable (FailClosed). Concurrent cache misses
// share a single store fetch.
//
// # Usage
//
//	filter := moderation.New(store, moderation.DefaultConfig())
//
//	if err := filter.FilterError(ctx, comment); err != nil {
//		// err.Error() is safe to show to the user; it never names the
//		// matched terms.
//		return err
//	}
//
// The term-management surface calls Invalidate after every edit so the next
// check sees the change without waiting for the TTL.
package moderation
