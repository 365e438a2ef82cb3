// Package termstore persists the prohibited term list and implements the
// term-management operations used by the admin API and CLI.
//
// Two backends are provided:
//
//   - MemoryStore: non-durable, for tests and development
//   - SQLiteStore: durable single-instance storage (pure-Go SQLite driver)
//
// Both implement moderation.Source, so a Store can feed a moderation.Filter
// directly. Manager wraps a Store and invalidates the filter cache after
// every successful edit.
//
// Terms are normalised (trimmed, lower-cased) before they are stored, and a
// word can only appear once.
package termstore
