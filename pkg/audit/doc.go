// Package audit records moderation violations for later review.
//
// A Violation is written whenever user content is rejected by the content
// filter. The record keeps the matched terms and a SHA-256 hash of the
// rejected text, never the text itself, so moderators can spot repeat
// offenders without the log becoming a second copy of abusive content.
//
// Writes go through an asynchronous Recorder so a slow storage backend never
// delays the request that triggered the violation. Storage backends live in
// the storage subpackage and retention enforcement in the retention
// subpackage.
package audit
