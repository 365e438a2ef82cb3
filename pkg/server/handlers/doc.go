// Package handlers implements the wordguard JSON API: the moderation
// check, term administration, article comments and the violation log.
//
// Handlers depend on small interfaces rather than concrete services so
// they can be tested with fakes. All errors are rendered as
//
//	{"error": {"code": "...", "message": "..."}}
//
// Moderation rejections always carry the fixed moderation message and
// never name the matched terms.
package handlers
