// Package comments stores reader comments on articles.
//
// Every comment passes through the content filter before it is stored.
// Rejected comments are reported to the audit log with their matched terms;
// the author only ever sees the fixed moderation message. Accepted comments
// are sanitised with a user-generated-content HTML policy so stored markup
// is safe to render.
package comments
