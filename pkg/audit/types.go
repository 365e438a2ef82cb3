package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Violation sources.
const (
	SourceComment = "comment"
	SourceCheck   = "check"
)

// Violation is a single rejected submission.
type Violation struct {
	ID string `json:"id"`

	// Source names the surface that rejected the content
	// ("comment" or "check").
	Source string `json:"source"`

	// SubjectID identifies what the content was attached to,
	// for example the article ID for a comment.
	SubjectID string `json:"subject_id,omitempty"`

	UserID string `json:"user_id,omitempty"`

	// Matched lists the banned terms found in the content.
	Matched []string `json:"matched"`

	// ContentHash is the hex SHA-256 of the rejected text.
	ContentHash string `json:"content_hash"`

	CreatedAt time.Time `json:"created_at"`
}

// Query filters violations. Zero values mean "no filter".
type Query struct {
	Source string
	UserID string
	Since  time.Time
	Until  time.Time

	// Limit caps the number of results. 0 means DefaultQueryLimit.
	Limit int
}

// DefaultQueryLimit is applied when Query.Limit is zero.
const DefaultQueryLimit = 100

// MaxQueryLimit is the largest accepted Query.Limit.
const MaxQueryLimit = 1000

// Validate checks the query bounds.
func (q *Query) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", q.Limit)
	}
	if q.Limit > MaxQueryLimit {
		return fmt.Errorf("limit must be at most %d, got %d", MaxQueryLimit, q.Limit)
	}
	if !q.Since.IsZero() && !q.Until.IsZero() && q.Until.Before(q.Since) {
		return errors.New("until must not be before since")
	}
	return nil
}

// EffectiveLimit returns the limit to apply.
func (q *Query) EffectiveLimit() int {
	if q.Limit == 0 {
		return DefaultQueryLimit
	}
	return q.Limit
}

// Storage persists violations.
type Storage interface {
	// Store writes a single violation.
	Store(ctx context.Context, v *Violation) error

	// Query returns violations matching q, newest first.
	Query(ctx context.Context, q *Query) ([]*Violation, error)

	// Count returns the number of violations matching q, ignoring Limit.
	Count(ctx context.Context, q *Query) (int64, error)

	// DeleteOlderThan removes violations created before cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

// HashContent returns the hex SHA-256 of text.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
