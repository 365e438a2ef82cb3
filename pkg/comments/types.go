package comments

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyComment is returned for comments that are blank after trimming.
	ErrEmptyComment = errors.New("comment cannot be empty")

	// ErrCommentTooLong is returned for comments over the length limit.
	ErrCommentTooLong = errors.New("comment is too long")

	// ErrCommentNotFound is returned when deleting an unknown comment.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrMissingArticle is returned when a comment has no article ID.
	ErrMissingArticle = errors.New("article id is required")
)

// Comment is a stored reader comment.
type Comment struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment is a comment submission.
type NewComment struct {
	ArticleID string `json:"article_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
}

// Store persists comments.
type Store interface {
	// Insert stores c. c.ID must be unique.
	Insert(ctx context.Context, c *Comment) error

	// List returns the comments of an article, oldest first.
	List(ctx context.Context, articleID string) ([]*Comment, error)

	// Delete removes a comment. Unknown IDs return ErrCommentNotFound.
	Delete(ctx context.Context, id string) error

	Close() error
}

// StoreError wraps a storage backend failure.
type StoreError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s comment store %s failed: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

func newStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{Backend: backend, Operation: operation, Cause: cause}
}
