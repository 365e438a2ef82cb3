package termstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrTermExists is returned when adding a word that is already stored.
	ErrTermExists = errors.New("this word is already in the list")

	// ErrTermNotFound is returned when removing an unknown term ID.
	ErrTermNotFound = errors.New("term not found")

	// ErrEmptyTerm is returned when a word is empty after trimming.
	ErrEmptyTerm = errors.New("term cannot be empty")
)

// Term is a stored prohibited word or phrase.
type Term struct {
	// ID is the stable identifier (UUID).
	ID string `json:"id"`

	// Word is the normalised term.
	Word string `json:"word"`

	// CreatedAt is when the term was added.
	CreatedAt time.Time `json:"created_at"`
}

// Store defines term persistence. Implementations must be safe for
// concurrent use.
type Store interface {
	// Words returns every stored word ordered by word.
	Words(ctx context.Context) ([]string, error)

	// List returns every stored term ordered by word.
	List(ctx context.Context) ([]*Term, error)

	// Add stores a new word. Returns ErrEmptyTerm or ErrTermExists.
	Add(ctx context.Context, word string) (*Term, error)

	// Remove deletes a term by ID. Returns ErrTermNotFound.
	Remove(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// StoreError wraps a backend failure.
type StoreError struct {
	Backend   string
	Operation string
	Cause     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("term store error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

func newStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{Backend: backend, Operation: operation, Cause: cause}
}

// Normalize trims and lower-cases a word.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Search returns the terms whose word contains query, case-insensitively.
// An empty query returns all terms.
func Search(terms []*Term, query string) []*Term {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return terms
	}
	out := make([]*Term, 0, len(terms))
	for _, t := range terms {
		if strings.Contains(strings.ToLower(t.Word), q) {
			out = append(out, t)
		}
	}
	return out
}
