package termstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Invalidator is notified after the term list changes.
// moderation.Filter implements it.
type Invalidator interface {
	Invalidate()
}

// Manager is the term-management surface: it edits the Store and
// invalidates the filter cache after every successful change.
type Manager struct {
	store       Store
	invalidator Invalidator
	logger      *slog.Logger
}

// NewManager creates a Manager. invalidator may be nil.
func NewManager(store Store, invalidator Invalidator) *Manager {
	return &Manager{
		store:       store,
		invalidator: invalidator,
		logger:      slog.Default().With("component", "termstore.manager"),
	}
}

// List returns the terms matching query (all terms when query is empty).
func (m *Manager) List(ctx context.Context, query string) ([]*Term, error) {
	terms, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return Search(terms, query), nil
}

// Add stores a word and invalidates the filter cache.
func (m *Manager) Add(ctx context.Context, word string) (*Term, error) {
	t, err := m.store.Add(ctx, word)
	if err != nil {
		return nil, err
	}
	m.invalidate()
	m.logger.Info("term added", "term_id", t.ID)
	return t, nil
}

// Remove deletes a term and invalidates the filter cache.
func (m *Manager) Remove(ctx context.Context, id string) error {
	if err := m.store.Remove(ctx, id); err != nil {
		return err
	}
	m.invalidate()
	m.logger.Info("term removed", "term_id", id)
	return nil
}

// Sync adds every word that is not yet stored. It never removes terms.
// It returns the number of words added.
func (m *Manager) Sync(ctx context.Context, words []string) (int, error) {
	added := 0
	for _, w := range words {
		_, err := m.store.Add(ctx, w)
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrTermExists), errors.Is(err, ErrEmptyTerm):
		default:
			if added > 0 {
				m.invalidate()
			}
			return added, fmt.Errorf("failed to sync terms: %w", err)
		}
	}
	if added > 0 {
		m.invalidate()
	}
	m.logger.Info("term list synced", "offered", len(words), "added", added)
	return added, nil
}

func (m *Manager) invalidate() {
	if m.invalidator != nil {
		m.invalidator.Invalidate()
	}
}
