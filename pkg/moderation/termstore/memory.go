package termstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory. All data is lost when the process
// exits.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*Term
	byWord map[string]string
}

// NewMemoryStore creates an empty MemoryStore, optionally pre-loaded with
// words. Invalid and duplicate words are ignored.
func NewMemoryStore(words ...string) *MemoryStore {
	s := &MemoryStore{
		byID:   make(map[string]*Term),
		byWord: make(map[string]string),
	}
	for _, w := range words {
		_, _ = s.Add(context.Background(), w)
	}
	return s
}

// Words returns every stored word ordered by word.
func (s *MemoryStore) Words(ctx context.Context) ([]string, error) {
	terms, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	words := make([]string, len(terms))
	for i, t := range terms {
		words[i] = t.Word
	}
	return words, nil
}

// List returns every stored term ordered by word.
func (s *MemoryStore) List(ctx context.Context) ([]*Term, error) {
	if err := ctx.Err(); err != nil {
		return nil, newStoreError("memory", "list", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := make([]*Term, 0, len(s.byID))
	for _, t := range s.byID {
		copied := *t
		terms = append(terms, &copied)
	}
	sort.Slice(terms, func(i, j int) bool {
		return terms[i].Word < terms[j].Word
	})
	return terms, nil
}

// Add stores a new word.
func (s *MemoryStore) Add(ctx context.Context, word string) (*Term, error) {
	word = Normalize(word)
	if word == "" {
		return nil, ErrEmptyTerm
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byWord[word]; ok {
		return nil, ErrTermExists
	}

	t := &Term{
		ID:        uuid.New().String(),
		Word:      word,
		CreatedAt: time.Now().UTC(),
	}
	s.byID[t.ID] = t
	s.byWord[word] = t.ID

	copied := *t
	return &copied, nil
}

// Remove deletes a term by ID.
func (s *MemoryStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return ErrTermNotFound
	}
	delete(s.byID, id)
	delete(s.byWord, t.Word)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
