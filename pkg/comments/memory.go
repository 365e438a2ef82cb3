package comments

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps comments in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*Comment
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Comment)}
}

func (s *MemoryStore) Insert(ctx context.Context, c *Comment) error {
	if err := ctx.Err(); err != nil {
		return newStoreError("memory", "insert", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[c.ID]; ok {
		return newStoreError("memory", "insert", fmt.Errorf("duplicate comment id %q", c.ID))
	}
	copied := *c
	s.byID[c.ID] = &copied
	return nil
}

func (s *MemoryStore) List(ctx context.Context, articleID string) ([]*Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, newStoreError("memory", "list", err)
	}

	s.mu.RLock()
	out := make([]*Comment, 0)
	for _, c := range s.byID {
		if c.ArticleID == articleID {
			copied := *c
			out = append(out, &copied)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return newStoreError("memory", "delete", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrCommentNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
