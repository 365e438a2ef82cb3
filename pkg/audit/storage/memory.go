package storage

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"quillpress/wordguard/pkg/audit"
)

// MemoryStorage keeps violations in memory.
type MemoryStorage struct {
	mu         sync.RWMutex
	violations []*audit.Violation
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends a copy of v.
func (m *MemoryStorage) Store(ctx context.Context, v *audit.Violation) error {
	if err := ctx.Err(); err != nil {
		return audit.NewStorageError("memory", "store", err)
	}
	if v == nil || v.ID == "" {
		return audit.NewStorageError("memory", "store", audit.ErrInvalidViolation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations = append(m.violations, clone(v))
	return nil
}

// Query returns matching violations newest first.
func (m *MemoryStorage) Query(ctx context.Context, q *audit.Query) ([]*audit.Violation, error) {
	if err := ctx.Err(); err != nil {
		return nil, audit.NewStorageError("memory", "query", err)
	}
	if q == nil {
		q = &audit.Query{}
	}
	if err := q.Validate(); err != nil {
		return nil, audit.NewStorageError("memory", "query", err)
	}

	m.mu.RLock()
	out := make([]*audit.Violation, 0)
	for _, v := range m.violations {
		if matches(v, q) {
			out = append(out, clone(v))
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit := q.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of matching violations.
func (m *MemoryStorage) Count(ctx context.Context, q *audit.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, audit.NewStorageError("memory", "count", err)
	}
	if q == nil {
		q = &audit.Query{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, v := range m.violations {
		if matches(v, q) {
			n++
		}
	}
	return n, nil
}

// DeleteOlderThan removes violations created before cutoff.
func (m *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, audit.NewStorageError("memory", "delete", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.violations)
	m.violations = slices.DeleteFunc(m.violations, func(v *audit.Violation) bool {
		return v.CreatedAt.Before(cutoff)
	})
	return int64(before - len(m.violations)), nil
}

// Close is a no-op.
func (m *MemoryStorage) Close() error {
	return nil
}

func matches(v *audit.Violation, q *audit.Query) bool {
	if q.Source != "" && v.Source != q.Source {
		return false
	}
	if q.UserID != "" && v.UserID != q.UserID {
		return false
	}
	if !q.Since.IsZero() && v.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && v.CreatedAt.After(q.Until) {
		return false
	}
	return true
}

func clone(v *audit.Violation) *audit.Violation {
	c := *v
	c.Matched = slices.Clone(v.Matched)
	return &c
}
