package moderation

import (
	"slices"
	"sync"
	"time"
)

// snapshot is an immutable view of the term list. A check holds one snapshot
// for its whole duration.
type snapshot struct {
	terms     []string
	patterns  []termPattern
	fetchedAt time.Time

	// loaded is false for the empty fallback served before any successful
	// refresh.
	loaded bool
}

var emptySnapshot = &snapshot{terms: []string{}}

// Terms returns a copy of the snapshot's term list.
func (s *snapshot) Terms() []string {
	return slices.Clone(s.terms)
}

// termCache holds the current snapshot and its freshness.
//
// States: EMPTY (current == nil), FRESH (age < ttl), STALE (age >= ttl or
// invalidated). A stale entry is still served when a refresh fails.
//
// gen counts invalidations. A fetch records the generation it started in;
// its result never counts as fresh once the generation has moved on.
type termCache struct {
	mu         sync.RWMutex
	current    *snapshot
	currentGen uint64
	gen        uint64
	expired    bool
}

// lookup returns the cached snapshot and whether it is still fresh.
func (c *termCache) lookup(now time.Time, ttl time.Duration) (*snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return nil, false
	}
	if c.expired || now.Sub(c.current.fetchedAt) >= ttl {
		return c.current, false
	}
	return c.current, true
}

// generation returns the current invalidation generation.
func (c *termCache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.gen
}

// store replaces the cached snapshot with s, fetched in generation gen.
// A snapshot older than the cached one is dropped. A snapshot from before
// the latest invalidation is kept as a fallback but stays stale.
func (c *termCache) store(s *snapshot, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && gen < c.currentGen {
		return
	}
	c.current = s
	c.currentGen = gen
	c.expired = gen != c.gen
}

// lastKnownGood returns the most recent successfully loaded snapshot, or the
// empty fallback.
func (c *termCache) lastKnownGood() *snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return emptySnapshot
	}
	return c.current
}

// invalidate marks the entry stale so the next lookup misses. The snapshot
// itself is kept as the fallback for a failed refresh.
func (c *termCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.expired = true
}

// loaded reports whether any refresh has ever succeeded.
func (c *termCache) loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.current != nil
}

// age returns how long ago the cached snapshot was fetched.
func (c *termCache) age(now time.Time) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return 0, false
	}
	return now.Sub(c.current.fetchedAt), true
}
