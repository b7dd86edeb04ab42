// Package cache holds the most recent ranked feed for a fixed TTL.
package cache

import (
	"sync"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

// DefaultTTL is how long a built feed is served before a rebuild.
const DefaultTTL = 15 * time.Minute

// Snapshot is one built feed and the moment it was built.
type Snapshot struct {
	Items   []domain.NewsItem
	BuiltAt time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// Cache is a single-slot TTL cache. It is safe for concurrent use.
type Cache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
	snap *Snapshot
}

// New builds a cache; a non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured lifetime of a snapshot.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns a copy of the cached snapshot while it is younger than the TTL.
func (c *Cache) Get() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snap == nil || c.now().Sub(c.snap.BuiltAt) >= c.ttl {
		return Snapshot{}, false
	}
	return copySnapshot(*c.snap), true
}

// Put replaces the cached snapshot. A zero BuiltAt is stamped with now.
func (c *Cache) Put(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.BuiltAt.IsZero() {
		s.BuiltAt = c.now()
	}
	cp := copySnapshot(s)
	c.snap = &cp
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

func copySnapshot(s Snapshot) Snapshot {
	items := make([]domain.NewsItem, len(s.Items))
	copy(items, s.Items)
	return Snapshot{Items: items, BuiltAt: s.BuiltAt}
}
