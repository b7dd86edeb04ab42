// Package ratelimit tracks cooldown windows for quota-limited endpoints.
//
// A Guard persists the moment an endpoint answered 429 and reports the
// endpoint as tripped until the cooldown elapses. The answer for each key is
// memoized for the life of the process once it has been read from storage;
// a fresh Guard (for example after a restart) re-reads the persisted value.
package ratelimit

import (
	"sync"
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/logger"
	"github.com/samvad-hq/samvad-health-news/internal/storage"
)

// DefaultCooldown is how long an endpoint stays tripped after a 429.
const DefaultCooldown = 12 * time.Hour

// Options configures a Guard.
type Options struct {
	Cooldown time.Duration
	Logger   logger.Logger
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Guard is safe for concurrent use.
type Guard struct {
	store    storage.Store
	cooldown time.Duration
	now      func() time.Time
	log      logger.Logger

	mu   sync.Mutex
	memo map[string]bool
}

// New builds a Guard over store. A nil store behaves like an empty one.
func New(store storage.Store, opts Options) *Guard {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Guard{
		store:    store,
		cooldown: opts.Cooldown,
		now:      opts.Now,
		log:      logger.OrNop(opts.Logger),
		memo:     make(map[string]bool),
	}
}

// IsTripped reports whether key is inside its cooldown window. Storage
// failures are logged and treated as not tripped.
func (g *Guard) IsTripped(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if tripped, ok := g.memo[key]; ok {
		return tripped
	}

	tripped := false
	if g.store != nil {
		trippedAt, found, err := g.store.Get(key)
		switch {
		case err != nil:
			g.log.WarnObj("rate limit state unreadable; failing open", "ratelimit_error", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		case found:
			tripped = g.now().Sub(trippedAt) < g.cooldown
		}
	}

	g.memo[key] = tripped
	return tripped
}

// Trip records now as the trip time for key and marks it tripped for the
// rest of the process run.
func (g *Guard) Trip(key string) {
	now := g.now()

	g.mu.Lock()
	g.memo[key] = true
	g.mu.Unlock()

	g.log.WarnObj("rate limit tripped", "ratelimit_state", map[string]any{
		"key":         key,
		"tripped_at":  now.UTC(),
		"cooldown_ms": g.cooldown.Milliseconds(),
	})

	if g.store == nil {
		return
	}
	if err := g.store.Put(key, now); err != nil {
		g.log.WarnObj("rate limit state not persisted", "ratelimit_error", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
}
