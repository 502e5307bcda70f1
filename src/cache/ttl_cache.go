package cache

import (
	"context"
	"sync"
	"time"

	"crypto-observer/src/logger"
)

// -----------------------------------------------------------------------------
// TTLCache is a concurrency-safe key-value cache with a fixed time-to-live.
// Staleness is checked on read, so no background sweep is required for
// correctness; StartSweeper may be used to reclaim memory.
//
// Two instances back the aggregator: the identity cache (long TTL, identities
// rarely change) and the result cache (short TTL).
// -----------------------------------------------------------------------------

type entry[V any] struct {
	value    V
	storedAt time.Time
}

type TTLCache[V any] struct {
	name    string
	ttl     time.Duration
	entries map[string]entry[V]
	mu      sync.RWMutex
	logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewTTLCache[V any](name string, ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		name:    name,
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		logger:  logger.NewLogger("", "TTLCache-"+name),
	}
}

// -----------------------------------------------------------------------------

// Get returns the cached value for key. A stale entry is treated as a miss
// (and left for the sweeper, or for Put to overwrite).
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Since(e.storedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// -----------------------------------------------------------------------------

// Put stores value under key, resetting its TTL clock.
func (c *TTLCache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, storedAt: time.Now()}
}

// -----------------------------------------------------------------------------

// Evict removes a single key.
func (c *TTLCache[V]) Evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// -----------------------------------------------------------------------------

// EvictAll clears the cache.
func (c *TTLCache[V]) EvictAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
}

// -----------------------------------------------------------------------------

// Len returns the number of non-stale entries (what the observability
// endpoint reports).
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, e := range c.entries {
		if time.Since(e.storedAt) < c.ttl {
			count++
		}
	}
	return count
}

// -----------------------------------------------------------------------------

// Sweep removes stale entries and returns how many were reclaimed.
func (c *TTLCache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if time.Since(e.storedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// -----------------------------------------------------------------------------

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (c *TTLCache[V]) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := c.Sweep(); removed > 0 {
					c.logger.Debug("Swept %d stale entries", removed)
				}
			}
		}
	}()
}
