package cache

import "sync"

// -----------------------------------------------------------------------------
// InFlightGroup coalesces concurrent work for the same key: the first caller
// executes fn, later callers for the same key (observed before the result is
// published) block on the same pending call and share its value or error.
//
// The pending entry is removed exactly once, after the result has been stored
// on the call, so a joiner can never attach to a call that will not complete.
// -----------------------------------------------------------------------------

type call[V any] struct {
	done chan struct{}
	val  V
	err  error
}

type InFlightGroup[V any] struct {
	calls map[string]*call[V]
	mu    sync.Mutex
}

// -----------------------------------------------------------------------------

func NewInFlightGroup[V any]() *InFlightGroup[V] {
	return &InFlightGroup[V]{
		calls: make(map[string]*call[V]),
	}
}

// -----------------------------------------------------------------------------

// Do executes fn for key, or joins an in-progress execution.
// shared reports whether the result came from another caller's flight.
func (g *InFlightGroup[V]) Do(key string, fn func() (V, error)) (value V, shared bool, err error) {
	g.mu.Lock()
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.val, true, c.err
	}

	c := &call[V]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	// Publish order matters: the result is recorded on c before the key is
	// removed, and done is closed last so joiners always observe the result.
	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
	close(c.done)

	return c.val, false, c.err
}

// -----------------------------------------------------------------------------

// Keys returns the keys currently in flight (for observability).
func (g *InFlightGroup[V]) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	keys := make([]string, 0, len(g.calls))
	for k := range g.calls {
		keys = append(keys, k)
	}
	return keys
}
