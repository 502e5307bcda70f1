package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestInFlightGroupSingleCaller(t *testing.T) {
	g := NewInFlightGroup[string]()

	val, shared, err := g.Do("btc", func() (string, error) {
		return "bitcoin", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "bitcoin", val)
	assert.False(t, shared)
	assert.Empty(t, g.Keys())
}

// -----------------------------------------------------------------------------

func TestInFlightGroupCoalescesConcurrentCallers(t *testing.T) {
	g := NewInFlightGroup[int]()

	var executions int32
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 10)
	sharedFlags := make([]bool, 10)

	// First caller holds the flight open until release is closed
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], sharedFlags[0], _ = g.Do("btc", func() (int, error) {
			atomic.AddInt32(&executions, 1)
			close(started)
			<-release
			return 42, nil
		})
	}()

	<-started
	for i := 1; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], sharedFlags[i], _ = g.Do("btc", func() (int, error) {
				atomic.AddInt32(&executions, 1)
				return 42, nil
			})
		}(i)
	}

	// Joiners must be visible as in-flight before the result is published
	assert.Eventually(t, func() bool {
		return len(g.Keys()) == 1
	}, 100*time.Millisecond, time.Millisecond)

	// Give the joiners time to attach to the pending call
	time.Sleep(50 * time.Millisecond)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&executions))
	for i := 0; i < 10; i++ {
		assert.Equal(t, 42, results[i])
	}
	assert.False(t, sharedFlags[0])
	assert.Empty(t, g.Keys())
}

// -----------------------------------------------------------------------------

func TestInFlightGroupSharesError(t *testing.T) {
	g := NewInFlightGroup[int]()
	boom := errors.New("upstream down")

	_, _, err := g.Do("btc", func() (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)

	// The failed flight is removed: the next call runs fresh
	val, shared, err := g.Do("btc", func() (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, val)
	assert.False(t, shared)
}

// -----------------------------------------------------------------------------

func TestInFlightGroupDistinctKeysDoNotCoalesce(t *testing.T) {
	g := NewInFlightGroup[string]()

	var executions int32
	for _, key := range []string{"btc", "eth"} {
		key := key
		_, shared, err := g.Do(key, func() (string, error) {
			atomic.AddInt32(&executions, 1)
			return key, nil
		})
		require.NoError(t, err)
		assert.False(t, shared)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&executions))
}
