package datasource

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-observer/src/models"
	"crypto-observer/src/utils"
)

// -----------------------------------------------------------------------------

func newTestRefresher(t *testing.T, symbols []string, providers ...*fakeProvider) *Refresher {
	t.Helper()

	agg := newTestAggregator(t, providers...)
	history := utils.NewHistoryStore(256, 100)
	cfg := models.MWatchlistConfig{
		Symbols:                symbols,
		RefreshIntervalSeconds: 3600, // loop never fires during a test
	}
	return NewRefresher(agg, history, cfg, agg.Logger)
}

// -----------------------------------------------------------------------------

func TestRefreshOnceFeedsHistory(t *testing.T) {
	provider := &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "bitcoin"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	r := newTestRefresher(t, []string{"btc"}, provider)

	metrics := r.RefreshOnce(context.Background())
	assert.Equal(t, 1, metrics.RefreshedSymbols)
	assert.Equal(t, 0, metrics.FailedSymbols)

	history := r.History.GetHistory("btc", 0)
	require.Len(t, history, 1)
	assert.Equal(t, 50000.0, history[0].Price)
}

func TestRefreshCycleReusesCachedIdentity(t *testing.T) {
	provider := &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "bitcoin"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	r := newTestRefresher(t, []string{"btc"}, provider)
	ctx := context.Background()

	r.RefreshOnce(ctx)
	r.RefreshOnce(ctx)
	r.RefreshOnce(ctx)

	assert.EqualValues(t, 3, atomic.LoadInt64(&provider.fetchCalls),
		"every cycle re-fetches market data")
	assert.EqualValues(t, 1, atomic.LoadInt64(&provider.resolveCalls),
		"identity resolution happens once, cycles reuse the cache")
}

func TestRefreshOnceCountsFailures(t *testing.T) {
	provider := &fakeProvider{
		name: "alpha",
		resolve: func(_ context.Context, query string) (models.MIdentity, error) {
			if query == "btc" {
				return models.MIdentity{ID: "bitcoin", Symbol: "btc"}, nil
			}
			return models.MIdentity{}, assert.AnError
		},
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	r := newTestRefresher(t, []string{"btc", "unknowncoin"}, provider)

	metrics := r.RefreshOnce(context.Background())
	assert.Equal(t, 1, metrics.RefreshedSymbols)
	assert.Equal(t, 1, metrics.FailedSymbols)
	assert.False(t, r.History.HasSymbol("unknowncoin"))
}

// -----------------------------------------------------------------------------

func TestUpdateSymbolsSwapsWatchlist(t *testing.T) {
	r := newTestRefresher(t, []string{"btc"})

	r.UpdateSymbols([]string{"eth", "sol"})
	assert.Equal(t, []string{"eth", "sol"}, r.Symbols())
}

func TestStartStopLifecycle(t *testing.T) {
	provider := &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "bitcoin"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	r := newTestRefresher(t, []string{"btc"}, provider)

	require.NoError(t, r.Start(context.Background()))
	assert.Error(t, r.Start(context.Background()), "double start is rejected")

	// The loop runs its first cycle immediately.
	assert.Eventually(t, func() bool {
		return r.History.HasSymbol("btc")
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop(), "stop is idempotent")
}
