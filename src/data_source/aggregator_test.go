package datasource

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-observer/src/cache"
	"crypto-observer/src/helpers"
	"crypto-observer/src/interfaces"
	"crypto-observer/src/logger"
	"crypto-observer/src/models"
	"crypto-observer/src/ratelimit"
)

// -----------------------------------------------------------------------------
// fakeProvider is a scriptable IProvider for aggregation tests.
// -----------------------------------------------------------------------------

type fakeProvider struct {
	name    string
	resolve func(ctx context.Context, query string) (models.MIdentity, error)
	fetch   func(ctx context.Context, identity models.MIdentity) (models.MPartialRecord, error)

	resolveCalls int64
	fetchCalls   int64
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ResolveIdentity(ctx context.Context, query string) (models.MIdentity, error) {
	atomic.AddInt64(&f.resolveCalls, 1)
	if f.resolve == nil {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: f.name}
	}
	return f.resolve(ctx, query)
}

func (f *fakeProvider) FetchData(ctx context.Context, identity models.MIdentity) (models.MPartialRecord, error) {
	atomic.AddInt64(&f.fetchCalls, 1)
	if f.fetch == nil {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: f.name}
	}
	return f.fetch(ctx, identity)
}

// -----------------------------------------------------------------------------

func fptr(v float64) *float64 { return &v }

func resolveAs(provider, id string) func(context.Context, string) (models.MIdentity, error) {
	return func(_ context.Context, query string) (models.MIdentity, error) {
		return models.MIdentity{
			ID:          id,
			Symbol:      query,
			Name:        id,
			ProviderIDs: map[string]string{provider: id},
		}, nil
	}
}

func newTestAggregator(t *testing.T, providers ...*fakeProvider) *Aggregator {
	t.Helper()

	iface := make([]interfaces.IProvider, 0, len(providers))
	for _, p := range providers {
		iface = append(iface, p)
	}

	log := logger.NewLogger("error", "test")
	breakers := ratelimit.NewRegistry(models.MBreakerConfig{
		FailureThreshold:    100,
		SuccessThreshold:    1,
		ResetTimeoutSeconds: 60,
	}, log)

	return NewAggregator(
		iface,
		cache.NewTTLCache[models.MIdentity]("identity", time.Minute),
		cache.NewTTLCache[models.MAggregatedRecord]("result", time.Minute),
		breakers,
		log,
	)
}

// -----------------------------------------------------------------------------

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "btc", NormalizeQuery("  BTC  "))
	assert.Equal(t, "bitcoin", NormalizeQuery("Bitcoin"))
	assert.Equal(t, "", NormalizeQuery("   "))
}

func TestGetAggregatedDataEmptyQueryIsNotFound(t *testing.T) {
	agg := newTestAggregator(t, &fakeProvider{name: "alpha"})

	_, err := agg.GetAggregatedData(context.Background(), "   ", false)
	assert.True(t, helpers.IsNotFound(err))
}

// -----------------------------------------------------------------------------

func TestMergeFirstNonNullWinsInRegistrationOrder(t *testing.T) {
	first := &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "bitcoin"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{
				Price:  fptr(50000),
				Source: "alpha",
			}, nil
		},
	}
	second := &fakeProvider{
		name:    "beta",
		resolve: resolveAs("beta", "btc-bitcoin"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{
				Price:     fptr(49000), // must lose to alpha's price
				MarketCap: fptr(9.5e11),
				Source:    "beta",
			}, nil
		},
	}
	agg := newTestAggregator(t, first, second)

	rec, err := agg.GetAggregatedData(context.Background(), "btc", false)
	require.NoError(t, err)

	require.NotNil(t, rec.Price)
	assert.Equal(t, 50000.0, *rec.Price, "earlier provider's value must not be overwritten")
	require.NotNil(t, rec.MarketCap)
	assert.Equal(t, 9.5e11, *rec.MarketCap, "gap filled by the later provider")
	assert.Equal(t, []string{"alpha", "beta"}, rec.Sources)

	// Identity precedence follows registration order too.
	assert.Equal(t, "bitcoin", rec.Identity.ID)
	assert.Equal(t, "btc-bitcoin", rec.Identity.ProviderIDs["beta"])
}

func TestResolvedIdentityUnionsAliasesAcrossProviders(t *testing.T) {
	first := &fakeProvider{
		name: "alpha",
		resolve: func(_ context.Context, query string) (models.MIdentity, error) {
			return models.MIdentity{
				ID:          "bitcoin",
				Symbol:      "btc",
				Name:        "Bitcoin",
				Aliases:     []string{"bitcoin", "xbt"},
				ProviderIDs: map[string]string{"alpha": "bitcoin"},
			}, nil
		},
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	second := &fakeProvider{
		name: "beta",
		resolve: func(_ context.Context, query string) (models.MIdentity, error) {
			return models.MIdentity{
				ID:          "btc-bitcoin",
				Symbol:      "btc",
				Name:        "Bitcoin",
				Aliases:     []string{"bitcoin", "btc-bitcoin"},
				ProviderIDs: map[string]string{"beta": "btc-bitcoin"},
			}, nil
		},
	}
	agg := newTestAggregator(t, first, second)

	rec, err := agg.GetAggregatedData(context.Background(), "btc", false)
	require.NoError(t, err)

	identity := rec.Identity
	assert.Equal(t, "bitcoin", identity.ID, "first resolver's ID wins")
	assert.Contains(t, identity.Aliases, "xbt")
	assert.Contains(t, identity.Aliases, "bitcoin")
	assert.Contains(t, identity.Aliases, "btc-bitcoin", "later resolvers still contribute aliases")
	assert.Equal(t, "bitcoin", identity.ProviderIDs["alpha"])
	assert.Equal(t, "btc-bitcoin", identity.ProviderIDs["beta"])
}

func TestPartialFetchFailureIsTolerated(t *testing.T) {
	healthy := &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "ethereum"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(3000), Source: "alpha"}, nil
		},
	}
	broken := &fakeProvider{
		name:    "beta",
		resolve: resolveAs("beta", "eth-ethereum"),
		// fetch nil: always abstains
	}
	agg := newTestAggregator(t, healthy, broken)

	rec, err := agg.GetAggregatedData(context.Background(), "eth", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, rec.Sources)
	require.NotNil(t, rec.Price)
	assert.Equal(t, 3000.0, *rec.Price)
}

func TestAllResolversAbstainingIsNotFound(t *testing.T) {
	agg := newTestAggregator(t,
		&fakeProvider{name: "alpha"},
		&fakeProvider{name: "beta"},
	)

	_, err := agg.GetAggregatedData(context.Background(), "nope", false)
	assert.True(t, helpers.IsNotFound(err))
}

func TestAllFetchersAbstainingIsAggregationFailed(t *testing.T) {
	agg := newTestAggregator(t, &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "bitcoin"),
		// fetch nil: abstains
	})

	_, err := agg.GetAggregatedData(context.Background(), "btc", false)
	assert.True(t, helpers.IsAggregationFailed(err))
	assert.False(t, helpers.IsNotFound(err), "resolved-but-no-data must be distinct from not-found")
}

// -----------------------------------------------------------------------------

func TestResultCacheHitSkipsUpstream(t *testing.T) {
	provider := &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "bitcoin"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	agg := newTestAggregator(t, provider)
	ctx := context.Background()

	rec, err := agg.GetAggregatedData(ctx, "btc", false)
	require.NoError(t, err)
	assert.False(t, rec.FromCache)

	rec, err = agg.GetAggregatedData(ctx, "BTC ", false)
	require.NoError(t, err)
	assert.True(t, rec.FromCache, "normalized variants share one cache entry")

	assert.EqualValues(t, 1, atomic.LoadInt64(&provider.resolveCalls))
	assert.EqualValues(t, 1, atomic.LoadInt64(&provider.fetchCalls))
}

func TestForceRefreshBypassesBothCaches(t *testing.T) {
	provider := &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "bitcoin"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	agg := newTestAggregator(t, provider)
	ctx := context.Background()

	_, err := agg.GetAggregatedData(ctx, "btc", false)
	require.NoError(t, err)

	rec, err := agg.GetAggregatedData(ctx, "btc", true)
	require.NoError(t, err)
	assert.False(t, rec.FromCache)

	assert.EqualValues(t, 2, atomic.LoadInt64(&provider.resolveCalls))
	assert.EqualValues(t, 2, atomic.LoadInt64(&provider.fetchCalls))
}

// -----------------------------------------------------------------------------

func TestConcurrentRequestsCoalesceIntoOneFetch(t *testing.T) {
	release := make(chan struct{})
	provider := &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "bitcoin"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			<-release
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	agg := newTestAggregator(t, provider)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]models.MAggregatedRecord, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = agg.GetAggregatedData(context.Background(), "btc", false)
		}(i)
	}

	// Let every caller reach the in-flight group before the fetch completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i].Price)
		assert.Equal(t, 50000.0, *results[i].Price)
	}
	assert.EqualValues(t, 1, atomic.LoadInt64(&provider.fetchCalls),
		"all concurrent callers must share one upstream fetch")
}

// -----------------------------------------------------------------------------

func TestEvictQueryDropsBothCaches(t *testing.T) {
	provider := &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "bitcoin"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	agg := newTestAggregator(t, provider)
	ctx := context.Background()

	_, err := agg.GetAggregatedData(ctx, "btc", false)
	require.NoError(t, err)
	require.Equal(t, 1, agg.ResultCache.Len())
	require.Equal(t, 1, agg.IdentityCache.Len())

	agg.EvictQuery("BTC")
	assert.Equal(t, 0, agg.ResultCache.Len())
	assert.Equal(t, 0, agg.IdentityCache.Len())
}

func TestStatsReflectCacheContents(t *testing.T) {
	provider := &fakeProvider{
		name:    "alpha",
		resolve: resolveAs("alpha", "bitcoin"),
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	agg := newTestAggregator(t, provider)

	_, err := agg.GetAggregatedData(context.Background(), "btc", false)
	require.NoError(t, err)

	stats := agg.Stats()
	assert.Equal(t, 1, stats.IdentityEntries)
	assert.Equal(t, 1, stats.ResultEntries)
	assert.Empty(t, stats.InFlightKeys)
	assert.Contains(t, stats.Breakers, "alpha")
}

func TestWarmUpToleratesFailures(t *testing.T) {
	provider := &fakeProvider{
		name: "alpha",
		resolve: func(_ context.Context, query string) (models.MIdentity, error) {
			if query != "btc" {
				return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: "alpha"}
			}
			return models.MIdentity{ID: "bitcoin", Symbol: "btc"}, nil
		},
		fetch: func(context.Context, models.MIdentity) (models.MPartialRecord, error) {
			return models.MPartialRecord{Price: fptr(50000), Source: "alpha"}, nil
		},
	}
	agg := newTestAggregator(t, provider)

	records := agg.WarmUp(context.Background(), []string{"btc", "unknowncoin"})
	assert.Len(t, records, 1)
	assert.Contains(t, records, "btc")
}
