package datasource

import (
	"context"
	"strings"
	"sync"
	"time"

	"crypto-observer/src/cache"
	"crypto-observer/src/helpers"
	"crypto-observer/src/interfaces"
	"crypto-observer/src/logger"
	"crypto-observer/src/models"
	"crypto-observer/src/ratelimit"
)

// -----------------------------------------------------------------------------
// Aggregator resolves a user query into a canonical identity and merges market
// data from every registered provider into one record.
//
// The provider slice order is a first-class contract: it is the only tie-break
// for field merging (see MergeRecords) and for identity precedence. It comes
// from the order of the providers list in the config file, never from
// response arrival time.
// -----------------------------------------------------------------------------

type Aggregator struct {
	providers []interfaces.IProvider

	IdentityCache *cache.TTLCache[models.MIdentity]
	ResultCache   *cache.TTLCache[models.MAggregatedRecord]

	inflight *cache.InFlightGroup[models.MAggregatedRecord]
	breakers *ratelimit.Registry
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAggregator(
	providers []interfaces.IProvider,
	identityCache *cache.TTLCache[models.MIdentity],
	resultCache *cache.TTLCache[models.MAggregatedRecord],
	breakers *ratelimit.Registry,
	log *logger.Logger,
) *Aggregator {
	return &Aggregator{
		providers:     providers,
		IdentityCache: identityCache,
		ResultCache:   resultCache,
		inflight:      cache.NewInFlightGroup[models.MAggregatedRecord](),
		breakers:      breakers,
		Logger:        log,
	}
}

// -----------------------------------------------------------------------------

// NormalizeQuery maps user input to the cache/coalescing key.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// -----------------------------------------------------------------------------

// Providers returns the registered providers in registration order.
func (a *Aggregator) Providers() []interfaces.IProvider {
	return a.providers
}

// -----------------------------------------------------------------------------

// GetAggregatedData is the public aggregation entry point.
//
// forceRefresh evicts both cache entries for the key before aggregating, so
// the caller always gets freshly fetched data. Concurrent calls for the same
// key (forced or not) share a single upstream fetch sequence.
func (a *Aggregator) GetAggregatedData(ctx context.Context, query string, forceRefresh bool) (models.MAggregatedRecord, error) {
	key := NormalizeQuery(query)
	if key == "" {
		return models.MAggregatedRecord{}, &helpers.NotFoundError{Query: query}
	}

	if forceRefresh {
		a.ResultCache.Evict(key)
		a.IdentityCache.Evict(key)
	} else {
		if rec, ok := a.ResultCache.Get(key); ok {
			rec.FromCache = true
			return rec, nil
		}
	}

	rec, shared, err := a.inflight.Do(key, func() (models.MAggregatedRecord, error) {
		return a.aggregate(ctx, key)
	})
	if err != nil {
		return models.MAggregatedRecord{}, err
	}
	if shared {
		a.Logger.Debug("Coalesced request for %q onto in-flight fetch", key)
	}
	return rec, nil
}

// -----------------------------------------------------------------------------

// aggregate runs one full resolution+fetch+merge pass and caches the result.
func (a *Aggregator) aggregate(ctx context.Context, key string) (models.MAggregatedRecord, error) {
	identity, err := a.resolveIdentity(ctx, key)
	if err != nil {
		return models.MAggregatedRecord{}, err
	}

	partials := a.fetchAll(ctx, identity)

	rec := MergeRecords(identity, partials)
	rec.QueryKey = key

	if len(rec.Sources) == 0 {
		// Distinct from "identity not found": we know what the asset is,
		// but no provider could supply data for it right now.
		return models.MAggregatedRecord{}, &helpers.AggregationFailedError{Query: key}
	}

	a.ResultCache.Put(key, rec)
	return rec, nil
}

// -----------------------------------------------------------------------------

// resolveIdentity checks the identity cache, then asks every provider in
// registration order. Resolution is deliberately sequential: later providers
// may use earlier results for disambiguation, and it keeps identity lookups
// gentle on rate-limited upstreams.
func (a *Aggregator) resolveIdentity(ctx context.Context, key string) (models.MIdentity, error) {
	if identity, ok := a.IdentityCache.Get(key); ok {
		return identity, nil
	}

	var merged models.MIdentity
	resolved := false

	for _, p := range a.providers {
		provider := p
		result, err := a.breakers.Execute(ctx, provider.Name(), "resolve|"+key, func() (interface{}, error) {
			return provider.ResolveIdentity(ctx, key)
		}, nil)
		if err != nil {
			if ctx.Err() != nil {
				return models.MIdentity{}, ctx.Err()
			}
			a.Logger.Debug("Provider %s abstained from resolving %q: %v", provider.Name(), key, err)
			continue
		}

		identity, ok := result.(models.MIdentity)
		if !ok || identity.ID == "" {
			// Open circuit with no tracked value resolves to the nil fallback.
			continue
		}

		merged.Merge(identity)
		resolved = true
	}

	if !resolved {
		return models.MIdentity{}, &helpers.NotFoundError{Query: key}
	}

	a.IdentityCache.Put(key, merged)
	return merged, nil
}

// -----------------------------------------------------------------------------

// fetchAll fans out FetchData to every provider concurrently. The returned
// slice is indexed by provider registration order; nil entries are
// abstentions. Failures never abort the pass.
func (a *Aggregator) fetchAll(ctx context.Context, identity models.MIdentity) []*models.MPartialRecord {
	partials := make([]*models.MPartialRecord, len(a.providers))
	var wg sync.WaitGroup

	for i, p := range a.providers {
		wg.Add(1)
		go func(idx int, provider interfaces.IProvider) {
			defer wg.Done()

			result, err := a.breakers.Execute(ctx, provider.Name(), "fetch|"+identity.ID, func() (interface{}, error) {
				return provider.FetchData(ctx, identity)
			}, nil)
			if err != nil {
				a.Logger.Debug("Provider %s abstained from fetching %s: %v", provider.Name(), identity.ID, err)
				return
			}

			if record, ok := result.(models.MPartialRecord); ok {
				partials[idx] = &record
			}
		}(i, p)
	}
	wg.Wait()

	return partials
}

// -----------------------------------------------------------------------------

// Stats snapshots the cache, in-flight and breaker state for the
// observability surfaces.
func (a *Aggregator) Stats() models.MCacheStats {
	return models.MCacheStats{
		IdentityEntries: a.IdentityCache.Len(),
		ResultEntries:   a.ResultCache.Len(),
		InFlightKeys:    a.inflight.Keys(),
		Breakers:        a.breakers.States(),
	}
}

// -----------------------------------------------------------------------------

// EvictQuery drops both cache entries for a query (operator control plane).
func (a *Aggregator) EvictQuery(query string) {
	key := NormalizeQuery(query)
	a.ResultCache.Evict(key)
	a.IdentityCache.Evict(key)
}

// -----------------------------------------------------------------------------

// EvictAll clears both caches (operator control plane).
func (a *Aggregator) EvictAll() {
	a.ResultCache.EvictAll()
	a.IdentityCache.EvictAll()
}

// -----------------------------------------------------------------------------

// WarmUp aggregates a list of symbols sequentially, tolerating failures.
// Used at startup to seed the caches for the watchlist.
func (a *Aggregator) WarmUp(ctx context.Context, symbols []string) map[string]models.MAggregatedRecord {
	records := make(map[string]models.MAggregatedRecord, len(symbols))
	for _, sym := range symbols {
		rec, err := a.GetAggregatedData(ctx, sym, false)
		if err != nil {
			a.Logger.Warning("Warm-up aggregation failed for %q: %v", sym, err)
			continue
		}
		records[rec.Identity.Symbol] = rec

		// Spread the warm-up out a little; these are cold-cache upstream calls.
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return records
		}
	}
	return records
}
