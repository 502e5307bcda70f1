package interfaces

import (
	"context"

	"crypto-observer/src/models"
)

// -----------------------------------------------------------------------------
// IProvider is the contract for one upstream market-data source.
//
// Both methods convert transport and parse failures into a
// *helpers.ProviderAbstentionError so the aggregator can skip the provider
// without aborting the whole request. Raw HTTP errors must never cross this
// boundary.
// -----------------------------------------------------------------------------

type IProvider interface {

	// Name returns the unique identifier of the provider.
	// It is also the circuit-breaker service name for this upstream.
	Name() string

	// -----------------------------------------------------------------------------

	// ResolveIdentity maps a normalized query (trimmed, lowercased) to a
	// canonical identity. Returns an abstention error when the upstream has no
	// match or the lookup fails.
	ResolveIdentity(ctx context.Context, query string) (models.MIdentity, error)

	// -----------------------------------------------------------------------------

	// FetchData fetches market data for a previously resolved identity, keyed
	// by the provider's native id (or symbol fallback). Returns an abstention
	// error on any failure.
	FetchData(ctx context.Context, identity models.MIdentity) (models.MPartialRecord, error)
}
