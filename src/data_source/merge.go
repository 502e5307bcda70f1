package datasource

import (
	"time"

	"crypto-observer/src/models"
)

// -----------------------------------------------------------------------------
// Merge semantics: first-non-null value wins per field, in provider
// registration order. A field set by an earlier provider is never overwritten
// by a later provider, even when the later value is non-null. This keeps
// merged records reproducible under retries and independent of network timing.
// -----------------------------------------------------------------------------

// MergeRecords folds the partial records into one aggregated record.
// partials must be indexed by provider registration order; nil entries mark
// providers that abstained.
func MergeRecords(identity models.MIdentity, partials []*models.MPartialRecord) models.MAggregatedRecord {
	rec := models.MAggregatedRecord{
		Identity: identity,
		MergedAt: time.Now().UTC(),
	}

	for _, p := range partials {
		if p == nil {
			continue
		}
		rec.Sources = append(rec.Sources, p.Source)

		if rec.Price == nil && p.Price != nil {
			rec.Price = p.Price
		}
		if rec.MarketCap == nil && p.MarketCap != nil {
			rec.MarketCap = p.MarketCap
		}
		if rec.Volume24h == nil && p.Volume24h != nil {
			rec.Volume24h = p.Volume24h
		}
		if rec.PercentChange24h == nil && p.PercentChange24h != nil {
			rec.PercentChange24h = p.PercentChange24h
		}
		if rec.CirculatingSupply == nil && p.CirculatingSupply != nil {
			rec.CirculatingSupply = p.CirculatingSupply
		}
		if rec.TotalSupply == nil && p.TotalSupply != nil {
			rec.TotalSupply = p.TotalSupply
		}
		if rec.MaxSupply == nil && p.MaxSupply != nil {
			rec.MaxSupply = p.MaxSupply
		}
		if rec.Rank == nil && p.Rank != nil {
			rec.Rank = p.Rank
		}
		if rec.ImageURL == nil && p.ImageURL != nil {
			rec.ImageURL = p.ImageURL
		}
		if rec.High24h == nil && p.High24h != nil {
			rec.High24h = p.High24h
		}
		if rec.Low24h == nil && p.Low24h != nil {
			rec.Low24h = p.Low24h
		}
		if rec.LastUpdated == nil && p.LastUpdated != nil {
			rec.LastUpdated = p.LastUpdated
		}
	}

	return rec
}
