package models

import "time"

// -----------------------------------------------------------------------------
// MPartialRecord is one provider's contribution of market data for an identity.
// Every field is a pointer: nil means "this provider did not supply it".
// -----------------------------------------------------------------------------

type MPartialRecord struct {
	Price             *float64 `json:"price,omitempty"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	Volume24h         *float64 `json:"volume_24h,omitempty"`
	PercentChange24h  *float64 `json:"percent_change_24h,omitempty"`
	CirculatingSupply *float64 `json:"circulating_supply,omitempty"`
	TotalSupply       *float64 `json:"total_supply,omitempty"`
	MaxSupply         *float64 `json:"max_supply,omitempty"`
	Rank              *int     `json:"rank,omitempty"`
	ImageURL          *string  `json:"image_url,omitempty"`
	High24h           *float64 `json:"high_24h,omitempty"`
	Low24h            *float64 `json:"low_24h,omitempty"`
	LastUpdated       *int64   `json:"last_updated,omitempty"` // unix seconds

	Source string `json:"source"` // contributing provider name
}

// -----------------------------------------------------------------------------
// MAggregatedRecord is the field-wise merge of all partial records received for
// one identity in a single aggregation pass. Sources lists the contributing
// providers in registration order.
// -----------------------------------------------------------------------------

type MAggregatedRecord struct {
	Identity MIdentity `json:"identity"`

	Price             *float64 `json:"price,omitempty"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	Volume24h         *float64 `json:"volume_24h,omitempty"`
	PercentChange24h  *float64 `json:"percent_change_24h,omitempty"`
	CirculatingSupply *float64 `json:"circulating_supply,omitempty"`
	TotalSupply       *float64 `json:"total_supply,omitempty"`
	MaxSupply         *float64 `json:"max_supply,omitempty"`
	Rank              *int     `json:"rank,omitempty"`
	ImageURL          *string  `json:"image_url,omitempty"`
	High24h           *float64 `json:"high_24h,omitempty"`
	Low24h            *float64 `json:"low_24h,omitempty"`
	LastUpdated       *int64   `json:"last_updated,omitempty"`

	Sources   []string  `json:"sources"`
	MergedAt  time.Time `json:"merged_at"`
	FromCache bool      `json:"from_cache"`
	QueryKey  string    `json:"query_key"` // normalized query that produced this record
}

// -----------------------------------------------------------------------------

// PricePoint extracts the chart-relevant slice of the record.
// Returns zero values for fields the merge could not fill.
func (r *MAggregatedRecord) PricePoint() MPricePoint {
	p := MPricePoint{
		Symbol:    r.Identity.Symbol,
		Timestamp: r.MergedAt.Unix(),
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Volume24h != nil {
		p.Volume = *r.Volume24h
	}
	if r.PercentChange24h != nil {
		p.PercentChange = *r.PercentChange24h
	}
	return p
}

// -----------------------------------------------------------------------------
// MPricePoint is a single chart point kept in the in-memory history buffers
// and persisted by the storage layer.
// -----------------------------------------------------------------------------

type MPricePoint struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Volume        float64   `json:"volume"`
	PercentChange float64   `json:"percent_change"`
	Timestamp     int64     `json:"timestamp"`
	CreatedAt     time.Time `json:"created_at"`
}
