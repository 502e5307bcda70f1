package models

// MRefreshMetrics represents the performance metrics for one watchlist refresh pass.
type MRefreshMetrics struct {
	AggregationTimeSeconds float64 `json:"aggregation_time_seconds"`
	RefreshedSymbols       int     `json:"refreshed_symbols"`
	FailedSymbols          int     `json:"failed_symbols"`
}
