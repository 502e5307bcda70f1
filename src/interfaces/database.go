package interfaces

import "crypto-observer/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// The storage layer is a write-path sink: snapshots go in, retention cleanup
// removes them; reads for charts are served from the in-memory history store.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveAggregatedRecords inserts a batch of merged records (one row per
	// aggregation pass per asset).
	SaveAggregatedRecords(records []models.MAggregatedRecord) error

	// -----------------------------------------------------------------------------

	// SavePricePoints inserts a batch of chart points.
	SavePricePoints(points []models.MPricePoint) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
