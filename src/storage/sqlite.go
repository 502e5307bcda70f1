package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"crypto-observer/src/logger"
	"crypto-observer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	// Snapshots and price points accumulate across restarts; cleanup trims
	// them by retention, never by recreation.
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS aggregated_snapshots (
			query_key TEXT,
			asset_id TEXT,
			symbol TEXT,
			name TEXT,
			price REAL,
			market_cap REAL,
			volume_24h REAL,
			percent_change_24h REAL,
			circulating_supply REAL,
			total_supply REAL,
			max_supply REAL,
			rank INTEGER,
			image_url TEXT,
			high_24h REAL,
			low_24h REAL,
			sources TEXT,
			merged_at INTEGER,
			PRIMARY KEY (query_key, merged_at)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create aggregated_snapshots: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS price_points (
			symbol TEXT,
			timestamp INTEGER,
			price REAL,
			volume REAL,
			percent_change REAL,
			PRIMARY KEY (symbol, timestamp)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create price_points: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveAggregatedRecords(records []models.MAggregatedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO aggregated_snapshots
			(query_key, asset_id, symbol, name, price, market_cap, volume_24h, percent_change_24h,
			 circulating_supply, total_supply, max_supply, rank, image_url, high_24h, low_24h, sources, merged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.QueryKey, r.Identity.ID, r.Identity.Symbol, r.Identity.Name,
			r.Price, r.MarketCap, r.Volume24h, r.PercentChange24h,
			r.CirculatingSupply, r.TotalSupply, r.MaxSupply, r.Rank,
			r.ImageURL, r.High24h, r.Low24h,
			strings.Join(r.Sources, ","), r.MergedAt.Unix(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SavePricePoints(points []models.MPricePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO price_points (symbol, timestamp, price, volume, percent_change)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.Exec(p.Symbol, p.Timestamp, p.Price, p.Volume, p.PercentChange)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.DataRetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec("DELETE FROM aggregated_snapshots WHERE merged_at < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup aggregated_snapshots error: %v", err)
	}
	if _, err := d.DB.Exec("DELETE FROM price_points WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup price_points error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
