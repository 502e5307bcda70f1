package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crypto-observer/src/logger"
	"crypto-observer/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// The schema is named after the executable so several observers can share
	// one database without colliding.
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."aggregated_snapshots" (
			query_key TEXT,
			asset_id TEXT,
			symbol TEXT,
			name TEXT,
			price DOUBLE PRECISION,
			market_cap DOUBLE PRECISION,
			volume_24h DOUBLE PRECISION,
			percent_change_24h DOUBLE PRECISION,
			circulating_supply DOUBLE PRECISION,
			total_supply DOUBLE PRECISION,
			max_supply DOUBLE PRECISION,
			rank INTEGER,
			image_url TEXT,
			high_24h DOUBLE PRECISION,
			low_24h DOUBLE PRECISION,
			sources TEXT,
			merged_at BIGINT,
			PRIMARY KEY (query_key, merged_at)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create aggregated_snapshots: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."price_points" (
			symbol TEXT,
			timestamp BIGINT,
			price DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			percent_change DOUBLE PRECISION,
			PRIMARY KEY (symbol, timestamp)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create price_points: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveAggregatedRecords(records []models.MAggregatedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."aggregated_snapshots"
			(query_key, asset_id, symbol, name, price, market_cap, volume_24h, percent_change_24h,
			 circulating_supply, total_supply, max_supply, rank, image_url, high_24h, low_24h, sources, merged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (query_key, merged_at) DO NOTHING
	`, d.Schema)
	stmt, err := tx.Prepare(query)
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

func (d *PostgresDB) SavePricePoints(points []models.MPricePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."price_points" (symbol, timestamp, price, volume, percent_change)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, timestamp) DO NOTHING
	`, d.Schema)
	stmt, err := tx.Prepare(query)
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

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.DataRetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"."aggregated_snapshots" WHERE merged_at < $1`, d.Schema), cutoff); err != nil {
		d.Logger.Error("Cleanup aggregated_snapshots error: %v", err)
	}
	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"."price_points" WHERE timestamp < $1`, d.Schema), cutoff); err != nil {
		d.Logger.Error("Cleanup price_points error: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
