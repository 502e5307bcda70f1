package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-observer/src/interfaces"
	"crypto-observer/src/logger"
	"crypto-observer/src/models"
	"crypto-observer/src/utils"
)

// -----------------------------------------------------------------------------
// Refresher drives the periodic watchlist refresh: each cycle it re-aggregates
// every watched symbol, feeds the history buffers, persists the results and
// pushes a snapshot to the websocket hub.
// -----------------------------------------------------------------------------

type Refresher struct {
	Aggregator *Aggregator
	History    *utils.HistoryStore
	Database   interfaces.IDatabase      // nil when storage is disabled
	Exchanger  interfaces.IDataExchanger // nil when the hub is disabled
	Logger     *logger.Logger

	interval time.Duration

	mu         sync.RWMutex
	symbols    []string
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// -----------------------------------------------------------------------------

func NewRefresher(agg *Aggregator, history *utils.HistoryStore, cfg models.MWatchlistConfig, log *logger.Logger) *Refresher {
	return &Refresher{
		Aggregator: agg,
		History:    history,
		Logger:     log,
		interval:   time.Duration(cfg.RefreshIntervalSeconds) * time.Second,
		symbols:    append([]string(nil), cfg.Symbols...),
	}
}

// -----------------------------------------------------------------------------

// Start launches the refresh loop on a derived context.
func (r *Refresher) Start(parentCtx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx != nil {
		return fmt.Errorf("refresher is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	r.ctx = ctx
	r.cancelFunc = cancel

	go r.loop(ctx)

	r.Logger.Info("Refresher started (%d symbols, every %s)", len(r.symbols), r.interval)
	return nil
}

// -----------------------------------------------------------------------------

// Stop cancels the loop. Safe to call when not running.
func (r *Refresher) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx == nil {
		return nil // Already stopped
	}

	if r.cancelFunc != nil {
		r.cancelFunc()
	}
	r.cancelFunc = nil
	r.ctx = nil

	r.Logger.Info("Refresher stopped.")
	return nil
}

// -----------------------------------------------------------------------------

// UpdateSymbols swaps the watchlist. The next cycle uses the new list.
func (r *Refresher) UpdateSymbols(symbols []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.symbols = append([]string(nil), symbols...)
	r.Logger.Info("Watchlist updated: %d symbols", len(symbols))
}

// -----------------------------------------------------------------------------

// Symbols returns a copy of the current watchlist.
func (r *Refresher) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.symbols...)
}

// -----------------------------------------------------------------------------

func (r *Refresher) loop(ctx context.Context) {
	// First cycle right away so dashboards are not empty for a full interval.
	r.RefreshOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RefreshOnce(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

// RefreshOnce runs a single refresh cycle. Exported so the control plane can
// trigger an out-of-schedule refresh.
func (r *Refresher) RefreshOnce(ctx context.Context) models.MRefreshMetrics {
	start := time.Now()
	symbols := r.Symbols()

	records := make(map[string]models.MAggregatedRecord, len(symbols))
	var metrics models.MRefreshMetrics

	for _, sym := range symbols {
		if ctx.Err() != nil {
			break
		}

		// Drop only the result entry: the identity stays cached, so a cycle
		// costs one fetch fan-out per symbol, not a re-resolution.
		r.Aggregator.ResultCache.Evict(NormalizeQuery(sym))

		rec, err := r.Aggregator.GetAggregatedData(ctx, sym, false)
		if err != nil {
			r.Logger.Warning("Refresh failed for %q: %v", sym, err)
			metrics.FailedSymbols++
			continue
		}

		records[rec.Identity.Symbol] = rec
		metrics.RefreshedSymbols++

		if r.History != nil {
			r.History.AddPoint(rec.Identity.Symbol, rec.PricePoint())
		}
	}

	metrics.AggregationTimeSeconds = time.Since(start).Seconds()

	if len(records) > 0 {
		r.persist(records)
		r.broadcast(records, metrics)
	}

	r.Logger.Info("Refresh cycle: %d ok, %d failed in %.2fs",
		metrics.RefreshedSymbols, metrics.FailedSymbols, metrics.AggregationTimeSeconds)
	return metrics
}

// -----------------------------------------------------------------------------

func (r *Refresher) persist(records map[string]models.MAggregatedRecord) {
	if r.Database == nil {
		return
	}

	recs := make([]models.MAggregatedRecord, 0, len(records))
	points := make([]models.MPricePoint, 0, len(records))
	for _, rec := range records {
		recs = append(recs, rec)
		points = append(points, rec.PricePoint())
	}

	if err := r.Database.SaveAggregatedRecords(recs); err != nil {
		r.Logger.Error("Failed to save aggregated records: %v", err)
	}
	if err := r.Database.SavePricePoints(points); err != nil {
		r.Logger.Error("Failed to save price points: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (r *Refresher) broadcast(records map[string]models.MAggregatedRecord, metrics models.MRefreshMetrics) {
	if r.Exchanger == nil {
		return
	}

	latest := &models.MLatestData{
		Type:      "refresh",
		Records:   records,
		Timestamp: time.Now().UTC().Unix(),
		Metrics:   metrics,
	}
	r.Exchanger.UpdateAllDatas(latest)
	r.Exchanger.Broadcast(latest)
}
