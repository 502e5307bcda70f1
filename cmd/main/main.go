package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-observer/src/config"
	datasource "crypto-observer/src/data_source"
	"crypto-observer/src/helpers"
	"crypto-observer/src/logger"
	"crypto-observer/src/models"
	"crypto-observer/src/server"
	"crypto-observer/src/utils"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// 4. Setup Components
	db, err := setupDatabase(conf.MConfig, appLogger)
	if err != nil {
		os.Exit(1)
	}
	defer db.Close()

	networkManager := setupNetwork(conf.MConfig)
	providers := setupProviders(conf.MConfig, networkManager, appLogger)
	if len(providers) == 0 {
		appLogger.Critical("No valid providers initialized. Exiting.")
	}

	aggregator := setupAggregator(conf.MConfig, providers)

	// 5. History Store
	maxPoints := conf.Watchlist.HistoryPoints
	if retentionPoints := utils.CalculateMaxDataPoints(conf.Storage.DataRetentionDays); maxPoints > retentionPoints {
		// No use buffering more points than the retention window keeps
		maxPoints = retentionPoints
	}
	memLimit := helpers.GetRecommendedMemoryLimit()
	appLogger.Info("Memory Limit set to: %d MB", memLimit)
	history := utils.NewHistoryStore(memLimit, maxPoints)

	// 6. Text Generation (optional)
	textGen := setupTextGenerator(conf.MConfig, networkManager)

	// 7. API Server
	srv := server.NewFastAPIServer(conf.MConfig, aggregator, history, textGen, appLogger)

	// Lifecycle Management
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 8. Cache Sweepers
	if conf.Cache.SweepSeconds > 0 {
		sweepEvery := time.Duration(conf.Cache.SweepSeconds) * time.Second
		aggregator.IdentityCache.StartSweeper(ctx, sweepEvery)
		aggregator.ResultCache.StartSweeper(ctx, sweepEvery)
	}

	// 9. Watchlist Refresher
	refresher := datasource.NewRefresher(aggregator, history, conf.Watchlist, logger.NewLogger(conf.LogLevel, "Refresher"))
	refresher.Database = db
	refresher.Exchanger = srv

	// 10. Warm-up: seed caches and server state before accepting traffic
	if len(conf.Watchlist.Symbols) > 0 {
		appLogger.Info("Warming up %d watchlist symbols...", len(conf.Watchlist.Symbols))
		records := aggregator.WarmUp(ctx, conf.Watchlist.Symbols)
		srv.UpdateAllDatas(&models.MLatestData{
			Type:      "INITIAL",
			Records:   records,
			Timestamp: time.Now().UTC().Unix(),
		})

		if err := refresher.Start(ctx); err != nil {
			appLogger.Error("Failed to start refresher: %v", err)
		}
	}

	// 11. Start Servers
	startServers(srv, aggregator, refresher, conf, *configPath, appLogger)

	// 12. Daily retention cleanup
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := db.CleanupOldData(); err != nil {
					appLogger.Error("Retention cleanup failed: %v", err)
				}
			}
		}
	}()

	// 13. Block until shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	refresher.Stop()
	cancel()
	appLogger.Info("Shutdown complete.")
}
