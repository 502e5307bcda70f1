package main

import (
	"time"

	"crypto-observer/src/cache"
	datasource "crypto-observer/src/data_source"
	"crypto-observer/src/data_source/binance"
	"crypto-observer/src/data_source/coingecko"
	"crypto-observer/src/data_source/coinpaprika"
	"crypto-observer/src/helpers"
	"crypto-observer/src/interfaces"
	"crypto-observer/src/logger"
	"crypto-observer/src/models"
	"crypto-observer/src/network"
	"crypto-observer/src/ratelimit"
	"crypto-observer/src/storage"
	"crypto-observer/src/textgen"
)

// -----------------------------------------------------------------------------

// setupDatabase initializes the database connection based on config
func setupDatabase(config *models.MConfig, appLogger *logger.Logger) (interfaces.IDatabase, error) {
	var db interfaces.IDatabase
	var err error

	switch config.Storage.DBType {
	case "postgres":
		pgLogger := logger.NewLogger(config.LogLevel, "PostgresDB")
		db, err = storage.NewPostgresDB(config, pgLogger)
	default:
		// Default to SQLite
		sqliteLogger := logger.NewLogger(config.LogLevel, "SQLiteDB")
		db, err = storage.NewAsyncSQLiteDB(config, sqliteLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
		return nil, err
	}

	// The database container may come up after us; retry before giving up.
	_, err = helpers.RetryWithBackoff("database migration", 3, 2*time.Second, func() (interface{}, error) {
		return nil, db.Initialize()
	})
	if err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
		return nil, err
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(config *models.MConfig) interfaces.INetworkManager {
	networkLogger := logger.NewLogger(config.LogLevel, "NetworkManager")
	return network.NewAsyncNetworkManager(config, networkLogger)
}

// -----------------------------------------------------------------------------

// setupProviders builds the provider list in config order. Config order is
// the merge precedence, so the slice order must not be rearranged.
func setupProviders(config *models.MConfig, networkManager interfaces.INetworkManager, appLogger *logger.Logger) []interfaces.IProvider {
	var providers []interfaces.IProvider
	appLogger.Info("Initializing providers...")

	for _, pCfg := range config.Providers {
		switch pCfg.Type {
		case "coingecko":
			providers = append(providers, coingecko.NewCoinGeckoSource(pCfg, networkManager))
		case "coinpaprika":
			providers = append(providers, coinpaprika.NewCoinPaprikaSource(pCfg, networkManager))
		case "binance":
			providers = append(providers, binance.NewBinanceSource(pCfg, networkManager))
		default:
			appLogger.Warning("Unknown provider type in config: %s", pCfg.Type)
			continue
		}
		appLogger.Info("Added provider: %s (type %s)", pCfg.Name, pCfg.Type)
	}

	return providers
}

// -----------------------------------------------------------------------------

// setupAggregator wires the caches, rate limits and circuit breakers.
func setupAggregator(config *models.MConfig, providers []interfaces.IProvider) *datasource.Aggregator {
	registry := ratelimit.NewRegistry(config.Breaker, logger.NewLogger(config.LogLevel, "Breakers"))
	for _, pCfg := range config.Providers {
		registry.ConfigureLimit(pCfg.Name, pCfg.RatePerSecond, pCfg.RateBurst)
	}

	identityCache := cache.NewTTLCache[models.MIdentity]("identity", time.Duration(config.Cache.IdentityTTLSeconds)*time.Second)
	resultCache := cache.NewTTLCache[models.MAggregatedRecord]("result", time.Duration(config.Cache.ResultTTLSeconds)*time.Second)

	return datasource.NewAggregator(providers, identityCache, resultCache, registry, logger.NewLogger(config.LogLevel, "Aggregator"))
}

// -----------------------------------------------------------------------------

// setupTextGenerator returns nil when no Ollama endpoint is configured; the
// insight endpoint then answers 503.
func setupTextGenerator(config *models.MConfig, networkManager interfaces.INetworkManager) interfaces.ITextGenerator {
	if config.Ollama.BaseURL == "" {
		return nil
	}
	return textgen.NewOllamaClient(config.Ollama, networkManager)
}
