package models

// MConfig Structure
type MConfig struct {
	Name      string            `yaml:"name"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	LogLevel  string            `yaml:"log_level"`
	GrpcHost  string            `yaml:"grpc_host"`
	GrpcPort  int               `yaml:"grpc_port"`
	Storage   MStorageConfig    `yaml:"storage"`
	Network   MNetworkConfig    `yaml:"network"`
	Providers []MProviderConfig `yaml:"providers"`
	Cache     MCacheConfig      `yaml:"cache"`
	Breaker   MBreakerConfig    `yaml:"circuit_breaker"`
	Watchlist MWatchlistConfig  `yaml:"watchlist"`
	Ollama    MOllamaConfig     `yaml:"ollama"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	DataRetentionDays  int    `yaml:"data_retention_days"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

// MProviderConfig describes one upstream market-data source.
// The order of the providers list in the YAML file is the registration order,
// which is the merge tie-break contract for the aggregator.
type MProviderConfig struct {
	Name          string  `yaml:"name"`
	Type          string  `yaml:"type"` // "coingecko", "coinpaprika", "binance"
	BaseURL       string  `yaml:"base_url"`
	APIKey        string  `yaml:"api_key"` // Optional
	RatePerSecond float64 `yaml:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst"`
}

type MCacheConfig struct {
	IdentityTTLSeconds int `yaml:"identity_ttl_seconds"`
	ResultTTLSeconds   int `yaml:"result_ttl_seconds"`
	SweepSeconds       int `yaml:"sweep_seconds"` // 0 disables the background sweep
}

type MBreakerConfig struct {
	FailureThreshold    int `yaml:"failure_threshold"`
	SuccessThreshold    int `yaml:"success_threshold"`
	ResetTimeoutSeconds int `yaml:"reset_timeout_seconds"`
}

type MWatchlistConfig struct {
	Symbols                []string `yaml:"symbols"`
	RefreshIntervalSeconds int      `yaml:"refresh_interval_seconds"`
	HistoryPoints          int      `yaml:"history_points"`
}

type MOllamaConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
}
