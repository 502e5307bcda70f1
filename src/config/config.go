package config

import (
	"fmt"
	"os"

	"crypto-observer/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills optional settings that have sane process-wide defaults.
func (c *Config) applyDefaults() {
	if c.Cache.IdentityTTLSeconds <= 0 {
		c.Cache.IdentityTTLSeconds = 6 * 3600 // identities rarely change
	}
	if c.Cache.ResultTTLSeconds <= 0 {
		c.Cache.ResultTTLSeconds = 180
	}
	if c.Breaker.FailureThreshold <= 0 {
		c.Breaker.FailureThreshold = 5
	}
	if c.Breaker.SuccessThreshold <= 0 {
		c.Breaker.SuccessThreshold = 2
	}
	if c.Breaker.ResetTimeoutSeconds <= 0 {
		c.Breaker.ResetTimeoutSeconds = 30
	}
	if c.Watchlist.HistoryPoints <= 0 {
		c.Watchlist.HistoryPoints = 2000
	}
	if c.Ollama.TimeoutSeconds <= 0 {
		c.Ollama.TimeoutSeconds = 120
	}
	for i := range c.Providers {
		if c.Providers[i].RatePerSecond <= 0 {
			c.Providers[i].RatePerSecond = 1
		}
		if c.Providers[i].RateBurst <= 0 {
			c.Providers[i].RateBurst = 2
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DataRetentionDays <= 0 {
		return fmt.Errorf("data retention days must be greater than 0")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Validate Provider configuration.
	// Order matters: it is the merge tie-break contract, so duplicates are fatal.
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider must be configured")
	}
	seen := make(map[string]bool)
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider %d must have a name", i)
		}
		if p.Type == "" {
			return fmt.Errorf("provider '%s' must have a type", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider name '%s'", p.Name)
		}
		seen[p.Name] = true
	}

	// Validate Watchlist configuration
	if c.Watchlist.RefreshIntervalSeconds <= 0 && len(c.Watchlist.Symbols) > 0 {
		return fmt.Errorf("refresh interval must be greater than 0 when a watchlist is configured")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
