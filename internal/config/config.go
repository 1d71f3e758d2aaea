// Package config provides configuration management functionality.
//
// Configuration is loaded from environment variables (and an optional .env
// file) at startup, then overridden from the settings database once it is
// available. Settings database values take precedence over environment
// variables, which lets provider credentials and tuning parameters be
// changed at runtime without restarting the process.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aristath/wealthfolio-core/internal/modules/settings"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir string // base directory for all sqlite databases, always absolute
	Port    int    // HTTP server port
	DevMode bool
	LogLevel string // debug, info, warn, error

	BaseCurrency       string // reporting currency for aggregated valuations
	ValuationTimezone  string // IANA timezone used to derive the valuation date from activity timestamps

	HistoryDaysDefault       int // default lookback window for a newly tracked asset
	ClosedPositionGraceDays  int // days a closed position's symbol keeps syncing after going flat
	QuoteHistoryBufferDays   int // extra days fetched before the first activity date
	MinSyncLookbackDays      int // floor on any incremental sync's lookback window

	AlphaVantageAPIKey  string
	MetalPriceAPIKey    string
	OpenFIGIAPIKey      string // optional; raises OpenFIGI's rate limit but resolution works without one

	R2AccountID        string
	R2AccessKeyID      string
	R2SecretAccessKey  string
	R2BucketName       string
	R2BackupEnabled    bool
	R2BackupSchedule   string
}

// Load reads configuration from environment variables.
//
// dataDirOverride, if provided and non-empty, takes priority over the
// WEALTHFOLIO_DATA_DIR environment variable and the built-in default.
func Load(dataDirOverride ...string) (*Config, error) {
	_ = godotenv.Load()

	var dataDir string
	if len(dataDirOverride) > 0 && dataDirOverride[0] != "" {
		dataDir = dataDirOverride[0]
	} else {
		dataDir = getEnv("WEALTHFOLIO_DATA_DIR", "")
		if dataDir == "" {
			dataDir = "./data"
		}
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8080),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BaseCurrency:      getEnv("BASE_CURRENCY", "USD"),
		ValuationTimezone: getEnv("VALUATION_TIMEZONE", "America/New_York"),

		HistoryDaysDefault:      getEnvAsInt("HISTORY_DAYS_DEFAULT", 1825),
		ClosedPositionGraceDays: getEnvAsInt("CLOSED_POSITION_GRACE_DAYS", 45),
		QuoteHistoryBufferDays:  getEnvAsInt("QUOTE_HISTORY_BUFFER_DAYS", 45),
		MinSyncLookbackDays:     getEnvAsInt("MIN_SYNC_LOOKBACK_DAYS", 5),

		AlphaVantageAPIKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
		MetalPriceAPIKey:   getEnv("METALPRICEAPI_API_KEY", ""),
		OpenFIGIAPIKey:     getEnv("OPENFIGI_API_KEY", ""),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2BackupEnabled:   getEnvAsBool("R2_BACKUP_ENABLED", false),
		R2BackupSchedule:  getEnv("R2_BACKUP_SCHEDULE", "daily"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UpdateFromSettings overrides Config fields with values from the settings
// table, when present and non-empty. Call after the ledger database (which
// holds the settings table) has been opened and migrated.
func (c *Config) UpdateFromSettings(settingsRepo *settings.Repository) error {
	if v, err := settingsRepo.Get("base_currency"); err != nil {
		return fmt.Errorf("failed to get base_currency from settings: %w", err)
	} else if v != nil && *v != "" {
		c.BaseCurrency = *v
	}

	if v, err := settingsRepo.Get("valuation_timezone"); err != nil {
		return fmt.Errorf("failed to get valuation_timezone from settings: %w", err)
	} else if v != nil && *v != "" {
		c.ValuationTimezone = *v
	}

	if v, err := settingsRepo.Get("alphavantage_api_key"); err != nil {
		return fmt.Errorf("failed to get alphavantage_api_key from settings: %w", err)
	} else if v != nil && *v != "" {
		c.AlphaVantageAPIKey = *v
	}

	if v, err := settingsRepo.Get("metalpriceapi_api_key"); err != nil {
		return fmt.Errorf("failed to get metalpriceapi_api_key from settings: %w", err)
	} else if v != nil && *v != "" {
		c.MetalPriceAPIKey = *v
	}

	if v, err := settingsRepo.Get("openfigi_api_key"); err != nil {
		return fmt.Errorf("failed to get openfigi_api_key from settings: %w", err)
	} else if v != nil && *v != "" {
		c.OpenFIGIAPIKey = *v
	}

	if days, err := settingsRepo.GetInt("closed_position_grace_days", c.ClosedPositionGraceDays); err != nil {
		return fmt.Errorf("failed to get closed_position_grace_days from settings: %w", err)
	} else {
		c.ClosedPositionGraceDays = days
	}

	return nil
}

// Validate checks invariants that must hold before the process starts serving.
func (c *Config) Validate() error {
	if c.BaseCurrency == "" {
		return fmt.Errorf("base currency must not be empty")
	}
	if c.HistoryDaysDefault <= 0 {
		return fmt.Errorf("history days default must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
