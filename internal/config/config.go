// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // base directory for the sqlite database
	Port     int
	LogLevel string
	DevMode  bool

	// Market data
	MarketIndex    string        // benchmark symbol for beta (S&P 500 by default)
	FetchTimeout   time.Duration // timeout for a single provider call
	Workers        int           // concurrency bound for per-symbol work
	DefaultSymbols []string      // fallback when watchlist and portfolio are both empty

	// Risk
	RiskFreeRate float64 // annualized, as a decimal

	// Technical analysis parameters
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	MAShort         int
	MALong          int
	BollingerPeriod int
	BollingerStdDev float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FINADVISOR_DATA_DIR", "data")
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
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		MarketIndex:    getEnv("MARKET_INDEX", "^GSPC"),
		FetchTimeout:   time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		Workers:        getEnvAsInt("WORKERS", 4),
		DefaultSymbols: getEnvAsList("DEFAULT_SYMBOLS", []string{"AAPL", "TSLA", "NVDA", "GOOGL", "MSFT"}),

		RiskFreeRate: getEnvAsFloat("RISK_FREE_RATE", 0.05),

		RSIPeriod:       getEnvAsInt("RSI_PERIOD", 14),
		MACDFast:        getEnvAsInt("MACD_FAST", 12),
		MACDSlow:        getEnvAsInt("MACD_SLOW", 26),
		MACDSignal:      getEnvAsInt("MACD_SIGNAL", 9),
		MAShort:         getEnvAsInt("MA_SHORT", 20),
		MALong:          getEnvAsInt("MA_LONG", 60),
		BollingerPeriod: getEnvAsInt("BOLLINGER_PERIOD", 20),
		BollingerStdDev: getEnvAsFloat("BOLLINGER_STD_DEV", 2.0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("MACD_FAST (%d) must be smaller than MACD_SLOW (%d)", c.MACDFast, c.MACDSlow)
	}
	if c.MAShort >= c.MALong {
		return fmt.Errorf("MA_SHORT (%d) must be smaller than MA_LONG (%d)", c.MAShort, c.MALong)
	}
	return nil
}

// DatabasePath returns the sqlite file path inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "finance.db")
}

// Helper functions

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
