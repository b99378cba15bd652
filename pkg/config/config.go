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

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// External data
	Prices PricesConfig
	Ingest IngestConfig

	// Analysis
	Analysis AnalysisConfig

	// Notifications
	Ntfy NtfyConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// PricesConfig holds price provider configuration.
type PricesConfig struct {
	BaseURL        string
	BatchSize      int           // tickers per provider batch
	RequestsPerSec float64       // provider rate limit
	RequestTimeout time.Duration // per-request timeout
	MinCachePoints int           // cached points below which a ticker is refetched
}

// IngestConfig holds trade ingestion configuration.
type IngestConfig struct {
	CapitolTradesURL string
	HouseFeedURL     string
	SenateFeedURL    string
	InitialLookback  int // days of history on first load
	TradesPerPage    int

	// Inclusion filters
	IncludePurchases bool
	IncludeSales     bool
	IncludeSelf      bool
	IncludeSpouse    bool
	IncludeDependent bool
	IncludeJoint     bool

	// Optional watchlists; empty means no restriction
	WatchTickers []string
	WatchMembers []string
}

// AnalysisConfig holds the return/Sharpe pipeline configuration.
// Passed explicitly into the calculator and aggregator so test runs
// with different rates cannot interfere with each other.
type AnalysisConfig struct {
	RiskFreeAnnual     float64
	TradingDaysPerYear int
	HorizonDays        int
	EntryWindowPadDays int // padding before the earliest trade when fetching prices
}

// NtfyConfig holds push notification configuration.
type NtfyConfig struct {
	Server      string
	Topic       string
	Enabled     bool
	DailyDigest bool
	QuietStart  int // hour of day, inclusive
	QuietEnd    int // hour of day, exclusive
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Prices: PricesConfig{
			BaseURL:        getEnv("PRICES_BASE_URL", "https://query1.finance.yahoo.com"),
			BatchSize:      getEnvAsInt("PRICES_BATCH_SIZE", 50),
			RequestsPerSec: getEnvAsFloat("PRICES_REQUESTS_PER_SEC", 4.0),
			RequestTimeout: getEnvAsDuration("PRICES_REQUEST_TIMEOUT", "30s"),
			MinCachePoints: getEnvAsInt("PRICES_MIN_CACHE_POINTS", 10),
		},

		Ingest: IngestConfig{
			CapitolTradesURL: getEnv("CAPITOL_TRADES_URL", "https://www.capitoltrades.com/trades"),
			HouseFeedURL:     getEnv("HOUSE_FEED_URL", "https://house-stock-watcher-data.s3-us-west-2.amazonaws.com/data/all_transactions.json"),
			SenateFeedURL:    getEnv("SENATE_FEED_URL", "https://senate-stock-watcher-data.s3-us-west-2.amazonaws.com/aggregate/all_transactions.json"),
			InitialLookback:  getEnvAsInt("INITIAL_LOOKBACK_DAYS", 365*5),
			TradesPerPage:    getEnvAsInt("TRADES_PER_PAGE", 12),
			IncludePurchases: getEnvAsBool("INCLUDE_PURCHASES", true),
			IncludeSales:     getEnvAsBool("INCLUDE_SALES", true),
			IncludeSelf:      getEnvAsBool("INCLUDE_SELF", true),
			IncludeSpouse:    getEnvAsBool("INCLUDE_SPOUSE", true),
			IncludeDependent: getEnvAsBool("INCLUDE_DEPENDENT", true),
			IncludeJoint:     getEnvAsBool("INCLUDE_JOINT", true),
			WatchTickers:     getEnvAsList("WATCH_TICKERS"),
			WatchMembers:     getEnvAsList("WATCH_MEMBERS"),
		},

		Analysis: AnalysisConfig{
			RiskFreeAnnual:     getEnvAsFloat("RISK_FREE_RATE_ANNUAL", 0.045),
			TradingDaysPerYear: getEnvAsInt("TRADING_DAYS_PER_YEAR", 252),
			HorizonDays:        getEnvAsInt("RETURN_HORIZON_DAYS", 30),
			EntryWindowPadDays: getEnvAsInt("ENTRY_WINDOW_PAD_DAYS", 5),
		},

		Ntfy: NtfyConfig{
			Server:      getEnv("NTFY_SERVER", "https://ntfy.sh"),
			Topic:       getEnv("NTFY_TOPIC", ""),
			Enabled:     getEnvAsBool("NTFY_ENABLED", false),
			DailyDigest: getEnvAsBool("NTFY_DAILY_DIGEST", false),
			QuietStart:  getEnvAsInt("NTFY_QUIET_START", 22),
			QuietEnd:    getEnvAsInt("NTFY_QUIET_END", 7),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Prices.BatchSize <= 0 {
		return fmt.Errorf("PRICES_BATCH_SIZE must be positive")
	}

	if c.Analysis.TradingDaysPerYear <= 0 {
		return fmt.Errorf("TRADING_DAYS_PER_YEAR must be positive")
	}

	if c.Ntfy.Enabled && c.Ntfy.Topic == "" {
		return fmt.Errorf("NTFY_TOPIC is required when NTFY_ENABLED is true")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList parses a comma-separated environment variable.
// Empty entries are dropped; an unset variable yields nil.
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	var values []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			values = append(values, p)
		}
	}
	return values
}
