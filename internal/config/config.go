package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// GridConfig bounds the aggregation axes. Limits mirror what the UI can
// usefully render, not what upstream can return.
type GridConfig struct {
	ExpirationLimit int    `yaml:"expiration_limit"` // expiry columns per grid
	StrikeRowCap    int    `yaml:"strike_row_cap"`   // strike rows before stride decimation
	DefaultIV       float64 `yaml:"default_iv"`      // annualized fallback IV for net GEX, e.g. 0.60
}

// ProviderConfig selects and authenticates the upstream market-data source.
type ProviderConfig struct {
	Source              string `yaml:"source"` // "finnhub" or "yahoo"
	FinnhubAPIKey       string `yaml:"finnhub_api_key"`
	YahooMaxExpirations int    `yaml:"yahoo_max_expirations"` // per-expiration pages fetched per chain
}

type Config struct {
	Port     string         `yaml:"port"`
	Provider ProviderConfig `yaml:"provider"`
	Grid     GridConfig     `yaml:"grid"`
	Logging  LoggingConfig  `yaml:"logging"`

	// FlowLimit caps the top-flow leaderboard length.
	FlowLimit int `yaml:"flow_limit"`
}

// Load resolves configuration in three layers: built-in defaults, config.yaml
// if present, then environment variables (a .env file is honored via
// godotenv). Credentials never reach the core packages; they stop at the
// provider constructors.
func Load() *Config {
	// Best effort; a missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg := &Config{
		Port: "8080",
		Provider: ProviderConfig{
			Source:              "finnhub",
			YahooMaxExpirations: 4,
		},
		Grid: GridConfig{
			ExpirationLimit: 6,
			StrikeRowCap:    80,
			DefaultIV:       0.60,
		},
		Logging: LoggingConfig{
			LogLevel: "info",
			LogFile:  "heatseeker.log",
		},
		FlowLimit: 60,
	}

	if data, err := os.ReadFile("config.yaml"); err == nil {
		// A malformed config.yaml is ignored the same way a missing one is;
		// env vars can still supply everything.
		_ = yaml.Unmarshal(data, cfg)
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Provider.Source = getEnv("DATA_PROVIDER", cfg.Provider.Source)
	cfg.Provider.FinnhubAPIKey = getEnv("FINNHUB_API_KEY", cfg.Provider.FinnhubAPIKey)
	cfg.Provider.YahooMaxExpirations = getEnvInt("YAHOO_MAX_EXPIRATIONS", cfg.Provider.YahooMaxExpirations)
	cfg.Grid.ExpirationLimit = getEnvInt("GRID_EXPIRATION_LIMIT", cfg.Grid.ExpirationLimit)
	cfg.Grid.StrikeRowCap = getEnvInt("GRID_STRIKE_ROW_CAP", cfg.Grid.StrikeRowCap)
	cfg.Grid.DefaultIV = getEnvFloat("GRID_DEFAULT_IV", cfg.Grid.DefaultIV)
	cfg.Logging.LogLevel = getEnv("LOG_LEVEL", cfg.Logging.LogLevel)
	cfg.Logging.LogFile = getEnv("LOG_FILE", cfg.Logging.LogFile)
	cfg.FlowLimit = getEnvInt("FLOW_LIMIT", cfg.FlowLimit)

	return cfg
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Provider.Source {
	case "finnhub":
		if c.Provider.FinnhubAPIKey == "" {
			return fmt.Errorf("FINNHUB_API_KEY is required when provider.source is finnhub (set it in config.yaml, .env, or the environment)")
		}
	case "yahoo":
		// no credentials needed
	default:
		return fmt.Errorf("unknown provider source %q (want finnhub or yahoo)", c.Provider.Source)
	}
	if c.Grid.ExpirationLimit < 1 {
		return fmt.Errorf("grid.expiration_limit must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
