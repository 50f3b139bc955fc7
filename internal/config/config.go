package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Storage types
const (
	StorageMemory        = "memory"
	StorageSQLite        = "sqlite"
	StorageElasticsearch = "elasticsearch"
)

// Config holds all configuration for the application
type Config struct {
	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development" or "production"
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Storage configuration
	DataDir     string `env:"DATA_DIR"`
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	DBPath      string `env:"DB_PATH"`

	Elasticsearch ElasticsearchConfig `envPrefix:"ES_"`
	Jackpot       JackpotConfig       `envPrefix:"JACKPOT_"`
	Slot          SlotConfig          `envPrefix:"SLOT_"`
	Sessions      SessionConfig       `envPrefix:"SESSION_"`
}

// ElasticsearchConfig configures the round-history index
type ElasticsearchConfig struct {
	URL         string `env:"URL" envDefault:"http://localhost:9200"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	IndexPrefix string `env:"INDEX_PREFIX" envDefault:"tucocasino"`

	// Monthly round indices older than this are deleted
	RetentionMonths int           `env:"RETENTION_MONTHS" envDefault:"12"`
	PruneInterval   time.Duration `env:"PRUNE_INTERVAL" envDefault:"24h"`
}

// JackpotConfig configures the progressive pool attached to the slot machine
type JackpotConfig struct {
	ID               string          `env:"ID" envDefault:"main"`
	SeedAmount       decimal.Decimal `env:"SEED" envDefault:"1000"`
	ResetAmount      decimal.Decimal `env:"RESET" envDefault:"1000"`
	ContributionRate decimal.Decimal `env:"RATE" envDefault:"0.01"`
	MustHitBy        decimal.Decimal `env:"MUST_HIT_BY" envDefault:"5000"`
}

// SlotConfig configures reel generation
type SlotConfig struct {
	MachineID   string `env:"MACHINE_ID" envDefault:"machine-1"`
	Reels       int    `env:"REELS" envDefault:"5"`
	StripLength int    `env:"STRIP_LENGTH" envDefault:"50"`
	Rows        int    `env:"ROWS" envDefault:"3"`
}

// SessionConfig controls how long idle blackjack sessions are kept
type SessionConfig struct {
	FinishedTTL  time.Duration `env:"FINISHED_TTL" envDefault:"10m"`
	AbandonedTTL time.Duration `env:"ABANDONED_TTL" envDefault:"1h"`
	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"1m"`
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if cfg.StorageType != StorageMemory {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Parse builds a Config from the current environment without touching .env or the filesystem
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.DataDir = filepath.Join(wd, "data")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "tucocasino.db")
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks if all configuration values are usable
func (c *Config) validate() error {
	switch c.StorageType {
	case StorageMemory, StorageSQLite, StorageElasticsearch:
	default:
		return fmt.Errorf("STORAGE_TYPE must be one of memory, sqlite, elasticsearch: got %q", c.StorageType)
	}
	if c.StorageType == StorageElasticsearch && c.Elasticsearch.URL == "" {
		return fmt.Errorf("ES_URL is required for elasticsearch storage")
	}
	if c.StorageType == StorageElasticsearch && (c.Elasticsearch.RetentionMonths < 1 || c.Elasticsearch.PruneInterval <= 0) {
		return fmt.Errorf("ES_RETENTION_MONTHS and ES_PRUNE_INTERVAL must be positive")
	}

	j := c.Jackpot
	if !j.SeedAmount.IsPositive() {
		return fmt.Errorf("JACKPOT_SEED must be positive")
	}
	if j.ResetAmount.LessThan(j.SeedAmount) {
		return fmt.Errorf("JACKPOT_RESET must be at least JACKPOT_SEED")
	}
	if j.MustHitBy.LessThan(j.ResetAmount) {
		return fmt.Errorf("JACKPOT_MUST_HIT_BY must be at least JACKPOT_RESET")
	}
	if !j.ContributionRate.IsPositive() || j.ContributionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("JACKPOT_RATE must be between 0 and 1")
	}

	if c.Slot.Reels < 3 {
		return fmt.Errorf("SLOT_REELS must be at least 3")
	}
	if c.Slot.Rows < 1 || c.Slot.StripLength < c.Slot.Rows {
		return fmt.Errorf("SLOT_STRIP_LENGTH must be at least SLOT_ROWS")
	}

	if c.Sessions.FinishedTTL <= 0 || c.Sessions.AbandonedTTL <= 0 {
		return fmt.Errorf("session TTLs must be positive")
	}
	if c.Sessions.ReapInterval <= 0 {
		return fmt.Errorf("SESSION_REAP_INTERVAL must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
