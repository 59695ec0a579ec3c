// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github-dashboard/internal/selection"
)

const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel            string         `mapstructure:"LOG_LEVEL"`
	HTTPAddr            string         `mapstructure:"HTTP_ADDR"`
	GithubAPIURL        string         `mapstructure:"GITHUB_API_URL"`
	GithubToken         string         `mapstructure:"GITHUB_TOKEN"`
	StoreDriver         string         `mapstructure:"STORE_DRIVER"`
	StorePath           string         `mapstructure:"STORE_PATH"`
	StoreKey            string         `mapstructure:"STORE_KEY"`
	DBURL               string         `mapstructure:"DB_URL"`
	MigrationsURL       string         `mapstructure:"MIGRATIONS_URL"`
	FanoutLimit         int            `mapstructure:"FANOUT_LIMIT"`
	DateLocation        string         `mapstructure:"DATE_LOCATION"`
	RateLimitSleepLimit time.Duration  `mapstructure:"RATE_LIMIT_SLEEP_LIMIT"`
	RequestTimeout      time.Duration  `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout     time.Duration  `mapstructure:"SHUTDOWN_TIMEOUT"`
	Location            *time.Location `mapstructure:"-"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("GITHUB_API_URL", "")
	viper.SetDefault("GITHUB_TOKEN", "")
	viper.SetDefault("STORE_DRIVER", StoreDriverFile)
	viper.SetDefault("STORE_PATH", "selection.json")
	viper.SetDefault("STORE_KEY", selection.DefaultKey)
	viper.SetDefault("DB_URL", "")
	viper.SetDefault("MIGRATIONS_URL", "file://migrations")
	viper.SetDefault("FANOUT_LIMIT", 10)
	viper.SetDefault("DATE_LOCATION", "America/Sao_Paulo")
	viper.SetDefault("RATE_LIMIT_SLEEP_LIMIT", "1h")
	viper.SetDefault("REQUEST_TIMEOUT", "60s")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.DateLocation)
	if err != nil {
		return nil, fmt.Errorf("DATE_LOCATION %q is not a known time zone: %w", cfg.DateLocation, err)
	}
	cfg.Location = loc

	// Validate required fields
	switch cfg.StoreDriver {
	case StoreDriverFile:
		if cfg.StorePath == "" {
			return nil, errors.New("STORE_PATH is required when STORE_DRIVER is file")
		}
	case StoreDriverPostgres:
		if cfg.DBURL == "" {
			return nil, errors.New("DB_URL is required when STORE_DRIVER is postgres")
		}
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverFile, StoreDriverPostgres, cfg.StoreDriver)
	}
	if cfg.FanoutLimit < 0 {
		return nil, errors.New("FANOUT_LIMIT must not be negative")
	}
	if cfg.StoreKey == "" {
		return nil, errors.New("STORE_KEY must not be empty")
	}

	return &cfg, nil
}
