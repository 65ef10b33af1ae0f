// Package config loads tracker configuration from a yaml file and
// environment variables. Everything has a default, so the tracker runs
// with no config file at all.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds the persistent store settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds the database connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// PriceSourceConfig holds the market data client settings.
type PriceSourceConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the HTTP timeout as a duration.
func (c PriceSourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RefreshConfig holds the scheduled refresh settings used by the watch
// command.
type RefreshConfig struct {
	// Schedule is a cron expression; the default fires after US market
	// close on weekdays.
	Schedule string `mapstructure:"schedule"`
}

// Config holds all tracker configuration.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	PriceSource PriceSourceConfig `mapstructure:"price_source"`
	Refresh     RefreshConfig     `mapstructure:"refresh"`
	LogLevel    string            `mapstructure:"log_level"`
}

// Load reads configuration from config.yaml in the given path (or the
// working directory when empty), then applies TRACKER_* environment
// overrides. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "investments")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("price_source.base_url", "")
	v.SetDefault("price_source.timeout_seconds", 10)

	v.SetDefault("refresh.schedule", "30 16 * * 1-5")

	v.SetDefault("log_level", "info")
}
