package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerHost string `mapstructure:"host"`
	ServerPort string `mapstructure:"port"`

	// Database configuration
	DBPath string `mapstructure:"db_path"`

	// Cache configuration
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	DisableCache bool          `mapstructure:"disable_cache"`

	// Fetcher configuration
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxRetries   int           `mapstructure:"max_retries"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Address returns the host:port to bind the HTTP server to
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// Load loads configuration with Viper: defaults, then an optional config
// file, then COURIER_TRACKING_* environment variables.
func Load() (*Config, error) {
	return LoadWithViper(viper.New(), "")
}

// LoadWithViper loads configuration into a caller-supplied Viper instance.
// configFile may be empty, in which case only the default search paths are
// consulted and a missing file is not an error.
func LoadWithViper(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("COURIER_TRACKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		v.SetConfigName("courier-tracking")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/courier-tracking")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "localhost")
	v.SetDefault("port", "8080")

	v.SetDefault("db_path", "./courier-tracking.db")

	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("disable_cache", false)

	v.SetDefault("fetch_timeout", "30s")
	v.SetDefault("user_agent", "Mozilla/5.0 (compatible; CourierTracker/1.0)")
	v.SetDefault("max_retries", 2)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

func (c *Config) validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.CacheTTL)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", c.FetchTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative, got %d", c.MaxRetries)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}
