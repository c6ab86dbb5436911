package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the graphcommons CLI.
type Config struct {
	API     APIConfig     `toml:"api"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

// APIConfig holds Graph Commons connection details.
type APIConfig struct {
	URL        string   `toml:"url"`
	Key        string   `toml:"key"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"` // retries for GET requests only
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// MetricsConfig controls the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("30s") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		API: APIConfig{
			URL:        "https://graphcommons.com/api/v1",
			Timeout:    Duration{30 * time.Second},
			MaxRetries: 2,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty), and environment variables.
// Precedence: environment variables > file > defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.API.URL = envOr("GRAPHCOMMONS_URL", c.API.URL)
	c.API.Key = envOr("GRAPHCOMMONS_API_KEY", c.API.Key)
	c.Log.Level = envOr("GRAPHCOMMONS_LOG_LEVEL", c.Log.Level)
	c.Metrics.Addr = envOr("GRAPHCOMMONS_METRICS_ADDR", c.Metrics.Addr)

	if v := os.Getenv("GRAPHCOMMONS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GRAPHCOMMONS_TIMEOUT %q: %w", v, err)
		}
		c.API.Timeout = Duration{d}
	}
	if v := os.Getenv("GRAPHCOMMONS_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GRAPHCOMMONS_MAX_RETRIES %q: %w", v, err)
		}
		c.API.MaxRetries = n
	}
	return nil
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return fmt.Errorf("missing API key: set GRAPHCOMMONS_API_KEY or api.key in the config file")
	}
	if c.API.Timeout.Duration <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api max_retries must not be negative, got %d", c.API.MaxRetries)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
