// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds client configuration loaded from the environment.
type Config struct {
	// APIBaseURL is the base URL of the brokerage API (e.g. https://ops.example.com/api). Required.
	APIBaseURL string `mapstructure:"API_BASE_URL"`
	// HTTPTimeout is the per-request timeout (e.g. "15s").
	HTTPTimeout string `mapstructure:"HTTP_TIMEOUT"`
	// StateDir is where the client keeps its signed identity mirror and signing key.
	// Empty means <user config dir>/brokerops.
	StateDir string `mapstructure:"STATE_DIR"`
	// PageSize is the default page size for transaction and audit listings.
	PageSize int `mapstructure:"PAGE_SIZE"`
	// MirrorTTL bounds how long a restored identity mirror is trusted without
	// a fresh login (e.g. "12h"). The server's 401 remains the real validator.
	MirrorTTL string `mapstructure:"MIRROR_TTL"`
	// OTLPEndpoint enables telemetry export when set (e.g. http://localhost:4317).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored. Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("STATE_DIR", "")
	v.SetDefault("PAGE_SIZE", 20)
	v.SetDefault("MIRROR_TTL", "12h")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.APIBaseURL == "" {
		return nil, errors.New("config: API_BASE_URL must be set")
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 200 {
		return nil, errors.New("config: PAGE_SIZE must be between 1 and 200")
	}

	return &cfg, nil
}

// Timeout parses HTTPTimeout as a time.Duration. Returns 15s if unset or invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// MirrorLifetime parses MirrorTTL as a time.Duration. Returns 12h if unset or invalid.
func (c *Config) MirrorLifetime() time.Duration {
	d, err := time.ParseDuration(c.MirrorTTL)
	if err != nil || d <= 0 {
		return 12 * time.Hour
	}
	return d
}

// ResolveStateDir returns StateDir, or <user config dir>/brokerops when unset.
// The directory is created if it does not exist.
func (c *Config) ResolveStateDir() (string, error) {
	dir := c.StateDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "brokerops")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
