// Package config loads server configuration from defaults, an optional YAML
// file, a .env file and the process environment, in that order of precedence
// (later wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEnglishBaseURL = "https://api.pokemontcg.io/v2"

	// MaxPageSize is the largest page the English API serves.
	MaxPageSize     = 250
	DefaultPageSize = 100

	DefaultTimeoutMS = 30000
)

// Config holds everything cmd/server needs.
type Config struct {
	Port string `yaml:"port"`

	English  UpstreamConfig `yaml:"english"`
	Japanese UpstreamConfig `yaml:"japanese"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	FrontendDistPath   string   `yaml:"frontend_dist_path"`

	Logging LoggingConfig `yaml:"logging"`
	Session SessionConfig `yaml:"session"`
}

// UpstreamConfig is injected into an upstream client at construction.
// A source with an empty BaseURL is not configured.
type UpstreamConfig struct {
	BaseURL       string  `yaml:"base_url"`
	APIKey        string  `yaml:"api_key"`
	PageSize      int     `yaml:"page_size"`
	TimeoutMS     int     `yaml:"timeout_ms"`
	RatePerSecond float64 `yaml:"rate_per_second"` // 0 = unlimited
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type SessionConfig struct {
	MaxSessions int    `yaml:"max_sessions"`
	TTL         string `yaml:"ttl"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
// The Japanese source is disabled until a base URL is supplied.
func DefaultConfig() *Config {
	return &Config{
		Port: "8080",
		English: UpstreamConfig{
			BaseURL:   DefaultEnglishBaseURL,
			PageSize:  DefaultPageSize,
			TimeoutMS: DefaultTimeoutMS,
		},
		Japanese: UpstreamConfig{
			PageSize:  DefaultPageSize,
			TimeoutMS: DefaultTimeoutMS,
		},
		CORSAllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		Logging: LoggingConfig{
			Level: "info",
		},
		Session: SessionConfig{
			MaxSessions: 1000,
			TTL:         "24h",
		},
	}
}

// Load builds the configuration. path may be empty; a missing YAML file or
// .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}

	if v := os.Getenv("POKEMONTCG_BASE_URL"); v != "" {
		c.English.BaseURL = v
	}
	if v := os.Getenv("POKEMONTCG_API_KEY"); v != "" {
		c.English.APIKey = v
	}
	if err := envInt("POKEMONTCG_PAGE_SIZE", &c.English.PageSize); err != nil {
		return err
	}

	if v := os.Getenv("JAPANESE_API_BASE_URL"); v != "" {
		c.Japanese.BaseURL = v
	}
	if v := os.Getenv("JAPANESE_API_KEY"); v != "" {
		c.Japanese.APIKey = v
	}
	if err := envInt("JAPANESE_PAGE_SIZE", &c.Japanese.PageSize); err != nil {
		return err
	}

	// Shared upstream knobs apply to both sources
	var timeoutMS int
	if err := envInt("UPSTREAM_TIMEOUT_MS", &timeoutMS); err != nil {
		return err
	}
	if timeoutMS != 0 {
		c.English.TimeoutMS = timeoutMS
		c.Japanese.TimeoutMS = timeoutMS
	}
	if v := os.Getenv("UPSTREAM_RATE_PER_SEC"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("UPSTREAM_RATE_PER_SEC: %w", err)
		}
		c.English.RatePerSecond = rps
		c.Japanese.RatePerSecond = rps
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("FRONTEND_DIST_PATH"); v != "" {
		c.FrontendDistPath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		c.Logging.Development = v == "true" || v == "1"
	}

	if err := envInt("SESSION_MAX", &c.Session.MaxSessions); err != nil {
		return err
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		c.Session.TTL = v
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate clamps page sizes into 1..MaxPageSize, fills zero timeouts and
// rejects settings that cannot work.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.English.BaseURL == "" {
		return fmt.Errorf("english base url must not be empty")
	}
	for _, u := range []*UpstreamConfig{&c.English, &c.Japanese} {
		u.PageSize = ClampPageSize(u.PageSize)
		if u.TimeoutMS <= 0 {
			u.TimeoutMS = DefaultTimeoutMS
		}
		if u.RatePerSecond < 0 {
			return fmt.Errorf("rate per second must not be negative")
		}
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("session max must be positive")
	}
	if _, err := time.ParseDuration(c.Session.TTL); err != nil {
		return fmt.Errorf("session ttl: %w", err)
	}
	return nil
}

// ClampPageSize maps non-positive sizes to DefaultPageSize and caps the
// rest at MaxPageSize.
func ClampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Timeout returns the per-request timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutMS) * time.Millisecond
}

// Enabled reports whether the source has somewhere to send requests.
func (u UpstreamConfig) Enabled() bool {
	return u.BaseURL != ""
}

// GetSessionTTL returns the parsed session lifetime. Validate guarantees it
// parses.
func (c *Config) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
