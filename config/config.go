package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvAPIKey  = "FINNHUB_API_KEY"
	EnvDataDir = "FINANCE_DATA_DIR"
)

// Config represents the complete backend configuration
type Config struct {
	App   AppConfig   `json:"app" yaml:"app"`
	Quote QuoteConfig `json:"quote" yaml:"quote"`
	Log   LogConfig   `json:"log" yaml:"log"`
	API   APIConfig   `json:"api" yaml:"api"`
}

// AppConfig locates the database file.
type AppConfig struct {
	Name    string `json:"name" yaml:"name"`                             // data directory name
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"` // overrides the resolved per-app directory
}

// QuoteConfig configures the market data provider
type QuoteConfig struct {
	BaseURL   string `json:"base_url" yaml:"base_url"`
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Timeout   string `json:"timeout" yaml:"timeout"`       // e.g. "30s"
	RateLimit int    `json:"rate_limit" yaml:"rate_limit"` // requests per minute, 0 disables
}

// ParseTimeout converts the timeout string to time.Duration
func (q QuoteConfig) ParseTimeout() (time.Duration, error) {
	if q.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(q.Timeout)
}

// LogConfig contains logging parameters
type LogConfig struct {
	Level   string `json:"level" yaml:"level"` // debug|info|warn|error
	NoColor bool   `json:"no_color,omitempty" yaml:"no_color,omitempty"`
}

// APIConfig configures the HTTP invoke surface.
type APIConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// the file may carry the API key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays values from the environment. The API key is never
// compiled in; it comes from the file or from FINNHUB_API_KEY.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.Quote.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.App.DataDir = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.App.Name == "" && c.App.DataDir == "" {
		return fmt.Errorf("app.name or app.data_dir is required")
	}
	if strings.ContainsAny(c.App.Name, `/\`) {
		return fmt.Errorf("app.name must not contain path separators")
	}
	if c.Quote.BaseURL == "" {
		return fmt.Errorf("quote.base_url is required")
	}
	d, err := c.Quote.ParseTimeout()
	if err != nil {
		return fmt.Errorf("quote.timeout: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("quote.timeout must not be negative")
	}
	if c.Quote.RateLimit < 0 {
		return fmt.Errorf("quote.rate_limit must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug|info|warn|error")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "com.rustyeddy.finance",
		},
		Quote: QuoteConfig{
			BaseURL:   "https://finnhub.io/api/v1",
			Timeout:   "30s",
			RateLimit: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
		API: APIConfig{
			Addr: "127.0.0.1:8000",
		},
	}
}
