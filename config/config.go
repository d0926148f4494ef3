package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/rustyeddy/tradesizer/numfmt"
	"github.com/rustyeddy/tradesizer/risk"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the complete service and CLI configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Display DisplayConfig `json:"display" yaml:"display"`
	Risk    risk.Policy   `json:"risk" yaml:"risk"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr       string `json:"addr" yaml:"addr" env:"TRADESIZER_ADDR"`
	CORSOrigin string `json:"cors_origin" yaml:"cors_origin" env:"TRADESIZER_CORS_ORIGIN"`
	CacheTTL   string `json:"cache_ttl" yaml:"cache_ttl" env:"TRADESIZER_CACHE_TTL"` // e.g. "30s"
	Refresh    string `json:"refresh" yaml:"refresh" env:"TRADESIZER_REFRESH"`

	// URL is the base URL the CLI client talks to.
	URL string `json:"url,omitempty" yaml:"url,omitempty" env:"TRADESIZER_URL"`
}

// JournalConfig selects the trade store.
type JournalConfig struct {
	Type   string `json:"type" yaml:"type" env:"TRADESIZER_JOURNAL"` // "sqlite" or "memory"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty" env:"TRADESIZER_DB"`
}

// DisplayConfig controls number formatting.
type DisplayConfig struct {
	Locale   string `json:"locale" yaml:"locale" env:"TRADESIZER_LOCALE"`
	Currency string `json:"currency" yaml:"currency" env:"TRADESIZER_CURRENCY"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `json:"level" yaml:"level" env:"TRADESIZER_LOG_LEVEL"`
	Development bool   `json:"development" yaml:"development" env:"TRADESIZER_LOG_DEV"`
}

// CacheTTLDuration parses Server.CacheTTL.
func (s ServerConfig) CacheTTLDuration() (time.Duration, error) {
	return parseDuration(s.CacheTTL)
}

// RefreshDuration parses Server.Refresh.
func (s ServerConfig) RefreshDuration() (time.Duration, error) {
	return parseDuration(s.Refresh)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Policy returns the number formatting policy for Display.Locale.
func (d DisplayConfig) Policy() numfmt.Policy {
	p, err := numfmt.Lookup(d.Locale)
	if err != nil {
		return numfmt.ES
	}
	return p
}

// LoadFromFile loads configuration from a YAML or JSON file. Keys missing
// from the file keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
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

// Load reads path (or the defaults when path is empty), applies
// environment overrides from environ (the process environment when nil)
// and validates the result.
func Load(path string, environ map[string]string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(environ); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TRADESIZER_* variables. Unset variables
// leave the current value alone.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// SaveToFile saves configuration as YAML (.yaml/.yml) or JSON.
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

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

var currencyRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if d, err := c.Server.CacheTTLDuration(); err != nil || d < 0 {
		return fmt.Errorf("server.cache_ttl must be a non-negative duration")
	}
	if d, err := c.Server.RefreshDuration(); err != nil || d < 0 {
		return fmt.Errorf("server.refresh must be a non-negative duration")
	}

	switch c.Journal.Type {
	case "memory":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite' or 'memory'")
	}

	if _, err := numfmt.Lookup(c.Display.Locale); err != nil {
		return fmt.Errorf("unknown display.locale: %s", c.Display.Locale)
	}
	if !currencyRe.MatchString(c.Display.Currency) {
		return fmt.Errorf("display.currency must be a 3-letter code")
	}

	r := c.Risk
	if r.DefaultRiskPct < 0 || r.DefaultRiskPct > 100 || r.MaxRiskPct < 0 || r.MaxRiskPct > 100 {
		return fmt.Errorf("risk percentages must be between 0 and 100")
	}
	if r.DefaultRiskPct > 0 && r.MaxRiskPct > 0 && r.DefaultRiskPct > r.MaxRiskPct {
		return fmt.Errorf("risk.default_risk_pct must not exceed risk.max_risk_pct")
	}
	if r.MaxPositionPct < 0 || r.MaxOpenTrades < 0 {
		return fmt.Errorf("risk limits must not be negative")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":8080",
			CORSOrigin: "*",
			CacheTTL:   "30s",
			Refresh:    "60s",
			URL:        "http://localhost:8080",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./tradesizer.db",
		},
		Display: DisplayConfig{
			Locale:   "es-ES",
			Currency: "USD",
		},
		Risk: risk.DefaultPolicy(),
		Log: LogConfig{
			Level: "info",
		},
	}
}
