package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/holdings/costbasis"
	"github.com/rustyeddy/holdings/market"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvDBPath    = "HOLDINGS_DB_PATH"
	EnvOwner     = "HOLDINGS_OWNER"
	EnvLogLevel  = "HOLDINGS_LOG_LEVEL"
	EnvCostBasis = "HOLDINGS_COST_BASIS"
)

// Config represents the complete holdings configuration
type Config struct {
	Owner            string             `json:"owner" yaml:"owner"`
	Database         DatabaseConfig     `json:"database" yaml:"database"`
	StableCurrencies []string           `json:"stable_currencies" yaml:"stable_currencies"`
	CostBasis        CostBasisConfig    `json:"cost_basis" yaml:"cost_basis"`
	Prices           map[string]float64 `json:"prices,omitempty" yaml:"prices,omitempty"`
	PriceFile        string             `json:"price_file,omitempty" yaml:"price_file,omitempty"`
	Log              LogConfig          `json:"log" yaml:"log"`
}

// DatabaseConfig locates the SQLite database
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// CostBasisConfig selects the default method of analytical gain reports
type CostBasisConfig struct {
	Method string `json:"method" yaml:"method"` // fifo, lifo or average
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"` // debug, info, warn or error
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON).
// Settings missing from the file keep their defaults.
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

// Load builds the effective configuration: defaults, then the file at path
// when given, then variables from .env and the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings with the non-empty HOLDINGS_* variables
// returned by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := getenv(EnvOwner); v != "" {
		c.Owner = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvCostBasis); v != "" {
		c.CostBasis.Method = v
	}
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

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if len(c.StableCurrencies) == 0 {
		return fmt.Errorf("stable_currencies must list at least one currency")
	}
	for _, s := range c.StableCurrencies {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("stable_currencies contains an empty symbol")
		}
	}
	if _, err := c.Method(); err != nil {
		return fmt.Errorf("cost_basis.method: %w", err)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	for sym, p := range c.Prices {
		if p < 0 {
			return fmt.Errorf("prices.%s must not be negative", sym)
		}
	}
	return nil
}

// Method returns the configured cost-basis method.
func (c *Config) Method() (costbasis.Method, error) {
	return costbasis.ParseMethod(c.CostBasis.Method)
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, err
	}
	return l, nil
}

// Stable returns the registry of stable-value currencies.
func (c *Config) Stable() market.StableSet {
	return market.NewStableSet(c.StableCurrencies...)
}

// PriceSource returns the static prices of the price file, overlaid with the
// inline prices.
func (c *Config) PriceSource() (*market.StaticPrices, error) {
	sp := market.NewStaticPrices(nil)
	if c.PriceFile != "" {
		var err error
		if sp, err = market.LoadPriceFile(c.PriceFile); err != nil {
			return nil, err
		}
	}
	for sym, p := range c.Prices {
		sp.Set(sym, decimal.NewFromFloat(p))
	}
	return sp, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Owner:            "default",
		Database:         DatabaseConfig{Path: "./holdings.db"},
		StableCurrencies: append([]string(nil), market.DefaultStableCurrencies...),
		CostBasis:        CostBasisConfig{Method: "fifo"},
		Log:              LogConfig{Level: "info"},
	}
}
