// Package config loads and saves goalplan configuration and holds the supported currency table.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/theirongolddev/goalplan/internal/model"
)

// Config holds all goalplan configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Rates      RatesConfig      `toml:"rates"`
	Advisor    AdvisorConfig    `toml:"advisor"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
}

// GeneralConfig holds default plan inputs.
type GeneralConfig struct {
	GoalCurrency    model.Currency `toml:"goal_currency"`
	InitialCurrency model.Currency `toml:"initial_currency"`
	MonthlyCurrency model.Currency `toml:"monthly_currency"`
	HistoryMonths   int            `toml:"history_months"`
}

// RatesConfig holds exchange rate API settings.
type RatesConfig struct {
	BaseURL       string `toml:"base_url,omitempty"`
	TimeoutSec    int    `toml:"timeout_sec"`
	CacheTTLHours int    `toml:"cache_ttl_hours"`
}

// AdvisorConfig holds the suggestion thresholds.
type AdvisorConfig struct {
	LowConfidence          float64 `toml:"low_confidence"`
	ContributionShare      float64 `toml:"contribution_share"`
	ShortfallTolerance     float64 `toml:"shortfall_tolerance"`
	HorizonExtensionMonths int     `toml:"horizon_extension_months"`
	CompareCurrencies      bool    `toml:"compare_currencies"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds settings for `goalplan serve`.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	RefreshSchedule string   `toml:"refresh_schedule"`
	WatchPairs      []string `toml:"watch_pairs,omitempty"`
}

// DefaultBaseURL is the public Frankfurter API endpoint.
const DefaultBaseURL = "https://api.frankfurter.app"

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			GoalCurrency:    "EUR",
			InitialCurrency: "EUR",
			MonthlyCurrency: "EUR",
			HistoryMonths:   6,
		},
		Rates: RatesConfig{
			BaseURL:       DefaultBaseURL,
			TimeoutSec:    12,
			CacheTTLHours: 12,
		},
		Advisor: DefaultAdvisor(),
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8787",
			RefreshSchedule: "@every 6h",
			WatchPairs:      []string{"USD/EUR", "INR/EUR"},
		},
	}
}

// DefaultAdvisor returns the default suggestion thresholds.
func DefaultAdvisor() AdvisorConfig {
	return AdvisorConfig{
		LowConfidence:          0.6,
		ContributionShare:      0.15,
		ShortfallTolerance:     0.02,
		HorizonExtensionMonths: 12,
		CompareCurrencies:      true,
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "goalplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "goalplan")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// LoadEnv reads a .env file from the working directory, if present.
// Variables already set in the environment win.
func LoadEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("reading .env: %w", err)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if !IsSupported(c.General.GoalCurrency) {
		c.General.GoalCurrency = def.General.GoalCurrency
	}
	if !IsSupported(c.General.InitialCurrency) {
		c.General.InitialCurrency = def.General.InitialCurrency
	}
	if !IsSupported(c.General.MonthlyCurrency) {
		c.General.MonthlyCurrency = def.General.MonthlyCurrency
	}
	if c.General.HistoryMonths < 1 {
		c.General.HistoryMonths = def.General.HistoryMonths
	}
	if c.Rates.TimeoutSec < 1 {
		c.Rates.TimeoutSec = def.Rates.TimeoutSec
	}
	if c.Rates.CacheTTLHours < 0 {
		c.Rates.CacheTTLHours = def.Rates.CacheTTLHours
	}
	if c.Advisor.HorizonExtensionMonths < 1 {
		c.Advisor.HorizonExtensionMonths = def.Advisor.HorizonExtensionMonths
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// RatesURL returns the API base URL from env var or config, in that order.
func RatesURL(cfg Config) string {
	if u := os.Getenv("GOALPLAN_RATES_URL"); u != "" {
		return u
	}
	if cfg.Rates.BaseURL != "" {
		return cfg.Rates.BaseURL
	}
	return DefaultBaseURL
}

// FetchTimeout returns the deadline for the fetch phase of a planning request.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Rates.TimeoutSec) * time.Second
}

// CacheTTL returns how long cached rates stay fresh.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Rates.CacheTTLHours) * time.Hour
}
