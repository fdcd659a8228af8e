// Package config provides configuration management for the skew engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Engine      EngineConfig `mapstructure:"engine"`
	Venue       VenueConfig  `mapstructure:"venue"`
	Feed        FeedConfig   `mapstructure:"feed"`
	Credentials Credentials  `mapstructure:"-"` // Loaded separately
}

// EngineConfig holds the computation parameters.
type EngineConfig struct {
	TargetDTE           int      `mapstructure:"target_dte"`
	Phase1WindowSeconds int      `mapstructure:"phase1_window_seconds"`
	Phase2WindowSeconds int      `mapstructure:"phase2_window_seconds"`
	CacheTTLSeconds     int      `mapstructure:"cache_ttl_seconds"`
	SweepMinutes        int      `mapstructure:"sweep_minutes"`
	Watchlist           []string `mapstructure:"watchlist"`
}

// VenueConfig holds venue API configuration.
type VenueConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// FeedConfig holds live-feed configuration.
type FeedConfig struct {
	// URL overrides the DXLink endpoint returned by the venue's quote-token
	// endpoint. Normally left empty.
	URL        string `mapstructure:"url"`
	BufferSize int    `mapstructure:"buffer_size"`
}

// Credentials holds API credentials.
type Credentials struct {
	Tastytrade TastytradeCredentials `mapstructure:"tastytrade"`
}

// TastytradeCredentials holds tastytrade session credentials.
type TastytradeCredentials struct {
	Login    string `mapstructure:"login"`
	Password string `mapstructure:"password"`
}

// Phase1Window returns the Phase-1 collection window as a duration.
func (c *EngineConfig) Phase1Window() time.Duration {
	return time.Duration(c.Phase1WindowSeconds) * time.Second
}

// Phase2Window returns the Phase-2 collection window as a duration.
func (c *EngineConfig) Phase2Window() time.Duration {
	return time.Duration(c.Phase2WindowSeconds) * time.Second
}

// CacheTTL returns the result cache TTL as a duration.
func (c *EngineConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// SweepInterval returns the cache sweep interval as a duration.
func (c *EngineConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepMinutes) * time.Minute
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/optionskew"
	}
	return filepath.Join(home, ".config", "optionskew")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	// Engine defaults match the computation contract: 30 DTE target,
	// 5 s / 10 s collection windows, 1 h cache, 5 min sweep.
	v.SetDefault("engine.target_dte", 30)
	v.SetDefault("engine.phase1_window_seconds", 5)
	v.SetDefault("engine.phase2_window_seconds", 10)
	v.SetDefault("engine.cache_ttl_seconds", 3600)
	v.SetDefault("engine.sweep_minutes", 5)
	v.SetDefault("venue.base_url", "https://api.tastyworks.com")
	v.SetDefault("feed.buffer_size", 1000)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if terr := createTemplateConfig(configDir); terr != nil {
				return terr
			}
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASTYTRADE_LOGIN"); v != "" {
		cfg.Credentials.Tastytrade.Login = v
	}
	if v := os.Getenv("TASTYTRADE_PASSWORD"); v != "" {
		cfg.Credentials.Tastytrade.Password = v
	}
	if v := os.Getenv("TASTYTRADE_BASE_URL"); v != "" {
		cfg.Venue.BaseURL = v
	}
	if v := os.Getenv("DXLINK_URL"); v != "" {
		cfg.Feed.URL = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.TargetDTE <= 0 {
		return fmt.Errorf("engine.target_dte must be positive")
	}
	if c.Engine.Phase1WindowSeconds <= 0 {
		return fmt.Errorf("engine.phase1_window_seconds must be positive")
	}
	if c.Engine.Phase2WindowSeconds <= 0 {
		return fmt.Errorf("engine.phase2_window_seconds must be positive")
	}
	if c.Engine.CacheTTLSeconds <= 0 {
		return fmt.Errorf("engine.cache_ttl_seconds must be positive")
	}
	if c.Engine.SweepMinutes <= 0 {
		return fmt.Errorf("engine.sweep_minutes must be positive")
	}
	if c.Venue.BaseURL == "" {
		return fmt.Errorf("venue.base_url must not be empty")
	}
	return nil
}
