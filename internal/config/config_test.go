package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesTemplates(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, name := range []string{"config.toml", "credentials.toml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be created: %v", name, err)
		}
	}

	if cfg.Engine.TargetDTE != 30 {
		t.Errorf("expected default target DTE 30, got %d", cfg.Engine.TargetDTE)
	}
	if cfg.Engine.Phase1Window() != 5*time.Second {
		t.Errorf("expected 5s phase-1 window, got %s", cfg.Engine.Phase1Window())
	}
	if cfg.Engine.Phase2Window() != 10*time.Second {
		t.Errorf("expected 10s phase-2 window, got %s", cfg.Engine.Phase2Window())
	}
	if cfg.Engine.CacheTTL() != time.Hour {
		t.Errorf("expected 1h cache TTL, got %s", cfg.Engine.CacheTTL())
	}
	if cfg.Engine.SweepInterval() != 5*time.Minute {
		t.Errorf("expected 5m sweep interval, got %s", cfg.Engine.SweepInterval())
	}
	if cfg.Venue.BaseURL == "" {
		t.Error("expected a default venue base URL")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[engine]
target_dte = 45
phase1_window_seconds = 2
watchlist = ["SPY", "/ES"]

[venue]
base_url = "https://sandbox.example.com"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine.TargetDTE != 45 {
		t.Errorf("expected target DTE 45, got %d", cfg.Engine.TargetDTE)
	}
	if cfg.Engine.Phase1Window() != 2*time.Second {
		t.Errorf("expected 2s phase-1 window, got %s", cfg.Engine.Phase1Window())
	}
	// Unset keys keep their defaults.
	if cfg.Engine.Phase2Window() != 10*time.Second {
		t.Errorf("expected default 10s phase-2 window, got %s", cfg.Engine.Phase2Window())
	}
	if cfg.Venue.BaseURL != "https://sandbox.example.com" {
		t.Errorf("base URL not read: %s", cfg.Venue.BaseURL)
	}
	if len(cfg.Engine.Watchlist) != 2 || cfg.Engine.Watchlist[1] != "/ES" {
		t.Errorf("watchlist not read: %v", cfg.Engine.Watchlist)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASTYTRADE_LOGIN", "env-user")
	t.Setenv("TASTYTRADE_PASSWORD", "env-pass")
	t.Setenv("DXLINK_URL", "wss://env.example.com/realtime")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Credentials.Tastytrade.Login != "env-user" {
		t.Errorf("login override not applied: %s", cfg.Credentials.Tastytrade.Login)
	}
	if cfg.Credentials.Tastytrade.Password != "env-pass" {
		t.Errorf("password override not applied")
	}
	if cfg.Feed.URL != "wss://env.example.com/realtime" {
		t.Errorf("feed URL override not applied: %s", cfg.Feed.URL)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Engine: EngineConfig{
			TargetDTE:           30,
			Phase1WindowSeconds: 5,
			Phase2WindowSeconds: 10,
			CacheTTLSeconds:     3600,
			SweepMinutes:        5,
		},
		Venue: VenueConfig{BaseURL: "https://api.example.com"},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	broken := *valid
	broken.Engine.TargetDTE = 0
	if err := broken.Validate(); err == nil {
		t.Error("expected error for zero target DTE")
	}

	broken = *valid
	broken.Venue.BaseURL = ""
	if err := broken.Validate(); err == nil {
		t.Error("expected error for empty base URL")
	}
}
