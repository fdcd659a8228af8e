package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Option Skew Engine Configuration

[engine]
# Target days-to-expiration for chain selection
target_dte = 30
# Phase-1 delta collection window in seconds
phase1_window_seconds = 5
# Phase-2 open-interest collection window in seconds
phase2_window_seconds = 10
# Result cache TTL in seconds
cache_ttl_seconds = 3600
# Expired-entry sweep interval in minutes
sweep_minutes = 5
# Default symbol set for batch runs
watchlist = ["SPY", "QQQ", "IWM"]

[venue]
# tastytrade API base URL
base_url = "https://api.tastyworks.com"

[feed]
# DXLink endpoint override; leave empty to use the URL returned by the
# venue's quote-token endpoint
url = ""
# Feed event channel buffer size
buffer_size = 1000
`

const credentialsTemplate = `# Option Skew Engine Credentials
#
# Keep this file private (chmod 600). Credentials can also be supplied via
# the TASTYTRADE_LOGIN and TASTYTRADE_PASSWORD environment variables.

[tastytrade]
login = ""
password = ""
`

// createTemplateConfig writes a template config.toml to the config directory.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}

// createTemplateCredentials writes a template credentials.toml to the config
// directory.
func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(credentialsTemplate), 0600)
}
