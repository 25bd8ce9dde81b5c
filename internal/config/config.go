// Package config provides configuration loading and validation for the jobtrack CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Session store backends.
const (
	SessionStoreKeyring = "keyring"
	SessionStoreFile    = "file"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// DefaultAPIURL is used when neither the config file nor a flag names a server.
const DefaultAPIURL = "http://localhost:8080"

// DefaultWidth is the terminal width charts are drawn for.
const DefaultWidth = 80

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Server
	APIURL      string `json:"api_url,omitempty"`      // Base URL of the jobtrack API
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL for serve/migrate

	// Session
	SessionStore   string `json:"session_store,omitempty"`   // "keyring" or "file"
	SessionFile    string `json:"session_file,omitempty"`    // Path of the file session store
	KeyringAccount string `json:"keyring_account,omitempty"` // Account name under the keyring service

	// Presentation
	Output string `json:"output,omitempty"` // "table", "json" or "yaml"
	Width  int    `json:"width,omitempty"`  // Chart width in columns
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/jobtrack, falling back to the
// user config directory.
func DefaultConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve config directory: %w", err)
		}
		base = dir
	}
	return filepath.Join(base, "jobtrack"), nil
}

// DefaultConfigPath returns the config file location used when --config is
// not given.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	cfg := Config{
		APIURL:         DefaultAPIURL,
		SessionStore:   SessionStoreKeyring,
		KeyringAccount: "default",
		Output:         OutputTable,
		Width:          DefaultWidth,
	}
	if dir, err := DefaultConfigDir(); err == nil {
		cfg.SessionFile = filepath.Join(dir, "session.json")
	}
	return cfg
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Empty fields are allowed; they are filled by MergeWithDefaults.
func (c *Config) Validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'api_url' must be an absolute URL, got %q", c.APIURL)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("config error: 'api_url' scheme must be http or https, got %q", u.Scheme)
		}
	}

	switch c.SessionStore {
	case "", SessionStoreKeyring, SessionStoreFile:
	default:
		return fmt.Errorf("config error: 'session_store' must be %q or %q, got %q", SessionStoreKeyring, SessionStoreFile, c.SessionStore)
	}

	switch c.Output {
	case "", OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("config error: 'output' must be one of table, json, yaml, got %q", c.Output)
	}

	if c.Width < 0 {
		return fmt.Errorf("config error: 'width' must be non-negative")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SessionStore == "" {
		result.SessionStore = defaults.SessionStore
	}
	if result.SessionFile == "" {
		result.SessionFile = defaults.SessionFile
	}
	if result.KeyringAccount == "" {
		result.KeyringAccount = defaults.KeyringAccount
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.Width == 0 {
		if defaults.Width > 0 {
			result.Width = defaults.Width
		} else {
			result.Width = DefaultWidth
		}
	}

	return result
}
