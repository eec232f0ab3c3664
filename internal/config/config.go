// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatdesk.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatdesk/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatdesk configuration.
type Config struct {
	// DefaultModel is a preferred "provider/name" selected at start-up
	// when the backend offers it
	DefaultModel string `toml:"default_model"`

	Backend BackendConfig `toml:"backend"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// BackendConfig holds settings for the chat backend.
type BackendConfig struct {
	// URL of the backend (default: http://localhost:5669)
	URL string `toml:"url"`

	// Environment is "development" or "production". In production the
	// API is served under /api on the URL's origin.
	Environment string `toml:"environment"`

	// TimeoutSecs per request, 0 for none
	TimeoutSecs int `toml:"timeout_secs"`

	// RequestsPerSecond paces outgoing requests, 0 for unlimited
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme"`

	// WordWrap width for rendered markdown, 0 follows the window
	WordWrap int `toml:"word_wrap"`

	// SidebarWidth in columns
	SidebarWidth int `toml:"sidebar_width"`

	// ShowTimestamps shows HH:MM next to each message
	ShowTimestamps bool `toml:"show_timestamps"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`

	// File is the log file path (default: ~/.chatdesk/chatdesk.log)
	File string `toml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultBackendURL   = "http://localhost:5669"
	DefaultSidebarWidth = 30
	apiPrefix           = "/api"
)

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:         DefaultBackendURL,
			Environment: EnvDevelopment,
		},
		UI: UIConfig{
			Theme:          "auto",
			SidebarWidth:   DefaultSidebarWidth,
			ShowTimestamps: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	if cfg.Backend.Environment == "" {
		cfg.Backend.Environment = defaults.Backend.Environment
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.SidebarWidth == 0 {
		cfg.UI.SidebarWidth = defaults.UI.SidebarWidth
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// BACKEND ADDRESS
// =============================================================================

// BaseURL resolves the API root the gateway should use.
func (b BackendConfig) BaseURL() string {
	raw := strings.TrimRight(strings.TrimSpace(b.URL), "/")
	if raw == "" {
		raw = DefaultBackendURL
	}
	if !strings.EqualFold(b.Environment, EnvProduction) {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw + apiPrefix
	}
	return u.Scheme + "://" + u.Host + apiPrefix
}

// Timeout returns the per-request timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatdesk configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatdesk"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogPath returns ~/.chatdesk/chatdesk.log.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chatdesk.log"), nil
}

// HistoryPath returns the REPL history file path.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// LogPath returns the configured log file, or the default one.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	path, err := DefaultLogPath()
	if err != nil {
		return ""
	}
	return path
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.chatdesk/config.toml if it exists, otherwise defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if err := decodeFile(cfg, path); err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadFile decodes a config file with defaults filled in, without
// environment overrides or validation. Used when editing the file.
func ReadFile(path string) (*Config, error) {
	cfg := &Config{}
	if err := decodeFile(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeFile decodes path into cfg and fills defaults.
func decodeFile(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# chatdesk configuration file\n")
	buf.WriteString("# Generated by chatdesk - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
