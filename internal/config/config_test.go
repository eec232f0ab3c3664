// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// =============================================================================
// DEFAULTS & LOADING
// =============================================================================

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:5669", cfg.Backend.URL)
	assert.Equal(t, EnvDevelopment, cfg.Backend.Environment)
	assert.Equal(t, 0, cfg.Backend.TimeoutSecs)
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.Equal(t, DefaultSidebarWidth, cfg.UI.SidebarWidth)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromPath_FillsDefaults(t *testing.T) {
	path := writeConfig(t, `
default_model = "anthropic/claude-3-haiku"

[backend]
url = "https://chat.example.com"
requests_per_second = 2.5

[ui]
theme = "dark"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-haiku", cfg.DefaultModel)
	assert.Equal(t, "https://chat.example.com", cfg.Backend.URL)
	assert.Equal(t, 2.5, cfg.Backend.RequestsPerSecond)
	assert.Equal(t, EnvDevelopment, cfg.Backend.Environment)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, DefaultSidebarWidth, cfg.UI.SidebarWidth)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromPath_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[backend]\nurll = \"http://x\"\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.urll")
}

func TestLoadFromPath_Invalid(t *testing.T) {
	path := writeConfig(t, "[ui]\ntheme = \"neon\"\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "ui.theme", verrs[0].Field)
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	t.Setenv("CHATDESK_API_URL", "http://10.0.0.5:8000")
	t.Setenv("CHATDESK_ENV", "PRODUCTION")
	t.Setenv("CHATDESK_LOG_LEVEL", "debug")
	t.Setenv("CHATDESK_LOG_FILE", "/tmp/chatdesk-test.log")
	path := writeConfig(t, "[backend]\nurl = \"http://localhost:1\"\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.Backend.URL)
	assert.Equal(t, EnvProduction, cfg.Backend.Environment)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/chatdesk-test.log", cfg.LogPath())
}

// =============================================================================
// BASE URL RESOLUTION
// =============================================================================

func TestBackend_BaseURL(t *testing.T) {
	tests := []struct {
		name    string
		backend BackendConfig
		want    string
	}{
		{"development default", BackendConfig{}, "http://localhost:5669"},
		{"development custom", BackendConfig{URL: "http://10.1.1.1:9000/", Environment: EnvDevelopment}, "http://10.1.1.1:9000"},
		{"production uses origin", BackendConfig{URL: "https://chat.example.com/ignored/path", Environment: EnvProduction}, "https://chat.example.com/api"},
		{"production with port", BackendConfig{URL: "http://host:8080", Environment: "Production"}, "http://host:8080/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.backend.BaseURL())
		})
	}
}

func TestBackend_Timeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), BackendConfig{}.Timeout())
	assert.Equal(t, 30*time.Second, BackendConfig{TimeoutSecs: 30}.Timeout())
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad url scheme", func(c *Config) { c.Backend.URL = "ftp://x" }, "backend.url"},
		{"url without host", func(c *Config) { c.Backend.URL = "localhost" }, "backend.url"},
		{"bad environment", func(c *Config) { c.Backend.Environment = "staging" }, "backend.environment"},
		{"negative timeout", func(c *Config) { c.Backend.TimeoutSecs = -1 }, "backend.timeout_secs"},
		{"negative rate", func(c *Config) { c.Backend.RequestsPerSecond = -2 }, "backend.requests_per_second"},
		{"narrow sidebar", func(c *Config) { c.UI.SidebarWidth = 4 }, "ui.sidebar_width"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad default model", func(c *Config) { c.DefaultModel = "gpt-4o" }, "default_model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

// =============================================================================
// GET/SET
// =============================================================================

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("backend.url", "https://chat.example.com"))
	require.NoError(t, cfg.Set("backend.timeout_secs", "45"))
	require.NoError(t, cfg.Set("backend.requests_per_second", "1.5"))
	require.NoError(t, cfg.Set("ui.show_timestamps", "off"))
	require.NoError(t, cfg.Set("ui.sidebar_width", 40))

	v, err := cfg.Get("backend.url")
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com", v)
	assert.Equal(t, 45, cfg.Backend.TimeoutSecs)
	assert.Equal(t, 1.5, cfg.Backend.RequestsPerSecond)
	assert.False(t, cfg.UI.ShowTimestamps)
	assert.Equal(t, 40, cfg.UI.SidebarWidth)

	_, err = cfg.Get("backend.nope")
	assert.Error(t, err)
	_, err = cfg.Get("backend")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("backend.timeout_secs", "soon"))
	assert.Error(t, cfg.Set("ui.show_timestamps", "maybe"))
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

// =============================================================================
// SAVE
// =============================================================================

func TestSaveTOML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Backend.URL = "https://chat.example.com"
	cfg.UI.Theme = "light"

	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# chatdesk configuration file"))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Backend, loaded.Backend)
	assert.Equal(t, cfg.UI, loaded.UI)
}

// =============================================================================
// WATCH
// =============================================================================

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := writeConfig(t, "[ui]\ntheme = \"dark\"\n")

	changes := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config) { changes <- cfg })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, SaveTOML(&Config{UI: UIConfig{Theme: "light", SidebarWidth: 30}}, path))

	select {
	case cfg := <-changes:
		assert.Equal(t, "light", cfg.UI.Theme)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}
