// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatdesk.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Backend address, environment and request pacing
//   - UIConfig: Theme and layout settings for the TUI
//   - LogConfig: Log level and file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (--url, --env, --config)
//   - Environment variables (CHATDESK_*)
//   - ~/.chatdesk/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := gateway.NewClient(cfg.Backend.BaseURL())
//
// Watch the file so the TUI can pick up theme changes:
//
//	w, err := config.Watch(path, func(cfg *config.Config) { ... })
//	defer w.Close()
package config
