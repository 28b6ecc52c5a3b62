// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for docchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation, and live reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: API base URL, timeout and request pacing
//   - ChatConfig: Retrieval settings applied at session start
//   - Watcher: Reloads the config file when it changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (DOCCHAT_*, VITE_API_BASE)
//   - ~/.docchat/config.toml
//   - ~/.docchat/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	client := backend.NewClientWithConfig(&backend.ClientConfig{
//	    BaseURL: cfg.Backend.APIBase,
//	    Timeout: cfg.Backend.Timeout(),
//	})
package config
