// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ottpulse.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Backend address, timeout and outbound rate limit
//   - SessionConfig: Where the bearer token is kept
//   - LoggingConfig: Log level, format and file
//   - UIConfig: Terminal appearance
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (OTTPULSE_*)
//   - ~/.ottpulse/config.toml (or the file given with --config)
//   - ~/.ottpulse/config.json
//   - Built-in defaults
//
// There is no package-level instance; the loaded *Config is passed to the
// components that need it.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	timeout := cfg.API.Timeout()
package config
