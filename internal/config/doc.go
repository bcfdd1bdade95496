// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates and persists client configuration.
//
// Configuration lives in ~/.doctalk/config.toml (TOML first, with a JSON
// fallback for legacy installs). DOCTALK_* environment variables override
// file values, which makes scripted and CI use possible without touching
// the file on disk.
//
// A process-wide singleton is available through Global for UI code that has
// no injection path; everything else should accept a *Config explicitly.
package config
