// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and validation for doctalk-tui.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/doctalk-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// ConfigDirName is the directory under $HOME holding all client state.
	ConfigDirName = ".doctalk"

	// ConfigFileName is the primary (TOML) config file name.
	ConfigFileName = "config.toml"

	// LegacyConfigFileName is the JSON fallback read when no TOML file exists.
	LegacyConfigFileName = "config.json"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the root configuration for the client.
type Config struct {
	Server    ServerConfig    `toml:"server" json:"server"`
	Workspace WorkspaceConfig `toml:"workspace" json:"workspace"`
	Documents DocumentsConfig `toml:"documents" json:"documents"`
	UI        UIConfig        `toml:"ui" json:"ui"`
}

// ServerConfig describes how to reach the chat backend.
type ServerConfig struct {
	// BaseURL is the backend root, e.g. "http://localhost:8080/api".
	BaseURL string `toml:"base_url" json:"base_url"`

	// TimeoutSecs is the per-request timeout for non-streaming calls.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// MaxRetries is the retry count for idempotent requests.
	MaxRetries int `toml:"max_retries" json:"max_retries"`

	// RateLimitRPS caps outgoing requests per second. 0 disables the limiter.
	RateLimitRPS float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
}

// WorkspaceConfig controls local client state.
type WorkspaceConfig struct {
	// Dir is where the workspace file, history cache and REPL history live.
	// Empty means $HOME/.doctalk.
	Dir string `toml:"dir" json:"dir"`

	// HistoryCache toggles the local sqlite mirror of sessions and messages.
	HistoryCache bool `toml:"history_cache" json:"history_cache"`
}

// DocumentsConfig controls the document drop-folder watcher.
type DocumentsConfig struct {
	// WatchDir is the folder watched for new files to upload. Empty disables.
	WatchDir string `toml:"watch_dir" json:"watch_dir"`

	// MaxUploadMB rejects files above this size before requesting an upload URL.
	MaxUploadMB int `toml:"max_upload_mb" json:"max_upload_mb"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	Theme          string `toml:"theme" json:"theme"`
	VimMode        bool   `toml:"vim_mode" json:"vim_mode"`
	RenderMarkdown bool   `toml:"render_markdown" json:"render_markdown"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:      "http://localhost:8080/api",
			TimeoutSecs:  60,
			MaxRetries:   3,
			RateLimitRPS: 10,
		},
		Workspace: WorkspaceConfig{
			Dir:          "",
			HistoryCache: true,
		},
		Documents: DocumentsConfig{
			WatchDir:    "",
			MaxUploadMB: 64,
		},
		UI: UIConfig{
			Theme:          "dark",
			VimMode:        false,
			RenderMarkdown: true,
		},
	}
}

// fillDefaults fills zero values with defaults after a partial file load.
func (c *Config) fillDefaults() {
	def := Default()

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = def.Server.BaseURL
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = def.Server.TimeoutSecs
	}
	if c.Server.MaxRetries == 0 {
		c.Server.MaxRetries = def.Server.MaxRetries
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = def.Server.RateLimitRPS
	}
	if c.Documents.MaxUploadMB == 0 {
		c.Documents.MaxUploadMB = def.Documents.MaxUploadMB
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors aggregates all validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Error()
	}
	return "invalid config: " + strings.Join(parts, "; ")
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Server.BaseURL == "" {
		errs = append(errs, ValidationError{"server.base_url", "must not be empty"})
	} else if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		errs = append(errs, ValidationError{"server.base_url", "must start with http:// or https://"})
	}
	if c.Server.TimeoutSecs < 1 || c.Server.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{"server.timeout_secs", "must be between 1 and 600"})
	}
	if c.Server.MaxRetries < 0 || c.Server.MaxRetries > 10 {
		errs = append(errs, ValidationError{"server.max_retries", "must be between 0 and 10"})
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{"server.rate_limit_rps", "must not be negative"})
	}
	if c.Documents.MaxUploadMB < 1 || c.Documents.MaxUploadMB > 1024 {
		errs = append(errs, ValidationError{"documents.max_upload_mb", "must be between 1 and 1024"})
	}
	switch c.UI.Theme {
	case "dark", "light", "mono":
	default:
		errs = append(errs, ValidationError{"ui.theme", "must be one of: dark, light, mono"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the config directory, creating nothing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// Path returns the full path of the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// WorkspaceDir returns the effective workspace directory for this config.
func (c *Config) WorkspaceDir() (string, error) {
	if c.Workspace.Dir != "" {
		return c.Workspace.Dir, nil
	}
	return Dir()
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config from disk, preferring TOML and falling back to the
// legacy JSON file. A missing file yields the defaults, not an error.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	tomlPath := filepath.Join(dir, ConfigFileName)
	if data, err := os.ReadFile(tomlPath); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
		}
	} else {
		jsonPath := filepath.Join(dir, LegacyConfigFileName)
		if data, err := os.ReadFile(jsonPath); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", LegacyConfigFileName, err)
			}
		} else {
			cfg = Default()
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as TOML with restrictive permissions.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("# doctalk-tui configuration\n")
	sb.WriteString("# Edit by hand or via `doctalk config set`.\n\n")
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Config may name private deployments; keep it owner-readable only.
	return util.AtomicWriteFileWithDir(path, []byte(sb.String()), 0600, 0700)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies DOCTALK_* environment variables over file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOCTALK_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("DOCTALK_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.TimeoutSecs = n
		}
	}
	if v := os.Getenv("DOCTALK_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.MaxRetries = n
		}
	}
	if v := os.Getenv("DOCTALK_WORKSPACE_DIR"); v != "" {
		c.Workspace.Dir = v
	}
	if v := os.Getenv("DOCTALK_WATCH_DIR"); v != "" {
		c.Documents.WatchDir = v
	}
	if v := os.Getenv("DOCTALK_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("DOCTALK_VIM_MODE"); v != "" {
		c.UI.VimMode = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// DOT-NOTATION ACCESS
// =============================================================================

// Get returns a config value by dot-notation key, e.g. "server.base_url".
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "server.base_url":
		return c.Server.BaseURL, nil
	case "server.timeout_secs":
		return strconv.Itoa(c.Server.TimeoutSecs), nil
	case "server.max_retries":
		return strconv.Itoa(c.Server.MaxRetries), nil
	case "server.rate_limit_rps":
		return strconv.FormatFloat(c.Server.RateLimitRPS, 'f', -1, 64), nil
	case "workspace.dir":
		return c.Workspace.Dir, nil
	case "workspace.history_cache":
		return strconv.FormatBool(c.Workspace.HistoryCache), nil
	case "documents.watch_dir":
		return c.Documents.WatchDir, nil
	case "documents.max_upload_mb":
		return strconv.Itoa(c.Documents.MaxUploadMB), nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "ui.vim_mode":
		return strconv.FormatBool(c.UI.VimMode), nil
	case "ui.render_markdown":
		return strconv.FormatBool(c.UI.RenderMarkdown), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set updates a config value by dot-notation key. The caller is responsible
// for calling Save afterwards.
func (c *Config) Set(key, value string) error {
	switch key {
	case "server.base_url":
		c.Server.BaseURL = value
	case "server.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		c.Server.TimeoutSecs = n
	case "server.max_retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		c.Server.MaxRetries = n
	case "server.rate_limit_rps":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %q", key, value)
		}
		c.Server.RateLimitRPS = f
	case "workspace.dir":
		c.Workspace.Dir = value
	case "workspace.history_cache":
		c.Workspace.HistoryCache = value == "true" || value == "1"
	case "documents.watch_dir":
		c.Documents.WatchDir = value
	case "documents.max_upload_mb":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		c.Documents.MaxUploadMB = n
	case "ui.theme":
		c.UI.Theme = value
	case "ui.vim_mode":
		c.UI.VimMode = value == "true" || value == "1"
	case "ui.render_markdown":
		c.UI.RenderMarkdown = value == "true" || value == "1"
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return c.Validate()
}

// Keys lists every key accepted by Get and Set.
func Keys() []string {
	return []string{
		"server.base_url",
		"server.timeout_secs",
		"server.max_retries",
		"server.rate_limit_rps",
		"workspace.dir",
		"workspace.history_cache",
		"documents.watch_dir",
		"documents.max_upload_mb",
		"ui.theme",
		"ui.vim_mode",
		"ui.render_markdown",
	}
}

// =============================================================================
// GLOBAL SINGLETON
// =============================================================================

var (
	globalMu   sync.RWMutex
	globalCfg  *Config
	globalOnce sync.Once
)

// Global returns the process-wide config, loading it on first use.
// Returns defaults if loading fails; callers needing the error use Load.
func Global() *Config {
	globalOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalMu.Lock()
		globalCfg = cfg
		globalMu.Unlock()
	})

	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalCfg
}

// SetGlobal replaces the process-wide config.
func SetGlobal(cfg *Config) {
	globalOnce.Do(func() {})
	globalMu.Lock()
	globalCfg = cfg
	globalMu.Unlock()
}

// ResetGlobalForTesting clears the singleton so tests can reload.
func ResetGlobalForTesting() {
	globalMu.Lock()
	globalCfg = nil
	globalMu.Unlock()
	globalOnce = sync.Once{}
}
