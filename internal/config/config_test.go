// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL == "" {
		t.Error("Default config has empty server.base_url")
	}
	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("Default timeout = %d, want 60", cfg.Server.TimeoutSecs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
}

func TestValidate_BadValues(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty base url", func(c *Config) { c.Server.BaseURL = "" }, "server.base_url"},
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://x" }, "server.base_url"},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSecs = 0 }, "server.timeout_secs"},
		{"huge timeout", func(c *Config) { c.Server.TimeoutSecs = 601 }, "server.timeout_secs"},
		{"negative retries", func(c *Config) { c.Server.MaxRetries = -1 }, "server.max_retries"},
		{"negative rate", func(c *Config) { c.Server.RateLimitRPS = -1 }, "server.rate_limit_rps"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"zero upload cap", func(c *Config) { c.Documents.MaxUploadMB = 0 }, "documents.max_upload_mb"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			var errs ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			found := false
			for _, ve := range errs {
				if ve.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got %v", tc.field, errs)
			}
		})
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.BaseURL = ""
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(errs) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(errs), errs)
	}
}

func TestFillDefaults_PartialConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Server.BaseURL = "https://rag.example.com/api"
	cfg.fillDefaults()

	if cfg.Server.BaseURL != "https://rag.example.com/api" {
		t.Error("fillDefaults overwrote an explicit value")
	}
	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("fillDefaults did not fill timeout: %d", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("fillDefaults did not fill theme: %q", cfg.UI.Theme)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DOCTALK_SERVER_URL", "http://override:9999/api")
	t.Setenv("DOCTALK_TIMEOUT_SECS", "120")
	t.Setenv("DOCTALK_VIM_MODE", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://override:9999/api" {
		t.Errorf("env override not applied: %q", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSecs != 120 {
		t.Errorf("timeout override not applied: %d", cfg.Server.TimeoutSecs)
	}
	if !cfg.UI.VimMode {
		t.Error("vim mode override not applied")
	}
}

func TestApplyEnvOverrides_IgnoresInvalidInts(t *testing.T) {
	t.Setenv("DOCTALK_TIMEOUT_SECS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("invalid env value should be ignored, got %d", cfg.Server.TimeoutSecs)
	}
}

func TestGetSet_RoundTrip(t *testing.T) {
	cfg := Default()

	for _, key := range Keys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) failed: %v", key, err)
		}
	}

	if err := cfg.Set("ui.theme", "light"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cfg.Get("ui.theme")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "light" {
		t.Errorf("Get after Set = %q, want %q", got, "light")
	}
}

func TestSet_UnknownKey(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("nope.nothing", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSet_RejectsInvalidValue(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("ui.theme", "neon"); err == nil {
		t.Error("Set should validate the resulting config")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	os.Unsetenv("DOCTALK_SERVER_URL")

	cfg := Default()
	cfg.Server.BaseURL = "http://saved:8080/api"
	cfg.UI.Theme = "mono"

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.BaseURL != "http://saved:8080/api" {
		t.Errorf("loaded base_url = %q", loaded.Server.BaseURL)
	}
	if loaded.UI.Theme != "mono" {
		t.Errorf("loaded theme = %q", loaded.UI.Theme)
	}

	// Saved file must be private.
	path, _ := Path()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config perms = %o, want 0600", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "base_url") {
		t.Error("saved file does not look like TOML config")
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with no file failed: %v", err)
	}
	if cfg.Server.BaseURL != Default().Server.BaseURL {
		t.Errorf("missing file should yield defaults, got %q", cfg.Server.BaseURL)
	}
}

func TestGlobal_Singleton(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	a := Global()
	b := Global()
	if a != b {
		t.Error("Global returned different instances")
	}

	custom := Default()
	custom.UI.Theme = "light"
	SetGlobal(custom)
	if Global().UI.Theme != "light" {
		t.Error("SetGlobal did not replace the singleton")
	}
}
