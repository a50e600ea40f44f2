// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestSaveAndLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.URL = "http://10.0.0.5:8080"
	cfg.Auth.DeepSeekToken = "ds-secret"
	cfg.Chat.SystemPrompt = "be terse"
	cfg.UI.Theme = "dark"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Server.URL != "http://10.0.0.5:8080" {
		t.Errorf("URL = %q", loaded.Server.URL)
	}
	if loaded.Auth.DeepSeekToken != "ds-secret" {
		t.Errorf("token = %q", loaded.Auth.DeepSeekToken)
	}
	if loaded.Chat.SystemPrompt != "be terse" {
		t.Errorf("system prompt = %q", loaded.Chat.SystemPrompt)
	}
	if loaded.UI.Theme != "dark" {
		t.Errorf("theme = %q", loaded.UI.Theme)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Auth.AnthropicToken = "ant-secret"
	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Auth.AnthropicToken != "ant-secret" {
		t.Errorf("token = %q", loaded.Auth.AnthropicToken)
	}
}

func TestSavedFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions not applicable")
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}
}

func TestLoadFixesInsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions not applicable")
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}
	if err := os.Chmod(path, 0644); err != nil {
		t.Fatalf("Chmod: %v", err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	info, _ := os.Stat(path)
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions after load = %o, want 0600", perm)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DEEPREASONING_URL", "http://example.test:9999")
	t.Setenv("DEEPREASONING_DEEPSEEK_TOKEN", "env-ds")
	t.Setenv("DEEPREASONING_VERBOSE", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.URL != "http://example.test:9999" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if cfg.Auth.DeepSeekToken != "env-ds" {
		t.Errorf("token = %q", cfg.Auth.DeepSeekToken)
	}
	if !cfg.Chat.Verbose {
		t.Error("verbose override not applied")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty url", func(c *Config) { c.Server.URL = "" }, "server.url"},
		{"malformed url", func(c *Config) { c.Server.URL = "not a url" }, "server.url"},
		{"negative timeout", func(c *Config) { c.Server.TimeoutSecs = -1 }, "server.timeout_secs"},
		{"bad theme", func(c *Config) { c.UI.Theme = "sepia" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name field %q", err, tt.field)
			}
		})
	}
}
