// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:8000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "New Strategy Chat", cfg.Chat.DefaultTitle)
	assert.Equal(t, 30, cfg.Chat.TitleSeedRunes)
	assert.Equal(t, "keep-local", cfg.Chat.RenameReconcile)
	assert.Equal(t, 600, cfg.Chat.ActionDelayMs)
	assert.True(t, cfg.Archive.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "1.0.0"

[api]
base_url = "https://meridian.example.com/api/v1"
token = "tok_abc"
timeout_secs = 10

[chat]
rename_reconcile = "rollback"

[ui]
theme = "light"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "https://meridian.example.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "tok_abc", cfg.API.Token)
	assert.Equal(t, 10, cfg.API.TimeoutSecs)
	assert.Equal(t, "rollback", cfg.Chat.RenameReconcile)
	assert.Equal(t, "light", cfg.UI.Theme)
	// Unset fields fall back to defaults.
	assert.Equal(t, "New Strategy Chat", cfg.Chat.DefaultTitle)
	assert.Equal(t, 600, cfg.Chat.ActionDelayMs)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "not-a-url" }, "api.base_url"},
		{"bad reconcile policy", func(c *Config) { c.Chat.RenameReconcile = "retry" }, "chat.rename_reconcile"},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, "ui.theme"},
		{"negative delay", func(c *Config) { c.Chat.ActionDelayMs = -1 }, "chat.action_delay_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MERIDIAN_API_URL", "https://override.example.com/api")
	t.Setenv("MERIDIAN_TOKEN", "tok_env")
	t.Setenv("MERIDIAN_NO_ARCHIVE", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://override.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "tok_env", cfg.API.Token)
	assert.False(t, cfg.Archive.Enabled)
}

func TestRequireToken(t *testing.T) {
	cfg := Default()
	_, err := cfg.RequireToken()
	assert.ErrorIs(t, err, ErrNoToken)

	cfg.API.Token = "tok_abc"
	tok, err := cfg.RequireToken()
	require.NoError(t, err)
	assert.Equal(t, "tok_abc", tok)
}
