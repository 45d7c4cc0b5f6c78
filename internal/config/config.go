// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// meridian TUI.
//
// Configuration is read from ~/.meridian/config.toml with sensible defaults,
// a .env file (if present) loaded first, and environment variable overrides
// applied last.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/morganforge/meridian-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete meridian-tui configuration.
type Config struct {
	Version string `toml:"version"`

	// API configuration
	API APIConfig `toml:"api"`

	// Chat configuration
	Chat ChatConfig `toml:"chat"`

	// Archive configuration (local transcript mirror)
	Archive ArchiveConfig `toml:"archive"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Log configuration
	Log LogConfig `toml:"log"`
}

// APIConfig contains the Meridian REST API settings.
type APIConfig struct {
	// BaseURL is the API base URL, e.g. http://localhost:8000/api/v1
	BaseURL string `toml:"base_url"`
	// Token is the bearer token attached to every request.
	Token string `toml:"token"`
	// TimeoutSecs is the timeout for one-shot requests (not streams).
	TimeoutSecs int `toml:"timeout_secs"`
}

// ChatConfig contains chat behavior settings.
type ChatConfig struct {
	// DefaultTitle is the title given to sessions created without a seed
	// prompt.
	DefaultTitle string `toml:"default_title"`
	// TitleSeedRunes is how many runes of the first user message become the
	// session title before the ellipsis.
	TitleSeedRunes int `toml:"title_seed_runes"`
	// RenameReconcile controls what happens when a server-side rename fails:
	// "keep-local" (default) keeps the optimistic title, "rollback" restores
	// the server copy.
	RenameReconcile string `toml:"rename_reconcile"`
	// ActionDelayMs is the artificial latency before executing a block's API
	// action.
	ActionDelayMs int `toml:"action_delay_ms"`
}

// ActionDelay returns the configured action latency as a duration.
func (c ChatConfig) ActionDelay() time.Duration {
	return time.Duration(c.ActionDelayMs) * time.Millisecond
}

// ArchiveConfig contains the local transcript archive settings.
type ArchiveConfig struct {
	// Enabled mirrors completed transcripts into a local SQLite database.
	Enabled bool `toml:"enabled"`
	// DatabasePath overrides the default ~/.meridian/archive.db location.
	DatabasePath string `toml:"database_path"`
}

// UIConfig contains UI settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode uses a tighter transcript layout.
	CompactMode bool `toml:"compact_mode"`
	// ShowTimestamps displays message timestamps in the transcript.
	ShowTimestamps bool `toml:"show_timestamps"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// File is the log file path (empty = ~/.meridian/meridian.log).
	File string `toml:"file"`
	// Debug enables debug-level logging.
	Debug bool `toml:"debug"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			BaseURL:     "http://localhost:8000/api/v1",
			TimeoutSecs: 30,
		},

		Chat: ChatConfig{
			DefaultTitle:    "New Strategy Chat",
			TitleSeedRunes:  30,
			RenameReconcile: "keep-local",
			ActionDelayMs:   600,
		},

		Archive: ArchiveConfig{
			Enabled: true,
		},

		UI: UIConfig{
			Theme:          "dark",
			CompactMode:    false,
			ShowTimestamps: false,
		},

		Log: LogConfig{},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the meridian configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".meridian"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogFilePath resolves the log file location for the given config.
func (c *Config) LogFilePath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "meridian.log")
}

// ArchivePath resolves the archive database location for the given config.
func (c *Config) ArchivePath() (string, error) {
	if c.Archive.DatabasePath != "" {
		return c.Archive.DatabasePath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "archive.db"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from .env, the config file, and the environment,
// in that order of increasing precedence. A missing config file is not an
// error; defaults are used.
func Load() (*Config, error) {
	// Best effort: a .env alongside the binary or in the working directory.
	_ = godotenv.Load()

	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		} else if os.IsNotExist(statErr) {
			// First run: write the defaults so the user has a file to edit.
			_ = Save(cfg)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to the default TOML file with restrictive
// permissions (the file holds the API token).
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# meridian configuration file\n")
	buf.WriteString("# Generated by meridian - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Atomic write so a crash mid-save never leaves a torn config behind.
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported variables:
//   - MERIDIAN_API_URL: overrides api.base_url
//   - MERIDIAN_TOKEN: overrides api.token
//   - MERIDIAN_THEME: overrides ui.theme
//   - MERIDIAN_LOG_FILE: overrides log.file
//   - MERIDIAN_DEBUG: "1"/"true" enables debug logging
//   - MERIDIAN_NO_ARCHIVE: "1"/"true" disables the local archive
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MERIDIAN_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("MERIDIAN_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("MERIDIAN_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("MERIDIAN_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("MERIDIAN_DEBUG"); v != "" {
		c.Log.Debug = v == "1" || strings.ToLower(v) == "true"
	}
	if v := os.Getenv("MERIDIAN_NO_ARCHIVE"); v != "" {
		if v == "1" || strings.ToLower(v) == "true" {
			c.Archive.Enabled = false
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.API.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: "must not be empty",
		})
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL %q", c.API.BaseURL),
		})
	}

	if c.API.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: "must be non-negative",
		})
	}

	validReconcile := map[string]bool{"keep-local": true, "rollback": true}
	if !validReconcile[strings.ToLower(c.Chat.RenameReconcile)] {
		errs = append(errs, ValidationError{
			Field:   "chat.rename_reconcile",
			Message: fmt.Sprintf("invalid policy %q, must be one of: keep-local, rollback", c.Chat.RenameReconcile),
		})
	}

	if c.Chat.TitleSeedRunes < 1 {
		errs = append(errs, ValidationError{
			Field:   "chat.title_seed_runes",
			Message: "must be at least 1",
		})
	}

	if c.Chat.ActionDelayMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "chat.action_delay_ms",
			Message: "must be non-negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills in defaults for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if c.Chat.DefaultTitle == "" {
		c.Chat.DefaultTitle = defaults.Chat.DefaultTitle
	}
	if c.Chat.TitleSeedRunes == 0 {
		c.Chat.TitleSeedRunes = defaults.Chat.TitleSeedRunes
	}
	if c.Chat.RenameReconcile == "" {
		c.Chat.RenameReconcile = defaults.Chat.RenameReconcile
	}
	if c.Chat.ActionDelayMs == 0 {
		c.Chat.ActionDelayMs = defaults.Chat.ActionDelayMs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// ErrNoToken is returned by RequireToken when no bearer token is configured.
var ErrNoToken = errors.New("no API token configured (set MERIDIAN_TOKEN or api.token)")

// RequireToken returns the configured bearer token, or ErrNoToken.
func (c *Config) RequireToken() (string, error) {
	if c.API.Token == "" {
		return "", ErrNoToken
	}
	return c.API.Token, nil
}
