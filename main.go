// Meridian TUI - a terminal client for the Meridian strategy copilot.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/meridian-tui/internal/api"
	"github.com/morganforge/meridian-tui/internal/config"
	"github.com/morganforge/meridian-tui/internal/logger"
	"github.com/morganforge/meridian-tui/internal/storage"
	"github.com/morganforge/meridian-tui/internal/ui/chat"
	"github.com/morganforge/meridian-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v":
			fmt.Printf("meridian %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "--help", "-h":
			printUsage()
			return
		}
	}

	// Everything after the flags is an optional seed prompt sent as the
	// first message of a fresh session.
	seedPrompt := strings.TrimSpace(strings.Join(args, " "))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogFilePath(), cfg.Log.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logger.Close()

	token, err := cfg.RequireToken()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: no API token configured.")
		fmt.Fprintln(os.Stderr, "Set MERIDIAN_TOKEN or add it to the config file.")
		os.Exit(1)
	}

	client := api.NewClient(&api.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Token:   token,
		Timeout: time.Duration(cfg.API.TimeoutSecs) * time.Second,
	})

	// The archive is best-effort; the TUI runs fine without it.
	var archive *storage.Archive
	if cfg.Archive.Enabled {
		path, err := cfg.ArchivePath()
		if err == nil {
			archive, err = storage.Open(path)
		}
		if err != nil {
			logger.Warn("transcript archive unavailable", "error", err)
			archive = nil
		}
	}
	if archive != nil {
		defer archive.Close()
	}

	theme := styles.NewTheme()
	m := chat.New(theme, client, archive, cfg)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Bridge the request monitor into the Bubble Tea loop so the header
	// can show a global activity indicator.
	client.Loading().Subscribe(func(busy bool) {
		go p.Send(chat.LoadingMsg{Busy: busy})
	})

	// Hot-reload the config file. The reload is handed to the Update loop,
	// which applies the runtime-safe pieces; the watcher goroutine never
	// touches shared state directly.
	if cfgPath, err := config.Path(); err == nil {
		watcher, err := config.NewWatcher(cfgPath, func(next *config.Config) {
			go p.Send(chat.ConfigReloadedMsg{Cfg: next})
		})
		if err != nil {
			logger.Warn("config watch unavailable", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	if seedPrompt != "" {
		go func() {
			// Give the program a beat to initialize before injecting input.
			time.Sleep(100 * time.Millisecond)
			p.Send(chat.SeedPromptMsg{Content: seedPrompt})
		}()
	}

	if _, err := p.Run(); err != nil {
		logger.Error("fatal", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meridian - terminal client for the Meridian strategy copilot

Usage:
  meridian [seed prompt]   start the TUI, optionally sending a first message
  meridian --version       print version information
  meridian --help          show this help

Configuration lives at ~/.meridian/config.toml; the API token can also be
provided via the MERIDIAN_TOKEN environment variable.`)
}
