// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger provides the shared structured logger for the meridian TUI.
//
// While the TUI owns the terminal, log output must not be written to stdout
// or stderr (it would corrupt the alternate screen). The logger therefore
// writes to a file under the config directory, or to io.Discard when no file
// can be opened.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu     sync.Mutex
	shared *log.Logger
	closer io.Closer
)

// Init opens the log file at path and installs it as the shared logger.
// An empty path keeps logging enabled but discarded. Safe to call once at
// startup before the Bubble Tea program takes the terminal.
func Init(path string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	var w io.Writer = io.Discard
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		w = f
		closer = f
	}

	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "meridian",
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	shared = l
	return nil
}

// Get returns the shared logger, falling back to a discard logger when Init
// was never called (tests, library use).
func Get() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if shared == nil {
		shared = log.NewWithOptions(io.Discard, log.Options{Prefix: "meridian"})
	}
	return shared
}

// Close flushes and closes the underlying log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer.Close()
		closer = nil
	}
}

// Debug logs at debug level on the shared logger.
func Debug(msg string, kv ...any) { Get().Debug(msg, kv...) }

// Info logs at info level on the shared logger.
func Info(msg string, kv ...any) { Get().Info(msg, kv...) }

// Warn logs at warn level on the shared logger.
func Warn(msg string, kv ...any) { Get().Warn(msg, kv...) }

// Error logs at error level on the shared logger.
func Error(msg string, kv ...any) { Get().Error(msg, kv...) }
