// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local SQLite transcript archive.
//
// The archive is a local safety copy: completed messages are written
// fire-and-forget after server persistence, so transcripts survive
// server-side pruning. The server remains the source of truth; the archive
// is never read back into a live transcript.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/morganforge/meridian-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed        = errors.New("archive is closed")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	message_id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (message_id, session_id),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
`

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive persists chat transcripts to a local SQLite database.
//
// All writes are idempotent upserts keyed on server-assigned ids, so
// re-archiving a session after reconnect never duplicates rows.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	// Single writer; the TUI archives from one goroutine at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the archive and releases resources.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// SaveSession upserts a session row.
func (a *Archive) SaveSession(s model.Session) error {
	if a.db == nil {
		return ErrClosed
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := a.db.Exec(`
		INSERT INTO sessions (session_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		s.ID, s.Title, s.CreatedAt.UTC().Format(time.RFC3339), now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// SaveMessage upserts one message of a session's transcript.
func (a *Archive) SaveMessage(sessionID string, m model.Message) error {
	if a.db == nil {
		return ErrClosed
	}
	_, err := a.db.Exec(`
		INSERT INTO messages (message_id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(message_id, session_id) DO UPDATE SET content = excluded.content`,
		m.ID, sessionID, string(m.Role), m.Content, m.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// SaveTranscript archives a session and its full transcript in one
// transaction.
func (a *Archive) SaveTranscript(s model.Session, messages []model.Message) error {
	if a.db == nil {
		return ErrClosed
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`
		INSERT INTO sessions (session_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		s.ID, s.Title, s.CreatedAt.UTC().Format(time.RFC3339), now); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (message_id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(message_id, session_id) DO UPDATE SET content = excluded.content`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer stmt.Close()

	for _, m := range messages {
		if _, err := stmt.Exec(m.ID, s.ID, string(m.Role), m.Content, m.Timestamp.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	return tx.Commit()
}

// DeleteSession removes a session and its archived transcript.
func (a *Archive) DeleteSession(sessionID string) error {
	if a.db == nil {
		return ErrClosed
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return tx.Commit()
}

// SessionCount returns the number of archived sessions.
func (a *Archive) SessionCount() (int, error) {
	if a.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// MessageCount returns the number of archived messages for a session.
func (a *Archive) MessageCount(sessionID string) (int, error) {
	if a.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM messages WHERE session_id = ?", sessionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}
