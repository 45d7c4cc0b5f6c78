// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/morganforge/meridian-tui/internal/model"
)

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// ListSessions retrieves all chat sessions.
func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	if err := c.doJSON(ctx, http.MethodGet, "/chat/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession creates a new chat session with the given title.
func (c *Client) CreateSession(ctx context.Context, title string) (*model.Session, error) {
	body := struct {
		Title string `json:"title"`
	}{Title: title}

	var session model.Session
	if err := c.doJSON(ctx, http.MethodPost, "/chat/sessions", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SessionHistory retrieves the full message transcript of a session.
// Returns ErrNotFound when the session no longer exists server-side; callers
// prune the stale session locally instead of surfacing the error.
func (c *Client) SessionHistory(ctx context.Context, sessionID string) ([]model.Message, error) {
	var messages []model.Message
	path := "/chat/sessions/" + sessionID + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// RenameSession updates a session's title and returns the updated session.
func (c *Client) RenameSession(ctx context.Context, sessionID, title string) (*model.Session, error) {
	body := struct {
		Title string `json:"title"`
	}{Title: title}

	var session model.Session
	if err := c.doJSON(ctx, http.MethodPatch, "/chat/sessions/"+sessionID, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession permanently deletes a session and its transcript.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/chat/sessions/"+sessionID, nil, nil)
}
