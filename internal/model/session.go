// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Session is a persisted conversation thread with its own history and title.
// The ID is opaque and owned by the server.
type Session struct {
	ID        string    `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// SeedTitle derives a session title from the first user message: the leading
// maxRunes runes plus an ellipsis, or the text itself when short enough.
func SeedTitle(seed string, maxRunes int) string {
	runes := []rune(seed)
	if len(runes) <= maxRunes {
		return seed
	}
	return string(runes[:maxRunes]) + "..."
}
