// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/morganforge/meridian-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Strategist"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single message in a transcript.
//
// Content is the single source of truth: for assistant messages it is raw
// text that grows monotonically while streaming and is re-interpreted on
// every render (block decoding is a derived view, never stored back).
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`

	// Streaming marks the placeholder assistant message that is still being
	// filled by the active stream. Not persisted.
	Streaming bool `json:"-"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewPlaceholderMessage creates the empty assistant message appended at
// stream start and progressively filled as chunks arrive.
func NewPlaceholderMessage() Message {
	m := NewMessage(RoleAssistant, "")
	m.Streaming = true
	return m
}

// NewSyntheticMessage creates a locally generated assistant message, used
// for action outcomes and connection errors.
func NewSyntheticMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// IsEmpty returns true if the message has no content.
func (m Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// Preview returns a single-line truncated preview of the content.
func (m Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.CollapseSpace(m.Content), maxRunes)
}

// generateID creates a unique local message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}
