// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat interface.
// Messages are organized into the following categories:
//   - Sessions: list, create, rename, delete, and history loading
//   - Streaming: fragment delivery, completion, and errors
//   - Actions: block-embedded action dispatch results
//   - UI State: loading indicator and resize events
//
// All message types follow Bubble Tea conventions and are immutable.
// Every message produced by an async operation carries the session id it
// was started for; handlers apply it only if that session is still active.
package chat

import (
	"github.com/morganforge/meridian-tui/internal/api"
	"github.com/morganforge/meridian-tui/internal/config"
	"github.com/morganforge/meridian-tui/internal/model"
)

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SessionsLoadedMsg delivers the session list from the backend.
type SessionsLoadedMsg struct {
	Sessions []model.Session
	Err      error
}

// SessionCreatedMsg confirms session creation. Pending carries the user
// message to send immediately once the session exists, empty when the
// session was created explicitly.
type SessionCreatedMsg struct {
	Session *model.Session
	Pending string
	Err     error
}

// HistoryLoadedMsg delivers a session's transcript.
type HistoryLoadedMsg struct {
	SessionID string
	Messages  []model.Message
	NotFound  bool
	Err       error
}

// SessionRenamedMsg confirms (or reports failure of) a rename. The local
// title was already updated optimistically when the rename was issued.
type SessionRenamedMsg struct {
	SessionID string
	Session   *model.Session
	OldTitle  string
	Err       error
}

// SessionDeletedMsg confirms session deletion.
type SessionDeletedMsg struct {
	SessionID string
	Err       error
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamFragmentMsg delivers one text fragment from the live stream.
type StreamFragmentMsg struct {
	SessionID string
	MessageID string
	Fragment  string
}

// StreamCompleteMsg signals that the stream has finished, cleanly or not.
// Aborted is set for deliberate cancellation, which is silent; Err is set
// only for real transport failures.
type StreamCompleteMsg struct {
	SessionID string
	MessageID string
	Aborted   bool
	Err       error
}

// DashboardLoadedMsg delivers the dashboard snapshot shown on the welcome
// screen. Best-effort: a failure leaves the plain welcome text in place.
type DashboardLoadedMsg struct {
	Dashboard *api.Dashboard
	Err       error
}

// =============================================================================
// ACTION MESSAGES
// =============================================================================

// ActionResultMsg reports the outcome of a dispatched block action. Text is
// the synthetic assistant message to append to the owning transcript.
type ActionResultMsg struct {
	SessionID string
	Text      string
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// LoadingMsg reports a busy-state transition of the request monitor.
type LoadingMsg struct {
	Busy bool
}

// SeedPromptMsg injects a first message given on the command line. It
// starts a fresh session regardless of existing ones.
type SeedPromptMsg struct {
	Content string
}

// ArchiveResultMsg reports a fire-and-forget archive write. Only logged.
type ArchiveResultMsg struct {
	SessionID string
	Err       error
}

// ConfigReloadedMsg delivers a hot-reloaded configuration. The watcher
// goroutine sends it through the program so the Update loop stays the only
// writer of runtime knobs.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}
