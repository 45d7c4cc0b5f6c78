// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/meridian-tui/internal/api"
	"github.com/morganforge/meridian-tui/internal/config"
	"github.com/morganforge/meridian-tui/internal/model"
	"github.com/morganforge/meridian-tui/internal/storage"
	"github.com/morganforge/meridian-tui/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// inputMode selects what the text input currently edits.
type inputMode int

const (
	modeCompose inputMode = iota
	modeRename
)

// Model is the chat view: session list, transcript, input, and the
// streaming state machine. It follows the Bubble Tea convention of a value
// model; the pieces that goroutines touch (cancelMgr, buffer, streamCh) are
// pointers so copies made by Update share them.
type Model struct {
	theme   *styles.Theme
	client  *api.Client
	archive *storage.Archive
	cfg     *config.Config

	// Sessions and transcript. activeSessionID is the sole authority for
	// which session owns incoming async results.
	sessions        []model.Session
	activeSessionID string
	transcript      []model.Message

	// dashboard backs the welcome screen shown before any transcript.
	dashboard *api.Dashboard

	// Streaming state machine
	state           StreamState
	cancelMgr       *cancelManager
	buffer          *StreamingBuffer
	streamCh        chan streamEvent
	streamMessageID string

	// UI elements
	input    textarea.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	mode             inputMode
	confirmingDelete bool
	loading          bool
	ready            bool
	width            int
	height           int

	// statusErr is the last non-fatal error, shown in the status bar.
	statusErr string
}

// New creates the chat model. archive may be nil when local archiving is
// disabled.
func New(theme *styles.Theme, client *api.Client, archive *storage.Archive, cfg *config.Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about strategy, metrics, or approvals..."
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Indigo)

	return Model{
		theme:     theme,
		client:    client,
		archive:   archive,
		cfg:       cfg,
		cancelMgr: newCancelManager(),
		buffer:    NewStreamingBuffer(),
		input:     ta,
		spin:      sp,
	}
}

// Init loads the session list and dashboard snapshot and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadSessionsCmd(m.client),
		loadDashboardCmd(m.client),
		m.spin.Tick,
		textarea.Blink,
	)
}

// View renders the chat interface; see view.go.
func (m Model) View() string {
	return m.render()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ActiveSessionID returns the id of the active session, or empty.
func (m Model) ActiveSessionID() string {
	return m.activeSessionID
}

// Transcript returns the current transcript.
func (m Model) Transcript() []model.Message {
	return m.transcript
}

// State returns the streaming state.
func (m Model) State() StreamState {
	return m.state
}

// activeSession returns the active session, or nil.
func (m Model) activeSession() *model.Session {
	for i := range m.sessions {
		if m.sessions[i].ID == m.activeSessionID {
			return &m.sessions[i]
		}
	}
	return nil
}

// sessionIndex returns the index of a session id, or -1.
func (m Model) sessionIndex(id string) int {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// newRenderer builds the markdown renderer for the current width.
func newRenderer(width int) *glamour.TermRenderer {
	if width < 10 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}
