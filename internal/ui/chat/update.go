// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/meridian-tui/internal/blocks"
	"github.com/morganforge/meridian-tui/internal/logger"
	"github.com/morganforge/meridian-tui/internal/model"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update routes Bubble Tea messages to their handlers.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case SessionsLoadedMsg:
		return m.handleSessionsLoaded(msg)
	case SessionCreatedMsg:
		return m.handleSessionCreated(msg)
	case HistoryLoadedMsg:
		return m.handleHistoryLoaded(msg)
	case SessionRenamedMsg:
		return m.handleSessionRenamed(msg)
	case SessionDeletedMsg:
		return m.handleSessionDeleted(msg)

	case StreamFragmentMsg:
		return m.handleStreamFragment(msg)
	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case DashboardLoadedMsg:
		if msg.Err != nil {
			logger.Debug("dashboard snapshot unavailable", "error", msg.Err)
			return m, nil
		}
		m.dashboard = msg.Dashboard
		m.syncViewport()
		return m, nil

	case ActionResultMsg:
		return m.handleActionResult(msg)
	case LoadingMsg:
		m.loading = msg.Busy
		return m, nil
	case SeedPromptMsg:
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			return m, nil
		}
		m.cancelMgr.cancel()
		m.resetStreamState()
		title := model.SeedTitle(content, m.cfg.Chat.TitleSeedRunes)
		return m, createSessionCmd(m.client, title, content)
	case ArchiveResultMsg:
		if msg.Err != nil {
			logger.Warn("transcript archive failed", "session", msg.SessionID, "error", msg.Err)
		}
		return m, nil
	case ConfigReloadedMsg:
		if msg.Cfg != nil {
			// Only the knobs that are safe to change at runtime are applied.
			m.cfg.Chat = msg.Cfg.Chat
			m.cfg.UI = msg.Cfg.UI
			logger.Info("configuration reloaded")
		}
		return m, nil
	}

	return m.updateChildren(msg)
}

// updateChildren forwards unhandled messages to the input and viewport.
func (m Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// =============================================================================
// RESIZE AND KEYS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	inputHeight := 5
	chromeHeight := 4 // header + session strip + status bar
	vpHeight := msg.Height - inputHeight - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}

	m.input.SetWidth(msg.Width - 4)
	m.renderer = newRenderer(msg.Width - 6)
	m.syncViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Delete confirmation overlay swallows all keys.
	if m.confirmingDelete {
		switch msg.String() {
		case "enter", "y":
			m.confirmingDelete = false
			return m.deleteActiveSession()
		case "esc", "n":
			m.confirmingDelete = false
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.cancelMgr.cancel()
		return m, tea.Quit

	case "esc":
		if m.mode == modeRename {
			m.mode = modeCompose
			m.input.Reset()
			return m, nil
		}
		if m.state.Live() {
			// Abort surfaces via the stream's terminal event.
			m.cancelMgr.cancel()
		}
		return m, nil

	case "enter":
		if m.mode == modeRename {
			return m.submitRename()
		}
		return m.submitInput()

	case "ctrl+j":
		// Newline in compose mode.
		return m.updateChildren(msg)

	case "ctrl+n":
		return m.startNewSession()

	case "ctrl+r":
		if s := m.activeSession(); s != nil {
			m.mode = modeRename
			m.input.SetValue(s.Title)
		}
		return m, nil

	case "ctrl+d":
		if m.activeSessionID != "" {
			m.confirmingDelete = true
		}
		return m, nil

	case "ctrl+o":
		return m.cycleSession()
	}

	// Number keys dispatch rendered block actions when not composing text.
	if m.input.Value() == "" && len(msg.String()) == 1 {
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 {
			return m.dispatchActionByIndex(n - 1)
		}
	}

	return m.updateChildren(msg)
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

func (m Model) handleSessionsLoaded(msg SessionsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.Error("failed to load sessions", "error", msg.Err)
		m.statusErr = "could not load sessions"
		return m, nil
	}
	m.statusErr = ""
	m.sessions = msg.Sessions

	// Keep the current selection when it still exists; otherwise pick the
	// most recent session. An in-flight stream keeps its transcript.
	if m.activeSessionID != "" && m.sessionIndex(m.activeSessionID) >= 0 {
		return m, nil
	}
	if latest := mostRecentSession(m.sessions); latest != nil {
		return m.selectSession(latest.ID)
	}
	return m, nil
}

func (m Model) handleSessionCreated(msg SessionCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.Error("failed to create session", "error", msg.Err)
		m.transcript = append(m.transcript, model.NewSyntheticMessage("⚠️ Connection Error."))
		m.syncViewport()
		return m, nil
	}

	m.sessions = append(m.sessions, *msg.Session)
	m.activeSessionID = msg.Session.ID
	m.transcript = nil
	m.resetStreamState()

	if msg.Pending != "" {
		return m.sendMessage(msg.Pending)
	}
	m.syncViewport()
	return m, nil
}

func (m Model) handleHistoryLoaded(msg HistoryLoadedMsg) (tea.Model, tea.Cmd) {
	// Stale guard: only the active session's history may land.
	if msg.SessionID != m.activeSessionID {
		return m, nil
	}

	if msg.NotFound {
		// Server no longer knows this session; prune it locally.
		logger.Info("pruning stale session", "session", msg.SessionID)
		m.removeSession(msg.SessionID)
		m.activeSessionID = ""
		m.transcript = nil
		if latest := mostRecentSession(m.sessions); latest != nil {
			return m.selectSession(latest.ID)
		}
		m.syncViewport()
		return m, nil
	}
	if msg.Err != nil {
		logger.Error("failed to load history", "session", msg.SessionID, "error", msg.Err)
		m.statusErr = "could not load history"
		return m, nil
	}

	m.statusErr = ""
	m.transcript = msg.Messages
	m.syncViewport()
	return m, nil
}

func (m Model) handleSessionRenamed(msg SessionRenamedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.Warn("rename failed", "session", msg.SessionID, "error", msg.Err)
		if m.cfg.Chat.RenameReconcile == "rollback" {
			if i := m.sessionIndex(msg.SessionID); i >= 0 {
				m.sessions[i].Title = msg.OldTitle
			}
		}
		return m, nil
	}
	// Reconcile to the server's copy of the title.
	if i := m.sessionIndex(msg.SessionID); i >= 0 && msg.Session != nil {
		m.sessions[i].Title = msg.Session.Title
	}
	return m, nil
}

func (m Model) handleSessionDeleted(msg SessionDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.Error("failed to delete session", "session", msg.SessionID, "error", msg.Err)
		m.statusErr = "could not delete session"
		return m, nil
	}

	m.removeSession(msg.SessionID)
	if m.activeSessionID == msg.SessionID {
		m.activeSessionID = ""
		m.transcript = nil
		m.resetStreamState()
		if latest := mostRecentSession(m.sessions); latest != nil {
			return m.selectSession(latest.ID)
		}
	}
	m.syncViewport()
	return m, nil
}

// =============================================================================
// STREAM HANDLERS
// =============================================================================

func (m Model) handleStreamFragment(msg StreamFragmentMsg) (tea.Model, tea.Cmd) {
	// Stale-write guard: fragments mutate the transcript only while their
	// stream is still the live one and its session is still active. Late
	// deliveries from a superseded stream are dropped without re-listening;
	// cancellation has already unblocked their goroutine.
	if msg.MessageID != m.streamMessageID || msg.SessionID != m.activeSessionID || !m.state.Live() {
		return m, nil
	}

	m.state = StreamStreaming
	m.buffer.Write(msg.Fragment)
	if content, ok := m.buffer.Flush(); ok {
		m.appendToMessage(msg.MessageID, content)
		m.syncViewport()
	}

	return m, listenStreamCmd(m.streamCh, msg.SessionID, msg.MessageID)
}

func (m Model) handleStreamComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	// A superseded stream's completion arrives after its replacement took
	// over. It may not touch the live stream's bookkeeping, but its own
	// placeholder must still settle: finalized, and removed if it never
	// received content. Otherwise the message spins forever.
	if msg.MessageID != m.streamMessageID {
		m.finalizeMessage(msg.MessageID)
		m.dropIfEmpty(msg.MessageID)
		m.syncViewport()
		return m, nil
	}

	m.cancelMgr.cancel()
	m.streamMessageID = ""
	m.streamCh = nil

	// A session switch between the last fragment and completion means the
	// transcript on screen is no longer this stream's; drop the tail.
	if msg.SessionID != m.activeSessionID {
		m.buffer.Reset()
		m.state = StreamIdle
		return m, nil
	}

	if tail, ok := m.buffer.ForceFlush(); ok {
		m.appendToMessage(msg.MessageID, tail)
	}
	m.finalizeMessage(msg.MessageID)

	var cmds []tea.Cmd
	switch {
	case msg.Aborted:
		m.state = StreamAborted
		m.dropIfEmpty(msg.MessageID)
	case msg.Err != nil:
		m.state = StreamErrored
		logger.Error("stream failed", "session", msg.SessionID, "error", msg.Err)
		m.dropIfEmpty(msg.MessageID)
		m.transcript = append(m.transcript, model.NewSyntheticMessage("⚠️ Connection Error."))
	default:
		m.state = StreamCompleted
		// Refresh the session list so server-side title updates land, and
		// archive the finished transcript locally.
		cmds = append(cmds, loadSessionsCmd(m.client))
		if s := m.activeSession(); s != nil {
			if cmd := archiveTranscriptCmd(m.archive, *s, m.transcript); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	m.syncViewport()
	return m, tea.Batch(cmds...)
}

// =============================================================================
// ACTION HANDLERS
// =============================================================================

func (m Model) handleActionResult(msg ActionResultMsg) (tea.Model, tea.Cmd) {
	// Results for a session the user has left are dropped.
	if msg.SessionID != m.activeSessionID {
		return m, nil
	}
	m.transcript = append(m.transcript, model.NewSyntheticMessage(msg.Text))
	m.syncViewport()
	return m, nil
}

// dispatchActionByIndex triggers the nth visible action of the newest
// assistant block document.
func (m Model) dispatchActionByIndex(idx int) (tea.Model, tea.Cmd) {
	actions := m.currentActions()
	if idx < 0 || idx >= len(actions) {
		return m, nil
	}
	delay := m.cfg.Chat.ActionDelay()
	return m, dispatchActionCmd(m.client, m.activeSessionID, actions[idx], delay)
}

// currentActions returns the dispatchable actions of the newest assistant
// message that decodes to a block document.
func (m Model) currentActions() []blocks.Action {
	for i := len(m.transcript) - 1; i >= 0; i-- {
		msg := m.transcript[i]
		if msg.Role != model.RoleAssistant {
			continue
		}
		if bs, ok := blocks.Decode(msg.Content); ok {
			return visibleActions(bs)
		}
	}
	return nil
}

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}
	if m.state.Live() {
		// A new send replaces the live stream.
		m.cancelMgr.cancel()
	}
	m.input.Reset()

	// First message with no session: create one titled from the message.
	if m.activeSessionID == "" {
		title := model.SeedTitle(content, m.cfg.Chat.TitleSeedRunes)
		return m, createSessionCmd(m.client, title, content)
	}
	return m.sendMessage(content)
}

// sendMessage appends the user message and a streaming placeholder, then
// opens the stream.
func (m Model) sendMessage(content string) (tea.Model, tea.Cmd) {
	m.transcript = append(m.transcript, model.NewUserMessage(content))
	placeholder := model.NewPlaceholderMessage()
	m.transcript = append(m.transcript, placeholder)

	m.buffer.Reset()
	m.state = StreamSending
	m.streamMessageID = placeholder.ID
	m.streamCh = openStream(m.client, m.cancelMgr, m.activeSessionID, content)

	m.syncViewport()
	return m, listenStreamCmd(m.streamCh, m.activeSessionID, placeholder.ID)
}

func (m Model) submitRename() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.input.Value())
	m.mode = modeCompose
	m.input.Reset()

	s := m.activeSession()
	if s == nil || title == "" || title == s.Title {
		return m, nil
	}

	// Optimistic: apply locally first, reconcile on the server's answer.
	oldTitle := s.Title
	s.Title = title
	return m, renameSessionCmd(m.client, s.ID, title, oldTitle)
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// selectSession switches the active session. Any live stream belongs to
// the previous session and is aborted. A rename in progress pins the
// selection until it is submitted or dismissed.
func (m Model) selectSession(id string) (tea.Model, tea.Cmd) {
	if id == m.activeSessionID || m.mode == modeRename {
		return m, nil
	}
	m.cancelMgr.cancel()
	m.resetStreamState()

	m.activeSessionID = id
	m.transcript = nil
	m.syncViewport()
	return m, loadHistoryCmd(m.client, id)
}

func (m Model) startNewSession() (tea.Model, tea.Cmd) {
	m.cancelMgr.cancel()
	m.resetStreamState()
	return m, createSessionCmd(m.client, m.cfg.Chat.DefaultTitle, "")
}

func (m Model) deleteActiveSession() (tea.Model, tea.Cmd) {
	if m.activeSessionID == "" {
		return m, nil
	}
	m.cancelMgr.cancel()
	m.resetStreamState()
	return m, deleteSessionCmd(m.client, m.activeSessionID)
}

func (m Model) cycleSession() (tea.Model, tea.Cmd) {
	if len(m.sessions) < 2 {
		return m, nil
	}
	i := m.sessionIndex(m.activeSessionID)
	next := m.sessions[(i+1)%len(m.sessions)]
	return m.selectSession(next.ID)
}

// =============================================================================
// TRANSCRIPT HELPERS
// =============================================================================

// appendToMessage grows a message's content in place. Content only ever
// grows during streaming; it is re-interpreted, never stored pre-parsed.
func (m *Model) appendToMessage(messageID, content string) {
	for i := range m.transcript {
		if m.transcript[i].ID == messageID {
			m.transcript[i].Content += content
			return
		}
	}
}

func (m *Model) finalizeMessage(messageID string) {
	for i := range m.transcript {
		if m.transcript[i].ID == messageID {
			m.transcript[i].Streaming = false
			return
		}
	}
}

// dropIfEmpty removes a finalized placeholder that never received content.
func (m *Model) dropIfEmpty(messageID string) {
	for i := range m.transcript {
		if m.transcript[i].ID == messageID {
			if m.transcript[i].IsEmpty() {
				m.transcript = append(m.transcript[:i], m.transcript[i+1:]...)
			}
			return
		}
	}
}

func (m *Model) removeSession(id string) {
	if i := m.sessionIndex(id); i >= 0 {
		m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
	}
}

func (m *Model) resetStreamState() {
	m.buffer.Reset()
	m.state = StreamIdle
	m.streamMessageID = ""
	m.streamCh = nil
}

// mostRecentSession picks the newest session by creation time.
func mostRecentSession(sessions []model.Session) *model.Session {
	if len(sessions) == 0 {
		return nil
	}
	latest := &sessions[0]
	for i := range sessions {
		if sessions[i].CreatedAt.After(latest.CreatedAt) {
			latest = &sessions[i]
		}
	}
	return latest
}
