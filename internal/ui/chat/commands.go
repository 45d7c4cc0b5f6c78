// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/meridian-tui/internal/api"
	"github.com/morganforge/meridian-tui/internal/model"
	"github.com/morganforge/meridian-tui/internal/storage"
)

// =============================================================================
// SESSION COMMANDS
// =============================================================================

// sessionRequestTimeout bounds non-streaming session operations.
const sessionRequestTimeout = 15 * time.Second

// loadSessionsCmd fetches the session list.
func loadSessionsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionRequestTimeout)
		defer cancel()

		sessions, err := client.ListSessions(ctx)
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// createSessionCmd creates a session. pending, when non-empty, is the user
// message that triggered implicit creation and should be sent as soon as
// the session exists.
func createSessionCmd(client *api.Client, title, pending string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionRequestTimeout)
		defer cancel()

		session, err := client.CreateSession(ctx, title)
		return SessionCreatedMsg{Session: session, Pending: pending, Err: err}
	}
}

// loadHistoryCmd fetches a session's transcript. A 404 is reported as
// NotFound so the handler can prune the stale session instead of showing
// an error.
func loadHistoryCmd(client *api.Client, sessionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionRequestTimeout)
		defer cancel()

		messages, err := client.SessionHistory(ctx, sessionID)
		if api.IsNotFound(err) {
			return HistoryLoadedMsg{SessionID: sessionID, NotFound: true}
		}
		return HistoryLoadedMsg{SessionID: sessionID, Messages: messages, Err: err}
	}
}

// renameSessionCmd renames a session. The caller has already applied the
// new title optimistically; OldTitle rides along so a rollback policy can
// restore it on failure.
func renameSessionCmd(client *api.Client, sessionID, title, oldTitle string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionRequestTimeout)
		defer cancel()

		session, err := client.RenameSession(ctx, sessionID, title)
		return SessionRenamedMsg{SessionID: sessionID, Session: session, OldTitle: oldTitle, Err: err}
	}
}

// deleteSessionCmd deletes a session.
func deleteSessionCmd(client *api.Client, sessionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionRequestTimeout)
		defer cancel()

		err := client.DeleteSession(ctx, sessionID)
		return SessionDeletedMsg{SessionID: sessionID, Err: err}
	}
}

// loadDashboardCmd fetches the dashboard snapshot for the welcome screen.
func loadDashboardCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionRequestTimeout)
		defer cancel()

		dashboard, err := client.GetDashboard(ctx)
		return DashboardLoadedMsg{Dashboard: dashboard, Err: err}
	}
}

// =============================================================================
// STREAM COMMANDS
// =============================================================================

// streamEvent is one item on the internal stream channel bridging the
// network goroutine to the Update loop.
type streamEvent struct {
	fragment string
	done     bool
	aborted  bool
	err      error
}

// openStream spawns the streaming goroutine for one outbound message and
// returns the channel the Update loop listens on. The goroutine owns the
// network call; the returned channel is closed after the terminal event.
func openStream(client *api.Client, cm *cancelManager, sessionID, content string) chan streamEvent {
	ch := make(chan streamEvent, 64)

	ctx, cancel := context.WithCancel(context.Background())
	// Registering the new cancel func aborts any previous live stream.
	cm.replace(cancel)

	go func() {
		defer close(ch)

		err := client.StreamMessage(ctx, sessionID, content, func(fragment string) {
			select {
			case ch <- streamEvent{fragment: fragment}:
			case <-ctx.Done():
			}
		})

		switch {
		case api.IsAbort(err):
			ch <- streamEvent{done: true, aborted: true}
		case err != nil:
			ch <- streamEvent{done: true, err: err}
		default:
			ch <- streamEvent{done: true}
		}
	}()

	return ch
}

// listenStreamCmd waits for the next stream event and converts it to a
// Bubble Tea message stamped with the session and message it belongs to.
// The fragment handler re-issues this command until a terminal event.
func listenStreamCmd(ch chan streamEvent, sessionID, messageID string) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return StreamCompleteMsg{SessionID: sessionID, MessageID: messageID, Aborted: true}
		}
		if ev.done {
			return StreamCompleteMsg{
				SessionID: sessionID,
				MessageID: messageID,
				Aborted:   ev.aborted,
				Err:       ev.err,
			}
		}
		return StreamFragmentMsg{SessionID: sessionID, MessageID: messageID, Fragment: ev.fragment}
	}
}

// =============================================================================
// ARCHIVE COMMANDS
// =============================================================================

// archiveTranscriptCmd writes a finished transcript to the local archive.
// Fire-and-forget: failures are logged by the handler, never surfaced.
func archiveTranscriptCmd(archive *storage.Archive, session model.Session, messages []model.Message) tea.Cmd {
	if archive == nil {
		return nil
	}
	// Snapshot the transcript; the model's slice keeps mutating.
	snapshot := make([]model.Message, len(messages))
	copy(snapshot, messages)

	return func() tea.Msg {
		err := archive.SaveTranscript(session, snapshot)
		return ArchiveResultMsg{SessionID: session.ID, Err: err}
	}
}
