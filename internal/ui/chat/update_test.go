// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/morganforge/meridian-tui/internal/api"
	"github.com/morganforge/meridian-tui/internal/blocks"
	"github.com/morganforge/meridian-tui/internal/config"
	"github.com/morganforge/meridian-tui/internal/model"
	"github.com/morganforge/meridian-tui/internal/ui/styles"
)

// newTestModel builds a model with two sessions and no live network. The
// handlers under test never execute returned commands, so a nil client is
// safe.
func newTestModel() Model {
	m := New(styles.NewTheme(), nil, nil, config.Default())
	m.sessions = []model.Session{
		{ID: "A", Title: "Session A", CreatedAt: time.Now().Add(-time.Hour)},
		{ID: "B", Title: "Session B", CreatedAt: time.Now()},
	}
	m.activeSessionID = "A"
	return m
}

// startFakeStream wires the model as if a stream were live for the active
// session, without touching the network.
func startFakeStream(m Model) (Model, model.Message) {
	placeholder := model.NewPlaceholderMessage()
	m.transcript = append(m.transcript, placeholder)
	m.state = StreamStreaming
	m.streamMessageID = placeholder.ID
	return m, placeholder
}

func TestFragmentAppliedToActiveStream(t *testing.T) {
	m, placeholder := startFakeStream(newTestModel())
	m.streamCh = make(chan streamEvent, 1)

	next, _ := m.handleStreamFragment(StreamFragmentMsg{
		SessionID: "A",
		MessageID: placeholder.ID,
		Fragment:  "hello",
	})
	m = next.(Model)

	// Content may sit in the batch buffer; force it out.
	if tail, ok := m.buffer.ForceFlush(); ok {
		m.appendToMessage(placeholder.ID, tail)
	}
	if m.transcript[len(m.transcript)-1].Content != "hello" {
		t.Errorf("fragment should reach the placeholder, got %q", m.transcript[len(m.transcript)-1].Content)
	}
}

func TestStaleWriteGuardOnSessionSwitch(t *testing.T) {
	m, placeholder := startFakeStream(newTestModel())

	// User switches to session B before the next chunk lands.
	next, _ := m.selectSession("B")
	m = next.(Model)

	next, _ = m.handleStreamFragment(StreamFragmentMsg{
		SessionID: "A",
		MessageID: placeholder.ID,
		Fragment:  "late delivery",
	})
	m = next.(Model)

	if len(m.transcript) != 0 {
		t.Fatal("a late chunk for a previous session must not touch the new transcript")
	}
	if _, ok := m.buffer.ForceFlush(); ok {
		t.Error("dropped fragments must not accumulate")
	}
}

func TestSupersededStreamCompletionSettlesItsPlaceholder(t *testing.T) {
	m, old := startFakeStream(newTestModel())

	// A second send replaces the stream; the model now tracks a new id.
	newPlaceholder := model.NewPlaceholderMessage()
	m.transcript = append(m.transcript, newPlaceholder)
	m.streamMessageID = newPlaceholder.ID

	next, _ := m.handleStreamComplete(StreamCompleteMsg{
		SessionID: "A",
		MessageID: old.ID,
		Aborted:   true,
	})
	m = next.(Model)

	if m.streamMessageID != newPlaceholder.ID {
		t.Error("completion of a superseded stream must not clear the live stream")
	}
	// The old, never-filled placeholder must not linger as a perpetual
	// "thinking" message.
	for _, msg := range m.transcript {
		if msg.ID == old.ID {
			t.Error("superseded empty placeholder must be removed")
		}
	}

	// With partial content the message is kept, but settled.
	m, old = startFakeStream(newTestModel())
	m.appendToMessage(old.ID, "partial")
	m.streamMessageID = "another-live-stream"

	next, _ = m.handleStreamComplete(StreamCompleteMsg{
		SessionID: "A",
		MessageID: old.ID,
		Err:       errors.New("boom"),
	})
	m = next.(Model)

	for _, msg := range m.transcript {
		if msg.ID == old.ID && msg.Streaming {
			t.Error("superseded placeholder with content must be finalized")
		}
		if msg.Content == "⚠️ Connection Error." {
			t.Error("superseded stream errors must stay silent")
		}
	}
}

func TestAtMostOneLiveStream(t *testing.T) {
	cm := newCancelManager()

	ctx1, cancel1 := context.WithCancel(context.Background())
	cm.replace(cancel1)

	_, cancel2 := context.WithCancel(context.Background())
	cm.replace(cancel2)

	select {
	case <-ctx1.Done():
	default:
		t.Fatal("registering a second stream must cancel the first")
	}
	if !cm.active() {
		t.Error("second stream should still be registered")
	}

	cm.cancel()
	if cm.active() {
		t.Error("cancel should clear the registered stream")
	}
	cm.cancel() // must be safe to repeat
}

func TestTransportErrorAppendsSyntheticMessage(t *testing.T) {
	m, placeholder := startFakeStream(newTestModel())

	next, _ := m.handleStreamComplete(StreamCompleteMsg{
		SessionID: "A",
		MessageID: placeholder.ID,
		Err:       errors.New("connection reset"),
	})
	m = next.(Model)

	if m.state.Live() {
		t.Errorf("state should settle after completion, got %s", m.state)
	}
	last := m.transcript[len(m.transcript)-1]
	if last.Content != "⚠️ Connection Error." {
		t.Errorf("expected synthetic error message, got %q", last.Content)
	}
	// The empty placeholder is dropped; only the error message remains.
	for _, msg := range m.transcript {
		if msg.ID == placeholder.ID {
			t.Error("empty placeholder should be dropped on error")
		}
	}
}

func TestAbortIsSilent(t *testing.T) {
	m, placeholder := startFakeStream(newTestModel())
	m.appendToMessage(placeholder.ID, "partial answer")

	next, _ := m.handleStreamComplete(StreamCompleteMsg{
		SessionID: "A",
		MessageID: placeholder.ID,
		Aborted:   true,
	})
	m = next.(Model)

	last := m.transcript[len(m.transcript)-1]
	if last.ID != placeholder.ID {
		t.Fatal("aborted stream with partial content keeps its message")
	}
	if last.Streaming {
		t.Error("aborted message must be finalized")
	}
	if last.Content != "partial answer" {
		t.Errorf("partial content should survive abort, got %q", last.Content)
	}
}

func TestAbortDropsEmptyPlaceholder(t *testing.T) {
	m, placeholder := startFakeStream(newTestModel())

	next, _ := m.handleStreamComplete(StreamCompleteMsg{
		SessionID: "A",
		MessageID: placeholder.ID,
		Aborted:   true,
	})
	m = next.(Model)

	for _, msg := range m.transcript {
		if msg.ID == placeholder.ID {
			t.Error("placeholder with no content should vanish on abort")
		}
	}
}

func TestActionResultStaleGuard(t *testing.T) {
	m := newTestModel()

	next, _ := m.handleActionResult(ActionResultMsg{SessionID: "B", Text: "✅ done"})
	m = next.(Model)
	if len(m.transcript) != 0 {
		t.Error("action result for an inactive session must be dropped")
	}

	next, _ = m.handleActionResult(ActionResultMsg{SessionID: "A", Text: "✅ done"})
	m = next.(Model)
	if len(m.transcript) != 1 {
		t.Fatal("action result for the active session should append")
	}
	if m.transcript[0].Role != model.RoleAssistant {
		t.Error("synthetic messages carry the assistant role")
	}
}

func TestNotFoundPrunesStaleSession(t *testing.T) {
	m := newTestModel()

	next, _ := m.handleHistoryLoaded(HistoryLoadedMsg{SessionID: "A", NotFound: true})
	m = next.(Model)

	if m.sessionIndex("A") >= 0 {
		t.Error("stale session should be pruned from the list")
	}
	if m.activeSessionID != "B" {
		t.Errorf("pruning should fall back to the most recent session, got %q", m.activeSessionID)
	}
}

func TestSessionsLoadedAutoSelectsMostRecent(t *testing.T) {
	m := New(styles.NewTheme(), nil, nil, config.Default())
	next, _ := m.handleSessionsLoaded(SessionsLoadedMsg{Sessions: []model.Session{
		{ID: "old", CreatedAt: time.Now().Add(-2 * time.Hour)},
		{ID: "new", CreatedAt: time.Now()},
	}})
	m = next.(Model)

	if m.activeSessionID != "new" {
		t.Errorf("expected most recent session selected, got %q", m.activeSessionID)
	}
}

func TestRenameReconcilePolicies(t *testing.T) {
	renameErr := errors.New("rename rejected")

	t.Run("keep-local", func(t *testing.T) {
		m := newTestModel()
		m.sessions[0].Title = "optimistic"
		next, _ := m.handleSessionRenamed(SessionRenamedMsg{
			SessionID: "A", OldTitle: "Session A", Err: renameErr,
		})
		m = next.(Model)
		if m.sessions[0].Title != "optimistic" {
			t.Error("keep-local policy must retain the optimistic title")
		}
	})

	t.Run("rollback", func(t *testing.T) {
		m := newTestModel()
		m.cfg.Chat.RenameReconcile = "rollback"
		m.sessions[0].Title = "optimistic"
		next, _ := m.handleSessionRenamed(SessionRenamedMsg{
			SessionID: "A", OldTitle: "Session A", Err: renameErr,
		})
		m = next.(Model)
		if m.sessions[0].Title != "Session A" {
			t.Error("rollback policy must restore the previous title")
		}
	})
}

func TestCurrentActionsFromNewestBlockDocument(t *testing.T) {
	m := newTestModel()
	m.transcript = []model.Message{
		model.NewSyntheticMessage(`{"blocks":[{"type":"recommendation","text":"old","actions":[{"type":"api","label":"Old","action_id":"1"}]}]}`),
		model.NewUserMessage("and now?"),
		model.NewSyntheticMessage(`{"blocks":[{"type":"recommendation","text":"new","actions":[{"type":"navigation","label":"Open","route":"/ledger"}]}]}`),
	}

	actions := m.currentActions()
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	if actions[0].Route != "/ledger" {
		t.Errorf("actions must come from the newest block document, got %+v", actions[0])
	}
}

func TestConfigReloadAppliesRuntimeKnobs(t *testing.T) {
	m := newTestModel()
	baseURL := m.cfg.API.BaseURL

	next := config.Default()
	next.Chat.RenameReconcile = "rollback"
	next.UI.ShowTimestamps = true
	next.API.BaseURL = "https://elsewhere.example.com"

	updated, _ := m.Update(ConfigReloadedMsg{Cfg: next})
	m = updated.(Model)

	if m.cfg.Chat.RenameReconcile != "rollback" {
		t.Error("chat knobs should apply on reload")
	}
	if !m.cfg.UI.ShowTimestamps {
		t.Error("ui knobs should apply on reload")
	}
	if m.cfg.API.BaseURL != baseURL {
		t.Error("connection settings must not change at runtime")
	}
}

func TestWelcomeShowsDashboardSnapshot(t *testing.T) {
	m := newTestModel()

	if !strings.Contains(m.renderTranscript(), "Ask anything") {
		t.Error("empty transcript without a snapshot should show the plain prompt")
	}

	card := api.HeadlineCard{Title: "Gross Margin", SecondaryText: "down 2pts"}
	card.PrimaryValue.Text = "41%"
	d := &api.Dashboard{HeadlineCards: []api.HeadlineCard{card}}

	next, _ := m.Update(DashboardLoadedMsg{Dashboard: d})
	m = next.(Model)

	welcome := m.renderTranscript()
	for _, want := range []string{"Gross Margin", "41%", "down 2pts"} {
		if !strings.Contains(welcome, want) {
			t.Errorf("welcome screen missing %q", want)
		}
	}
}

func TestConfirmOverlayShowsLastMessagePreview(t *testing.T) {
	m := newTestModel()
	m.transcript = []model.Message{
		model.NewUserMessage("how is margin\ntrending?"),
	}

	out := m.renderConfirmOverlay()
	if !strings.Contains(out, "Session A") {
		t.Error("overlay should name the session being deleted")
	}
	if !strings.Contains(out, "how is margin trending?") {
		t.Error("overlay should preview the last message, flattened to one line")
	}
}

func TestNavigationResultAllowList(t *testing.T) {
	known := navigationResult(blocks.Action{Type: blocks.ActionNavigation, Route: "/contracts"})
	if known != "Opening `/contracts`." {
		t.Errorf("unexpected known-route result %q", known)
	}

	unknown := navigationResult(blocks.Action{Type: blocks.ActionNavigation, Route: "/warp-drive"})
	if unknown != "ℹ️ **Simulation Note**: The page `/warp-drive` is a placeholder." {
		t.Errorf("unexpected simulation note %q", unknown)
	}
}
