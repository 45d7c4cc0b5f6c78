// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/meridian-tui/internal/blocks"
	"github.com/morganforge/meridian-tui/internal/model"
	"github.com/morganforge/meridian-tui/internal/ui/components"
	"github.com/morganforge/meridian-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// sessionStripWidth bounds one session title in the top strip.
const sessionStripWidth = 24

func (m Model) render() string {
	if !m.ready {
		return m.spin.View() + " starting..."
	}

	if m.confirmingDelete {
		return m.renderConfirmOverlay()
	}

	sections := []string{
		m.renderHeader(),
		m.renderSessionStrip(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Meridian")
	subtitle := m.theme.ShortcutDesc.Render(" strategy copilot")

	var badge string
	if m.loading || m.state.Live() {
		badge = "  " + m.theme.LoadingBadge.Render(m.spin.View()+"working")
	}
	return m.theme.Header.Width(m.width).Render(title + subtitle + badge)
}

func (m Model) renderSessionStrip() string {
	if len(m.sessions) == 0 {
		return m.theme.SessionMeta.Render(" no sessions — type a message to start one")
	}

	parts := make([]string, 0, len(m.sessions))
	for _, s := range m.sessions {
		title := util.TruncateWidth(util.CollapseSpace(s.Title), sessionStripWidth)
		if s.ID == m.activeSessionID {
			parts = append(parts, m.theme.SessionSelected.Render("▸ "+title))
		} else {
			parts = append(parts, m.theme.SessionItem.Render("  "+title))
		}
	}
	return strings.Join(parts, m.theme.SessionMeta.Render(" │ "))
}

func (m Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render("> ")
	if m.mode == modeRename {
		prompt = m.theme.InputPrompt.Render("rename: ")
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(prompt + "\n" + m.input.View())
}

func (m Model) renderStatusBar() string {
	if m.statusErr != "" {
		return m.theme.StatusBar.Width(m.width).Render(
			m.theme.ErrorMessage.Render("⚠ " + m.statusErr))
	}

	shortcuts := []struct{ key, desc string }{
		{"enter", "send"},
		{"esc", "abort"},
		{"^n", "new"},
		{"^o", "switch"},
		{"^r", "rename"},
		{"^d", "delete"},
		{"1-9", "actions"},
	}
	parts := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		parts = append(parts, m.theme.ShortcutKey.Render(s.key)+" "+m.theme.ShortcutDesc.Render(s.desc))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderConfirmOverlay() string {
	s := m.activeSession()
	title := ""
	if s != nil {
		title = s.Title
	}
	body := m.theme.MessageBody.Render(util.TruncateRunes(title, 40))
	// The last message reminds the user what they are about to discard.
	if n := len(m.transcript); n > 0 {
		if preview := m.transcript[n-1].Preview(48); preview != "" {
			body += "\n" + m.theme.SessionMeta.Render(preview)
		}
	}
	box := m.theme.ConfirmBox.Render(
		m.theme.ConfirmTitle.Render("Delete session?") + "\n\n" +
			body + "\n\n" +
			m.theme.ShortcutDesc.Render("enter/y confirm · esc/n cancel"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// syncViewport re-renders the transcript into the viewport and follows the
// tail.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return m.renderWelcome()
	}

	parts := make([]string, 0, len(m.transcript))
	for _, msg := range m.transcript {
		parts = append(parts, m.renderMessage(msg))
	}
	return strings.Join(parts, "\n\n")
}

// renderWelcome shows the dashboard snapshot before any transcript exists.
// The headline cards reuse the metrics grid; a missing snapshot degrades to
// a plain prompt.
func (m Model) renderWelcome() string {
	hint := m.theme.Placeholder.Render("\n  Ask anything about your strategy portfolio.\n")
	if m.dashboard == nil || len(m.dashboard.HeadlineCards) == 0 {
		return hint
	}

	items := make([]blocks.Metric, 0, len(m.dashboard.HeadlineCards))
	for _, card := range m.dashboard.HeadlineCards {
		items = append(items, blocks.Metric{
			Label:    card.Title,
			Value:    card.PrimaryValue.Text,
			Change:   card.SecondaryText,
			Negative: blocks.ChangeIsNegative(card.SecondaryText),
		})
	}

	parts := []string{
		m.theme.BlockTitle.Render("Portfolio snapshot"),
		components.RenderBlocks(m.theme, []blocks.Block{blocks.Metrics{Items: items}}, m.viewport.Width-2),
	}
	for _, issue := range m.dashboard.TopIssues {
		parts = append(parts, m.theme.SessionMeta.Render("• ")+
			m.theme.MessageBody.Render(issue.Title)+" "+
			m.theme.SessionMeta.Render(issue.MetricText))
	}
	parts = append(parts, hint)
	return strings.Join(parts, "\n")
}

func (m Model) renderMessage(msg model.Message) string {
	var label string
	if msg.Role == model.RoleUser {
		label = m.theme.UserLabel.Render(msg.Role.DisplayName())
	} else {
		label = m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	}
	if m.cfg.UI.ShowTimestamps && !msg.Timestamp.IsZero() {
		label += " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}

	return label + "\n" + m.renderContent(msg)
}

// renderContent re-interprets a message's raw content on every render.
// Parsing is a derived, pure view over the content string: a block document
// renders as typed blocks, a probable-but-incomplete document renders as a
// progress placeholder, and everything else renders as markdown prose.
func (m Model) renderContent(msg model.Message) string {
	if msg.Role == model.RoleUser {
		return m.theme.MessageBody.Render(msg.Content)
	}

	if msg.IsEmpty() {
		if msg.Streaming {
			return m.theme.Placeholder.Render(m.spin.View() + " thinking...")
		}
		return ""
	}

	if bs, ok := blocks.Decode(msg.Content); ok {
		return components.RenderBlocks(m.theme, bs, m.viewport.Width-2)
	}

	if blocks.LooksStructured(msg.Content) {
		return m.theme.Placeholder.Render(m.spin.View() + " Generating Visualization...")
	}

	// Prose: render markdown once the message has settled; plain text while
	// it is still streaming to avoid re-layout flicker.
	if !msg.Streaming && m.renderer != nil {
		if out, err := m.renderer.Render(msg.Content); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return m.theme.MessageBody.Render(msg.Content)
}
