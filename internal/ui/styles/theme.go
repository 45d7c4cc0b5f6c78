// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER AND STATUS STYLES
	// ==========================================================================

	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	StatusBar    lipgloss.Style
	LoadingBadge lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// SESSION LIST STYLES
	// ==========================================================================

	SessionList     lipgloss.Style
	SessionItem     lipgloss.Style
	SessionSelected lipgloss.Style
	SessionMeta     lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	MessageBody    lipgloss.Style
	Timestamp      lipgloss.Style
	ErrorMessage   lipgloss.Style
	Placeholder    lipgloss.Style

	// ==========================================================================
	// BLOCK STYLES
	// ==========================================================================

	BlockCard      lipgloss.Style
	BlockTitle     lipgloss.Style
	MetricLabel    lipgloss.Style
	MetricValue    lipgloss.Style
	ChangePositive lipgloss.Style
	ChangeNegative lipgloss.Style
	EvidenceTag    lipgloss.Style
	ActionButton   lipgloss.Style
	CTAButton      lipgloss.Style

	// ==========================================================================
	// INPUT AND OVERLAY STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	ConfirmBox     lipgloss.Style
	ConfirmTitle   lipgloss.Style
}

// NewTheme creates a theme tuned to the current terminal.
func NewTheme() *Theme {
	// Detect terminal capabilities
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.LoadingBadge = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Session list
	t.SessionList = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SessionSelected = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.SessionMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.MessageBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(Rose)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Blocks
	t.BlockCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.BlockTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.MetricLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.MetricValue = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ChangePositive = lipgloss.NewStyle().
		Foreground(Emerald)

	t.ChangeNegative = lipgloss.NewStyle().
		Foreground(Rose)

	t.EvidenceTag = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ActionButton = lipgloss.NewStyle().
		Foreground(Cyan).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)

	t.CTAButton = lipgloss.NewStyle().
		Bold(true).
		Foreground(Surface).
		Background(Indigo).
		Padding(0, 2)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Confirm overlay
	t.ConfirmBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 2)

	t.ConfirmTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)
}

// SetSize updates the layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
