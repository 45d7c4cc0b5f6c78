// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable rendering components for the TUI.
package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/meridian-tui/internal/blocks"
	"github.com/morganforge/meridian-tui/internal/ui/styles"
	"github.com/morganforge/meridian-tui/internal/util"
)

// =============================================================================
// BLOCK RENDERING
// =============================================================================

// RenderBlocks renders a decoded block document into terminal output.
// Rendering is total: every variant renders something, and an empty or
// degenerate block renders a placeholder rather than aborting siblings.
func RenderBlocks(theme *styles.Theme, bs []blocks.Block, width int) string {
	if len(bs) == 0 {
		return theme.Placeholder.Render("(empty response)")
	}

	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		parts = append(parts, renderBlock(theme, b, width))
	}
	return strings.Join(parts, "\n")
}

func renderBlock(theme *styles.Theme, b blocks.Block, width int) string {
	switch v := b.(type) {
	case blocks.Summary:
		return theme.MessageBody.Render(v.Text)
	case blocks.Metrics:
		return renderMetrics(theme, v, width)
	case blocks.Chart:
		return renderChart(theme, v, width)
	case blocks.Flow:
		return renderFlow(theme, v)
	case blocks.Recommendation:
		return renderRecommendation(theme, v, width)
	case blocks.Evidence:
		return renderEvidence(theme, v)
	case blocks.RecommendedAction:
		return renderRecommendedAction(theme, v, width)
	default:
		return ""
	}
}

// =============================================================================
// METRICS
// =============================================================================

// metricColumns caps how many KPI cells share a row.
const metricColumns = 3

func renderMetrics(theme *styles.Theme, m blocks.Metrics, width int) string {
	if len(m.Items) == 0 {
		return theme.Placeholder.Render("(no metrics)")
	}

	cells := make([]string, 0, len(m.Items))
	for _, item := range m.Items {
		change := item.Change
		if change != "" {
			if item.Negative {
				change = theme.ChangeNegative.Render(change)
			} else {
				change = theme.ChangePositive.Render(change)
			}
		}
		cell := theme.MetricLabel.Render(item.Label) + "\n" +
			theme.MetricValue.Render(item.Value)
		if change != "" {
			cell += "  " + change
		}
		cells = append(cells, theme.BlockCard.Render(cell))
	}

	var rows []string
	for i := 0; i < len(cells); i += metricColumns {
		end := i + metricColumns
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...))
	}
	return strings.Join(rows, "\n")
}

// =============================================================================
// CHARTS
// =============================================================================

// sparkRunes draws an area series as a one-line sparkline.
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func renderChart(theme *styles.Theme, c blocks.Chart, width int) string {
	title := c.Title
	if title == "" {
		title = "Chart"
	}
	header := theme.BlockTitle.Render(title)
	if c.Unit != "" {
		header += theme.SessionMeta.Render(" (" + c.Unit + ")")
	}

	if len(c.Points) == 0 {
		return theme.BlockCard.Render(header + "\n" + theme.Placeholder.Render("no data"))
	}

	accent := lipgloss.NewStyle().Foreground(styles.BlockColor(c.Color))

	var body string
	switch c.Type {
	case blocks.ChartBar:
		body = renderBarChart(theme, accent, c, width)
	case blocks.ChartPie:
		body = renderPieChart(theme, c)
	default:
		body = renderAreaChart(theme, accent, c)
	}

	return theme.BlockCard.Render(header + "\n" + body)
}

func renderAreaChart(theme *styles.Theme, accent lipgloss.Style, c blocks.Chart) string {
	min, max := c.Points[0].Value, c.Points[0].Value
	for _, p := range c.Points {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}

	var spark strings.Builder
	for _, p := range c.Points {
		idx := 0
		if max > min {
			idx = int((p.Value - min) / (max - min) * float64(len(sparkRunes)-1))
		}
		spark.WriteRune(sparkRunes[idx])
	}

	first := c.Points[0].Label
	last := c.Points[len(c.Points)-1].Label
	axis := theme.SessionMeta.Render(first + " … " + last)
	return accent.Render(spark.String()) + "\n" + axis
}

// barMaxWidth bounds the longest bar in a horizontal bar chart.
const barMaxWidth = 30

func renderBarChart(theme *styles.Theme, accent lipgloss.Style, c blocks.Chart, width int) string {
	// Bars scale against the largest positive value; zero and negative
	// values render as empty bars with the value column carrying the sign.
	max := 0.0
	labelWidth := 0
	for _, p := range c.Points {
		if p.Value > max {
			max = p.Value
		}
		if len(p.Label) > labelWidth {
			labelWidth = len(p.Label)
		}
	}

	barWidth := barMaxWidth
	if width > 0 && width-labelWidth-12 < barWidth {
		barWidth = width - labelWidth - 12
	}
	if barWidth < 1 {
		barWidth = 1
	}

	var lines []string
	for _, p := range c.Points {
		n := 0
		if max > 0 && p.Value > 0 {
			n = int(p.Value / max * float64(barWidth))
			if n < 1 {
				n = 1
			}
			if n > barWidth {
				n = barWidth
			}
		}
		line := theme.MetricLabel.Render(util.PadRight(p.Label, labelWidth)) + " " +
			accent.Render(strings.Repeat("█", n)) + " " +
			theme.SessionMeta.Render(formatValue(p.Value))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderPieChart(theme *styles.Theme, c blocks.Chart) string {
	var total float64
	for _, p := range c.Points {
		total += p.Value
	}
	if total == 0 {
		return theme.Placeholder.Render("no data")
	}

	var lines []string
	for i, p := range c.Points {
		pct := p.Value / total * 100
		dot := lipgloss.NewStyle().
			Foreground(lipgloss.Color(blocks.PaletteHex(i))).
			Render("●")
		lines = append(lines, dot+" "+theme.MetricLabel.Render(p.Label)+" "+
			theme.SessionMeta.Render(formatValue(pct)+"%"))
	}
	return strings.Join(lines, "\n")
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// =============================================================================
// FLOW
// =============================================================================

func renderFlow(theme *styles.Theme, f blocks.Flow) string {
	var b strings.Builder
	if f.Title != "" {
		b.WriteString(theme.BlockTitle.Render(f.Title))
		b.WriteString("\n")
	}
	if len(f.Steps) == 0 {
		b.WriteString(theme.Placeholder.Render("(no steps)"))
		return theme.BlockCard.Render(b.String())
	}

	for i, step := range f.Steps {
		var marker string
		switch step.Status {
		case blocks.StepCompleted:
			marker = theme.ChangePositive.Render("✓")
		case blocks.StepCurrent:
			marker = theme.LoadingBadge.Render("➤")
		default:
			marker = theme.SessionMeta.Render("○")
		}
		b.WriteString(marker + " " + theme.MessageBody.Render(step.Label))
		if i < len(f.Steps)-1 {
			b.WriteString("\n")
		}
	}
	return theme.BlockCard.Render(b.String())
}

// =============================================================================
// RECOMMENDATION AND ACTIONS
// =============================================================================

func renderRecommendation(theme *styles.Theme, r blocks.Recommendation, width int) string {
	var b strings.Builder
	if r.Title != "" {
		b.WriteString(theme.BlockTitle.Render(r.Title))
		b.WriteString("\n")
	}
	b.WriteString(theme.MessageBody.Render(r.Text))

	if len(r.Actions) > 0 {
		b.WriteString("\n")
		buttons := make([]string, 0, len(r.Actions))
		for i, a := range r.Actions {
			label := strconv.Itoa(i+1) + " " + a.Label
			buttons = append(buttons, theme.ActionButton.Render(label))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	}
	return theme.BlockCard.Render(b.String())
}

func renderEvidence(theme *styles.Theme, e blocks.Evidence) string {
	if len(e.Items) == 0 {
		return ""
	}
	tags := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		tags = append(tags, theme.EvidenceTag.Render(item.Label))
	}
	return theme.SessionMeta.Render("Evidence: ") + strings.Join(tags, " ")
}

func renderRecommendedAction(theme *styles.Theme, r blocks.RecommendedAction, width int) string {
	var b strings.Builder
	b.WriteString(theme.BlockTitle.Render(r.Title))
	b.WriteString("\n")
	b.WriteString(theme.MessageBody.Render(r.Text))
	if r.CTA != nil {
		b.WriteString("\n")
		b.WriteString(theme.CTAButton.Render(r.CTA.Label))
	}
	return theme.BlockCard.Render(b.String())
}
