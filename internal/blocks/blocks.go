// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package blocks parses structured assistant output into typed content
// blocks.
//
// Assistant messages carry either plain prose or a JSON block document
// {"blocks": [...]}; each entry is a discriminated union keyed on "type".
// Decoding validates and normalizes at this boundary so rendering code is
// total over a closed set of variants; unrecognized block types are dropped,
// not fatal, so future server-side block types degrade gracefully.
package blocks

// Kind discriminates the content block variants.
type Kind string

const (
	KindSummary           Kind = "summary"
	KindMetrics           Kind = "metrics"
	KindChart             Kind = "chart"
	KindFlow              Kind = "flow"
	KindRecommendation    Kind = "recommendation"
	KindEvidence          Kind = "evidence"
	KindRecommendedAction Kind = "recommended_action"
)

// Block is one typed unit of structured assistant output.
type Block interface {
	Kind() Kind
}

// =============================================================================
// BLOCK VARIANTS
// =============================================================================

// Summary is a free-text paragraph. Newlines are preserved verbatim.
type Summary struct {
	Text string
}

func (Summary) Kind() Kind { return KindSummary }

// Metric is a single KPI cell in a metrics grid.
type Metric struct {
	Label  string
	Value  string
	Change string
	// Negative is derived from Change at decode time: true when the change
	// contains "-" or the word "down" (case-insensitive).
	Negative bool
}

// Metrics is a grid of KPI cells. An absent items array decodes to an empty
// grid, not an error.
type Metrics struct {
	Items []Metric
}

func (Metrics) Kind() Kind { return KindMetrics }

// ChartType selects the chart rendering shape.
type ChartType string

const (
	ChartArea ChartType = "area"
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
)

// DataPoint is one normalized chart sample: a label taken from the inferred
// X-axis key and a numerically coerced value.
type DataPoint struct {
	Label string
	Value float64
}

// Chart is a titled series of data points.
type Chart struct {
	Title string
	Type  ChartType
	Unit  string
	// Color is the palette tag from the payload ("rose", "emerald",
	// "indigo", "amber"); empty means the default accent.
	Color string
	// XKey is the inferred axis key the labels were taken from.
	XKey   string
	Points []DataPoint
}

func (Chart) Kind() Kind { return KindChart }

// StepStatus is the literal visual state of a flow step. It is taken from
// the payload as-is, never inferred from position.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCurrent   StepStatus = "current"
	StepCompleted StepStatus = "completed"
)

// FlowStep is one step in a process flow.
type FlowStep struct {
	Step   int
	Label  string
	Status StepStatus
}

// Flow is an ordered process visualization.
type Flow struct {
	Title string
	Steps []FlowStep
}

func (Flow) Kind() Kind { return KindFlow }

// Recommendation is a titled free-text recommendation with optional actions
// exposed to the dispatcher.
type Recommendation struct {
	Title   string
	Text    string
	Actions []Action
}

func (Recommendation) Kind() Kind { return KindRecommendation }

// EvidenceItem is one supporting-evidence tag.
type EvidenceItem struct {
	Label string
}

// Evidence is a row of supporting-evidence tags.
type Evidence struct {
	Items []EvidenceItem
}

func (Evidence) Kind() Kind { return KindEvidence }

// CTA is the optional call-to-action on a recommended action. The
// surrounding UI may suppress it; that is configuration, not an error.
type CTA struct {
	Label string
}

// RecommendedAction is a highlighted next-step card.
type RecommendedAction struct {
	Title string
	Text  string
	CTA   *CTA
}

func (RecommendedAction) Kind() Kind { return KindRecommendedAction }

// =============================================================================
// ACTIONS
// =============================================================================

// ActionType discriminates block-embedded actions.
type ActionType string

const (
	ActionNavigation ActionType = "navigation"
	ActionAPI        ActionType = "api"
)

// Action is an operation a block exposes to the user: either in-app
// navigation to a known route, or a named server-side effect.
type Action struct {
	Type   ActionType
	Label  string
	Route  string // navigation only
	ID     string // api only (action_id)
	Method string // api only
}
