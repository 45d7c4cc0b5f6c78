// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// =============================================================================
// WIRE TYPES
// =============================================================================

// Approval is a pending recommendation awaiting an approve/reject decision.
type Approval struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Rationale      string `json:"rationale"`
	Status         string `json:"status"`
	ImpactEstimate string `json:"impact_estimate"`
}

// LedgerEntry is one realized-impact row.
type LedgerEntry struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Event  string `json:"event"`
	Impact string `json:"impact"`
}

// Signal is one detected anomaly or trend from the signals feed.
type Signal struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// HeadlineCard is one KPI card in the dashboard snapshot.
type HeadlineCard struct {
	CardID        string `json:"card_id"`
	Title         string `json:"title"`
	SecondaryText string `json:"secondary_text"`
	InsightText   string `json:"insight_text"`
	PrimaryValue  struct {
		Text   string `json:"text"`
		Status string `json:"status"`
	} `json:"primary_value"`
}

// Issue is a dashboard top-issue row.
type Issue struct {
	IssueID    string `json:"issue_id"`
	Status     string `json:"status"`
	Title      string `json:"title"`
	MetricText string `json:"metric_text"`
	DriverText string `json:"driver_text"`
}

// Dashboard is the aggregated dashboard snapshot.
type Dashboard struct {
	Company struct {
		DataUpdatedAt string `json:"data_updated_at"`
		Mode          string `json:"mode"`
	} `json:"company"`
	HeadlineCards []HeadlineCard `json:"headline_cards"`
	TopIssues     []Issue        `json:"top_issues"`
}

// ApprovalDecision is the verdict submitted for an approval.
type ApprovalDecision string

const (
	DecisionApprove ApprovalDecision = "approve"
	DecisionReject  ApprovalDecision = "reject"
)
