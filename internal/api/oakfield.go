// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
)

// =============================================================================
// DASHBOARD AND OPERATIONS FEEDS
// =============================================================================

// GetDashboard retrieves the aggregated dashboard snapshot.
func (c *Client) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var dash Dashboard
	if err := c.doJSON(ctx, http.MethodGet, "/oakfield/dashboard", nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// ListApprovals retrieves recommendations awaiting a decision.
func (c *Client) ListApprovals(ctx context.Context) ([]Approval, error) {
	var approvals []Approval
	if err := c.doJSON(ctx, http.MethodGet, "/oakfield/approvals", nil, &approvals); err != nil {
		return nil, err
	}
	return approvals, nil
}

// SubmitApproval submits an approve/reject decision for a recommendation.
func (c *Client) SubmitApproval(ctx context.Context, id string, decision ApprovalDecision) error {
	body := struct {
		Action string `json:"action"`
	}{Action: string(decision)}
	return c.doJSON(ctx, http.MethodPost, "/oakfield/approvals/"+id+"/action", body, nil)
}

// ExecuteAction triggers the named backend effect behind a block-embedded
// api action. The block's method is honored as given.
func (c *Client) ExecuteAction(ctx context.Context, actionID, method string) error {
	if method == "" {
		method = http.MethodPost
	}
	body := struct {
		Action string `json:"action"`
	}{Action: string(DecisionApprove)}
	return c.doJSON(ctx, method, "/oakfield/approvals/"+actionID+"/action", body, nil)
}

// ListLedger retrieves the realized-impact ledger.
func (c *Client) ListLedger(ctx context.Context) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	if err := c.doJSON(ctx, http.MethodGet, "/oakfield/ledger", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListSignals retrieves the detected-signals feed.
func (c *Client) ListSignals(ctx context.Context) ([]Signal, error) {
	var signals []Signal
	if err := c.doJSON(ctx, http.MethodGet, "/oakfield/signals", nil, &signals); err != nil {
		return nil, err
	}
	return signals, nil
}
