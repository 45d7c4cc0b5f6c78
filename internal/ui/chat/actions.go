// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the block action dispatcher: navigation actions are
// checked against the route allow-list, api actions trigger a named backend
// effect, and every outcome lands in the transcript as one synthetic
// assistant message. Action failures never escalate past the action level.
package chat

import (
	"context"
	"encoding/json"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/meridian-tui/internal/api"
	"github.com/morganforge/meridian-tui/internal/blocks"
	"github.com/morganforge/meridian-tui/internal/router"
)

// =============================================================================
// ACTION DISPATCH
// =============================================================================

// actionRequestTimeout bounds a dispatched api action.
const actionRequestTimeout = 15 * time.Second

// dispatchActionCmd executes one block-embedded action for the given
// session and reports the synthetic follow-up message. The result is
// stamped with the session id so it is dropped if the user has moved on.
func dispatchActionCmd(client *api.Client, sessionID string, action blocks.Action, delay time.Duration) tea.Cmd {
	switch action.Type {
	case blocks.ActionNavigation:
		return func() tea.Msg {
			if !router.IsKnown(action.Route) {
				return ActionResultMsg{SessionID: sessionID, Text: navigationResult(action)}
			}

			ctx, cancel := context.WithTimeout(context.Background(), actionRequestTimeout)
			defer cancel()

			// Routes backed by a feed render their page inline as blocks;
			// anything else (and any fetch failure) falls back to the plain
			// navigation note.
			if doc, ok := routeDocument(ctx, client, action.Route); ok {
				return ActionResultMsg{SessionID: sessionID, Text: doc}
			}
			return ActionResultMsg{SessionID: sessionID, Text: navigationResult(action)}
		}

	case blocks.ActionAPI:
		return func() tea.Msg {
			// Brief pause so the user sees the action acknowledged before
			// the outcome lands.
			time.Sleep(delay)

			ctx, cancel := context.WithTimeout(context.Background(), actionRequestTimeout)
			defer cancel()

			if action.ID != "" {
				if err := client.ExecuteAction(ctx, action.ID, action.Method); err != nil {
					return ActionResultMsg{
						SessionID: sessionID,
						Text:      "⚠️ **Error**: Failed to execute \"" + action.Label + "\".",
					}
				}
			}
			return ActionResultMsg{
				SessionID: sessionID,
				Text:      "✅ **Success**: " + action.Label + " executed successfully.",
			}
		}

	default:
		return nil
	}
}

// navigationResult resolves a navigation action against the allow-list.
// Known routes open the corresponding view; anything else is a simulated
// destination, not an error.
func navigationResult(action blocks.Action) string {
	if router.IsKnown(action.Route) {
		return "Opening `" + action.Route + "`."
	}
	return "ℹ️ **Simulation Note**: The page `" + action.Route + "` is a placeholder."
}

// routeDocument fetches the feed behind a navigated route and packs it as a
// block document, so the transcript renders the page inline. Returns false
// for routes without a feed, empty feeds, and fetch failures.
func routeDocument(ctx context.Context, client *api.Client, route string) (string, bool) {
	switch router.Route(route) {
	case router.RouteApprovals:
		approvals, err := client.ListApprovals(ctx)
		if err != nil || len(approvals) == 0 {
			return "", false
		}
		items := make([]map[string]string, 0, len(approvals))
		for _, a := range approvals {
			items = append(items, map[string]string{
				"label":  a.Title,
				"value":  a.Status,
				"change": a.ImpactEstimate,
			})
		}
		return packDocument([]map[string]any{
			docBlock("summary", map[string]any{"text": "**Approvals** — recommendations awaiting a decision:"}),
			docBlock("metrics", map[string]any{"items": items}),
		})

	case router.RouteLedger:
		entries, err := client.ListLedger(ctx)
		if err != nil || len(entries) == 0 {
			return "", false
		}
		items := make([]map[string]string, 0, len(entries))
		for _, e := range entries {
			items = append(items, map[string]string{
				"label":  e.Event,
				"value":  e.Impact,
				"change": e.Date,
			})
		}
		return packDocument([]map[string]any{
			docBlock("summary", map[string]any{"text": "**Impact Ledger** — realized impact to date:"}),
			docBlock("metrics", map[string]any{"items": items}),
		})

	case router.RouteDashboard:
		dashboard, err := client.GetDashboard(ctx)
		if err != nil || len(dashboard.HeadlineCards) == 0 {
			return "", false
		}
		items := make([]map[string]string, 0, len(dashboard.HeadlineCards))
		for _, card := range dashboard.HeadlineCards {
			items = append(items, map[string]string{
				"label":  card.Title,
				"value":  card.PrimaryValue.Text,
				"change": card.SecondaryText,
			})
		}
		bs := []map[string]any{
			docBlock("summary", map[string]any{"text": "**Dashboard** — headline metrics:"}),
			docBlock("metrics", map[string]any{"items": items}),
		}
		// The signals feed rides along as evidence tags; best-effort.
		if signals, err := client.ListSignals(ctx); err == nil && len(signals) > 0 {
			tags := make([]map[string]string, 0, len(signals))
			for _, s := range signals {
				tags = append(tags, map[string]string{"label": "[" + s.Severity + "] " + s.Title})
			}
			bs = append(bs, docBlock("evidence", map[string]any{"items": tags}))
		}
		return packDocument(bs)

	default:
		return "", false
	}
}

func docBlock(kind string, fields map[string]any) map[string]any {
	fields["type"] = kind
	return fields
}

// packDocument marshals blocks into the same wire envelope assistant
// messages use, so the regular transcript renderer picks them up.
func packDocument(bs []map[string]any) (string, bool) {
	raw, err := json.Marshal(map[string]any{"blocks": bs})
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// visibleActions collects the dispatchable actions of a decoded block
// document in display order, so number keys map 1:1 onto rendered buttons.
func visibleActions(bs []blocks.Block) []blocks.Action {
	var out []blocks.Action
	for _, b := range bs {
		if rec, ok := b.(blocks.Recommendation); ok {
			out = append(out, rec.Actions...)
		}
	}
	return out
}
