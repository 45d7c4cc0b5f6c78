// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router defines the fixed set of in-app navigation targets.
package router

// Route is an in-app navigation target identifier.
type Route string

// Known routes. Navigation actions pointing anywhere else are treated as
// not-yet-implemented, not as errors.
const (
	RouteDashboard  Route = "/dashboard"
	RouteApprovals  Route = "/approvals"
	RouteLedger     Route = "/ledger"
	RouteContracts  Route = "/contracts"
	RouteCopilot    Route = "/copilot"
	RouteConnectors Route = "/connectors"
)

var known = map[Route]struct{}{
	RouteDashboard:  {},
	RouteApprovals:  {},
	RouteLedger:     {},
	RouteContracts:  {},
	RouteCopilot:    {},
	RouteConnectors: {},
}

// IsKnown reports whether the route belongs to the navigation allow-list.
func IsKnown(route string) bool {
	_, ok := known[Route(route)]
	return ok
}

// Known returns the allow-list in stable order.
func Known() []Route {
	return []Route{
		RouteDashboard,
		RouteApprovals,
		RouteLedger,
		RouteContracts,
		RouteCopilot,
		RouteConnectors,
	}
}
