// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import "testing"

func TestIsKnown(t *testing.T) {
	for _, r := range Known() {
		if !IsKnown(string(r)) {
			t.Errorf("route %s should be known", r)
		}
	}

	for _, r := range []string{"", "/settings", "/dashboard/", "dashboard", "/admin"} {
		if IsKnown(r) {
			t.Errorf("route %q should not be known", r)
		}
	}
}
