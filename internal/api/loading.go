// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "sync"

// =============================================================================
// LOADING MONITOR
// =============================================================================

// LoadingMonitor tracks in-flight request count so the UI can show one
// global activity indicator. Subscribers are notified on every transition
// between idle and busy, not on every request.
//
// The monitor is thread-safe for concurrent use.
type LoadingMonitor struct {
	mu          sync.Mutex
	active      int
	subscribers []func(busy bool)
}

// NewLoadingMonitor creates an idle monitor with no subscribers.
func NewLoadingMonitor() *LoadingMonitor {
	return &LoadingMonitor{}
}

// Subscribe registers a callback for busy-state transitions. Callbacks run
// synchronously under the monitor lock; keep them cheap (post a message,
// don't render).
func (m *LoadingMonitor) Subscribe(fn func(busy bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Begin records one request starting. The first concurrent request flips
// the monitor to busy.
func (m *LoadingMonitor) Begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active++
	if m.active == 1 {
		m.notify(true)
	}
}

// End records one request finishing. The count never goes below zero, so an
// unbalanced End is harmless.
func (m *LoadingMonitor) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == 0 {
		return
	}
	m.active--
	if m.active == 0 {
		m.notify(false)
	}
}

// Busy reports whether any request is currently in flight.
func (m *LoadingMonitor) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active > 0
}

func (m *LoadingMonitor) notify(busy bool) {
	for _, fn := range m.subscribers {
		fn(busy)
	}
}
