// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements thread-safe handling of the single live stream's
// cancel function, which is touched from both the Update loop and the
// streaming goroutine.
package chat

import (
	"context"
	"sync"
)

// =============================================================================
// CANCEL FUNCTION MANAGEMENT (THREAD-SAFE)
// =============================================================================

// cancelManager guards the cancel function of the one live stream. At most
// one stream is cancellable at a time: storing a new cancel function first
// cancels any previous one, so a new send or a session switch always aborts
// the stream it replaces.
// IMPORTANT: This must be used as a pointer (*cancelManager) in Model structs
// to prevent copying the mutex when Bubble Tea's Update returns model copies.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

// newCancelManager creates a new cancelManager pointer.
func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// replace cancels any live stream and stores the new cancel function.
func (cm *cancelManager) replace(fn context.CancelFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
	}
	cm.cancelFunc = fn
}

// cancel aborts the live stream, if any, and clears the stored function.
// Safe to call multiple times or with no stream live.
func (cm *cancelManager) cancel() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}

// active reports whether a cancellable stream is currently registered.
func (cm *cancelManager) active() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.cancelFunc != nil
}
