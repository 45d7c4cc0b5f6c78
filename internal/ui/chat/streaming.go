// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the streaming consumer state machine and the
// fragment batching that keeps rendering smooth during a live stream.
package chat

import (
	"strings"
	"sync"
	"time"
)

// =============================================================================
// STREAM STATE
// =============================================================================

// StreamState tracks the lifecycle of the in-flight message exchange.
//
// Transitions:
//
//	Idle -> Sending        user message submitted, stream being opened
//	Sending -> Streaming   first fragment arrived
//	Sending|Streaming -> Completed   stream ended cleanly
//	Sending|Streaming -> Aborted     user or session switch cancelled
//	Sending|Streaming -> Errored     transport failure
//
// Completed, Aborted, and Errored all collapse back to Idle once the
// transcript has been finalized.
type StreamState int

const (
	StreamIdle StreamState = iota
	StreamSending
	StreamStreaming
	StreamCompleted
	StreamAborted
	StreamErrored
)

// String returns the state name for logging.
func (s StreamState) String() string {
	switch s {
	case StreamIdle:
		return "idle"
	case StreamSending:
		return "sending"
	case StreamStreaming:
		return "streaming"
	case StreamCompleted:
		return "completed"
	case StreamAborted:
		return "aborted"
	case StreamErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Live reports whether a stream is currently open.
func (s StreamState) Live() bool {
	return s == StreamSending || s == StreamStreaming
}

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches fragments for efficient rendering.
// Fragments accumulate and are flushed either when the batch size threshold
// is reached or when enough time has passed since the last flush. This
// prevents excessive re-rendering during fast streams while keeping slow
// streams visually smooth.
//
// Thread-safety: all operations are protected by a mutex since streaming
// happens in a goroutine while rendering happens in the main Bubble Tea
// loop.
type StreamingBuffer struct {
	mu            sync.Mutex
	buffer        strings.Builder
	fragmentCount int
	lastFlush     time.Time

	batchSize  int
	minFlushMs time.Duration
}

// NewStreamingBuffer creates a streaming buffer with default settings:
// 15 fragments per batch, flushes capped at 30fps.
func NewStreamingBuffer() *StreamingBuffer {
	const (
		defaultBatchSize = 15
		defaultMaxFPS    = 30
	)

	return &StreamingBuffer{
		batchSize:  defaultBatchSize,
		minFlushMs: time.Duration(1000/defaultMaxFPS) * time.Millisecond,
		lastFlush:  time.Now(),
	}
}

// Write adds a fragment to the buffer. Called from the streaming goroutine.
func (sb *StreamingBuffer) Write(fragment string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.WriteString(fragment)
	sb.fragmentCount++
}

// Flush returns accumulated content if either threshold has been reached.
// Called from the main Bubble Tea loop.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.shouldFlushLocked() {
		return "", false
	}
	return sb.drainLocked()
}

// ForceFlush immediately flushes all buffered content regardless of
// thresholds. Used when a stream completes so no tail fragment is lost.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.drainLocked()
}

// Reset clears the buffer without flushing. Used when a stream is aborted
// or a new message begins.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.Reset()
	sb.fragmentCount = 0
	sb.lastFlush = time.Now()
}

// Pending returns the number of fragments waiting to be flushed.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.fragmentCount
}

func (sb *StreamingBuffer) shouldFlushLocked() bool {
	if sb.buffer.Len() == 0 {
		return false
	}
	if sb.fragmentCount >= sb.batchSize {
		return true
	}
	return time.Since(sb.lastFlush) >= sb.minFlushMs
}

func (sb *StreamingBuffer) drainLocked() (string, bool) {
	if sb.buffer.Len() == 0 {
		return "", false
	}
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.fragmentCount = 0
	sb.lastFlush = time.Now()
	return content, true
}
