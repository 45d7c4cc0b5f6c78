// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestStreamingBufferBatchFlush(t *testing.T) {
	sb := NewStreamingBuffer()

	// Below both thresholds: no flush yet.
	sb.Write("a")
	if _, ok := sb.Flush(); ok {
		t.Error("single fragment should not flush immediately")
	}

	// Reaching batch size triggers a flush.
	for i := 0; i < 20; i++ {
		sb.Write("x")
	}
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("batch threshold should trigger flush")
	}
	if len(content) != 21 {
		t.Errorf("expected 21 bytes, got %d", len(content))
	}
	if sb.Pending() != 0 {
		t.Error("flush should drain the buffer")
	}
}

func TestStreamingBufferTimeFlush(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write("hello")

	time.Sleep(40 * time.Millisecond)
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("time threshold should trigger flush")
	}
	if content != "hello" {
		t.Errorf("unexpected content %q", content)
	}
}

func TestStreamingBufferForceFlush(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write("tail")

	content, ok := sb.ForceFlush()
	if !ok || content != "tail" {
		t.Errorf("force flush should drain regardless of thresholds, got %q", content)
	}

	if _, ok := sb.ForceFlush(); ok {
		t.Error("empty buffer must not report content")
	}
}

func TestStreamingBufferReset(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write("discard me")
	sb.Reset()

	if _, ok := sb.ForceFlush(); ok {
		t.Error("reset should drop buffered content")
	}
}

func TestStreamStateLive(t *testing.T) {
	live := []StreamState{StreamSending, StreamStreaming}
	for _, s := range live {
		if !s.Live() {
			t.Errorf("%s should be live", s)
		}
	}
	idle := []StreamState{StreamIdle, StreamCompleted, StreamAborted, StreamErrored}
	for _, s := range idle {
		if s.Live() {
			t.Errorf("%s should not be live", s)
		}
	}
}
