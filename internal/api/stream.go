// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
)

// =============================================================================
// MESSAGE STREAMING
// =============================================================================

// StreamCallback is called for each text fragment received during streaming.
// Fragments carry no framing: a fragment may split a word, a JSON token, or
// a UTF-8 sequence mid-way. Callbacks run synchronously in arrival order.
type StreamCallback func(fragment string)

// StreamMessage sends one user message to a session and consumes the
// streamed response body, invoking the callback per fragment until stream
// end. Returns context.Canceled when the caller aborts; aborts are silent
// and carry no user-facing error.
func (c *Client) StreamMessage(ctx context.Context, sessionID, content string, callback StreamCallback) error {
	body := struct {
		Content string `json:"content"`
	}{Content: content}

	req, err := c.newRequest(ctx, http.MethodPost, "/chat/sessions/"+sessionID+"/message", body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/plain")

	// Streaming uses a client without timeout; lifetime is governed by ctx.
	streamClient := &http.Client{}

	c.loading.Begin()
	defer c.loading.End()

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: "stream request failed", Cause: err}
	}
	defer resp.Body.Close()

	if err := statusToError(resp); err != nil {
		return err
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}

// =============================================================================
// STREAM READER
// =============================================================================

// streamReadSize bounds a single fragment; the server may send less.
const streamReadSize = 4096

// StreamReader consumes a raw text response body fragment by fragment.
type StreamReader struct {
	reader *bufio.Reader
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
	}
}

// Process reads the stream and calls the callback for each fragment.
// Blocks until the stream ends or the context is cancelled. Cancellation
// between fragments returns ctx.Err(); a read error caused by cancellation
// is reported the same way so callers see context.Canceled either path.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	buf := make([]byte, streamReadSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			n, err := s.reader.Read(buf)
			if n > 0 {
				callback(string(buf[:n]))
			}
			if err != nil {
				if err == io.EOF {
					return nil
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return &ClientError{Type: ErrTypeConnection, Message: "stream interrupted", Cause: err}
			}
		}
	}
}
