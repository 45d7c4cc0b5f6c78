// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Meridian backend.
package api

import (
	"context"
	"errors"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeNotFound
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnauthorized = &ClientError{Type: ErrTypeUnauthorized, Message: "authentication failed"}
	ErrNotFound     = &ClientError{Type: ErrTypeNotFound, Message: "resource not found"}
	ErrConnection   = &ClientError{Type: ErrTypeConnection, Message: "backend unreachable"}
)

// IsNotFound checks if an error is a not-found error. Callers prune stale
// sessions on this rather than surfacing it.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if an error indicates a rejected bearer token.
func IsUnauthorized(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnauthorized
	}
	return errors.Is(err, ErrUnauthorized)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsAbort checks if an error is a deliberate cancellation. Aborts are
// silent; they never produce a user-facing error message.
func IsAbort(err error) bool {
	return errors.Is(err, context.Canceled)
}
