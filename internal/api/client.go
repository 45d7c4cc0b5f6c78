// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend API base URL (default: http://localhost:8000/api/v1)
	BaseURL string

	// Token is the bearer token attached to every request.
	Token string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://localhost:8000/api/v1",
		Timeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Meridian backend API.
// It provides session CRUD, message streaming, and the dashboard,
// approvals, ledger, and signals feeds.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	client := api.NewClient(&api.ClientConfig{Token: token})
//	sessions, err := client.ListSessions(ctx)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	loading    *LoadingMonitor
}

// NewClient creates a new backend client.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000/api/v1"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		loading: NewLoadingMonitor(),
	}
}

// Loading returns the request activity monitor.
func (c *Client) Loading() *LoadingMonitor {
	return c.loading
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// newRequest builds a request with the bearer token and JSON headers set.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// doJSON executes a request, maps status codes onto the error taxonomy, and
// decodes the response body into out (which may be nil for empty responses).
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	c.loading.Begin()
	defer c.loading.End()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer drainAndClose(resp.Body)

	if err := statusToError(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// statusToError maps a non-2xx response to a typed error.
func statusToError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	default:
		// Try to read a structured error message
		var apiErr struct {
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			if apiErr.Detail != "" {
				return &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Detail}
			}
			if apiErr.Error != "" {
				return &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Error}
			}
		}
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}
}

// Helper to drain response body so connections can be reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
