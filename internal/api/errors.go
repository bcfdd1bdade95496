// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNotConfigured is returned when the client has no base URL.
	ErrNotConfigured = errors.New("backend URL not configured")

	// ErrEmptyInput is returned for blank chat input or titles; the guard
	// runs before any network call is made.
	ErrEmptyInput = errors.New("input is empty")

	// ErrNoProject is returned when an operation requires an active project.
	ErrNoProject = errors.New("no active project selected")

	// ErrNotFound maps 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrBadRequest maps 400 responses.
	ErrBadRequest = errors.New("bad request")

	// ErrRateLimited maps 429 responses.
	ErrRateLimited = errors.New("rate limited by backend")

	// ErrServerError maps 5xx responses.
	ErrServerError = errors.New("backend server error")

	// ErrResponseTooLarge is returned when a response exceeds MaxResponseSize.
	ErrResponseTooLarge = errors.New("response exceeds maximum size")
)

// =============================================================================
// TYPED ERRORS
// =============================================================================

// APIError carries the HTTP status and backend-provided detail for a failed
// request. It wraps the matching sentinel so errors.Is keeps working.
type APIError struct {
	Status  int
	Message string
	wrapped error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

func (e *APIError) Unwrap() error {
	return e.wrapped
}

// newAPIError builds an APIError wrapping the sentinel for the status class.
func newAPIError(status int, message string) *APIError {
	var wrapped error
	switch {
	case status == 400:
		wrapped = ErrBadRequest
	case status == 404:
		wrapped = ErrNotFound
	case status == 429:
		wrapped = ErrRateLimited
	case status >= 500:
		wrapped = ErrServerError
	}
	return &APIError{Status: status, Message: message, wrapped: wrapped}
}

// RateLimitError is returned on 429 responses that include a retry hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// StreamError wraps a mid-stream failure together with any partial assistant
// content assembled before the failure, so callers can decide whether to keep
// the partial text on screen.
type StreamError struct {
	Partial string
	Err     error
}

func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream failed after %d bytes of content: %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream failed: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
