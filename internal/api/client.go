// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the retry count for idempotent requests.
	DefaultMaxRetries = 3

	// retryBaseDelay is the first backoff step; doubles per attempt.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize caps REST response bodies (streams are unbounded).
	MaxResponseSize = 10 * 1024 * 1024
)

// sharedTransport pools connections across all clients in the process.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the doctalk backend. It is safe for concurrent use.
type Client struct {
	baseURL string

	// httpClient serves REST calls with a hard timeout. streamClient has no
	// timeout: SSE responses stay open for the duration of a reply.
	httpClient   *http.Client
	streamClient *http.Client

	limiter    *rate.Limiter
	maxRetries int

	// diag receives non-fatal diagnostics (dropped frames, retried calls).
	// nil means discard.
	diag io.Writer
}

// New creates a Client for the given backend base URL, e.g.
// "http://localhost:8080/api".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: sharedTransport,
		},
		streamClient: &http.Client{
			Transport: sharedTransport,
		},
		maxRetries: DefaultMaxRetries,
	}
}

// WithTimeout sets the REST request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.httpClient.Timeout = d
	return c
}

// WithMaxRetries sets the retry count for idempotent requests.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// WithRateLimit caps outgoing requests per second. rps <= 0 disables the
// limiter.
func (c *Client) WithRateLimit(rps float64) *Client {
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	} else {
		c.limiter = nil
	}
	return c
}

// WithDiagnostics directs non-fatal diagnostics to w.
func (c *Client) WithDiagnostics(w io.Writer) *Client {
	c.diag = w
	return c
}

// IsConfigured reports whether the client has a usable base URL.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) diagf(format string, args ...any) {
	if c.diag != nil {
		fmt.Fprintf(c.diag, format+"\n", args...)
	}
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// doJSON performs one REST call: marshal body (if any), send, decode the
// JSON response into out (if non-nil). GET and DELETE are retried with
// backoff on retryable failures; mutating calls are not.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	idempotent := method == http.MethodGet || method == http.MethodDelete

	var lastErr error
	attempts := 1
	if idempotent {
		attempts = c.maxRetries + 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt - 1)
			c.diagf("retrying %s %s in %s (attempt %d)", method, path, delay, attempt+1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doOnce(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))
		return nil
	}

	data, err := readResponse(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// handleErrorResponse maps a non-2xx response to a typed error.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	data, _ := readResponse(resp.Body)

	// Backend errors come as {"error": "..."} or {"message": "..."}.
	var detail struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &detail)
	message := detail.Message
	if message == "" {
		message = detail.Error
	}
	if message == "" {
		message = strings.TrimSpace(string(data))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		if retryAfter > 0 {
			return &RateLimitError{RetryAfter: retryAfter}
		}
	}

	return newAPIError(resp.StatusCode, message)
}

// readResponse reads a body with the size cap enforced.
func readResponse(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}

// parseRetryAfter parses a Retry-After header in seconds form.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// isRetryable reports whether a request is worth retrying.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Transport-level failures are wrapped with "request failed".
	return strings.Contains(err.Error(), "request failed")
}

// calculateBackoff returns the delay before the given retry attempt:
// 500ms, 1s, 2s, ... capped at retryMaxDelay.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
