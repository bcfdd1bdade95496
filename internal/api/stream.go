// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// =============================================================================
// FRAME DECODER
// =============================================================================

// dataPrefix marks the one frame type the backend emits.
const dataPrefix = "data:"

// frameReader yields complete newline-terminated lines from a stream body,
// buffering partial lines across reads. bufio.Reader does the chunk
// reassembly: a line split across arbitrary network chunk boundaries,
// including a split inside the "data:" prefix itself, comes back whole.
type frameReader struct {
	reader *bufio.Reader
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{reader: bufio.NewReader(r)}
}

// ReadLine returns the next complete line without its terminator. At EOF a
// trailing unterminated remainder is an incomplete frame and is discarded;
// the caller sees io.EOF.
func (f *frameReader) ReadLine() (string, error) {
	line, err := f.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF {
			// Anything left in line lacks its terminator; drop it.
			return "", io.EOF
		}
		return "", err
	}
	return string(bytes.TrimRight(line, "\r\n")), nil
}

// =============================================================================
// EVENT DISPATCHER
// =============================================================================

// ParseFrame translates one decoded line into zero or more typed events.
//
// Lines without the "data:" prefix are ignored, as is an empty payload after
// trimming (heartbeat). Malformed JSON is dropped: ok is false but no error
// escapes, so the stream continues. A frame carrying several fields yields
// one event per populated field, ordered status, text, citations.
func ParseFrame(line string) (events []StreamEvent, ok bool) {
	if !strings.HasPrefix(line, dataPrefix) {
		return nil, true
	}
	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == "" {
		return nil, true
	}

	var frame streamFrame
	if err := json.Unmarshal([]byte(payload), &frame); err != nil {
		return nil, false
	}

	if frame.Status != nil {
		events = append(events, StreamEvent{Kind: EventStatus, Status: *frame.Status})
	}
	if frame.Text != nil {
		events = append(events, StreamEvent{Kind: EventText, Text: *frame.Text})
	}
	if frame.Citations != nil {
		events = append(events, StreamEvent{Kind: EventCitations, Citations: frame.Citations})
	}
	return events, true
}

// =============================================================================
// STREAMING REQUEST
// =============================================================================

// streamRequest is the body of a stream open call.
type streamRequest struct {
	Content string `json:"content"`
}

// StreamMessage posts content to a session's stream endpoint and returns the
// decoded events plus a one-shot error channel.
//
// The event channel is closed when the stream ends; the error channel then
// carries at most one error (nil-free: it is simply empty on success).
// Cancelling ctx aborts the stream; the pending read fails and both channels
// wind down. Events are delivered strictly in network arrival order.
func (c *Client) StreamMessage(ctx context.Context, sessionID, content string) (<-chan StreamEvent, <-chan error) {
	eventChan := make(chan StreamEvent, 64)
	errChan := make(chan error, 1)

	if !c.IsConfigured() {
		close(eventChan)
		errChan <- ErrNotConfigured
		close(errChan)
		return eventChan, errChan
	}
	if strings.TrimSpace(content) == "" {
		close(eventChan)
		errChan <- ErrEmptyInput
		close(errChan)
		return eventChan, errChan
	}

	go func() {
		defer close(eventChan)
		defer close(errChan)

		if err := c.streamOnce(ctx, sessionID, content, eventChan); err != nil {
			errChan <- err
		}
	}()

	return eventChan, errChan
}

func (c *Client) streamOnce(ctx context.Context, sessionID, content string, out chan<- StreamEvent) error {
	payload, err := json.Marshal(streamRequest{Content: content})
	if err != nil {
		return err
	}

	url := c.baseURL + "/chat/sessions/" + sessionID + "/stream"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp)
	}

	return c.processStream(ctx, resp.Body, out)
}

// processStream runs the decode/dispatch loop until the body closes or ctx
// is cancelled. Partial assistant text is tracked so a mid-stream failure
// can report what had already arrived.
func (c *Client) processStream(ctx context.Context, body io.Reader, out chan<- StreamEvent) error {
	reader := newFrameReader(body)
	var partial strings.Builder

	for {
		select {
		case <-ctx.Done():
			return &StreamError{Partial: partial.String(), Err: ctx.Err()}
		default:
		}

		line, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			// Cancellation surfaces as a read error on the closed body.
			if ctx.Err() != nil {
				return &StreamError{Partial: partial.String(), Err: ctx.Err()}
			}
			return &StreamError{Partial: partial.String(), Err: err}
		}

		events, ok := ParseFrame(line)
		if !ok {
			c.diagf("dropping malformed stream frame: %q", line)
			continue
		}
		for _, ev := range events {
			if ev.Kind == EventText {
				partial.WriteString(ev.Text)
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return &StreamError{Partial: partial.String(), Err: ctx.Err()}
			}
		}
	}
}

// =============================================================================
// REPLY ACCUMULATOR
// =============================================================================

// ReplyAccumulator reduces a stream of events into the final reply fields.
// It is a convenience for non-interactive consumers (the CLI ask command);
// the TUI runs its own reducer for live rendering.
type ReplyAccumulator struct {
	text      strings.Builder
	citations []Citation
	status    string
}

// Add folds one event into the accumulator. Citation batches replace any
// earlier batch.
func (a *ReplyAccumulator) Add(ev StreamEvent) {
	switch ev.Kind {
	case EventStatus:
		a.status = ev.Status
	case EventText:
		a.text.WriteString(ev.Text)
		a.status = ""
	case EventCitations:
		a.citations = append([]Citation(nil), ev.Citations...)
	}
}

// Text returns the concatenated reply text so far.
func (a *ReplyAccumulator) Text() string {
	return a.text.String()
}

// Citations returns the last citation batch, or nil.
func (a *ReplyAccumulator) Citations() []Citation {
	return a.citations
}

// Status returns the most recent status not yet superseded by text.
func (a *ReplyAccumulator) Status() string {
	return a.status
}
