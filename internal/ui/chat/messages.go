// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartedMsg reports that the stream request was accepted and the
// event channels are live. Session is non-nil when a new session was
// created for this send.
type StreamStartedMsg struct {
	Session *api.ChatSession
	Events  <-chan api.StreamEvent
	Errs    <-chan error
	Cancel  context.CancelFunc
}

// StreamEventMsg delivers one decoded stream event.
type StreamEventMsg struct {
	Event api.StreamEvent
}

// StreamDoneMsg signals the stream ended. Err is nil on clean EOF.
type StreamDoneMsg struct {
	Err error
}

// StreamTickMsg fires at the render frame rate while streaming so buffered
// text deltas apply in batches instead of per token.
type StreamTickMsg struct {
	Time time.Time
}

// ReconcileMsg delivers the authoritative message history fetched after a
// stream ends.
type ReconcileMsg struct {
	SessionID string
	Messages  []api.ChatMessage
	Err       error
}

// =============================================================================
// DIRECTORY MESSAGES
// =============================================================================

// SessionsLoadedMsg delivers the session list for the picker.
type SessionsLoadedMsg struct {
	Sessions []api.ChatSession
	Err      error
}

// SessionMessagesMsg delivers a selected session's history.
type SessionMessagesMsg struct {
	Session  api.ChatSession
	Messages []api.ChatMessage
	Err      error
}

// SessionRenamedMsg confirms a rename.
type SessionRenamedMsg struct {
	ID    string
	Title string
	Err   error
}

// SessionDeletedMsg confirms a delete.
type SessionDeletedMsg struct {
	ID  string
	Err error
}

// ProjectsLoadedMsg delivers the project list for the picker.
type ProjectsLoadedMsg struct {
	Projects []api.Project
	Err      error
}

// PromptsLoadedMsg delivers the persona list for the picker.
type PromptsLoadedMsg struct {
	Prompts []api.Prompt
	Err     error
}

// ExportedMsg confirms a transcript export.
type ExportedMsg struct {
	Path string
	Err  error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// ErrMsg surfaces a non-stream failure in the toast.
type ErrMsg struct {
	Err error
}

// InfoMsg shows a transient informational line.
type InfoMsg struct {
	Text string
}
