// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the state store for the active session. All mutation goes
// through the methods below; the UI only reads.
type Conversation struct {
	// Session binding. SessionID is empty in the "new chat" state until the
	// first send creates a session. PromptID is fixed once SessionID is set.
	SessionID string
	ProjectID string
	PromptID  string
	Title     string

	Messages []*Message

	// Sending is true from submission until the first text fragment or the
	// cycle's guaranteed cleanup, whichever comes first.
	Sending bool

	// StreamStatus is the transient phase label ("retrieving documents").
	// Cleared by the first text fragment and by cleanup.
	StreamStatus string

	UpdatedAt time.Time

	// dirty marks that a mutation happened since the last ConsumeDirty, so
	// the view scrolls to the latest message.
	dirty bool
}

// NewConversation creates an empty conversation for a project in the
// "new chat" state.
func NewConversation(projectID string) *Conversation {
	return &Conversation{
		ProjectID: projectID,
		Messages:  make([]*Message, 0),
		UpdatedAt: time.Now(),
	}
}

func (c *Conversation) touch() {
	c.UpdatedAt = time.Now()
	c.dirty = true
}

// ConsumeDirty reports and clears the scroll-to-latest flag.
func (c *Conversation) ConsumeDirty() bool {
	d := c.dirty
	c.dirty = false
	return d
}

// =============================================================================
// RESET AND BINDING
// =============================================================================

// Reset clears everything and rebinds to a project: the mutation that runs
// on project or session switch.
func (c *Conversation) Reset(projectID string) {
	c.SessionID = ""
	c.ProjectID = projectID
	c.PromptID = ""
	c.Title = ""
	c.Messages = make([]*Message, 0)
	c.Sending = false
	c.StreamStatus = ""
	c.touch()
}

// BindSession adopts a created or opened session. The persona binding
// travels with it and is immutable from here on.
func (c *Conversation) BindSession(s *api.ChatSession) {
	c.SessionID = s.ID
	c.ProjectID = s.ProjectID
	c.PromptID = s.PromptID
	c.Title = s.Title
	c.touch()
}

// HasSession reports whether a backend session exists yet.
func (c *Conversation) HasSession() bool {
	return c.SessionID != ""
}

// CanSelectPersona reports whether the persona may still be changed: only
// before the first send creates the session.
func (c *Conversation) CanSelectPersona() bool {
	return !c.HasSession()
}

// =============================================================================
// SEND CYCLE MUTATIONS
// =============================================================================

// BeginSend inserts the optimistic USER message and raises Sending. The
// returned message stays in place even if the send later fails; only a full
// history replace removes it.
func (c *Conversation) BeginSend(content string) *Message {
	msg := NewOptimisticUserMessage(content)
	msg.SessionID = c.SessionID
	c.Messages = append(c.Messages, msg)
	c.Sending = true
	c.StreamStatus = ""
	c.touch()
	return msg
}

// Apply is the reducer: it folds one stream event into the conversation.
// Events must be applied in arrival order.
func (c *Conversation) Apply(ev api.StreamEvent) {
	switch ev.Kind {
	case api.EventStatus:
		// Status only shows while no reply text has arrived.
		if c.streamingMessage() == nil {
			c.StreamStatus = ev.Status
			c.touch()
		}

	case api.EventText:
		msg := c.streamingMessage()
		if msg == nil {
			// First fragment: sending and status give way to the reply.
			c.Sending = false
			c.StreamStatus = ""
			msg = NewStreamingModelMessage(c.SessionID)
			c.Messages = append(c.Messages, msg)
		}
		msg.AppendText(ev.Text)
		c.touch()

	case api.EventCitations:
		msg := c.streamingMessage()
		if msg == nil {
			// Citations without prior text still need a message to hang on.
			msg = NewStreamingModelMessage(c.SessionID)
			c.Messages = append(c.Messages, msg)
		}
		msg.ReplaceCitations(ev.Citations)
		c.touch()
	}
}

// EndSend is the guaranteed cleanup: it always clears the busy flags and
// finalizes any in-progress reply, on success and failure alike.
func (c *Conversation) EndSend() {
	if msg := c.streamingMessage(); msg != nil {
		msg.FinalizeStream()
	}
	c.Sending = false
	c.StreamStatus = ""
	c.touch()
}

// streamingMessage returns the in-progress MODEL message, or nil.
func (c *Conversation) streamingMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	last := c.Messages[len(c.Messages)-1]
	if last.Role == api.RoleModel && last.IsStreaming {
		return last
	}
	return nil
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// ReplaceFromHistory swaps the entire local list for the backend's
// authoritative record. This is the single reconciliation point after a
// stream ends; locally assembled content and optimistic entries are
// discarded wholesale, never merged by identifier.
func (c *Conversation) ReplaceFromHistory(history []api.ChatMessage) {
	messages := make([]*Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, FromAPI(m))
	}
	c.Messages = messages
	c.touch()
}

// =============================================================================
// READ ACCESS
// =============================================================================

// LastMessage returns the most recent message, or nil.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty reports whether the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Busy reports whether a send cycle is in flight: submissions are disabled
// until the previous cycle's cleanup has run.
func (c *Conversation) Busy() bool {
	return c.Sending || c.streamingMessage() != nil
}
