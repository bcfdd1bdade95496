// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/util"
)

// tempIDPrefix marks optimistic, not-yet-confirmed identifiers.
const tempIDPrefix = "temp-"

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry in the active conversation. USER messages may be
// optimistic (pending backend confirmation); MODEL messages grow by
// concatenation while a stream is open and are finalized afterwards.
type Message struct {
	ID        string
	SessionID string
	Role      api.Role
	Content   string
	Citations []api.Citation
	CreatedAt time.Time

	// Pending is true for an optimistic USER message that the backend has
	// not confirmed yet. It stays true until reconciliation replaces it.
	Pending bool

	// Streaming state. streamContent is a builder so growth is linear even
	// for long replies.
	IsStreaming   bool
	streamContent strings.Builder
}

// NewOptimisticUserMessage creates the local USER message inserted before
// any network call. The identifier is derived from the submission time with
// a random suffix, so two rapid submissions cannot collide.
func NewOptimisticUserMessage(content string) *Message {
	now := time.Now()
	return &Message{
		ID:        tempIDPrefix + util.Int64ToString(now.UnixMilli()) + "-" + uuid.NewString()[:8],
		Role:      api.RoleUser,
		Content:   content,
		CreatedAt: now,
		Pending:   true,
	}
}

// NewStreamingModelMessage creates the empty MODEL message that the first
// text fragment of a stream seeds.
func NewStreamingModelMessage(sessionID string) *Message {
	return &Message{
		ID:          tempIDPrefix + util.Int64ToString(time.Now().UnixMilli()) + "-" + uuid.NewString()[:8],
		SessionID:   sessionID,
		Role:        api.RoleModel,
		CreatedAt:   time.Now(),
		IsStreaming: true,
	}
}

// FromAPI converts a backend message into a display message.
func FromAPI(m api.ChatMessage) *Message {
	return &Message{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Content:   m.Content,
		Citations: m.Citations,
		CreatedAt: m.CreatedAt,
	}
}

// IsTemporary reports whether the message still carries a client-generated
// identifier.
func (m *Message) IsTemporary() bool {
	return strings.HasPrefix(m.ID, tempIDPrefix)
}

// AppendText concatenates a fragment onto a streaming message. No
// deduplication, no reordering: fragments apply strictly in arrival order.
func (m *Message) AppendText(fragment string) {
	if m.IsStreaming {
		m.streamContent.WriteString(fragment)
	}
}

// ReplaceCitations swaps the citation list wholesale. A later batch always
// wins; batches are never merged.
func (m *Message) ReplaceCitations(citations []api.Citation) {
	m.Citations = append([]api.Citation(nil), citations...)
}

// FinalizeStream merges streamed content into Content and ends streaming.
func (m *Message) FinalizeStream() {
	if !m.IsStreaming {
		return
	}
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false
}

// DisplayContent returns the text to render right now.
func (m *Message) DisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// Preview returns a truncated, single-line preview of the content.
func (m *Message) Preview(maxRunes int) string {
	content := strings.ReplaceAll(m.DisplayContent(), "\n", " ")
	return util.TruncateRunes(content, maxRunes)
}

// IsEmpty reports whether the message has no content at all.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}
