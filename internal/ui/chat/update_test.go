// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/config"
	"github.com/jeranaias/doctalk-tui/internal/workspace"
)

// newTestModel builds a chat model with an in-memory workspace and no
// history cache. The client points nowhere; tests never execute the
// network commands it returns.
func newTestModel(t *testing.T, withProject bool) *Model {
	t.Helper()

	ws, err := workspace.Open(workspace.NewMemKV())
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	if withProject {
		if err := ws.SetActiveProject("proj-1", "Test KB"); err != nil {
			t.Fatalf("set project: %v", err)
		}
	}

	cfg := config.Default()
	cfg.UI.Theme = "mono"
	cfg.UI.RenderMarkdown = false

	m := New(api.New("http://localhost:1"), ws, nil, cfg)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func pressEnter(m *Model) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestSubmit_EmptyInputDoesNothing(t *testing.T) {
	m := newTestModel(t, true)

	m.input.SetValue("   ")
	cmd := pressEnter(m)

	if cmd != nil {
		t.Error("blank input should produce no command")
	}
	if m.Conversation().MessageCount() != 0 {
		t.Error("blank input should not append a message")
	}
	if m.Conversation().Sending {
		t.Error("blank input should not raise Sending")
	}
}

func TestSubmit_NoProjectDoesNothing(t *testing.T) {
	m := newTestModel(t, false)

	m.input.SetValue("hello")
	cmd := pressEnter(m)

	if cmd != nil {
		t.Error("missing project should produce no command")
	}
	if m.Conversation().MessageCount() != 0 {
		t.Error("missing project should not append a message")
	}
	if !m.toast.Visible() {
		t.Error("missing project should surface in the toast")
	}
}

func TestSubmit_AppendsOptimisticMessageAndStartsCycle(t *testing.T) {
	m := newTestModel(t, true)

	m.input.SetValue("What is covered?")
	cmd := pressEnter(m)

	if cmd == nil {
		t.Fatal("valid submit should produce commands")
	}
	conv := m.Conversation()
	if conv.MessageCount() != 1 {
		t.Fatalf("message count = %d, want 1", conv.MessageCount())
	}
	msg := conv.LastMessage()
	if msg.Role != api.RoleUser || !msg.Pending || !msg.IsTemporary() {
		t.Errorf("optimistic message = %+v", msg)
	}
	if !conv.Sending {
		t.Error("Sending should be raised")
	}
	if m.state != StateStreaming {
		t.Error("view should enter streaming state")
	}
	if m.input.Value() != "" {
		t.Error("input should clear on submit")
	}
}

func TestSubmit_RejectedWhileBusy(t *testing.T) {
	m := newTestModel(t, true)

	m.input.SetValue("first")
	pressEnter(m)

	m.input.SetValue("second")
	pressEnter(m)

	if m.Conversation().MessageCount() != 1 {
		t.Error("second submit during an active cycle should be dropped")
	}
}

func TestStreamCycle_TextAndCitationsThenDone(t *testing.T) {
	m := newTestModel(t, true)
	m.input.SetValue("question")
	pressEnter(m)

	// Session created on first send.
	session := &api.ChatSession{ID: "sess-1", ProjectID: "proj-1", Title: "New Chat", CreatedAt: time.Now()}
	m.Update(StreamStartedMsg{Session: session, Cancel: func() {}})

	conv := m.Conversation()
	if conv.SessionID != "sess-1" {
		t.Fatal("session should bind on stream start")
	}

	m.Update(StreamEventMsg{Event: api.StreamEvent{Kind: api.EventStatus, Status: "Searching documents"}})
	if conv.StreamStatus != "Searching documents" {
		t.Error("status should apply before any text")
	}

	m.Update(StreamEventMsg{Event: api.StreamEvent{Kind: api.EventText, Text: "Hel"}})
	m.Update(StreamEventMsg{Event: api.StreamEvent{Kind: api.EventText, Text: "lo"}})
	m.Update(StreamEventMsg{Event: api.StreamEvent{Kind: api.EventCitations,
		Citations: []api.Citation{{URI: "gs://b/doc.pdf", Title: "Doc"}}}})

	_, cmd := m.Update(StreamDoneMsg{})

	if conv.Sending || conv.StreamStatus != "" {
		t.Error("cleanup should clear Sending and StreamStatus")
	}
	last := conv.LastMessage()
	if last.Role != api.RoleModel {
		t.Fatalf("last message role = %v", last.Role)
	}
	if last.DisplayContent() != "Hello" {
		t.Errorf("reply = %q, want Hello (buffered deltas must apply on done)", last.DisplayContent())
	}
	if len(last.Citations) != 1 || last.Citations[0].URI != "gs://b/doc.pdf" {
		t.Errorf("citations = %+v", last.Citations)
	}
	if m.state != StateReady {
		t.Error("view should return to ready")
	}
	if cmd == nil {
		t.Error("clean stream end should trigger reconciliation")
	}
}

func TestStreamCycle_ErrorLeavesOptimisticMessage(t *testing.T) {
	m := newTestModel(t, true)
	m.input.SetValue("question")
	pressEnter(m)

	_, cmd := m.Update(StreamDoneMsg{Err: errors.New("connection refused")})

	conv := m.Conversation()
	if conv.MessageCount() != 1 {
		t.Fatalf("message count = %d, want only the optimistic message", conv.MessageCount())
	}
	if conv.LastMessage().Role != api.RoleUser {
		t.Error("the optimistic USER message should remain")
	}
	if conv.Sending {
		t.Error("Sending must clear on failure")
	}
	if cmd != nil {
		t.Error("failed stream should not reconcile")
	}
	if !m.toast.Visible() {
		t.Error("failure should show in the toast")
	}
}

func TestReconcile_ReplacesWholesale(t *testing.T) {
	m := newTestModel(t, true)
	m.input.SetValue("question")
	pressEnter(m)
	m.Update(StreamStartedMsg{
		Session: &api.ChatSession{ID: "sess-1", ProjectID: "proj-1"},
		Cancel:  func() {},
	})
	m.Update(StreamEventMsg{Event: api.StreamEvent{Kind: api.EventText, Text: "local"}})
	m.Update(StreamDoneMsg{})

	history := []api.ChatMessage{
		{ID: "m1", SessionID: "sess-1", Role: api.RoleUser, Content: "question", CreatedAt: time.Now()},
		{ID: "m2", SessionID: "sess-1", Role: api.RoleModel, Content: "authoritative", CreatedAt: time.Now()},
	}
	m.Update(ReconcileMsg{SessionID: "sess-1", Messages: history})

	conv := m.Conversation()
	if conv.MessageCount() != 2 {
		t.Fatalf("message count = %d, want 2", conv.MessageCount())
	}
	for _, msg := range conv.Messages {
		if msg.IsTemporary() || msg.Pending {
			t.Error("no optimistic entries may survive reconciliation")
		}
	}
	if conv.LastMessage().DisplayContent() != "authoritative" {
		t.Error("backend record must replace local assembly")
	}
}

func TestReconcile_IgnoresStaleSession(t *testing.T) {
	m := newTestModel(t, true)
	m.Update(ReconcileMsg{SessionID: "other", Messages: []api.ChatMessage{
		{ID: "x", Role: api.RoleModel, Content: "stale"},
	}})
	if m.Conversation().MessageCount() != 0 {
		t.Error("reconcile for another session must be dropped")
	}
}

func TestDeleteActiveSession_ClearsSelection(t *testing.T) {
	m := newTestModel(t, true)
	m.Update(StreamStartedMsg{
		Session: &api.ChatSession{ID: "sess-1", ProjectID: "proj-1", Title: "t"},
		Cancel:  func() {},
	})

	m.Update(SessionDeletedMsg{ID: "sess-1"})

	conv := m.Conversation()
	if conv.SessionID != "" {
		t.Error("deleting the open session should clear the selection")
	}
	if conv.MessageCount() != 0 {
		t.Error("messages should clear with the session")
	}
}

func TestPersonaLockedAfterSessionExists(t *testing.T) {
	m := newTestModel(t, true)
	m.Update(StreamStartedMsg{
		Session: &api.ChatSession{ID: "sess-1", ProjectID: "proj-1"},
		Cancel:  func() {},
	})

	m.input.SetValue("/personas")
	cmd := pressEnter(m)
	if cmd == nil {
		t.Fatal("locked persona should still produce a toast command")
	}
	if m.state == StatePicker {
		t.Error("persona picker must not open once the session exists")
	}
}

func TestParseSlashCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantArgs string
		wantOK   bool
	}{
		{"/new", "new", "", true},
		{"/rename My new title", "rename", "My new title", true},
		{"  /SESSIONS  ", "sessions", "", true},
		{"plain text", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		cmd, ok := parseSlashCommand(tt.in)
		if ok != tt.wantOK || cmd.name != tt.wantName || cmd.args != tt.wantArgs {
			t.Errorf("parseSlashCommand(%q) = %+v, %v", tt.in, cmd, ok)
		}
	}
}
