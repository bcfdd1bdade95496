// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestMirrorSession_Upsert(t *testing.T) {
	h := openTestHistory(t)

	s := api.ChatSession{
		ID:        "sess-1",
		ProjectID: "proj-1",
		PromptID:  "persona-1",
		Title:     "New Chat",
		CreatedAt: time.Now(),
	}
	require.NoError(t, h.MirrorSession(s))

	s.Title = "Renamed"
	require.NoError(t, h.MirrorSession(s))

	sessions, err := h.ListSessions("proj-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Renamed", sessions[0].Title)
	assert.Equal(t, "persona-1", sessions[0].PromptID)
}

func TestListSessions_NewestFirst(t *testing.T) {
	h := openTestHistory(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, h.MirrorSession(api.ChatSession{
			ID:        id,
			ProjectID: "proj-1",
			Title:     id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	sessions, err := h.ListSessions("proj-1")
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[2].ID)
}

func TestMirrorMessages_ReplacesWholesale(t *testing.T) {
	h := openTestHistory(t)
	require.NoError(t, h.MirrorSession(api.ChatSession{ID: "s1", ProjectID: "p1", Title: "t", CreatedAt: time.Now()}))

	first := []api.ChatMessage{
		{ID: "m1", SessionID: "s1", Role: api.RoleUser, Content: "hi", CreatedAt: time.Now()},
		{ID: "m2", SessionID: "s1", Role: api.RoleModel, Content: "stale reply", CreatedAt: time.Now()},
	}
	require.NoError(t, h.MirrorMessages("s1", first))

	second := []api.ChatMessage{
		{ID: "m1", SessionID: "s1", Role: api.RoleUser, Content: "hi", CreatedAt: time.Now()},
		{ID: "m3", SessionID: "s1", Role: api.RoleModel, Content: "fresh reply",
			Citations: []api.Citation{{URI: "gs://b/doc.pdf", Title: "Doc"}}, CreatedAt: time.Now()},
	}
	require.NoError(t, h.MirrorMessages("s1", second))

	got, err := h.GetMessages("s1")
	require.NoError(t, err)
	require.Len(t, got, 2, "old mirror must be fully replaced")
	assert.Equal(t, "m3", got[1].ID)
	assert.Equal(t, "fresh reply", got[1].Content)
	require.Len(t, got[1].Citations, 1)
	assert.Equal(t, "gs://b/doc.pdf", got[1].Citations[0].URI)
}

func TestGetMessages_PreservesOrder(t *testing.T) {
	h := openTestHistory(t)
	require.NoError(t, h.MirrorSession(api.ChatSession{ID: "s1", ProjectID: "p1", Title: "t", CreatedAt: time.Now()}))

	// Identical timestamps: order must come from position, not time.
	at := time.Now()
	history := []api.ChatMessage{
		{ID: "a", SessionID: "s1", Role: api.RoleUser, Content: "1", CreatedAt: at},
		{ID: "b", SessionID: "s1", Role: api.RoleModel, Content: "2", CreatedAt: at},
		{ID: "c", SessionID: "s1", Role: api.RoleUser, Content: "3", CreatedAt: at},
	}
	require.NoError(t, h.MirrorMessages("s1", history))

	got, err := h.GetMessages("s1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, id, got[i].ID)
	}
}

func TestGetMessages_NotCached(t *testing.T) {
	h := openTestHistory(t)
	_, err := h.GetMessages("never-seen")
	assert.True(t, errors.Is(err, ErrSessionNotCached))
}

func TestDeleteSession_RemovesMessages(t *testing.T) {
	h := openTestHistory(t)
	require.NoError(t, h.MirrorSession(api.ChatSession{ID: "s1", ProjectID: "p1", Title: "t", CreatedAt: time.Now()}))
	require.NoError(t, h.MirrorMessages("s1", []api.ChatMessage{
		{ID: "m1", SessionID: "s1", Role: api.RoleUser, Content: "x", CreatedAt: time.Now()},
	}))

	require.NoError(t, h.DeleteSession("s1"))

	sessions, err := h.ListSessions("p1")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = h.GetMessages("s1")
	assert.True(t, errors.Is(err, ErrSessionNotCached))
}

func TestHistory_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := OpenHistory(path)
	require.NoError(t, err)
	require.NoError(t, h.MirrorSession(api.ChatSession{ID: "s1", ProjectID: "p1", Title: "kept", CreatedAt: time.Now()}))
	require.NoError(t, h.Close())

	reopened, err := OpenHistory(path)
	require.NoError(t, err)
	defer reopened.Close()

	sessions, err := reopened.ListSessions("p1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "kept", sessions[0].Title)
}
