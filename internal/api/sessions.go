// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// =============================================================================
// SESSION DIRECTORY
// =============================================================================

type createSessionRequest struct {
	ProjectID string `json:"projectId"`
	PromptID  string `json:"promptId,omitempty"`
}

type renameSessionRequest struct {
	Title string `json:"title"`
}

// CreateSession creates a session bound to a project and an optional persona.
// The persona cannot be changed after this call.
func (c *Client) CreateSession(ctx context.Context, projectID, promptID string) (*ChatSession, error) {
	if projectID == "" {
		return nil, ErrNoProject
	}
	var session ChatSession
	req := createSessionRequest{ProjectID: projectID, PromptID: promptID}
	if err := c.doJSON(ctx, http.MethodPost, "/chat/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns the sessions of a project, newest first.
func (c *Client) ListSessions(ctx context.Context, projectID string) ([]ChatSession, error) {
	if projectID == "" {
		return nil, ErrNoProject
	}
	var sessions []ChatSession
	path := "/chat/sessions?projectId=" + url.QueryEscape(projectID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// RenameSession updates a session title. An empty or whitespace-only title
// is rejected locally; no request is made.
func (c *Client) RenameSession(ctx context.Context, sessionID, title string) (*ChatSession, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyInput
	}
	var session ChatSession
	path := "/chat/sessions/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, http.MethodPut, path, renameSessionRequest{Title: title}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes a session and its messages.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	path := "/chat/sessions/" + url.PathEscape(sessionID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// GetMessages fetches the full, authoritative message history of a session.
// The returned order supersedes any client-assembled interim order.
func (c *Client) GetMessages(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	var messages []ChatMessage
	path := "/chat/sessions/" + url.PathEscape(sessionID) + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
