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
// PROMPT DIRECTORY
// =============================================================================

type promptRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ListPrompts returns all personas.
func (c *Client) ListPrompts(ctx context.Context) ([]Prompt, error) {
	var prompts []Prompt
	if err := c.doJSON(ctx, http.MethodGet, "/prompts", nil, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

// CreatePrompt creates a persona. Name and content must be non-blank.
func (c *Client) CreatePrompt(ctx context.Context, name, content string) (*Prompt, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}
	var prompt Prompt
	if err := c.doJSON(ctx, http.MethodPost, "/prompts", promptRequest{Name: name, Content: content}, &prompt); err != nil {
		return nil, err
	}
	return &prompt, nil
}

// UpdatePrompt replaces a persona's name and content.
func (c *Client) UpdatePrompt(ctx context.Context, id, name, content string) (*Prompt, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}
	var prompt Prompt
	path := "/prompts/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodPut, path, promptRequest{Name: name, Content: content}, &prompt); err != nil {
		return nil, err
	}
	return &prompt, nil
}

// DeletePrompt removes a persona. Existing sessions keep their binding.
func (c *Client) DeletePrompt(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/prompts/"+url.PathEscape(id), nil, nil)
}
