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
// PROJECT DIRECTORY
// =============================================================================

type createProjectRequest struct {
	Name         string      `json:"name"`
	StorageMode  StorageMode `json:"storageMode"`
	BucketName   string      `json:"bucketName,omitempty"`
	BucketPrefix string      `json:"bucketPrefix,omitempty"`
}

// ListProjects returns all projects visible to the client.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.doJSON(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches one project by id.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	if err := c.doJSON(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a knowledge base. BYOB projects name their own
// bucket; managed projects leave bucket fields empty.
func (c *Client) CreateProject(ctx context.Context, name string, mode StorageMode, bucketName, bucketPrefix string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyInput
	}
	if mode == StorageBYOB && bucketName == "" {
		return nil, ErrEmptyInput
	}
	req := createProjectRequest{
		Name:         name,
		StorageMode:  mode,
		BucketName:   bucketName,
		BucketPrefix: bucketPrefix,
	}
	var project Project
	if err := c.doJSON(ctx, http.MethodPost, "/projects", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project, its sessions and its index.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil)
}

// ProvisionProject asks the backend to create the project's storage and
// index. Status moves CREATED -> PROVISIONING -> READY or FAILED.
func (c *Client) ProvisionProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	path := "/projects/" + url.PathEscape(id) + "/provision"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// SyncProject triggers a re-import of the project's bucket into the index.
func (c *Client) SyncProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	path := "/projects/" + url.PathEscape(id) + "/sync"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetIndexingStatus reports the progress of the current import run.
func (c *Client) GetIndexingStatus(ctx context.Context, id string) (*IndexingStatus, error) {
	var status IndexingStatus
	path := "/projects/" + url.PathEscape(id) + "/indexing-status"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
