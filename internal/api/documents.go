// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// =============================================================================
// DOCUMENT DIRECTORY
// =============================================================================

type uploadURLRequest struct {
	ProjectID   string `json:"projectId"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// ListDocuments returns the documents stored in a project's bucket.
func (c *Client) ListDocuments(ctx context.Context, projectID string) ([]Document, error) {
	if projectID == "" {
		return nil, ErrNoProject
	}
	var docs []Document
	path := "/documents?projectId=" + url.QueryEscape(projectID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetUploadURL requests a signed URL for a direct-to-bucket upload.
func (c *Client) GetUploadURL(ctx context.Context, projectID, fileName, contentType string) (*UploadTarget, error) {
	if projectID == "" {
		return nil, ErrNoProject
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, ErrEmptyInput
	}
	req := uploadURLRequest{ProjectID: projectID, FileName: fileName, ContentType: contentType}
	var target UploadTarget
	if err := c.doJSON(ctx, http.MethodPost, "/documents/upload-url", req, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// UploadTo PUTs file bytes directly to a signed URL. The upload bypasses the
// backend, so the streaming client (no timeout) carries it; large files are
// bounded by ctx, not a fixed deadline.
func (c *Client) UploadTo(ctx context.Context, target *UploadTarget, contentType string, size int64, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.URL, body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.ContentLength = size

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, "upload rejected")
	}
	return nil
}

// UploadDocument runs the two-step upload: request a signed URL, then PUT
// the bytes. Returns the stored object name.
func (c *Client) UploadDocument(ctx context.Context, projectID, fileName, contentType string, size int64, body io.Reader) (string, error) {
	target, err := c.GetUploadURL(ctx, projectID, fileName, contentType)
	if err != nil {
		return "", err
	}
	if err := c.UploadTo(ctx, target, contentType, size, body); err != nil {
		return "", err
	}
	return target.ObjectName, nil
}
