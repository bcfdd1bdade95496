// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "time"

// =============================================================================
// CHAT TYPES
// =============================================================================

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "USER"
	RoleModel Role = "MODEL"
)

// ChatSession is a persisted conversation scoped to a project and an
// optional persona. The persona binding is fixed at creation and never
// changes afterwards.
type ChatSession struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	PromptID  string    `json:"promptId,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// Citation references a retrieved source attached to a MODEL reply.
// Citations arrive as complete batches; a later batch replaces an earlier
// one rather than extending it.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// ChatMessage is one entry in a session's history. Content on a MODEL
// message grows by concatenation while streaming and is immutable once the
// backend persists it.
type ChatMessage struct {
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventKind discriminates the three signal types a stream frame can carry.
type EventKind int

const (
	// EventStatus is a free-text phase label, e.g. "retrieving documents".
	EventStatus EventKind = iota
	// EventText is a fragment to append to the in-progress reply.
	EventText
	// EventCitations is a complete replacement citation list.
	EventCitations
)

// String returns the event kind name for diagnostics.
func (k EventKind) String() string {
	switch k {
	case EventStatus:
		return "status"
	case EventText:
		return "text"
	case EventCitations:
		return "citations"
	default:
		return "unknown"
	}
}

// StreamEvent is one typed signal decoded from the SSE stream. Exactly one
// of the payload fields is meaningful, selected by Kind. Events are
// transient: they exist only while a stream is open and are never persisted.
type StreamEvent struct {
	Kind      EventKind
	Status    string
	Text      string
	Citations []Citation
}

// streamFrame is the wire shape of one "data:" payload. All fields are
// optional and independent; a single frame may carry any combination.
type streamFrame struct {
	Status    *string    `json:"status"`
	Text      *string    `json:"text"`
	Citations []Citation `json:"citations"`
}

// =============================================================================
// PROMPT TYPES
// =============================================================================

// Prompt is a reusable system instruction ("persona") bound to sessions at
// creation time.
type Prompt struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// =============================================================================
// PROJECT TYPES
// =============================================================================

// ProjectStatus tracks backend provisioning of a project's storage.
type ProjectStatus string

const (
	ProjectCreated      ProjectStatus = "CREATED"
	ProjectProvisioning ProjectStatus = "PROVISIONING"
	ProjectReady        ProjectStatus = "READY"
	ProjectFailed       ProjectStatus = "FAILED"
)

// StorageMode selects who owns the document bucket.
type StorageMode string

const (
	// StorageManaged lets the backend provision and own the bucket.
	StorageManaged StorageMode = "MANAGED"
	// StorageBYOB points the project at a caller-owned bucket.
	StorageBYOB StorageMode = "BYOB"
)

// Project is a knowledge base: a bucket of documents plus its index.
type Project struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Status       ProjectStatus `json:"status"`
	ImportStatus string        `json:"importStatus,omitempty"`
	StorageMode  StorageMode   `json:"storageMode"`
	BucketName   string        `json:"bucketName,omitempty"`
	BucketPrefix string        `json:"bucketPrefix,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// IndexingStatus reports the progress of a document import run.
type IndexingStatus struct {
	ProjectID    string `json:"projectId"`
	ImportStatus string `json:"importStatus"`
	Detail       string `json:"detail,omitempty"`
}

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// Document is a file stored in a project's bucket.
type Document struct {
	Name        string    `json:"name"`
	SizeBytes   int64     `json:"sizeBytes"`
	ContentType string    `json:"contentType,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UploadTarget is a signed URL the client PUTs file bytes to directly.
type UploadTarget struct {
	URL        string `json:"url"`
	ObjectName string `json:"objectName"`
}
