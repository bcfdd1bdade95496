// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoActiveProject is returned when no project has been selected.
	ErrNoActiveProject = errors.New("no active project selected")
)

// StoreError wraps a persistence failure with the operation that caused it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("workspace %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// =============================================================================
// KV BACKING
// =============================================================================

// KV is the pluggable persistence capability behind the store. Implementations
// must be safe for concurrent use by a single process.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(key string) ([]byte, bool, error)
	// Set writes the value for key durably.
	Set(key string, value []byte) error
	// Delete removes the key; deleting a missing key is not an error.
	Delete(key string) error
}

// stateKey is the single key the store uses in its backing KV.
const stateKey = "workspace"

// =============================================================================
// STORE
// =============================================================================

// ProjectSelection is the persisted active-project record. The name is
// cached for display; the backend project list remains authoritative.
type ProjectSelection struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SelectedAt time.Time `json:"selectedAt"`
}

// state is the full persisted workspace document.
type state struct {
	ActiveProject *ProjectSelection `json:"activeProject,omitempty"`

	// InstallID identifies this client install; generated once.
	InstallID string `json:"installId"`
}

// Store holds the active project selection, persisted through a KV backing.
// Safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	kv KV
	st state
}

// Open loads the store from its backing, creating initial state (including
// the install identifier) on first use.
func Open(kv KV) (*Store, error) {
	s := &Store{kv: kv}

	data, ok, err := kv.Get(stateKey)
	if err != nil {
		return nil, &StoreError{Op: "load", Err: err}
	}
	if ok {
		if err := json.Unmarshal(data, &s.st); err != nil {
			// A corrupt state file is not fatal: start fresh rather than
			// locking the user out of the client.
			s.st = state{}
		}
	}

	if s.st.InstallID == "" {
		s.st.InstallID = uuid.NewString()
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// persistLocked writes the current state; callers hold at least a read
// intent on s.mu or are in Open before publication.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(&s.st, "", "  ")
	if err != nil {
		return &StoreError{Op: "encode", Err: err}
	}
	if err := s.kv.Set(stateKey, data); err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	return nil
}

// ActiveProject returns the current selection.
func (s *Store) ActiveProject() (ProjectSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.ActiveProject == nil {
		return ProjectSelection{}, ErrNoActiveProject
	}
	return *s.st.ActiveProject, nil
}

// ActiveProjectID returns the selected project id, or "" when none.
func (s *Store) ActiveProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.ActiveProject == nil {
		return ""
	}
	return s.st.ActiveProject.ID
}

// SetActiveProject selects a project and persists the choice.
func (s *Store) SetActiveProject(id, name string) error {
	if id == "" {
		return ErrNoActiveProject
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ActiveProject = &ProjectSelection{
		ID:         id,
		Name:       name,
		SelectedAt: time.Now(),
	}
	return s.persistLocked()
}

// ClearActiveProject drops the selection, e.g. after the project was
// deleted on the backend.
func (s *Store) ClearActiveProject() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ActiveProject = nil
	return s.persistLocked()
}

// InstallID returns the stable identifier for this client install.
func (s *Store) InstallID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.InstallID
}
