// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    prompt_id TEXT,
    title TEXT NOT NULL,
    created_at INTEGER NOT NULL,  -- Unix millis
    mirrored_at INTEGER NOT NULL  -- Unix millis of the last mirror write
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project_id);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    seq INTEGER NOT NULL,         -- Position within the mirrored history
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    citations TEXT,               -- JSON array, NULL when absent
    created_at INTEGER NOT NULL,
    FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);
`

// ErrSessionNotCached is returned when a session has never been mirrored.
var ErrSessionNotCached = errors.New("session not in local history cache")

// =============================================================================
// HISTORY CACHE
// =============================================================================

// History is the sqlite-backed mirror. Safe for concurrent use; database/sql
// serializes access.
type History struct {
	db *sql.DB
}

// OpenHistory opens (and if needed creates) the cache database at path.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history cache: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close releases the database handle.
func (h *History) Close() error {
	return h.db.Close()
}

// =============================================================================
// WRITE PATH (reconciliation)
// =============================================================================

// MirrorSession upserts a session row. Called when sessions are listed or
// created so the offline index stays reasonably fresh.
func (h *History) MirrorSession(s api.ChatSession) error {
	_, err := h.db.Exec(`
		INSERT INTO sessions (id, project_id, prompt_id, title, created_at, mirrored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			mirrored_at = excluded.mirrored_at`,
		s.ID, s.ProjectID, nullable(s.PromptID), s.Title,
		s.CreatedAt.UnixMilli(), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to mirror session: %w", err)
	}
	return nil
}

// MirrorMessages replaces a session's cached messages with the authoritative
// history, in one transaction. Mirrors the reconciliation semantics: replace
// wholesale, never merge.
func (h *History) MirrorMessages(sessionID string, history []api.ChatMessage) error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin mirror transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to clear cached messages: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (id, session_id, seq, role, content, citations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range history {
		var citations any
		if len(m.Citations) > 0 {
			data, err := json.Marshal(m.Citations)
			if err != nil {
				return fmt.Errorf("failed to encode citations: %w", err)
			}
			citations = string(data)
		}
		if _, err := stmt.Exec(m.ID, sessionID, i, string(m.Role), m.Content, citations, m.CreatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteSession removes a session and its messages from the cache.
func (h *History) DeleteSession(sessionID string) error {
	if _, err := h.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete cached session: %w", err)
	}
	// Cascade handles messages when foreign keys are on; delete explicitly
	// anyway so a cache created before the pragma still cleans up.
	if _, err := h.db.Exec("DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete cached messages: %w", err)
	}
	return nil
}

// =============================================================================
// READ PATH (offline)
// =============================================================================

// ListSessions returns cached sessions for a project, newest first.
// An empty projectID lists every cached session.
func (h *History) ListSessions(projectID string) ([]api.ChatSession, error) {
	rows, err := h.db.Query(`
		SELECT id, project_id, prompt_id, title, created_at
		FROM sessions WHERE project_id = ? OR ? = ''
		ORDER BY created_at DESC`, projectID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached sessions: %w", err)
	}
	defer rows.Close()

	var sessions []api.ChatSession
	for rows.Next() {
		var s api.ChatSession
		var promptID sql.NullString
		var createdAt int64
		if err := rows.Scan(&s.ID, &s.ProjectID, &promptID, &s.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached session: %w", err)
		}
		s.PromptID = promptID.String
		s.CreatedAt = time.UnixMilli(createdAt)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetMessages returns a session's cached history in mirrored order.
func (h *History) GetMessages(sessionID string) ([]api.ChatMessage, error) {
	var exists int
	err := h.db.QueryRow("SELECT COUNT(*) FROM sessions WHERE id = ?", sessionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check cached session: %w", err)
	}
	if exists == 0 {
		return nil, ErrSessionNotCached
	}

	rows, err := h.db.Query(`
		SELECT id, session_id, role, content, citations, created_at
		FROM messages WHERE session_id = ?
		ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached messages: %w", err)
	}
	defer rows.Close()

	var messages []api.ChatMessage
	for rows.Next() {
		var m api.ChatMessage
		var role string
		var citations sql.NullString
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &citations, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached message: %w", err)
		}
		m.Role = api.Role(role)
		m.CreatedAt = time.UnixMilli(createdAt)
		if citations.Valid {
			if err := json.Unmarshal([]byte(citations.String), &m.Citations); err != nil {
				// A corrupt citations blob degrades to no citations.
				m.Citations = nil
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
