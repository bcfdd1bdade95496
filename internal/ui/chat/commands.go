// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/export"
	"github.com/jeranaias/doctalk-tui/internal/ui/components"
)

// requestTimeout bounds the directory calls issued from the view. Streams
// are not subject to it; they run under the cancel manager's context.
const requestTimeout = 30 * time.Second

// =============================================================================
// STREAM COMMANDS
// =============================================================================

// startStreamCmd opens the stream for one send. When no session exists yet
// it creates one first, binding the pending persona; session creation and
// stream share one cancellable context tied to the view.
func (m *Model) startStreamCmd(content string) tea.Cmd {
	client := m.client
	projectID := m.conv.ProjectID
	sessionID := m.conv.SessionID
	promptID := m.persona

	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())

		var created *api.ChatSession
		if sessionID == "" {
			s, err := client.CreateSession(ctx, projectID, promptID)
			if err != nil {
				cancel()
				return StreamDoneMsg{Err: err}
			}
			created = s
			sessionID = s.ID
		}

		events, errs := client.StreamMessage(ctx, sessionID, content)
		return StreamStartedMsg{Session: created, Events: events, Errs: errs, Cancel: cancel}
	}
}

// waitForStreamCmd reads the next event. A closed event channel means the
// stream ended; the error channel then holds at most one error.
func waitForStreamCmd(events <-chan api.StreamEvent, errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-events; ok {
			return StreamEventMsg{Event: ev}
		}
		return StreamDoneMsg{Err: <-errs}
	}
}

// reconcileCmd refetches the authoritative history after a stream ends.
func (m *Model) reconcileCmd(sessionID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		messages, err := client.GetMessages(ctx, sessionID)
		return ReconcileMsg{SessionID: sessionID, Messages: messages, Err: err}
	}
}

// =============================================================================
// DIRECTORY COMMANDS
// =============================================================================

func (m *Model) loadSessionsCmd() tea.Cmd {
	client := m.client
	projectID := m.conv.ProjectID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sessions, err := client.ListSessions(ctx, projectID)
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (m *Model) loadSessionMessagesCmd(session api.ChatSession) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		messages, err := client.GetMessages(ctx, session.ID)
		return SessionMessagesMsg{Session: session, Messages: messages, Err: err}
	}
}

func (m *Model) loadProjectsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		projects, err := client.ListProjects(ctx)
		return ProjectsLoadedMsg{Projects: projects, Err: err}
	}
}

func (m *Model) loadPromptsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		prompts, err := client.ListPrompts(ctx)
		return PromptsLoadedMsg{Prompts: prompts, Err: err}
	}
}

func (m *Model) renameSessionCmd(sessionID, title string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		s, err := client.RenameSession(ctx, sessionID, title)
		if err != nil {
			return SessionRenamedMsg{ID: sessionID, Err: err}
		}
		return SessionRenamedMsg{ID: s.ID, Title: s.Title}
	}
}

func (m *Model) deleteSessionCmd(sessionID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.DeleteSession(ctx, sessionID)
		return SessionDeletedMsg{ID: sessionID, Err: err}
	}
}

func (m *Model) exportCmd(format string) tea.Cmd {
	client := m.client
	session := api.ChatSession{
		ID:        m.conv.SessionID,
		ProjectID: m.conv.ProjectID,
		PromptID:  m.conv.PromptID,
		Title:     m.conv.Title,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		exporter, err := export.ForFormat(format)
		if err != nil {
			return ExportedMsg{Err: err}
		}
		messages, err := client.GetMessages(ctx, session.ID)
		if err != nil {
			return ExportedMsg{Err: err}
		}
		t := &export.Transcript{Session: session, Messages: messages, Exported: time.Now()}
		path, err := export.ExportToFile(t, exporter, ".")
		return ExportedMsg{Path: path, Err: err}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// slashCommand is one parsed /command line.
type slashCommand struct {
	name string
	args string
}

// parseSlashCommand splits "/rename New title" into name and argument rest.
// Returns ok=false for anything that is not a slash command.
func parseSlashCommand(input string) (slashCommand, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return slashCommand{}, false
	}
	body := strings.TrimPrefix(trimmed, "/")
	name, args, _ := strings.Cut(body, " ")
	return slashCommand{
		name: strings.ToLower(name),
		args: strings.TrimSpace(args),
	}, true
}

// handleSlashCommand dispatches a parsed slash command.
func (m *Model) handleSlashCommand(cmd slashCommand) tea.Cmd {
	switch cmd.name {
	case "new":
		m.conv.Reset(m.ws.ActiveProjectID())
		m.persona = ""
		m.header.SetSession("", "")
		return nil

	case "sessions", "session":
		m.openPicker(pickerSessions, "Sessions")
		return m.loadSessionsCmd()

	case "projects", "project":
		m.openPicker(pickerProjects, "Projects")
		return m.loadProjectsCmd()

	case "personas", "persona":
		if !m.conv.CanSelectPersona() {
			return toastCmd(ErrMsg{Err: errPersonaLocked})
		}
		m.openPicker(pickerPersonas, "Personas")
		return m.loadPromptsCmd()

	case "rename":
		if m.conv.SessionID == "" {
			return toastCmd(InfoMsg{Text: "No session to rename yet."})
		}
		if strings.TrimSpace(cmd.args) == "" {
			return toastCmd(InfoMsg{Text: "Usage: /rename <new title>"})
		}
		return m.renameSessionCmd(m.conv.SessionID, cmd.args)

	case "delete":
		if m.conv.SessionID == "" {
			return toastCmd(InfoMsg{Text: "No session to delete."})
		}
		return m.deleteSessionCmd(m.conv.SessionID)

	case "export":
		if m.conv.SessionID == "" {
			return toastCmd(InfoMsg{Text: "Nothing to export yet."})
		}
		return m.exportCmd(cmd.args)

	case "quit", "exit":
		return tea.Quit

	case "help":
		return toastCmd(InfoMsg{Text: "/new /sessions /projects /personas /rename /delete /export /quit"})

	default:
		return toastCmd(InfoMsg{Text: "Unknown command: /" + cmd.name})
	}
}

// toastCmd wraps a message so it goes through the normal Update path.
func toastCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// openPicker switches to picker state with a fresh, empty picker.
func (m *Model) openPicker(mode pickerMode, title string) {
	m.picker = components.NewPicker(title, m.theme)
	m.pickMode = mode
	m.state = StatePicker
}

// closePicker returns to the ready state.
func (m *Model) closePicker() {
	m.picker = nil
	m.pickMode = pickerNone
	m.state = StateReady
}
