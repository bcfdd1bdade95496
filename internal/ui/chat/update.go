// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/ui/components"
)

var errPersonaLocked = errors.New("persona is fixed once the session exists; start a new chat to change it")

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamStartedMsg:
		return m, m.handleStreamStarted(msg)

	case StreamEventMsg:
		return m, m.handleStreamEvent(msg)

	case StreamTickMsg:
		return m, m.handleStreamTick()

	case StreamDoneMsg:
		return m, m.handleStreamDone(msg)

	case ReconcileMsg:
		return m, m.handleReconcile(msg)

	case SessionsLoadedMsg:
		return m, m.handleSessionsLoaded(msg)

	case SessionMessagesMsg:
		return m, m.handleSessionMessages(msg)

	case SessionRenamedMsg:
		if msg.Err != nil {
			m.toast.Show(msg.Err)
		} else if msg.ID == m.conv.SessionID {
			m.conv.Title = msg.Title
			m.header.SetSession(msg.Title, m.conv.PromptID)
		}
		return m, nil

	case SessionDeletedMsg:
		return m, m.handleSessionDeleted(msg)

	case ProjectsLoadedMsg:
		return m, m.handleProjectsLoaded(msg)

	case PromptsLoadedMsg:
		return m, m.handlePromptsLoaded(msg)

	case ExportedMsg:
		if msg.Err != nil {
			m.toast.Show(msg.Err)
		} else {
			m.toast.ShowMessage("Exported to " + msg.Path)
		}
		return m, nil

	case ErrMsg:
		m.toast.Show(msg.Err)
		return m, nil

	case InfoMsg:
		m.toast.ShowMessage(msg.Text)
		return m, nil

	case spinner.TickMsg:
		return m, m.spinner.Update(msg)
	}

	return m, m.updateInput(msg)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancelMgr.cancel()
		return m, tea.Quit
	}

	if m.state == StatePicker {
		return m, m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.handleSubmit()

	case key.Matches(msg, m.keys.Cancel):
		if m.streaming() {
			// The cancelled stream surfaces StreamDoneMsg with a
			// StreamError; cleanup happens there.
			m.cancelMgr.cancel()
			return m, nil
		}
		m.input.Reset()
		m.toast.Dismiss()
		return m, nil

	case key.Matches(msg, m.keys.Sessions):
		if m.streaming() {
			return m, nil
		}
		m.openPicker(pickerSessions, "Sessions")
		return m, m.loadSessionsCmd()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil
	}

	return m, m.updateInput(msg)
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.picker.MoveUp()
	case "down", "j":
		m.picker.MoveDown()
	case "esc":
		m.closePicker()
	case "enter":
		return m.handlePickerSelect()
	}
	return nil
}

// =============================================================================
// SEND CYCLE
// =============================================================================

// handleSubmit runs the local guards and opens the stream. Empty input and
// missing project produce no network traffic at all.
func (m *Model) handleSubmit() tea.Cmd {
	content := m.input.Value()

	if cmd, ok := parseSlashCommand(content); ok {
		m.input.Reset()
		return m.handleSlashCommand(cmd)
	}

	if isBlank(content) {
		return nil
	}
	if m.conv.ProjectID == "" {
		m.toast.Show(api.ErrNoProject)
		return nil
	}
	if m.conv.Busy() {
		return nil
	}

	m.conv.BeginSend(content)
	m.input.Reset()
	m.state = StateStreaming
	m.statusBar.Status = components.StatusStreaming
	m.buffer.Reset()
	m.refreshViewport()

	return tea.Batch(
		m.startStreamCmd(content),
		m.spinner.Start(),
		streamTickCmd(),
	)
}

func (m *Model) handleStreamStarted(msg StreamStartedMsg) tea.Cmd {
	if msg.Session != nil {
		m.conv.BindSession(msg.Session)
		m.header.SetSession(msg.Session.Title, msg.Session.PromptID)
		if m.history != nil {
			m.history.MirrorSession(*msg.Session)
		}
	}
	m.cancelMgr.set(msg.Cancel)
	m.events = msg.Events
	m.errs = msg.Errs
	return waitForStreamCmd(m.events, m.errs)
}

func (m *Model) handleStreamEvent(msg StreamEventMsg) tea.Cmd {
	if msg.Event.Kind == api.EventText {
		// Text batches through the buffer; ticks apply it.
		m.buffer.Write(msg.Event.Text)
	} else {
		m.conv.Apply(msg.Event)
		m.statusBar.StreamPhase = m.conv.StreamStatus
		m.refreshViewport()
	}
	return waitForStreamCmd(m.events, m.errs)
}

func (m *Model) handleStreamTick() tea.Cmd {
	if !m.streaming() {
		return nil
	}
	if content, ok := m.buffer.Flush(); ok {
		m.conv.Apply(api.StreamEvent{Kind: api.EventText, Text: content})
		m.statusBar.StreamPhase = m.conv.StreamStatus
		m.spinner.Stop()
		m.refreshViewport()
	}
	return streamTickCmd()
}

// handleStreamDone is the single cleanup point for every way a stream can
// end: EOF, transport error, or cancellation.
func (m *Model) handleStreamDone(msg StreamDoneMsg) tea.Cmd {
	if content, ok := m.buffer.ForceFlush(); ok {
		m.conv.Apply(api.StreamEvent{Kind: api.EventText, Text: content})
	}
	m.cancelMgr.cancel()
	m.spinner.Stop()
	m.events = nil
	m.errs = nil

	m.conv.EndSend()
	m.state = StateReady
	m.statusBar.Status = components.StatusReady
	m.statusBar.StreamPhase = ""
	m.refreshViewport()

	if msg.Err != nil {
		m.toast.Show(streamFailureError(msg.Err))
		m.statusBar.Status = components.StatusError
		return nil
	}

	// Clean end: the backend's record replaces everything local.
	if m.conv.SessionID != "" {
		return m.reconcileCmd(m.conv.SessionID)
	}
	return nil
}

func (m *Model) handleReconcile(msg ReconcileMsg) tea.Cmd {
	if msg.Err != nil {
		// Keep the locally assembled view; it is already complete.
		m.toast.Show(msg.Err)
		return nil
	}
	if msg.SessionID != m.conv.SessionID {
		return nil
	}
	m.conv.ReplaceFromHistory(msg.Messages)
	m.statusBar.MessageCount = m.conv.MessageCount()
	m.refreshViewport()
	m.mirrorCache(msg.Messages)
	return nil
}

// streamFailureError unwraps a StreamError so the toast shows the cause,
// not the partial text.
func streamFailureError(err error) error {
	var streamErr *api.StreamError
	if errors.As(err, &streamErr) {
		return streamErr.Err
	}
	return err
}

// =============================================================================
// DIRECTORY HANDLING
// =============================================================================

func (m *Model) handleSessionsLoaded(msg SessionsLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		m.closePicker()
		m.toast.Show(msg.Err)
		return nil
	}
	m.sessions = msg.Sessions
	if m.pickMode == pickerSessions && m.picker != nil {
		items := make([]components.PickerItem, 0, len(msg.Sessions))
		for _, s := range msg.Sessions {
			items = append(items, components.PickerItem{
				ID:    s.ID,
				Title: s.Title,
				Meta:  s.CreatedAt.Format("2006-01-02"),
			})
		}
		m.picker.SetItems(items)
	}
	if m.history != nil {
		for _, s := range msg.Sessions {
			m.history.MirrorSession(s)
		}
	}
	return nil
}

func (m *Model) handleSessionMessages(msg SessionMessagesMsg) tea.Cmd {
	if msg.Err != nil {
		m.toast.Show(msg.Err)
		return nil
	}
	m.conv.Reset(msg.Session.ProjectID)
	m.conv.BindSession(&msg.Session)
	m.conv.ReplaceFromHistory(msg.Messages)
	m.header.SetSession(msg.Session.Title, msg.Session.PromptID)
	m.statusBar.MessageCount = m.conv.MessageCount()
	m.refreshViewport()
	m.mirrorCache(msg.Messages)
	return nil
}

func (m *Model) handleSessionDeleted(msg SessionDeletedMsg) tea.Cmd {
	if msg.Err != nil {
		m.toast.Show(msg.Err)
		return nil
	}
	if m.history != nil {
		m.history.DeleteSession(msg.ID)
	}
	// Deleting the open session clears the selection back to a new chat.
	if msg.ID == m.conv.SessionID {
		m.conv.Reset(m.ws.ActiveProjectID())
		m.persona = ""
		m.header.SetSession("", "")
		m.statusBar.MessageCount = 0
		m.refreshViewport()
	}
	m.toast.ShowMessage("Session deleted.")
	return nil
}

func (m *Model) handleProjectsLoaded(msg ProjectsLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		m.closePicker()
		m.toast.Show(msg.Err)
		return nil
	}
	m.projects = msg.Projects
	if m.pickMode == pickerProjects && m.picker != nil {
		items := make([]components.PickerItem, 0, len(msg.Projects))
		for _, p := range msg.Projects {
			items = append(items, components.PickerItem{
				ID:    p.ID,
				Title: p.Name,
				Meta:  string(p.Status),
			})
		}
		m.picker.SetItems(items)
	}
	return nil
}

func (m *Model) handlePromptsLoaded(msg PromptsLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		m.closePicker()
		m.toast.Show(msg.Err)
		return nil
	}
	m.prompts = msg.Prompts
	if m.pickMode == pickerPersonas && m.picker != nil {
		items := make([]components.PickerItem, 0, len(msg.Prompts)+1)
		items = append(items, components.PickerItem{ID: "", Title: "default", Meta: "no persona"})
		for _, p := range msg.Prompts {
			items = append(items, components.PickerItem{ID: p.ID, Title: p.Name})
		}
		m.picker.SetItems(items)
	}
	return nil
}

func (m *Model) handlePickerSelect() tea.Cmd {
	item := m.picker.Selected()
	mode := m.pickMode
	m.closePicker()
	if item == nil {
		return nil
	}

	switch mode {
	case pickerSessions:
		for _, s := range m.sessions {
			if s.ID == item.ID {
				return m.loadSessionMessagesCmd(s)
			}
		}

	case pickerProjects:
		if err := m.ws.SetActiveProject(item.ID, item.Title); err != nil {
			m.toast.Show(err)
			return nil
		}
		m.conv.Reset(item.ID)
		m.persona = ""
		m.header.SetProject(item.Title)
		m.header.SetSession("", "")
		m.statusBar.MessageCount = 0
		m.refreshViewport()

	case pickerPersonas:
		m.persona = item.ID
		if item.ID == "" {
			m.toast.ShowMessage("Persona cleared for the next session.")
		} else {
			m.toast.ShowMessage("Persona set: " + item.Title)
		}
	}
	return nil
}

// =============================================================================
// PLUMBING
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) tea.Cmd {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.header.SetWidth(msg.Width)
	m.statusBar.SetWidth(msg.Width)
	m.input.Width = msg.Width - 6

	chromeHeight := m.chromeHeight()
	if !m.ready {
		m.viewport = newViewport(msg.Width, msg.Height-chromeHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - chromeHeight
	}
	m.refreshViewport()
	return nil
}

func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// mirrorCache writes the reconciled history into the sqlite cache.
func (m *Model) mirrorCache(messages []api.ChatMessage) {
	if m.history == nil || m.conv.SessionID == "" {
		return
	}
	m.history.MirrorSession(api.ChatSession{
		ID:        m.conv.SessionID,
		ProjectID: m.conv.ProjectID,
		PromptID:  m.conv.PromptID,
		Title:     m.conv.Title,
		CreatedAt: m.conv.UpdatedAt,
	})
	m.history.MirrorMessages(m.conv.SessionID, messages)
}
