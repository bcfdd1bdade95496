// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/config"
	"github.com/jeranaias/doctalk-tui/internal/model"
	"github.com/jeranaias/doctalk-tui/internal/storage"
	"github.com/jeranaias/doctalk-tui/internal/ui/components"
	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
	"github.com/jeranaias/doctalk-tui/internal/workspace"
)

// =============================================================================
// STATE
// =============================================================================

// State is the top-level view state.
type State int

const (
	StateReady     State = iota // Accepting input
	StateStreaming              // A send cycle is in flight
	StatePicker                 // An overlay picker is open
)

// pickerMode identifies which directory the open picker is browsing.
type pickerMode int

const (
	pickerNone pickerMode = iota
	pickerSessions
	pickerProjects
	pickerPersonas
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	client  *api.Client
	conv    *model.Conversation
	ws      *workspace.Store
	history *storage.History // nil when the local cache is disabled
	cfg     *config.Config

	theme     *styles.Theme
	header    *components.Header
	statusBar *components.StatusBar
	spinner   components.Spinner
	toast     *components.ErrorToast
	picker    *components.Picker
	pickMode  pickerMode

	viewport viewport.Model
	input    textinput.Model
	renderer *glamour.TermRenderer

	buffer    *StreamingBuffer
	cancelMgr *cancelManager
	events    <-chan api.StreamEvent
	errs      <-chan error

	state   State
	keys    KeyMap
	width   int
	height  int
	ready   bool
	persona string // Pending persona for the next session; "" is default

	// Cached picker payloads so selection can resolve IDs.
	sessions []api.ChatSession
	projects []api.Project
	prompts  []api.Prompt
}

// New creates the chat view bound to the active project.
func New(client *api.Client, ws *workspace.Store, history *storage.History, cfg *config.Config) *Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Ask your documents anything..."
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 4000
	input.Focus()

	m := &Model{
		client:    client,
		conv:      model.NewConversation(ws.ActiveProjectID()),
		ws:        ws,
		history:   history,
		cfg:       cfg,
		theme:     theme,
		header:    components.NewHeader(theme),
		statusBar: components.NewStatusBar(theme),
		spinner:   components.NewSpinner(theme),
		toast:     components.NewErrorToast(theme),
		input:     input,
		buffer:    NewStreamingBuffer(),
		cancelMgr: newCancelManager(),
		state:     StateReady,
		keys:      DefaultKeyMap(),
	}
	if cfg.UI.VimMode {
		m.keys = VimKeyMap()
	}

	if sel, err := ws.ActiveProject(); err == nil {
		m.header.SetProject(sel.Name)
	}

	if cfg.UI.RenderMarkdown {
		style := "dark"
		if cfg.UI.Theme == "light" {
			style = "light"
		}
		if r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(80),
		); err == nil {
			m.renderer = r
		}
	}

	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Conversation exposes the state store for tests and the status command.
func (m *Model) Conversation() *model.Conversation {
	return m.conv
}

// streaming reports whether a send cycle is in flight.
func (m *Model) streaming() bool {
	return m.state == StateStreaming
}
