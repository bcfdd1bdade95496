// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/model"
	"github.com/jeranaias/doctalk-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Starting doctalk..."
	}

	var sb strings.Builder
	sb.WriteString(m.header.View())
	sb.WriteString("\n")

	if m.state == StatePicker && m.picker != nil {
		sb.WriteString(lipgloss.Place(
			m.width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center,
			m.picker.View()))
	} else {
		sb.WriteString(m.viewport.View())
	}
	sb.WriteString("\n")

	if line := m.activityLine(); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString(m.theme.InputContainer.Width(m.width).Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.statusBar.View())

	return sb.String()
}

// activityLine renders the spinner, stream phase, or toast above the input.
func (m *Model) activityLine() string {
	if m.toast.Visible() {
		return m.toast.View()
	}
	if m.conv.Sending || m.conv.StreamStatus != "" {
		line := m.spinner.View()
		if m.conv.StreamStatus != "" {
			if line != "" {
				line += "  "
			}
			line += m.theme.StreamingStatus.Render(m.conv.StreamStatus)
		}
		return line
	}
	return ""
}

// chromeHeight is the number of rows used by everything except the viewport.
func (m *Model) chromeHeight() int {
	// Header (2 rows), activity line, input, status bar, separators.
	return 7
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// refreshViewport re-renders the transcript and scrolls to the latest
// message when the conversation changed.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	if m.conv.ConsumeDirty() {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessages() string {
	if m.conv.IsEmpty() {
		return m.theme.HeaderSubtitle.Render("\n  Start a conversation. Your documents are listening.")
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	for i, msg := range m.conv.Messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderMessage(msg, width))
	}
	return sb.String()
}

func (m *Model) renderMessage(msg *model.Message, width int) string {
	bubbleWidth := width - 8
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	if msg.Role == api.RoleUser {
		out := m.theme.UserBubble.MaxWidth(bubbleWidth).Render(msg.DisplayContent())
		if msg.Pending {
			out += "\n" + m.theme.PickerMeta.Render("    sending...")
		}
		return out
	}

	content := msg.DisplayContent()
	if msg.IsStreaming {
		// Live text renders plain; markdown waits for the final form.
		content = components.ParseCodeBlocks(content, bubbleWidth)
	} else if m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	} else {
		content = components.ParseCodeBlocks(content, bubbleWidth)
	}

	out := m.theme.AssistantBubble.MaxWidth(bubbleWidth).Render(content)
	if citations := components.RenderCitations(msg.Citations, m.theme); citations != "" {
		out += "\n" + citations
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

// newViewport builds the transcript viewport.
func newViewport(width, height int) viewport.Model {
	if height < 1 {
		height = 1
	}
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// isBlank reports whether input is empty after trimming whitespace.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
