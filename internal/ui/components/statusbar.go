// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status is the connection/stream state shown on the left of the bar.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusError
	StatusOffline
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "READY"
	case StatusStreaming:
		return "STREAMING"
	case StatusError:
		return "ERROR"
	case StatusOffline:
		return "OFFLINE"
	default:
		return "UNKNOWN"
	}
}

// Shortcut is one key hint shown on the right of the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom bar: status, transient stream phase, message
// count, and key hints.
type StatusBar struct {
	Status       Status
	StreamPhase  string // Transient backend phase ("Searching documents")
	MessageCount int
	Width        int
	Shortcuts    []Shortcut
	theme        *styles.Theme
}

// NewStatusBar creates a status bar with the default shortcut set.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		Shortcuts: []Shortcut{
			{Key: "enter", Desc: "send"},
			{Key: "esc", Desc: "cancel"},
			{Key: "ctrl+p", Desc: "sessions"},
			{Key: "ctrl+c", Desc: "quit"},
		},
		theme: theme,
	}
}

// SetWidth updates the bar width.
func (b *StatusBar) SetWidth(width int) {
	b.Width = width
}

// statusStyle picks the style for the current status.
func (b *StatusBar) statusStyle() lipgloss.Style {
	switch b.Status {
	case StatusStreaming:
		return b.theme.StatusBusy
	case StatusError, StatusOffline:
		return b.theme.StatusError
	default:
		return b.theme.StatusReady
	}
}

// View renders the status bar.
func (b *StatusBar) View() string {
	var left []string
	left = append(left, b.statusStyle().Render("["+b.Status.String()+"]"))
	if b.StreamPhase != "" {
		left = append(left, b.theme.StreamingStatus.Render(b.StreamPhase))
	}
	if b.MessageCount > 0 {
		left = append(left, b.theme.ShortcutDesc.Render(toStr(b.MessageCount)+" msgs"))
	}
	leftStr := strings.Join(left, " ")

	var hints []string
	for _, s := range b.Shortcuts {
		hints = append(hints, b.theme.ShortcutKey.Render(s.Key)+" "+b.theme.ShortcutDesc.Render(s.Desc))
	}
	rightStr := strings.Join(hints, "  ")

	gap := b.Width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr) - 2
	if gap < 1 {
		gap = 1
		rightStr = ""
	}

	return b.theme.StatusBar.Width(b.Width).Render(
		leftStr + strings.Repeat(" ", gap) + rightStr)
}
