// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for CLI output.
//
// Every command renders through these styles so colors degrade together
// when output is piped.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	// titleStyle is used for command titles and list headers.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("141"))

	// labelStyle is used for field labels in detail views.
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(14)

	// valueStyle is used for field values.
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// dimStyle is used for secondary detail (timestamps, counts).
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	// errorStyle marks failures on stderr.
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203"))

	// successStyle marks completed operations.
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// warningStyle marks degraded but non-fatal conditions.
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	// promptStyle renders the REPL prompt.
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("141"))

	// citationStyle renders source references under replies.
	citationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("74"))

	// statusStyle renders transient stream phases.
	statusStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("245"))
)
