// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
	"github.com/jeranaias/doctalk-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: brand, active project, and session title.
type Header struct {
	Title        string // Brand title (default: "doctalk")
	ProjectName  string // Active knowledge base
	SessionTitle string // Current chat session
	Persona      string // Persona bound to the session, if any
	Width        int
	theme        *styles.Theme
}

// NewHeader creates a Header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "doctalk",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetProject updates the active project name.
func (h *Header) SetProject(name string) {
	h.ProjectName = name
}

// SetSession updates the session title and persona shown in the subtitle.
func (h *Header) SetSession(title, persona string) {
	h.SessionTitle = title
	h.Persona = persona
}

// View renders the header.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}
	innerWidth := width - 4

	brandStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)
	accentStyle := lipgloss.NewStyle().Foreground(styles.Purple)

	brand := accentStyle.Render("< ") +
		brandStyle.Render(h.Title) +
		accentStyle.Render(" >")

	var subtitleParts []string
	if h.ProjectName != "" {
		subtitleParts = append(subtitleParts,
			lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(h.ProjectName))
	} else {
		subtitleParts = append(subtitleParts,
			lipgloss.NewStyle().Foreground(styles.Amber).Render("[no project]"))
	}
	if h.SessionTitle != "" {
		title := util.TruncateWidth(h.SessionTitle, innerWidth/2)
		subtitleParts = append(subtitleParts,
			lipgloss.NewStyle().Foreground(styles.TextMuted).Render(title))
	}
	if h.Persona != "" {
		subtitleParts = append(subtitleParts,
			lipgloss.NewStyle().Foreground(styles.Purple).Render("("+h.Persona+")"))
	}
	subtitle := strings.Join(subtitleParts, " ")

	center := lipgloss.NewStyle().Width(innerWidth).Align(lipgloss.Center)
	content := center.Render(brand) + "\n" + center.Render(subtitle)

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Padding(0, 2).
		Width(width).
		Render(content)
}
