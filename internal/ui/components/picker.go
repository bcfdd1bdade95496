// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
	"github.com/jeranaias/doctalk-tui/internal/util"
)

// =============================================================================
// PICKER COMPONENT
// =============================================================================

// PickerItem is one selectable row.
type PickerItem struct {
	ID    string
	Title string
	Meta  string // Secondary line: persona, status, date
}

// Picker is the overlay list used to choose a session, project, or persona.
type Picker struct {
	Title    string
	Items    []PickerItem
	Cursor   int
	Width    int
	MaxRows  int
	theme    *styles.Theme
}

// NewPicker creates a picker with the given title.
func NewPicker(title string, theme *styles.Theme) *Picker {
	return &Picker{
		Title:   title,
		Width:   60,
		MaxRows: 10,
		theme:   theme,
	}
}

// SetItems replaces the items and clamps the cursor.
func (p *Picker) SetItems(items []PickerItem) {
	p.Items = items
	if p.Cursor >= len(items) {
		p.Cursor = len(items) - 1
	}
	if p.Cursor < 0 {
		p.Cursor = 0
	}
}

// MoveUp moves the cursor up one row.
func (p *Picker) MoveUp() {
	if p.Cursor > 0 {
		p.Cursor--
	}
}

// MoveDown moves the cursor down one row.
func (p *Picker) MoveDown() {
	if p.Cursor < len(p.Items)-1 {
		p.Cursor++
	}
}

// Selected returns the item under the cursor, or nil when empty.
func (p *Picker) Selected() *PickerItem {
	if len(p.Items) == 0 {
		return nil
	}
	return &p.Items[p.Cursor]
}

// View renders the picker overlay.
func (p *Picker) View() string {
	var sb strings.Builder
	sb.WriteString(p.theme.PickerTitle.Render(p.Title))
	sb.WriteString("\n\n")

	if len(p.Items) == 0 {
		sb.WriteString(p.theme.PickerMeta.Render("(empty)"))
		return p.theme.PickerBox.Render(sb.String())
	}

	// Scroll window around the cursor.
	start := 0
	if p.Cursor >= p.MaxRows {
		start = p.Cursor - p.MaxRows + 1
	}
	end := start + p.MaxRows
	if end > len(p.Items) {
		end = len(p.Items)
	}

	innerWidth := p.Width - 8
	for i := start; i < end; i++ {
		item := p.Items[i]
		line := util.TruncateWidth(item.Title, innerWidth)
		if item.Meta != "" {
			line += " " + p.theme.PickerMeta.Render(item.Meta)
		}
		if i == p.Cursor {
			sb.WriteString(p.theme.PickerItemSelected.Render("> " + line))
		} else {
			sb.WriteString(p.theme.PickerItem.Render("  " + line))
		}
		if i < end-1 {
			sb.WriteString("\n")
		}
	}

	if len(p.Items) > p.MaxRows {
		sb.WriteString("\n")
		sb.WriteString(p.theme.PickerMeta.Render(
			toStr(p.Cursor+1) + "/" + toStr(len(p.Items))))
	}

	return p.theme.PickerBox.Render(sb.String())
}
