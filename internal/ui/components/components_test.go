// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
)

func monoTheme() *styles.Theme {
	// Mono keeps rendered output free of ANSI sequences, so tests can
	// assert on plain substrings.
	return styles.NewTheme("mono")
}

func TestCitationLabel(t *testing.T) {
	tests := []struct {
		c    api.Citation
		want string
	}{
		{api.Citation{URI: "gs://bucket/warranty.pdf", Title: "Warranty Terms"}, "Warranty Terms"},
		{api.Citation{URI: "gs://bucket/dir/faq.md"}, "faq.md"},
		{api.Citation{URI: "gs://bucket/trailing/"}, "trailing"},
	}
	for _, tt := range tests {
		if got := CitationLabel(tt.c); got != tt.want {
			t.Errorf("CitationLabel(%+v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestRenderCitations(t *testing.T) {
	theme := monoTheme()

	if out := RenderCitations(nil, theme); out != "" {
		t.Errorf("no citations should render nothing, got %q", out)
	}

	out := RenderCitations([]api.Citation{
		{URI: "gs://b/a.pdf", Title: "Alpha"},
		{URI: "gs://b/beta.md"},
	}, theme)
	for _, want := range []string{"Sources:", "1. Alpha", "2. beta.md"} {
		if !strings.Contains(out, want) {
			t.Errorf("citations output missing %q in %q", want, out)
		}
	}
}

func TestPicker_Navigation(t *testing.T) {
	p := NewPicker("Sessions", monoTheme())

	if p.Selected() != nil {
		t.Error("empty picker should have no selection")
	}

	p.SetItems([]PickerItem{
		{ID: "a", Title: "First"},
		{ID: "b", Title: "Second"},
		{ID: "c", Title: "Third"},
	})

	p.MoveUp() // Clamped at top.
	if p.Selected().ID != "a" {
		t.Errorf("selected = %q, want a", p.Selected().ID)
	}

	p.MoveDown()
	p.MoveDown()
	p.MoveDown() // Clamped at bottom.
	if p.Selected().ID != "c" {
		t.Errorf("selected = %q, want c", p.Selected().ID)
	}
}

func TestPicker_SetItemsClampsCursor(t *testing.T) {
	p := NewPicker("Projects", monoTheme())
	p.SetItems([]PickerItem{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}})
	p.MoveDown()

	p.SetItems([]PickerItem{{ID: "a", Title: "A"}})
	if p.Selected().ID != "a" {
		t.Error("cursor should clamp when the list shrinks")
	}
}

func TestStatusBar_View(t *testing.T) {
	b := NewStatusBar(monoTheme())
	b.SetWidth(100)
	b.Status = StatusStreaming
	b.StreamPhase = "Searching documents"
	b.MessageCount = 4

	out := b.View()
	for _, want := range []string{"[STREAMING]", "Searching documents", "4 msgs"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q", want)
		}
	}
}

func TestHeader_View(t *testing.T) {
	h := NewHeader(monoTheme())
	h.SetWidth(80)
	h.SetProject("Support KB")
	h.SetSession("Warranty questions", "support-agent")

	out := h.View()
	for _, want := range []string{"doctalk", "Support KB", "Warranty questions", "(support-agent)"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestHeader_NoProjectBadge(t *testing.T) {
	h := NewHeader(monoTheme())
	if !strings.Contains(h.View(), "[no project]") {
		t.Error("header should flag a missing project")
	}
}

func TestParseCodeBlocks_PlainTextPassthrough(t *testing.T) {
	out := ParseCodeBlocks("no code here", 80)
	if out != "no code here" {
		t.Errorf("plain text should pass through, got %q", out)
	}
}

func TestParseCodeBlocks_RendersFence(t *testing.T) {
	in := "before\n```go\nfmt.Println(1)\n```\nafter"
	out := ParseCodeBlocks(in, 80)
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Error("surrounding text should survive")
	}
	if strings.Contains(out, "```") {
		t.Error("fences should be replaced by the rendered block")
	}
}

func TestErrorToast_Lifecycle(t *testing.T) {
	toast := NewErrorToast(monoTheme())
	if toast.Visible() {
		t.Error("new toast should be hidden")
	}

	toast.ShowMessage("boom")
	if !toast.Visible() {
		t.Error("toast should be visible after Show")
	}
	if !strings.Contains(toast.View(), "boom") {
		t.Error("toast view missing message")
	}

	toast.Dismiss()
	if toast.Visible() {
		t.Error("toast should hide after Dismiss")
	}
}

func TestToStr(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{1234, "1234"},
		{-42, "-42"},
	}
	for _, tt := range tests {
		if got := toStr(tt.in); got != tt.want {
			t.Errorf("toStr(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
