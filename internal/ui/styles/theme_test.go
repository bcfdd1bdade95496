// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestNewTheme_Mono(t *testing.T) {
	theme := NewTheme("mono")
	if theme.ColorProfile != termenv.Ascii {
		t.Errorf("mono theme profile = %v, want Ascii", theme.ColorProfile)
	}
	if theme.Name != "mono" {
		t.Errorf("Name = %q", theme.Name)
	}
}

func TestNewTheme_DarkLight(t *testing.T) {
	if !NewTheme("dark").IsDark {
		t.Error("dark theme should report IsDark")
	}
	if NewTheme("light").IsDark {
		t.Error("light theme should not report IsDark")
	}
}

func TestGetLayoutMode(t *testing.T) {
	theme := NewTheme("dark")

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: mode = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestStatusIndicators_ASCIIOnly(t *testing.T) {
	for _, s := range []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Pending,
		StatusIndicators.Active,
	} {
		for _, r := range s {
			if r > 127 {
				t.Errorf("indicator %q contains non-ASCII rune", s)
			}
		}
	}
}

func TestRenderHelpers_IncludeIndicator(t *testing.T) {
	if out := RenderError("boom"); !strings.Contains(out, "[X]") || !strings.Contains(out, "boom") {
		t.Errorf("RenderError = %q", out)
	}
	if out := RenderSuccess("done"); !strings.Contains(out, "[OK]") {
		t.Errorf("RenderSuccess = %q", out)
	}
}
