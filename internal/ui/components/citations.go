// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"path"
	"strings"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
)

// =============================================================================
// CITATION LIST COMPONENT
// =============================================================================

// RenderCitations renders a message's source list as an indented footer.
// Returns "" when there are no citations.
func RenderCitations(citations []api.Citation, theme *styles.Theme) string {
	if len(citations) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(theme.CitationList.Render("Sources:"))
	for i, c := range citations {
		sb.WriteString("\n")
		sb.WriteString(theme.CitationList.Render(
			"  " + toStr(i+1) + ". " + theme.CitationItem.Render(CitationLabel(c))))
	}
	return sb.String()
}

// CitationLabel returns the display label for one citation: the title when
// present, otherwise the file name from the URI.
func CitationLabel(c api.Citation) string {
	if c.Title != "" {
		return c.Title
	}
	// gs://bucket/dir/file.pdf -> file.pdf
	uri := strings.TrimSuffix(c.URI, "/")
	if base := path.Base(uri); base != "." && base != "/" && base != "" {
		return base
	}
	return c.URI
}
