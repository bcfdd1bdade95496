// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a transcript as a readable Markdown document with
// YAML frontmatter and per-message citation footers.
type MarkdownExporter struct{}

// Export implements Exporter.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	if len(t.Messages) == 0 {
		return nil, fmt.Errorf("transcript has no messages")
	}

	exported := t.Exported
	if exported.IsZero() {
		exported = time.Now()
	}

	var sb strings.Builder

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(t.Session.Title)))
	sb.WriteString(fmt.Sprintf("session: %s\n", t.Session.ID))
	if t.Session.PromptID != "" {
		sb.WriteString(fmt.Sprintf("persona: %s\n", t.Session.PromptID))
	}
	sb.WriteString(fmt.Sprintf("date: %s\n", t.Session.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(t.Messages)))
	sb.WriteString(fmt.Sprintf("exported: %s\n", exported.Format(time.RFC3339)))
	sb.WriteString("generator: doctalk-tui\n")
	sb.WriteString("---\n\n")

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(t.Session.Title)))

	for i, msg := range t.Messages {
		sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
			roleLabel(msg.Role), formatShortTimestamp(msg.CreatedAt)))

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if len(msg.Citations) > 0 {
			sb.WriteString("**Sources**:\n\n")
			for _, c := range msg.Citations {
				if c.Title != "" {
					sb.WriteString(fmt.Sprintf("- %s (`%s`)\n", escapeMarkdown(c.Title), c.URI))
				} else {
					sb.WriteString(fmt.Sprintf("- `%s`\n", c.URI))
				}
			}
			sb.WriteString("\n")
		}

		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported on %s*\n", formatTimestamp(exported)))

	return []byte(sb.String()), nil
}

// FileExtension implements Exporter.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// roleLabel returns a display label for a message role.
func roleLabel(role api.Role) string {
	switch role {
	case api.RoleUser:
		return "[You]"
	case api.RoleModel:
		return "[Assistant]"
	default:
		return string(role)
	}
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break headings.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes values containing YAML special characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
