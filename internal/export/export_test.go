// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

func sampleTranscript() *Transcript {
	return &Transcript{
		Session: api.ChatSession{
			ID:        "sess-1",
			ProjectID: "proj-1",
			PromptID:  "persona-1",
			Title:     "Warranty questions",
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		Messages: []api.ChatMessage{
			{ID: "m1", SessionID: "sess-1", Role: api.RoleUser,
				Content: "What does the warranty cover?", CreatedAt: time.Date(2025, 6, 1, 10, 0, 5, 0, time.UTC)},
			{ID: "m2", SessionID: "sess-1", Role: api.RoleModel,
				Content: "The warranty covers parts and labor for two years.",
				Citations: []api.Citation{
					{URI: "gs://bucket/warranty.pdf", Title: "Warranty Terms"},
					{URI: "gs://bucket/faq.md"},
				},
				CreatedAt: time.Date(2025, 6, 1, 10, 0, 9, 0, time.UTC)},
		},
		Exported: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestMarkdownExport_Content(t *testing.T) {
	content, err := (&MarkdownExporter{}).Export(sampleTranscript())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	out := string(content)

	for _, want := range []string{
		"title: Warranty questions",
		"session: sess-1",
		"persona: persona-1",
		"[You]",
		"[Assistant]",
		"What does the warranty cover?",
		"parts and labor",
		"**Sources**:",
		"Warranty Terms",
		"`gs://bucket/faq.md`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestMarkdownExport_EmptyTranscript(t *testing.T) {
	_, err := (&MarkdownExporter{}).Export(&Transcript{Session: api.ChatSession{ID: "s"}})
	if err == nil {
		t.Error("empty transcript should be rejected")
	}
}

func TestJSONExport_RoundTrips(t *testing.T) {
	in := sampleTranscript()
	content, err := (&JSONExporter{}).Export(in)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var out Transcript
	if err := json.Unmarshal(content, &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Session.ID != "sess-1" || len(out.Messages) != 2 {
		t.Errorf("round trip lost data: %+v", out)
	}
	if out.Messages[1].Citations[0].URI != "gs://bucket/warranty.pdf" {
		t.Error("citations should survive the round trip")
	}
}

func TestForFormat(t *testing.T) {
	if _, err := ForFormat("markdown"); err != nil {
		t.Errorf("markdown: %v", err)
	}
	if _, err := ForFormat(""); err != nil {
		t.Errorf("default: %v", err)
	}
	if _, err := ForFormat("json"); err != nil {
		t.Errorf("json: %v", err)
	}
	if _, err := ForFormat("docx"); err == nil {
		t.Error("unknown format should error")
	}
}

func TestExportToFile_WritesFile(t *testing.T) {
	dir := t.TempDir()

	path, err := ExportToFile(sampleTranscript(), &MarkdownExporter{}, dir)
	if err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("path = %q, want .md suffix", path)
	}
	if !strings.Contains(path, "Warranty_questions") {
		t.Errorf("path = %q, want sanitized title", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.Contains(string(data), "# Warranty questions") {
		t.Error("exported file missing title heading")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"simple", "simple"},
		{"has spaces", "has_spaces"},
		{"slash/colon:star*", "slash-colon-star-"},
		{"", "chat"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
