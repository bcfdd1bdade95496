// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs_DefaultsToTUI(t *testing.T) {
	cmd, _ := ParseArgs([]string{})
	assert.Equal(t, CmdTUI, cmd)
}

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"ask", []string{"ask", "what changed"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"sessions", []string{"sessions", "list"}, CmdSessions},
		{"session alias", []string{"session"}, CmdSessions},
		{"prompts", []string{"prompts"}, CmdPrompts},
		{"personas alias", []string{"personas", "list"}, CmdPrompts},
		{"projects", []string{"projects", "use", "p1"}, CmdProjects},
		{"docs", []string{"docs", "upload", "a.pdf"}, CmdDocs},
		{"history", []string{"history", "show", "s1"}, CmdHistory},
		{"config", []string{"config", "get", "server.base_url"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
		{"explicit tui", []string{"tui"}, CmdTUI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := ParseArgs(tt.argv)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestParseArgs_AskJoinsQueryWords(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "what", "is", "the", "policy"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "what is the policy", args.Query)
}

func TestParseArgs_AskSkipsFlagsInQuery(t *testing.T) {
	_, args := ParseArgs([]string{"ask", "--session", "sess-1", "what", "changed"})
	assert.Equal(t, "what changed", args.Query)
}

func TestParseArgs_UnknownWordBecomesAskQuery(t *testing.T) {
	cmd, args := ParseArgs([]string{"what", "is", "the", "refund", "policy"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "what is the refund policy", args.Query)
}

func TestParseArgs_GlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--json", "-q", "sessions", "list"})
	assert.Equal(t, CmdSessions, cmd)
	assert.True(t, args.JSON)
	assert.True(t, args.Quiet)
}

func TestParseArgs_ServerOverride(t *testing.T) {
	_, args := ParseArgs([]string{"--server", "http://other:9090/api", "status"})
	assert.Equal(t, "http://other:9090/api", args.Server)

	_, args = ParseArgs([]string{"--server=http://eq:9090", "chat"})
	assert.Equal(t, "http://eq:9090", args.Server)
}

func TestParseArgs_SubcommandCaptured(t *testing.T) {
	_, args := ParseArgs([]string{"projects", "provision", "p1"})
	assert.Equal(t, "provision", args.Subcommand)
	assert.Equal(t, []string{"provision", "p1"}, args.Raw)
}

func TestArgParser_FlagFormats(t *testing.T) {
	p := NewArgParser([]string{"export", "sess-1", "--format=json", "--output", "/tmp", "--confirm"})

	assert.Equal(t, "export", p.Subcommand())
	assert.Equal(t, "sess-1", p.Positional(1))
	assert.Equal(t, "json", p.Flag("format"))
	assert.Equal(t, "/tmp", p.Flag("output"))
	assert.True(t, p.BoolFlag("confirm"))
	assert.False(t, p.BoolFlag("wait"))
}

func TestArgParser_ExplicitBooleans(t *testing.T) {
	p := NewArgParser([]string{"status", "--wait=false"})
	assert.False(t, p.BoolFlag("wait"))
	assert.True(t, p.HasFlag("wait"))
}

func TestArgParser_Defaults(t *testing.T) {
	p := NewArgParser([]string{"list"})
	assert.Equal(t, "md", p.FlagOrDefault("format", "md"))
	assert.Equal(t, 50, p.FlagIntOrDefault("limit", 50))
	assert.Equal(t, "", p.Positional(5))
}

func TestArgParser_PositionalFrom(t *testing.T) {
	p := NewArgParser([]string{"rename", "sess-1", "My", "new", "title"})
	assert.Equal(t, []string{"My", "new", "title"}, p.PositionalFrom(2))
	assert.Empty(t, p.PositionalFrom(9))
}

func TestPositionalOnly_FlagValueConsumed(t *testing.T) {
	got := positionalOnly([]string{"--persona", "p1", "hello", "--json", "world"})
	assert.Equal(t, []string{"hello", "world"}, got)
}
