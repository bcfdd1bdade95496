// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and dispatch for doctalk.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/config"
	"github.com/jeranaias/doctalk-tui/internal/storage"
	"github.com/jeranaias/doctalk-tui/internal/workspace"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdPrompts
	CmdProjects
	CmdDocs
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Server  string // --server overrides the configured base URL

	// Command-specific
	Query      string
	Subcommand string

	// Raw args remaining after global flag parsing, minus the command word.
	Raw []string
}

const usageText = `doctalk - terminal client for your document chat backend

Doctalk talks to a RAG chat server: you upload documents into projects,
then ask questions and get streamed, cited answers.

Usage:
  doctalk                        Start the TUI (default)
  doctalk ask "question"         Ask one question, print the cited answer
    --session ID                 Continue an existing session
    --persona ID                 Bind a persona (new sessions only)
    --json                       Print the reply as JSON
  doctalk chat                   Interactive REPL with input history
  doctalk sessions [subcommand]  Session management
    list | show ID | rename ID TITLE | delete ID | export ID [--format md|json]
  doctalk prompts [subcommand]   Persona management
    list | show ID | create NAME --content TEXT | update ID | delete ID
  doctalk projects [subcommand]  Project management
    list | create NAME [--mode managed|byob --bucket NAME --prefix P]
    use ID | provision ID | sync ID | status ID [--wait] | delete ID
  doctalk docs [subcommand]      Document management for the active project
    list | upload FILE... | watch [DIR]
  doctalk history [subcommand]   Offline local history (no network)
    list | show ID | export ID [--format md|json]
  doctalk config [subcommand]    Configuration
    show | get KEY | set KEY VALUE | path
  doctalk version                Show version information
  doctalk help                   Show this help

Global flags:
  --server URL                   Override the configured backend URL
  --json                         Machine-readable output where supported
  -q, --quiet                    Suppress informational output
  --verbose                      Extra diagnostics on stderr

Configuration lives in ~/.doctalk/config.toml. Run "doctalk config show"
to see the effective values.`

// ParseArgs parses os.Args style input into a command and its arguments.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := remaining[0]
	rest := remaining[1:]
	parsed.Raw = rest
	if len(rest) > 0 {
		parsed.Subcommand = rest[0]
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "ask":
		parsed.Query = strings.Join(positionalOnly(rest), " ")
		return CmdAsk, parsed

	case "chat":
		return CmdChat, parsed

	case "sessions", "session":
		return CmdSessions, parsed

	case "prompts", "prompt", "personas", "persona":
		return CmdPrompts, parsed

	case "projects", "project":
		return CmdProjects, parsed

	case "docs", "documents", "doc":
		return CmdDocs, parsed

	case "history":
		return CmdHistory, parsed

	case "config":
		return CmdConfig, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		// Unknown word: treat the whole line as an ask query. This makes
		// `doctalk what is the refund policy` do the obvious thing.
		parsed.Query = strings.Join(remaining, " ")
		parsed.Raw = remaining
		parsed.Subcommand = ""
		return CmdAsk, parsed
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	parsed := Args{}

	i := 0
	for i < len(argv) {
		arg := argv[i]

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--server":
			if i+1 < len(argv) {
				i++
				parsed.Server = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--server=") {
				parsed.Server = strings.TrimPrefix(arg, "--server=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsed
}

// positionalOnly strips flag-looking tokens and flag values so a query like
// `ask --session abc "what changed"` keeps only the words.
func positionalOnly(args []string) []string {
	var out []string
	i := 0
	for i < len(args) {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			// A flag without "=" consumes the next token as its value,
			// except for known boolean flags.
			if !strings.Contains(arg, "=") && !isBoolFlag(arg) && i+1 < len(args) {
				i++
			}
			i++
			continue
		}
		out = append(out, arg)
		i++
	}
	return out
}

func isBoolFlag(arg string) bool {
	switch strings.TrimLeft(arg, "-") {
	case "json", "quiet", "verbose", "wait", "confirm", "yes", "y":
		return true
	}
	return false
}

// =============================================================================
// APP - COMMAND DISPATCH
// =============================================================================

// App carries the dependencies shared by every command handler.
type App struct {
	Client  *api.Client
	WS      *workspace.Store
	History *storage.History // nil when the local cache is disabled
	Cfg     *config.Config

	Out io.Writer
	Err io.Writer
}

// NewApp builds an App writing to the process streams.
func NewApp(client *api.Client, ws *workspace.Store, history *storage.History, cfg *config.Config) *App {
	return &App{
		Client:  client,
		WS:      ws,
		History: history,
		Cfg:     cfg,
		Out:     os.Stdout,
		Err:     os.Stderr,
	}
}

// Run executes a parsed command. The TUI command is handled by the caller;
// Run reports it as unsupported so main can fall through to the UI path.
func (a *App) Run(cmd Command, args *Args) error {
	switch cmd {
	case CmdAsk:
		return a.RunAsk(args)
	case CmdChat:
		return a.RunChat(args)
	case CmdSessions:
		return a.RunSessions(args)
	case CmdPrompts:
		return a.RunPrompts(args)
	case CmdProjects:
		return a.RunProjects(args)
	case CmdDocs:
		return a.RunDocs(args)
	case CmdHistory:
		return a.RunHistory(args)
	case CmdConfig:
		return a.RunConfig(args)
	case CmdVersion:
		a.PrintVersion()
		return nil
	case CmdHelp:
		a.PrintUsage()
		return nil
	default:
		return fmt.Errorf("command not handled here: %d", cmd)
	}
}

// PrintUsage writes the full usage text.
func (a *App) PrintUsage() {
	fmt.Fprintln(a.Out, usageText)
}

// PrintVersion writes build information.
func (a *App) PrintVersion() {
	fmt.Fprintf(a.Out, "doctalk %s\n", Version)
	fmt.Fprintf(a.Out, "  commit:  %s\n", GitCommit)
	fmt.Fprintf(a.Out, "  built:   %s\n", BuildDate)
	fmt.Fprintf(a.Out, "  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
