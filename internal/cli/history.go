// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Offline commands over the local history cache.
//
// These read only the sqlite mirror, so they work with the backend down.
// The mirror is written opportunistically after streams reconcile; it can
// lag the server and says so in its output.
package cli

import (
	"fmt"
	"time"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/export"
)

// RunHistory handles `doctalk history <subcommand>`.
func (a *App) RunHistory(args *Args) error {
	if a.History == nil {
		return fmt.Errorf("history cache is disabled; enable workspace.history_cache in the config")
	}

	parser := NewArgParser(args.Raw)
	switch parser.Subcommand() {
	case "", "list":
		return a.historyList(args, parser)
	case "show":
		return a.historyShow(args, parser)
	case "export":
		return a.historyExport(parser)
	default:
		return fmt.Errorf("unknown history subcommand %q; try list, show, export", parser.Subcommand())
	}
}

func (a *App) historyList(args *Args, parser *ArgParser) error {
	projectID := parser.FlagOrDefault("project", a.WS.ActiveProjectID())

	sessions, err := a.History.ListSessions(projectID)
	if err != nil {
		return err
	}

	if args.JSON {
		return a.printJSON(sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(a.Out, dimStyle.Render("No cached sessions."))
		return nil
	}

	fmt.Fprintln(a.Out, titleStyle.Render("Cached sessions")+dimStyle.Render("  (local mirror, may lag the server)"))
	for _, s := range sessions {
		fmt.Fprintf(a.Out, "  %s  %s %s\n", s.ID,
			valueStyle.Render(truncateTo(s.Title, 48)),
			dimStyle.Render(formatAge(s.CreatedAt)))
	}
	return nil
}

func (a *App) historyShow(args *Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk history show <id>")
	}

	messages, err := a.History.GetMessages(id)
	if err != nil {
		return err
	}
	if args.JSON {
		return a.printJSON(messages)
	}
	if len(messages) == 0 {
		fmt.Fprintln(a.Out, dimStyle.Render("No cached messages for this session."))
		return nil
	}
	for _, msg := range messages {
		a.printHistoryMessage(msg)
		fmt.Fprintln(a.Out)
	}
	return nil
}

func (a *App) historyExport(parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk history export <id> [--format md|json] [--output DIR]")
	}

	exporter, err := export.ForFormat(parser.Flag("format"))
	if err != nil {
		return err
	}
	messages, err := a.History.GetMessages(id)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return fmt.Errorf("no cached messages for session %s", id)
	}

	session := api.ChatSession{ID: id}
	if sessions, err := a.History.ListSessions(""); err == nil {
		for _, s := range sessions {
			if s.ID == id {
				session = s
				break
			}
		}
	}

	t := &export.Transcript{Session: session, Messages: messages, Exported: time.Now()}
	path, err := export.ExportToFile(t, exporter, parser.FlagOrDefault("output", "."))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, successStyle.Render("Exported to "+path))
	return nil
}
