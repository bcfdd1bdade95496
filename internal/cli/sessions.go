// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Session directory commands.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/export"
)

// RunSessions handles `doctalk sessions <subcommand>`.
func (a *App) RunSessions(args *Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list":
		return a.sessionsList(args, parser)
	case "show":
		return a.sessionsShow(args, parser)
	case "rename":
		return a.sessionsRename(parser)
	case "delete":
		return a.sessionsDelete(parser)
	case "export":
		return a.sessionsExport(parser)
	default:
		return fmt.Errorf("unknown sessions subcommand %q; try list, show, rename, delete, export", parser.Subcommand())
	}
}

func (a *App) sessionsList(args *Args, parser *ArgParser) error {
	projectID := parser.FlagOrDefault("project", a.WS.ActiveProjectID())
	if projectID == "" {
		return fmt.Errorf("no active project; pass --project or run `doctalk projects use <id>`")
	}

	ctx, cancel := commandContext()
	defer cancel()
	sessions, err := a.Client.ListSessions(ctx, projectID)
	if err != nil {
		return err
	}

	if args.JSON {
		return a.printJSON(sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(a.Out, dimStyle.Render("No sessions in this project."))
		return nil
	}

	fmt.Fprintln(a.Out, titleStyle.Render("Sessions"))
	for _, s := range sessions {
		persona := ""
		if s.PromptID != "" {
			persona = dimStyle.Render("  persona:" + s.PromptID)
		}
		fmt.Fprintf(a.Out, "  %s  %s %s%s\n", s.ID,
			valueStyle.Render(truncateTo(s.Title, 48)),
			dimStyle.Render(formatAge(s.CreatedAt)), persona)
	}
	return nil
}

func (a *App) sessionsShow(args *Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk sessions show <id>")
	}

	ctx, cancel := commandContext()
	defer cancel()
	messages, err := a.Client.GetMessages(ctx, id)
	if err != nil {
		return err
	}
	if a.History != nil {
		a.History.MirrorMessages(id, messages)
	}

	if args.JSON {
		return a.printJSON(messages)
	}
	for _, msg := range messages {
		a.printHistoryMessage(msg)
		fmt.Fprintln(a.Out)
	}
	return nil
}

func (a *App) sessionsRename(parser *ArgParser) error {
	id := parser.Positional(1)
	title := strings.Join(parser.PositionalFrom(2), " ")
	if id == "" || strings.TrimSpace(title) == "" {
		return fmt.Errorf("usage: doctalk sessions rename <id> <new title>")
	}

	ctx, cancel := commandContext()
	defer cancel()
	s, err := a.Client.RenameSession(ctx, id, title)
	if err != nil {
		return err
	}
	a.mirrorSession(*s)
	fmt.Fprintln(a.Out, successStyle.Render("Renamed to \""+s.Title+"\"."))
	return nil
}

func (a *App) sessionsDelete(parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk sessions delete <id> [--confirm]")
	}
	if !parser.BoolFlag("confirm") && !a.confirm("Delete session "+id+" and its messages?") {
		return nil
	}

	ctx, cancel := commandContext()
	defer cancel()
	if err := a.Client.DeleteSession(ctx, id); err != nil {
		return err
	}
	if a.History != nil {
		a.History.DeleteSession(id)
	}
	fmt.Fprintln(a.Out, successStyle.Render("Session deleted."))
	return nil
}

func (a *App) sessionsExport(parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk sessions export <id> [--format md|json] [--output DIR]")
	}

	path, err := a.exportSessionTo(id, "", parser.Flag("format"), parser.FlagOrDefault("output", "."))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, successStyle.Render("Exported to "+path))
	return nil
}

// exportSession exports into the current directory; used by the REPL.
func (a *App) exportSession(id, title, format string) (string, error) {
	return a.exportSessionTo(id, title, format, ".")
}

// exportSessionTo fetches a transcript and writes it with the chosen
// exporter. An empty format means markdown.
func (a *App) exportSessionTo(id, title, format, outputDir string) (string, error) {
	exporter, err := export.ForFormat(format)
	if err != nil {
		return "", err
	}

	ctx, cancel := commandContext()
	defer cancel()
	messages, err := a.Client.GetMessages(ctx, id)
	if err != nil {
		return "", err
	}

	session := api.ChatSession{ID: id, Title: title}
	if title == "" {
		// List lookups are cheap relative to losing the title in the
		// exported filename.
		if projectID := a.WS.ActiveProjectID(); projectID != "" {
			if sessions, err := a.Client.ListSessions(ctx, projectID); err == nil {
				for _, s := range sessions {
					if s.ID == id {
						session = s
						break
					}
				}
			}
		}
	}

	t := &export.Transcript{Session: session, Messages: messages, Exported: time.Now()}
	return export.ExportToFile(t, exporter, outputDir)
}
