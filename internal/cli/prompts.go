// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompts.go - Persona (prompt) directory commands.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// RunPrompts handles `doctalk prompts <subcommand>`.
func (a *App) RunPrompts(args *Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list":
		return a.promptsList(args)
	case "show":
		return a.promptsShow(args, parser)
	case "create":
		return a.promptsCreate(parser)
	case "update":
		return a.promptsUpdate(parser)
	case "delete":
		return a.promptsDelete(parser)
	default:
		return fmt.Errorf("unknown prompts subcommand %q; try list, show, create, update, delete", parser.Subcommand())
	}
}

func (a *App) promptsList(args *Args) error {
	ctx, cancel := commandContext()
	defer cancel()
	prompts, err := a.Client.ListPrompts(ctx)
	if err != nil {
		return err
	}

	if args.JSON {
		return a.printJSON(prompts)
	}
	if len(prompts) == 0 {
		fmt.Fprintln(a.Out, dimStyle.Render("No personas defined."))
		return nil
	}

	fmt.Fprintln(a.Out, titleStyle.Render("Personas"))
	for _, p := range prompts {
		fmt.Fprintf(a.Out, "  %s  %s %s\n", p.ID,
			valueStyle.Render(p.Name),
			dimStyle.Render(truncateTo(strings.ReplaceAll(p.Content, "\n", " "), 60)))
	}
	return nil
}

func (a *App) promptsShow(args *Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk prompts show <id>")
	}

	ctx, cancel := commandContext()
	defer cancel()
	prompts, err := a.Client.ListPrompts(ctx)
	if err != nil {
		return err
	}
	for _, p := range prompts {
		if p.ID != id {
			continue
		}
		if args.JSON {
			return a.printJSON(p)
		}
		fmt.Fprintln(a.Out, labelStyle.Render("Name:")+valueStyle.Render(p.Name))
		fmt.Fprintln(a.Out, labelStyle.Render("ID:")+valueStyle.Render(p.ID))
		fmt.Fprintln(a.Out, labelStyle.Render("Created:")+dimStyle.Render(formatAge(p.CreatedAt)))
		fmt.Fprintln(a.Out)
		fmt.Fprintln(a.Out, p.Content)
		return nil
	}
	return fmt.Errorf("persona %s not found", id)
}

// promptContent resolves --content or --content-file into the persona text.
func promptContent(parser *ArgParser) (string, error) {
	if file := parser.Flag("content-file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read content file: %w", err)
		}
		return string(data), nil
	}
	return parser.Flag("content"), nil
}

func (a *App) promptsCreate(parser *ArgParser) error {
	name := parser.Positional(1)
	content, err := promptContent(parser)
	if err != nil {
		return err
	}
	if name == "" || strings.TrimSpace(content) == "" {
		return fmt.Errorf("usage: doctalk prompts create <name> --content TEXT | --content-file FILE")
	}

	ctx, cancel := commandContext()
	defer cancel()
	p, err := a.Client.CreatePrompt(ctx, name, content)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, successStyle.Render("Created persona "+p.ID+" (\""+p.Name+"\")."))
	return nil
}

func (a *App) promptsUpdate(parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk prompts update <id> [--name NAME] [--content TEXT | --content-file FILE]")
	}
	content, err := promptContent(parser)
	if err != nil {
		return err
	}
	name := parser.Flag("name")
	if name == "" && strings.TrimSpace(content) == "" {
		return fmt.Errorf("nothing to update; pass --name or --content")
	}

	ctx, cancel := commandContext()
	defer cancel()
	p, err := a.Client.UpdatePrompt(ctx, id, name, content)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, successStyle.Render("Updated persona "+p.ID+"."))
	return nil
}

func (a *App) promptsDelete(parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk prompts delete <id> [--confirm]")
	}
	if !parser.BoolFlag("confirm") && !a.confirm("Delete persona "+id+"? Existing sessions keep their binding.") {
		return nil
	}

	ctx, cancel := commandContext()
	defer cancel()
	if err := a.Client.DeletePrompt(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, successStyle.Render("Persona deleted."))
	return nil
}
