// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// projects.go - Project (knowledge base) directory commands.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// statusPollInterval is the delay between indexing-status polls with --wait.
const statusPollInterval = 3 * time.Second

// RunProjects handles `doctalk projects <subcommand>`.
func (a *App) RunProjects(args *Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list":
		return a.projectsList(args)
	case "create":
		return a.projectsCreate(args, parser)
	case "use":
		return a.projectsUse(parser)
	case "provision":
		return a.projectsProvision(parser)
	case "sync":
		return a.projectsSync(parser)
	case "status":
		return a.projectsStatus(args, parser)
	case "delete":
		return a.projectsDelete(parser)
	default:
		return fmt.Errorf("unknown projects subcommand %q; try list, create, use, provision, sync, status, delete", parser.Subcommand())
	}
}

func (a *App) projectsList(args *Args) error {
	ctx, cancel := commandContext()
	defer cancel()
	projects, err := a.Client.ListProjects(ctx)
	if err != nil {
		return err
	}

	if args.JSON {
		return a.printJSON(projects)
	}
	if len(projects) == 0 {
		fmt.Fprintln(a.Out, dimStyle.Render("No projects. Create one with `doctalk projects create <name>`."))
		return nil
	}

	active := a.WS.ActiveProjectID()
	fmt.Fprintln(a.Out, titleStyle.Render("Projects"))
	for _, p := range projects {
		marker := "  "
		if p.ID == active {
			marker = successStyle.Render("* ")
		}
		fmt.Fprintf(a.Out, "%s%s  %s %s %s\n", marker, p.ID,
			valueStyle.Render(p.Name),
			renderProjectStatus(p.Status),
			dimStyle.Render(string(p.StorageMode)))
	}
	return nil
}

func renderProjectStatus(s api.ProjectStatus) string {
	switch s {
	case api.ProjectReady:
		return successStyle.Render("[ready]")
	case api.ProjectFailed:
		return errorStyle.Render("[failed]")
	case api.ProjectProvisioning:
		return warningStyle.Render("[provisioning]")
	default:
		return dimStyle.Render("[" + strings.ToLower(string(s)) + "]")
	}
}

func (a *App) projectsCreate(args *Args, parser *ArgParser) error {
	name := strings.Join(parser.PositionalFrom(1), " ")
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("usage: doctalk projects create <name> [--mode managed|byob --bucket NAME --prefix P]")
	}

	mode := api.StorageManaged
	if strings.EqualFold(parser.Flag("mode"), "byob") {
		mode = api.StorageBYOB
		if parser.Flag("bucket") == "" {
			return fmt.Errorf("--mode byob requires --bucket")
		}
	}

	ctx, cancel := commandContext()
	defer cancel()
	p, err := a.Client.CreateProject(ctx, name, mode, parser.Flag("bucket"), parser.Flag("prefix"))
	if err != nil {
		return err
	}

	if args.JSON {
		return a.printJSON(p)
	}
	fmt.Fprintln(a.Out, successStyle.Render("Created project "+p.ID+" (\""+p.Name+"\")."))
	fmt.Fprintln(a.Out, dimStyle.Render("Run `doctalk projects provision "+p.ID+"` to set up storage."))
	return nil
}

func (a *App) projectsUse(parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk projects use <id>")
	}

	ctx, cancel := commandContext()
	defer cancel()
	p, err := a.Client.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if err := a.WS.SetActiveProject(p.ID, p.Name); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, successStyle.Render("Active project: "+p.Name+" ("+p.ID+")."))
	return nil
}

func (a *App) projectsProvision(parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk projects provision <id>")
	}

	ctx, cancel := commandContext()
	defer cancel()
	p, err := a.Client.ProvisionProject(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Provisioning started: %s %s\n", p.ID, renderProjectStatus(p.Status))
	return nil
}

func (a *App) projectsSync(parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		id = a.WS.ActiveProjectID()
	}
	if id == "" {
		return fmt.Errorf("usage: doctalk projects sync <id>")
	}

	ctx, cancel := commandContext()
	defer cancel()
	p, err := a.Client.SyncProject(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Reindex started for %s. Import: %s\n", p.ID, dimStyle.Render(p.ImportStatus))
	if parser.BoolFlag("wait") {
		return a.waitForIndexing(id)
	}
	return nil
}

func (a *App) projectsStatus(args *Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		id = a.WS.ActiveProjectID()
	}
	if id == "" {
		return fmt.Errorf("usage: doctalk projects status <id> [--wait]")
	}

	if parser.BoolFlag("wait") {
		return a.waitForIndexing(id)
	}

	ctx, cancel := commandContext()
	defer cancel()
	status, err := a.Client.GetIndexingStatus(ctx, id)
	if err != nil {
		return err
	}

	if args.JSON {
		return a.printJSON(status)
	}
	fmt.Fprintln(a.Out, labelStyle.Render("Project:")+valueStyle.Render(status.ProjectID))
	fmt.Fprintln(a.Out, labelStyle.Render("Import:")+valueStyle.Render(status.ImportStatus))
	if status.Detail != "" {
		fmt.Fprintln(a.Out, labelStyle.Render("Detail:")+dimStyle.Render(status.Detail))
	}
	return nil
}

// waitForIndexing polls until the import leaves its running states.
func (a *App) waitForIndexing(projectID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		pollCtx, pollCancel := context.WithTimeout(ctx, commandTimeout)
		status, err := a.Client.GetIndexingStatus(pollCtx, projectID)
		pollCancel()
		if err != nil {
			return err
		}

		switch strings.ToUpper(status.ImportStatus) {
		case "RUNNING", "PENDING", "IN_PROGRESS", "":
			fmt.Fprintln(a.Err, statusStyle.Render("indexing: "+status.ImportStatus))
		case "FAILED":
			return fmt.Errorf("indexing failed: %s", status.Detail)
		default:
			fmt.Fprintln(a.Out, successStyle.Render("Indexing complete: "+status.ImportStatus))
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for indexing: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (a *App) projectsDelete(parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: doctalk projects delete <id> [--confirm]")
	}
	if !parser.BoolFlag("confirm") && !a.confirm("Delete project "+id+", its sessions and its index?") {
		return nil
	}

	ctx, cancel := commandContext()
	defer cancel()
	if err := a.Client.DeleteProject(ctx, id); err != nil {
		return err
	}
	if a.WS.ActiveProjectID() == id {
		a.WS.ClearActiveProject()
	}
	fmt.Fprintln(a.Out, successStyle.Render("Project deleted."))
	return nil
}
