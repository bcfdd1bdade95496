// doctalk - terminal client for a document chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/cli"
	"github.com/jeranaias/doctalk-tui/internal/config"
	"github.com/jeranaias/doctalk-tui/internal/storage"
	"github.com/jeranaias/doctalk-tui/internal/ui/chat"
	"github.com/jeranaias/doctalk-tui/internal/workspace"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.ParseArgs(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnvOverrides()
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}
	config.SetGlobal(cfg)

	client := api.New(cfg.Server.BaseURL).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.Server.MaxRetries).
		WithRateLimit(cfg.Server.RateLimitRPS)
	if args.Verbose {
		client = client.WithDiagnostics(os.Stderr)
	}

	workspaceDir, err := cfg.WorkspaceDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "workspace: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(workspaceDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "workspace: %v\n", err)
		os.Exit(1)
	}

	ws, err := workspace.Open(workspace.NewFileKV(workspaceDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "workspace: %v\n", err)
		os.Exit(1)
	}

	// The history cache is optional; a broken sqlite file degrades to
	// online-only operation instead of blocking startup.
	var history *storage.History
	if cfg.Workspace.HistoryCache {
		h, err := storage.OpenHistory(filepath.Join(workspaceDir, "history.db"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "history cache disabled: %v\n", err)
		} else {
			history = h
			defer history.Close()
		}
	}

	app := cli.NewApp(client, ws, history, cfg)

	if cmd == cli.CmdTUI {
		runTUI(client, ws, history, cfg)
		return
	}

	if err := app.Run(cmd, &args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(client *api.Client, ws *workspace.Store, history *storage.History, cfg *config.Config) {
	m := chat.New(client, ws, history, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
