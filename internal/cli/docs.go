// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// docs.go - Document commands for the active project.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jeranaias/doctalk-tui/internal/docs"
)

// RunDocs handles `doctalk docs <subcommand>`.
func (a *App) RunDocs(args *Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list":
		return a.docsList(args)
	case "upload":
		return a.docsUpload(args, parser)
	case "watch":
		return a.docsWatch(args, parser)
	default:
		return fmt.Errorf("unknown docs subcommand %q; try list, upload, watch", parser.Subcommand())
	}
}

func (a *App) docsList(args *Args) error {
	projectID, err := a.requireProject()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()
	documents, err := a.Client.ListDocuments(ctx, projectID)
	if err != nil {
		return err
	}

	if args.JSON {
		return a.printJSON(documents)
	}
	if len(documents) == 0 {
		fmt.Fprintln(a.Out, dimStyle.Render("No documents. Add some with `doctalk docs upload <file>`."))
		return nil
	}

	fmt.Fprintln(a.Out, titleStyle.Render("Documents"))
	for _, d := range documents {
		fmt.Fprintf(a.Out, "  %s  %s %s\n",
			valueStyle.Render(d.Name),
			dimStyle.Render(formatBytes(d.SizeBytes)),
			dimStyle.Render(formatAge(d.UpdatedAt)))
	}
	return nil
}

func (a *App) docsUpload(args *Args, parser *ArgParser) error {
	projectID, err := a.requireProject()
	if err != nil {
		return err
	}

	paths := parser.PositionalFrom(1)
	if len(paths) == 0 {
		return fmt.Errorf("usage: doctalk docs upload <file> [file...]")
	}

	uploader := docs.NewAPIUploader(a.Client)
	maxBytes := int64(a.Cfg.Documents.MaxUploadMB) * 1024 * 1024
	failed := 0
	for _, path := range paths {
		objectName, err := a.uploadOne(uploader, projectID, path, maxBytes)
		if err != nil {
			failed++
			fmt.Fprintf(a.Err, "%s %s: %v\n", errorStyle.Render("[failed]"), filepath.Base(path), err)
			continue
		}
		a.infof(args.Quiet, "%s %s -> %s", successStyle.Render("[uploaded]"), filepath.Base(path), objectName)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(paths))
	}
	a.infof(args.Quiet, "%s", dimStyle.Render("Run `doctalk projects sync` to index the new files."))
	return nil
}

// uploadOne stats, size-checks and uploads a single file.
func (a *App) uploadOne(uploader *docs.APIUploader, projectID, path string, maxBytes int64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return "", fmt.Errorf("file is %s, limit is %s", formatBytes(info.Size()), formatBytes(maxBytes))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*commandTimeout)
	defer cancel()
	return uploader.UploadDocument(ctx, projectID, path)
}

func (a *App) docsWatch(args *Args, parser *ArgParser) error {
	projectID, err := a.requireProject()
	if err != nil {
		return err
	}

	dir := parser.Positional(1)
	if dir == "" {
		dir = a.Cfg.Documents.WatchDir
	}
	if dir == "" {
		return fmt.Errorf("no watch directory; pass one or set documents.watch_dir in the config")
	}

	uploader := docs.NewAPIUploader(a.Client)
	maxBytes := int64(a.Cfg.Documents.MaxUploadMB) * 1024 * 1024
	watcher, err := docs.NewWatcher(dir, projectID, uploader, maxBytes)
	if err != nil {
		return err
	}
	if err := watcher.Watch(); err != nil {
		return err
	}
	defer watcher.Close()

	a.infof(args.Quiet, "Watching %s for documents. Ctrl+C to stop.", dir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			fmt.Fprintln(a.Out)
			return nil
		case res := <-watcher.Results():
			if res.Err != nil {
				fmt.Fprintf(a.Err, "%s %s: %v\n", errorStyle.Render("[failed]"), filepath.Base(res.Path), res.Err)
				continue
			}
			a.infof(args.Quiet, "%s %s -> %s", successStyle.Render("[uploaded]"), filepath.Base(res.Path), res.ObjectName)
		}
	}
}
