// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// askReply is the --json output shape for ask.
type askReply struct {
	SessionID string         `json:"sessionId"`
	Text      string         `json:"text"`
	Citations []api.Citation `json:"citations,omitempty"`
}

// RunAsk sends one question and prints the full reply. Text deltas stream
// to stdout as they arrive; citations print as a footer at the end.
// With --json the stream is accumulated silently and emitted as one object.
func (a *App) RunAsk(args *Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return fmt.Errorf("usage: doctalk ask \"your question\"")
	}

	parser := NewArgParser(args.Raw)
	sessionID := parser.Flag("session")
	personaID := parser.Flag("persona")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C cancels the stream instead of killing the process mid-line.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	if sessionID == "" {
		projectID, err := a.requireProject()
		if err != nil {
			return err
		}
		session, err := a.Client.CreateSession(ctx, projectID, personaID)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		sessionID = session.ID
		a.mirrorSession(*session)
	} else if personaID != "" {
		return fmt.Errorf("--persona applies to new sessions only; it is fixed once a session exists")
	}

	events, errs := a.Client.StreamMessage(ctx, sessionID, query)

	var acc api.ReplyAccumulator
	streaming := !args.JSON && !args.Quiet

	for ev := range events {
		acc.Add(ev)
		if !streaming {
			continue
		}
		switch ev.Kind {
		case api.EventStatus:
			fmt.Fprintln(a.Err, statusStyle.Render("["+ev.Status+"]"))
		case api.EventText:
			fmt.Fprint(a.Out, ev.Text)
		}
	}
	if err := <-errs; err != nil {
		if streaming {
			fmt.Fprintln(a.Out)
		}
		return fmt.Errorf("stream: %w", err)
	}

	if args.JSON {
		return a.printJSON(askReply{
			SessionID: sessionID,
			Text:      acc.Text(),
			Citations: acc.Citations(),
		})
	}

	if args.Quiet {
		fmt.Fprintln(a.Out, acc.Text())
	} else {
		fmt.Fprintln(a.Out)
		printCitations(a, acc.Citations())
		fmt.Fprintln(a.Err, dimStyle.Render("session: "+sessionID))
	}

	a.mirrorMessages(ctx, sessionID)
	return nil
}

// printCitations writes the source footer used by ask and chat.
func printCitations(a *App, citations []api.Citation) {
	if len(citations) == 0 {
		return
	}
	fmt.Fprintln(a.Out, citationStyle.Render("Sources:"))
	for _, c := range citations {
		label := c.URI
		if c.Title != "" {
			label = c.Title + " (" + c.URI + ")"
		}
		fmt.Fprintln(a.Out, citationStyle.Render("  - "+label))
	}
}

// mirrorSession records a session in the local cache, best effort.
func (a *App) mirrorSession(s api.ChatSession) {
	if a.History == nil {
		return
	}
	if err := a.History.MirrorSession(s); err != nil {
		fmt.Fprintln(a.Err, dimStyle.Render("history cache: "+err.Error()))
	}
}

// mirrorMessages refetches and caches the session transcript, best effort.
func (a *App) mirrorMessages(ctx context.Context, sessionID string) {
	if a.History == nil {
		return
	}
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	messages, err := a.Client.GetMessages(fetchCtx, sessionID)
	if err != nil {
		return
	}
	if err := a.History.MirrorMessages(sessionID, messages); err != nil {
		fmt.Fprintln(a.Err, dimStyle.Render("history cache: "+err.Error()))
	}
}
