// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL chat command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI wraps liner with a persistent history file, giving the REPL
// arrow-key history and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates the liner state and loads history from historyDir.
func NewChatCLI(historyDir string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(historyDir, "chat_history"),
	}
	c.loadHistory()
	return c
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with history support. Non-blank input is
// appended to the in-memory history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		c.line.WriteHistory(f)
		f.Close()
	}
	c.line.Close()
}

// =============================================================================
// REPL STATE
// =============================================================================

// chatState is the live REPL conversation.
type chatState struct {
	projectID string
	sessionID string
	personaID string
	title     string

	cancel context.CancelFunc // active stream cancel, nil when idle
}

const chatHelpText = `Commands:
  /new               Start a fresh conversation
  /sessions          List sessions in this project
  /open <id>         Resume an existing session
  /persona <id>      Bind a persona (before the first message only)
  /rename <title>    Rename the current session
  /delete            Delete the current session
  /export [md|json]  Export the transcript to a file
  /help              Show this help
  /quit              Exit

Anything else is sent to the assistant.`

// RunChat starts the interactive REPL.
func (a *App) RunChat(args *Args) error {
	if !IsTTY() {
		return fmt.Errorf("chat needs an interactive terminal; use `doctalk ask` in scripts")
	}

	projectID, err := a.requireProject()
	if err != nil {
		return err
	}

	historyDir, err := a.Cfg.WorkspaceDir()
	if err != nil {
		historyDir = os.TempDir()
	}
	input := NewChatCLI(historyDir)
	defer input.Close()

	st := &chatState{projectID: projectID}

	// First Ctrl+C during a stream cancels it; at the prompt liner
	// surfaces it as ErrPromptAborted.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			if st.cancel != nil {
				st.cancel()
				fmt.Fprintln(a.Err, "\n"+warningStyle.Render("[cancelled]"))
			}
		}
	}()

	if !args.Quiet {
		sel, _ := a.WS.ActiveProject()
		fmt.Fprintln(a.Out, titleStyle.Render("doctalk chat")+dimStyle.Render("  project: "+sel.Name))
		fmt.Fprintln(a.Out, dimStyle.Render("Type /help for commands, /quit to leave."))
	}

	for {
		line, err := input.ReadInput(promptStyle.Render("doctalk> "))
		if err != nil {
			// Ctrl+C at the prompt or Ctrl+D both end the REPL.
			fmt.Fprintln(a.Out)
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := a.handleChatCommand(line, st)
			if err != nil {
				fmt.Fprintf(a.Err, "%s %v\n", errorStyle.Render("[error]"), err)
			}
			if done {
				return nil
			}
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		if err := a.sendChatMessage(st, line); err != nil {
			fmt.Fprintf(a.Err, "%s %v\n", errorStyle.Render("[error]"), err)
		}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleChatCommand dispatches a /command. Returns done=true to exit.
func (a *App) handleChatCommand(line string, st *chatState) (bool, error) {
	name, rest, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return true, nil

	case "help":
		fmt.Fprintln(a.Out, chatHelpText)
		return false, nil

	case "new":
		st.sessionID = ""
		st.personaID = ""
		st.title = ""
		fmt.Fprintln(a.Out, dimStyle.Render("Fresh conversation. Next message starts a new session."))
		return false, nil

	case "sessions":
		ctx, cancel := commandContext()
		defer cancel()
		sessions, err := a.Client.ListSessions(ctx, st.projectID)
		if err != nil {
			return false, err
		}
		if len(sessions) == 0 {
			fmt.Fprintln(a.Out, dimStyle.Render("No sessions yet."))
			return false, nil
		}
		for _, s := range sessions {
			marker := "  "
			if s.ID == st.sessionID {
				marker = successStyle.Render("* ")
			}
			fmt.Fprintf(a.Out, "%s%s  %s %s\n", marker, s.ID,
				valueStyle.Render(truncateTo(s.Title, 48)),
				dimStyle.Render(formatAge(s.CreatedAt)))
		}
		return false, nil

	case "open":
		if rest == "" {
			return false, fmt.Errorf("usage: /open <session-id>")
		}
		ctx, cancel := commandContext()
		defer cancel()
		messages, err := a.Client.GetMessages(ctx, rest)
		if err != nil {
			return false, err
		}
		st.sessionID = rest
		st.personaID = ""
		fmt.Fprintf(a.Out, "%s\n", dimStyle.Render(fmt.Sprintf("Resumed session %s (%d messages).", rest, len(messages))))
		for _, msg := range messages {
			a.printHistoryMessage(msg)
		}
		return false, nil

	case "persona":
		if st.sessionID != "" {
			return false, fmt.Errorf("persona is fixed once the session exists; use /new first")
		}
		st.personaID = rest
		if rest == "" {
			fmt.Fprintln(a.Out, dimStyle.Render("Using the default persona."))
		} else {
			fmt.Fprintln(a.Out, dimStyle.Render("Next session will use persona "+rest+"."))
		}
		return false, nil

	case "rename":
		if st.sessionID == "" {
			return false, fmt.Errorf("no session yet; send a message first")
		}
		if rest == "" {
			return false, fmt.Errorf("usage: /rename <new title>")
		}
		ctx, cancel := commandContext()
		defer cancel()
		s, err := a.Client.RenameSession(ctx, st.sessionID, rest)
		if err != nil {
			return false, err
		}
		st.title = s.Title
		a.mirrorSession(*s)
		fmt.Fprintln(a.Out, successStyle.Render("Renamed to \""+s.Title+"\"."))
		return false, nil

	case "delete":
		if st.sessionID == "" {
			return false, fmt.Errorf("no session to delete")
		}
		if !a.confirm("Delete this session and its messages?") {
			return false, nil
		}
		ctx, cancel := commandContext()
		defer cancel()
		if err := a.Client.DeleteSession(ctx, st.sessionID); err != nil {
			return false, err
		}
		if a.History != nil {
			a.History.DeleteSession(st.sessionID)
		}
		st.sessionID = ""
		st.title = ""
		fmt.Fprintln(a.Out, successStyle.Render("Session deleted."))
		return false, nil

	case "export":
		if st.sessionID == "" {
			return false, fmt.Errorf("nothing to export yet")
		}
		path, err := a.exportSession(st.sessionID, st.title, rest)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(a.Out, successStyle.Render("Exported to "+path))
		return false, nil

	default:
		return false, fmt.Errorf("unknown command /%s; try /help", name)
	}
}

// printHistoryMessage renders one stored message when resuming a session.
func (a *App) printHistoryMessage(msg api.ChatMessage) {
	if msg.Role == api.RoleUser {
		fmt.Fprintln(a.Out, promptStyle.Render("you> ")+msg.Content)
		return
	}
	fmt.Fprintln(a.Out, msg.Content)
	printCitations(a, msg.Citations)
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// sendChatMessage streams one exchange, creating the session on first use.
func (a *App) sendChatMessage(st *chatState, text string) error {
	ctx, cancel := context.WithCancel(context.Background())
	st.cancel = cancel
	defer func() {
		st.cancel = nil
		cancel()
	}()

	if st.sessionID == "" {
		session, err := a.Client.CreateSession(ctx, st.projectID, st.personaID)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		st.sessionID = session.ID
		st.title = session.Title
		a.mirrorSession(*session)
	}

	events, errs := a.Client.StreamMessage(ctx, st.sessionID, text)

	var acc api.ReplyAccumulator
	sawText := false
	for ev := range events {
		acc.Add(ev)
		switch ev.Kind {
		case api.EventStatus:
			if !sawText {
				fmt.Fprintln(a.Err, statusStyle.Render("["+ev.Status+"]"))
			}
		case api.EventText:
			sawText = true
			fmt.Fprint(a.Out, ev.Text)
		}
	}
	err := <-errs

	if sawText {
		fmt.Fprintln(a.Out)
	}
	if err != nil {
		var streamErr *api.StreamError
		if errors.As(err, &streamErr) {
			err = streamErr.Err
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	printCitations(a, acc.Citations())
	a.mirrorMessages(ctx, st.sessionID)
	return nil
}
