// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Small shared helpers for command handlers.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// commandTimeout bounds every non-streaming call issued by a handler.
const commandTimeout = 30 * time.Second

// commandContext returns a context for one directory call.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// requireProject returns the active project id or an instructive error.
func (a *App) requireProject() (string, error) {
	id := a.WS.ActiveProjectID()
	if id == "" {
		return "", fmt.Errorf("no active project; run `doctalk projects list` then `doctalk projects use <id>`")
	}
	return id, nil
}

// printJSON writes v as indented JSON to stdout.
func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// infof writes an informational line unless --quiet.
func (a *App) infof(quiet bool, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(a.Out, format+"\n", args...)
}

// confirm asks a yes/no question on the terminal. Non-TTY input answers no,
// so destructive commands in scripts must pass --confirm.
func (a *App) confirm(prompt string) bool {
	if !IsTTY() {
		return false
	}
	fmt.Fprintf(a.Out, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// formatAge renders a timestamp as a compact relative age.
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// formatBytes renders a byte count in a human unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// truncateTo shortens s to max runes with an ellipsis.
func truncateTo(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
