// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the CLI.
//
// Commands behave differently when piped: colors off, prompts off. These
// helpers centralize the checks. NO_COLOR and FORCE_COLOR are honored.
package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTTY returns true if stdin is a terminal. Interactive prompts (chat,
// delete confirmations) require it.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

const (
	// DefaultTerminalWidth is the fallback when detection fails.
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the narrowest wrap width used.
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the stdout width, clamped to MinTerminalWidth.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

var (
	profileOnce sync.Once
	profile     termenv.Profile
)

// GetColorProfile returns the color profile for stdout, computed once.
// Piped output and NO_COLOR force ASCII; FORCE_COLOR overrides both.
func GetColorProfile() termenv.Profile {
	profileOnce.Do(func() {
		switch {
		case os.Getenv("FORCE_COLOR") != "":
			profile = termenv.ANSI256
		case os.Getenv("NO_COLOR") != "" || !IsStdoutTTY():
			profile = termenv.Ascii
		default:
			profile = termenv.ColorProfile()
		}
	})
	return profile
}
