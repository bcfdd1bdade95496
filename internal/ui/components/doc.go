// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the TUI:
// header, status bar, spinner, error toast, code blocks, citation lists,
// and the generic picker used for sessions, projects, and personas.
package components
