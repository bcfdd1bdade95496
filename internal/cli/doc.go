// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the scriptable command surface of doctalk.
//
// Every operation the TUI offers is reachable here as a plain command so
// the client works in pipes and scripts: one-shot questions (ask), an
// interactive REPL (chat), and CRUD over sessions, prompts, projects and
// documents. Commands write human output to stdout by default and JSON
// with --json.
package cli
