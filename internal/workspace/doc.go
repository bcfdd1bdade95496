// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workspace persists the client's project selection between runs.
//
// The Store is an explicit, injected state container: read the active
// project, change it, clear it. Persistence is a pluggable key-value
// capability (the KV interface); the default backing is an atomic JSON file
// under the workspace directory, so a crash never leaves a half-written
// state file. The stored selection is eventually consistent with the
// backend and refreshed by explicit project list fetches, not by
// subscription.
package workspace
