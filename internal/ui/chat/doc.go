// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the interactive chat view.
//
// The Bubble Tea model here owns the screen; conversation state lives in
// internal/model and is only mutated through its reducer. Stream events
// arrive on a channel from the API client, text deltas are batched through
// a frame-rate-capped buffer, and every stream end (success, error, or
// cancel) funnels through the same cleanup and reconciliation path.
package chat
