// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model holds the client-side conversation state.
//
// A Conversation is the ordered message list for the active session plus the
// two derived flags the UI renders from: Sending and StreamStatus. It is
// mutated in exactly three ways: a full reset on session or project switch,
// a wholesale replace from an authoritative history fetch, and the Apply
// reducer folding stream events in during a send cycle.
//
// The optimistic-then-reconcile pattern is deliberate: a locally created
// USER message carries a temporary identifier, and the post-stream history
// fetch replaces the whole list rather than merging by identifier, because
// the backend makes no promise that its identifiers match the optimistic
// ones.
package model
