// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local history cache.
//
// The cache is a read-through sqlite mirror of sessions and messages. It is
// written at exactly one point: the reconciliation step after a stream ends,
// when the backend's authoritative history is fetched anyway. The read path
// serves the offline `history` and `show` commands; it never feeds back into
// live conversation state, so staleness is harmless.
package storage
