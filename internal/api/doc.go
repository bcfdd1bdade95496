// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the doctalk backend.
//
// The backend owns all retrieval, indexing and LLM work; this package is the
// complete wire boundary. It covers the REST directories (sessions, prompts,
// projects, documents) and the one streaming endpoint: POST
// /chat/sessions/{id}/stream, a Server-Sent-Events response of
// newline-delimited "data: <json>" frames.
//
// Streaming is exposed as a channel of typed StreamEvent values (status,
// text delta, citations) so consumers reduce events into their own state
// instead of mutating shared state from callbacks. Frame decoding tolerates
// arbitrary chunk boundaries and drops malformed frames without aborting
// the stream.
package api
