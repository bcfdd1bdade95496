// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs watches a local drop folder and uploads new or changed
// files to the active project's document store.
//
// Events are debounced so a file being written in several chunks (editors,
// downloads, rsync) uploads once, after it settles. Uploads go through an
// injected Uploader so the watcher itself never touches the network in
// tests.
package docs
