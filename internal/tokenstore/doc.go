// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tokenstore provides the durable slot holding the session's bearer token.
//
// The slot survives process restarts so a returning user is signed back in by
// session restore instead of retyping credentials. It holds exactly one opaque
// string under the well-known key "token".
//
// # Key Types
//
//   - Store: Token / SetToken / Clear
//   - FileStore: one 0600 file, written atomically (default backend)
//   - SQLiteStore: one row in a pure-Go SQLite database
//   - MemoryStore: in-process only (tests, --ephemeral)
//   - Watcher: optional change notification implemented by FileStore
//
// # Usage
//
//	store, err := tokenstore.Open(tokenstore.Options{Backend: "file", Path: path})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	tok, err := store.Token() // "" when signed out
package tokenstore
