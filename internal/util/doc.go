// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across ottpulse.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
//
// String Utilities:
//   - TruncateWidth: display-width aware truncation with ellipsis
//   - PadRight: pad to a display width
//
// # Usage
//
//	// Persist the bearer token without ever leaving a half-written file
//	err := util.AtomicWriteFile(path, []byte(token), 0600)
//
//	// Fit a user name into the status bar
//	name := util.TruncateWidth(user.Name, 24)
package util
