// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable pieces of the ottpulse TUI.
//
// # Key Types
//
//   - ToastManager: auto-dismissing notifications; also the api.Notifier sink
//   - Menu: section list filtered by the signed-in role
//   - StatusBar: bottom line with shortcuts and connection info
//
// Components hold no references to the session or API client. The app model
// feeds them data and renders them.
package components
