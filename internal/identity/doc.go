// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity defines who a signed-in user is and what they may do.
//
// A User carries one Role from a closed set. Everything the shell gates on
// (capability flags, which sections appear in the menu) is derived from that
// role on every read; nothing is cached next to the user.
//
// # Key Types
//
//   - User: identity returned by /auth/login and /auth/me
//   - Role: closed enum (admin, executive, pm, tpm, em, sre)
//   - Capabilities: per-role booleans plus HasInputAccess and HasFullAccess
//   - Section: navigable dashboard area with its allowed roles
//
// # Usage
//
//	caps := identity.CapabilitiesFor(user)
//	if caps.HasFullAccess {
//	    // show user management
//	}
//
//	for _, s := range identity.VisibleSections(user.Role) {
//	    fmt.Println(s.Title)
//	}
package identity
