// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns "who is signed in".
//
// A single Manager is created at startup and shared by reference. It holds
// the current user, a loading flag that is true until the stored token has
// been checked, and is the only writer of the token slot apart from the API
// layer's 401 handling, which calls Expire on its behalf.
//
// # Key Types
//
//   - Manager: Restore / Login / Logout / Expire plus read accessors
//   - State: immutable snapshot delivered to subscribers
//   - AuthenticationError: login failure carrying a user-facing message
//
// # Usage
//
//	mgr := session.NewManager(auth, store, session.WithLogger(logger))
//	client.OnSessionExpired(mgr.Expire)
//	mgr.Restore(ctx)
//
//	if err := mgr.Login(ctx, email, password); err != nil {
//	    var authErr *session.AuthenticationError
//	    if errors.As(err, &authErr) {
//	        showInline(authErr.Message)
//	    }
//	}
//
// # State Machine
//
//	Anonymous --(Login ok | Restore ok)--> Authenticated
//	Authenticated --(Logout | 401 | token removed elsewhere)--> Anonymous
package session
