// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the single channel through which ottpulse talks to the
// analytics backend.
//
// Every request passes through one middleware chain, outermost first:
//
//	RateLimit -> Triage -> Logging -> RequestID -> BearerAuth -> http.Client
//
// BearerAuth reads the token store on every request, so a token written by
// login is used by the very next call. Triage inspects every failure and
// performs the app-wide side effects before handing the original error back:
//
//  1. HTTP 401: clear the token, expire the session, navigate to login.
//  2. No response: one "Unable to connect" error notification.
//  3. HTTP 502 / other 5xx: one server notification.
//  4. Anything else passes through untouched.
//
// Feature code only sees typed errors (ResponseError, ConnectivityError) and
// decides what to do with validation failures itself.
//
// # Usage
//
//	client := api.New(store,
//	    api.WithBaseURL(cfg.API.BaseURL),
//	    api.WithNotifier(toasts),
//	    api.WithNavigator(nav),
//	)
//	client.OnSessionExpired(mgr.Expire)
//
//	var kpis map[string]any
//	err := client.Get(ctx, "/dashboard/kpis", &kpis)
package api
