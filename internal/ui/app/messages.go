// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/jeranaias/ottpulse/internal/dashboard"

// NavigateMsg asks the shell to return to the login view and drop all
// authenticated view state.
type NavigateMsg struct{}

// SessionMsg signals that the session changed. The model reads the current
// snapshot on receipt, so delivery order does not matter.
type SessionMsg struct{}

// restoreDoneMsg is sent when the startup token check finishes.
type restoreDoneMsg struct{}

// loginResultMsg carries the outcome of a submitted login.
type loginResultMsg struct {
	err error
}

// reportMsg carries a fetched section. seq identifies the fetch so a late
// response for a section the user already left is dropped.
type reportMsg struct {
	seq    int
	report *dashboard.Report
	err    error
}
