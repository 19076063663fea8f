// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// User-facing notification texts emitted by Triage.
const (
	MsgConnectivity = "Unable to connect to the server. Please try again later."
	MsgUnavailable  = "The server is currently unavailable. Please try again later."
	MsgServer       = "Server error. Please try again later."
)

// Level is the severity of a Notice.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notice is a transient user-visible message.
type Notice struct {
	Level   Level
	Message string
}

// Notifier displays notices. Implementations must not block.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Navigator moves the user to the login entry point.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

// ToLogin implements Navigator.
func (f NavigatorFunc) ToLogin() { f() }
