// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// DefaultLoginMessage is shown when the server gives no reason for a failed login.
const DefaultLoginMessage = "Login failed"

// AuthenticationError is returned by Login. Message is safe to show to the user.
type AuthenticationError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return e.Message
}

// Unwrap returns the underlying failure, if any.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
