// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Match with errors.Is against the typed errors below.
var (
	// ErrConnectivity means the request produced no response (server down,
	// DNS failure, timeout).
	ErrConnectivity = errors.New("unable to reach server")

	// ErrSessionExpired means the server answered 401.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnavailable means the server answered 502.
	ErrUnavailable = errors.New("server unavailable")

	// ErrServer means the server answered with a 5xx status.
	ErrServer = errors.New("server error")

	// ErrValidation means the server rejected the request (4xx other than 401,
	// or a 2xx envelope with success=false).
	ErrValidation = errors.New("request rejected")

	// ErrResponseTooLarge means the response body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")

	// ErrTokenStore means the local token slot could not be read, so the
	// request was never sent.
	ErrTokenStore = errors.New("failed to read token store")
)

// ConnectivityError is returned when no HTTP response was received.
type ConnectivityError struct {
	Method  string
	Path    string
	Timeout bool
	Err     error
}

// Error implements the error interface.
func (e *ConnectivityError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s %s: request timed out: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the transport error.
func (e *ConnectivityError) Unwrap() error { return e.Err }

// Is reports ErrConnectivity.
func (e *ConnectivityError) Is(target error) bool {
	return target == ErrConnectivity
}

// ResponseError is returned for a non-2xx status or a success=false envelope.
type ResponseError struct {
	Status    int
	Message   string
	RequestID string
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// Is maps the status onto the package sentinels.
func (e *ResponseError) Is(target error) bool {
	switch target {
	case ErrSessionExpired:
		return e.Status == http.StatusUnauthorized
	case ErrUnavailable:
		return e.Status == http.StatusBadGateway
	case ErrServer:
		return e.Status >= 500
	case ErrValidation:
		return e.Status < 500 && e.Status != http.StatusUnauthorized
	}
	return false
}

// ServerMessage returns the message the backend attached to err, if any.
func ServerMessage(err error) string {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}
