// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for ottpulse commands.
//
// Commands always return errors and never print them; Run displays the
// error once and maps it to an exit code.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jeranaias/ottpulse/internal/api"
	"github.com/jeranaias/ottpulse/internal/config"
	"github.com/jeranaias/ottpulse/internal/session"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates authentication or authorization failure
	ExitAuthError = 4
	// ExitNetworkError indicates network or connectivity error
	ExitNetworkError = 5
)

// Sentinel errors.
var (
	// ErrConfig marks failures loading or writing configuration.
	ErrConfig = errors.New("configuration error")
	// ErrNotSignedIn is returned by commands that need a session when none is stored.
	ErrNotSignedIn = errors.New("not signed in; run 'ottpulse login'")
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "login", "user")
	Action  string // Action being performed (e.g., "add", "set")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// PermissionError represents an authorization failure for the signed-in user.
type PermissionError struct {
	Action string // Action that was denied
	User   string // User who was denied
	Needs  string // Required access tier
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s requires %s (signed in as %s)",
		e.Action, e.Needs, e.User)
}

// ReportedError wraps an error whose details the command already printed.
// DisplayError skips it; the exit code still follows Err.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{
		Field:   argName,
		Reason:  "required argument missing",
		Example: usage,
	}
}

// ErrUnknownFlags creates an error for flags a command does not accept.
func ErrUnknownFlags(command string, flags []string) error {
	return &ValidationError{
		Field:  "flag",
		Value:  fmt.Sprint(flags),
		Reason: "not accepted by " + command,
	}
}

// configError marks err as a configuration failure.
func configError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfig, err)
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err to w, as a JSON object when jsonMode is set.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	var reported *ReportedError
	if err == nil || errors.As(err, &reported) {
		return
	}
	if jsonMode {
		DisplayErrorJSON(w, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// DisplayErrorJSON writes err as a JSON object.
func DisplayErrorJSON(w io.Writer, err error) {
	output := map[string]interface{}{
		"error":     err.Error(),
		"success":   false,
		"exit_code": GetExitCode(err),
	}

	var cmdErr *CommandError
	var valErr *ValidationError
	var permErr *PermissionError
	switch {
	case errors.As(err, &valErr):
		output["error_type"] = "validation_error"
		output["field"] = valErr.Field
		output["reason"] = valErr.Reason
	case errors.As(err, &permErr):
		output["error_type"] = "permission_error"
		output["action"] = permErr.Action
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["command"] = cmdErr.Command
		output["action"] = cmdErr.Action
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	var ttyErr *TTYRequiredError
	if errors.As(err, &validationErr) || errors.As(err, &ttyErr) {
		return ExitUsageError
	}

	var cfgErrs config.ValidateErrors
	if errors.Is(err, ErrConfig) || errors.As(err, &cfgErrs) {
		return ExitConfigError
	}

	// A failed login wraps the transport error, so this runs before the auth check.
	if errors.Is(err, api.ErrConnectivity) || errors.Is(err, api.ErrUnavailable) ||
		errors.Is(err, api.ErrServer) {
		return ExitNetworkError
	}

	var permissionErr *PermissionError
	var authErr *session.AuthenticationError
	var respErr *api.ResponseError
	if errors.As(err, &respErr) && respErr.Status == http.StatusForbidden {
		return ExitAuthError
	}
	if errors.As(err, &permissionErr) || errors.As(err, &authErr) ||
		errors.Is(err, ErrNotSignedIn) || errors.Is(err, api.ErrSessionExpired) {
		return ExitAuthError
	}

	return ExitGeneralError
}
