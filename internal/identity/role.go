// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the user's position in the publishing organization.
// The set is closed: decoding rejects any value not declared below.
type Role string

const (
	// RoleAdmin has full access, including user management and settings.
	RoleAdmin Role = "admin"

	// RoleExecutive reads every business dashboard but enters no data.
	RoleExecutive Role = "executive"

	// RolePM is a product manager.
	RolePM Role = "pm"

	// RoleTPM is a technical program manager.
	RoleTPM Role = "tpm"

	// RoleEM is an engineering manager.
	RoleEM Role = "em"

	// RoleSRE is a site reliability engineer.
	RoleSRE Role = "sre"
)

// ErrUnknownRole is returned when a role string is not part of the closed set.
var ErrUnknownRole = errors.New("unknown role")

// Roles returns every role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleExecutive, RolePM, RoleTPM, RoleEM, RoleSRE}
}

// ParseRole converts a wire value into a Role. Matching is case-insensitive
// so that hand-typed CLI input ("PM") works.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleExecutive, RolePM, RoleTPM, RoleEM, RoleSRE:
		return true
	}
	return false
}

// String returns the wire value.
func (r Role) String() string {
	return string(r)
}

// Label returns the long human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleExecutive:
		return "Executive"
	case RolePM:
		return "Product Manager"
	case RoleTPM:
		return "Technical Program Manager"
	case RoleEM:
		return "Engineering Manager"
	case RoleSRE:
		return "Site Reliability Engineer"
	}
	return "Unknown"
}

// Badge returns the short uppercase tag shown next to the user name.
func (r Role) Badge() string {
	return strings.ToUpper(string(r))
}

// HasInputAccess reports whether the role may submit data-entry forms.
func (r Role) HasInputAccess() bool {
	switch r {
	case RoleAdmin, RolePM, RoleTPM, RoleEM:
		return true
	case RoleExecutive, RoleSRE:
		return false
	}
	return false
}

// HasFullAccess reports whether the role has administrative access.
func (r Role) HasFullAccess() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleExecutive, RolePM, RoleTPM, RoleEM, RoleSRE:
		return false
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown roles are an
// error so a malformed identity payload never yields a usable User.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
