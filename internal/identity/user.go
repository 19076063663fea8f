// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// User is the authenticated identity. Its Role is fixed for the lifetime of a
// session; a different role requires a new login.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// DisplayName returns the name, or the email when the backend sent no name.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

// NormalizeEmail prepares typed login input: NFKC folds full-width and
// compatibility characters, surrounding whitespace is dropped.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(norm.NFKC.String(email))
}
