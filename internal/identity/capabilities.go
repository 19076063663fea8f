// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

// Capabilities are the role-derived flags the shell gates on.
type Capabilities struct {
	IsAdmin     bool `json:"is_admin"`
	IsExecutive bool `json:"is_executive"`
	IsPM        bool `json:"is_pm"`
	IsTPM       bool `json:"is_tpm"`
	IsEM        bool `json:"is_em"`
	IsSRE       bool `json:"is_sre"`

	// HasInputAccess: admin, pm, tpm, em.
	HasInputAccess bool `json:"has_input_access"`
	// HasFullAccess: admin only.
	HasFullAccess bool `json:"has_full_access"`
}

// CapabilitiesFor derives the flags for u. A nil user (anonymous) has none.
func CapabilitiesFor(u *User) Capabilities {
	if u == nil {
		return Capabilities{}
	}
	return CapabilitiesForRole(u.Role)
}

// CapabilitiesForRole derives the flags for a role.
func CapabilitiesForRole(r Role) Capabilities {
	return Capabilities{
		IsAdmin:        r == RoleAdmin,
		IsExecutive:    r == RoleExecutive,
		IsPM:           r == RolePM,
		IsTPM:          r == RoleTPM,
		IsEM:           r == RoleEM,
		IsSRE:          r == RoleSRE,
		HasInputAccess: r.HasInputAccess(),
		HasFullAccess:  r.HasFullAccess(),
	}
}

// AccessLabel summarizes the access tier for badges.
func (c Capabilities) AccessLabel() string {
	switch {
	case c.HasFullAccess:
		return "Full Access"
	case c.HasInputAccess:
		return "Input Access"
	default:
		return "Read Only"
	}
}
