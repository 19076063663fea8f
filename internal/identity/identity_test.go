// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilities_AccessTiers(t *testing.T) {
	inputRoles := map[Role]bool{RoleAdmin: true, RolePM: true, RoleTPM: true, RoleEM: true}

	for _, r := range Roles() {
		t.Run(string(r), func(t *testing.T) {
			caps := CapabilitiesForRole(r)
			assert.Equal(t, r == RoleAdmin, caps.HasFullAccess, "HasFullAccess")
			assert.Equal(t, inputRoles[r], caps.HasInputAccess, "HasInputAccess")
		})
	}
}

func TestCapabilities_ExactlyOneRoleFlag(t *testing.T) {
	for _, r := range Roles() {
		caps := CapabilitiesForRole(r)
		set := 0
		for _, flag := range []bool{caps.IsAdmin, caps.IsExecutive, caps.IsPM, caps.IsTPM, caps.IsEM, caps.IsSRE} {
			if flag {
				set++
			}
		}
		assert.Equal(t, 1, set, "role %s", r)
	}
}

func TestCapabilitiesFor_Anonymous(t *testing.T) {
	assert.Equal(t, Capabilities{}, CapabilitiesFor(nil))
	assert.Equal(t, "Read Only", CapabilitiesFor(nil).AccessLabel())
}

func TestCapabilities_AccessLabel(t *testing.T) {
	assert.Equal(t, "Full Access", CapabilitiesForRole(RoleAdmin).AccessLabel())
	assert.Equal(t, "Input Access", CapabilitiesForRole(RoleTPM).AccessLabel())
	assert.Equal(t, "Read Only", CapabilitiesForRole(RoleExecutive).AccessLabel())
	assert.Equal(t, "Read Only", CapabilitiesForRole(RoleSRE).AccessLabel())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" PM ")
	require.NoError(t, err)
	assert.Equal(t, RolePM, r)

	_, err = ParseRole("superuser")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRole))

	_, err = ParseRole("")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestUser_JSONRejectsUnknownRole(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"id":7,"email":"a@x.com","name":"A","role":"owner"}`), &u)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestUser_JSONRoundTrip(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"email":"a@x.com","name":"Ada","role":"sre"}`), &u))
	assert.Equal(t, User{ID: 7, Email: "a@x.com", Name: "Ada", Role: RoleSRE}, u)

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"email":"a@x.com","name":"Ada","role":"sre"}`, string(data))
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada", User{Name: "Ada", Email: "a@x.com"}.DisplayName())
	assert.Equal(t, "a@x.com", User{Name: "  ", Email: "a@x.com"}.DisplayName())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@x.com", NormalizeEmail("  user@x.com\n"))
	// Full-width letters fold to ASCII under NFKC.
	assert.Equal(t, "user@x.com", NormalizeEmail("ｕｓｅｒ@x.com"))
}

func TestVisibleSections(t *testing.T) {
	ids := func(r Role) []SectionID {
		var out []SectionID
		for _, s := range VisibleSections(r) {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Len(t, VisibleSections(RoleAdmin), len(Sections()))
	assert.Equal(t, []SectionID{
		SectionSummary, SectionDashboard, SectionPlatforms, SectionBackend, SectionOperations, SectionReports,
	}, ids(RoleSRE))
	assert.Equal(t, []SectionID{
		SectionSummary, SectionDashboard, SectionPlatforms, SectionReports,
	}, ids(RoleExecutive))
	assert.Equal(t, []SectionID{
		SectionSummary, SectionDashboard, SectionPublishing, SectionPlatforms, SectionCMS, SectionReports,
	}, ids(RolePM))
	assert.Empty(t, VisibleSections(Role("guest")))
}

func TestLookupSection(t *testing.T) {
	s, ok := LookupSection(SectionCMS)
	require.True(t, ok)
	assert.Equal(t, "/cms/kpis", s.Path)

	_, ok = LookupSection("nope")
	assert.False(t, ok)
}
