// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/ottpulse/internal/identity"
)

func TestNewTheme_PinnedMode(t *testing.T) {
	assert.True(t, NewTheme("dark").IsDark)
	assert.False(t, NewTheme("LIGHT").IsDark)
}

func TestRoleColor_DistinctPerRole(t *testing.T) {
	seen := map[lipgloss.AdaptiveColor]identity.Role{}
	for _, r := range identity.Roles() {
		c := RoleColor(r)
		if prev, dup := seen[c]; dup {
			t.Errorf("roles %s and %s share a badge color", prev, r)
		}
		seen[c] = r
	}
	assert.Equal(t, TextMuted, RoleColor(identity.Role("intern")))
}

func TestRoleBadgeAndChip(t *testing.T) {
	th := NewTheme("dark")
	assert.Contains(t, th.RoleBadge(identity.RoleSRE), identity.RoleSRE.Badge())

	assert.Contains(t, th.AccessChip(identity.CapabilitiesForRole(identity.RoleAdmin)), "Full Access")
	assert.Contains(t, th.AccessChip(identity.CapabilitiesForRole(identity.RoleTPM)), "Input Access")
	assert.Contains(t, th.AccessChip(identity.CapabilitiesForRole(identity.RoleExecutive)), "Read Only")
}

func TestRenderIndicators(t *testing.T) {
	assert.Contains(t, RenderError("boom"), "[X] boom")
	assert.Contains(t, RenderSuccess("ok"), "[OK] ok")
	assert.Contains(t, RenderWarning("hm"), "[!] hm")
	assert.Contains(t, RenderInfo("fyi"), "[i] fyi")
}

func TestLayoutMode(t *testing.T) {
	th := NewTheme("dark")
	th.SetSize(50, 20)
	assert.Equal(t, LayoutNarrow, th.GetLayoutMode())
	th.SetSize(80, 20)
	assert.Equal(t, LayoutMedium, th.GetLayoutMode())
	th.SetSize(120, 20)
	assert.Equal(t, LayoutWide, th.GetLayoutMode())
}
