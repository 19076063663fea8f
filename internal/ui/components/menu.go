// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/ottpulse/internal/identity"
	"github.com/jeranaias/ottpulse/internal/ui/styles"
	"github.com/jeranaias/ottpulse/internal/util"
)

// Menu is the section list shown beside the section body.
type Menu struct {
	items  []identity.Section
	cursor int
}

// NewMenu returns the menu for role. An invalid role gets an empty menu.
func NewMenu(role identity.Role) Menu {
	return Menu{items: identity.VisibleSections(role)}
}

// Items returns the visible sections in order.
func (m Menu) Items() []identity.Section {
	return m.items
}

// Selected returns the highlighted section.
func (m Menu) Selected() (identity.Section, bool) {
	if len(m.items) == 0 {
		return identity.Section{}, false
	}
	return m.items[m.cursor], true
}

// Up moves the highlight up, wrapping at the top.
func (m *Menu) Up() {
	if len(m.items) == 0 {
		return
	}
	m.cursor = (m.cursor - 1 + len(m.items)) % len(m.items)
}

// Down moves the highlight down, wrapping at the bottom.
func (m *Menu) Down() {
	if len(m.items) == 0 {
		return
	}
	m.cursor = (m.cursor + 1) % len(m.items)
}

// Select highlights id. It reports false if id is not visible.
func (m *Menu) Select(id identity.SectionID) bool {
	for i, s := range m.items {
		if s.ID == id {
			m.cursor = i
			return true
		}
	}
	return false
}

// View renders the menu at most width cells wide.
func (m Menu) View(theme *styles.Theme, width int) string {
	if len(m.items) == 0 {
		return theme.Muted.Render("no sections")
	}
	inner := width - 3
	if inner < 6 {
		inner = 6
	}

	lines := make([]string, len(m.items))
	for i, s := range m.items {
		title := util.PadRight(util.TruncateWidth(s.Title, inner), inner)
		if i == m.cursor {
			lines[i] = theme.MenuItemActive.Render(title)
		} else {
			lines[i] = theme.MenuItem.Render(title)
		}
	}
	return theme.Menu.Render(strings.Join(lines, "\n"))
}
