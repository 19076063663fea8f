// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/ottpulse/internal/ui/styles"
	"github.com/jeranaias/ottpulse/internal/util"
)

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line: key hints on the left, context on the right.
type StatusBar struct {
	Width     int
	Shortcuts []Shortcut
	// Right is plain text shown right-aligned (backend host, fetch time).
	Right string
}

// View renders the bar. Hints are dropped from the end until the bar fits.
func (s StatusBar) View(theme *styles.Theme) string {
	width := s.Width
	if width <= 0 {
		width = 80
	}
	// Padding(0, 1) on the style.
	avail := width - 2

	right := util.TruncateWidth(s.Right, avail/2)
	rightW := runewidth.StringWidth(right)

	var plain, styled []string
	used := 0
	for _, sc := range s.Shortcuts {
		w := runewidth.StringWidth(sc.Key) + 1 + runewidth.StringWidth(sc.Desc)
		sep := 0
		if len(plain) > 0 {
			sep = 2
		}
		if used+sep+w > avail-rightW-1 {
			break
		}
		used += sep + w
		plain = append(plain, sc.Key+" "+sc.Desc)
		styled = append(styled, theme.ShortcutKey.Render(sc.Key)+" "+theme.ShortcutDesc.Render(sc.Desc))
	}

	gap := avail - used - rightW
	if gap < 1 {
		gap = 1
	}
	line := strings.Join(styled, "  ") + strings.Repeat(" ", gap) + right
	return theme.StatusBar.Render(line)
}
