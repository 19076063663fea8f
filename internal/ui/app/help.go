// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/ottpulse/internal/identity"
)

// helpMarkdown builds the help text for the signed-in role.
func helpMarkdown(keys KeyMap, user *identity.User) string {
	var b strings.Builder
	b.WriteString("# OTT Pulse\n\n")

	if user != nil {
		caps := identity.CapabilitiesFor(user)
		fmt.Fprintf(&b, "Signed in as **%s** (%s), access: *%s*.\n\n",
			user.Name, user.Role.Label(), caps.AccessLabel())

		b.WriteString("## Sections\n\n")
		for _, s := range identity.VisibleSections(user.Role) {
			fmt.Fprintf(&b, "- **%s** `%s`\n", s.Title, s.Path)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Keys\n\n| Key | Action |\n|---|---|\n")
	for _, bind := range []struct{ k, d string }{
		{keys.Up.Help().Key, keys.Up.Help().Desc},
		{keys.Down.Help().Key, keys.Down.Help().Desc},
		{keys.PageUp.Help().Key, keys.PageUp.Help().Desc},
		{keys.PageDown.Help().Key, keys.PageDown.Help().Desc},
		{keys.Refresh.Help().Key, keys.Refresh.Help().Desc},
		{keys.Dismiss.Help().Key, keys.Dismiss.Help().Desc},
		{keys.Logout.Help().Key, keys.Logout.Help().Desc},
		{keys.Help.Help().Key, keys.Help.Help().Desc},
		{keys.Quit.Help().Key, keys.Quit.Help().Desc},
	} {
		fmt.Fprintf(&b, "| `%s` | %s |\n", bind.k, bind.d)
	}

	b.WriteString("\nConnection and server errors appear as notifications and clear on their own. " +
		"If the session expires you are returned to the sign-in screen.\n")
	return b.String()
}

// renderHelp renders md for the terminal. The raw markdown is returned if
// rendering fails.
func renderHelp(md string, width int, dark bool) string {
	if width <= 0 {
		width = 80
	}
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
