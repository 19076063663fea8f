// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/ottpulse/internal/identity"
	"github.com/jeranaias/ottpulse/internal/ui/components"
	"github.com/jeranaias/ottpulse/internal/util"
)

// View renders the current screen.
func (m Model) View() string {
	var screen string
	switch m.Current() {
	case ViewLoading:
		screen = m.renderLoading()
	case ViewLogin:
		screen = m.renderLogin()
	default:
		screen = m.renderShell()
	}

	toasts := components.RenderToastStack(m.theme, m.toasts.Toasts(), time.Now())
	if toasts == "" {
		return screen
	}
	return lipgloss.JoinVertical(lipgloss.Left, screen, toasts)
}

func (m Model) renderLoading() string {
	msg := m.spinner.View() + " " + m.theme.Muted.Render("Checking your session...")
	return lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, msg)
}

func (m Model) renderLogin() string {
	form := m.login.view(m.theme, m.spinner.View())
	placed := lipgloss.Place(m.width, max(1, m.height-2), lipgloss.Center, lipgloss.Center, form)

	bar := components.StatusBar{
		Width:     m.width,
		Shortcuts: m.keys.LoginShortcuts(),
		Right:     m.opts.Backend,
	}
	return lipgloss.JoinVertical(lipgloss.Left, placed, bar.View(m.theme))
}

func (m Model) renderShell() string {
	header := m.renderHeader()

	var main string
	if m.showHelp {
		main = m.body.View()
	} else {
		menu := m.theme.Menu.Height(m.body.Height).Render(m.menu.View(m.theme, m.menuWidth()-2))
		main = lipgloss.JoinHorizontal(lipgloss.Top, menu, m.body.View())
	}

	right := m.opts.Backend
	if at := m.FetchedAt(); !at.IsZero() {
		right = "updated " + at.Format("15:04:05") + "  " + right
	}
	bar := components.StatusBar{
		Width:     m.width,
		Shortcuts: m.keys.ShellShortcuts(),
		Right:     right,
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, main, bar.View(m.theme))
}

func (m Model) renderHeader() string {
	user := m.state.User
	if user == nil {
		return ""
	}
	caps := identity.CapabilitiesFor(user)

	left := lipgloss.JoinHorizontal(lipgloss.Center,
		m.theme.HeaderBrand.Render("OTT Pulse"),
		"  ",
		m.theme.HeaderUser.Render(user.DisplayName()),
		" ",
		m.theme.RoleBadge(user.Role),
	)
	chip := m.theme.AccessChip(caps)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(chip) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Render(
		lipgloss.JoinHorizontal(lipgloss.Center, left, strings.Repeat(" ", gap), chip),
	)
}

// renderReport renders the section body for a viewport width w.
func (m Model) renderReport(w int) string {
	section, ok := m.menu.Selected()
	if !ok {
		return m.theme.Muted.Render("No sections are available for this role.")
	}

	var b strings.Builder
	b.WriteString(m.theme.SectionTitle.Render(section.Title))
	b.WriteString("\n")

	switch {
	case m.fetching && m.report == nil:
		b.WriteString(m.spinner.View() + " " + m.theme.Muted.Render("Loading..."))
		return m.theme.Body.Render(b.String())
	case m.fetchErr != "":
		b.WriteString(m.theme.ErrorText.Render(m.fetchErr))
		return m.theme.Body.Render(b.String())
	case m.report == nil:
		return m.theme.Body.Render(b.String())
	case len(m.report.Metrics) == 0:
		b.WriteString(m.theme.Muted.Render("No data."))
		return m.theme.Body.Render(b.String())
	}

	keyW := 0
	for _, metric := range m.report.Metrics {
		keyW = max(keyW, runewidth.StringWidth(metric.Key))
	}
	// Body padding is 2 on each side; leave room for the gap.
	avail := w - 4
	keyW = min(keyW, avail/2)
	valW := max(1, avail-keyW-2)

	for _, metric := range m.report.Metrics {
		k := util.PadRight(util.TruncateWidth(metric.Key, keyW), keyW)
		v := util.TruncateWidth(metric.Value, valW)
		fmt.Fprintf(&b, "%s  %s\n", m.theme.MetricKey.Render(k), m.theme.MetricValue.Render(v))
	}
	return m.theme.Body.Render(strings.TrimRight(b.String(), "\n"))
}
