// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/ottpulse/internal/identity"
)

// Theme holds all the styled components for the application.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style
	Badge       lipgloss.Style
	Chip        lipgloss.Style

	// ==========================================================================
	// MENU AND BODY
	// ==========================================================================

	Menu           lipgloss.Style
	MenuItem       lipgloss.Style
	MenuItemActive lipgloss.Style
	Body           lipgloss.Style
	SectionTitle   lipgloss.Style
	MetricKey      lipgloss.Style
	MetricValue    lipgloss.Style

	// ==========================================================================
	// LOGIN
	// ==========================================================================

	LoginBox    lipgloss.Style
	LoginTitle  lipgloss.Style
	InputLabel  lipgloss.Style
	InputError  lipgloss.Style
	ButtonIdle  lipgloss.Style
	ButtonBusy  lipgloss.Style
	FocusedText lipgloss.Style

	// ==========================================================================
	// STATUS AND FEEDBACK
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
	Muted        lipgloss.Style
	ErrorText    lipgloss.Style
	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
}

// NewTheme creates a theme for "dark" or "light". Anything else detects the
// terminal background.
func NewTheme(mode string) *Theme {
	isDark := termenv.HasDarkBackground()
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.HeaderUser = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Badge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Padding(0, 1)
	t.Chip = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	t.Menu = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)
	t.MenuItem = lipgloss.NewStyle().Foreground(TextSecondary).PaddingLeft(2)
	t.MenuItemActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		Background(SurfaceBright).
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Purple)
	t.Body = lipgloss.NewStyle().Padding(0, 2)
	t.SectionTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan).MarginBottom(1)
	t.MetricKey = lipgloss.NewStyle().Foreground(TextSecondary)
	t.MetricValue = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)

	t.LoginBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 3)
	t.LoginTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan).MarginBottom(1)
	t.InputLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.InputError = lipgloss.NewStyle().Foreground(Rose)
	t.ButtonIdle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 2)
	t.ButtonBusy = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 2)
	t.FocusedText = lipgloss.NewStyle().Foreground(Cyan)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(48)
	t.ToastError = toast.BorderForeground(Rose).Foreground(Rose)
	t.ToastWarning = toast.BorderForeground(Amber).Foreground(Amber)
	t.ToastInfo = toast.BorderForeground(Blue).Foreground(Blue)
	t.ToastSuccess = toast.BorderForeground(Emerald).Foreground(Emerald)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// RoleBadge renders the role label on the role's color.
func (t *Theme) RoleBadge(r identity.Role) string {
	return t.Badge.Background(RoleColor(r)).Render(r.Badge())
}

// AccessChip renders the access tier of caps.
func (t *Theme) AccessChip(caps identity.Capabilities) string {
	color := TextMuted
	switch {
	case caps.HasFullAccess:
		color = Emerald
	case caps.HasInputAccess:
		color = Amber
	}
	return t.Chip.BorderForeground(color).Foreground(color).Render(caps.AccessLabel())
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}
