// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ottpulse TUI.
//
// All colors are lipgloss.AdaptiveColor values so one palette serves dark and
// light terminals. Theme bundles the styles the views use; NewTheme pins the
// background mode from configuration instead of relying on detection.
//
// Role badges get one color per role so a glance at the header tells an
// executive session from an SRE one. Status indicators always carry an ASCII
// shape next to the color for colorblind users.
package styles
