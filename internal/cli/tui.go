// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - Starts the interactive dashboard.

package cli

import (
	"context"
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ottpulse/internal/identity"
	"github.com/jeranaias/ottpulse/internal/ui/app"
	"github.com/jeranaias/ottpulse/internal/ui/styles"
)

// RunTUI runs the dashboard until the user quits or ctx is cancelled.
// env must have been built with interactive set.
func RunTUI(ctx context.Context, env *Env) error {
	if env.Bridge == nil || env.Toasts == nil {
		return fmt.Errorf("tui: environment was not built for interactive use")
	}
	if !IsStdoutTTY() {
		return &TTYRequiredError{Operation: "run the dashboard"}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := env.Config
	model := app.New(ctx, env.Session, env.Dashboard, app.Options{
		Theme:          styles.NewTheme(cfg.UI.Theme),
		Toasts:         env.Toasts,
		DefaultSection: identity.SectionID(cfg.UI.DefaultSection),
		Backend:        backendLabel(cfg.API.BaseURL),
		Compact:        cfg.UI.CompactMode,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	env.Bridge.Attach(p)
	unsubscribe := env.Session.Subscribe(env.Bridge.SessionChanged)
	defer unsubscribe()

	if cfg.Session.WatchToken {
		go func() {
			if err := env.Session.WatchStore(ctx); err != nil {
				env.Logger.Warn("token watch stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	env.Logger.Info("dashboard started", "api", cfg.API.BaseURL)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	env.Logger.Info("dashboard stopped")
	return nil
}

// backendLabel is the host shown in the status bar.
func backendLabel(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}
	return u.Host
}
