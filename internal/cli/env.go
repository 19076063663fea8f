// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jeranaias/ottpulse/internal/api"
	"github.com/jeranaias/ottpulse/internal/config"
	"github.com/jeranaias/ottpulse/internal/dashboard"
	"github.com/jeranaias/ottpulse/internal/logging"
	"github.com/jeranaias/ottpulse/internal/session"
	"github.com/jeranaias/ottpulse/internal/tokenstore"
	"github.com/jeranaias/ottpulse/internal/ui/app"
	"github.com/jeranaias/ottpulse/internal/ui/components"
)

// Stdio is the process's standard streams.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Env holds everything a command runs against. It is built once per process
// by NewEnv; there are no package-level instances.
type Env struct {
	Stdin  *bufio.Reader
	Stdout io.Writer
	Stderr io.Writer

	Config     *config.Config
	ConfigPath string // from --config; empty means the default location
	Logger     *slog.Logger

	Store     tokenstore.Store
	Client    *api.Client
	Auth      *api.AuthService
	Session   *session.Manager
	Dashboard *dashboard.Service

	// Interactive only
	Toasts *components.ToastManager
	Bridge *app.Bridge

	closers []io.Closer
}

// NewEnv loads configuration and wires the session stack. interactive selects
// the TUI notification and navigation sinks instead of stderr.
func NewEnv(args Args, interactive bool, stdio Stdio) (*Env, error) {
	env := &Env{
		Stdin:      bufio.NewReader(stdio.In),
		Stdout:     stdio.Out,
		Stderr:     stdio.Err,
		ConfigPath: args.ConfigPath,
	}

	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return nil, configError(err)
	}
	if args.APIURL != "" {
		cfg.API.BaseURL = strings.TrimSuffix(args.APIURL, "/")
		if err := cfg.Validate(); err != nil {
			return nil, configError(err)
		}
	}
	env.Config = cfg

	if err := env.openLogger(args, interactive); err != nil {
		env.Close()
		return nil, err
	}

	backend := cfg.Session.TokenStore
	if args.Ephemeral {
		backend = tokenstore.BackendMemory
	}
	tokenPath, err := cfg.TokenPath()
	if err != nil {
		env.Close()
		return nil, configError(err)
	}
	store, err := tokenstore.Open(tokenstore.Options{Backend: backend, Path: tokenPath})
	if err != nil {
		env.Close()
		return nil, configError(fmt.Errorf("failed to open token store: %w", err))
	}
	env.Store = store
	env.closers = append(env.closers, store)

	var (
		notifier  api.Notifier
		navigator api.Navigator
	)
	if interactive {
		env.Toasts = components.NewToastManager()
		if cfg.UI.ToastSeconds > 0 {
			env.Toasts.SetErrorDuration(time.Duration(cfg.UI.ToastSeconds) * time.Second)
		}
		env.Bridge = app.NewBridge()
		notifier, navigator = env.Toasts, env.Bridge
	} else {
		notifier = api.NotifierFunc(env.printNotice)
		navigator = api.NavigatorFunc(env.printExpired)
	}

	env.Client = api.New(store,
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTimeout(cfg.API.Timeout()),
		api.WithRateLimit(cfg.API.MaxRPS, cfg.API.Burst),
		api.WithLogger(env.Logger),
		api.WithNotifier(notifier),
		api.WithNavigator(navigator),
		api.WithUserAgent("ottpulse/"+Version),
	)
	env.Auth = api.NewAuthService(env.Client)
	env.Session = session.NewManager(env.Auth, store, session.WithLogger(env.Logger))
	env.Client.OnSessionExpired(env.Session.Expire)
	env.Dashboard = dashboard.NewService(env.Client)

	env.Logger.Debug("environment ready",
		"api", cfg.API.BaseURL,
		"token_store", backend,
		"interactive", interactive)
	return env, nil
}

func (e *Env) openLogger(args Args, interactive bool) error {
	opts := logging.Options{
		Level:  logging.ParseLevel(e.Config.Logging.Level),
		Format: logging.ParseFormat(e.Config.Logging.Format),
	}
	if args.Verbose {
		opts.Level = slog.LevelDebug
	}

	// The TUI owns the terminal, so only plain commands mirror to stderr.
	var mirror io.Writer
	if args.Verbose && !interactive {
		mirror = e.Stderr
	}

	path, err := e.Config.LogPath()
	if err != nil {
		return configError(err)
	}
	logger, closer, err := logging.Open(path, mirror, opts)
	if err != nil {
		return configError(err)
	}
	e.Logger = logger
	e.closers = append(e.closers, closer)
	return nil
}

// Close waits for background logout notifications and releases the token
// store and log file.
func (e *Env) Close() error {
	if e.Session != nil {
		e.Session.Wait()
	}
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

func (e *Env) printNotice(n api.Notice) {
	style := WarningStyle
	if n.Level == api.LevelError {
		style = ErrorStyle
	}
	fmt.Fprintf(e.Stderr, "%s %s\n", style.Render("["+strings.ToUpper(n.Level.String())+"]"), n.Message)
}

func (e *Env) printExpired() {
	fmt.Fprintln(e.Stderr, DimStyle.Render("Session expired. Run 'ottpulse login' to sign in again."))
}
