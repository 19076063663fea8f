// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the terminal shell: a loading view while the stored session
// is checked, the login view, and the authenticated dashboard.
//
// The model never keeps its own copy of who is signed in. It re-reads the
// session snapshot whenever the session reports a change, and all
// authenticated view state (menu, report, help) is rebuilt on sign-in and
// discarded on sign-out or navigation to login.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ottpulse/internal/api"
	"github.com/jeranaias/ottpulse/internal/dashboard"
	"github.com/jeranaias/ottpulse/internal/identity"
	"github.com/jeranaias/ottpulse/internal/session"
	"github.com/jeranaias/ottpulse/internal/ui/components"
	"github.com/jeranaias/ottpulse/internal/ui/styles"
)

// Session is the part of *session.Manager the shell drives.
type Session interface {
	Restore(ctx context.Context)
	Login(ctx context.Context, email, password string) error
	Logout()
	Snapshot() session.State
}

// Fetcher loads section reports. *dashboard.Service implements it.
type Fetcher interface {
	Fetch(ctx context.Context, section identity.Section) (*dashboard.Report, error)
}

// Options configures the shell.
type Options struct {
	Theme          *styles.Theme
	Toasts         *components.ToastManager
	DefaultSection identity.SectionID
	// Backend is shown in the status bar.
	Backend string
	Compact bool
}

// View identifies which screen is shown.
type View int

const (
	ViewLoading View = iota
	ViewLogin
	ViewShell
)

// String returns the view name.
func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewLogin:
		return "login"
	case ViewShell:
		return "shell"
	default:
		return "unknown"
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	sess    Session
	fetcher Fetcher
	opts    Options
	theme   *styles.Theme
	toasts  *components.ToastManager
	keys    KeyMap

	state session.State

	width  int
	height int

	spinner spinner.Model
	login   loginForm

	// Authenticated view state. Zeroed by resetShell.
	userID   int64
	menu     components.Menu
	report   *dashboard.Report
	fetching bool
	fetchErr string
	seq      int
	showHelp bool
	helpText string
	body     viewport.Model
}

// New creates the shell. ctx bounds every request the shell issues.
func New(ctx context.Context, sess Session, fetcher Fetcher, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("")
	}
	if opts.Toasts == nil {
		opts.Toasts = components.NewToastManager()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner

	return Model{
		ctx:     ctx,
		sess:    sess,
		fetcher: fetcher,
		opts:    opts,
		theme:   opts.Theme,
		toasts:  opts.Toasts,
		keys:    DefaultKeyMap(),
		state:   sess.Snapshot(),
		width:   80,
		height:  24,
		spinner: sp,
		login:   newLoginForm(),
		body:    viewport.New(60, 16),
	}
}

// Current returns the screen being shown.
func (m Model) Current() View {
	switch {
	case m.state.Loading:
		return ViewLoading
	case m.state.Authenticated():
		return ViewShell
	default:
		return ViewLogin
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the spinner, the toast clock and the session check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		components.ToastTickCmd(),
		m.restoreCmd(),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case restoreDoneMsg, SessionMsg:
		return m.syncSession()

	case NavigateMsg:
		return m.handleNavigate()

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case reportMsg:
		return m.handleReport(msg)

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.Current() == ViewLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.update(msg)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) restoreCmd() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		sess.Restore(ctx)
		return restoreDoneMsg{}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return loginResultMsg{err: sess.Login(ctx, email, password)}
	}
}

// fetchSelected starts loading the selected section and bumps seq so any
// fetch already in flight is ignored when it lands.
func (m *Model) fetchSelected() tea.Cmd {
	section, ok := m.menu.Selected()
	if !ok || m.fetcher == nil {
		return nil
	}
	m.seq++
	m.fetching = true
	m.fetchErr = ""
	if m.report != nil && m.report.Section.ID != section.ID {
		m.report = nil
	}
	m.layout()

	seq, ctx, fetcher := m.seq, m.ctx, m.fetcher
	return func() tea.Msg {
		report, err := fetcher.Fetch(ctx, section)
		return reportMsg{seq: seq, report: report, err: err}
	}
}

// =============================================================================
// SESSION TRANSITIONS
// =============================================================================

// syncSession adopts the current session snapshot, entering or leaving the
// shell as needed.
func (m Model) syncSession() (tea.Model, tea.Cmd) {
	next := m.sess.Snapshot()
	prev := m.state
	m.state = next

	switch {
	case next.Authenticated() && (!prev.Authenticated() || next.User.ID != m.userID):
		m.login.reset()
		return m, m.enterShell(next.User)
	case !next.Authenticated() && prev.Authenticated():
		m.resetShell()
	}
	return m, nil
}

// handleNavigate returns to login. A navigation that arrives after a newer
// sign-in is stale and ignored.
func (m Model) handleNavigate() (tea.Model, tea.Cmd) {
	m.state = m.sess.Snapshot()
	if m.state.Authenticated() {
		return m, nil
	}
	m.resetShell()
	return m, nil
}

func (m *Model) enterShell(user *identity.User) tea.Cmd {
	m.resetShell()
	m.userID = user.ID
	m.menu = components.NewMenu(user.Role)
	if m.opts.DefaultSection != "" {
		m.menu.Select(m.opts.DefaultSection)
	}
	m.helpText = ""
	m.layout()
	return m.fetchSelected()
}

// resetShell discards everything that belonged to the previous identity.
func (m *Model) resetShell() {
	m.userID = 0
	m.menu = components.Menu{}
	m.report = nil
	m.fetching = false
	m.fetchErr = ""
	// Keep seq increasing so responses for the old identity are dropped.
	m.seq++
	m.showHelp = false
	m.helpText = ""
	m.body.SetContent("")
	m.body.GotoTop()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)
	m.login.email.Width = min(40, max(10, m.width-12))
	m.login.password.Width = m.login.email.Width
	m.helpText = ""
	m.layout()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Current() {
	case ViewLoading:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		return m, nil
	case ViewLogin:
		return m.handleLoginKey(msg)
	default:
		return m.handleShellKey(msg)
	}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextField):
		return m, m.login.setFocus(m.login.focus + 1)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.login.setFocus(m.login.focus - 1)

	case key.Matches(msg, m.keys.Submit):
		if m.login.submitting {
			return m, nil
		}
		if m.login.focus == fieldEmail && m.login.password.Value() == "" {
			return m, m.login.setFocus(fieldPassword)
		}
		if !m.login.validate() {
			return m, nil
		}
		m.login.submitting = true
		email, password := m.login.credentials()
		return m, tea.Batch(m.loginCmd(email, password), m.spinner.Tick)
	}

	if m.login.submitting {
		return m, nil
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.login.fail(msg.err)
	}
	m.login.submitting = false
	return m.syncSession()
}

func (m Model) handleShellKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Close):
			m.showHelp = false
			m.layout()
			return m, nil
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Logout):
		m.sess.Logout()
		m.toasts.AddStatus("Signed out")
		return m.syncSession()

	case key.Matches(msg, m.keys.Up):
		m.menu.Up()
		return m, m.fetchSelected()

	case key.Matches(msg, m.keys.Down):
		m.menu.Down()
		return m, m.fetchSelected()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchSelected()

	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.DismissNewest()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.body.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.body.HalfViewDown()
		return m, nil
	}
	return m, nil
}

func (m Model) handleReport(msg reportMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq || !m.state.Authenticated() {
		return m, nil
	}
	m.fetching = false

	if msg.err != nil {
		m.report = nil
		m.fetchErr = fetchErrorText(msg.err)
	} else {
		m.report = msg.report
		m.fetchErr = ""
	}
	m.layout()
	m.body.GotoTop()
	return m, nil
}

// fetchErrorText is the inline body text for a failed fetch. Connectivity
// and server failures have already been reported as toasts.
func fetchErrorText(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return ""
	case errors.Is(err, api.ErrValidation):
		if msg := api.ServerMessage(err); msg != "" {
			return msg
		}
		return "The request was rejected."
	case errors.Is(err, api.ErrSessionExpired):
		return ""
	default:
		return "Data unavailable."
	}
}

// layout sizes the body viewport and refreshes its content.
func (m *Model) layout() {
	const (
		headerHeight    = 3
		statusBarHeight = 1
	)
	h := m.height - headerHeight - statusBarHeight
	if h < 3 {
		h = 3
	}
	w := m.width - m.menuWidth() - 1
	if m.showHelp {
		w = m.width
	}
	if w < 10 {
		w = 10
	}
	m.body.Width = w
	m.body.Height = h

	if m.showHelp {
		if m.helpText == "" {
			m.helpText = renderHelp(helpMarkdown(m.keys, m.state.User), w-2, m.theme.IsDark)
		}
		m.body.SetContent(m.helpText)
		return
	}
	m.body.SetContent(m.renderReport(w))
}

func (m Model) menuWidth() int {
	if m.opts.Compact || m.theme.GetLayoutMode() == styles.LayoutNarrow {
		return 16
	}
	return 26
}

// FetchedAt returns when the shown report was loaded, or the zero time.
func (m Model) FetchedAt() time.Time {
	if m.report == nil {
		return time.Time{}
	}
	return m.report.FetchedAt
}
