// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ottpulse/internal/api"
	"github.com/jeranaias/ottpulse/internal/dashboard"
	"github.com/jeranaias/ottpulse/internal/identity"
	"github.com/jeranaias/ottpulse/internal/session"
	"github.com/jeranaias/ottpulse/internal/ui/components"
	"github.com/jeranaias/ottpulse/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeSession struct {
	mu       sync.Mutex
	state    session.State
	restore  *identity.User
	loginErr error
	login    *identity.User
	logouts  int
}

func (f *fakeSession) Restore(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = session.State{User: f.restore}
}

func (f *fakeSession) Login(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return f.loginErr
	}
	f.state.User = f.login
	return nil
}

func (f *fakeSession) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.state.User = nil
}

func (f *fakeSession) Snapshot() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) set(u *identity.User) {
	f.mu.Lock()
	f.state = session.State{User: u}
	f.mu.Unlock()
}

type fakeFetcher struct {
	err   error
	calls []identity.SectionID
}

func (f *fakeFetcher) Fetch(_ context.Context, s identity.Section) (*dashboard.Report, error) {
	f.calls = append(f.calls, s.ID)
	if f.err != nil {
		return nil, f.err
	}
	return &dashboard.Report{
		Section:   s,
		Metrics:   []dashboard.Metric{{Key: "subscribers", Value: "1200"}},
		FetchedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	}, nil
}

var (
	admin     = &identity.User{ID: 1, Email: "dana@example.com", Name: "Dana Lee", Role: identity.RoleAdmin}
	executive = &identity.User{ID: 2, Email: "sam@example.com", Name: "Sam Park", Role: identity.RoleExecutive}
)

func newModel(t *testing.T, sess *fakeSession, f *fakeFetcher) Model {
	t.Helper()
	m := New(context.Background(), sess, f, Options{
		Theme:   styles.NewTheme("dark"),
		Toasts:  components.NewToastManager(),
		Backend: "localhost:3001",
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// find runs cmd, expanding batches, and returns the first message of type T.
func find[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var zero T
	if cmd == nil {
		t.Fatalf("nil command, wanted %T", zero)
	}
	switch msg := cmd().(type) {
	case T:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if got, ok := c().(T); ok {
				return got
			}
		}
	}
	t.Fatalf("no %T produced", zero)
	return zero
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// signedIn returns a model showing the shell for u with its first report loaded.
func signedIn(t *testing.T, u *identity.User) (Model, *fakeSession, *fakeFetcher) {
	t.Helper()
	sess := &fakeSession{state: session.State{Loading: true}, restore: u}
	f := &fakeFetcher{}
	m := newModel(t, sess, f)

	sess.Restore(context.Background())
	m, cmd := update(t, m, restoreDoneMsg{})
	require.Equal(t, ViewShell, m.Current())
	m, _ = update(t, m, find[reportMsg](t, cmd))
	return m, sess, f
}

// =============================================================================
// TESTS
// =============================================================================

func TestStartsLoadingThenLogin(t *testing.T) {
	sess := &fakeSession{state: session.State{Loading: true}}
	m := newModel(t, sess, &fakeFetcher{})
	assert.Equal(t, ViewLoading, m.Current())
	assert.Contains(t, m.View(), "Checking your session")

	msg := find[restoreDoneMsg](t, m.restoreCmd())
	m, cmd := update(t, m, msg)
	assert.Equal(t, ViewLogin, m.Current())
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Sign in")
}

func TestRestoredSessionOpensShell(t *testing.T) {
	m, _, f := signedIn(t, admin)

	assert.Equal(t, []identity.SectionID{identity.SectionSummary}, f.calls)
	require.NotNil(t, m.report)
	assert.False(t, m.fetching)

	view := m.View()
	assert.Contains(t, view, "Dana Lee")
	assert.Contains(t, view, "Full Access")
	assert.Contains(t, view, "subscribers")
	assert.Contains(t, view, "Admin Panel")
}

func TestMenuFilteredByRole(t *testing.T) {
	m, _, _ := signedIn(t, executive)

	assert.Equal(t, identity.VisibleSections(identity.RoleExecutive), m.menu.Items())
	view := m.View()
	assert.Contains(t, view, "Read Only")
	assert.NotContains(t, view, "Admin Panel")
}

func TestDefaultSectionSelected(t *testing.T) {
	sess := &fakeSession{state: session.State{Loading: true}, restore: admin}
	f := &fakeFetcher{}
	m := New(context.Background(), sess, f, Options{DefaultSection: identity.SectionReports})

	sess.Restore(context.Background())
	m, cmd := update(t, m, restoreDoneMsg{})
	find[reportMsg](t, cmd)
	assert.Equal(t, []identity.SectionID{identity.SectionReports}, f.calls)
}

func TestLoginRequiresBothFields(t *testing.T) {
	sess := &fakeSession{}
	m := newModel(t, sess, &fakeFetcher{})
	require.Equal(t, ViewLogin, m.Current())

	m.login.setFocus(fieldPassword)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, msgCredentialsRequired, m.login.err)
	assert.False(t, m.login.submitting)
}

func TestLoginSuccess(t *testing.T) {
	sess := &fakeSession{login: admin}
	f := &fakeFetcher{}
	m := newModel(t, sess, f)

	m.login.email.SetValue("Dana@Example.com")
	m.login.password.SetValue("secret")
	m.login.setFocus(fieldPassword)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.login.submitting)

	// A second submit while in flight is ignored.
	_, again := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)
	assert.Contains(t, m.View(), "Signing in")

	m, cmd = update(t, m, find[loginResultMsg](t, cmd))
	assert.Equal(t, ViewShell, m.Current())
	assert.False(t, m.login.submitting)
	assert.Empty(t, m.login.email.Value(), "form cleared for next visit")

	m, _ = update(t, m, find[reportMsg](t, cmd))
	assert.NotNil(t, m.report)
}

func TestLoginFailureShowsInlineError(t *testing.T) {
	sess := &fakeSession{loginErr: &session.AuthenticationError{Message: "Invalid credentials"}}
	m := newModel(t, sess, &fakeFetcher{})

	m.login.email.SetValue("dana@example.com")
	m.login.password.SetValue("wrong")
	m.login.setFocus(fieldPassword)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, find[loginResultMsg](t, cmd))

	assert.Equal(t, ViewLogin, m.Current())
	assert.Equal(t, "Invalid credentials", m.login.err)
	assert.False(t, m.login.submitting)
	assert.Empty(t, m.login.password.Value())
	assert.Equal(t, "dana@example.com", m.login.email.Value())
	assert.Contains(t, m.View(), "Invalid credentials")

	// Navigation while already on login keeps the message.
	m, _ = update(t, m, NavigateMsg{})
	assert.Equal(t, "Invalid credentials", m.login.err)
}

func TestEnterOnEmailMovesToPassword(t *testing.T) {
	m := newModel(t, &fakeSession{}, &fakeFetcher{})
	m.login.email.SetValue("dana@example.com")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, fieldPassword, m.login.focus)
	assert.False(t, m.login.submitting)
}

func TestLogoutKey(t *testing.T) {
	m, sess, _ := signedIn(t, admin)

	m, _ = update(t, m, runes("L"))
	assert.Equal(t, 1, sess.logouts)
	assert.Equal(t, ViewLogin, m.Current())
	assert.Nil(t, m.report)
	assert.Empty(t, m.menu.Items())
	assert.Equal(t, "Signed out", m.toasts.Toasts()[0].Message)
}

func TestNavigateResetsShell(t *testing.T) {
	m, sess, _ := signedIn(t, admin)
	m, _ = update(t, m, runes("?"))
	require.True(t, m.showHelp)

	// The access layer expired the session before navigating.
	sess.set(nil)
	m, _ = update(t, m, NavigateMsg{})

	assert.Equal(t, ViewLogin, m.Current())
	assert.False(t, m.showHelp)
	assert.Nil(t, m.report)
	assert.Zero(t, m.userID)
}

func TestStaleNavigateIgnored(t *testing.T) {
	m, _, _ := signedIn(t, admin)

	m, _ = update(t, m, NavigateMsg{})
	assert.Equal(t, ViewShell, m.Current())
	assert.NotNil(t, m.report)
}

func TestSessionMsgSwitchesUser(t *testing.T) {
	m, sess, f := signedIn(t, admin)

	sess.set(executive)
	m, cmd := update(t, m, SessionMsg{})
	assert.Equal(t, executive.ID, m.userID)
	assert.Nil(t, m.report, "previous user's report discarded")
	find[reportMsg](t, cmd)
	assert.Len(t, f.calls, 2)
}

func TestStaleReportDropped(t *testing.T) {
	m, _, f := signedIn(t, admin)

	m, first := update(t, m, runes("j"))
	m, second := update(t, m, runes("j"))
	require.Len(t, f.calls, 1, "commands not yet run")

	old := find[reportMsg](t, first)
	latest := find[reportMsg](t, second)

	m, _ = update(t, m, old)
	assert.True(t, m.fetching, "superseded response ignored")

	m, _ = update(t, m, latest)
	assert.False(t, m.fetching)
	require.NotNil(t, m.report)
	assert.Equal(t, identity.SectionAdmin, m.report.Section.ID)
}

func TestReportAfterLogoutDropped(t *testing.T) {
	m, _, _ := signedIn(t, admin)

	m, cmd := update(t, m, runes("r"))
	msg := find[reportMsg](t, cmd)
	m, _ = update(t, m, runes("L"))

	m, _ = update(t, m, msg)
	assert.Nil(t, m.report)
	assert.Equal(t, ViewLogin, m.Current())
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation message shown", &api.ResponseError{Status: 400, Message: "Invalid date range"}, "Invalid date range"},
		{"validation without message", &api.ResponseError{Status: 404}, "The request was rejected."},
		{"server failure", &api.ResponseError{Status: 500}, "Data unavailable."},
		{"connectivity", &api.ConnectivityError{Method: "GET", Path: "/x", Err: errors.New("refused")}, "Data unavailable."},
		{"expired", &api.ResponseError{Status: 401}, ""},
		{"canceled", context.Canceled, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fetchErrorText(tt.err))
		})
	}
}

func TestFetchErrorRenderedInBody(t *testing.T) {
	m, _, f := signedIn(t, admin)
	f.err = &api.ResponseError{Status: 400, Message: "Invalid date range"}

	m, cmd := update(t, m, runes("r"))
	m, _ = update(t, m, find[reportMsg](t, cmd))
	assert.Nil(t, m.report)
	assert.Contains(t, m.View(), "Invalid date range")
}

func TestHelpOverlay(t *testing.T) {
	m, _, _ := signedIn(t, admin)

	m, _ = update(t, m, runes("?"))
	assert.True(t, m.showHelp)
	assert.NotEmpty(t, m.helpText)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)
}

func TestHelpMarkdownListsVisibleSections(t *testing.T) {
	md := helpMarkdown(DefaultKeyMap(), executive)
	assert.Contains(t, md, "Sam Park")
	assert.Contains(t, md, "Platform Summary")
	assert.NotContains(t, md, "Admin Panel")
	assert.Contains(t, md, "| `L` | logout |")
}

func TestDismissToast(t *testing.T) {
	m, _, _ := signedIn(t, admin)
	m.toasts.AddError(api.MsgServer)

	m, _ = update(t, m, runes("x"))
	assert.Empty(t, m.toasts.Toasts())
}

func TestToastsRendered(t *testing.T) {
	m := newModel(t, &fakeSession{}, &fakeFetcher{})
	m.toasts.Notify(api.Notice{Level: api.LevelError, Message: api.MsgConnectivity})
	assert.Contains(t, m.View(), "Unable to connect")
}

func TestQuit(t *testing.T) {
	m, _, _ := signedIn(t, admin)
	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	// On the login view q is typed, not quit.
	lm := newModel(t, &fakeSession{}, &fakeFetcher{})
	lm, _ = update(t, lm, runes("q"))
	assert.Equal(t, "q", lm.login.email.Value())
}

// =============================================================================
// BRIDGE
// =============================================================================

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func TestBridge(t *testing.T) {
	b := NewBridge()
	b.ToLogin() // unattached: dropped

	ch := make(chanSender, 2)
	b.Attach(ch)

	b.ToLogin()
	select {
	case msg := <-ch:
		assert.IsType(t, NavigateMsg{}, msg)
	case <-time.After(time.Second):
		t.Fatal("no navigation delivered")
	}

	b.SessionChanged(session.State{})
	select {
	case msg := <-ch:
		assert.IsType(t, SessionMsg{}, msg)
	case <-time.After(time.Second):
		t.Fatal("no session change delivered")
	}
}

var _ api.Navigator = (*Bridge)(nil)
