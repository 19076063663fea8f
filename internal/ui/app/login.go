// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ottpulse/internal/session"
	"github.com/jeranaias/ottpulse/internal/ui/styles"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldCount
)

const msgCredentialsRequired = "Email and password are required"

// loginForm is the email/password form. While submitting is set the form
// rejects another submit.
type loginForm struct {
	email      textinput.Model
	password   textinput.Model
	focus      int
	submitting bool
	err        string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Prompt = ""
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256
	password.Prompt = ""

	return loginForm{email: email, password: password}
}

// setFocus focuses field i and blurs the other.
func (f *loginForm) setFocus(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	if f.focus == fieldEmail {
		f.password.Blur()
		return f.email.Focus()
	}
	f.email.Blur()
	return f.password.Focus()
}

func (f loginForm) credentials() (email, password string) {
	return strings.TrimSpace(f.email.Value()), f.password.Value()
}

// validate reports whether the form can be submitted, recording an inline
// error when it cannot.
func (f *loginForm) validate() bool {
	email, password := f.credentials()
	if email == "" || password == "" {
		f.err = msgCredentialsRequired
		return false
	}
	f.err = ""
	return true
}

// fail records a failed login. The password is cleared and focused.
func (f *loginForm) fail(err error) tea.Cmd {
	f.submitting = false
	var authErr *session.AuthenticationError
	switch {
	case errors.As(err, &authErr):
		f.err = authErr.Message
	case err != nil:
		f.err = err.Error()
	default:
		f.err = session.DefaultLoginMessage
	}
	f.password.SetValue("")
	return f.setFocus(fieldPassword)
}

// reset empties the form for the next visit.
func (f *loginForm) reset() {
	f.email.SetValue("")
	f.password.SetValue("")
	f.submitting = false
	f.err = ""
	f.setFocus(fieldEmail)
}

func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	var cmd tea.Cmd
	if f.focus == fieldEmail {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd
}

func (f loginForm) view(theme *styles.Theme, spinner string) string {
	label := func(i int, text string) string {
		if f.focus == i {
			return theme.FocusedText.Render("> " + text)
		}
		return theme.InputLabel.Render("  " + text)
	}

	button := theme.ButtonIdle.Render("Sign in")
	if f.submitting {
		button = theme.ButtonBusy.Render(spinner + " Signing in...")
	}

	rows := []string{
		theme.LoginTitle.Render("OTT Pulse"),
		label(fieldEmail, "Email"),
		"  " + f.email.View(),
		"",
		label(fieldPassword, "Password"),
		"  " + f.password.View(),
		"",
	}
	if f.err != "" {
		rows = append(rows, theme.InputError.Render(f.err), "")
	}
	rows = append(rows, button)

	return theme.LoginBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
