// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend reachability and stored session state.

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeranaias/ottpulse/internal/api"
	"github.com/jeranaias/ottpulse/internal/tokenstore"
)

// Session states reported by status.
const (
	SessionNone        = "none"
	SessionValid       = "valid"
	SessionExpired     = "expired"
	SessionUnreachable = "unreachable"
	SessionError       = "error"
)

// StatusReport is the --json shape of the status command.
type StatusReport struct {
	APIURL       string     `json:"api_url"`
	TokenStore   string     `json:"token_store"`
	TokenPath    string     `json:"token_path,omitempty"`
	TokenPresent bool       `json:"token_present"`
	TokenKept    bool       `json:"token_kept,omitempty"`
	TokenExpires *time.Time `json:"token_expires_at,omitempty"`
	Reachable    bool       `json:"reachable"`
	Session      string     `json:"session"`
	LatencyMS    int64      `json:"latency_ms"`
	User         *UserInfo  `json:"user,omitempty"`
	Detail       string     `json:"detail,omitempty"`
}

// HandleStatus probes the backend with the stored token. The probe is quiet:
// it never clears the token or prints notices, so it is safe to run while the
// dashboard is open elsewhere. A rejected token is reported as kept; the next
// non-quiet request clears it.
func HandleStatus(ctx context.Context, env *Env, args Args) error {
	if unknown := NewArgParser(args.Raw).Unknown(); len(unknown) > 0 {
		return ErrUnknownFlags("status", unknown)
	}

	report := StatusReport{
		APIURL:     env.Client.BaseURL(),
		TokenStore: env.Config.Session.TokenStore,
		Session:    SessionNone,
	}
	if args.Ephemeral {
		report.TokenStore = "memory"
	}
	if report.TokenStore != "memory" {
		report.TokenPath, _ = env.Config.TokenPath()
	}

	tok, err := env.Store.Token()
	if err != nil {
		return NewCommandError("status", "read", "could not read the stored token", err)
	}
	report.TokenPresent = tok != ""
	if exp, ok := tokenstore.Expiry(tok); ok {
		report.TokenExpires = &exp
	}

	start := time.Now()
	user, probeErr := env.Auth.CurrentUser(api.Quiet(ctx))
	report.LatencyMS = time.Since(start).Milliseconds()

	switch {
	case probeErr == nil:
		report.Reachable = true
		if user != nil && user.Role.Valid() {
			report.Session = SessionValid
			info := NewUserInfo(user)
			report.User = &info
		}
	case errors.Is(probeErr, api.ErrConnectivity):
		report.Session = SessionUnreachable
		report.Detail = probeErr.Error()
	case errors.Is(probeErr, api.ErrSessionExpired):
		report.Reachable = true
		if report.TokenPresent {
			report.Session = SessionExpired
			report.TokenKept = true
			report.Detail = "the rejected token was left in place; 'ottpulse logout' removes it, 'ottpulse login' replaces it"
		}
	default:
		report.Reachable = !errors.Is(probeErr, api.ErrUnavailable)
		report.Session = SessionError
		report.Detail = probeErr.Error()
	}

	if args.JSON {
		resp := NewJSONResponse("status", report)
		if !report.Reachable {
			msg := "backend unreachable"
			resp.Success = false
			resp.Error = &msg
		}
		if err := resp.Print(env.Stdout); err != nil {
			return err
		}
	} else {
		printStatus(env, report)
	}

	if !report.Reachable {
		return &ReportedError{Err: probeErr}
	}
	return nil
}

func printStatus(env *Env, r StatusReport) {
	w := env.Stdout
	fmt.Fprintln(w, TitleStyle.Render("ottpulse status"))

	backend := "reachable"
	if !r.Reachable {
		backend = "unreachable"
	}
	fmt.Fprintf(w, "%s %s %s\n", RenderLabel("Backend"), RenderStatus(backend),
		ValueStyle.Render(fmt.Sprintf("%s (%dms)", r.APIURL, r.LatencyMS)))

	store := r.TokenStore
	if r.TokenPath != "" {
		store += " " + DimStyle.Render(r.TokenPath)
	}
	fmt.Fprintln(w, RenderField("Token store", store))
	if r.TokenExpires != nil {
		fmt.Fprintln(w, RenderField("Token expires", r.TokenExpires.Local().Format(time.RFC1123)))
	}

	var session string
	switch r.Session {
	case SessionValid:
		session = RenderStatus("ok") + " " + r.User.Name + " (" + r.User.Role.Label() + ", " + r.User.Access + ")"
	case SessionExpired:
		session = RenderStatus("expired") + " stored token was rejected (token kept)"
	case SessionNone:
		session = RenderStatus("none") + " not signed in"
	default:
		session = RenderStatus(r.Session)
	}
	fmt.Fprintf(w, "%s %s\n", RenderLabel("Session"), session)

	if r.Detail != "" {
		fmt.Fprintln(w, DimStyle.Render(r.Detail))
	}
}
