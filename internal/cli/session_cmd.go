// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - login, logout and whoami.

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jeranaias/ottpulse/internal/api"
	"github.com/jeranaias/ottpulse/internal/identity"
)

// UserInfo is the --json shape of a signed-in user.
type UserInfo struct {
	ID             int64                `json:"id"`
	Email          string               `json:"email"`
	Name           string               `json:"name"`
	Role           identity.Role        `json:"role"`
	Access         string               `json:"access"`
	HasInputAccess bool                 `json:"has_input_access"`
	HasFullAccess  bool                 `json:"has_full_access"`
	Sections       []identity.SectionID `json:"sections"`
}

// NewUserInfo derives the output shape from u.
func NewUserInfo(u *identity.User) UserInfo {
	caps := identity.CapabilitiesFor(u)
	info := UserInfo{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		Access:         caps.AccessLabel(),
		HasInputAccess: caps.HasInputAccess,
		HasFullAccess:  caps.HasFullAccess,
	}
	for _, s := range identity.VisibleSections(u.Role) {
		info.Sections = append(info.Sections, s.ID)
	}
	return info
}

// =============================================================================
// LOGIN
// =============================================================================

// HandleLogin signs in and stores the token.
//
//	ottpulse login [--email E] [--password-stdin]
func HandleLogin(ctx context.Context, env *Env, args Args) error {
	p := NewArgParser(args.Raw, "password-stdin")
	if unknown := p.Unknown("email", "password-stdin"); len(unknown) > 0 {
		return ErrUnknownFlags("login", unknown)
	}
	fromStdin := p.BoolFlag("password-stdin")

	email := p.Flag("email")
	if email == "" {
		if fromStdin {
			return ErrMissingArgument("email", "ottpulse login --email you@example.com --password-stdin")
		}
		if err := RequiresTTY("prompt for an email"); err != nil {
			return err
		}
		var err error
		if email, err = PromptLine(env.Stderr, env.Stdin, "Email: "); err != nil {
			return err
		}
	}

	var (
		password string
		err      error
	)
	if fromStdin {
		password, err = ReadSecretLine(env.Stdin)
	} else {
		password, err = PromptPassword(env.Stderr, "Password: ")
	}
	if err != nil {
		return err
	}

	// The command reports its own failure; a rejected login is not an
	// expired session.
	if err := env.Session.Login(api.Quiet(ctx), email, password); err != nil {
		return err
	}

	user := env.Session.User()
	if args.JSON {
		return NewJSONResponse("login", NewUserInfo(user)).Print(env.Stdout)
	}
	fmt.Fprintf(env.Stdout, "%s Signed in as %s (%s, %s)\n",
		SuccessStyle.Render("[OK]"), user.DisplayName(), user.Role.Label(),
		identity.CapabilitiesFor(user).AccessLabel())
	return nil
}

// =============================================================================
// LOGOUT
// =============================================================================

// HandleLogout discards the stored token and tells the server.
func HandleLogout(ctx context.Context, env *Env, args Args) error {
	if unknown := NewArgParser(args.Raw).Unknown(); len(unknown) > 0 {
		return ErrUnknownFlags("logout", unknown)
	}

	tok, err := env.Store.Token()
	if err != nil {
		return NewCommandError("logout", "read", "could not read the stored token", err)
	}
	signedIn := tok != ""
	if signedIn {
		env.Session.Logout()
		// Give the server notification a chance before the process exits.
		env.Session.Wait()
	}

	if args.JSON {
		return NewJSONResponse("logout", map[string]bool{"signed_out": signedIn}).Print(env.Stdout)
	}
	if !signedIn {
		fmt.Fprintln(env.Stdout, DimStyle.Render("Not signed in."))
		return nil
	}
	fmt.Fprintf(env.Stdout, "%s Signed out\n", SuccessStyle.Render("[OK]"))
	return nil
}

// =============================================================================
// WHOAMI
// =============================================================================

// HandleWhoami validates the stored session and prints the user.
func HandleWhoami(ctx context.Context, env *Env, args Args) error {
	if unknown := NewArgParser(args.Raw).Unknown(); len(unknown) > 0 {
		return ErrUnknownFlags("whoami", unknown)
	}

	env.Session.Restore(ctx)
	user := env.Session.User()
	if user == nil {
		return ErrNotSignedIn
	}

	info := NewUserInfo(user)
	if args.JSON {
		return NewJSONResponse("whoami", info).Print(env.Stdout)
	}
	printUser(env.Stdout, info)
	return nil
}

func printUser(w io.Writer, info UserInfo) {
	fmt.Fprintln(w, TitleStyle.Render(info.Name))
	fmt.Fprintln(w, RenderField("Email", info.Email))
	fmt.Fprintln(w, RenderField("Role", info.Role.Label()))
	fmt.Fprintln(w, RenderField("Access", info.Access))

	fmt.Fprintln(w, SectionStyle.Render("Sections"))
	for _, id := range info.Sections {
		s, _ := identity.LookupSection(id)
		fmt.Fprintf(w, "  %s %s\n", ValueStyle.Render(s.Title), DimStyle.Render(s.Path))
	}
}
