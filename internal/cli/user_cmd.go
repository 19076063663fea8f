// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// user_cmd.go - Account creation for full-access users.

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/ottpulse/internal/api"
	"github.com/jeranaias/ottpulse/internal/dashboard"
	"github.com/jeranaias/ottpulse/internal/identity"
)

const userAddUsage = "ottpulse user add --email E --name N --role R [--password-stdin]"

// HandleUser handles "user add".
func HandleUser(ctx context.Context, env *Env, args Args) error {
	p := NewArgParser(args.Raw, "password-stdin")

	switch p.Subcommand() {
	case "add", "create":
		if unknown := p.Unknown("email", "name", "role", "password-stdin"); len(unknown) > 0 {
			return ErrUnknownFlags("user add", unknown)
		}
		return userAdd(ctx, env, args, p)
	case "":
		return ErrMissingArgument("subcommand", userAddUsage)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   p.Subcommand(),
			Reason:  "unknown user subcommand",
			Example: userAddUsage,
		}
	}
}

func userAdd(ctx context.Context, env *Env, args Args, p *ArgParser) error {
	req := api.RegisterRequest{
		Email: strings.TrimSpace(p.Flag("email")),
		Name:  strings.TrimSpace(p.Flag("name")),
	}
	switch {
	case req.Email == "":
		return ErrMissingArgument("email", userAddUsage)
	case req.Name == "":
		return ErrMissingArgument("name", userAddUsage)
	case p.Flag("role") == "":
		return ErrMissingArgument("role", userAddUsage)
	}
	role, err := identity.ParseRole(p.Flag("role"))
	if err != nil {
		names := make([]string, 0, len(identity.Roles()))
		for _, r := range identity.Roles() {
			names = append(names, string(r))
		}
		return &ValidationError{
			Field:   "role",
			Value:   p.Flag("role"),
			Reason:  "unknown role",
			Example: "one of " + strings.Join(names, ", "),
		}
	}
	req.Role = role

	// Checked before prompting.
	if err := requireAccess(ctx, env, "user add", dashboard.AccessFull); err != nil {
		return err
	}

	if p.BoolFlag("password-stdin") {
		req.Password, err = ReadSecretLine(env.Stdin)
	} else {
		req.Password, err = promptNewPassword(env)
	}
	if err != nil {
		return err
	}

	created, err := env.Auth.Register(ctx, req)
	if err != nil {
		if msg := api.ServerMessage(err); msg != "" {
			return NewCommandError("user", "add", msg, err)
		}
		return err
	}

	if args.JSON {
		return NewJSONResponse("user add", NewUserInfo(created)).Print(env.Stdout)
	}
	fmt.Fprintf(env.Stdout, "%s Created %s <%s> as %s\n",
		SuccessStyle.Render("[OK]"), created.DisplayName(), created.Email, created.Role.Label())
	return nil
}

func promptNewPassword(env *Env) (string, error) {
	pw, err := PromptPassword(env.Stderr, "Password for new user: ")
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", NewValidationError("password", "", "must not be empty")
	}
	confirm, err := PromptPassword(env.Stderr, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", NewValidationError("password", "", "passwords do not match")
	}
	return pw, nil
}
