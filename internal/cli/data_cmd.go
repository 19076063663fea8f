// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// data_cmd.go - Data entry for the admin endpoints.

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/ottpulse/internal/api"
	"github.com/jeranaias/ottpulse/internal/dashboard"
)

const (
	dataSubmitUsage = "ottpulse data submit TARGET [--file PATH]   (JSON object on stdin without --file)"
	dataShowUsage   = "ottpulse data show settings"

	// maxPayloadSize caps a submitted document.
	maxPayloadSize = 1 << 20
)

// DataTargetInfo is the --json shape of one "data list" row.
type DataTargetInfo struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Path     string `json:"path"`
	Requires string `json:"requires"`
	Readable bool   `json:"readable"`
}

// HandleData handles "data list", "data submit" and "data show".
func HandleData(ctx context.Context, env *Env, args Args) error {
	p := NewArgParser(args.Raw)

	switch p.Subcommand() {
	case "", "list", "ls":
		if unknown := p.Unknown(); len(unknown) > 0 {
			return ErrUnknownFlags("data list", unknown)
		}
		return dataList(env, args)
	case "submit", "send", "post":
		if unknown := p.Unknown("file", "f"); len(unknown) > 0 {
			return ErrUnknownFlags("data submit", unknown)
		}
		return dataSubmit(ctx, env, args, p)
	case "show", "get":
		if unknown := p.Unknown(); len(unknown) > 0 {
			return ErrUnknownFlags("data show", unknown)
		}
		return dataShow(ctx, env, args, p)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   p.Subcommand(),
			Reason:  "unknown data subcommand",
			Example: dataSubmitUsage,
		}
	}
}

func dataList(env *Env, args Args) error {
	targets := dashboard.Targets()
	if args.JSON {
		rows := make([]DataTargetInfo, 0, len(targets))
		for _, t := range targets {
			rows = append(rows, DataTargetInfo{
				Name: t.Name, Label: t.Label, Path: t.Path,
				Requires: t.Requires.String(), Readable: t.Readable,
			})
		}
		return NewJSONResponse("data list", rows).Print(env.Stdout)
	}

	fmt.Fprintln(env.Stdout, TitleStyle.Render("Data entry targets"))
	for _, t := range targets {
		fmt.Fprintf(env.Stdout, "  %-12s %-24s %s\n", t.Name, t.Path, DimStyle.Render("requires "+t.Requires.String()))
	}
	return nil
}

func dataSubmit(ctx context.Context, env *Env, args Args, p *ArgParser) error {
	target, err := lookupDataTarget(p.Positional(1), dataSubmitUsage)
	if err != nil {
		return err
	}

	path := p.Flag("file")
	if path == "" {
		path = p.Flag("f")
	}
	payload, err := readPayload(env, path)
	if err != nil {
		return err
	}

	if err := requireAccess(ctx, env, "data submit "+target.Name, target.Requires); err != nil {
		return err
	}

	rows, err := env.Dashboard.Submit(ctx, target, payload)
	if err != nil {
		if msg := api.ServerMessage(err); msg != "" {
			return NewCommandError("data", "submit", msg, err)
		}
		return err
	}

	if args.JSON {
		return NewJSONResponse("data submit", map[string]any{
			"target": target.Name,
			"path":   target.Path,
			"result": metricMap(rows),
		}).Print(env.Stdout)
	}
	fmt.Fprintf(env.Stdout, "%s Submitted %s\n", SuccessStyle.Render("[OK]"), strings.ToLower(target.Label))
	printMetrics(env, rows)
	return nil
}

func dataShow(ctx context.Context, env *Env, args Args, p *ArgParser) error {
	target, err := lookupDataTarget(p.Positional(1), dataShowUsage)
	if err != nil {
		return err
	}
	if !target.Readable {
		return &ValidationError{
			Field:   "target",
			Value:   target.Name,
			Reason:  "cannot be read back",
			Example: dataShowUsage,
		}
	}
	if err := requireAccess(ctx, env, "data show "+target.Name, target.Requires); err != nil {
		return err
	}

	rows, err := env.Dashboard.Current(ctx, target)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("data show", metricMap(rows)).Print(env.Stdout)
	}
	fmt.Fprintln(env.Stdout, TitleStyle.Render(target.Label))
	printMetrics(env, rows)
	return nil
}

func lookupDataTarget(name, usage string) (dashboard.Target, error) {
	if name == "" {
		return dashboard.Target{}, ErrMissingArgument("target", usage)
	}
	t, ok := dashboard.LookupTarget(name)
	if !ok {
		return dashboard.Target{}, &ValidationError{
			Field:   "target",
			Value:   name,
			Reason:  "unknown data target",
			Example: "one of " + strings.Join(dashboard.TargetNames(), ", "),
		}
	}
	return t, nil
}

// readPayload reads a JSON object from path, or from stdin when path is empty.
func readPayload(env *Env, path string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = io.ReadAll(io.LimitReader(env.Stdin, maxPayloadSize+1))
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, NewCommandError("data", "submit", "could not open "+path, err)
		}
		defer f.Close()
		data, err = io.ReadAll(io.LimitReader(f, maxPayloadSize+1))
	}
	if err != nil {
		return nil, NewCommandError("data", "submit", "could not read payload", err)
	}
	if len(data) > maxPayloadSize {
		return nil, NewValidationError("payload", "", "larger than 1MB")
	}

	payload, err := dashboard.ParsePayload(data)
	if errors.Is(err, dashboard.ErrInvalidPayload) {
		return nil, &ValidationError{
			Field:   "payload",
			Reason:  err.Error(),
			Example: `echo '{"title":"Pilot","status":"published"}' | ottpulse data submit publishing`,
		}
	}
	return payload, err
}

// requireAccess restores the session and checks the tier locally; the
// server enforces it again.
func requireAccess(ctx context.Context, env *Env, action string, needs dashboard.Access) error {
	env.Session.Restore(ctx)
	state := env.Session.Snapshot()
	if !state.Authenticated() {
		return ErrNotSignedIn
	}
	if !needs.Allows(state.Capabilities()) {
		return &PermissionError{
			Action: action,
			User:   state.User.Email,
			Needs:  needs.String(),
		}
	}
	return nil
}

func metricMap(rows []dashboard.Metric) map[string]string {
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out
}

func printMetrics(env *Env, rows []dashboard.Metric) {
	for _, r := range rows {
		fmt.Fprintln(env.Stdout, RenderField(r.Key, r.Value))
	}
}
