// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/ottpulse/internal/config"
)

// Run parses argv, executes the command and returns the process exit code.
// Errors are displayed once, here.
func Run(ctx context.Context, argv []string, stdio Stdio) int {
	cmd, args, err := Parse(argv)
	if err != nil {
		DisplayError(stdio.Err, err, args.JSON)
		if !args.JSON {
			PrintUsage(stdio.Err)
		}
		return GetExitCode(err)
	}

	if cmd != CmdHelp && cmd != CmdVersion {
		if err := config.LoadDotEnv(); err != nil {
			err = configError(err)
			DisplayError(stdio.Err, err, args.JSON)
			return GetExitCode(err)
		}
	}

	switch cmd {
	case CmdHelp:
		PrintUsage(stdio.Out)
		return ExitSuccess
	case CmdVersion:
		err = HandleVersion(stdio.Out, args)
	case CmdConfig:
		err = HandleConfig(stdio.Out, args)
	default:
		err = runWithEnv(ctx, cmd, args, stdio)
	}

	if err != nil {
		DisplayError(stdio.Err, err, args.JSON)
	}
	return GetExitCode(err)
}

func runWithEnv(ctx context.Context, cmd Command, args Args, stdio Stdio) (err error) {
	env, err := NewEnv(args, cmd == CmdTUI, stdio)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cleanup failed: %w", cerr)
		}
	}()

	err = Dispatch(ctx, env, cmd, args)
	if err != nil {
		env.Logger.Debug("command failed", "command", cmd.String(), "error", err)
	}
	return err
}
