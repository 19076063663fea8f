// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for ottpulse.
//
// With no command the terminal dashboard starts. The remaining commands cover
// the same session from a script or a plain shell.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - Env: The wired dependencies a command runs against
//   - JSONResponse: Machine-readable output for --json
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	if err != nil {
//	    os.Exit(cli.GetExitCode(err))
//	}
//	env, err := cli.NewEnv(args, cmd == cli.CmdTUI)
//	...
//	err = cli.Dispatch(ctx, env, cmd, args)
//
// # Commands Overview
//
//   - tui: Interactive dashboard (default)
//   - login, logout, whoami: Session management
//   - status: Backend reachability and stored session state
//   - config: Show, locate, initialize, read and change settings
//   - user add: Create an account (administrators only)
//
// Exit codes: 0 ok, 1 general, 2 usage, 3 config, 4 auth, 5 network.
package cli
