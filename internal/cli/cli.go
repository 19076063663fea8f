// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command and global flag parsing for ottpulse.
package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdStatus
	CmdConfig
	CmdUser
	CmdData
	CmdVersion
	CmdHelp
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLogin:
		return "login"
	case CmdLogout:
		return "logout"
	case CmdWhoami:
		return "whoami"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdUser:
		return "user"
	case CmdData:
		return "data"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// NeedsSession reports whether the command talks to the backend.
func (c Command) NeedsSession() bool {
	switch c {
	case CmdTUI, CmdLogin, CmdLogout, CmdWhoami, CmdStatus, CmdUser, CmdData:
		return true
	default:
		return false
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose    bool
	JSON       bool   // Output in JSON format
	Ephemeral  bool   // Keep the token in memory only
	APIURL     string // Overrides api.base_url
	ConfigPath string // Explicit config file

	// Subcommand is the first argument after the command (e.g. "show", "add")
	Subcommand string

	// Raw args (remaining after the command and global flags)
	Raw []string
}

const usageText = `ottpulse - terminal dashboard for OTT publishing analytics

Usage:
  ottpulse                          Start the dashboard (default)
  ottpulse tui                      Start the dashboard
  ottpulse login [--email E] [--password-stdin]
                                    Sign in and store the session token
  ottpulse logout                   Sign out and discard the stored token
  ottpulse whoami [--json]          Show the signed-in user and access tier
  ottpulse status [--json]          Check the backend and the stored session
  ottpulse config [show|path|init|get KEY|set KEY VALUE]
                                    Show or change configuration
  ottpulse user add --email E --name N --role R [--password-stdin]
                                    Create an account (full access only)
  ottpulse data [list|submit TARGET [--file PATH]|show settings]
                                    Submit admin data as JSON (stdin or file)
  ottpulse version                  Show version information
  ottpulse help                     Show this help

Global flags:
  --api URL          Backend base URL (default http://localhost:3001/api)
  --config PATH      Config file (default ~/.ottpulse/config.toml)
  --ephemeral        Keep the session token in memory only
  --verbose, -v      Debug logging, mirrored to stderr for commands
  --json             Machine-readable output

Roles: admin, executive, pm, tpm, em, sre

Environment:
  OTTPULSE_HOME, OTTPULSE_API_URL, OTTPULSE_TIMEOUT_SECS, OTTPULSE_TOKEN_STORE,
  OTTPULSE_TOKEN_PATH, OTTPULSE_LOG_LEVEL, OTTPULSE_LOG_FORMAT, NO_COLOR

Exit codes:
  0 ok, 1 error, 2 usage, 3 config, 4 auth, 5 network
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// Parse splits argv (without the program name) into a command and its args.
func Parse(argv []string) (Command, Args, error) {
	remaining, parsedArgs, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, parsedArgs, err
	}

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs, nil
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		parsedArgs.Subcommand = remaining[0]
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs, nil
	case "login", "signin":
		return CmdLogin, parsedArgs, nil
	case "logout", "signout":
		return CmdLogout, parsedArgs, nil
	case "whoami", "me":
		return CmdWhoami, parsedArgs, nil
	case "status", "s":
		return CmdStatus, parsedArgs, nil
	case "config":
		return CmdConfig, parsedArgs, nil
	case "user", "users":
		return CmdUser, parsedArgs, nil
	case "data", "admin":
		return CmdData, parsedArgs, nil
	case "version", "--version":
		return CmdVersion, parsedArgs, nil
	case "help", "--help", "-h":
		return CmdHelp, parsedArgs, nil
	default:
		return CmdHelp, parsedArgs, &ValidationError{
			Field:   "command",
			Value:   cmd,
			Reason:  "unknown command",
			Example: "ottpulse help",
		}
	}
}

func parseGlobalFlags(args []string) ([]string, Args, error) {
	var remaining []string
	var parsedArgs Args

	value := func(i int, name string) (string, error) {
		if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
			return "", ErrMissingArgument(name, "ottpulse "+name+" VALUE")
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			remaining = append(remaining, args[i:]...)
			return remaining, parsedArgs, nil
		case arg == "-v" || arg == "--verbose":
			parsedArgs.Verbose = true
		case arg == "--json":
			parsedArgs.JSON = true
		case arg == "--ephemeral":
			parsedArgs.Ephemeral = true
		case arg == "--api" || arg == "--config":
			v, err := value(i, arg)
			if err != nil {
				return nil, parsedArgs, err
			}
			if arg == "--api" {
				parsedArgs.APIURL = v
			} else {
				parsedArgs.ConfigPath = v
			}
			i++
		case strings.HasPrefix(arg, "--api="):
			parsedArgs.APIURL = strings.TrimPrefix(arg, "--api=")
		case strings.HasPrefix(arg, "--config="):
			parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, parsedArgs, nil
}

// =============================================================================
// DISPATCH
// =============================================================================

// Dispatch runs cmd against env.
func Dispatch(ctx context.Context, env *Env, cmd Command, args Args) error {
	switch cmd {
	case CmdTUI:
		return RunTUI(ctx, env)
	case CmdLogin:
		return HandleLogin(ctx, env, args)
	case CmdLogout:
		return HandleLogout(ctx, env, args)
	case CmdWhoami:
		return HandleWhoami(ctx, env, args)
	case CmdStatus:
		return HandleStatus(ctx, env, args)
	case CmdConfig:
		return HandleConfig(env.Stdout, args)
	case CmdUser:
		return HandleUser(ctx, env, args)
	case CmdData:
		return HandleData(ctx, env, args)
	case CmdVersion:
		return HandleVersion(env.Stdout, args)
	default:
		PrintUsage(env.Stdout)
		return nil
	}
}

// HandleVersion prints version information.
func HandleVersion(w io.Writer, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
			"platform":   runtime.GOOS + "/" + runtime.GOARCH,
		}).Print(w)
	}
	fmt.Fprintf(w, "ottpulse %s\n", Version)
	fmt.Fprintf(w, "  Commit:   %s\n", GitCommit)
	fmt.Fprintf(w, "  Built:    %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:       %s\n", runtime.Version())
	fmt.Fprintf(w, "  Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
