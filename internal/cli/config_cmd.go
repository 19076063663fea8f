// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - The config command. It runs without the session stack so a
// broken file can still be inspected and rewritten.

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/jeranaias/ottpulse/internal/config"
)

const configUsage = "ottpulse config [show|path|init [--force]|keys|get KEY|set KEY VALUE]"

// HandleConfig handles "config show|path|init|keys|get|set".
func HandleConfig(w io.Writer, args Args) error {
	p := NewArgParser(args.Raw, "force")
	if unknown := p.Unknown("force"); len(unknown) > 0 {
		return ErrUnknownFlags("config", unknown)
	}

	switch p.Subcommand() {
	case "", "show":
		return configShow(w, args)
	case "path":
		return configPath(w, args)
	case "init":
		return configInit(w, args, p.BoolFlag("force"))
	case "keys":
		return configKeys(w, args)
	case "get":
		if p.Positional(1) == "" {
			return ErrMissingArgument("key", "ottpulse config get api.base_url")
		}
		return configGet(w, args, p.Positional(1))
	case "set":
		if p.PositionalCount() < 3 {
			return ErrMissingArgument("key and value", "ottpulse config set api.timeout_secs 10")
		}
		return configSet(w, args, p.Positional(1), p.Positional(2))
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   p.Subcommand(),
			Reason:  "unknown config subcommand",
			Example: configUsage,
		}
	}
}

// targetPath is the file config writes go to.
func targetPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func configShow(w io.Writer, args Args) error {
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return configError(err)
	}
	if args.JSON {
		return NewJSONResponse("config", cfg).Print(w)
	}
	fmt.Fprint(w, cfg.String())
	return nil
}

func configPath(w io.Writer, args Args) error {
	path, err := targetPath(args)
	if err != nil {
		return configError(err)
	}
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		cfg = config.Default()
	}
	tokenPath, _ := cfg.TokenPath()
	logPath, _ := cfg.LogPath()

	_, statErr := os.Stat(path)
	exists := statErr == nil

	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{
			"config_path": path,
			"exists":      exists,
			"token_path":  tokenPath,
			"log_path":    logPath,
		}).Print(w)
	}
	state := ""
	if !exists {
		state = " " + DimStyle.Render("(not created; defaults in use)")
	}
	fmt.Fprintln(w, RenderField("Config", path)+state)
	fmt.Fprintln(w, RenderField("Token", tokenPath))
	fmt.Fprintln(w, RenderField("Log", logPath))
	return nil
}

func configInit(w io.Writer, args Args, force bool) error {
	path, err := targetPath(args)
	if err != nil {
		return configError(err)
	}
	if _, err := os.Stat(path); err == nil && !force {
		return &CommandError{
			Command: "config",
			Action:  "init",
			Reason:  path + " already exists (use --force to overwrite)",
		}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return configError(err)
	}

	if err := save(config.Default(), path); err != nil {
		return configError(err)
	}
	if args.JSON {
		return NewJSONResponse("config", map[string]string{"created": path}).Print(w)
	}
	fmt.Fprintf(w, "%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

func configKeys(w io.Writer, args Args) error {
	keys := config.Keys()
	sort.Strings(keys)
	if args.JSON {
		return NewJSONResponse("config", keys).Print(w)
	}
	fmt.Fprintln(w, strings.Join(keys, "\n"))
	return nil
}

func configGet(w io.Writer, args Args, key string) error {
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return configError(err)
	}
	v, err := cfg.Get(key)
	if err != nil {
		return NewValidationError("key", key, err.Error())
	}
	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{key: v}).Print(w)
	}
	fmt.Fprintln(w, v)
	return nil
}

// configSet edits the file only. Environment overrides are not written back.
func configSet(w io.Writer, args Args, key, value string) error {
	path, err := targetPath(args)
	if err != nil {
		return configError(err)
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := loadInto(cfg, path); err != nil {
			return configError(err)
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return NewValidationError("key", key, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return configError(err)
	}
	if err := save(cfg, path); err != nil {
		return configError(err)
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]string{"key": key, "value": value, "path": path}).Print(w)
	}
	fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
	return nil
}

func loadInto(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.LoadJSON(cfg, path)
	}
	return config.LoadTOML(cfg, path)
}

func save(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}
