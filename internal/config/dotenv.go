// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DotEnvFile is the name of the optional environment file.
const DotEnvFile = ".env"

// LoadDotEnv reads OTTPULSE_* variables from .env in the working directory
// and then from the ottpulse directory. Variables already set in the process
// environment win, as do those from the first file. Missing files are skipped.
//
// Call it before Load so the values take part in the environment overrides.
func LoadDotEnv() error {
	paths := []string{DotEnvFile}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, DotEnvFile))
	}
	for _, p := range paths {
		if err := loadDotEnvFile(p); err != nil {
			return err
		}
	}
	return nil
}

func loadDotEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
