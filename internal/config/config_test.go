// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points OTTPULSE_HOME at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("OTTPULSE_HOME", dir)
	for _, k := range []string{
		"OTTPULSE_API_URL", "OTTPULSE_TIMEOUT_SECS", "OTTPULSE_TOKEN_STORE",
		"OTTPULSE_TOKEN_PATH", "OTTPULSE_LOG_LEVEL", "OTTPULSE_LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:3001/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout())
	assert.Equal(t, "file", cfg.Session.TokenStore)
}

func TestLoad_NoFileGivesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOMLPartial(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[api]
base_url = "https://kpi.example.com/api/"
timeout_secs = 10

[ui]
theme = "light"
`), 0600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://kpi.example.com/api", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 10, cfg.API.TimeoutSecs)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "info", cfg.Logging.Level, "unset keys keep defaults")
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"session":{"token_store":"sqlite"}}`), 0600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Session.TokenStore)

	p, err := cfg.TokenPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "state.db"), p)
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nformat = \"json\"\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[api]\nbase_uri = \"http://x\"\n"), 0600))

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_uri")
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("OTTPULSE_API_URL", "https://staging.example.com/api")
	t.Setenv("OTTPULSE_TIMEOUT_SECS", "5")
	t.Setenv("OTTPULSE_TOKEN_STORE", "memory")
	t.Setenv("OTTPULSE_TOKEN_PATH", "/tmp/tok")
	t.Setenv("OTTPULSE_LOG_LEVEL", "debug")
	t.Setenv("OTTPULSE_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.TimeoutSecs)
	assert.Equal(t, "memory", cfg.Session.TokenStore)
	assert.Equal(t, "/tmp/tok", cfg.Session.TokenPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestApplyEnvOverrides_BadTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("OTTPULSE_TIMEOUT_SECS", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.timeout_secs")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "ftp://x"
	cfg.API.TimeoutSecs = 0
	cfg.Session.TokenStore = "keychain"
	cfg.Logging.Level = "trace"
	cfg.UI.Theme = "neon"
	cfg.UI.DefaultSection = "finance"

	err := cfg.Validate()
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, len(verrs))
	for i, v := range verrs {
		fields[i] = v.Field
	}
	assert.ElementsMatch(t, []string{
		"api.base_url", "api.timeout_secs", "session.token_store",
		"logging.level", "ui.theme", "ui.default_section",
	}, fields)
}

func TestSaveTOML_RoundTripAndPermissions(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://kpi.example.com/api"
	cfg.API.MaxRPS = 2.5
	require.NoError(t, SaveTOML(cfg, path))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveJSON_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Default()
	cfg.UI.CompactMode = true
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.UI.CompactMode)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("api.timeout_secs", "45"))
	require.NoError(t, cfg.Set("api.max_rps", "1.5"))
	require.NoError(t, cfg.Set("session.watch_token", "false"))
	require.NoError(t, cfg.Set("ui.theme", "light"))

	v, err := cfg.Get("api.timeout_secs")
	require.NoError(t, err)
	assert.Equal(t, 45, v)
	assert.Equal(t, 1.5, cfg.API.MaxRPS)
	assert.False(t, cfg.Session.WatchToken)
	assert.Equal(t, "light", cfg.UI.Theme)

	_, err = cfg.Get("api.nope")
	assert.Error(t, err)
	_, err = cfg.Get("api")
	assert.Error(t, err, "sections are not values")
	assert.Error(t, cfg.Set("api.timeout_secs", "ten"))
	assert.Error(t, cfg.Set("session.watch_token", "maybe"))
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "api.base_url")
	assert.Contains(t, keys, "session.token_store")
	assert.Contains(t, keys, "ui.toast_seconds")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestLogPath(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	p, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ottpulse.log"), p)

	cfg.Logging.Path = "/var/log/ottpulse.log"
	p, _ = cfg.LogPath()
	assert.Equal(t, "/var/log/ottpulse.log", p)
}

func TestString(t *testing.T) {
	s := Default().String()
	assert.Contains(t, s, "[api]")
	assert.Contains(t, s, `base_url = "http://localhost:3001/api"`)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	// godotenv keeps variables that are already present, even when empty.
	require.NoError(t, os.Unsetenv("OTTPULSE_API_URL"))
	require.NoError(t, os.Unsetenv("OTTPULSE_LOG_LEVEL"))
	t.Setenv("OTTPULSE_TIMEOUT_SECS", "7")
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(
		"# staging backend\nOTTPULSE_API_URL=https://staging.example.com/api\nOTTPULSE_TIMEOUT_SECS=99\nOTTPULSE_LOG_LEVEL=debug\n"), 0600))

	require.NoError(t, LoadDotEnv())
	t.Cleanup(func() {
		os.Unsetenv("OTTPULSE_API_URL")
		os.Unsetenv("OTTPULSE_LOG_LEVEL")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 7, cfg.API.TimeoutSecs, "process environment wins")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile), []byte("OTTPULSE_API_URL='unterminated\n"), 0600))
	assert.Error(t, LoadDotEnv())
}
