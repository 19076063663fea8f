// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jeranaias/ottpulse/internal/identity"
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

// backend is a fake of the auth endpoints.
type backend struct {
	mu        sync.Mutex
	users     map[string]identity.User // by token
	passwords map[string]string        // email -> password
	tokens    map[string]string        // email -> token
	loggedOut []string
	created   []identity.User
	submitted map[string][]string // path -> raw bodies
	settings  json.RawMessage
}

func newBackend(t *testing.T) (*backend, string) {
	t.Helper()
	b := &backend{
		users: map[string]identity.User{
			"tok-admin": {ID: 1, Email: "dana@example.com", Name: "Dana Lee", Role: identity.RoleAdmin},
			"tok-exec":  {ID: 2, Email: "sam@example.com", Name: "Sam Park", Role: identity.RoleExecutive},
		},
		passwords: map[string]string{"dana@example.com": "secret", "sam@example.com": "hunter2"},
		tokens:    map[string]string{"dana@example.com": "tok-admin", "sam@example.com": "tok-exec"},
		submitted: make(map[string][]string),
		settings:  json.RawMessage(`{"refreshSecs":60,"theme":"dark"}`),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.passwords[body.Email] != body.Password || body.Password == "" {
			reply(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid credentials"})
			return
		}
		tok := b.tokens[body.Email]
		reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"token": tok, "user": b.users[tok]}})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(r)
		if !ok {
			reply(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid token"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"success": true, "data": u})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.loggedOut = append(b.loggedOut, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		b.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.caller(r)
		if !ok || u.Role != identity.RoleAdmin {
			reply(w, http.StatusForbidden, map[string]any{"success": false, "error": "Forbidden"})
			return
		}
		var req struct {
			Email, Name, Password string
			Role                  identity.Role
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		created := identity.User{ID: int64(10 + len(b.created)), Email: req.Email, Name: req.Name, Role: req.Role}
		b.created = append(b.created, created)
		b.passwords[req.Email] = req.Password
		b.mu.Unlock()
		reply(w, http.StatusCreated, map[string]any{"success": true, "data": created})
	})

	dataEntry := func(path string, allowed func(identity.Role) bool) {
		mux.HandleFunc("/api"+path, func(w http.ResponseWriter, r *http.Request) {
			u, ok := b.caller(r)
			if !ok {
				reply(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid token"})
				return
			}
			if !allowed(u.Role) {
				reply(w, http.StatusForbidden, map[string]any{"success": false, "error": "Forbidden"})
				return
			}
			b.mu.Lock()
			defer b.mu.Unlock()
			if r.Method == http.MethodGet {
				reply(w, http.StatusOK, map[string]any{"success": true, "data": b.settings})
				return
			}
			body, _ := io.ReadAll(r.Body)
			b.submitted[path] = append(b.submitted[path], string(body))
			if path == "/admin/settings" {
				b.settings = body
			}
			reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"saved": true, "by": u.Email}})
		})
	}
	anyone := func(identity.Role) bool { return true }
	dataEntry("/admin/settings", identity.Role.HasFullAccess)
	dataEntry("/admin/user-data", identity.Role.HasFullAccess)
	dataEntry("/admin/publishing-data", identity.Role.HasInputAccess)
	dataEntry("/admin/dashboard-data", identity.Role.HasInputAccess)
	dataEntry("/admin/platform-data", identity.Role.HasInputAccess)
	dataEntry("/reports/custom", anyone)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv.URL + "/api"
}

func (b *backend) caller(r *http.Request) (identity.User, bool) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[tok]
	return u, ok
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// result is the outcome of one process invocation.
type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, argv ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(context.Background(), argv, Stdio{
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &errOut,
	})
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

// decodeData unmarshals the data field of a JSON response.
func decodeData(t *testing.T, s string, into any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(s), &resp); err != nil {
		t.Fatalf("invalid JSON output %q: %v", s, err)
	}
	if err := json.Unmarshal(resp.Data, into); err != nil {
		t.Fatalf("invalid data %s: %v", resp.Data, err)
	}
}
