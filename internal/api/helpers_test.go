// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jeranaias/ottpulse/internal/tokenstore"
)

// recorder captures notices and navigations.
type recorder struct {
	mu       sync.Mutex
	notices  []Notice
	navCount atomic.Int32
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) ToLogin() { r.navCount.Add(1) }

func (r *recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

func newTestClient(t *testing.T, h http.HandlerFunc, token string, opts ...ClientOption) (*Client, *tokenstore.MemoryStore, *recorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemoryStore(token)
	rec := &recorder{}
	base := []ClientOption{WithBaseURL(srv.URL), WithNotifier(rec), WithNavigator(rec)}
	return New(store, append(base, opts...)...), store, rec
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
