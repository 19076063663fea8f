// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/ottpulse/internal/api"
	"github.com/jeranaias/ottpulse/internal/identity"
	"github.com/jeranaias/ottpulse/internal/logging"
	"github.com/jeranaias/ottpulse/internal/tokenstore"
)

// DefaultLogoutTimeout bounds the best-effort server logout notification.
const DefaultLogoutTimeout = 5 * time.Second

// Authenticator is the subset of the auth endpoints the manager needs.
// *api.AuthService implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	CurrentUser(ctx context.Context) (*identity.User, error)
	Logout(ctx context.Context, token string) error
}

// =============================================================================
// STATE
// =============================================================================

// State is a point-in-time view of the session.
type State struct {
	User    *identity.User
	Loading bool
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Capabilities derives the capability flags from the snapshot's user.
func (s State) Capabilities() identity.Capabilities {
	return identity.CapabilitiesFor(s.User)
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager holds the authenticated identity and mediates every change to it.
type Manager struct {
	auth          Authenticator
	store         tokenstore.Store
	logger        *slog.Logger
	logoutTimeout time.Duration

	mu      sync.Mutex
	user    *identity.User
	token   string // token the current user was resolved from
	loading bool

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int

	// pending tracks background logout notifications.
	pending sync.WaitGroup
}

// ManagerOption is a functional option for configuring Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger. Nil discards.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLogoutTimeout bounds the background logout request.
func WithLogoutTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.logoutTimeout = d
		}
	}
}

// NewManager returns a manager in the loading state. Call Restore once.
func NewManager(auth Authenticator, store tokenstore.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		auth:          auth,
		store:         store,
		logger:        logging.Discard(),
		logoutTimeout: DefaultLogoutTimeout,
		loading:       true,
		subs:          make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Restore validates a previously stored token. Any failure discards the
// token and leaves the session anonymous. Loading is false afterwards.
func (m *Manager) Restore(ctx context.Context) {
	tok, err := m.store.Token()
	if err != nil {
		m.logger.Warn("failed to read stored token", "error", err)
	}

	var user *identity.User
	if tok != "" {
		user, err = m.auth.CurrentUser(ctx)
		switch {
		case err != nil:
			m.logger.Info("stored session rejected", "error", err)
			user = nil
		case user == nil || !user.Role.Valid():
			m.logger.Info("stored session returned no usable identity")
			user = nil
		}
	}

	m.mu.Lock()
	if tok != "" && user == nil {
		if err := m.store.Clear(); err != nil {
			m.logger.Error("failed to clear stored token", "error", err)
		}
	}
	m.user = user
	m.token = ""
	if user != nil {
		m.token = tok
	}
	m.loading = false
	m.mu.Unlock()

	if user != nil {
		m.logger.Info("session restored", "user_id", user.ID, "role", user.Role)
	}
	m.publish()
}

// Login authenticates and, on success, persists the token and sets the
// user together. On failure nothing changes and an *AuthenticationError is
// returned.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		msg := api.ServerMessage(err)
		if msg == "" {
			msg = DefaultLoginMessage
		}
		m.logger.Info("login failed", "error", err)
		return &AuthenticationError{Message: msg, Err: err}
	}
	if res == nil || res.Token == "" {
		return &AuthenticationError{Message: DefaultLoginMessage}
	}
	if !res.User.Role.Valid() {
		m.logger.Info("login returned no usable identity", "user_id", res.User.ID)
		return &AuthenticationError{Message: DefaultLoginMessage}
	}

	user := res.User
	m.mu.Lock()
	if err := m.store.SetToken(res.Token); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.user = &user
	m.token = res.Token
	m.mu.Unlock()

	m.logger.Info("login succeeded", "user_id", user.ID, "role", user.Role)
	m.publish()
	return nil
}

// Logout signs out immediately. The server is told afterwards in the
// background using the token captured before it was cleared; that request's
// outcome is ignored.
func (m *Manager) Logout() {
	m.mu.Lock()
	tok, err := m.store.Token()
	if err != nil {
		m.logger.Warn("failed to read token during logout", "error", err)
	}
	if err := m.store.Clear(); err != nil {
		m.logger.Error("failed to clear token", "error", err)
	}
	m.user = nil
	m.token = ""
	m.mu.Unlock()

	m.logger.Info("logged out")
	m.publish()

	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		ctx, cancel := context.WithTimeout(api.Quiet(context.Background()), m.logoutTimeout)
		defer cancel()
		if err := m.auth.Logout(ctx, tok); err != nil {
			m.logger.Debug("server logout failed", "error", err)
		}
	}()
}

// Expire drops the session after the server rejected the token.
func (m *Manager) Expire() {
	m.mu.Lock()
	wasAuthenticated := m.user != nil
	if err := m.store.Clear(); err != nil {
		m.logger.Error("failed to clear token", "error", err)
	}
	m.user = nil
	m.token = ""
	m.mu.Unlock()

	if wasAuthenticated {
		m.logger.Info("session expired")
	}
	m.publish()
}

// Wait blocks until background logout notifications have finished.
func (m *Manager) Wait() {
	m.pending.Wait()
}

// =============================================================================
// READS
// =============================================================================

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *identity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Loading reports whether Restore has not yet finished.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Authenticated reports whether a user is signed in.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}

// Capabilities returns the flags for the current user, recomputed per call.
func (m *Manager) Capabilities() identity.Capabilities {
	return identity.CapabilitiesFor(m.User())
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	return State{User: m.User(), Loading: m.Loading()}
}

// =============================================================================
// OBSERVERS
// =============================================================================

// Subscribe registers fn to receive a snapshot after every transition. It
// returns a function that removes the subscription. fn must not block.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) publish() {
	state := m.Snapshot()

	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// WatchStore follows changes made to the token slot by another process. A
// removed token expires the session; a token replaced with a different value
// is validated again through Restore. It blocks until ctx is done and returns
// nil immediately for stores that cannot be watched.
func (m *Manager) WatchStore(ctx context.Context) error {
	w, ok := m.store.(tokenstore.Watcher)
	if !ok {
		return nil
	}
	return w.Watch(ctx, func(present bool) {
		if !present {
			if m.Authenticated() {
				m.logger.Info("token removed externally")
				m.Expire()
			}
			return
		}
		if m.tokenChanged() {
			m.logger.Info("token replaced externally")
			m.Restore(ctx)
		}
	})
}

// tokenChanged reports whether the stored token differs from the one the
// current user was resolved from.
func (m *Manager) tokenChanged() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, err := m.store.Token()
	if err != nil {
		m.logger.Warn("failed to read stored token", "error", err)
		return false
	}
	return tok != "" && tok != m.token
}
