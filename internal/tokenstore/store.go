// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Key is the well-known name of the token slot.
const Key = "token"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown token store backend")

// Store is a single mutable slot for the bearer token. Implementations must
// make each call atomic with respect to the others.
type Store interface {
	// Token returns the stored token, or "" when none is stored.
	Token() (string, error)
	// SetToken replaces the stored token.
	SetToken(token string) error
	// Clear removes the token. Clearing an empty slot is not an error.
	Clear() error
	// Close releases backend resources.
	Close() error
}

// Watcher is implemented by stores that can report changes made outside this
// process. fn receives whether a token is present after the change.
type Watcher interface {
	Watch(ctx context.Context, fn func(present bool)) error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Path is the token file for "file" and the database file for "sqlite".
	Path string
}

// Open returns the configured backend.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		if opts.Path == "" {
			return nil, errors.New("token store: file backend requires a path")
		}
		return NewFileStore(opts.Path), nil
	case BackendSQLite:
		if opts.Path == "" {
			return nil, errors.New("token store: sqlite backend requires a path")
		}
		return OpenSQLiteStore(opts.Path)
	case BackendMemory:
		return NewMemoryStore(""), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore keeps the token in process memory only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a store pre-loaded with token ("" for empty).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Token implements Store.
func (m *MemoryStore) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// SetToken implements Store.
func (m *MemoryStore) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
