// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ottpulse/internal/session"
)

// Sender delivers messages into a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge connects the non-UI layers to the program. It implements
// api.Navigator and is a session subscriber.
//
// The API client and session manager are built before the program exists,
// so the bridge drops messages until Attach is called.
type Bridge struct {
	mu sync.Mutex
	p  Sender
}

// NewBridge returns an unattached bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the program that receives messages.
func (b *Bridge) Attach(p Sender) {
	b.mu.Lock()
	b.p = p
	b.mu.Unlock()
}

// ToLogin implements api.Navigator.
func (b *Bridge) ToLogin() {
	b.send(NavigateMsg{})
}

// SessionChanged is passed to session.Manager.Subscribe.
func (b *Bridge) SessionChanged(session.State) {
	b.send(SessionMsg{})
}

// send never blocks the caller. Transitions can be triggered from inside
// Update, and tea.Program.Send blocks until the event loop reads.
func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.p
	b.mu.Unlock()
	if p == nil {
		return
	}
	go p.Send(msg)
}
