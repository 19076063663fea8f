// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/ottpulse/internal/identity"
)

// Access is the capability a data-entry target requires.
type Access int

const (
	AccessSignedIn Access = iota
	AccessInput
	AccessFull
)

// String returns the tier name shown in permission errors.
func (a Access) String() string {
	switch a {
	case AccessInput:
		return "Input Access"
	case AccessFull:
		return "Full Access"
	default:
		return "a signed-in session"
	}
}

// Allows reports whether caps satisfy a.
func (a Access) Allows(caps identity.Capabilities) bool {
	switch a {
	case AccessInput:
		return caps.HasInputAccess
	case AccessFull:
		return caps.HasFullAccess
	default:
		return true
	}
}

// Target is a backend endpoint that accepts submitted data.
type Target struct {
	Name     string
	Label    string
	Path     string
	Requires Access
	// Readable targets also answer GET with their current value.
	Readable bool
}

var targets = []Target{
	{Name: "settings", Label: "Settings", Path: "/admin/settings", Requires: AccessFull, Readable: true},
	{Name: "users", Label: "User data", Path: "/admin/user-data", Requires: AccessFull},
	{Name: "publishing", Label: "Publishing data", Path: "/admin/publishing-data", Requires: AccessInput},
	{Name: "dashboard", Label: "Dashboard data", Path: "/admin/dashboard-data", Requires: AccessInput},
	{Name: "platform", Label: "Platform data", Path: "/admin/platform-data", Requires: AccessInput},
	{Name: "report", Label: "Custom report", Path: "/reports/custom", Requires: AccessSignedIn},
}

// Targets returns every data-entry target in display order.
func Targets() []Target {
	out := make([]Target, len(targets))
	copy(out, targets)
	return out
}

// TargetNames returns the accepted target names.
func TargetNames() []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}

// LookupTarget finds a target by name, case-insensitively. "user" and
// "user-data" style aliases resolve to the same target.
func LookupTarget(name string) (Target, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, "-data")
	for _, t := range targets {
		if t.Name == name || strings.TrimSuffix(t.Name, "s") == name {
			return t, true
		}
	}
	return Target{}, false
}

// ErrInvalidPayload means submitted data is not a JSON object.
var ErrInvalidPayload = errors.New("payload must be a JSON object")

// ParsePayload checks that data is a single JSON object.
func ParsePayload(data []byte) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, ErrInvalidPayload
	}
	return json.RawMessage(data), nil
}

// Submit posts payload to target and returns the flattened response data.
// The caller checks access first; the server enforces it again.
func (s *Service) Submit(ctx context.Context, target Target, payload json.RawMessage) ([]Metric, error) {
	var doc any
	if err := s.client.Post(ctx, target.Path, payload, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return Flatten(doc), nil
}

// Current fetches the stored value of a readable target.
func (s *Service) Current(ctx context.Context, target Target) ([]Metric, error) {
	if !target.Readable {
		return nil, fmt.Errorf("%s cannot be read back", target.Label)
	}
	var doc any
	if err := s.client.Get(ctx, target.Path, &doc); err != nil {
		return nil, err
	}
	return Flatten(doc), nil
}
