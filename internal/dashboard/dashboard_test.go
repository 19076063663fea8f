// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ottpulse/internal/api"
	"github.com/jeranaias/ottpulse/internal/identity"
)

type fakeClient struct {
	body   string
	err    error
	paths  []string
	posted []string
}

func (f *fakeClient) Get(ctx context.Context, path string, out any) error {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.body), out)
}

func (f *fakeClient) Post(ctx context.Context, path string, body, out any) error {
	f.paths = append(f.paths, path)
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	f.posted = append(f.posted, string(data))
	if f.err != nil {
		return f.err
	}
	if f.body == "" {
		return nil
	}
	return json.Unmarshal([]byte(f.body), out)
}

func TestFlatten(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{
		"uptime": 99.95,
		"healthy": true,
		"owner": null,
		"cdn": {"hitRatio": 0.93, "regions": ["eu", "us"]},
		"empty": [],
		"title": "Weekly"
	}`), &doc))

	got := Flatten(doc)
	assert.Equal(t, []Metric{
		{"cdn.hitRatio", "0.93"},
		{"cdn.regions[0]", "eu"},
		{"cdn.regions[1]", "us"},
		{"empty", "[]"},
		{"healthy", "true"},
		{"owner", "-"},
		{"title", "Weekly"},
		{"uptime", "99.95"},
	}, got)
}

func TestFlatten_Scalar(t *testing.T) {
	assert.Equal(t, []Metric{{"value", "42"}}, Flatten(float64(42)))
}

func TestService_Fetch(t *testing.T) {
	g := &fakeClient{body: `{"published": 120, "failed": 3}`}
	svc := NewService(g)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	section, ok := identity.LookupSection(identity.SectionPublishing)
	require.True(t, ok)

	rep, err := svc.Fetch(context.Background(), section)
	require.NoError(t, err)
	assert.Equal(t, []string{"/publishing/kpis"}, g.paths)
	assert.Equal(t, fixed, rep.FetchedAt)
	assert.Equal(t, []Metric{{"failed", "3"}, {"published", "120"}}, rep.Metrics)
}

func TestService_FetchReturnsClientError(t *testing.T) {
	want := &api.ResponseError{Status: 400, Message: "bad range"}
	svc := NewService(&fakeClient{err: want})

	_, err := svc.FetchID(context.Background(), identity.SectionReports)
	assert.True(t, errors.Is(err, want) || errors.As(err, new(*api.ResponseError)))
	assert.Equal(t, "bad range", api.ServerMessage(err))
}

func TestService_FetchIDUnknown(t *testing.T) {
	_, err := NewService(&fakeClient{}).FetchID(context.Background(), identity.SectionID("nope"))
	assert.Error(t, err)
}
