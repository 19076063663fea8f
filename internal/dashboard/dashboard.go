// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard fetches the KPI document behind each menu section and
// flattens it into key/value rows for display. It also posts data-entry
// payloads to the admin endpoints.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jeranaias/ottpulse/internal/identity"
)

// Client is the subset of *api.Client the service needs.
type Client interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Metric is one flattened leaf of a KPI document.
type Metric struct {
	Key   string
	Value string
}

// Report is a fetched section.
type Report struct {
	Section   identity.Section
	Metrics   []Metric
	FetchedAt time.Time
}

// Service fetches section documents and submits data through the shared
// API client.
type Service struct {
	client Client
	now    func() time.Time
}

// NewService returns a service backed by client.
func NewService(client Client) *Service {
	return &Service{client: client, now: time.Now}
}

// Fetch loads the document for section. Errors from the client are returned
// as-is; app-wide failures have already been reported by the client.
func (s *Service) Fetch(ctx context.Context, section identity.Section) (*Report, error) {
	var doc any
	if err := s.client.Get(ctx, section.Path, &doc); err != nil {
		return nil, err
	}
	return &Report{
		Section:   section,
		Metrics:   Flatten(doc),
		FetchedAt: s.now(),
	}, nil
}

// FetchID looks the section up by id and fetches it.
func (s *Service) FetchID(ctx context.Context, id identity.SectionID) (*Report, error) {
	section, ok := identity.LookupSection(id)
	if !ok {
		return nil, fmt.Errorf("unknown section %q", id)
	}
	return s.Fetch(ctx, section)
}

// Flatten turns a decoded JSON value into rows sorted by key. Nested objects
// use dotted keys and arrays use indexes: "platforms[0].name".
func Flatten(doc any) []Metric {
	var out []Metric
	flatten("", doc, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func flatten(prefix string, v any, out *[]Metric) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 && prefix != "" {
			*out = append(*out, Metric{Key: prefix, Value: "{}"})
		}
		for k, child := range val {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, out)
		}
	case []any:
		if len(val) == 0 {
			*out = append(*out, Metric{Key: prefix, Value: "[]"})
		}
		for i, child := range val {
			flatten(prefix+"["+strconv.Itoa(i)+"]", child, out)
		}
	default:
		if prefix == "" {
			prefix = "value"
		}
		*out = append(*out, Metric{Key: prefix, Value: formatScalar(val)})
	}
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
