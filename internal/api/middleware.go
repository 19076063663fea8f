// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/ottpulse/internal/tokenstore"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do implements Doer.
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Middleware wraps a Doer. Middlewares may set headers on the request they
// receive; the request is owned by the chain for the duration of the call.
type Middleware func(next Doer) Doer

// Chain wraps base so that mws[0] is the outermost layer.
func Chain(base Doer, mws ...Middleware) Doer {
	d := base
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			d = mws[i](d)
		}
	}
	return d
}

// =============================================================================
// REQUEST SIDE
// =============================================================================

// BearerAuth attaches "Authorization: Bearer <token>" when the store holds a
// token. The store is read on every request. With no token the request's
// existing Authorization header, if any, is left alone.
func BearerAuth(store tokenstore.Store) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			tok, err := store.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrTokenStore, err)
			}
			if tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
			return next.Do(req)
		})
	}
}

// RequestID stamps a fresh UUID on requests that do not already carry one.
func RequestID() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) == "" {
				req.Header.Set(RequestIDHeader, uuid.NewString())
			}
			return next.Do(req)
		})
	}
}

// Logging records method, path, status and duration. Headers and bodies are
// never logged; they carry credentials.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		return nil
	}
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.Do(req)
			attrs := []any{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("request_id", req.Header.Get(RequestIDHeader)),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("api request failed", append(attrs, slog.String("error", err.Error()))...)
				return resp, err
			}
			logger.Debug("api request", append(attrs, slog.Int("status", resp.StatusCode))...)
			return resp, err
		})
	}
}

// BufferBody reads at most limit bytes of the response body before returning,
// so a body that stalls or breaks surfaces as a transport error to the outer
// layers. The original body is closed and replaced with the buffered bytes.
func BufferBody(limit int64) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err != nil {
				return resp, err
			}
			data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read body: %w", err)
			}
			resp.Body = io.NopCloser(bytes.NewReader(data))
			return resp, nil
		})
	}
}

// RateLimit blocks each request until limiter admits it. A nil limiter
// disables the layer.
func RateLimit(limiter *rate.Limiter) Middleware {
	if limiter == nil {
		return nil
	}
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
			return next.Do(req)
		})
	}
}

// =============================================================================
// QUIET REQUESTS
// =============================================================================

type quietKey struct{}

// Quiet marks ctx so that Triage performs no side effects for requests made
// with it. The error is still returned to the caller.
func Quiet(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey{}, true)
}

// IsQuiet reports whether ctx was marked with Quiet.
func IsQuiet(ctx context.Context) bool {
	v, _ := ctx.Value(quietKey{}).(bool)
	return v
}
