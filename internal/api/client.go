// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/ottpulse/internal/tokenstore"
)

// Configuration constants.
const (
	// DefaultBaseURL is used when neither config nor environment names a backend.
	DefaultBaseURL = "http://localhost:3001/api"

	// DefaultTimeout bounds every request from send to fully read response.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// DefaultUserAgent identifies the client to the backend.
	DefaultUserAgent = "ottpulse"
)

// envelope is the backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (e *envelope) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// Client sends requests to the backend through the middleware chain.
// A Client is safe for concurrent use.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	store     tokenstore.Store
	base      Doer
	limiter   *rate.Limiter
	logger    *slog.Logger
	doer      Doer

	notifier  Notifier
	navigator Navigator

	// mu guards expired.
	mu      sync.RWMutex
	expired []func()
}

// ClientOption is a functional option for configuring Client.
type ClientOption func(*Client)

// WithBaseURL sets the backend root, e.g. "https://kpi.example.com/api".
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url = strings.TrimSpace(url); url != "" {
			c.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the innermost transport. The client's own Timeout
// is respected as given.
func WithHTTPClient(d Doer) ClientOption {
	return func(c *Client) {
		if d != nil {
			c.base = d
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero disables it.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithNotifier sets where triage notices are shown.
func WithNotifier(n Notifier) ClientOption {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithNavigator sets how triage sends the user to login.
func WithNavigator(n Navigator) ClientOption {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a client that authenticates with the token in store.
func New(store tokenstore.Store, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		store:     store,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.base == nil {
		c.base = &http.Client{Timeout: c.timeout}
	}

	c.doer = Chain(c.base,
		RateLimit(c.limiter),
		c.triage,
		Logging(c.logger),
		RequestID(),
		BearerAuth(store),
		BufferBody(MaxResponseSize+1),
	)
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// OnSessionExpired registers fn to run when any request receives a 401,
// after the token is cleared and before navigation.
func (c *Client) OnSessionExpired(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.expired = append(c.expired, fn)
	c.mu.Unlock()
}

// =============================================================================
// REQUESTS
// =============================================================================

// NewRequest builds a request for path relative to the base URL. A non-nil
// body is JSON encoded.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// Do sends req through the chain and decodes the envelope's data into out
// (which may be nil).
func (c *Client) Do(req *http.Request, out any) error {
	method, path := req.Method, req.URL.Path

	resp, err := c.doer.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); errors.Is(ctxErr, context.Canceled) {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		if errors.Is(err, ErrTokenStore) {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		return &ConnectivityError{Method: method, Path: path, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return &ConnectivityError{Method: method, Path: path, Timeout: isTimeout(err), Err: err}
	}
	if len(data) > MaxResponseSize {
		return fmt.Errorf("%s %s: %w", method, path, ErrResponseTooLarge)
	}

	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ResponseError{
			Status:    resp.StatusCode,
			Message:   env.text(),
			RequestID: req.Header.Get(RequestIDHeader),
		}
	}
	if decodeErr != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, decodeErr)
	}
	if !env.Success {
		return &ResponseError{
			Status:    resp.StatusCode,
			Message:   env.text(),
			RequestID: req.Header.Get(RequestIDHeader),
		}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode data: %w", method, path, err)
	}
	return nil
}

// Call builds and sends a request in one step.
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Call(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Call(ctx, http.MethodPost, path, body, out)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
