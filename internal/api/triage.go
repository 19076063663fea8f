// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
)

// triage is the response-side middleware. Exactly one branch applies per
// failure, checked in order. The response and error are always returned
// unchanged.
func (c *Client) triage(next Doer) Doer {
	return DoerFunc(func(req *http.Request) (*http.Response, error) {
		resp, err := next.Do(req)
		if IsQuiet(req.Context()) {
			return resp, err
		}

		switch {
		case err == nil && resp.StatusCode == http.StatusUnauthorized:
			c.expireSession()
		case err != nil:
			// Cancellation by the caller is not a connectivity failure, and
			// neither is a local token store fault.
			if errors.Is(req.Context().Err(), context.Canceled) || errors.Is(err, ErrTokenStore) {
				break
			}
			c.notify(LevelError, MsgConnectivity)
		case resp.StatusCode == http.StatusBadGateway:
			c.notify(LevelError, MsgUnavailable)
		case resp.StatusCode >= 500:
			c.notify(LevelError, MsgServer)
		}
		return resp, err
	})
}

// expireSession clears the token, tells the session owner and navigates to
// login.
func (c *Client) expireSession() {
	if err := c.store.Clear(); err != nil && c.logger != nil {
		c.logger.Error("failed to clear token after 401", "error", err)
	}

	c.mu.RLock()
	hooks := make([]func(), len(c.expired))
	copy(hooks, c.expired)
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}

	if c.navigator != nil {
		c.navigator.ToLogin()
	}
}

func (c *Client) notify(level Level, msg string) {
	if c.notifier != nil {
		c.notifier.Notify(Notice{Level: level, Message: msg})
	}
}
