// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/jeranaias/ottpulse/internal/identity"
)

// Auth endpoint paths, relative to the base URL.
const (
	PathLogin    = "/auth/login"
	PathMe       = "/auth/me"
	PathLogout   = "/auth/logout"
	PathRegister = "/auth/register"
)

// LoginResult is the data payload of a successful login.
type LoginResult struct {
	Token string        `json:"token"`
	User  identity.User `json:"user"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Name     string        `json:"name"`
	Role     identity.Role `json:"role"`
}

// AuthService wraps the authentication endpoints.
type AuthService struct {
	client *Client
}

// NewAuthService returns the auth endpoints bound to client.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Login exchanges credentials for a token and the caller's identity.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{
		"email":    identity.NormalizeEmail(email),
		"password": password,
	}
	var res LoginResult
	if err := s.client.Post(ctx, PathLogin, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CurrentUser returns the identity bound to the stored token.
func (s *AuthService) CurrentUser(ctx context.Context) (*identity.User, error) {
	var u identity.User
	if err := s.client.Get(ctx, PathMe, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout tells the server to invalidate token. The token is passed explicitly
// because the local slot is normally cleared before this call.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	req, err := s.client.NewRequest(ctx, http.MethodPost, PathLogout, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.client.Do(req, nil)
}

// Register creates a user. The server only allows this for full-access callers.
func (s *AuthService) Register(ctx context.Context, r RegisterRequest) (*identity.User, error) {
	r.Email = identity.NormalizeEmail(r.Email)
	var u identity.User
	if err := s.client.Post(ctx, PathRegister, r, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
