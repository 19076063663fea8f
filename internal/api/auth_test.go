// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ottpulse/internal/identity"
)

func TestAuthService_Login(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathLogin, r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pm@example.com", body["email"])
		assert.Equal(t, "pw", body["password"])

		writeJSON(w, 200, `{"success":true,"data":{"token":"T1","user":{"id":7,"email":"pm@example.com","name":"Pat","role":"pm"}}}`)
	}, "")

	res, err := NewAuthService(client).Login(context.Background(), "  pm@example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "T1", res.Token)
	assert.Equal(t, int64(7), res.User.ID)
	assert.Equal(t, identity.RolePM, res.User.Role)
}

func TestAuthService_LoginRejected(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"success":false,"error":"Invalid credentials"}`)
	}, "")

	_, err := NewAuthService(client).Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", ServerMessage(err))
}

func TestAuthService_LoginMissingRoleDecodesInvalid(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"success":true,"data":{"token":"t1","user":{"id":1,"email":"a@b.c","name":"A"}}}`)
	}, "")

	res, err := NewAuthService(client).Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t1", res.Token)
	assert.False(t, res.User.Role.Valid(), "an absent role never satisfies the closed set")
}

func TestAuthService_CurrentUserUnknownRole(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"success":true,"data":{"id":1,"email":"x@y.z","name":"X","role":"intern"}}`)
	}, "abc")

	_, err := NewAuthService(client).CurrentUser(context.Background())
	assert.ErrorIs(t, err, identity.ErrUnknownRole)
}

func TestAuthService_LogoutCarriesExplicitToken(t *testing.T) {
	var got string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, 200, `{"success":true}`)
	}, "")

	require.NoError(t, NewAuthService(client).Logout(context.Background(), "old"))
	assert.Equal(t, "Bearer old", got)
}

func TestAuthService_Register(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathRegister, r.URL.Path)
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))

		var body RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, identity.RoleSRE, body.Role)

		writeJSON(w, 201, `{"success":true,"data":{"id":9,"email":"sre@example.com","name":"Sam","role":"sre"}}`)
	}, "admin-token")

	u, err := NewAuthService(client).Register(context.Background(), RegisterRequest{
		Email: "SRE@example.com", Password: "pw", Name: "Sam", Role: identity.RoleSRE,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), u.ID)
}
