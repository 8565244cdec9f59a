package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	_, app := newTestServer(t)

	t.Run("creates identity and returns token", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
			"handle":   "alice",
			"password": "Password123!",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, body["token"])

		identity := body["identity"].(map[string]any)
		assert.Equal(t, "alice", identity["handle"])
		assert.Nil(t, identity["password_hash"], "hash must never leave the server")
	})

	t.Run("duplicate handle conflicts", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
			"handle":   "alice",
			"password": "Password123!",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.NotEmpty(t, body["error"])
	})

	t.Run("rejects short password", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
			"handle":   "bob",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects empty handle", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
			"handle":   "",
			"password": "Password123!",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	_, app := newTestServer(t)
	signupUser(t, app, "alice")

	t.Run("valid credentials", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
			"handle":   "alice",
			"password": "Password123!",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
			"handle":   "alice",
			"password": "WrongPassword!",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown handle gets the same denial", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
			"handle":   "nobody",
			"password": "Password123!",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid credentials", body["error"])
	})
}

func TestAuthRequired(t *testing.T) {
	_, app := newTestServer(t)
	token, userID := signupUser(t, app, "alice")

	t.Run("me with valid token", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, userID, jsonID(body["id"]))
		assert.Equal(t, "alice", body["handle"])
	})

	t.Run("missing token", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/users/me", "not.a.token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDeleteMyIdentity(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice")

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The identity is gone; a reused token no longer resolves to anyone.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The handle is free for a fresh signup.
	signupUser(t, app, "alice")
}

func TestGetIdentities_ExcludesRequester(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice")
	signupUser(t, app, "bob")

	resp, list := doJSONList(t, app, http.MethodGet, "/api/users/", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0]["handle"])
}
