package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	ts := NewTestServer(t)

	auth := register(t, ts, "alice")
	assert.NotEmpty(t, auth.AccessToken)
	assert.Equal(t, 1, ts.App.Sessions.Len(), "sign-in opens a portfolio session")

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"username":"alice"`)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"login":    "alice@test.com",
		"password": "super_password123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, 2, ts.App.Sessions.Len())

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout", auth.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, ts.App.Sessions.Len())

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", auth.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode, "token of a closed session is rejected")
}

func TestRegister_Duplicates(t *testing.T) {
	ts := NewTestServer(t)
	register(t, ts, "alice")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "alice",
		"email":    "other@test.com",
		"password": "super_password123",
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, body, "Username already exists")

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "a!",
		"email":    "nope",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := NewTestServer(t)
	register(t, ts, "alice")

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"login":    "alice",
		"password": "wrong_password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLogin_SameSessionSwitchesUser(t *testing.T) {
	ts := NewTestServer(t)
	alice := register(t, ts, "alice")
	register(t, ts, "bob")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", alice.AccessToken, map[string]interface{}{
		"login":    "bob",
		"password": "super_password123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var bob authResponse
	decode(t, body, &bob)
	assert.Equal(t, alice.SessionID, bob.SessionID)

	s, err := ts.App.Sessions.Get(alice.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "bob", s.User.Username)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", alice.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode, "previous user's token no longer matches the session")
}
