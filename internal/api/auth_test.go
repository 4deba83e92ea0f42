package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":      "alice@example.com",
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp TokenResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.Token)
}

func TestRegisterEndpointValidation(t *testing.T) {
	env := setupTestRouter(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing email", map[string]interface{}{
			"username": "alice", "first_name": "A", "last_name": "S", "password": "password123",
		}},
		{"bad email", map[string]interface{}{
			"email": "not-an-email", "username": "alice", "first_name": "A", "last_name": "S", "password": "password123",
		}},
		{"short password", map[string]interface{}{
			"email": "alice@example.com", "username": "alice", "first_name": "A", "last_name": "S", "password": "123",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterEndpointDuplicateEmail(t *testing.T) {
	env := setupTestRouter(t)
	env.registerUser(t, "alice")

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":      "alice@example.com",
		"username":   "alice2",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	env.registerUser(t, "alice")

	w := env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "testpassword123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.Token)

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
