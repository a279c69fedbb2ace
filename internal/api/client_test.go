package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnslabs/waconsole/internal/apperrors"
	"github.com/tnslabs/waconsole/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Options{
		BaseURL:     srv.URL,
		BearerToken: "test-token",
	})
	require.NoError(t, err)
	return client, srv
}

func TestBearerTokenOnEveryCall(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "contacts": []any{}})
	}))

	_, err := client.Contacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, apperrors.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, apperrors.ErrUnauthorized},
		{"not found", http.StatusNotFound, apperrors.ErrNotFound},
		{"bad request", http.StatusBadRequest, apperrors.ErrBadRequest},
		{"server error", http.StatusInternalServerError, apperrors.ErrBackend},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "nope"})
			}))

			_, err := client.Contacts(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)
		})
	}
}

func TestEnvelopeNotOKIsAnError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "session expired"})
	}))

	_, err := client.Messages(context.Background(), "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")
}

func TestFlexStringAcceptsNumbersAndStrings(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"string", `"42"`, "42"},
		{"integer", `42`, "42"},
		{"float id", `42.0`, "42.0"},
		{"null", `null`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f flexString
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &f))
			assert.Equal(t, tc.expected, f.String())
		})
	}
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.c", body["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":   true,
			"user": map[string]any{"id": 9, "name": "Ravi", "email": "a@b.c", "user_type": "admin"},
		})
	}))

	user, err := client.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "9", user.ID)
	assert.Equal(t, models.RoleAdmin, user.Role)
}
