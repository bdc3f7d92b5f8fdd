package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIn(t *testing.T) {
	t.Run("persists_returned_token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v1/users/signin", r.URL.Path)

			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "me@example.org", creds["email"])
			assert.Equal(t, "hunter2", creds["password"])

			_, _ = w.Write([]byte(`{"data": "session-token-123"}`))
		}))
		defer srv.Close()

		tokenPath := filepath.Join(t.TempDir(), "nested", "token.json")
		cfg := NewSessionConfig(srv.URL, tokenPath)

		token, err := cfg.SignIn(context.Background(), "me@example.org", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, "session-token-123", token.Value)
		assert.Equal(t, "me@example.org", token.Email)

		// Round-trips through the token file with owner-only permissions.
		loaded, err := cfg.LoadToken()
		require.NoError(t, err)
		assert.Equal(t, token.Value, loaded.Value)

		info, err := os.Stat(tokenPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("bad_credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		cfg := NewSessionConfig(srv.URL, filepath.Join(t.TempDir(), "token.json"))
		_, err := cfg.SignIn(context.Background(), "me@example.org", "wrong")
		assert.ErrorContains(t, err, "invalid credentials")

		_, err = cfg.LoadToken()
		assert.Error(t, err, "no token is written on failure")
	})

	t.Run("empty_token_in_response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": ""}`))
		}))
		defer srv.Close()

		cfg := NewSessionConfig(srv.URL, filepath.Join(t.TempDir(), "token.json"))
		_, err := cfg.SignIn(context.Background(), "me@example.org", "hunter2")
		assert.ErrorContains(t, err, "no token")
	})
}

func TestSignOut(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/users/signout", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	cfg := NewSessionConfig(srv.URL, tokenPath)
	require.NoError(t, cfg.SaveToken(&Token{Value: "tok"}))

	require.NoError(t, cfg.SignOut(context.Background(), &Token{Value: "tok"}))
	assert.Equal(t, "Bearer tok", gotAuth)

	_, err := cfg.LoadToken()
	assert.Error(t, err, "token file is removed on sign out")
}

func TestSignOutRemovesTokenWhenServerUnreachable(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	cfg := NewSessionConfig("http://127.0.0.1:1", tokenPath)
	require.NoError(t, cfg.SaveToken(&Token{Value: "tok"}))

	err := cfg.SignOut(context.Background(), &Token{Value: "tok"})
	assert.Error(t, err, "server failure is still reported")

	_, loadErr := os.Stat(tokenPath)
	assert.True(t, os.IsNotExist(loadErr), "local token is removed regardless")
}

func TestLoadTokenRejectsGarbage(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	cfg := NewSessionConfig("http://localhost", tokenPath)

	require.NoError(t, os.WriteFile(tokenPath, []byte("{"), 0o600))
	_, err := cfg.LoadToken()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(tokenPath, []byte(`{"token": ""}`), 0o600))
	_, err = cfg.LoadToken()
	assert.ErrorContains(t, err, "empty")
}
