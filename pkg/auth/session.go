package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Token is a persisted session token
type Token struct {
	Value   string    `json:"token"`
	Email   string    `json:"email,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// SessionConfig holds session authentication configuration
type SessionConfig struct {
	BaseURL   string
	TokenPath string

	httpClient *http.Client
}

// NewSessionConfig creates a new session configuration
func NewSessionConfig(baseURL, tokenPath string) *SessionConfig {
	return &SessionConfig{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		TokenPath:  tokenPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SignIn exchanges credentials for a session token and persists it
func (c *SessionConfig) SignIn(ctx context.Context, email, password string) (*Token, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	url := c.BaseURL + "/api/v1/users/signin"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign in request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("invalid credentials")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sign in failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var payload struct {
		Data string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("could not parse sign in response: %w", err)
	}
	if payload.Data == "" {
		return nil, fmt.Errorf("sign in response carried no token")
	}

	token := &Token{Value: payload.Data, Email: email, SavedAt: time.Now()}
	if err := c.SaveToken(token); err != nil {
		return nil, err
	}

	return token, nil
}

// SignOut invalidates the server session and removes the cached token.
// The local token is removed even when the server call fails; a dead
// session file is worse than a dangling server session.
func (c *SessionConfig) SignOut(ctx context.Context, token *Token) error {
	var serverErr error

	if token != nil && token.Value != "" {
		url := c.BaseURL + "/api/v1/users/signout"
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token.Value)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			serverErr = fmt.Errorf("sign out request failed: %w", err)
		} else {
			_ = resp.Body.Close()
		}
	}

	if err := c.RemoveToken(); err != nil {
		return err
	}
	return serverErr
}

// LoadToken loads the cached token from file
func (c *SessionConfig) LoadToken() (*Token, error) {
	f, err := os.Open(c.TokenPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("could not parse token file: %w", err)
	}
	if token.Value == "" {
		return nil, fmt.Errorf("token file is empty")
	}
	return token, nil
}

// SaveToken saves the token to file
func (c *SessionConfig) SaveToken(token *Token) error {
	dir := filepath.Dir(c.TokenPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(c.TokenPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("could not save session token: %w", err)
	}
	defer func() { _ = f.Close() }()

	return json.NewEncoder(f).Encode(token)
}

// RemoveToken deletes the cached token file
func (c *SessionConfig) RemoveToken() error {
	if err := os.Remove(c.TokenPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
