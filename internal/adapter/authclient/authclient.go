// Package authclient logs the driver agent in against the auth service.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
)

var ErrUnauthorized = errors.New("invalid credentials")

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Token, error) {
	const op = "authclient.Login"
	ctx = wrap.WithAction(ctx, "agent_login")

	var token models.Token
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Username: username, Password: password}, &token); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if token.AccessToken == "" {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: empty access token", op))
	}
	return &token, nil
}

// Me returns the user the token was issued to.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	const op = "authclient.Me"

	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &resp); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return &resp.User, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dst any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		var e struct {
			Error any `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("unexpected status %d: %v", resp.StatusCode, e.Error)
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
