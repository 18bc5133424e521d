// Package client talks to the taskify REST API. A Session is the task store
// and authentication provider the dashboard runs against.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskify/backend/internal/models"
)

var ErrSignedOut = errors.New("session signed out")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type tokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int64            `json:"expires_in"`
	User         *models.UserInfo `json:"user"`
}

func (t tokenResponse) expiry() time.Time {
	return time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
}

func (c *Client) Register(ctx context.Context, email, password string) (models.UserInfo, error) {
	var resp struct {
		User models.UserInfo `json:"user"`
	}
	err := do(ctx, c.http, http.MethodPost, c.baseURL+"/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	return resp.User, err
}

// Login exchanges email and password for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := do(ctx, c.http, http.MethodPost, c.baseURL+"/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, errors.New("login response is missing the user")
	}

	return newSession(c, *resp.User, resp.AccessToken, resp.RefreshToken, resp.expiry()), nil
}

// Resume rebuilds a session from stored credentials and confirms it with /auth/me.
// An expired access token is refreshed on the way.
func (c *Client) Resume(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.RefreshToken == "" {
		return nil, ErrNoCredentials
	}

	s := newSession(c, creds.User, creds.AccessToken, creds.RefreshToken, creds.Expiry)

	var me models.UserInfo
	if err := s.call(ctx, http.MethodGet, "/auth/me", nil, &me); err != nil {
		return nil, err
	}
	s.user = me
	return s, nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (tokenResponse, error) {
	var resp tokenResponse
	err := do(ctx, c.http, http.MethodPost, c.baseURL+"/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}, &resp)
	return resp, err
}

// Logout revokes stored credentials without resuming a session. Tokens the
// API no longer knows count as revoked.
func (c *Client) Logout(ctx context.Context, creds Credentials) error {
	err := c.logout(ctx, creds.RefreshToken)
	if IsStatus(err, http.StatusUnauthorized) {
		return nil
	}
	return err
}

func (c *Client) logout(ctx context.Context, refreshToken string) error {
	return do(ctx, c.http, http.MethodPost, c.baseURL+"/auth/logout", map[string]string{
		"refresh_token": refreshToken,
	}, nil)
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func do(ctx context.Context, hc *http.Client, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
