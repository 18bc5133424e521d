package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"golang.org/x/oauth2"
)

// refresher is the oauth2.TokenSource behind a session. Each refresh rotates
// the refresh token, so the latest one is kept here.
type refresher struct {
	client *Client

	mu           sync.Mutex
	refreshToken string
	signedOut    bool
}

func (r *refresher) Token() (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.signedOut {
		return nil, ErrSignedOut
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.client.timeout)
	defer cancel()

	resp, err := r.client.refresh(ctx, r.refreshToken)
	if err != nil {
		return nil, err
	}
	r.refreshToken = resp.RefreshToken

	return &oauth2.Token{
		AccessToken:  resp.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: resp.RefreshToken,
		Expiry:       resp.expiry(),
	}, nil
}

func (r *refresher) current() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshToken, r.signedOut
}

// Session is an authenticated connection to the API. Requests carry the
// access token through an oauth2.Transport that refreshes it when it expires.
type Session struct {
	client    *Client
	refresher *refresher
	tokens    oauth2.TokenSource
	http      *http.Client

	mu   sync.RWMutex
	user models.UserInfo
}

func newSession(c *Client, user models.UserInfo, accessToken, refreshToken string, expiry time.Time) *Session {
	r := &refresher{client: c, refreshToken: refreshToken}

	var initial *oauth2.Token
	if accessToken != "" {
		initial = &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer", Expiry: expiry}
	}
	tokens := oauth2.ReuseTokenSource(initial, r)

	return &Session{
		client:    c,
		refresher: r,
		tokens:    tokens,
		http: &http.Client{
			Timeout:   c.timeout,
			Transport: &oauth2.Transport{Source: tokens, Base: http.DefaultTransport},
		},
		user: user,
	}
}

func (s *Session) User() models.UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Credentials snapshots the current tokens for persistence.
func (s *Session) Credentials() Credentials {
	creds := Credentials{APIURL: s.client.baseURL, User: s.User()}

	if tok, err := s.tokens.Token(); err == nil {
		creds.AccessToken = tok.AccessToken
		creds.Expiry = tok.Expiry
	}
	creds.RefreshToken, _ = s.refresher.current()
	return creds
}

// SignOut revokes the refresh token. The session is unusable afterwards even
// if the API call fails.
func (s *Session) SignOut(ctx context.Context) error {
	s.refresher.mu.Lock()
	refreshToken := s.refresher.refreshToken
	s.refresher.signedOut = true
	s.refresher.mu.Unlock()

	err := s.client.logout(ctx, refreshToken)
	if IsStatus(err, http.StatusUnauthorized) {
		return nil
	}
	return err
}

func (s *Session) call(ctx context.Context, method, path string, body, out interface{}) error {
	if _, signedOut := s.refresher.current(); signedOut {
		return ErrSignedOut
	}

	err := do(ctx, s.http, method, s.client.baseURL+path, body, out)

	var urlErr *url.Error
	if errors.As(err, &urlErr) && errors.Is(urlErr.Err, ErrSignedOut) {
		return ErrSignedOut
	}
	return err
}

type taskListResponse struct {
	Tasks []models.Task `json:"tasks"`
	Total int           `json:"total"`
}

// ListTasks returns every task of the signed-in user, newest first.
func (s *Session) ListTasks(ctx context.Context) ([]models.Task, error) {
	return s.ListTasksByStatus(ctx, "")
}

// ListTasksByStatus narrows the listing to "pending" or "completed"; "" lists all.
func (s *Session) ListTasksByStatus(ctx context.Context, status string) ([]models.Task, error) {
	path := "/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var resp taskListResponse
	if err := s.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		resp.Tasks = []models.Task{}
	}
	return resp.Tasks, nil
}

func (s *Session) CreateTask(ctx context.Context, input models.TaskInput) (models.Task, error) {
	var task models.Task
	err := s.call(ctx, http.MethodPost, "/tasks", input, &task)
	return task, err
}

func (s *Session) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	var task models.Task
	err := s.call(ctx, http.MethodPatch, "/tasks/"+id.String(), patch, &task)
	return task, err
}

func (s *Session) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.call(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil)
}
