package web

import (
	"context"

	"taskify/backend/internal/client"
	"taskify/backend/internal/dashboard"
)

// Account is a signed-in user's view of the task store.
type Account interface {
	dashboard.TaskStore
	dashboard.Session
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (Account, error)
	Register(ctx context.Context, email, password string) error
}

// APIAuthenticator signs users in against the REST API.
type APIAuthenticator struct {
	Client *client.Client
}

func (a APIAuthenticator) Login(ctx context.Context, email, password string) (Account, error) {
	s, err := a.Client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (a APIAuthenticator) Register(ctx context.Context, email, password string) error {
	_, err := a.Client.Register(ctx, email, password)
	return err
}
