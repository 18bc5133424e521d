// Package apitest runs the full API over httptest for front-end tests.
package apitest

import (
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"taskify/backend/internal/config"
	"taskify/backend/internal/server"

	"github.com/gin-gonic/gin"
)

var counter atomic.Int64

type Option func(*config.Config)

// WithAccessTTL shortens access tokens so clients have to refresh.
func WithAccessTTL(ttl time.Duration) Option {
	return func(cfg *config.Config) { cfg.JWT.AccessTTL = ttl }
}

// Server is a running API backed by a private in-memory sqlite database.
type Server struct {
	*httptest.Server
	App *server.Application
}

// BaseURL is the /api/v1 root clients are configured with.
func (s *Server) BaseURL() string {
	return s.URL + "/api/v1"
}

func Start(t *testing.T, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSNOverride = fmt.Sprintf("file:apitest_%d?mode=memory&cache=shared", counter.Add(1))
	cfg.Database.LogLevel = "silent"
	cfg.Redis.Enabled = false
	cfg.Kafka.Brokers = nil
	cfg.JWT.Secret = "apitest-secret"
	cfg.RateLimit.RequestsPerMin = 60000
	cfg.RateLimit.BurstSize = 1000
	for _, opt := range opts {
		opt(cfg)
	}

	app, err := server.New(cfg)
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}

	ts := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})
	return &Server{Server: ts, App: app}
}
