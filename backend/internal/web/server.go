// Package web serves the browser dashboard. It talks to the REST API through
// an Authenticator and keeps one dashboard per browser session.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"taskify/backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 10 * time.Second

type Options struct {
	SessionTTL   time.Duration
	SecureCookie bool
}

type Server struct {
	auth     Authenticator
	sessions *sessionStore
	opts     Options
	router   *gin.Engine
}

func NewServer(auth Authenticator, opts Options) (*Server, error) {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Logger(), middleware.RecoveryWithLog(), middleware.SecureHeader())
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		auth:     auth,
		sessions: newSessionStore(opts.SessionTTL),
		opts:     opts,
		router:   router,
	}

	router.GET("/", s.handleIndex)
	router.GET("/login", s.handleLoginPage)
	router.POST("/login", s.handleLogin)
	router.POST("/register", s.handleRegister)

	authed := router.Group("")
	authed.Use(s.requireSession)
	{
		authed.GET("/dashboard", s.handleDashboard)
		authed.POST("/form/open", s.handleFormOpen)
		authed.POST("/form/cancel", s.handleFormCancel)
		authed.POST("/tasks", s.handleCreate)
		authed.POST("/tasks/:id/toggle", s.handleToggle)
		authed.POST("/tasks/:id/delete", s.handleDelete)
		authed.POST("/logout", s.handleLogout)
	}

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	defer s.sessions.close()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🌐 Web dashboard on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("web server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Web server forced to shutdown: %v", err)
	}
	log.Println("✅ Web server stopped")
	return nil
}

func (s *Server) Close() error {
	return s.sessions.close()
}

func (s *Server) setSessionCookie(c *gin.Context, id string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, maxAge, "/", "", s.opts.SecureCookie, true)
}

// requireSession loads the browser session or sends the user to /login.
func (s *Server) requireSession(c *gin.Context) {
	id, err := c.Cookie(sessionCookie)
	if err == nil {
		if sess, ok := s.sessions.get(id); ok {
			c.Set("session_id", id)
			c.Set("session", sess)
			c.Next()
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/login")
	c.Abort()
}

func sessionFrom(c *gin.Context) *browserSession {
	return c.MustGet("session").(*browserSession)
}
