package web

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"taskify/backend/internal/client"
	"taskify/backend/internal/components"
	"taskify/backend/internal/dashboard"
	"taskify/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type loginView struct {
	Mode   string
	Email  string
	Error  string
	Toasts []dashboard.Notification
}

func (s *Server) handleIndex(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil {
		if _, ok := s.sessions.get(id); ok {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) handleLoginPage(c *gin.Context) {
	view := loginView{Mode: "login"}
	if c.Query("mode") == "register" {
		view.Mode = "register"
	}
	if id, err := c.Cookie(sessionCookie); err == nil {
		if _, ok := s.sessions.get(id); ok {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
		view.Toasts = s.sessions.takeFlash(id)
		s.setSessionCookie(c, "", -1)
	}
	c.HTML(http.StatusOK, "login.html", view)
}

func (s *Server) handleLogin(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	account, err := s.auth.Login(c.Request.Context(), email, password)
	if err != nil {
		status, msg := loginFailure(err)
		c.HTML(status, "login.html", loginView{Mode: "login", Email: email, Error: msg})
		return
	}

	s.startSession(c, account)
}

func (s *Server) handleRegister(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if err := s.auth.Register(c.Request.Context(), email, password); err != nil {
		status, msg := registerFailure(err)
		c.HTML(status, "login.html", loginView{Mode: "register", Email: email, Error: msg})
		return
	}

	account, err := s.auth.Login(c.Request.Context(), email, password)
	if err != nil {
		status, msg := loginFailure(err)
		c.HTML(status, "login.html", loginView{Mode: "login", Email: email, Error: msg})
		return
	}
	s.startSession(c, account)
}

func (s *Server) startSession(c *gin.Context, account Account) {
	id, sess := s.sessions.create(account)
	// The first page load happens here so the dashboard opens populated.
	_ = sess.dash.Load(c.Request.Context())

	s.setSessionCookie(c, id, int(s.opts.SessionTTL.Seconds()))
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) handleDashboard(c *gin.Context) {
	sess := sessionFrom(c)

	if raw, ok := c.GetQuery("tab"); ok {
		tab, err := dashboard.ParseTab(raw)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
		sess.setTab(tab)
	}

	if err := sess.dash.EnsureLoaded(c.Request.Context()); err != nil {
		log.Printf("⚠️  Dashboard load failed for %s: %v", sess.dash.User().Email, err)
	}

	c.HTML(http.StatusOK, "dashboard.html", buildDashboardView(sess))
}

func (s *Server) handleFormOpen(c *gin.Context) {
	sess := sessionFrom(c)
	sess.withForm(func(f *components.TaskForm) { f.Open() })
	s.backToDashboard(c, sess)
}

func (s *Server) handleFormCancel(c *gin.Context) {
	sess := sessionFrom(c)
	sess.withForm(func(f *components.TaskForm) { f.Cancel() })
	s.backToDashboard(c, sess)
}

func (s *Server) handleCreate(c *gin.Context) {
	sess := sessionFrom(c)

	input, ok := sess.submitForm(
		c.PostForm("title"),
		c.PostForm("description"),
		models.Priority(strings.ToLower(c.PostForm("priority"))),
	)
	if ok {
		// Failures are reported through the notification queue.
		_, _ = sess.dash.Create(c.Request.Context(), input)
	}
	s.backToDashboard(c, sess)
}

func (s *Server) handleToggle(c *gin.Context) {
	sess := sessionFrom(c)

	task, ok := s.taskParam(c, sess)
	if !ok {
		return
	}
	completed := c.PostForm("completed") == "true"

	_ = sess.items.Item(task).Toggle(c.Request.Context(), completed)
	s.backToDashboard(c, sess)
}

func (s *Server) handleDelete(c *gin.Context) {
	sess := sessionFrom(c)

	task, ok := s.taskParam(c, sess)
	if !ok {
		return
	}

	if err := sess.items.Item(task).Delete(c.Request.Context()); errors.Is(err, components.ErrBusy) {
		log.Printf("⏳ Delete of %s already in flight", task.ID)
	}
	s.backToDashboard(c, sess)
}

func (s *Server) handleLogout(c *gin.Context) {
	sess := sessionFrom(c)
	id := c.GetString("session_id")

	if err := sess.dash.SignOut(c.Request.Context()); err != nil {
		log.Printf("⚠️  Sign-out failed for %s: %v", sess.dash.User().Email, err)
	}

	s.sessions.flash(id, sess.queue.Drain())
	s.sessions.destroy(id)
	c.Redirect(http.StatusSeeOther, "/login")
}

// taskParam resolves :id against the session's list. Unknown ids just
// re-render the dashboard.
func (s *Server) taskParam(c *gin.Context, sess *browserSession) (models.Task, bool) {
	id, err := uuid.FromString(c.Param("id"))
	if err == nil {
		if task, ok := sess.dash.Find(id); ok {
			return task, true
		}
	}
	s.backToDashboard(c, sess)
	return models.Task{}, false
}

func (s *Server) backToDashboard(c *gin.Context, sess *browserSession) {
	target := "/dashboard"
	if tab := sess.currentTab(); tab != dashboard.TabAll {
		target += "?tab=" + url.QueryEscape(string(tab))
	}
	c.Redirect(http.StatusSeeOther, target)
}

func loginFailure(err error) (int, string) {
	if client.IsStatus(err, http.StatusUnauthorized) {
		return http.StatusUnauthorized, "Invalid email or password"
	}
	log.Printf("❌ Login failed: %v", err)
	return http.StatusBadGateway, "Could not reach the task service"
}

func registerFailure(err error) (int, string) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusConflict:
			return http.StatusConflict, "An account with this email already exists"
		case http.StatusBadRequest:
			return http.StatusBadRequest, "Enter a valid email and a password of at least 8 characters"
		}
	}
	log.Printf("❌ Registration failed: %v", err)
	return http.StatusBadGateway, "Could not reach the task service"
}
