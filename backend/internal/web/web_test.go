package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"taskify/backend/internal/client"
	"taskify/backend/internal/testutil"
	"taskify/backend/internal/testutil/apitest"

	"github.com/gin-gonic/gin"
)

type fakeAccount struct {
	*testutil.FakeStore
	*testutil.FakeSession
}

type fakeAuth struct {
	account     Account
	loginErr    error
	registerErr error
}

func (a *fakeAuth) Login(ctx context.Context, email, password string) (Account, error) {
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return a.account, nil
}

func (a *fakeAuth) Register(ctx context.Context, email, password string) error {
	return a.registerErr
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, auth Authenticator) *browser {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv, err := NewServer(auth, Options{SessionTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})

	jar, _ := cookiejar.New(nil)
	return &browser{t: t, base: ts.URL, client: &http.Client{Jar: jar}}
}

// get and post follow redirects and return the final status and body.
func (b *browser) get(path string) (int, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	if err != nil {
		b.t.Fatalf("GET %s: %v", path, err)
	}
	return readBody(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (int, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	if err != nil {
		b.t.Fatalf("POST %s: %v", path, err)
	}
	return readBody(b.t, resp)
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(data)
}

func expectContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("Expected page to contain %q", w)
		}
	}
}

var toggleAction = regexp.MustCompile(`/tasks/([0-9a-f-]{36})/toggle`)

func TestWeb_DashboardAgainstAPI(t *testing.T) {
	api := apitest.Start(t)
	b := newBrowser(t, APIAuthenticator{Client: client.New(api.BaseURL(), 5*time.Second)})

	status, body := b.post("/register", url.Values{"email": {"web@example.com"}, "password": {"password123"}})
	if status != http.StatusOK {
		t.Fatalf("register status = %d", status)
	}
	expectContains(t, body, "Welcome back, web@example.com", "Start by adding your first task!", "All (0)")

	_, body = b.post("/form/open", nil)
	expectContains(t, body, "Add New Task", `name="title"`)

	_, body = b.post("/tasks", url.Values{"title": {"Buy milk"}, "description": {"2 litres"}, "priority": {"high"}})
	expectContains(t, body, "Buy milk", "2 litres", "⚠ high", "Task added successfully", "Pending (1)")
	if strings.Contains(body, `name="title"`) {
		t.Error("Expected the form to close after submit")
	}

	m := toggleAction.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("Expected a toggle form for the new task")
	}
	taskID := m[1]

	_, body = b.post("/tasks/"+taskID+"/toggle", url.Values{"completed": {"true"}})
	expectContains(t, body, "Task completed!", "Completed (1)", "Pending (0)")

	_, body = b.get("/dashboard?tab=pending")
	expectContains(t, body, "No pending tasks at the moment.")
	_, body = b.get("/dashboard?tab=completed")
	expectContains(t, body, "Buy milk")

	_, body = b.post("/tasks/"+taskID+"/delete", nil)
	expectContains(t, body, "Task deleted successfully", "No completed tasks at the moment.")

	_, body = b.post("/logout", nil)
	expectContains(t, body, "Sign in", "Signed out", "signed out successfully")

	_, body = b.get("/dashboard")
	expectContains(t, body, "Sign in")
	if strings.Contains(body, "Welcome back") {
		t.Error("Expected the dashboard to require a new sign-in")
	}
}

func TestWeb_RequiresSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv, err := NewServer(&fakeAuth{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Errorf("Expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestWeb_BlankTitleKeepsDraft(t *testing.T) {
	store := testutil.NewFakeStore()
	b := newBrowser(t, &fakeAuth{account: fakeAccount{store, testutil.NewFakeSession("a@example.com")}})
	b.post("/login", url.Values{"email": {"a@example.com"}, "password": {"x"}})

	_, body := b.post("/tasks", url.Values{"title": {"   "}, "description": {"remember me"}, "priority": {"low"}})
	expectContains(t, body, `name="title"`, "remember me")
	if store.CallCount("create") != 0 {
		t.Error("Expected a blank title not to reach the store")
	}

	_, body = b.post("/form/cancel", nil)
	if strings.Contains(body, "remember me") {
		t.Error("Expected cancel to discard the draft")
	}
}

func TestWeb_FailuresAreToasts(t *testing.T) {
	store := testutil.NewFakeStore(testutil.NewTask("existing", false))
	b := newBrowser(t, &fakeAuth{account: fakeAccount{store, testutil.NewFakeSession("a@example.com")}})
	_, body := b.post("/login", url.Values{"email": {"a@example.com"}, "password": {"x"}})
	expectContains(t, body, "existing")

	store.CreateErr = errors.New("insert failed")
	_, body = b.post("/tasks", url.Values{"title": {"doomed"}})
	expectContains(t, body, "Failed to add task", "existing")
	if strings.Contains(body, "doomed") {
		t.Error("Expected the failed draft to be discarded")
	}

	store.DeleteErr = errors.New("delete failed")
	id := toggleAction.FindStringSubmatch(body)[1]
	_, body = b.post("/tasks/"+id+"/delete", nil)
	expectContains(t, body, "Failed to delete task", "existing")
}

func TestWeb_LoginErrors(t *testing.T) {
	b := newBrowser(t, &fakeAuth{
		loginErr:    &client.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"},
		registerErr: &client.APIError{StatusCode: http.StatusConflict, Message: "email already registered"},
	})

	status, body := b.post("/login", url.Values{"email": {"a@example.com"}, "password": {"bad"}})
	if status != http.StatusUnauthorized {
		t.Errorf("login status = %d, want 401", status)
	}
	expectContains(t, body, "Invalid email or password")

	status, body = b.post("/register", url.Values{"email": {"a@example.com"}, "password": {"password123"}})
	if status != http.StatusConflict {
		t.Errorf("register status = %d, want 409", status)
	}
	expectContains(t, body, "An account with this email already exists")
}
