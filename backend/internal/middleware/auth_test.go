package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type fakeVerifier struct {
	userID uuid.UUID
	tokens map[string]bool
}

func (f fakeVerifier) ParseAccessToken(token string) (uuid.UUID, error) {
	if !f.tokens[token] {
		return uuid.Nil, errors.New("bad token")
	}
	return f.userID, nil
}

func TestAuthzMiddleware(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	verifier := fakeVerifier{userID: userID, tokens: map[string]bool{"good": true}}

	router := setupTestGin()
	router.Use(AuthzMiddleware(verifier))
	router.GET("/me", func(c *gin.Context) {
		id, ok := UserIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.String())
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("Expected status %d, got %d", tt.want, w.Code)
			}
			if tt.want == http.StatusOK && w.Body.String() != userID.String() {
				t.Errorf("Expected user id in context, got %s", w.Body.String())
			}
			if tt.want == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("Expected WWW-Authenticate header")
			}
		})
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := UserIDFromContext(c); ok {
		t.Error("Expected no user without middleware")
	}

	c.Set("user_id", "not-a-uuid")
	if _, ok := UserIDFromContext(c); ok {
		t.Error("Expected wrong type to be rejected")
	}
}

func TestSecureHeaderAndRecovery(t *testing.T) {
	router := setupTestGin()
	router.Use(RecoveryWithLog(), SecureHeader())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 after panic, got %d", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected security headers to be set")
	}
	if !strings.Contains(w.Body.String(), `"error":"internal server error"`) {
		t.Errorf("Expected a JSON error body, got %s", w.Body.String())
	}
}

func TestRecoveryWithLog_HTMLClients(t *testing.T) {
	router := setupTestGin()
	router.Use(RecoveryWithLog())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })
	router.GET("/half", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") || !strings.Contains(w.Body.String(), "Back to your tasks") {
		t.Errorf("Expected the HTML error page, got %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/half", nil))
	if w.Code != http.StatusOK || w.Body.String() != "partial" {
		t.Errorf("Expected a written response to be left alone, got %d %q", w.Code, w.Body.String())
	}
}
