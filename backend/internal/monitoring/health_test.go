package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func resetGlobalHealthChecker() {
	globalHealthChecker.mu.Lock()
	defer globalHealthChecker.mu.Unlock()
	globalHealthChecker.checks = make(map[string]HealthCheck)
}

func healthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", HealthHandler())
	r.GET("/ready", ReadinessHandler())
	r.GET("/live", LivenessHandler())
	return r
}

func TestRunHealthChecks(t *testing.T) {
	resetGlobalHealthChecker()
	RegisterHealthCheck("database", func(ctx context.Context) error { return nil })
	RegisterHealthCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })

	checks := RunHealthChecks()
	if len(checks) != 2 {
		t.Fatalf("Expected 2 checks, got %d", len(checks))
	}
	if checks["database"].Status != "healthy" {
		t.Errorf("Expected database healthy, got %+v", checks["database"])
	}
	if redis := checks["redis"]; redis.Status != "unhealthy" || redis.Message != "connection refused" {
		t.Errorf("Expected redis unhealthy with its error, got %+v", redis)
	}
	if checks["database"].CheckedAt.IsZero() {
		t.Error("Expected CheckedAt to be set")
	}
}

func TestRegisterHealthCheck_Replaces(t *testing.T) {
	resetGlobalHealthChecker()
	RegisterHealthCheck("database", func(ctx context.Context) error { return errors.New("down") })
	RegisterHealthCheck("database", func(ctx context.Context) error { return nil })

	if checks := RunHealthChecks(); len(checks) != 1 || checks["database"].Status != "healthy" {
		t.Errorf("Expected the later registration to win, got %+v", checks)
	}
}

func TestHealthEndpoints(t *testing.T) {
	tests := []struct {
		name      string
		redisErr  error
		health    int
		ready     int
		status    string
		readiness string
	}{
		{name: "all healthy", health: http.StatusOK, ready: http.StatusOK, status: "healthy", readiness: "ready"},
		{name: "redis down", redisErr: errors.New("connection refused"), health: http.StatusServiceUnavailable,
			ready: http.StatusServiceUnavailable, status: "unhealthy", readiness: "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobalHealthChecker()
			RegisterHealthCheck("database", func(ctx context.Context) error { return nil })
			RegisterHealthCheck("redis", func(ctx context.Context) error { return tt.redisErr })
			r := healthRouter()

			w := serve(r, http.MethodGet, "/health")
			if w.Code != tt.health {
				t.Errorf("/health = %d, want %d", w.Code, tt.health)
			}
			var health struct {
				Status string                 `json:"status"`
				Checks map[string]HealthCheck `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
				t.Fatal(err)
			}
			if health.Status != tt.status || len(health.Checks) != 2 {
				t.Errorf("Unexpected /health body %+v", health)
			}

			w = serve(r, http.MethodGet, "/ready")
			if w.Code != tt.ready {
				t.Errorf("/ready = %d, want %d", w.Code, tt.ready)
			}
			var ready map[string]interface{}
			_ = json.Unmarshal(w.Body.Bytes(), &ready)
			if ready["status"] != tt.readiness {
				t.Errorf("Expected readiness %q, got %v", tt.readiness, ready["status"])
			}
		})
	}
}

func TestLivenessIgnoresDependencies(t *testing.T) {
	resetGlobalHealthChecker()
	RegisterHealthCheck("database", func(ctx context.Context) error { return errors.New("down") })

	w := serve(healthRouter(), http.MethodGet, "/live")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 while dependencies are down, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "alive" || body["uptime"] == "" {
		t.Errorf("Unexpected liveness body %v", body)
	}
}
