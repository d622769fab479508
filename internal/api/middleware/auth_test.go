package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/archetype/archetype/config"
	"github.com/archetype/archetype/internal/core/auth"
	"github.com/archetype/archetype/internal/observability/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Helper to create test context
func createTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	return c, w
}

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(&config.JWTConfig{Secret: "test-secret", Issuer: "archetype", Expiration: "1h"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func protectedRouter(tokens TokenValidator) *gin.Engine {
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(tokens).Authenticate(), func(c *gin.Context) {
		id, _ := GetUserID(c)
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": p.Email})
	})
	return r
}

// Test GetUserID helper function
func TestGetUserID_Valid(t *testing.T) {
	c, _ := createTestContext()
	c.Set(ContextUserID, "0190f1f4-4d6a-7c34-9a10-5b3c2d1e0f99")

	id, ok := GetUserID(c)
	if !ok {
		t.Error("GetUserID should return true when user_id is set")
	}
	if id != "0190f1f4-4d6a-7c34-9a10-5b3c2d1e0f99" {
		t.Errorf("GetUserID returned %q", id)
	}
}

func TestGetUserID_NotSet(t *testing.T) {
	c, _ := createTestContext()

	if _, ok := GetUserID(c); ok {
		t.Error("GetUserID should return false when user_id is not set")
	}
}

func TestGetPrincipal_InvalidType(t *testing.T) {
	c, _ := createTestContext()
	c.Set(ContextPrincipal, "invalid")

	if _, ok := GetPrincipal(c); ok {
		t.Error("GetPrincipal should return false when context has invalid type")
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tokens := newTokens(t)
	token, err := tokens.Issue(auth.Principal{UserID: "user-1", Email: "jane@example.com", FullName: "Jane Doe"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	w := httptest.NewRecorder()
	protectedRouter(tokens).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] != "user-1" || body["email"] != "jane@example.com" {
		t.Errorf("unexpected principal: %v", body)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	tokens := newTokens(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no scheme", "token"},
		{"empty token", "Bearer "},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedRouter(tokens).ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestRequestContext_PropagatesCorrelationID(t *testing.T) {
	r := gin.New()
	r.Use(RequestContext(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"request_id":     GetRequestID(c),
			"correlation_id": GetCorrelationID(c),
			"ip":             GetIPAddress(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderCorrelationID, "corr-123")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["correlation_id"] != "corr-123" {
		t.Errorf("correlation_id = %q", body["correlation_id"])
	}
	if body["ip"] != "203.0.113.7" {
		t.Errorf("ip = %q", body["ip"])
	}
	if body["request_id"] == "" || w.Header().Get(HeaderRequestID) != body["request_id"] {
		t.Errorf("request id header %q does not match %q", w.Header().Get(HeaderRequestID), body["request_id"])
	}
}

func TestRequestContext_DefaultsCorrelationToRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestContext(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if got, want := w.Header().Get(HeaderCorrelationID), w.Header().Get(HeaderRequestID); got == "" || got != want {
		t.Errorf("correlation id = %q, request id = %q", got, want)
	}
}

func TestAccessLogAndRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	r := gin.New()
	r.Use(RequestContext(log), AccessLog(log), Recovery(log))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("expected one panic log entry")
	}
	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["status"] != int64(http.StatusInternalServerError) {
		t.Errorf("logged status = %v", entries[0].ContextMap()["status"])
	}
	if id, _ := entries[0].ContextMap()["request_id"].(string); id == "" {
		t.Error("access log should carry request_id")
	}
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/"+id, nil))
	}

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "archetype_http_requests_total" {
			continue
		}
		if len(f.GetMetric()) != 1 {
			t.Fatalf("expected a single series, got %d", len(f.GetMetric()))
		}
		if got := f.GetMetric()[0].GetCounter().GetValue(); got != 3 {
			t.Errorf("count = %v, want 3", got)
		}
		return
	}
	t.Error("archetype_http_requests_total not gathered")
}
