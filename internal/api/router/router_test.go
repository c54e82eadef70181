package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/config"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/api/handler"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/service"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/jwt"
)

func setupTestRouter(t *testing.T) (http.Handler, *jwt.Manager) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{BodyLimit: 1 << 20},
		Auth: config.AuthConfig{
			JWTSecret:      "router-test-secret-32-characters!!",
			Issuer:         "sms-test",
			AccessTokenTTL: time.Minute,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	// 只验证路由与鉴权链路，不触达业务服务
	h := handler.NewHandler(&service.Service{})

	engine, err := Setup(cfg, h, jwtMgr, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	return engine, jwtMgr
}

func TestSetup_Health(t *testing.T) {
	engine, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestSetup_RequiresToken(t *testing.T) {
	engine, _ := setupTestRouter(t)

	for _, target := range []string{
		"/api/v1/activation?label=Winter+2024",
		"/api/v1/courses",
		"/api/v1/export/attendance?course_id=c1&date=2024-10-15",
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", target, w.Code)
		}
	}
}

func TestSetup_AdminOnlyRoutes(t *testing.T) {
	engine, jwtMgr := setupTestRouter(t)
	token, err := jwtMgr.GenerateAccessToken("u1", "teacher")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/v1/courses"},
		{http.MethodDelete, "/api/v1/courses/c1"},
		{http.MethodPut, "/api/v1/courses/c1/students"},
		{http.MethodPost, "/api/v1/courses/activation/sync"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.target, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		engine.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403 for teacher, got %d", tt.method, tt.target, w.Code)
		}
	}
}
