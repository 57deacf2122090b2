package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tablemate-app/tablemate-backend/pkg/config"
)

func testRouter() http.Handler {
	cfg := &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "tablemate", ExpirationMinutes: 60},
	}
	return NewRouter(Dependencies{Config: cfg})
}

func TestHealthLive(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-TableMate-Env") != "dev" {
		t.Fatalf("missing env header")
	}
}

func TestPrivateRoutesRequireAuth(t *testing.T) {
	router := testRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/owners"},
		{http.MethodGet, "/api/v1/restaurants"},
		{http.MethodPost, "/api/v1/auth/password/reset"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
