package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"asset_tracker/internal/http/middleware"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func TestRouterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(Deps{
		DB:        okPinger{},
		Limiter:   middleware.NewRateLimiter(100, 100),
		Logger:    zap.NewNop(),
		JWTSecret: "s",
	})

	want := map[string]bool{
		"POST /api/v1/assets":                  true,
		"POST /api/v1/assets/validate-serials": true,
		"GET /api/v1/assets":                   true,
		"GET /api/v1/assets/:id":               true,
		"POST /api/v1/assets/:id/assign":       true,
		"POST /api/v1/assets/:id/repair":       true,
		"GET /api/v1/assets/:id/history":       true,
		"GET /api/v1/assignments/:id":          true,
		"POST /api/v1/assignments/:id/return":  true,
		"POST /api/v1/assignments/:id/cancel":  true,
		"GET /api/v1/repairs/:id":              true,
		"POST /api/v1/repairs/:id/return":      true,
		"GET /api/v1/search":                   true,
		"GET /api/v1/audit":                    true,
		"GET /healthz":                         true,
		"GET /metrics":                         true,
	}
	got := map[string]bool{}
	for _, route := range r.Routes() {
		got[route.Method+" "+route.Path] = true
	}
	assert.Equal(t, want, got)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "asset_tracker_http_requests_total")
}
