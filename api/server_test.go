package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/navigation"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	var out struct {
		Status        string `json:"status"`
		SchemaVersion int64  `json:"schema_version"`
	}
	env.expect(env.do(http.MethodGet, "/healthz", nil), http.StatusOK, &out)
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, int64(1), out.SchemaVersion)
}

func TestNavigation(t *testing.T) {
	env := newTestEnv(t)

	var menu navigation.Menu
	env.expect(env.do(http.MethodGet, "/api/navigation", nil), http.StatusOK, &menu)
	require.NotEmpty(t, menu.Sections)

	var section navigation.Section
	env.expect(env.do(http.MethodGet, "/api/navigation?module=quality", nil), http.StatusOK, &section)
	assert.Equal(t, "Quality", section.Title)

	env.errorBody(env.do(http.MethodGet, "/api/navigation?module=nope", nil), http.StatusNotFound)
}

func TestRouter_UnknownRouteIsJSON(t *testing.T) {
	env := newTestEnv(t)
	body := env.errorBody(env.do(http.MethodGet, "/api/nope", nil), http.StatusNotFound)
	assert.Equal(t, "Route not found", body.Error)
}

func TestMetrics_CountsByRoutePattern(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/api/employees/emp-1", nil)
	env.do(http.MethodGet, "/api/employees/emp-2", nil)

	rec := env.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`business_http_requests_total{method="GET",route="/api/employees/{id}",status="404"} 2`)
}

func TestRouter_RateLimit(t *testing.T) {
	env := newTestEnv(t)
	router := NewRouter(env.h, RouterOptions{RateLimitRPS: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_CORS(t *testing.T) {
	env := newTestEnv(t)
	router := NewRouter(env.h, RouterOptions{CORSOrigins: []string{"https://admin.acme.test"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/employees", nil)
	req.Header.Set("Origin", "https://admin.acme.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://admin.acme.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost))
}

func TestRouter_CORSWildcardDropsCredentials(t *testing.T) {
	env := newTestEnv(t)
	preflight := func(router http.Handler) http.Header {
		req := httptest.NewRequest(http.MethodOptions, "/api/employees", nil)
		req.Header.Set("Origin", "https://evil.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Header()
	}

	// Any origin is allowed, but never with credentials.
	h := preflight(NewRouter(env.h, RouterOptions{CORSOrigins: []string{"*"}}))
	assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, h.Get("Access-Control-Allow-Credentials"))

	// The default list only admits the local dev servers.
	h = preflight(NewRouter(env.h, RouterOptions{}))
	assert.Empty(t, h.Get("Access-Control-Allow-Origin"))
}
