package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "CoinPulse/pkg/logger"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.GET("/boom", func(echo.Context) error { panic("boom") })
}

func serve(s *Server, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServerRoutes(t *testing.T) {
	s := NewServer(applogger.Nop(), ServerConfig{MetricsPath: "/metrics"}, pingHandler{}, nil)

	rec := serve(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(s, http.MethodGet, "/ping", nil)
	assert.Equal(t, "pong", rec.Body.String())

	rec = serve(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "coinpulse_http_requests_total")
}

func TestServerRecoversPanics(t *testing.T) {
	s := NewServer(applogger.Nop(), ServerConfig{}, pingHandler{})

	rec := serve(s, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(s, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerCORS(t *testing.T) {
	withCORS := NewServer(applogger.Nop(), ServerConfig{CORSOrigins: []string{"*"}}, pingHandler{})
	rec := serve(withCORS, http.MethodGet, "/ping", map[string]string{echo.HeaderOrigin: "http://example.com"})
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	without := NewServer(applogger.Nop(), ServerConfig{}, pingHandler{})
	rec = serve(without, http.MethodGet, "/ping", map[string]string{echo.HeaderOrigin: "http://example.com"})
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestServerConfigDefaults(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1"}.withDefaults()
	assert.Equal(t, "127.0.0.1:8080", cfg.addr())
	assert.Positive(t, cfg.SlowRequest)
	assert.Equal(t, ":9090", ServerConfig{Port: 9090}.addr())
}
