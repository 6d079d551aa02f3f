package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriffhq/sheriff/internal/buildinfo"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/datastore"
	"github.com/sheriffhq/sheriff/internal/observability"
)

func newTestSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings := &conf.Settings{}
	settings.Server.Listen = "127.0.0.1:0"
	settings.Database.Type = conf.DatabaseSQLite
	settings.Database.SQLite.Path = t.TempDir() + "/server.db"
	return settings
}

func TestServer_RoutesAndMetrics(t *testing.T) {
	t.Parallel()

	settings := newTestSettings(t)
	ds := datastore.New(settings)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	s, err := New(settings, WithDataStore(ds), WithMetrics(metrics), WithBuildInfo(buildinfo.NewContext("v1.2.3", "")))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"v1.2.3"`)

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/projects/missing", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.True(t, strings.Contains(body, `path="/api/v1/projects/:id"`), "route templates label requests")
}

func TestServer_SecurityMiddleware(t *testing.T) {
	t.Parallel()

	settings := newTestSettings(t)
	settings.Server.AllowedOrigins = []string{"http://ui.example"}
	settings.Server.BodyLimit = "1K"
	ds := datastore.New(settings)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })

	s, err := New(settings, WithDataStore(ds))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", http.NoBody)
	req.Header.Set(echo.HeaderOrigin, "http://ui.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://ui.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", http.NoBody))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
	assert.Equal(t, "DENY", rec.Header().Get(echo.HeaderXFrameOptions))

	big := strings.NewReader(`{"name":"` + strings.Repeat("x", 2048) + `"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/projects", big)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServer_RequiresDatastore(t *testing.T) {
	t.Parallel()

	_, err := New(newTestSettings(t))
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	t.Parallel()

	cfg := ConfigFromSettings(&conf.Settings{})
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, "/api/v1", cfg.BasePath)
	require.NoError(t, cfg.Validate())

	cfg.Listen = "nope"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ReadTimeout = 0
	assert.Error(t, cfg.Validate())
	assert.Contains(t, DefaultConfig().String(), ":8080")
}
