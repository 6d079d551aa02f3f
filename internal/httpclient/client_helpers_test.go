package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// newTestClient builds a client from cfg, or the defaults when cfg is nil,
// and closes it with the test
func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()
	if cfg == nil {
		defaults := DefaultConfig()
		cfg = &defaults
	}
	c := New(cfg)
	t.Cleanup(c.Close)
	return c
}

// startBackend serves handler until the test ends
func startBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if resp != nil && resp.Body != nil {
		assert.NoError(t, resp.Body.Close())
	}
}
