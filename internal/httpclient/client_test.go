package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriffhq/sheriff/internal/errors"
)

func TestNew(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		cfg := DefaultConfig()
		client := New(&cfg)

		require.NotNil(t, client)
		assert.Equal(t, DefaultTimeout, client.defaultTimeout)
		assert.Equal(t, defaultUserAgent, client.userAgent)
		assert.Nil(t, client.limiter, "pacing is off by default")
	})

	t.Run("nil config", func(t *testing.T) {
		client := New(nil)
		assert.Equal(t, DefaultTimeout, client.defaultTimeout)
	})

	t.Run("custom config", func(t *testing.T) {
		client := New(&Config{
			DefaultTimeout:    5 * time.Second,
			UserAgent:         "sheriff-test/1.0",
			RequestsPerSecond: 4,
		})

		assert.Equal(t, 5*time.Second, client.defaultTimeout)
		assert.Equal(t, "sheriff-test/1.0", client.userAgent)
		require.NotNil(t, client.limiter)
		assert.Equal(t, 1, client.limiter.Burst())
	})
}

func TestDo_BasicRequest(t *testing.T) {
	server := startBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("success"))
	})

	client := newTestClient(t, nil)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(t.Context(), req)
	require.NoError(t, err)
	defer closeBody(t, resp)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "success", string(body))
}

func TestDo_NilRequest(t *testing.T) {
	_, err := newTestClient(t, nil).Do(t.Context(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestDo_ContextCancellation(t *testing.T) {
	server := startBackend(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	})

	client := newTestClient(t, nil)

	ctx, cancel := context.WithCancel(t.Context())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	cancel()

	resp, err := client.Do(ctx, req)
	defer closeBody(t, resp)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_DefaultTimeout(t *testing.T) {
	server := startBackend(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	client := newTestClient(t, &Config{DefaultTimeout: 50 * time.Millisecond})

	resp, err := client.Get(t.Context(), server.URL)
	defer closeBody(t, resp)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_ContextTimeoutOverridesDefault(t *testing.T) {
	server := startBackend(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
	})

	client := newTestClient(t, &Config{DefaultTimeout: 10 * time.Millisecond})

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, server.URL)
	require.NoError(t, err)
	defer closeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_Pacing(t *testing.T) {
	server := startBackend(t, func(w http.ResponseWriter, r *http.Request) {})

	client := newTestClient(t, &Config{RequestsPerSecond: 0.5})

	resp, err := client.Get(t.Context(), server.URL)
	require.NoError(t, err, "first request uses the burst")
	closeBody(t, resp)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	resp, err = client.Get(ctx, server.URL)
	defer closeBody(t, resp)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
}

func TestDo_ConcurrentRequests(t *testing.T) {
	var requestCount atomic.Int32
	server := startBackend(t, func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
	})

	client := newTestClient(t, nil)

	const concurrency = 50
	var wg sync.WaitGroup
	var failures atomic.Int32
	for range concurrency {
		wg.Go(func() {
			resp, err := client.Get(t.Context(), server.URL)
			if err != nil {
				failures.Add(1)
				return
			}
			_ = resp.Body.Close()
		})
	}
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.Equal(t, int32(concurrency), requestCount.Load())
}

func TestDo_Hooks(t *testing.T) {
	server := startBackend(t, func(w http.ResponseWriter, r *http.Request) {})

	client := newTestClient(t, nil)

	var beforeCalled, afterCalled bool
	var capturedResp *http.Response
	client.SetBeforeRequestHook(func(r *http.Request) {
		beforeCalled = true
		assert.Equal(t, server.URL, r.URL.String())
	})
	client.SetAfterResponseHook(func(r *http.Request, resp *http.Response, err error) {
		afterCalled = true
		capturedResp = resp
		assert.NoError(t, err)
	})

	resp, err := client.Get(t.Context(), server.URL)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.True(t, beforeCalled)
	assert.True(t, afterCalled)
	assert.NotNil(t, capturedResp)
}

func TestSend_JSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	server := startBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var got payload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "cat", got.Name)
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := newTestClient(t, nil).Patch(t.Context(), server.URL, payload{Name: "cat"})
	require.NoError(t, err)
	defer closeBody(t, resp)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSend_RawBodies(t *testing.T) {
	var gotBodies []string
	var gotTypes []string
	var mu sync.Mutex
	server := startBackend(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotBodies = append(gotBodies, string(data))
		gotTypes = append(gotTypes, r.Header.Get("Content-Type"))
		mu.Unlock()
	})

	client := newTestClient(t, nil)
	for _, body := range []any{"text", []byte("bytes")} {
		resp, err := client.Post(t.Context(), server.URL, "text/plain", body)
		require.NoError(t, err)
		closeBody(t, resp)
	}
	resp, err := client.Delete(t.Context(), server.URL)
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, []string{"text", "bytes", ""}, gotBodies)
	assert.Equal(t, []string{"text/plain", "text/plain", ""}, gotTypes)
}

func TestSend_UnmarshalableBody(t *testing.T) {
	_, err := newTestClient(t, nil).Post(t.Context(), "http://127.0.0.1:1", "", map[string]any{"f": func() {}})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestClose(t *testing.T) {
	client := New(nil)
	client.Close()
	client.Close()
}
