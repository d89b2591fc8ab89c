package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClient_SendsBodyHeadersAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "secret", user)
		assert.Equal(t, "", pass)
		assert.Equal(t, "key-1", r.Header.Get("X-Idempotency-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"a":1}`, string(body))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"inv_1"}`))
	}))
	defer srv.Close()

	c := NewDefaultClient(ClientConfig{Timeout: time.Second}, nil)
	resp, err := c.Send(context.Background(), &Request{
		Method:        http.MethodPost,
		URL:           srv.URL,
		Headers:       map[string]string{"X-Idempotency-Key": "key-1"},
		Body:          []byte(`{"a":1}`),
		BasicAuthUser: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"inv_1"}`, string(resp.Body))
}

func TestDefaultClient_RetriesServerErrorsThenReturnsHTTPError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewDefaultClient(ClientConfig{Timeout: time.Second, RetryMax: 2, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond}, nil)
	_, err := c.Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.True(t, ierr.IsHTTPClient(err))

	httpErr, ok := IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.True(t, httpErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDefaultClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":"API_VALIDATION_ERROR"}`))
	}))
	defer srv.Close()

	c := NewDefaultClient(ClientConfig{Timeout: time.Second, RetryMax: 3, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond}, nil)
	_, err := c.Send(context.Background(), &Request{Method: http.MethodPost, URL: srv.URL, Body: []byte(`{}`)})
	require.Error(t, err)

	httpErr, ok := IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.False(t, httpErr.IsServerError())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDefaultClient_RateLimiterHonoursContext(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewDefaultClient(ClientConfig{Timeout: time.Second, RequestsPerSecond: 0.01}, nil)

	// the burst of one lets the first request through immediately
	_, err := c.Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Send(ctx, &Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.True(t, ierr.IsHTTPClient(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
