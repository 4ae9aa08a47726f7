package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond}
}

func TestGetJSONSendsHeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/orders", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("status"))
		assert.Equal(t, "key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "secret", r.Header.Get("APCA-API-SECRET-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHeaders(AlpacaHeaders("key", "secret")))

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.GetJSON(context.Background(), "/v2/orders", url.Values{"status": {"all"}}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestStatusErrorIsNotRetriedForClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.DoWithRetry(NewRequest(http.MethodGet, "/v2/account"), fastRetry())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.False(t, statusErr.Retryable())
	assert.Equal(t, int32(1), calls.Load())
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	resp, err := c.DoWithRetry(NewRequest(http.MethodGet, "/v2/positions"), fastRetry())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(resp.Body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.DoWithRetry(NewRequest(http.MethodGet, "/x"), fastRetry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 retry attempts failed")
	assert.Equal(t, int32(3), calls.Load())
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// One request per minute with a burst of one: the second call must wait.
	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(1))

	_, err := c.Do(NewRequest(http.MethodGet, "/a"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Do(NewRequest(http.MethodGet, "/b").WithContext(ctx))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
}

func TestParseJSONError(t *testing.T) {
	r := &Response{Body: []byte("not json")}
	var v map[string]any
	assert.Error(t, r.ParseJSON(&v))
}
