package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRetryStatuses(t *testing.T) {
	t.Parallel()

	c := newHTTPClient("test")
	ctx := context.Background()

	tests := map[int]bool{
		http.StatusOK:                  false,
		http.StatusAccepted:            false,
		http.StatusNotFound:            false,
		http.StatusInternalServerError: false,
		http.StatusTooManyRequests:     true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
	}
	for code, want := range tests {
		got, err := c.CheckRetry(ctx, &http.Response{StatusCode: code}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got, "status %d", code)
	}
}

func TestCheckRetryExtraStatuses(t *testing.T) {
	t.Parallel()

	c := newHTTPClient("test", http.StatusAccepted)
	got, err := c.CheckRetry(context.Background(), &http.Response{StatusCode: http.StatusAccepted}, nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCheckRetryTransportError(t *testing.T) {
	t.Parallel()

	c := newHTTPClient("test")
	got, err := c.CheckRetry(context.Background(), nil, errors.New("connection refused"))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCheckRetryCancelledContext(t *testing.T) {
	t.Parallel()

	c := newHTTPClient("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := c.CheckRetry(ctx, &http.Response{StatusCode: http.StatusTooManyRequests}, nil)
	assert.False(t, got)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUserAgentHeader(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		assert.Contains(t, ua, "plume/")
		assert.Contains(t, ua, "(wiki publishing pipeline)")
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	var decoded map[string]any
	err := fetchJSON(context.Background(), newHTTPClient("test"), srv.URL, &decoded)
	require.NoError(t, err)
}

func TestFetchJSONStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	var decoded map[string]any
	err := fetchJSON(context.Background(), newHTTPClient("test"), srv.URL, &decoded)
	require.Error(t, err)

	var se *statusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.code)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestFetchJSONDecodeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json at all")
	}))
	defer srv.Close()

	var decoded map[string]any
	err := fetchJSON(context.Background(), newHTTPClient("test"), srv.URL, &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}
