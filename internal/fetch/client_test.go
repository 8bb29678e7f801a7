package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetBytes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Write([]byte("image bytes"))
	}))
	defer ts.Close()

	c := NewClient(DefaultConfig())
	data, err := c.GetBytes(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), data)
}

func TestClientNon2xxStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(DefaultConfig())
	_, err := c.GetBytes(context.Background(), ts.URL)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestClientTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer ts.Close()

	c := NewClient(Config{Timeout: 50 * time.Millisecond, RequestsPerSecond: 100})
	_, err := c.GetBytes(context.Background(), ts.URL)
	require.Error(t, err)
}

func TestClientCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(DefaultConfig())
	_, err := c.GetBytes(ctx, "http://127.0.0.1:0/never")
	require.Error(t, err)
}
