package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(shardId uint64, req []byte) []byte {
	return append([]byte(strings.Repeat("#", int(shardId))), req...)
}

func TestSendRoutesByShard(t *testing.T) {
	srv := httptest.NewServer(NewHandler(echoHandler, true))
	defer srv.Close()

	c := NewHttpClientTransport()
	require.NoError(t, c.Connect(common.ClientConfig{Endpoints: []string{srv.URL}, TimeoutSecond: 5, RetryCount: 1}))
	defer c.Close()

	resp, err := c.Send(3, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "###payload", string(resp))
}

func TestEndpointWithoutScheme(t *testing.T) {
	srv := httptest.NewServer(NewHandler(echoHandler, false))
	defer srv.Close()

	c := NewHttpClientTransport()
	require.NoError(t, c.Connect(common.ClientConfig{Endpoints: []string{strings.TrimPrefix(srv.URL, "http://")}, TimeoutSecond: 5}))
	defer c.Close()

	resp, err := c.Send(0, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(resp))
}

func TestInvalidShardId(t *testing.T) {
	srv := httptest.NewServer(NewHandler(echoHandler, false))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/not-a-number", "application/octet-stream", strings.NewReader("x"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRetryUsesNextEndpoint(t *testing.T) {
	var failures atomic.Int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		failures.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer failing.Close()
	healthy := httptest.NewServer(NewHandler(echoHandler, false))
	defer healthy.Close()

	c := NewHttpClientTransport()
	require.NoError(t, c.Connect(common.ClientConfig{Endpoints: []string{failing.URL, healthy.URL}, TimeoutSecond: 5, RetryCount: 2}))
	defer c.Close()

	for i := 0; i < 4; i++ {
		resp, err := c.Send(1, []byte("ok"))
		require.NoError(t, err)
		assert.Equal(t, "#ok", string(resp))
	}
	assert.Positive(t, failures.Load())
}

func TestSendErrors(t *testing.T) {
	c := NewHttpClientTransport()
	_, err := c.Send(1, nil)
	assert.ErrorIs(t, err, errNotConnected)

	assert.Error(t, c.Connect(common.ClientConfig{}))

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer failing.Close()

	require.NoError(t, c.Connect(common.ClientConfig{Endpoints: []string{failing.URL}, TimeoutSecond: 5, RetryCount: 3}))
	_, err = c.Send(1, []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 attempt(s)")
	assert.Contains(t, err.Error(), "500")

	require.NoError(t, c.Close())
	_, err = c.Send(1, nil)
	assert.ErrorIs(t, err, errNotConnected)
}
