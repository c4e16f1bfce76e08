package main

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/discuit-rss/internal/discuit/discuittest"
	"github.com/blackmichael/discuit-rss/internal/domain"
)

func setupEnv(t *testing.T, baseURL string, port int) {
	t.Helper()
	t.Setenv("PORT", strconv.Itoa(port))
	t.Setenv("DISCUIT_BASE_URL", baseURL)
	t.Setenv("DISCUIT_SITE_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE", "")
	t.Setenv("CONFIG_FILE", "")
}

// freePort returns a port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRunFailsWhenHandshakeFails(t *testing.T) {
	upstream := discuittest.NewServer()
	t.Cleanup(upstream.Close)
	upstream.InitialCookies = nil

	port := freePort(t)
	setupEnv(t, upstream.URL, port)

	err := run()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthentication)

	conn, dialErr := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), 500*time.Millisecond)
	if dialErr == nil {
		conn.Close()
	}
	assert.Error(t, dialErr, "nothing should listen after a failed handshake")
	assert.Empty(t, upstream.Requests())
}

func TestRunFailsWhenPortIsTaken(t *testing.T) {
	upstream := discuittest.NewServer()
	t.Cleanup(upstream.Close)

	held, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { held.Close() })
	setupEnv(t, upstream.URL, held.Addr().(*net.TCPAddr).Port)

	done := make(chan error, 1)
	go func() { done <- run() }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorContains(t, err, "http server")
		assert.ErrorContains(t, err, "address already in use")
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the listener failed")
	}
}
