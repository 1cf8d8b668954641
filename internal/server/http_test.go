package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const initializeBody = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`

func newTestMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("gasmail-test", "1.0.0",
		mcpserver.WithToolCapabilities(true),
	)
}

func postInitialize(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+MCPEndpointPath, strings.NewReader(initializeBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHTTPServer_InitializeWithoutToken(t *testing.T) {
	sc := newTestServerContext(t)
	srv := NewHTTPServer(newTestMCPServer(), sc, HTTPServerConfig{Version: "test"})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := postInitialize(t, ts.URL, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_BearerToken(t *testing.T) {
	sc := newTestServerContext(t)
	srv := NewHTTPServer(newTestMCPServer(), sc, HTTPServerConfig{Token: "letmein"})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "missing", token: "", status: http.StatusUnauthorized},
		{name: "wrong", token: "letmeout", status: http.StatusUnauthorized},
		{name: "prefix of the token", token: "letme", status: http.StatusUnauthorized},
		{name: "correct", token: "letmein", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postInitialize(t, ts.URL, tt.token)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusUnauthorized {
				assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
			}
		})
	}
}

func TestHTTPServer_HealthProbesSkipAuth(t *testing.T) {
	sc := newTestServerContext(t)
	srv := NewHTTPServer(newTestMCPServer(), sc, HTTPServerConfig{Token: "letmein"})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestHTTPServer_StartAndShutdown(t *testing.T) {
	sc := newTestServerContext(t)
	srv := NewHTTPServer(newTestMCPServer(), sc, HTTPServerConfig{Addr: "127.0.0.1:0"})

	ready := make(chan struct{})
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.StartWithReadySignal(ready)
	}()
	<-ready

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.False(t, srv.Health().IsReady())

	select {
	case err := <-serverErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPServer_ShutdownWithoutStart(t *testing.T) {
	srv := NewHTTPServer(newTestMCPServer(), nil, HTTPServerConfig{})
	assert.Equal(t, DefaultHTTPAddr, srv.Addr())
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/mcp", routeLabel("/mcp"))
	assert.Equal(t, "/readyz", routeLabel("/readyz"))
	assert.Equal(t, "other", routeLabel("/wp-admin"))
}
