package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/gasmail/internal/instrumentation"
)

const (
	// DefaultHTTPAddr is the default listen address for the streamable-http transport.
	DefaultHTTPAddr = ":8080"

	// MCPEndpointPath is where the MCP streamable-http handler is mounted.
	MCPEndpointPath = "/mcp"

	// DefaultHTTPReadHeaderTimeout bounds how long a client may take to send headers.
	DefaultHTTPReadHeaderTimeout = 10 * time.Second

	// DefaultHTTPIdleTimeout is the keep-alive idle timeout.
	DefaultHTTPIdleTimeout = 120 * time.Second
)

// HTTPServerConfig configures the streamable-http transport.
type HTTPServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string

	// Token, when set, must be presented as "Authorization: Bearer <token>"
	// on the MCP endpoint. Health probes stay unauthenticated.
	Token string

	// Version is reported by /healthz/detailed.
	Version string
}

// HTTPServer exposes an MCP server over streamable HTTP together with
// health probes.
type HTTPServer struct {
	mcpServer *mcpserver.MCPServer
	sc        *ServerContext
	health    *HealthChecker
	config    HTTPServerConfig

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewHTTPServer wraps mcpSrv for the streamable-http transport.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) *HTTPServer {
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	return &HTTPServer{
		mcpServer: mcpSrv,
		sc:        sc,
		health:    NewHealthChecker(sc, config.Version),
		config:    config,
	}
}

// Health returns the health checker backing the probe endpoints.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Handler builds the full HTTP handler: MCP endpoint, health probes, request
// metrics and server spans.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(MCPEndpointPath),
	)

	var mcpHandler http.Handler = streamable
	if s.config.Token != "" {
		mcpHandler = requireBearerToken(s.config.Token, mcpHandler)
	}
	mux.Handle(MCPEndpointPath, mcpHandler)

	s.health.RegisterHealthEndpoints(mux)

	var metrics *instrumentation.Metrics
	if s.sc != nil {
		metrics = s.sc.Metrics()
	}

	return otelhttp.NewHandler(recordRequests(metrics, mux), "gasmail",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return !strings.HasPrefix(r.URL.Path, "/healthz") && r.URL.Path != "/readyz"
		}),
	)
}

// Start listens on the configured address and serves until Shutdown.
func (s *HTTPServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal is Start that closes ready once the listener is bound.
func (s *HTTPServer) StartWithReadySignal(ready chan<- struct{}) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		if ready != nil {
			close(ready)
		}
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	// No write timeout: MCP responses may be streamed for as long as a
	// remote call takes.
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultHTTPReadHeaderTimeout,
		IdleTimeout:       DefaultHTTPIdleTimeout,
	}

	s.mu.Lock()
	s.listener = ln
	s.httpServer = srv
	s.mu.Unlock()

	slog.Info("starting streamable-http server",
		"addr", ln.Addr().String(),
		"endpoint", MCPEndpointPath,
		"auth", s.config.Token != "")
	if ready != nil {
		close(ready)
	}

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// Shutdown marks the server not ready and drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// requireBearerToken rejects requests that do not carry the static token.
func requireBearerToken(token string, next http.Handler) http.Handler {
	expected := []byte(token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		presented, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="gasmail"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recordRequests records http_requests_total and http_request_duration_seconds.
// httpsnoop keeps the Flusher the streamable transport relies on.
func recordRequests(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), m.Code, m.Duration)
	})
}

// routeLabel maps request paths onto a fixed set of labels.
func routeLabel(path string) string {
	switch path {
	case MCPEndpointPath, "/healthz", "/readyz", "/healthz/detailed":
		return path
	default:
		return "other"
	}
}
