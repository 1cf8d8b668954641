package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/teemow/gasmail/internal/config"
	"github.com/teemow/gasmail/internal/gas"
	"github.com/teemow/gasmail/internal/instrumentation"
	"github.com/teemow/gasmail/internal/logging"
)

// ServerContext holds the immutable configuration and collaborators shared by
// all tool handlers. It is created once at startup and passed explicitly.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	config      config.Config
	remote      *gas.Client
	downloadDir string

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      logging.Logger
	httpClient  *http.Client

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithMetrics sets the metrics recorder for tools and remote calls.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) {
		sc.metrics = m
	}
}

// WithAuditLogger sets the per-invocation audit logger.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) {
		sc.auditLogger = al
	}
}

// WithLogger sets the operational logger. A nil logger keeps the default.
func WithLogger(l logging.Logger) Option {
	return func(sc *ServerContext) {
		if l != nil {
			sc.logger = l
		}
	}
}

// WithHTTPClient sets the HTTP client used for remote calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(sc *ServerContext) {
		sc.httpClient = hc
	}
}

// NewServerContext validates cfg and builds the remote client. A
// configuration error is returned as *config.ConfigError.
func NewServerContext(ctx context.Context, cfg *config.Config, opts ...Option) (*ServerContext, error) {
	if cfg == nil {
		return nil, &config.ConfigError{Field: "config", Reason: "is required"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		config:      *cfg,
		downloadDir: cfg.ResolvedDownloadDir(),
		logger:      logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(sc)
	}

	clientOpts := []gas.Option{
		gas.WithMetrics(sc.metrics),
		gas.WithLogger(sc.logger),
	}
	if sc.httpClient != nil {
		clientOpts = append(clientOpts, gas.WithHTTPClient(sc.httpClient))
	}

	remote, err := gas.NewClient(cfg.Endpoint, cfg.APIKey, clientOpts...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create remote client: %w", err)
	}
	sc.remote = remote

	return sc, nil
}

// Context returns the server context. It is canceled by Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns a copy of the validated configuration.
func (sc *ServerContext) Config() config.Config {
	return sc.config
}

// Remote returns the Apps Script client.
func (sc *ServerContext) Remote() *gas.Client {
	return sc.remote
}

// DownloadDir returns the directory attachments are written to.
func (sc *ServerContext) DownloadDir() string {
	return sc.downloadDir
}

// ToolPrefix returns the configured tool name prefix.
func (sc *ServerContext) ToolPrefix() string {
	return sc.config.ToolPrefix
}

// Metrics returns the metrics recorder, or nil if instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil if audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the operational logger.
func (sc *ServerContext) Logger() logging.Logger {
	return sc.logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
