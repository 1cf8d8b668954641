package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/gasmail/internal/config"
	"github.com/teemow/gasmail/internal/instrumentation"
	"github.com/teemow/gasmail/internal/logging"
	"github.com/teemow/gasmail/internal/server"
	"github.com/teemow/gasmail/internal/tools/gmail_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"

	envHTTPToken      = "GASMAIL_HTTP_TOKEN"
	envMetricsEnabled = "METRICS_ENABLED"
	envMetricsAddr    = "METRICS_ADDR"

	metricsStartupTimeout = 5 * time.Second
)

// serveOptions holds the serve command flags.
type serveOptions struct {
	configPath string
	debug      bool

	transport string
	httpAddr  string
	httpToken string

	metricsEnabled bool
	metricsAddr    string

	endpoint    string
	downloadDir string
	toolPrefix  string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server exposing the Gmail tools.

The Apps Script endpoint and API key are read from the config file
($XDG_CONFIG_HOME/gasmail/config.toml), then from the GAS_ENDPOINT and
VALID_API_KEY environment variables, then from flags. The server refuses
to start when either is missing.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyEnv(cmd)
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to the config file (default: $XDG_CONFIG_HOME/gasmail/config.toml)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&opts.httpToken, "http-token", "", "Bearer token required on the MCP endpoint. Can also use "+envHTTPToken+" env var.")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use "+envMetricsEnabled+" env var.")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use "+envMetricsAddr+" env var.")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "Apps Script web app URL (overrides "+config.EnvEndpoint+")")
	cmd.Flags().StringVar(&opts.downloadDir, "download-dir", "", "Directory attachments are saved to (default: the user download directory)")
	cmd.Flags().StringVar(&opts.toolPrefix, "tool-prefix", "", `Prefix prepended to every tool name (e.g. "gmail_")`)

	return cmd
}

// applyEnv fills options that were not set explicitly from the environment.
func (o *serveOptions) applyEnv(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("http-token") {
		if v := os.Getenv(envHTTPToken); v != "" {
			o.httpToken = v
		}
	}
	if !flags.Changed("metrics-enabled") {
		if v := os.Getenv(envMetricsEnabled); v != "" {
			o.metricsEnabled = v == "true"
		}
	}
	if !flags.Changed("metrics-addr") {
		if v := os.Getenv(envMetricsAddr); v != "" {
			o.metricsAddr = v
		}
	}
}

// loadConfig resolves the gateway configuration: file, then environment,
// then flags. The result is validated.
func loadConfig(o serveOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		if _, statErr := os.Stat(o.configPath); statErr != nil {
			return nil, fmt.Errorf("config file %s: %w", o.configPath, statErr)
		}
		cfg, err = config.LoadFrom(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if o.endpoint != "" {
		cfg.Endpoint = o.endpoint
	}
	if o.downloadDir != "" {
		cfg.DownloadDir = o.downloadDir
	}
	if o.toolPrefix != "" {
		cfg.ToolPrefix = o.toolPrefix
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, opts serveOptions) error {
	logger := logging.Setup(os.Stderr, opts.debug)

	if opts.transport != transportStdio && opts.transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s)",
			opts.transport, transportStdio, transportStreamableHTTP)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			logger.Error("refusing to start", logging.Err(err))
		}
		return err
	}
	logger.Info("configuration loaded", slog.Any("config", cfg), slog.String("transport", opts.transport))

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		// shutdownCtx is already canceled here.
		flushCtx, flushCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer flushCancel()
		if err := provider.Shutdown(flushCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// The metrics port is only opened next to a network transport.
	if opts.transport != transportStdio && opts.metricsEnabled && provider.Enabled() && provider.HasPrometheusExporter() {
		metricsServer, err := startMetricsServer(opts.metricsAddr, provider)
		if err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer stopCancel()
			_ = metricsServer.Shutdown(stopCtx)
		}()
	}

	auditLogger := instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)

	serverContext, err := server.NewServerContext(shutdownCtx, cfg,
		server.WithMetrics(provider.Metrics()),
		server.WithAuditLogger(auditLogger),
		server.WithLogger(logging.NewSlogAdapter(logger)),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}

	switch opts.transport {
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, server.HTTPServerConfig{
			Addr:    opts.httpAddr,
			Token:   opts.httpToken,
			Version: version,
		})
	default:
		return runStdioServer(mcpSrv, logger)
	}
}

// newMCPServer creates the MCP server and registers the Gmail tools.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("gasmail", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithToolFilter(gmail_tools.CatalogOrder(sc.ToolPrefix())),
	)

	if err := gmail_tools.RegisterGmailTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register Gmail tools: %w", err)
	}
	return mcpSrv, nil
}

func startMetricsServer(addr string, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
	case <-time.After(metricsStartupTimeout):
		return nil, fmt.Errorf("metrics server startup timed out")
	}

	// ready is also closed when the listener fails to bind.
	select {
	case err := <-metricsErr:
		if err != nil {
			return nil, fmt.Errorf("metrics server failed to start: %w", err)
		}
	default:
	}

	slog.Info("metrics server started", "addr", metricsServer.Addr())
	return metricsServer, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		err := mcpserver.ServeStdio(mcpSrv,
			mcpserver.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		)
		if err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, httpConfig server.HTTPServerConfig) error {
	httpServer := server.NewHTTPServer(mcpSrv, sc, httpConfig)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	slog.Info("HTTP server gracefully stopped")
	return nil
}
