package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teemow/gasmail/internal/config"
	"github.com/teemow/gasmail/internal/instrumentation"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Endpoint:    "https://script.google.com/macros/s/deploy-id/exec",
		APIKey:      "test-key",
		DownloadDir: t.TempDir(),
	}
}

func newTestServerContext(t *testing.T, opts ...Option) *ServerContext {
	t.Helper()
	sc, err := NewServerContext(context.Background(), testConfig(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func createTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = provider.Shutdown(ctx)
	})
	return provider
}

func createDisabledProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	require.NoError(t, err)
	return provider
}
