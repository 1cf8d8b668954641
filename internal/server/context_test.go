package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gasmail/internal/config"
	"github.com/teemow/gasmail/internal/instrumentation"
)

func TestNewServerContext(t *testing.T) {
	cfg := testConfig(t)
	cfg.ToolPrefix = "gmail_"

	metrics := &instrumentation.Metrics{}
	audit := instrumentation.NewAuditLogger(nil)

	sc, err := NewServerContext(context.Background(), cfg,
		WithMetrics(metrics),
		WithAuditLogger(audit),
	)
	require.NoError(t, err)
	defer func() { _ = sc.Shutdown() }()

	assert.NotNil(t, sc.Remote())
	assert.Equal(t, cfg.DownloadDir, sc.DownloadDir())
	assert.Equal(t, "gmail_", sc.ToolPrefix())
	assert.Same(t, metrics, sc.Metrics())
	assert.Same(t, audit, sc.AuditLogger())
	assert.NotNil(t, sc.Logger())
	assert.Equal(t, cfg.Endpoint, sc.Config().Endpoint)
}

func TestNewServerContext_ConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   *config.Config
		field string
	}{
		{name: "nil config", cfg: nil, field: "config"},
		{name: "missing endpoint", cfg: &config.Config{APIKey: "k"}, field: "endpoint"},
		{name: "missing api key", cfg: &config.Config{Endpoint: "https://example.com/exec"}, field: "api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := NewServerContext(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Nil(t, sc)

			var ce *config.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestServerContext_ConfigIsACopy(t *testing.T) {
	cfg := testConfig(t)
	sc, err := NewServerContext(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Endpoint = "https://changed.example.com"
	assert.NotEqual(t, cfg.Endpoint, sc.Config().Endpoint)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// Second shutdown is a no-op.
	require.NoError(t, sc.Shutdown())
}
