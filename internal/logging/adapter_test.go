package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewSlogAdapter_WithNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter == nil {
		t.Fatal("NewSlogAdapter returned nil")
	}
	if adapter.logger == nil {
		t.Error("adapter.logger should not be nil when created with nil")
	}
}

func TestSlogAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewSlogAdapter(logger)

	tests := []struct {
		level string
		log   func(msg string, args ...any)
	}{
		{"DEBUG", adapter.Debug},
		{"INFO", adapter.Info},
		{"WARN", adapter.Warn},
		{"ERROR", adapter.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.log("remote call", "action", "search")

			out := buf.String()
			if !strings.Contains(out, "level="+tt.level) {
				t.Errorf("expected level %s in %q", tt.level, out)
			}
			if !strings.Contains(out, "action=search") {
				t.Errorf("expected key-value pair in %q", out)
			}
		})
	}
}

func TestSlogAdapter_Logger(t *testing.T) {
	logger := slog.Default()
	adapter := NewSlogAdapter(logger)
	if adapter.Logger() != logger {
		t.Error("Logger() should return the underlying logger")
	}
}

func TestDefaultLogger(t *testing.T) {
	adapter := DefaultLogger()
	if adapter == nil {
		t.Fatal("DefaultLogger returned nil")
	}
	if adapter.logger == nil {
		t.Error("DefaultLogger().logger should not be nil")
	}
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
