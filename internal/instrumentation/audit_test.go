package instrumentation

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newBufferedLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation("search_messages", "search")
	ti.Complete(true, nil)

	if !ti.Success || ti.Status() != StatusSuccess {
		t.Errorf("expected success, got %q", ti.Status())
	}
	if ti.Duration < 0 {
		t.Errorf("expected non-negative duration, got %v", ti.Duration)
	}

	failed := NewToolInvocation("mark_read", "markRead").Complete(false, errors.New("boom"))
	if failed.Status() != StatusError {
		t.Errorf("expected error status, got %q", failed.Status())
	}
	if failed.Error != "boom" {
		t.Errorf("expected error text 'boom', got %q", failed.Error)
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	logger, buf := newBufferedLogger()
	al := NewAuditLogger(logger)

	al.LogToolInvocation(NewToolInvocation("get_message", "getMessage").
		WithArguments(map[string]string{"messageId": "m-1"}).
		Complete(true, nil))

	out := buf.String()
	if !strings.Contains(out, "msg=tool_executed") {
		t.Errorf("expected tool_executed line, got %q", out)
	}
	if !strings.Contains(out, "tool=get_message") || !strings.Contains(out, "action=getMessage") {
		t.Errorf("expected tool and action attributes, got %q", out)
	}
	if strings.Contains(out, "m-1") {
		t.Errorf("expected arguments to be omitted by default, got %q", out)
	}
}

func TestAuditLogger_Failure(t *testing.T) {
	logger, buf := newBufferedLogger()
	al := NewAuditLogger(logger)

	al.LogToolInvocation(NewToolInvocation("mark_unread", "markUnread").
		Complete(false, errors.New("HTTP error! status: 502")))

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "msg=tool_failed") {
		t.Errorf("expected warn tool_failed line, got %q", out)
	}
	if !strings.Contains(out, "status: 502") {
		t.Errorf("expected error text, got %q", out)
	}
}

func TestAuditLogger_IncludeArguments(t *testing.T) {
	logger, buf := newBufferedLogger()
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true, IncludeArguments: true})

	al.LogToolInvocation(NewToolInvocation("move_to_label", "moveToLabel").
		WithArguments(map[string]string{"labelName": "Archive"}).
		Complete(true, nil))

	if out := buf.String(); !strings.Contains(out, "arguments.labelName=Archive") {
		t.Errorf("expected arguments group, got %q", out)
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	logger, buf := newBufferedLogger()
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})

	al.LogToolInvocation(NewToolInvocation("search_messages", "search").Complete(true, nil))
	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}

	al.SetEnabled(true)
	al.LogToolInvocation(NewToolInvocation("search_messages", "search").Complete(true, nil))
	if buf.Len() == 0 {
		t.Error("expected output after enabling")
	}

	var nilLogger *AuditLogger
	nilLogger.LogToolInvocation(NewToolInvocation("x", "y"))
}
