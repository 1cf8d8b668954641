package logging

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyTool     = "tool"
	KeyAction   = "action"
	KeyDuration = "duration"
	KeyStatus   = "status"
	KeyError    = "error"
	KeyPath     = "path"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// secretParams are query parameters whose values are masked by RedactURL.
var secretParams = []string{"apiKey", "api_key", "key", "token"}

// Setup installs a text handler on w as the slog default and returns it.
func Setup(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithAction returns a logger with the remote action attribute set.
func WithAction(logger *slog.Logger, action string) *slog.Logger {
	return logger.With(slog.String(KeyAction, action))
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Action returns a slog attribute for the remote action.
func Action(action string) slog.Attr {
	return slog.String(KeyAction, action)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Path returns a slog attribute for a filesystem path.
func Path(path string) slog.Attr {
	return slog.String(KeyPath, path)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeToken returns a masked version of a secret for logging.
// It returns a length indicator without exposing any of the content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// RedactURL masks secret query parameters in rawURL.
// Unparseable input is replaced entirely so nothing leaks by accident.
func RedactURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable url>"
	}

	q := u.Query()
	changed := false
	for name := range q {
		for _, secret := range secretParams {
			if strings.EqualFold(name, secret) {
				q.Set(name, "REDACTED")
				changed = true
			}
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	u.User = nil
	return u.String()
}
