package gmail_tools

import (
	"fmt"
	"strings"
)

// Constraint names used in validation messages.
const (
	ConstraintRequired = "is required"
	ConstraintString   = "must be a string"
	ConstraintNonEmpty = "must not be empty"
)

// Violation is one argument that failed validation.
type Violation struct {
	Field      string
	Constraint string
}

// ValidationError reports invocation arguments that do not match the
// operation's declared parameters. Violations are in declaration order.
type ValidationError struct {
	Operation  string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + " " + v.Constraint
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Operation, strings.Join(parts, "; "))
}

// UnknownToolError reports a call to a name that is not in the catalog.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "unknown tool: " + e.Name
}

// AttachmentError reports a download response without a usable
// attachment.name/attachment.base64 pair. Nothing is written when it occurs.
type AttachmentError struct {
	Reason string
	Err    error
}

func (e *AttachmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid attachment data from remote: %s: %v", e.Reason, e.Err)
	}
	return "invalid attachment data from remote: " + e.Reason
}

func (e *AttachmentError) Unwrap() error {
	return e.Err
}

// FilesystemError reports a failed attachment write.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("failed to write attachment to %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}
