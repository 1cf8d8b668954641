package gmail_tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teemow/gasmail/internal/logging"
)

// Responder turns the remote JSON body of a successful call into the text
// of the tool result.
type Responder func(ctx context.Context, d *Dispatcher, body json.RawMessage) (string, error)

// jsonIndent is the fixed indentation of pretty-printed results.
const jsonIndent = "  "

// respondJSON pretty-prints the remote body. Key order is taken from the
// body as received; surrounding whitespace is dropped.
func respondJSON(_ context.Context, _ *Dispatcher, body json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(body), "", jsonIndent); err != nil {
		return "", fmt.Errorf("failed to format remote response: %w", err)
	}
	return buf.String(), nil
}

type attachmentPayload struct {
	Attachment *struct {
		Name   string `json:"name"`
		Base64 string `json:"base64"`
	} `json:"attachment"`
}

// respondAttachment decodes attachment.base64 and writes it to
// <downloadDir>/<attachment.name>, overwriting any existing file.
func respondAttachment(ctx context.Context, d *Dispatcher, body json.RawMessage) (string, error) {
	var payload attachmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &AttachmentError{Reason: "unexpected response shape", Err: err}
	}
	if payload.Attachment == nil {
		return "", &AttachmentError{Reason: "attachment is missing"}
	}
	if payload.Attachment.Name == "" {
		return "", &AttachmentError{Reason: "attachment.name is missing"}
	}
	if payload.Attachment.Base64 == "" {
		return "", &AttachmentError{Reason: "attachment.base64 is missing"}
	}

	name, err := attachmentFileName(payload.Attachment.Name)
	if err != nil {
		return "", err
	}

	data, err := decodeBase64(payload.Attachment.Base64)
	if err != nil {
		return "", &AttachmentError{Reason: "attachment.base64 is not valid base64", Err: err}
	}

	path := filepath.Join(d.downloadDir, name)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	// The download directory is never created; a missing one is reported.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &FilesystemError{Path: path, Err: err}
	}

	d.metrics.RecordAttachmentBytes(ctx, len(data))
	d.logger.Info("attachment saved", logging.Path(path), "bytes", len(data))

	return "Attachment saved to " + path, nil
}

// attachmentFileName keeps only the final path element of the remote name
// so a payload cannot write outside the download directory.
func attachmentFileName(name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	switch base {
	case ".", "..", string(filepath.Separator):
		return "", &AttachmentError{Reason: fmt.Sprintf("attachment.name %q is not a file name", name)}
	}
	return base, nil
}

// decodeBase64 accepts standard and URL-safe alphabets, padded or not, and
// ignores embedded whitespace such as MIME line breaks.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")

	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
