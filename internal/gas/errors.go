package gas

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/teemow/gasmail/internal/logging"
)

// RemoteError reports a transport failure or a non-2xx response from the
// Apps Script endpoint. Exactly one of StatusCode and Err is set.
type RemoteError struct {
	Action     string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote call %s failed: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("remote call %s failed: HTTP error! status: %d", e.Action, e.StatusCode)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// FormatError reports a response body that could not be parsed as JSON.
type FormatError struct {
	Action string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("remote call %s returned an invalid response: %v", e.Action, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsRemoteError reports whether err is or wraps a *RemoteError.
func IsRemoteError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// IsFormatError reports whether err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// redactTransportError strips the request URL, which carries the API key,
// from errors returned by http.Client.Do.
func redactTransportError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: logging.RedactURL(ue.URL), Err: ue.Err}
	}
	return err
}
