package gas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/gasmail/internal/instrumentation"
	"github.com/teemow/gasmail/internal/logging"
)

// Parameter names reserved for authentication and routing. Operation
// arguments with the same name overwrite them.
const (
	ParamAction = "action"
	ParamAPIKey = "apiKey"
)

// UserAgent is sent with every request.
const UserAgent = "gasmail/1.0"

// Client performs remote calls against one Apps Script endpoint.
// It is safe for concurrent use.
type Client struct {
	endpoint   *url.URL
	apiKey     string
	httpClient *http.Client
	metrics    *instrumentation.Metrics
	logger     logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics records gas_remote_calls_total and gas_remote_call_duration_seconds.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient returns a client for endpoint authenticated with apiKey.
func NewClient(endpoint, apiKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		// url.Error embeds the raw URL, which may carry the key.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	c := &Client{
		endpoint: u,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// requestURL builds the GET URL. Existing endpoint query parameters are
// kept unless a later key overwrites them.
func (c *Client) requestURL(action string, params map[string]string) string {
	u := *c.endpoint
	q := u.Query()
	q.Set(ParamAction, action)
	q.Set(ParamAPIKey, c.apiKey)
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Call issues one GET for action with params and returns the JSON body.
// The body is returned byte-for-byte; it is only checked for validity.
func (c *Client) Call(ctx context.Context, action string, params map[string]string) (json.RawMessage, error) {
	ctx, span := instrumentation.StartRemoteSpan(ctx, action)
	defer span.End()

	start := time.Now()
	body, err := c.do(ctx, action, params)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
		c.logger.Debug("remote call failed",
			logging.Action(action), slog.Duration(logging.KeyDuration, duration), logging.Err(err))
	} else {
		instrumentation.SetSpanSuccess(span)
		c.logger.Debug("remote call completed",
			logging.Action(action), slog.Duration(logging.KeyDuration, duration))
	}
	c.metrics.RecordRemoteCall(ctx, action, status, duration)

	return body, err
}

func (c *Client) do(ctx context.Context, action string, params map[string]string) (json.RawMessage, error) {
	reqURL := c.requestURL(action, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &RemoteError{Action: action, Err: redactTransportError(err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Action: action, Err: redactTransportError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &RemoteError{Action: action, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Action: action, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if !json.Valid(data) {
		return nil, &FormatError{Action: action, Err: fmt.Errorf("response is not valid JSON (%d bytes)", len(data))}
	}

	return json.RawMessage(data), nil
}
