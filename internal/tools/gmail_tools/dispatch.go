package gmail_tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gasmail/internal/instrumentation"
	"github.com/teemow/gasmail/internal/logging"
)

// Invoker performs one remote call. *gas.Client implements it.
type Invoker interface {
	Call(ctx context.Context, action string, params map[string]string) (json.RawMessage, error)
}

// Dispatcher maps tool calls onto remote actions. It holds no mutable
// state and is safe for concurrent use.
type Dispatcher struct {
	ops         []Operation
	byName      map[string]Operation
	remote      Invoker
	downloadDir string
	metrics     *instrumentation.Metrics
	logger      logging.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithToolPrefix prepends prefix to every tool name.
func WithToolPrefix(prefix string) DispatcherOption {
	return func(d *Dispatcher) {
		d.ops = Catalog(prefix)
	}
}

// WithMetrics records attachment bytes written.
func WithMetrics(m *instrumentation.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l logging.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// NewDispatcher creates a dispatcher over the catalog that calls remote and
// saves attachments to downloadDir.
func NewDispatcher(remote Invoker, downloadDir string, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		ops:         Catalog(""),
		remote:      remote,
		downloadDir: downloadDir,
		logger:      logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.byName = make(map[string]Operation, len(d.ops))
	for _, op := range d.ops {
		d.byName[op.Name] = op
	}
	return d
}

// Operations returns the catalog in its fixed order.
func (d *Dispatcher) Operations() []Operation {
	out := make([]Operation, len(d.ops))
	copy(out, d.ops)
	return out
}

// Lookup returns the operation registered under name.
func (d *Dispatcher) Lookup(name string) (Operation, bool) {
	op, ok := d.byName[name]
	return op, ok
}

// Call runs one invocation and always returns a single text block. Any
// failure is returned as an error-flagged result.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	text, err := d.invoke(ctx, name, args)
	if err != nil {
		d.logger.Debug("tool call failed", logging.Tool(name), logging.Err(err))
		return mcp.NewToolResultError("Error: " + err.Error())
	}
	return mcp.NewToolResultText(text)
}

// invoke runs validate, remote call and respond in order, stopping at the
// first failure.
func (d *Dispatcher) invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	op, ok := d.byName[name]
	if !ok {
		return "", &UnknownToolError{Name: name}
	}

	params, err := Validate(op, args)
	if err != nil {
		return "", err
	}

	body, err := d.remote.Call(ctx, op.Action, params)
	if err != nil {
		return "", err
	}

	return op.Respond(ctx, d, body)
}
