package gmail_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gasmail/internal/gas"
	"github.com/teemow/gasmail/internal/tools/common"
)

// fakeInvoker records calls and returns a canned body or error.
type fakeInvoker struct {
	mu     sync.Mutex
	calls  []fakeCall
	body   json.RawMessage
	err    error
	counts atomic.Int32
}

type fakeCall struct {
	action string
	params map[string]string
}

func (f *fakeInvoker) Call(_ context.Context, action string, params map[string]string) (json.RawMessage, error) {
	f.counts.Add(1)
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{action: action, params: params})
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func (f *fakeInvoker) lastCall(t *testing.T) fakeCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls, "no remote call recorded")
	return f.calls[len(f.calls)-1]
}

// stubRemote is an Apps Script stand-in that counts requests.
type stubRemote struct {
	*httptest.Server
	calls   atomic.Int32
	mu      sync.Mutex
	queries []url.Values
}

func newStubRemote(t *testing.T, status int, body string) *stubRemote {
	t.Helper()
	s := &stubRemote{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.mu.Lock()
		s.queries = append(s.queries, r.URL.Query())
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *stubRemote) lastQuery(t *testing.T) url.Values {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.queries, "no remote request recorded")
	return s.queries[len(s.queries)-1]
}

func newGASClient(t *testing.T, endpoint string) *gas.Client {
	t.Helper()
	c, err := gas.NewClient(endpoint, "test-api-key")
	require.NoError(t, err)
	return c
}

// validArgs returns a complete argument set for op.
func validArgs(op Operation) map[string]any {
	args := make(map[string]any, len(op.Params))
	for _, p := range op.Params {
		args[p.Name] = "value-" + p.Name
	}
	return args
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1, "exactly one content block")
	return common.ResultText(result)
}
