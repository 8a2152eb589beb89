package gateway

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disasterhub/backend/internal/clock"
	"disasterhub/backend/pkg/models"
)

// scriptedTransport pops one outcome per attempt.
type scriptedTransport struct {
	outcomes []outcome
	calls    int
}

type outcome struct {
	err    error
	status int
	body   string
}

func (s *scriptedTransport) Do(req *http.Request) (*http.Response, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.outcomes) {
		idx = len(s.outcomes) - 1
	}
	o := s.outcomes[idx]
	if o.err != nil {
		return nil, o.err
	}
	return &http.Response{
		StatusCode: o.status,
		Body:       io.NopCloser(strings.NewReader(o.body)),
		Header:     make(http.Header),
	}, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "context deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func testOpts() Options {
	return Options{Timeout: 50 * time.Millisecond, MaxRetries: 2, Backoff: time.Millisecond}
}

func testRequest() models.ChatRequest {
	return models.ChatRequest{Text: "flood outlook?", SessionID: "session_1", UserID: "user_1"}
}

func TestCallSucceedsAfterTransientTimeouts(t *testing.T) {
	transport := &scriptedTransport{outcomes: []outcome{
		{err: timeoutErr{}},
		{err: timeoutErr{}},
		{status: http.StatusOK, body: `{"response":{"content":"Stay alert."}}`},
	}}
	g := New(transport, clock.System())

	resp, err := g.Call(context.Background(), testRequest(), "http://upstream/chat", testOpts())
	require.NoError(t, err)
	assert.Equal(t, 3, transport.calls)
	assert.True(t, resp.Success)
	assert.Equal(t, "Stay alert.", resp.Reply)
	assert.Equal(t, "session_1", resp.SessionID)
	assert.Equal(t, "user_1", resp.UserID)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestCallExhaustsRetries(t *testing.T) {
	transport := &scriptedTransport{outcomes: []outcome{{err: timeoutErr{}}}}
	g := New(transport, clock.System())

	opts := testOpts()
	opts.MaxRetries = 1
	resp, err := g.Call(context.Background(), testRequest(), "http://upstream/chat", opts)

	assert.ErrorIs(t, err, ErrUpstreamUnreachable)
	assert.Equal(t, 2, transport.calls)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Reply)
	assert.Equal(t, "session_1", resp.SessionID)
	assert.NotEmpty(t, resp.Error)
}

func TestCallDoesNotRetryHTTPErrors(t *testing.T) {
	transport := &scriptedTransport{outcomes: []outcome{
		{status: http.StatusInternalServerError, body: `{"detail":"model crashed"}`},
	}}
	g := New(transport, clock.System())

	resp, err := g.Call(context.Background(), testRequest(), "http://upstream/chat", testOpts())

	assert.ErrorIs(t, err, ErrUpstreamError)
	assert.Equal(t, 1, transport.calls, "application-level errors are not retried")
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "500")
	assert.Contains(t, resp.Error, "model crashed")
	assert.NotEmpty(t, resp.Reply)
}

func TestCallUnencodableEnvelopeMapsToUnreachable(t *testing.T) {
	transport := &scriptedTransport{outcomes: []outcome{{status: http.StatusOK, body: `{}`}}}
	g := New(transport, clock.System())

	req := testRequest()
	req.Context = map[string]any{"stream": make(chan int)}

	resp, err := g.Call(context.Background(), req, "http://upstream/chat", testOpts())

	assert.ErrorIs(t, err, ErrUpstreamUnreachable)
	assert.Equal(t, 0, transport.calls, "nothing is sent when the envelope cannot be encoded")
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Reply)
	assert.Equal(t, "session_1", resp.SessionID)
}

func TestCallWrapsPlainTextBody(t *testing.T) {
	transport := &scriptedTransport{outcomes: []outcome{
		{status: http.StatusOK, body: "All systems nominal"},
	}}
	g := New(transport, clock.System())

	resp, err := g.Call(context.Background(), testRequest(), "http://upstream/chat", testOpts())
	require.NoError(t, err)
	assert.Equal(t, "All systems nominal", resp.Reply)
}

func TestCallReplyExtractionPriority(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		reply string
	}{
		{"nested response content", `{"response":{"content":"nested"},"content":"flat"}`, "nested"},
		{"flat content", `{"content":"flat"}`, "flat"},
		{"reply field", `{"reply":"direct"}`, "direct"},
		{"summary fallback", `{"summary":"summed"}`, "summed"},
		{"stringified body fallback", `{"score":0.9}`, `{"score":0.9}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transport := &scriptedTransport{outcomes: []outcome{{status: http.StatusOK, body: tc.body}}}
			g := New(transport, clock.System())

			resp, err := g.Call(context.Background(), testRequest(), "http://upstream/chat", testOpts())
			require.NoError(t, err)
			assert.Equal(t, tc.reply, resp.Reply)
		})
	}
}

func TestCallSendsCanonicalEnvelope(t *testing.T) {
	var captured *http.Request
	transport := &captureTransport{status: http.StatusOK, body: `{"content":"ok"}`, captured: &captured}
	g := New(transport, clock.System())

	_, err := g.Call(context.Background(), testRequest(), "http://upstream/chat", testOpts())
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.Equal(t, "session_1", captured.Header.Get("X-Session-ID"))
	assert.Equal(t, "user_1", captured.Header.Get("X-User-ID"))

	body, err := io.ReadAll(captured.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"payload"`)
	assert.Contains(t, string(body), `"flood outlook?"`)
	assert.Contains(t, string(body), `"timestamp_issued"`)
}

type captureTransport struct {
	status   int
	body     string
	captured **http.Request
}

func (c *captureTransport) Do(req *http.Request) (*http.Response, error) {
	*c.captured = req
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(strings.NewReader(c.body)),
		Header:     make(http.Header),
	}, nil
}
