// Package gateway relays canonical chat requests to the conversational
// backend. The upstream is slow and occasionally flaky, so every call runs
// with a hard per-attempt timeout and a bounded number of retries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"disasterhub/backend/internal/clock"
	"disasterhub/backend/pkg/models"
)

// Standard error definitions
var (
	ErrUpstreamUnreachable = errors.New("upstream unreachable after retries")
	ErrUpstreamError       = errors.New("upstream returned an error response")
)

// Doer abstracts the HTTP transport so tests can inject failures.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options bound the wall-clock cost of one Call: at most
// timeout*(maxRetries+1) + backoff*maxRetries.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// Gateway performs the outbound calls. It holds no per-call state.
type Gateway struct {
	client Doer
	clock  clock.Clock
}

// New creates a Gateway on the given transport.
func New(client Doer, clk clock.Clock) *Gateway {
	return &Gateway{client: client, clock: clk}
}

// outboundEnvelope is the wire shape sent upstream; constructed per call and
// discarded once the call resolves.
type outboundEnvelope struct {
	Payload         models.ChatRequest `json:"payload"`
	SessionID       string             `json:"session_id"`
	UserID          string             `json:"user_id,omitempty"`
	TimestampIssued time.Time          `json:"timestamp_issued"`
}

// upstreamBody is the parsed response body: structured JSON when the upstream
// sent a well-formed object or array, the raw text otherwise.
type upstreamBody struct {
	Structured any
	Raw        string
}

// Call relays one canonical request to the endpoint. The returned response is
// always well formed: on failure the reply carries a clearly marked error
// text alongside the session id, and the error identifies the failure class
// (ErrUpstreamUnreachable or ErrUpstreamError).
func (g *Gateway) Call(ctx context.Context, req models.ChatRequest, endpoint string, opts Options) (models.ChatResponse, error) {
	start := g.clock.Now()

	envelope := outboundEnvelope{
		Payload:         req,
		SessionID:       req.SessionID,
		UserID:          req.UserID,
		TimestampIssued: start,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		wrapped := fmt.Errorf("%w: encoding envelope: %v", ErrUpstreamUnreachable, err)
		return g.failure(req, start, wrapped), wrapped
	}

	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-g.clock.After(opts.Backoff):
			case <-ctx.Done():
				wrapped := fmt.Errorf("%w: %v", ErrUpstreamUnreachable, ctx.Err())
				return g.failure(req, start, wrapped), wrapped
			}
		}

		resp, derr := g.attempt(ctx, endpoint, body, req, opts.Timeout)
		if derr != nil {
			lastErr = derr
			log.Warn().
				Err(derr).
				Int("attempt", attempt+1).
				Int("maxRetries", opts.MaxRetries).
				Str("sessionID", req.SessionID).
				Msg("Gateway: transport failure, will retry if attempts remain")
			continue
		}
		resp.ElapsedMs = g.clock.Now().Sub(start).Milliseconds()
		if !resp.Success {
			return resp, ErrUpstreamError
		}
		return resp, nil
	}

	wrapped := fmt.Errorf("%w: %v", ErrUpstreamUnreachable, lastErr)
	log.Error().
		Err(lastErr).
		Int("attempts", opts.MaxRetries+1).
		Str("sessionID", req.SessionID).
		Msg("Gateway: retries exhausted")
	return g.failure(req, start, wrapped), wrapped
}

// attempt performs one outbound POST. A transport-level error (including a
// timeout) is returned for the retry loop; an HTTP-level error response is
// final and becomes a failure envelope without retrying.
func (g *Gateway) attempt(ctx context.Context, endpoint string, body []byte, req models.ChatRequest, timeout time.Duration) (models.ChatResponse, error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(actx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Session-ID", req.SessionID)
	if req.UserID != "" {
		httpReq.Header.Set("X-User-ID", req.UserID)
	}

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}

	parsed := parseBody(string(raw))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return models.ChatResponse{
			Success:   false,
			Reply:     fmt.Sprintf("The assistant backend reported an error (status %d). Please try again later.", httpResp.StatusCode),
			SessionID: req.SessionID,
			UserID:    req.UserID,
			Error:     fmt.Sprintf("upstream status %d: %s", httpResp.StatusCode, snippet(parsed.Raw, 200)),
			Timestamp: g.clock.Now(),
		}, nil
	}

	return models.ChatResponse{
		Success:   true,
		Reply:     extractReply(parsed),
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Timestamp: g.clock.Now(),
	}, nil
}

// parseBody reads the body as text first and parses JSON only when the
// trimmed text looks like an object or array. Upstream services have been
// seen returning plain-text error pages with a 200 status.
func parseBody(raw string) upstreamBody {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return upstreamBody{Structured: v, Raw: raw}
		}
	}
	return upstreamBody{Raw: raw}
}

// extractReply finds a human-facing reply, falling back to the stringified
// body so the caller never receives an empty reply.
func extractReply(body upstreamBody) string {
	if obj, ok := body.Structured.(map[string]any); ok {
		if response, ok := obj["response"].(map[string]any); ok {
			if v, ok := response["content"].(string); ok && v != "" {
				return v
			}
		}
		for _, key := range []string{"content", "reply", "message", "answer", "summary"} {
			if v, ok := obj[key].(string); ok && v != "" {
				return v
			}
		}
	}
	if body.Structured != nil {
		if out, err := json.Marshal(body.Structured); err == nil {
			return string(out)
		}
	}
	return body.Raw
}

// failure builds the well-formed envelope for calls that never got a usable
// response.
func (g *Gateway) failure(req models.ChatRequest, start time.Time, err error) models.ChatResponse {
	return models.ChatResponse{
		Success:   false,
		Reply:     "The assistant is currently unreachable. Please try again in a moment.",
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Error:     err.Error(),
		ElapsedMs: g.clock.Now().Sub(start).Milliseconds(),
		Timestamp: g.clock.Now(),
	}
}

func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
