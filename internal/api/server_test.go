package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disasterhub/backend/internal/catalog"
	"disasterhub/backend/internal/clock"
	"disasterhub/backend/internal/engine"
	"disasterhub/backend/internal/gateway"
	"disasterhub/backend/internal/registry"
	"disasterhub/backend/internal/status"
	"disasterhub/backend/pkg/models"
)

type stubChat struct {
	resp models.ChatResponse
	err  error
	got  models.ChatRequest
}

func (s *stubChat) Call(_ context.Context, req models.ChatRequest, _ string, _ gateway.Options) (models.ChatResponse, error) {
	s.got = req
	return s.resp, s.err
}

// newTestServer wires a full server over a fake clock so workflow instances
// stay pending unless the test advances time.
func newTestServer(t *testing.T) (*echo.Echo, *Server, *stubChat) {
	t.Helper()

	reg := registry.NewWithDefaultFleet()
	cat := catalog.NewWithBuiltins()
	eng := engine.New(cat, clock.NewFake(), 100*time.Millisecond, 2*time.Second)
	t.Cleanup(eng.Stop)
	agg := status.New(reg, eng)
	chat := &stubChat{resp: models.ChatResponse{Success: true, Reply: "ok", SessionID: "session_1"}}

	srv := NewServer(reg, cat, eng, agg, chat, ChatConfig{Endpoint: "http://upstream/chat"})
	e := echo.New()
	srv.Register(e)
	return e, srv, chat
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disasterhub-backend", body["service"])
}

func TestListServices(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/api/mcp/services", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	services := body["services"].([]any)
	assert.Len(t, services, 7)
	first := services[0].(map[string]any)
	assert.Equal(t, "nfdrs4", first["name"])
	assert.Equal(t, "stopped", first["status"])
}

func TestControlServiceStartAndStop(t *testing.T) {
	e, srv, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/mcp/services/control",
		`{"service_name":"nfdrs4","action":"start"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	svc, err := srv.Registry.Get("nfdrs4")
	require.NoError(t, err)
	assert.Equal(t, models.ServiceStatusRunning, svc.Status)
	assert.NotNil(t, svc.ProcessHandle)

	rec = doJSON(e, http.MethodPost, "/api/mcp/services/control",
		`{"service_name":"nfdrs4","action":"stop"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	svc, err = srv.Registry.Get("nfdrs4")
	require.NoError(t, err)
	assert.Equal(t, models.ServiceStatusStopped, svc.Status)
	assert.Nil(t, svc.ProcessHandle)
}

func TestControlServiceErrors(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/mcp/services/control",
		`{"service_name":"nope","action":"start"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/problem+json")

	rec = doJSON(e, http.MethodPost, "/api/mcp/services/control",
		`{"service_name":"nfdrs4","action":"reboot"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartAndStopAllServices(t *testing.T) {
	e, srv, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/mcp/services/start-all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, svc := range srv.Registry.List() {
		assert.Equal(t, models.ServiceStatusRunning, svc.Status)
	}

	rec = doJSON(e, http.MethodPost, "/api/mcp/services/stop-all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, svc := range srv.Registry.List() {
		assert.Equal(t, models.ServiceStatusStopped, svc.Status)
	}
}

func TestCallServiceRequiresRunning(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/mcp/call",
		`{"service_name":"ghost","tool_name":"ping"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/mcp/call",
		`{"service_name":"climada","tool_name":"ping"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	doJSON(e, http.MethodPost, "/api/mcp/services/control",
		`{"service_name":"climada","action":"start"}`)
	rec = doJSON(e, http.MethodPost, "/api/mcp/call",
		`{"service_name":"climada","tool_name":"hazard_detection","arguments":{"region":"sichuan"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "climada", body["service"])
	assert.Equal(t, "hazard_detection", body["tool"])
}

func TestListWorkflows(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/api/workflows", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	workflows := body["workflows"].([]any)
	require.Len(t, workflows, 4)
	first := workflows[0].(map[string]any)
	assert.Equal(t, "fire_risk_assessment", first["name"])
	assert.Equal(t, float64(4), first["step_count"])
}

func TestStartWorkflowLifecycleOverHTTP(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/workflows/start",
		`{"workflow_name":"flood_risk_assessment","parameters":{"location":"chengdu"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	instanceID := body["instance_id"].(string)
	require.NotEmpty(t, instanceID)

	rec = doJSON(e, http.MethodGet, "/api/workflows/instances/"+instanceID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	inst := decode(t, rec)["instance"].(map[string]any)
	assert.Equal(t, "flood_risk_assessment", inst["workflow_name"])
	assert.Equal(t, "pending", inst["status"])
	assert.Len(t, inst["steps"].([]any), 4)

	rec = doJSON(e, http.MethodGet, "/api/workflows/instances", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["instances"].([]any), 1)
}

func TestStartWorkflowUnknownDefinition(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/workflows/start",
		`{"workflow_name":"volcano_watch"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelInstanceOverHTTP(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/workflows/start",
		`{"workflow_name":"fire_risk_assessment","parameters":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	instanceID := decode(t, rec)["instance_id"].(string)

	rec = doJSON(e, http.MethodPost, "/api/workflows/instances/"+instanceID+"/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/workflows/instances/"+instanceID+"/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/workflows/instances/missing/cancel", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMonitorStatus(t *testing.T) {
	e, _, _ := newTestServer(t)

	doJSON(e, http.MethodPost, "/api/mcp/services/control",
		`{"service_name":"aurora","action":"start"}`)
	doJSON(e, http.MethodPost, "/api/workflows/start",
		`{"workflow_name":"fire_risk_assessment","parameters":{}}`)

	rec := doJSON(e, http.MethodGet, "/api/monitor/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)

	services := body["service_stats"].(map[string]any)
	assert.Equal(t, float64(7), services["total"])
	assert.Equal(t, float64(1), services["running"])
	assert.Equal(t, float64(6), services["stopped"])

	workflows := body["workflow_stats"].(map[string]any)
	assert.Equal(t, float64(1), workflows["total"])
	assert.Equal(t, float64(1), workflows["pending"])
}

func TestChatRelaysNormalizedRequest(t *testing.T) {
	e, _, chat := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/chat",
		`{"question":"flood outlook?","session_id":"session_7","context":{"region":"sichuan"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "flood outlook?", chat.got.Text)
	assert.Equal(t, "session_7", chat.got.SessionID)
	assert.Equal(t, "sichuan", chat.got.Context["region"])

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["reply"])
}

func TestChatMissingInput(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/chat", `{"session_id":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatUpstreamUnreachableStillReturnsEnvelope(t *testing.T) {
	e, srv, _ := newTestServer(t)
	srv.Chat = &stubChat{
		resp: models.ChatResponse{
			Success:   false,
			Reply:     "The assistant is currently unreachable. Please try again in a moment.",
			SessionID: "session_7",
			Error:     "upstream unreachable after retries",
		},
		err: gateway.ErrUpstreamUnreachable,
	}

	rec := doJSON(e, http.MethodPost, "/api/chat",
		`{"question":"hello","session_id":"session_7"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["reply"])
	assert.Equal(t, "session_7", body["session_id"])
}

func TestConnectionTrackingMiddleware(t *testing.T) {
	_, srv, _ := newTestServer(t)

	assert.Equal(t, 0, srv.Aggregator.Summarize().ActiveConnections)
	srv.Aggregator.ConnectionOpened()
	assert.Equal(t, 1, srv.Aggregator.Summarize().ActiveConnections)
	srv.Aggregator.ConnectionClosed()
	assert.Equal(t, 0, srv.Aggregator.Summarize().ActiveConnections)
}
