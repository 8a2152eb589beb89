package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"disasterhub/backend/pkg/models"
)

// ServiceControlRequest names a service and the lifecycle verb to apply.
type ServiceControlRequest struct {
	ServiceName string `json:"service_name"`
	Action      string `json:"action"`
}

// ServiceCallRequest is a simulated tool invocation against a running service.
type ServiceCallRequest struct {
	ServiceName string         `json:"service_name"`
	ToolName    string         `json:"tool_name"`
	Arguments   map[string]any `json:"arguments"`
}

// ListServices returns the status of every capability service
// (GET /api/mcp/services)
func (s *Server) ListServices(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"services": s.Registry.List(),
	})
}

// ControlService applies start, stop or restart to one service
// (POST /api/mcp/services/control)
func (s *Server) ControlService(c echo.Context) error {
	var req ServiceControlRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	if err := s.Registry.SetAction(req.ServiceName, models.ServiceAction(req.Action)); err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Service %s: %s applied", req.ServiceName, req.Action),
	})
}

// StartAllServices starts the whole fleet
// (POST /api/mcp/services/start-all)
func (s *Server) StartAllServices(c echo.Context) error {
	return s.controlAll(c, models.ServiceActionStart)
}

// StopAllServices stops the whole fleet
// (POST /api/mcp/services/stop-all)
func (s *Server) StopAllServices(c echo.Context) error {
	return s.controlAll(c, models.ServiceActionStop)
}

func (s *Server) controlAll(c echo.Context, action models.ServiceAction) error {
	failures := s.Registry.SetAllAction(action)
	if len(failures) > 0 {
		detail := make(map[string]string, len(failures))
		for name, err := range failures {
			detail[name] = err.Error()
		}
		log.Warn().Int("failures", len(failures)).Str("action", string(action)).Msg("API: fleet action had failures")
		return c.JSON(http.StatusMultiStatus, map[string]any{
			"success":  false,
			"message":  fmt.Sprintf("Action %s failed for %d services", action, len(failures)),
			"failures": detail,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Action %s applied to all services", action),
	})
}

// CallService simulates one tool invocation against a running service
// (POST /api/mcp/call)
func (s *Server) CallService(c echo.Context) error {
	var req ServiceCallRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	svc, err := s.Registry.Get(req.ServiceName)
	if err != nil {
		return domainError(c, err)
	}
	if svc.Status != models.ServiceStatusRunning {
		return problem(c, http.StatusBadRequest, "Bad Request",
			fmt.Sprintf("service %s is not running", req.ServiceName))
	}

	// No real dispatch happens here; the fleet is simulated end to end.
	return c.JSON(http.StatusOK, map[string]any{
		"success":        true,
		"service":        req.ServiceName,
		"tool":           req.ToolName,
		"arguments":      req.Arguments,
		"result":         fmt.Sprintf("simulated %s result from %s", req.ToolName, svc.DisplayName),
		"timestamp":      time.Now().Format(time.RFC3339),
		"execution_time": 1.5,
	})
}
