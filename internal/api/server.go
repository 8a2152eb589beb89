// Package api contains the HTTP handlers for the disaster operations service
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"disasterhub/backend/internal/catalog"
	"disasterhub/backend/internal/engine"
	"disasterhub/backend/internal/gateway"
	"disasterhub/backend/internal/registry"
	"disasterhub/backend/internal/status"
	"disasterhub/backend/pkg/models"
)

// ChatCaller relays a canonical chat request upstream.
type ChatCaller interface {
	Call(ctx context.Context, req models.ChatRequest, endpoint string, opts gateway.Options) (models.ChatResponse, error)
}

// ChatConfig carries the upstream endpoint and resilience settings for the
// chat relay.
type ChatConfig struct {
	Endpoint string
	Options  gateway.Options
}

// Server holds the dependencies for the API server.
type Server struct {
	Registry   *registry.Registry
	Catalog    *catalog.Catalog
	Engine     *engine.Engine
	Aggregator *status.Aggregator
	Chat       ChatCaller
	ChatConfig ChatConfig
}

// NewServer creates a new Server.
func NewServer(reg *registry.Registry, cat *catalog.Catalog, eng *engine.Engine, agg *status.Aggregator, chat ChatCaller, chatCfg ChatConfig) *Server {
	return &Server{
		Registry:   reg,
		Catalog:    cat,
		Engine:     eng,
		Aggregator: agg,
		Chat:       chat,
		ChatConfig: chatCfg,
	}
}

// Register mounts every route on the given echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.Use(s.trackConnections)

	e.GET("/health", s.HandleHealth)

	api := e.Group("/api")

	api.GET("/mcp/services", s.ListServices)
	api.POST("/mcp/services/control", s.ControlService)
	api.POST("/mcp/services/start-all", s.StartAllServices)
	api.POST("/mcp/services/stop-all", s.StopAllServices)
	api.POST("/mcp/call", s.CallService)

	api.GET("/workflows", s.ListWorkflows)
	api.GET("/workflows/instances", s.ListInstances)
	api.POST("/workflows/start", s.StartWorkflow)
	api.GET("/workflows/instances/:id", s.GetInstance)
	api.POST("/workflows/instances/:id/cancel", s.CancelInstance)

	api.GET("/monitor/status", s.MonitorStatus)

	api.POST("/chat", s.HandleChat)
}

// trackConnections keeps the in-flight request count that the monitor
// endpoint reports as active connections.
func (s *Server) trackConnections(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.Aggregator.ConnectionOpened()
		defer s.Aggregator.ConnectionClosed()
		return next(c)
	}
}

// HandleHealth returns basic health status (always returns 200 OK)
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthStatus{
		Status:    "ok",
		Service:   "disasterhub-backend",
		Version:   "1.0.0",
		Timestamp: time.Now(),
	})
}

// MonitorStatus returns the aggregated dashboard summary
// (GET /api/monitor/status)
func (s *Server) MonitorStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Aggregator.Summarize())
}

// problem writes an RFC 7807 Problem Details response.
func problem(c echo.Context, status int, title, detail string) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	return c.JSON(status, models.ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// domainError maps well-known errors to their Problem Details response.
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, registry.ErrServiceNotFound),
		errors.Is(err, catalog.ErrDefinitionNotFound),
		errors.Is(err, engine.ErrInstanceNotFound):
		return problem(c, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, engine.ErrInvalidState):
		return problem(c, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, registry.ErrUnsupportedAction),
		errors.Is(err, gateway.ErrMissingInput):
		return problem(c, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		return problem(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}
