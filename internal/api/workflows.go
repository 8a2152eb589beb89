package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// WorkflowStartRequest names a catalog definition and its run parameters.
type WorkflowStartRequest struct {
	WorkflowName string         `json:"workflow_name"`
	Parameters   map[string]any `json:"parameters"`
}

// ListWorkflows returns every workflow definition in the catalog
// (GET /api/workflows)
func (s *Server) ListWorkflows(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"workflows": s.Catalog.Summaries(),
	})
}

// ListInstances returns a summary of every workflow instance
// (GET /api/workflows/instances)
func (s *Server) ListInstances(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"instances": s.Engine.ListInstances(),
	})
}

// StartWorkflow creates an instance and schedules its execution. The response
// returns as soon as the instance id is known; execution proceeds in the
// background.
// (POST /api/workflows/start)
func (s *Server) StartWorkflow(c echo.Context) error {
	var req WorkflowStartRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	instanceID, err := s.Engine.Start(req.WorkflowName, req.Parameters)
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"instance_id": instanceID,
		"message":     fmt.Sprintf("Workflow %s started", req.WorkflowName),
	})
}

// GetInstance returns one instance with full step detail
// (GET /api/workflows/instances/:id)
func (s *Server) GetInstance(c echo.Context) error {
	inst, err := s.Engine.Get(c.Param("id"))
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"instance": inst,
	})
}

// CancelInstance requests cooperative cancellation of one instance
// (POST /api/workflows/instances/:id/cancel)
func (s *Server) CancelInstance(c echo.Context) error {
	if err := s.Engine.Cancel(c.Param("id")); err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Workflow cancelled",
	})
}
