package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"disasterhub/backend/internal/catalog"
	"disasterhub/backend/internal/engine"
	"disasterhub/backend/internal/registry"
	"disasterhub/backend/pkg/models"
)

type Server struct {
	mcpServer *server.MCPServer
	registry  *registry.Registry
	catalog   *catalog.Catalog
	engine    *engine.Engine
}

func NewServer(reg *registry.Registry, cat *catalog.Catalog, eng *engine.Engine) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Disaster Operations Hub",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		registry: reg,
		catalog:  cat,
		engine:   eng,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"ping",
			mcp.WithDescription("Check that the hub is alive"),
		),
		s.handlePing,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_all_services_status",
			mcp.WithDescription("Get the status of every capability service"),
		),
		s.handleGetAllServicesStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"start_service",
			mcp.WithDescription("Start a capability service"),
			mcp.WithString("service_name", mcp.Required(), mcp.Description("The name of the service")),
		),
		s.serviceActionHandler(models.ServiceActionStart),
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"stop_service",
			mcp.WithDescription("Stop a capability service"),
			mcp.WithString("service_name", mcp.Required(), mcp.Description("The name of the service")),
		),
		s.serviceActionHandler(models.ServiceActionStop),
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"restart_service",
			mcp.WithDescription("Restart a capability service"),
			mcp.WithString("service_name", mcp.Required(), mcp.Description("The name of the service")),
		),
		s.serviceActionHandler(models.ServiceActionRestart),
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"start_all_services",
			mcp.WithDescription("Start every capability service"),
		),
		s.fleetActionHandler(models.ServiceActionStart),
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"stop_all_services",
			mcp.WithDescription("Stop every capability service"),
		),
		s.fleetActionHandler(models.ServiceActionStop),
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List the available workflow definitions"),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"start_workflow",
			mcp.WithDescription("Start a workflow instance"),
			mcp.WithString("workflow_name", mcp.Required(), mcp.Description("The name of the workflow definition")),
			mcp.WithObject("parameters", mcp.Description("Workflow run parameters")),
		),
		s.handleStartWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_workflow_status",
			mcp.WithDescription("Get the status of a workflow instance"),
			mcp.WithString("instance_id", mcp.Required(), mcp.Description("The workflow instance ID")),
		),
		s.handleGetWorkflowStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"cancel_workflow",
			mcp.WithDescription("Cancel a pending or running workflow instance"),
			mcp.WithString("instance_id", mcp.Required(), mcp.Description("The workflow instance ID")),
		),
		s.handleCancelWorkflow,
	)
}

func (s *Server) handlePing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetAllServicesStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, _ := json.Marshal(s.registry.List())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) serviceActionHandler(action models.ServiceAction) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("Invalid arguments type"), nil
		}

		name, ok := args["service_name"].(string)
		if !ok || name == "" {
			return mcp.NewToolResultError("Missing required parameter: service_name"), nil
		}

		if err := s.registry.SetAction(name, action); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to %s %s: %v", action, name, err)), nil
		}

		svc, err := s.registry.Get(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to read %s: %v", name, err)), nil
		}

		jsonBytes, _ := json.Marshal(svc)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}
}

func (s *Server) fleetActionHandler(action models.ServiceAction) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		failures := s.registry.SetAllAction(action)
		if len(failures) > 0 {
			return mcp.NewToolResultError(fmt.Sprintf("Action %s failed for %d services", action, len(failures))), nil
		}

		jsonBytes, _ := json.Marshal(s.registry.List())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, _ := json.Marshal(s.catalog.Summaries())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleStartWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	name, ok := args["workflow_name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_name"), nil
	}

	parameters, _ := args["parameters"].(map[string]interface{})

	instanceID, err := s.engine.Start(name, parameters)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start workflow: %v", err)), nil
	}

	result := map[string]any{
		"success":     true,
		"instance_id": instanceID,
	}
	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetWorkflowStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	instanceID, ok := args["instance_id"].(string)
	if !ok || instanceID == "" {
		return mcp.NewToolResultError("Missing required parameter: instance_id"), nil
	}

	inst, err := s.engine.Get(instanceID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(inst)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleCancelWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	instanceID, ok := args["instance_id"].(string)
	if !ok || instanceID == "" {
		return mcp.NewToolResultError("Missing required parameter: instance_id"), nil
	}

	if err := s.engine.Cancel(instanceID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to cancel workflow: %v", err)), nil
	}

	return mcp.NewToolResultText("Workflow cancelled"), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
