package models

import (
	"time"
)

// WorkflowStatus is the lifecycle status of a workflow instance
type WorkflowStatus string

const (
	WorkflowStatusPending   WorkflowStatus = "pending"
	WorkflowStatusRunning   WorkflowStatus = "running"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusFailed    WorkflowStatus = "failed"
	WorkflowStatusCancelled WorkflowStatus = "cancelled"
)

// StepStatus is the lifecycle status of a single step execution
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusCancelled StepStatus = "cancelled"
)

// Terminal reports whether no further instance transition is possible.
// Cancelled is terminal too, but it is reached only through Cancel; Completed
// and Failed additionally reject cancellation.
func (s WorkflowStatus) Terminal() bool {
	return s == WorkflowStatusCompleted || s == WorkflowStatusFailed || s == WorkflowStatusCancelled
}

// StepTemplate describes one step of a workflow definition
type StepTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ParameterSpec describes a single named workflow parameter
type ParameterSpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ParameterSchema is the parameter contract of a workflow definition
type ParameterSchema struct {
	Properties map[string]ParameterSpec `json:"properties"`
	Required   []string                 `json:"required"`
}

// WorkflowDefinition is an immutable, named recipe of ordered steps.
// Definitions are loaded once at startup and never mutated.
type WorkflowDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Version     string          `json:"version"`
	Steps       []StepTemplate  `json:"steps"`
	Parameters  ParameterSchema `json:"parameters_schema"`
}

// DefinitionSummary is the catalog listing projection of a definition
type DefinitionSummary struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Version     string          `json:"version"`
	StepCount   int             `json:"step_count"`
	Parameters  ParameterSchema `json:"parameters_schema"`
}

// WorkflowStep is one execution of a step template, scoped to an instance
type WorkflowStep struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description"`
	Status               StepStatus     `json:"status"`
	Result               map[string]any `json:"result,omitempty"`
	Error                *string        `json:"error,omitempty"`
	ExecutionTimeSeconds *float64       `json:"execution_time_seconds,omitempty"`
}

// WorkflowInstance is one stateful run of a workflow definition
type WorkflowInstance struct {
	ID                        string         `json:"id"`
	WorkflowName              string         `json:"workflow_name"`
	Parameters                map[string]any `json:"parameters"`
	Steps                     []WorkflowStep `json:"steps"`
	Status                    WorkflowStatus `json:"status"`
	CurrentStep               *string        `json:"current_step,omitempty"`
	StartTime                 *time.Time     `json:"start_time,omitempty"`
	EndTime                   *time.Time     `json:"end_time,omitempty"`
	TotalExecutionTimeSeconds *float64       `json:"total_execution_time_seconds,omitempty"`
	CreatedAt                 time.Time      `json:"created_at"`
}

// InstanceSummary omits step detail for instance listings
type InstanceSummary struct {
	ID                        string         `json:"id"`
	WorkflowName              string         `json:"workflow_name"`
	Status                    WorkflowStatus `json:"status"`
	CurrentStep               *string        `json:"current_step,omitempty"`
	StartTime                 *time.Time     `json:"start_time,omitempty"`
	EndTime                   *time.Time     `json:"end_time,omitempty"`
	TotalExecutionTimeSeconds *float64       `json:"total_execution_time_seconds,omitempty"`
	CreatedAt                 time.Time      `json:"created_at"`
}
