// Package models defines the domain models for the disaster operations service
package models

import (
	"time"
)

// ServiceStatus represents the operational status of a capability service
type ServiceStatus string

const (
	ServiceStatusStopped  ServiceStatus = "stopped"
	ServiceStatusStarting ServiceStatus = "starting"
	ServiceStatusRunning  ServiceStatus = "running"
	ServiceStatusStopping ServiceStatus = "stopping"
	ServiceStatusError    ServiceStatus = "error"
)

// ServiceAction is a lifecycle control verb applied to a capability service
type ServiceAction string

const (
	ServiceActionStart   ServiceAction = "start"
	ServiceActionStop    ServiceAction = "stop"
	ServiceActionRestart ServiceAction = "restart"
)

// CapabilityService represents one named external analysis model or tool
// whose operational status is tracked by the registry. The process handle is
// a logical token, not an OS process reference.
type CapabilityService struct {
	Name                 string        `json:"name"`
	DisplayName          string        `json:"display_name"`
	ExecutionEnvironment string        `json:"execution_environment"`
	FilesystemPath       string        `json:"filesystem_path"`
	Port                 int           `json:"port"`
	Status               ServiceStatus `json:"status"`
	ProcessHandle        *string       `json:"process_handle,omitempty"`
	ErrorMessage         *string       `json:"error_message,omitempty"`
}

// ServiceCounts tallies registry entries by status
type ServiceCounts struct {
	Total    int `json:"total"`
	Running  int `json:"running"`
	Starting int `json:"starting"`
	Stopped  int `json:"stopped"`
	Stopping int `json:"stopping"`
	Error    int `json:"error"`
}

// WorkflowCounts tallies workflow instances by status
type WorkflowCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// StatusSummary is the aggregated dashboard view of the whole system
type StatusSummary struct {
	Timestamp         time.Time      `json:"timestamp"`
	Services          ServiceCounts  `json:"service_stats"`
	Workflows         WorkflowCounts `json:"workflow_stats"`
	ActiveConnections int            `json:"active_connections"`
}

// HealthStatus represents service health
type HealthStatus struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// ProblemDetails represents RFC 7807 Problem Details
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}
