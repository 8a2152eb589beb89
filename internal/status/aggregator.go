// Package status derives the dashboard summary from the registry and the
// engine. Counts are recomputed on every call; nothing is cached.
package status

import (
	"sync/atomic"
	"time"

	"disasterhub/backend/pkg/models"
)

// ServiceLister provides the registry snapshot.
type ServiceLister interface {
	List() []models.CapabilityService
}

// InstanceLister provides the engine's instance summaries.
type InstanceLister interface {
	ListInstances() []models.InstanceSummary
}

// Aggregator tallies services and workflow instances by status. It also
// tracks the number of in-flight control-plane requests, exposed as the
// active connection count.
type Aggregator struct {
	services    ServiceLister
	instances   InstanceLister
	connections atomic.Int64
}

// New creates an Aggregator over the given sources.
func New(services ServiceLister, instances InstanceLister) *Aggregator {
	return &Aggregator{services: services, instances: instances}
}

// ConnectionOpened records one in-flight request.
func (a *Aggregator) ConnectionOpened() { a.connections.Add(1) }

// ConnectionClosed records the end of an in-flight request.
func (a *Aggregator) ConnectionClosed() { a.connections.Add(-1) }

// Summarize recomputes the summary from current state.
func (a *Aggregator) Summarize() models.StatusSummary {
	summary := models.StatusSummary{
		Timestamp:         time.Now(),
		ActiveConnections: int(a.connections.Load()),
	}

	for _, svc := range a.services.List() {
		summary.Services.Total++
		switch svc.Status {
		case models.ServiceStatusRunning:
			summary.Services.Running++
		case models.ServiceStatusStarting:
			summary.Services.Starting++
		case models.ServiceStatusStopped:
			summary.Services.Stopped++
		case models.ServiceStatusStopping:
			summary.Services.Stopping++
		case models.ServiceStatusError:
			summary.Services.Error++
		}
	}

	for _, inst := range a.instances.ListInstances() {
		summary.Workflows.Total++
		switch inst.Status {
		case models.WorkflowStatusPending:
			summary.Workflows.Pending++
		case models.WorkflowStatusRunning:
			summary.Workflows.Running++
		case models.WorkflowStatusCompleted:
			summary.Workflows.Completed++
		case models.WorkflowStatusFailed:
			summary.Workflows.Failed++
		case models.WorkflowStatusCancelled:
			summary.Workflows.Cancelled++
		}
	}

	return summary
}
