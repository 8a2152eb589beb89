package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"disasterhub/backend/pkg/models"
)

type stubServices []models.CapabilityService

func (s stubServices) List() []models.CapabilityService { return s }

type stubInstances []models.InstanceSummary

func (s stubInstances) ListInstances() []models.InstanceSummary { return s }

func TestSummarizeCountsByStatus(t *testing.T) {
	services := stubServices{
		{Name: "nfdrs4", Status: models.ServiceStatusRunning},
		{Name: "lisflood", Status: models.ServiceStatusRunning},
		{Name: "climada", Status: models.ServiceStatusStopped},
		{Name: "aurora", Status: models.ServiceStatusError},
	}
	instances := stubInstances{
		{ID: "wf_1", Status: models.WorkflowStatusRunning},
		{ID: "wf_2", Status: models.WorkflowStatusCompleted},
		{ID: "wf_3", Status: models.WorkflowStatusCompleted},
		{ID: "wf_4", Status: models.WorkflowStatusCancelled},
		{ID: "wf_5", Status: models.WorkflowStatusPending},
	}

	agg := New(services, instances)
	summary := agg.Summarize()

	assert.Equal(t, models.ServiceCounts{Total: 4, Running: 2, Stopped: 1, Error: 1}, summary.Services)
	assert.Equal(t, models.WorkflowCounts{Total: 5, Pending: 1, Running: 1, Completed: 2, Cancelled: 1}, summary.Workflows)
	assert.Equal(t, 0, summary.ActiveConnections)
	assert.False(t, summary.Timestamp.IsZero())
}

func TestSummarizeEmptySources(t *testing.T) {
	agg := New(stubServices{}, stubInstances{})
	summary := agg.Summarize()

	assert.Zero(t, summary.Services.Total)
	assert.Zero(t, summary.Workflows.Total)
}

func TestConnectionCounter(t *testing.T) {
	agg := New(stubServices{}, stubInstances{})

	agg.ConnectionOpened()
	agg.ConnectionOpened()
	assert.Equal(t, 2, agg.Summarize().ActiveConnections)

	agg.ConnectionClosed()
	assert.Equal(t, 1, agg.Summarize().ActiveConnections)
}
