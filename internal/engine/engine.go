// Package engine creates and drives workflow instances from catalog
// definitions. Each instance runs on its own goroutine, paced by the injected
// Clock; all instance mutations happen under one engine-wide mutex so readers
// never observe partial state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"disasterhub/backend/internal/catalog"
	"disasterhub/backend/internal/clock"
	"disasterhub/backend/pkg/models"
)

// Standard error definitions
var (
	ErrInstanceNotFound = errors.New("workflow instance not found")
	ErrInvalidState     = errors.New("workflow instance is in a terminal state")
)

// Engine owns the in-memory instance table. Instances are retained for the
// lifetime of the process; nothing is ever evicted.
type Engine struct {
	catalog      *catalog.Catalog
	clock        clock.Clock
	startDelay   time.Duration
	stepDuration time.Duration

	mu        sync.RWMutex
	instances map[string]*models.WorkflowInstance
	order     []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an Engine. startDelay decouples the caller's response from
// execution start; stepDuration is the simulated duration of every step.
func New(cat *catalog.Catalog, clk clock.Clock, startDelay, stepDuration time.Duration) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		catalog:      cat,
		clock:        clk,
		startDelay:   startDelay,
		stepDuration: stepDuration,
		instances:    make(map[string]*models.WorkflowInstance),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Stop signals every runner to abandon its instance and waits for them. Used
// on shutdown; abandoned instances simply keep whatever status they had.
func (e *Engine) Stop() {
	e.cancel()
	e.wg.Wait()
}

// Start instantiates the named workflow and schedules asynchronous execution.
// The returned instance id is available immediately; the caller never blocks
// on workflow completion.
func (e *Engine) Start(workflowName string, parameters map[string]any) (string, error) {
	def, err := e.catalog.Get(workflowName)
	if err != nil {
		return "", err
	}

	now := e.clock.Now()
	inst := &models.WorkflowInstance{
		ID:           newInstanceID(now),
		WorkflowName: def.Name,
		Parameters:   parameters,
		Steps:        make([]models.WorkflowStep, 0, len(def.Steps)),
		Status:       models.WorkflowStatusPending,
		CreatedAt:    now,
	}
	for _, tmpl := range def.Steps {
		inst.Steps = append(inst.Steps, models.WorkflowStep{
			ID:          tmpl.ID,
			Name:        tmpl.Name,
			Description: tmpl.Description,
			Status:      models.StepStatusPending,
		})
	}

	e.mu.Lock()
	e.instances[inst.ID] = inst
	e.order = append(e.order, inst.ID)
	e.mu.Unlock()

	log.Info().
		Str("instanceID", inst.ID).
		Str("workflow", workflowName).
		Int("steps", len(inst.Steps)).
		Msg("Engine: workflow instance created")

	e.wg.Add(1)
	go e.run(inst.ID)

	return inst.ID, nil
}

// ListInstances returns a summary of every instance in creation order.
func (e *Engine) ListInstances() []models.InstanceSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.InstanceSummary, 0, len(e.order))
	for _, id := range e.order {
		inst := e.instances[id]
		out = append(out, models.InstanceSummary{
			ID:                        inst.ID,
			WorkflowName:              inst.WorkflowName,
			Status:                    inst.Status,
			CurrentStep:               inst.CurrentStep,
			StartTime:                 inst.StartTime,
			EndTime:                   inst.EndTime,
			TotalExecutionTimeSeconds: inst.TotalExecutionTimeSeconds,
			CreatedAt:                 inst.CreatedAt,
		})
	}
	return out
}

// Get returns a full snapshot of one instance, step detail included.
func (e *Engine) Get(instanceID string) (models.WorkflowInstance, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	inst, ok := e.instances[instanceID]
	if !ok {
		return models.WorkflowInstance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}

	snapshot := *inst
	snapshot.Steps = make([]models.WorkflowStep, len(inst.Steps))
	copy(snapshot.Steps, inst.Steps)
	return snapshot, nil
}

// Cancel marks a pending or running instance cancelled. Cancellation is
// cooperative: the runner observes the new status at its next step boundary
// and stops advancing. Completed, failed and already-cancelled instances
// reject cancellation.
func (e *Engine) Cancel(instanceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[instanceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}
	if inst.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrInvalidState, instanceID, inst.Status)
	}

	now := e.clock.Now()
	inst.Status = models.WorkflowStatusCancelled
	inst.EndTime = &now
	inst.CurrentStep = nil

	log.Info().Str("instanceID", instanceID).Msg("Engine: workflow instance cancelled")
	return nil
}

// run drives one instance to completion. Every mutation re-checks the
// instance status under the lock first, so a cancellation between boundaries
// is never overwritten by a stale continuation.
func (e *Engine) run(instanceID string) {
	defer e.wg.Done()

	select {
	case <-e.clock.After(e.startDelay):
	case <-e.ctx.Done():
		return
	}

	stepCount, ok := e.activate(instanceID)
	if !ok {
		return
	}

	for i := 0; i < stepCount; i++ {
		if !e.beginStep(instanceID, i) {
			return
		}

		select {
		case <-e.clock.After(e.stepDuration):
		case <-e.ctx.Done():
			return
		}

		if !e.completeStep(instanceID, i) {
			return
		}
	}

	e.finish(instanceID)
}

// activate moves a pending instance to running. It reports false when the
// instance was cancelled before execution began.
func (e *Engine) activate(instanceID string) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[instanceID]
	if !ok || inst.Status != models.WorkflowStatusPending {
		return 0, false
	}

	now := e.clock.Now()
	inst.Status = models.WorkflowStatusRunning
	inst.StartTime = &now
	if len(inst.Steps) > 0 {
		inst.CurrentStep = &inst.Steps[0].ID
	}

	log.Info().
		Str("instanceID", instanceID).
		Str("workflow", inst.WorkflowName).
		Msg("Engine: workflow execution started")
	return len(inst.Steps), true
}

// beginStep marks step i running and advances the current-step marker.
func (e *Engine) beginStep(instanceID string, i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[instanceID]
	if !ok || inst.Status != models.WorkflowStatusRunning {
		return false
	}

	step := &inst.Steps[i]
	step.Status = models.StepStatusRunning
	inst.CurrentStep = &step.ID

	log.Debug().
		Str("instanceID", instanceID).
		Str("step", step.ID).
		Str("name", step.Name).
		Msg("Engine: step started")
	return true
}

// completeStep records the synthetic result for step i. If the instance was
// cancelled while the step was in flight, the step is marked cancelled and
// the run is abandoned without touching the instance status or end time.
func (e *Engine) completeStep(instanceID string, i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[instanceID]
	if !ok {
		return false
	}

	step := &inst.Steps[i]
	if inst.Status != models.WorkflowStatusRunning {
		if step.Status == models.StepStatusRunning {
			step.Status = models.StepStatusCancelled
		}
		inst.CurrentStep = nil
		return false
	}

	seconds := e.stepDuration.Seconds()
	step.Status = models.StepStatusCompleted
	step.Result = syntheticStepResult(inst.WorkflowName, step.Name, inst.Parameters, e.clock.Now())
	step.ExecutionTimeSeconds = &seconds

	log.Debug().
		Str("instanceID", instanceID).
		Str("step", step.ID).
		Msg("Engine: step completed")
	return true
}

// finish moves a running instance to completed and stamps the timings.
func (e *Engine) finish(instanceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[instanceID]
	if !ok || inst.Status != models.WorkflowStatusRunning {
		return
	}

	now := e.clock.Now()
	inst.Status = models.WorkflowStatusCompleted
	inst.EndTime = &now
	inst.CurrentStep = nil
	if inst.StartTime != nil {
		total := now.Sub(*inst.StartTime).Seconds()
		inst.TotalExecutionTimeSeconds = &total
	}

	log.Info().
		Str("instanceID", instanceID).
		Str("workflow", inst.WorkflowName).
		Msg("Engine: workflow execution completed")
}

// newInstanceID builds a time-based id with a random suffix so concurrent
// creations cannot collide.
func newInstanceID(now time.Time) string {
	return fmt.Sprintf("wf_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}
