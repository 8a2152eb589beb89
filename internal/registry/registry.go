// Package registry tracks the operational state of the fixed fleet of
// capability services. Status is a logical flag: no operating-system process
// is ever started or stopped here.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"disasterhub/backend/pkg/models"
)

// Standard error definitions
var (
	ErrServiceNotFound   = errors.New("service not found")
	ErrUnsupportedAction = errors.New("unsupported service action")
)

// Registry is an in-memory table of capability services. All mutations are
// guarded by a single mutex so every transition appears atomic to readers.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*models.CapabilityService
	order    []string
}

// New creates a Registry pre-registered with the given services. Entries are
// listed in registration order for the lifetime of the process.
func New(services []models.CapabilityService) *Registry {
	r := &Registry{
		services: make(map[string]*models.CapabilityService, len(services)),
		order:    make([]string, 0, len(services)),
	}
	for i := range services {
		svc := services[i]
		if svc.Status == "" {
			svc.Status = models.ServiceStatusStopped
		}
		r.services[svc.Name] = &svc
		r.order = append(r.order, svc.Name)
	}
	log.Info().Int("services", len(r.order)).Msg("Registry: capability services registered")
	return r
}

// NewWithDefaultFleet creates a Registry seeded with the built-in model fleet.
func NewWithDefaultFleet() *Registry {
	return New(DefaultFleet())
}

// List returns a snapshot of every registered service in registration order.
func (r *Registry) List() []models.CapabilityService {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CapabilityService, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.services[name])
	}
	return out
}

// Get returns a snapshot of one service.
func (r *Registry) Get(name string) (models.CapabilityService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[name]
	if !ok {
		return models.CapabilityService{}, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	return *svc, nil
}

// SetAction applies a lifecycle transition to one service.
func (r *Registry) SetAction(name string, action models.ServiceAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}

	switch action {
	case models.ServiceActionStart:
		r.start(svc)
	case models.ServiceActionStop:
		r.stop(svc)
	case models.ServiceActionRestart:
		r.stop(svc)
		r.start(svc)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedAction, action)
	}

	log.Info().
		Str("service", name).
		Str("action", string(action)).
		Str("status", string(svc.Status)).
		Msg("Registry: service action applied")
	return nil
}

// SetAllAction applies start or stop to every registered service. Each
// service is transitioned independently; failures are collected per service
// rather than aborting the sweep.
func (r *Registry) SetAllAction(action models.ServiceAction) map[string]error {
	if action != models.ServiceActionStart && action != models.ServiceActionStop {
		failures := make(map[string]error, len(r.order))
		r.mu.RLock()
		for _, name := range r.order {
			failures[name] = fmt.Errorf("%w: %q", ErrUnsupportedAction, action)
		}
		r.mu.RUnlock()
		return failures
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Logical transitions cannot fail, so this stays empty today; it is the
	// aggregation seam for when start/stop touch real processes.
	failures := make(map[string]error)
	for _, name := range r.order {
		svc := r.services[name]
		switch action {
		case models.ServiceActionStart:
			r.start(svc)
		case models.ServiceActionStop:
			r.stop(svc)
		}
	}

	log.Info().
		Str("action", string(action)).
		Int("services", len(r.order)).
		Int("failures", len(failures)).
		Msg("Registry: fleet-wide action applied")
	return failures
}

// start assigns a fresh logical handle. Callers hold the write lock.
func (r *Registry) start(svc *models.CapabilityService) {
	handle := uuid.New().String()
	svc.Status = models.ServiceStatusRunning
	svc.ProcessHandle = &handle
	svc.ErrorMessage = nil
}

// stop clears the handle and any previous error. Callers hold the write lock.
func (r *Registry) stop(svc *models.CapabilityService) {
	svc.Status = models.ServiceStatusStopped
	svc.ProcessHandle = nil
	svc.ErrorMessage = nil
}
