// Package catalog holds the static, read-only table of workflow definitions.
package catalog

import (
	"errors"
	"fmt"

	"disasterhub/backend/pkg/models"
)

var ErrDefinitionNotFound = errors.New("workflow definition not found")

// Catalog is fixed at startup; definitions are never added, removed or
// mutated afterwards, so reads need no locking.
type Catalog struct {
	definitions map[string]models.WorkflowDefinition
	order       []string
}

// New creates a Catalog from the given definitions, preserving order.
func New(definitions []models.WorkflowDefinition) *Catalog {
	c := &Catalog{
		definitions: make(map[string]models.WorkflowDefinition, len(definitions)),
		order:       make([]string, 0, len(definitions)),
	}
	for _, def := range definitions {
		c.definitions[def.Name] = def
		c.order = append(c.order, def.Name)
	}
	return c
}

// NewWithBuiltins creates a Catalog loaded with the built-in assessment
// workflows.
func NewWithBuiltins() *Catalog {
	return New(BuiltinDefinitions())
}

// List returns every definition in catalog order.
func (c *Catalog) List() []models.WorkflowDefinition {
	out := make([]models.WorkflowDefinition, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.definitions[name])
	}
	return out
}

// Summaries returns the listing projection of every definition.
func (c *Catalog) Summaries() []models.DefinitionSummary {
	out := make([]models.DefinitionSummary, 0, len(c.order))
	for _, name := range c.order {
		def := c.definitions[name]
		out = append(out, models.DefinitionSummary{
			Name:        def.Name,
			Description: def.Description,
			Version:     def.Version,
			StepCount:   len(def.Steps),
			Parameters:  def.Parameters,
		})
	}
	return out
}

// Get returns the definition with the given name.
func (c *Catalog) Get(name string) (models.WorkflowDefinition, error) {
	def, ok := c.definitions[name]
	if !ok {
		return models.WorkflowDefinition{}, fmt.Errorf("%w: %s", ErrDefinitionNotFound, name)
	}
	return def, nil
}
