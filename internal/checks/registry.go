// Package checks provides the named compliance checks and their registry.
package checks

import (
	"fmt"
	"sort"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.CheckRegistry = (*Registry)(nil)

// BuilderFunc creates a Check from its configured definition.
type BuilderFunc func(def domain.CheckDefinition) (driven.Check, error)

// Registry maps check names to implementations.
type Registry struct {
	checks map[string]driven.Check
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		checks: make(map[string]driven.Check),
	}
}

// Register adds a check under its own name, replacing any previous one.
func (r *Registry) Register(check driven.Check) {
	r.checks[check.Name()] = check
}

// Build constructs a check from def with builder and registers it.
func (r *Registry) Build(def domain.CheckDefinition, builder BuilderFunc) error {
	check, err := builder(def)
	if err != nil {
		return fmt.Errorf("check %s: %w", def.Name, err)
	}
	r.Register(check)
	return nil
}

// Get returns the check registered under name.
func (r *Registry) Get(name string) (driven.Check, error) {
	check, ok := r.checks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCheck, name)
	}
	return check, nil
}

// Has returns true if a check with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.checks[name]
	return ok
}

// Names returns all registered check names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
