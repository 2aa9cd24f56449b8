package endpoint

import (
	"fmt"
	"slices"

	"github.com/DrewBradfordXYZ/alertcenter-go/core"
)

// Registry is a read-only catalog of templates keyed by name.
type Registry struct {
	byName map[string]*Template
	order  []string
}

// NewRegistry builds a registry. Duplicate names are rejected.
func NewRegistry(templates ...*Template) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if t == nil {
			return nil, fmt.Errorf("registry: nil template")
		}
		if _, ok := r.byName[t.name]; ok {
			return nil, fmt.Errorf("registry: duplicate operation %q", t.name)
		}
		r.byName[t.name] = t
		r.order = append(r.order, t.name)
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(templates ...*Template) *Registry {
	r, err := NewRegistry(templates...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the template registered under name.
func (r *Registry) Lookup(name string) (*Template, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, &core.OperationNotFoundError{Operation: name}
	}
	return t, nil
}

// Names returns operation names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.order)
}
