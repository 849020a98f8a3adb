// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"fmt"
	"sort"
)

// Registry holds one Controller per configured scenario.
// The set of scenarios is fixed at construction; the map is never written afterwards.
type Registry struct {
	controllers map[string]*Controller
	ids         []string
}

// NewRegistry builds a controller for every id. Options apply to each controller.
func NewRegistry(ids []string, opts ...Option) (*Registry, error) {
	r := &Registry{controllers: make(map[string]*Controller, len(ids))}
	for _, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("scenario id must not be empty")
		}
		if _, exists := r.controllers[id]; exists {
			return nil, fmt.Errorf("duplicate scenario id %q", id)
		}
		copts := append([]Option{WithName(id)}, opts...)
		r.controllers[id] = NewController(copts...)
		r.ids = append(r.ids, id)
	}
	sort.Strings(r.ids)
	return r, nil
}

// Get returns the controller registered under id.
func (r *Registry) Get(id string) (*Controller, error) {
	c, ok := r.controllers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrScenarioNotFound, id)
	}
	return c, nil
}

// IDs returns the registered scenario ids in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}
