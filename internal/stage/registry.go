package stage

import (
	"fmt"
	"strings"
)

// Stage is a named, ordered group of work units.
type Stage struct {
	Name  string   `json:"name" yaml:"name"`
	Units []string `json:"units" yaml:"units"`
}

// Registry maps stage names to their units and holds the canonical
// full-pipeline order. It is immutable once built.
type Registry struct {
	stages []Stage
	index  map[string]int
	order  []string
}

// NewRegistry validates stages and order and returns a registry.
// Every name in order must be a declared stage.
func NewRegistry(stages []Stage, order []string) (*Registry, error) {
	r := &Registry{
		stages: make([]Stage, 0, len(stages)),
		index:  make(map[string]int, len(stages)),
	}
	for _, s := range stages {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, ErrEmptyStageName
		}
		if _, dup := r.index[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStage, name)
		}
		for i, u := range s.Units {
			if strings.TrimSpace(u) == "" {
				return nil, fmt.Errorf("%w: stage %s unit %d", ErrEmptyUnit, name, i)
			}
		}
		r.index[name] = len(r.stages)
		r.stages = append(r.stages, Stage{Name: name, Units: append([]string(nil), s.Units...)})
	}
	if len(order) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, name := range order {
		if _, ok := r.index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrOrderUnknownStage, name)
		}
	}
	r.order = append([]string(nil), order...)
	return r, nil
}

// Names returns stage names in declared order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stages))
	for _, s := range r.stages {
		names = append(names, s.Name)
	}
	return names
}

// Stages returns a copy of all stages in declared order.
func (r *Registry) Stages() []Stage {
	out := make([]Stage, 0, len(r.stages))
	for _, s := range r.stages {
		out = append(out, Stage{Name: s.Name, Units: append([]string(nil), s.Units...)})
	}
	return out
}

// Lookup returns the named stage.
func (r *Registry) Lookup(name string) (Stage, bool) {
	i, ok := r.index[name]
	if !ok {
		return Stage{}, false
	}
	s := r.stages[i]
	return Stage{Name: s.Name, Units: append([]string(nil), s.Units...)}, true
}

// Order returns the canonical full-pipeline order.
func (r *Registry) Order() []string {
	return append([]string(nil), r.order...)
}
