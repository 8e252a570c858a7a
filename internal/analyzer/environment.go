package analyzer

import (
	"github.com/cgenlang/cgen/internal/typesystem"
)

// Environment is the ordered variable→type mapping threaded through the
// inference of a single function. Insertion order is preserved so that
// declarations are emitted deterministically. Environments are never
// shared across functions; branches work on copies.
type Environment struct {
	order []string
	types map[string]typesystem.Type
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{types: make(map[string]typesystem.Type)}
}

// Set binds a variable, recording declaration order on first insert.
func (e *Environment) Set(name string, t typesystem.Type) {
	if _, exists := e.types[name]; !exists {
		e.order = append(e.order, name)
	}
	e.types[name] = t
}

// Get returns the current type of a variable.
func (e *Environment) Get(name string) (typesystem.Type, bool) {
	t, ok := e.types[name]
	return t, ok
}

// Copy returns an independent copy, used on branch entry.
func (e *Environment) Copy() *Environment {
	c := &Environment{
		order: make([]string, len(e.order)),
		types: make(map[string]typesystem.Type, len(e.types)),
	}
	copy(c.order, e.order)
	for k, v := range e.types {
		c.types[k] = v
	}
	return c
}

// Names returns variable names in declaration order.
func (e *Environment) Names() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// join merges two branch-exit environments into the receiver by unifying
// over the union of both variable sets. A variable absent in one branch
// unifies with Unknown, i.e. is treated as untouched there.
func (e *Environment) join(a, b *Environment) {
	for _, name := range unionNames(a, b) {
		ta, okA := a.Get(name)
		if !okA {
			ta = typesystem.Unknown{}
		}
		tb, okB := b.Get(name)
		if !okB {
			tb = typesystem.Unknown{}
		}
		e.Set(name, typesystem.Unify(ta, tb))
	}
}

// unionNames is the ordered union: a's declaration order first, then b's
// names not present in a.
func unionNames(a, b *Environment) []string {
	names := a.Names()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range b.Names() {
		if !seen[n] {
			names = append(names, n)
		}
	}
	return names
}
