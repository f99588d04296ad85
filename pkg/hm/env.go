package hm

import (
	"maps"
	"slices"
)

// Env is a type environment: a single mutable mapping from names to
// types, scoped with Bind and its restore func.
type Env struct {
	types map[string]Type
}

// NewEnv creates an empty Env
func NewEnv() *Env {
	return &Env{
		types: make(map[string]Type),
	}
}

// TypeOf returns the type bound to a name
func (env *Env) TypeOf(name string) (Type, bool) {
	t, exists := env.types[name]
	return t, exists
}

// Bind binds name to t and returns a func that restores whatever the name
// was bound to before, removing it if it was unbound. Callers defer the
// restore so that the binding is dropped even when checking fails.
func (env *Env) Bind(name string, t Type) (restore func()) {
	prev, had := env.types[name]
	env.types[name] = t
	return func() {
		if had {
			env.types[name] = prev
		} else {
			delete(env.types, name)
		}
	}
}

// Unbind removes name outright, whatever it was bound to.
func (env *Env) Unbind(name string) {
	delete(env.types, name)
}

// Len returns the number of bindings in scope
func (env *Env) Len() int {
	return len(env.types)
}

// Names returns the bound names in sorted order
func (env *Env) Names() []string {
	return slices.Sorted(maps.Keys(env.types))
}

// Clone creates a copy of the environment
func (env *Env) Clone() *Env {
	return &Env{types: maps.Clone(env.types)}
}
