package runtime

import "sort"

// Environment is one scope: a binding table plus a pointer to the scope it
// was created in. Lookup walks outward; definition always lands in the
// receiving scope, shadowing any outer binding of the same name. Closures
// keep a reference to their defining Environment, which therefore outlives
// the block that created it.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a scope chained to parent; parent may be nil for
// a root scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{values: make(map[string]Value), parent: parent}
}

// Define binds name in this scope, inserting or rebinding.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get resolves name through the scope chain.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Keys returns every name visible from this scope, each once, sorted.
func (e *Environment) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for env := e; env != nil; env = env.parent {
		for name := range env.values {
			if !seen[name] {
				seen[name] = true
				keys = append(keys, name)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
