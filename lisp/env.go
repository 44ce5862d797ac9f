package lisp

import "sort"

// LEnv is a lexical environment: a single mutable frame mapping variable
// names to shared mutable cells.  The frame is an ordered association list
// searched front to back; Bind layers new bindings ahead of a snapshot of
// the current list, so a name bound by a call shadows the closure's
// captured binding without copying any cells.
//
// Frames are aliased freely: the evaluator's current call and every closure
// created while the frame was live hold the same *LEnv, and mutation
// through Set or Define is immediately visible to all of them.  Everything
// is single-threaded; there is no locking.
type LEnv struct {
	vars []binding
}

type binding struct {
	name string
	cell *cell
}

// cell is the per-variable indirection making mutation visible across
// frames that share it.
type cell struct {
	v *LVal
}

// Binding is a name/value pair passed to Bind.
type Binding struct {
	Name  string
	Value *LVal
}

// NewEnv returns a new empty environment.
func NewEnv() *LEnv {
	return &LEnv{}
}

// NewGlobalEnv returns an environment with every primitive in the table
// bound to its name.  The table is opaque to the core beyond invocation.
func NewGlobalEnv(primitives map[string]PrimitiveFn) *LEnv {
	names := make([]string, 0, len(primitives))
	for name := range primitives {
		names = append(names, name)
	}
	sort.Strings(names)
	bindings := make([]Binding, len(names))
	for i, name := range names {
		bindings[i] = Binding{Name: name, Value: Primitive(name, primitives[name])}
	}
	return NewEnv().Bind(bindings)
}

func (env *LEnv) lookup(name string) *cell {
	for _, b := range env.vars {
		if b.name == name {
			return b.cell
		}
	}
	return nil
}

// IsBound returns true if name has a binding in env.
func (env *LEnv) IsBound(name string) bool {
	return env.lookup(name) != nil
}

// Get returns the value bound to name.  Looking up an unbound name is an
// error, not a default.
func (env *LEnv) Get(name string) (*LVal, error) {
	c := env.lookup(name)
	if c == nil {
		return nil, &UnboundVarError{Message: "unbound variable", Name: name}
	}
	return c.v, nil
}

// Set replaces the value in name's existing cell.  The mutation is visible
// to every frame sharing the cell.  Setting an unbound name is an error.
// Set returns the assigned value.
func (env *LEnv) Set(name string, v *LVal) (*LVal, error) {
	c := env.lookup(name)
	if c == nil {
		return nil, &UnboundVarError{Message: "setting an unbound variable", Name: name}
	}
	c.v = v
	return v, nil
}

// Define binds name to v, reusing the existing cell when name is already
// bound and prepending a fresh one otherwise.  New bindings are visible to
// every holder of env.  Define always succeeds and returns v.
func (env *LEnv) Define(name string, v *LVal) *LVal {
	if c := env.lookup(name); c != nil {
		c.v = v
		return v
	}
	env.vars = append([]binding{{name: name, cell: &cell{v: v}}}, env.vars...)
	return v
}

// Bind returns a new frame holding the given bindings layered ahead of a
// snapshot of env's current bindings.  Inherited cells are shared, not
// copied: Set through the child mutates the parent's binding and vice
// versa.  Within bindings, an earlier entry shadows a later duplicate
// (the list is searched front to back).
func (env *LEnv) Bind(bindings []Binding) *LEnv {
	vars := make([]binding, 0, len(bindings)+len(env.vars))
	for _, b := range bindings {
		vars = append(vars, binding{name: b.Name, cell: &cell{v: b.Value}})
	}
	vars = append(vars, env.vars...)
	return &LEnv{vars: vars}
}

// Len returns the number of bindings in env, shadowed duplicates included.
func (env *LEnv) Len() int {
	return len(env.vars)
}
