// Package runtime provides the core runtime value system for the SL
// interpreter: the Value interfaces, concrete value types, and the
// Environment symbol table used to resolve names during evaluation.
package runtime

import "fmt"

// Environment is a symbol table for variable storage and scope management.
// It supports nested scopes through the outer environment reference, giving
// LEGB (Local, Enclosing, Global, Built-in) name resolution when chained the
// way the evaluator constructs function-call scopes.
//
// Unlike the reference interpreter this package is adapted from, SL is
// case-sensitive: the store is a plain Go map rather than a
// normalizing case-insensitive map, since "x" and "X" must name distinct
// bindings.
type Environment struct {
	store map[string]Value
	outer *Environment

	// globals is the module-level Environment, returned by Globals() for
	// names declared `global` inside a nested function scope. The
	// module-level Environment points at itself; enclosed ones inherit
	// their outer's pointer.
	globals *Environment

	// declaredGlobal and declaredNonlocal record names this frame's
	// `global`/`nonlocal` statements named, so the evaluator's identifier
	// read/write paths know to skip creating a local binding and instead
	// route to the module scope or the nearest enclosing scope.
	declaredGlobal   map[string]bool
	declaredNonlocal map[string]bool

	// genValue, when set, marks this frame as the top-level frame of a
	// running generator/coroutine body, so a `yield`/`await` anywhere
	// inside it (including nested blocks sharing this frame or enclosed
	// further) can find its way back to the GeneratorValue driving it.
	genValue *GeneratorValue
}

// NewEnvironment creates a new root-level (module/global) environment.
func NewEnvironment() *Environment {
	e := &Environment{store: make(map[string]Value)}
	e.globals = e
	return e
}

// NewEnclosedEnvironment creates a new environment nested inside outer,
// inheriting its globals pointer so `global` statements deep inside nested
// function scopes still resolve to the module namespace.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{
		store:   make(map[string]Value),
		outer:   outer,
		globals: outer.globals,
	}
}

// Get resolves name by walking from this scope outward (LEGB order for the
// L/E/G part; builtins are layered in by the evaluator's root environment).
func (e *Environment) Get(name string) (Value, bool) {
	if val, ok := e.store[name]; ok {
		return val, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// Set rebinds an existing name, searching outward, and errors if the name
// has no binding anywhere in the chain. The evaluator calls it only for
// names declared `nonlocal`; plain assignment uses Define.
func (e *Environment) Set(name string, val Value) error {
	if _, ok := e.store[name]; ok {
		e.store[name] = val
		return nil
	}
	if e.outer != nil {
		return e.outer.Set(name, val)
	}
	return fmt.Errorf("name '%s' is not defined", name)
}

// Define binds name in this scope only, creating or overwriting it.
func (e *Environment) Define(name string, val Value) {
	e.store[name] = val
}

// Has reports whether name is visible from this scope (local or enclosing).
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// GetLocal retrieves a variable from this scope only, without searching
// outer scopes — used to detect shadowing and by `nonlocal` resolution.
func (e *Environment) GetLocal(name string) (Value, bool) {
	v, ok := e.store[name]
	return v, ok
}

// DefineLocal is an alias for Define kept for readability at call sites
// that specifically mean "bind in this frame, not a global".
func (e *Environment) DefineLocal(name string, val Value) { e.Define(name, val) }

// Size returns the number of bindings in this scope only.
func (e *Environment) Size() int { return len(e.store) }

// Range calls f for every binding in this scope only; iteration stops early
// if f returns false.
func (e *Environment) Range(f func(name string, value Value) bool) {
	for k, v := range e.store {
		if !f(k, v) {
			return
		}
	}
}

// Outer returns the enclosing scope, or nil at module scope.
func (e *Environment) Outer() *Environment { return e.outer }

// Delete removes a binding from this scope only, reporting whether it was
// present.
func (e *Environment) Delete(name string) bool {
	if _, ok := e.store[name]; !ok {
		return false
	}
	delete(e.store, name)
	return true
}

// DeclareGlobal records that name was named by a `global` statement in
// this frame.
func (e *Environment) DeclareGlobal(name string) {
	if e.declaredGlobal == nil {
		e.declaredGlobal = make(map[string]bool)
	}
	e.declaredGlobal[name] = true
}

// DeclareNonlocal records that name was named by a `nonlocal` statement in
// this frame.
func (e *Environment) DeclareNonlocal(name string) {
	if e.declaredNonlocal == nil {
		e.declaredNonlocal = make(map[string]bool)
	}
	e.declaredNonlocal[name] = true
}

// IsDeclaredGlobal reports whether name was declared `global` in this
// exact frame (not inherited from an enclosing frame).
func (e *Environment) IsDeclaredGlobal(name string) bool { return e.declaredGlobal[name] }

// IsDeclaredNonlocal reports whether name was declared `nonlocal` in this
// exact frame.
func (e *Environment) IsDeclaredNonlocal(name string) bool { return e.declaredNonlocal[name] }

// SetGenerator marks e as the frame a generator/coroutine body is
// executing in.
func (e *Environment) SetGenerator(g *GeneratorValue) { e.genValue = g }

// CurrentGenerator walks outward from e looking for the frame a
// `yield`/`await` expression should suspend, stopping at the first frame
// marked by SetGenerator (a nested lambda or non-generator function
// cannot see an enclosing generator's suspension point, but this package
// does not enforce that — the evaluator raises SyntaxError for a `yield`
// that finds no marked frame, and parser.bodyContainsYield does not
// descend into nested function/lambda bodies).
func (e *Environment) CurrentGenerator() (*GeneratorValue, bool) {
	if e.genValue != nil {
		return e.genValue, true
	}
	if e.outer != nil {
		return e.outer.CurrentGenerator()
	}
	return nil, false
}

// Globals returns the module-level scope reachable from anywhere in this
// chain, used to implement the `global` statement.
func (e *Environment) Globals() *Environment { return e.globals }

// IsGlobal reports whether this environment is a module-level scope.
func (e *Environment) IsGlobal() bool { return e.globals == e }
