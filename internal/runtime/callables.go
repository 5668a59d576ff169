package runtime

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-sli/internal/ast"
)

// ============================================================================
// Function (closures)
// ============================================================================

// FunctionValue is a user-defined `def`/`lambda` closure: the AST of its
// parameter list and body, plus the Environment it closed over at
// definition time.
type FunctionValue struct {
	Name        string // empty for a lambda
	Params      []ast.Param
	Body        []ast.Statement
	Closure     *Environment
	IsAsync     bool
	IsGenerator bool
	Decorators  []Value // resolved decorator callables, outermost last

	// Owner is the class whose body defined this method, nil for a free
	// function or lambda. super() uses it to find where in the receiver's
	// MRO the currently-executing method lives.
	Owner *ClassValue

	// Doc is the function's docstring, if its body's first statement is a
	// bare string literal expression statement.
	Doc string
}

func (f *FunctionValue) Type() string { return "function" }
func (f *FunctionValue) String() string {
	name := f.Name
	if name == "" {
		name = "<lambda>"
	}
	return fmt.Sprintf("<function %s>", name)
}
func (f *FunctionValue) Repr() string { return f.String() }
func (f *FunctionValue) Truthy() bool { return true }

// Call dispatches back into the evaluator, which owns argument binding,
// generator/coroutine suspension, and exception propagation.
func (f *FunctionValue) Call(ev Evaluator, args []Value, kwargs map[string]Value) (Value, error) {
	return ev.CallFunction(f, args, kwargs)
}

// ============================================================================
// BoundMethod
// ============================================================================

// BoundMethodValue is the result of `instance.method`: a FunctionValue
// paired with the instance it will receive as its first (`self`) argument.
type BoundMethodValue struct {
	Receiver Value
	Func     *FunctionValue
}

func (m *BoundMethodValue) Type() string { return "method" }
func (m *BoundMethodValue) String() string {
	return fmt.Sprintf("<bound method %s of %s>", m.Func.Name, m.Receiver.Repr())
}
func (m *BoundMethodValue) Repr() string { return m.String() }
func (m *BoundMethodValue) Truthy() bool { return true }

func (m *BoundMethodValue) Call(ev Evaluator, args []Value, kwargs map[string]Value) (Value, error) {
	return ev.CallFunction(m, args, kwargs)
}

// ============================================================================
// BuiltinCallable
// ============================================================================

// BuiltinCallableFunc is the Go-native implementation of a built-in
// function or method (len, range, str.upper, ...).
type BuiltinCallableFunc func(ev Evaluator, args []Value, kwargs map[string]Value) (Value, error)

// BuiltinCallableValue wraps a Go function so it can be called like any
// other SL callable.
type BuiltinCallableValue struct {
	Name string
	Fn   BuiltinCallableFunc
}

func NewBuiltin(name string, fn BuiltinCallableFunc) *BuiltinCallableValue {
	return &BuiltinCallableValue{Name: name, Fn: fn}
}

func (b *BuiltinCallableValue) Type() string   { return "builtin_function_or_method" }
func (b *BuiltinCallableValue) String() string { return fmt.Sprintf("<built-in function %s>", b.Name) }
func (b *BuiltinCallableValue) Repr() string   { return b.String() }
func (b *BuiltinCallableValue) Truthy() bool   { return true }

func (b *BuiltinCallableValue) Call(ev Evaluator, args []Value, kwargs map[string]Value) (Value, error) {
	return b.Fn(ev, args, kwargs)
}

// ============================================================================
// Class
// ============================================================================

// ClassValue is a runtime class object. Methods are AST function
// declarations evaluated against the instance's namespace when called, per
// the descriptor protocol implemented in internal/evaluator.
type ClassValue struct {
	Name    string
	Bases   []*ClassValue
	MRO     []*ClassValue // computed by C3 linearization at class-creation time, self first
	Dict    map[string]Value // methods, class variables, nested classes, descriptors
	Doc     string
	Meta    *ClassValue // metaclass; nil means the implicit root metaclass
}

func NewClass(name string, bases []*ClassValue) (*ClassValue, error) {
	c := &ClassValue{Name: name, Bases: bases, Dict: make(map[string]Value)}
	mro, err := c3Linearize(c)
	if err != nil {
		return nil, err
	}
	c.MRO = mro
	return c, nil
}

func (c *ClassValue) Type() string   { return "type" }
func (c *ClassValue) String() string { return fmt.Sprintf("<class '%s'>", c.Name) }
func (c *ClassValue) Repr() string   { return c.String() }
func (c *ClassValue) Truthy() bool   { return true }

// LookupMRO walks the MRO (self first, since MRO[0] is the class itself)
// looking name up in each class's own dict (not recursively through their MRO, since MRO
// already linearizes the whole hierarchy).
func (c *ClassValue) LookupMRO(name string) (Value, *ClassValue, bool) {
	for _, k := range c.MRO {
		if v, ok := k.Dict[name]; ok {
			return v, k, true
		}
	}
	return nil, nil, false
}

// IsSubclassOf reports whether c is other or inherits from it, per the
// `issubclass()` built-in.
func (c *ClassValue) IsSubclassOf(other *ClassValue) bool {
	for _, k := range c.MRO {
		if k == other {
			return true
		}
	}
	return false
}

func (c *ClassValue) Call(ev Evaluator, args []Value, kwargs map[string]Value) (Value, error) {
	return ev.CallFunction(c, args, kwargs)
}

func (c *ClassValue) GetAttr(name string) (Value, bool) {
	if name == "__name__" {
		return NewStr(c.Name), true
	}
	v, _, ok := c.LookupMRO(name)
	return v, ok
}

func (c *ClassValue) SetAttr(name string, val Value) error {
	c.Dict[name] = val
	return nil
}

func (c *ClassValue) DelAttr(name string) error {
	if _, ok := c.Dict[name]; !ok {
		return fmt.Errorf("attribute '%s' not found on class '%s'", name, c.Name)
	}
	delete(c.Dict, name)
	return nil
}

// c3Linearize computes the C3 superclass linearization of cls's bases,
// prefixing cls itself (§4.4's "multiple inheritance resolved via C3, the
// same algorithm CPython uses").
func c3Linearize(cls *ClassValue) ([]*ClassValue, error) {
	if len(cls.Bases) == 0 {
		return []*ClassValue{cls}, nil
	}
	var sequences [][]*ClassValue
	for _, b := range cls.Bases {
		sequences = append(sequences, b.MRO)
	}
	sequences = append(sequences, append([]*ClassValue{}, cls.Bases...))

	var result []*ClassValue
	for {
		sequences = removeEmpty(sequences)
		if len(sequences) == 0 {
			break
		}
		var head *ClassValue
		for _, seq := range sequences {
			candidate := seq[0]
			if !appearsInTail(sequences, candidate) {
				head = candidate
				break
			}
		}
		if head == nil {
			return nil, fmt.Errorf("cannot create a consistent method resolution order (MRO) for bases of class '%s'", cls.Name)
		}
		result = append(result, head)
		for i, seq := range sequences {
			sequences[i] = removeFirstOccurrence(seq, head)
		}
	}
	return append([]*ClassValue{cls}, result...), nil
}

func removeEmpty(seqs [][]*ClassValue) [][]*ClassValue {
	out := seqs[:0]
	for _, s := range seqs {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func appearsInTail(seqs [][]*ClassValue, c *ClassValue) bool {
	for _, seq := range seqs {
		for _, v := range seq[1:] {
			if v == c {
				return true
			}
		}
	}
	return false
}

func removeFirstOccurrence(seq []*ClassValue, c *ClassValue) []*ClassValue {
	out := make([]*ClassValue, 0, len(seq))
	for _, v := range seq {
		if v == c {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ============================================================================
// Instance
// ============================================================================

// InstanceValue is a runtime object belonging to a ClassValue.
type InstanceValue struct {
	Class  *ClassValue
	Fields map[string]Value
}

func NewInstance(class *ClassValue) *InstanceValue {
	return &InstanceValue{Class: class, Fields: make(map[string]Value)}
}

func (o *InstanceValue) Type() string { return o.Class.Name }
func (o *InstanceValue) String() string {
	return fmt.Sprintf("<%s object>", o.Class.Name)
}
func (o *InstanceValue) Repr() string { return o.String() }
func (o *InstanceValue) Truthy() bool { return true }

func (o *InstanceValue) GetAttr(name string) (Value, bool) {
	if name == "__class__" {
		return o.Class, true
	}
	if v, ok := o.Fields[name]; ok {
		return v, true
	}
	v, _, ok := o.Class.LookupMRO(name)
	return v, ok
}

func (o *InstanceValue) SetAttr(name string, val Value) error {
	o.Fields[name] = val
	return nil
}

func (o *InstanceValue) DelAttr(name string) error {
	if _, ok := o.Fields[name]; !ok {
		return fmt.Errorf("'%s' object has no attribute '%s'", o.Class.Name, name)
	}
	delete(o.Fields, name)
	return nil
}

// ============================================================================
// Super
// ============================================================================

// SuperValue is the proxy object produced by super(): attribute lookups on
// it search the receiver's MRO starting immediately after StartAfter,
// letting cooperative multiple inheritance reach the next class in line
// rather than the receiver's own (possibly overriding) method.
type SuperValue struct {
	StartAfter *ClassValue
	Receiver   Value
}

func (s *SuperValue) Type() string { return "super" }
func (s *SuperValue) String() string {
	return fmt.Sprintf("<super: <class '%s'>, <%s object>>", s.StartAfter.Name, s.StartAfter.Name)
}
func (s *SuperValue) Repr() string { return s.String() }
func (s *SuperValue) Truthy() bool { return true }

func (s *SuperValue) receiverClass() *ClassValue {
	switch r := s.Receiver.(type) {
	case *InstanceValue:
		return r.Class
	case *ExceptionValue:
		return r.Class
	}
	return nil
}

// GetAttr walks the receiver's MRO starting after StartAfter, the way
// CPython's super proxy does, so a method found closer to StartAfter (e.g.
// on the receiver's own, overriding class) is skipped.
func (s *SuperValue) GetAttr(name string) (Value, bool) {
	rc := s.receiverClass()
	if rc == nil {
		return nil, false
	}
	idx := -1
	for i, k := range rc.MRO {
		if k == s.StartAfter {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	for _, k := range rc.MRO[idx+1:] {
		if v, ok := k.Dict[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *SuperValue) SetAttr(name string, val Value) error {
	return fmt.Errorf("'super' object has no attribute assignment")
}

func (s *SuperValue) DelAttr(name string) error {
	return fmt.Errorf("'super' object does not support attribute deletion")
}

// ============================================================================
// ExceptionValue
// ============================================================================

// ExceptionValue is both an ordinary Instance of its exception class and
// the Go error itself when SL code raises: the evaluator returns the
// *ExceptionValue up Go's call stack as an ordinary error value.
type ExceptionValue struct {
	*InstanceValue
	Args []Value // positional constructor arguments, exposed as .args
	Msg  string  // str(exception), cached for formatting tracebacks
}

func NewException(class *ClassValue, args []Value) *ExceptionValue {
	inst := NewInstance(class)
	msg := ""
	if len(args) > 0 {
		msg = args[0].String()
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Repr()
	}
	inst.Fields["args"] = NewTuple(args)
	return &ExceptionValue{InstanceValue: inst, Args: args, Msg: msg}
}

func (e *ExceptionValue) Error() string {
	if e.Msg == "" {
		return e.Class.Name
	}
	return fmt.Sprintf("%s: %s", e.Class.Name, e.Msg)
}

func (e *ExceptionValue) String() string { return e.Msg }
func (e *ExceptionValue) Repr() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.Repr()
	}
	return fmt.Sprintf("%s(%s)", e.Class.Name, strings.Join(parts, ", "))
}
