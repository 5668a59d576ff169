// Package evaluator tree-walks an SL *ast.Module and executes it against
// the runtime value model in internal/runtime.
package evaluator

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/runtime"
)

// DefaultMaxRecursionDepth bounds nested function calls before the
// evaluator raises RecursionError, mirroring CPython's default stack
// protection rather than letting the Go goroutine stack overflow.
const DefaultMaxRecursionDepth = 1000

// SignalKind distinguishes the non-local control-flow outcomes a statement
// can produce, alongside the plain (nil-signal, nil-error) "ran to
// completion" case.
type SignalKind int

const (
	SigNone SignalKind = iota
	SigBreak
	SigContinue
	SigReturn
)

// Signal carries a pending break/continue/return up through nested
// execBlock/execStmt calls until the construct that handles it (a loop for
// Break/Continue, a function call for Return) consumes it.
type Signal struct {
	Kind  SignalKind
	Value runtime.Value // populated for SigReturn; nil otherwise
}

// Evaluator holds the interpreter's global state: the module namespace, the
// exception class hierarchy, and call-stack depth tracking.
type Evaluator struct {
	Globals    *runtime.Environment
	Builtins   *runtime.Environment
	Exceptions *ExceptionHierarchy

	// Stdout is where the `print` built-in writes; defaults to os.Stdout
	// and is overridden by pkg/sli's WithStdout option.
	Stdout io.Writer

	// Trace, when non-nil, receives one line per function call entry/exit,
	// enabled by pkg/sli's WithTracing for debugging embedder-side hangs.
	Trace io.Writer

	callDepth int
	maxDepth  int
}

// Option configures an Evaluator at construction time, mirroring the
// teacher's functional-options LexerOption pattern.
type Option func(*Evaluator)

// WithMaxCallDepth overrides DefaultMaxRecursionDepth.
func WithMaxCallDepth(n int) Option {
	return func(ev *Evaluator) { ev.maxDepth = n }
}

// WithStdout redirects the `print` built-in's output.
func WithStdout(w io.Writer) Option {
	return func(ev *Evaluator) { ev.Stdout = w }
}

// WithTracing writes one line per function call entry/exit to w.
func WithTracing(w io.Writer) Option {
	return func(ev *Evaluator) { ev.Trace = w }
}

// New creates an Evaluator with a fresh global scope, the built-in
// function/exception namespace installed, and recursion limiting enabled.
func New(opts ...Option) *Evaluator {
	ev := &Evaluator{
		Globals:  runtime.NewEnvironment(),
		Builtins: runtime.NewEnvironment(),
		Stdout:   os.Stdout,
		maxDepth: DefaultMaxRecursionDepth,
	}
	ev.Exceptions = newExceptionHierarchy()
	ev.installExceptionClasses()
	installBuiltins(ev)
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Run executes a parsed module's top-level statements against the global
// scope and returns the value of a trailing bare expression statement (so
// a REPL-style caller can print the last expression's result), or None.
func (ev *Evaluator) Run(mod *ast.Module) (runtime.Value, error) {
	var last runtime.Value = runtime.None
	for i, stmt := range mod.Body {
		if es, ok := stmt.(*ast.ExprStatement); ok && i == len(mod.Body)-1 {
			v, err := ev.evalExpr(es.X, ev.Globals)
			if err != nil {
				return nil, err
			}
			last = v
			continue
		}
		sig, err := ev.execStmt(stmt, ev.Globals)
		if err != nil {
			return nil, err
		}
		if sig != nil && sig.Kind != SigNone {
			return nil, fmt.Errorf("'%s' outside loop/function", signalName(sig.Kind))
		}
	}
	return last, nil
}

func signalName(k SignalKind) string {
	switch k {
	case SigBreak:
		return "break"
	case SigContinue:
		return "continue"
	case SigReturn:
		return "return"
	}
	return "signal"
}

// Raise implements runtime.Evaluator: it builds an *runtime.ExceptionValue
// for the named built-in exception class and returns it as a Go error so
// built-ins and operator dispatch can `return nil, ev.Raise(...)`.
func (ev *Evaluator) Raise(class string, format string, args ...any) error {
	cls, ok := ev.Exceptions.classes[class]
	if !ok {
		cls = ev.Exceptions.classes["Exception"]
	}
	msg := fmt.Sprintf(format, args...)
	var argv []runtime.Value
	if msg != "" {
		argv = []runtime.Value{runtime.NewStr(msg)}
	}
	return runtime.NewException(cls, argv)
}

// CallFunction implements runtime.Evaluator, invoked by FunctionValue.Call,
// BoundMethodValue.Call, and ClassValue.Call so runtime need not import
// evaluator.
func (ev *Evaluator) CallFunction(fn runtime.Value, args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
	return ev.callValue(fn, args, kwargs)
}
