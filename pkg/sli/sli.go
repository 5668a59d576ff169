// Package sli is the stable embedding API for the SL interpreter: the only
// surface host programs are meant to depend on, mirroring the teacher's
// own split between its public `interp` construction layer and the
// internal packages doing the work.
package sli

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/go-sli/internal/diag"
	"github.com/cwbudde/go-sli/internal/evaluator"
	"github.com/cwbudde/go-sli/internal/parser"
	"github.com/cwbudde/go-sli/internal/runtime"
)

// Option configures an Interpreter at construction time.
type Option func(*config)

type config struct {
	maxCallDepth int
	stdout       io.Writer
	tracing      bool
}

// WithMaxCallDepth bounds nested SL function calls before RecursionError.
func WithMaxCallDepth(n int) Option {
	return func(c *config) { c.maxCallDepth = n }
}

// WithStdout redirects the `print` built-in's output.
func WithStdout(w io.Writer) Option {
	return func(c *config) { c.stdout = w }
}

// WithTracing enables a per-call trace line written to Stdout, for
// debugging embedder-side hangs; off by default since the core does not
// log (it is a library, not a CLI — logging is cmd/sli's concern).
func WithTracing(on bool) Option {
	return func(c *config) { c.tracing = on }
}

// Interpreter is a single SL execution context: one global scope, one
// exception hierarchy, one builtin namespace. Not safe for concurrent Run
// calls against the same Interpreter.
type Interpreter struct {
	ev     *evaluator.Evaluator
	source string
	file   string
}

// New constructs a fresh Interpreter with built-ins installed and an empty
// global environment.
func New(opts ...Option) *Interpreter {
	cfg := &config{maxCallDepth: evaluator.DefaultMaxRecursionDepth}
	for _, opt := range opts {
		opt(cfg)
	}
	stdout := cfg.stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	evOpts := []evaluator.Option{evaluator.WithMaxCallDepth(cfg.maxCallDepth), evaluator.WithStdout(stdout)}
	if cfg.tracing {
		evOpts = append(evOpts, evaluator.WithTracing(stdout))
	}
	return &Interpreter{ev: evaluator.New(evOpts...)}
}

// RunError is the host-facing error surfaced by an uncaught SL exception:
// Kind is the SL exception class name, Message is str(exception), and Args
// holds the exception's args converted with ToHost. It carries no source
// position, since the evaluator does not thread per-statement position
// into ExceptionValue itself.
type RunError struct {
	Kind    string
	Message string
	Args    []any
	diagErr string
}

func (e *RunError) Error() string {
	if e.diagErr != "" {
		return e.diagErr
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Run parses and executes source as a module, returning the value of a
// trailing bare expression statement, else None. Syntax errors surface as
// *RunError wrapping a diag-formatted SyntaxError report; uncaught SL
// exceptions surface as *RunError carrying the exception's class name and
// args.
func (it *Interpreter) Run(source string) (runtime.Value, error) {
	mod, errs := parser.ParseModule(source)
	if len(errs) > 0 {
		diagErrs := make([]*diag.SourceError, len(errs))
		for i, e := range errs {
			diagErrs[i] = diag.New(e.Pos, e.Message, source, it.file)
		}
		return nil, &RunError{Kind: "SyntaxError", Message: errs[0].Message, diagErr: diag.FormatAll(diagErrs, false)}
	}
	v, err := it.ev.Run(mod)
	if err != nil {
		if exc, ok := err.(*runtime.ExceptionValue); ok {
			args := make([]any, len(exc.Args))
			for i, a := range exc.Args {
				args[i] = ToHost(a)
			}
			return nil, &RunError{Kind: exc.Class.Name, Message: exc.Msg, Args: args}
		}
		return nil, err
	}
	return v, nil
}

// Result is what a RunAsync future resolves to.
type Result struct {
	Value runtime.Value
	Err   error
}

// RunAsync runs source on its own goroutine and returns a channel that
// receives exactly one Result, the Go-idiomatic analogue of the base
// spec's Future-returning run_async — awaiting coroutines/generators are
// already driven synchronously within Run via the goroutine+channel
// suspension machinery in internal/runtime, so no separate event loop is
// needed here.
func (it *Interpreter) RunAsync(source string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		v, err := it.Run(source)
		out <- Result{Value: v, Err: err}
		close(out)
	}()
	return out
}

// GlobalScope exposes the module-level environment for introspection and
// injection of host values before/after a Run.
func (it *Interpreter) GlobalScope() *Scope {
	return &Scope{env: it.ev.Globals}
}

// Scope wraps a runtime.Environment with a host-facing Get/Set surface.
type Scope struct{ env *runtime.Environment }

// Get returns the named global's host-converted value, if bound.
func (s *Scope) Get(name string) (any, bool) {
	v, ok := s.env.GetLocal(name)
	if !ok {
		return nil, false
	}
	return ToHost(v), true
}

// Set injects a host value into the global scope as its SL equivalent.
func (s *Scope) Set(name string, val any) error {
	v, err := FromHost(val)
	if err != nil {
		return err
	}
	s.env.Define(name, v)
	return nil
}

// ToHost converts an SL Value to its canonical Go representation: Int to
// int64 when it fits, else the value's own *big.Int, Float to
// float64, Str to string, Bool to bool, None to nil, List/Tuple to []any
// (recursive), Dict to map[any]any, Set/FrozenSet to []any (unordered by
// nature), everything else an opaque handle (the Value itself).
func ToHost(v runtime.Value) any {
	switch x := v.(type) {
	case *runtime.NoneValue:
		return nil
	case *runtime.BoolValue:
		return x.Value
	case *runtime.IntValue:
		if x.Val.IsInt64() {
			return x.Val.Int64()
		}
		return x.Val
	case *runtime.FloatValue:
		return x.Value
	case *runtime.StrValue:
		return x.Value
	case *runtime.BytesValue:
		return x.Value
	case *runtime.ListValue:
		out := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			out[i] = ToHost(e)
		}
		return out
	case *runtime.TupleValue:
		out := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			out[i] = ToHost(e)
		}
		return out
	case *runtime.DictValue:
		out := make(map[any]any, x.Len())
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			out[ToHost(k)] = ToHost(val)
		}
		return out
	case *runtime.SetValue:
		out := make([]any, 0, x.Len())
		for _, e := range x.Items() {
			out = append(out, ToHost(e))
		}
		return out
	case *runtime.FrozenSetValue:
		out := make([]any, 0, x.Len())
		for _, e := range x.Items() {
			out = append(out, ToHost(e))
		}
		return out
	default:
		return v
	}
}

// FromHost converts a Go value into its SL equivalent, the inverse of
// ToHost for nil, bool, int, int64, float64, string, []byte and []any
// (recursively, to a List); a runtime.Value passes through unchanged. Maps
// and every other Go type are rejected with an error.
func FromHost(val any) (runtime.Value, error) {
	switch x := val.(type) {
	case nil:
		return runtime.None, nil
	case bool:
		return runtime.Bool(x), nil
	case int:
		return runtime.NewInt(int64(x)), nil
	case int64:
		return runtime.NewInt(x), nil
	case float64:
		return runtime.NewFloat(x), nil
	case string:
		return runtime.NewStr(x), nil
	case []byte:
		return runtime.NewBytes(x), nil
	case []any:
		out := make([]runtime.Value, len(x))
		for i, e := range x {
			v, err := FromHost(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return runtime.NewList(out), nil
	case runtime.Value:
		return x, nil
	default:
		return nil, fmt.Errorf("sli: cannot convert %T to an SL value", val)
	}
}
