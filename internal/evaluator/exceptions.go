package evaluator

import "github.com/cwbudde/go-sli/internal/runtime"

// ExceptionHierarchy is the evaluator's closed set of built-in exception
// classes, indexed by name for Raise() and for `except` clause matching.
type ExceptionHierarchy struct {
	classes map[string]*runtime.ClassValue
}

func newExceptionHierarchy() *ExceptionHierarchy {
	return &ExceptionHierarchy{classes: make(map[string]*runtime.ClassValue)}
}

// isExceptionClass reports whether cls descends from BaseException, used
// to decide whether instantiate() should produce an ExceptionValue (usable
// as a Go error) instead of a plain InstanceValue.
func (h *ExceptionHierarchy) isExceptionClass(cls *runtime.ClassValue) bool {
	base, ok := h.classes["BaseException"]
	if !ok {
		return false
	}
	return cls.IsSubclassOf(base)
}

// exceptionNode describes one entry of the built-in exception hierarchy:
// its name and its direct parent's name ("" for BaseException, the root).
type exceptionNode struct {
	name   string
	parent string
}

// exceptionTree lists every built-in exception class and its parent,
// mirroring the closed hierarchy a dynamic scripting language of this
// shape exposes: a single BaseException root, Exception as the branch
// user code is expected to catch, and GeneratorExit/KeyboardInterrupt/
// SystemExit hanging directly off BaseException so a bare
// `except Exception` does not accidentally swallow them. StopIteration and
// StopAsyncIteration are ordinary Exception subclasses.
var exceptionTree = []exceptionNode{
	{"BaseException", ""},
	{"SystemExit", "BaseException"},
	{"KeyboardInterrupt", "BaseException"},
	{"GeneratorExit", "BaseException"},
	{"Exception", "BaseException"},
	{"StopIteration", "Exception"},
	{"StopAsyncIteration", "Exception"},
	{"ArithmeticError", "Exception"},
	{"ZeroDivisionError", "ArithmeticError"},
	{"OverflowError", "ArithmeticError"},
	{"AssertionError", "Exception"},
	{"AttributeError", "Exception"},
	{"ImportError", "Exception"},
	{"ModuleNotFoundError", "ImportError"},
	{"LookupError", "Exception"},
	{"IndexError", "LookupError"},
	{"KeyError", "LookupError"},
	{"NameError", "Exception"},
	{"UnboundLocalError", "NameError"},
	{"RuntimeError", "Exception"},
	{"NotImplementedError", "RuntimeError"},
	{"RecursionError", "RuntimeError"},
	{"SyntaxError", "Exception"},
	{"IndentationError", "SyntaxError"},
	{"TypeError", "Exception"},
	{"ValueError", "Exception"},
	{"OSError", "Exception"},
	{"FileNotFoundError", "OSError"},
}

// installExceptionClasses builds the exception tree as real ClassValues
// (each with a proper one-base MRO, so `except Exception` matches any
// subclass via ClassValue.IsSubclassOf exactly the way user-defined
// `class Foo(Exception)` does) and binds every name both into
// ev.Exceptions and into the global namespace so scripts can reference
// them by name and subclass them.
func (ev *Evaluator) installExceptionClasses() {
	for _, node := range exceptionTree {
		var bases []*runtime.ClassValue
		if node.parent != "" {
			bases = []*runtime.ClassValue{ev.Exceptions.classes[node.parent]}
		}
		cls, err := runtime.NewClass(node.name, bases)
		if err != nil {
			panic(err)
		}
		ev.Exceptions.classes[node.name] = cls
		ev.Globals.Define(node.name, cls)
	}
}
