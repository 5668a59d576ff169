package evaluator

import (
	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/runtime"
)

// execTry implements try/except/else/finally. A non-exception Go error
// (there are none produced by this evaluator today, but the shape is kept
// honest) passes straight through every except clause unmatched, exactly
// like an exception type no handler names.
func (ev *Evaluator) execTry(n *ast.Try, env *runtime.Environment) (*Signal, error) {
	sig, err := ev.execBlock(n.Body, env)

	if err != nil {
		exc, ok := err.(*runtime.ExceptionValue)
		if ok {
			for _, h := range n.Handlers {
				matched, matchErr := ev.handlerMatches(h, exc, env)
				if matchErr != nil {
					return nil, matchErr
				}
				if matched {
					if h.Name != "" {
						env.Define(h.Name, exc)
					}
					sig, err = ev.execBlock(h.Body, env)
					goto finally
				}
			}
		}
	} else if sig == nil && len(n.Orelse) > 0 {
		sig, err = ev.execBlock(n.Orelse, env)
	}

finally:
	if len(n.Finally) > 0 {
		fsig, ferr := ev.execBlock(n.Finally, env)
		if ferr != nil {
			return nil, ferr
		}
		if fsig != nil && fsig.Kind != SigNone {
			return fsig, nil
		}
	}
	return sig, err
}

// handlerMatches evaluates an except clause's (possibly multiple) type
// expressions and reports whether exc's class is one of them or a
// subclass, per issubclass() semantics. A bare `except:` (no Types)
// matches anything.
func (ev *Evaluator) handlerMatches(h ast.ExceptHandler, exc *runtime.ExceptionValue, env *runtime.Environment) (bool, error) {
	if len(h.Types) == 0 {
		return true, nil
	}
	for _, texpr := range h.Types {
		v, err := ev.evalExpr(texpr, env)
		if err != nil {
			return false, err
		}
		cls, ok := v.(*runtime.ClassValue)
		if !ok {
			return false, ev.Raise("TypeError", "catching classes that do not inherit from BaseException is not allowed")
		}
		if exc.Class.IsSubclassOf(cls) {
			return true, nil
		}
	}
	return false, nil
}

// execWith implements the context-manager protocol for `with`/`async
// with`: __enter__ on entry (bound to the `as` target, if any), and
// __exit__ on every exit path — normal completion, an in-flight
// exception, or a break/continue/return signal — in reverse acquisition
// order. __exit__ returning a truthy value suppresses the exception.
func (ev *Evaluator) execWith(items []ast.WithItem, body []ast.Statement, env *runtime.Environment) (*Signal, error) {
	var entries []*runtime.InstanceValue
	for _, item := range items {
		ctxVal, err := ev.evalExpr(item.Ctx, env)
		if err != nil {
			return nil, err
		}
		inst, ok := ctxVal.(*runtime.InstanceValue)
		if !ok {
			return nil, ev.Raise("TypeError", "'%s' object does not support the context manager protocol", ctxVal.Type())
		}
		entered, err := ev.invokeDunderValue(inst, "__enter__", nil)
		if err != nil {
			return nil, err
		}
		if item.Target != nil {
			if err := ev.assignTo(item.Target, entered, env); err != nil {
				return nil, err
			}
		}
		entries = append(entries, inst)
	}

	sig, err := ev.execBlock(body, env)

	for i := len(entries) - 1; i >= 0; i-- {
		var excArgs []runtime.Value
		if exc, ok := err.(*runtime.ExceptionValue); ok {
			excArgs = []runtime.Value{exc.Class, exc, runtime.None}
		} else {
			excArgs = []runtime.Value{runtime.None, runtime.None, runtime.None}
		}
		if _, _, ok := entries[i].Class.LookupMRO("__exit__"); !ok {
			continue
		}
		suppressed, exitErr := ev.invokeDunderValue(entries[i], "__exit__", excArgs)
		if exitErr != nil {
			// __exit__ itself raised: that becomes the new in-flight error,
			// replacing (not suppressing) whatever was already propagating,
			// but every remaining outer context manager still gets its
			// __exit__ call.
			err = exitErr
			continue
		}
		if err != nil && suppressed != nil && suppressed.Truthy() {
			err = nil
		}
	}
	return sig, err
}

// execClassDecl executes a class body in a fresh namespace (its own
// assignments and `def`s become the class's Dict), resolves and
// linearizes the base classes via C3, and applies any decorators outermost
// last, the way `execStmt`'s FunctionDecl case does for plain functions.
func (ev *Evaluator) execClassDecl(n *ast.ClassDecl, env *runtime.Environment) error {
	var bases []*runtime.ClassValue
	for _, b := range n.Bases {
		v, err := ev.evalExpr(b, env)
		if err != nil {
			return err
		}
		cls, ok := v.(*runtime.ClassValue)
		if !ok {
			return ev.Raise("TypeError", "bases must be classes, not '%s'", v.Type())
		}
		bases = append(bases, cls)
	}

	classEnv := runtime.NewEnclosedEnvironment(env)
	if _, err := ev.execBlock(n.Body, classEnv); err != nil {
		return err
	}

	cls, err := runtime.NewClass(n.Name, bases)
	if err != nil {
		return ev.Raise("TypeError", "%s", err.Error())
	}
	classEnv.Range(func(name string, v runtime.Value) bool {
		cls.Dict[name] = v
		if fn, ok := v.(*runtime.FunctionValue); ok {
			fn.Owner = cls
		}
		return true
	})
	cls.Doc = docstringOf(n.Body)

	var result runtime.Value = cls
	for i := len(n.Decorators) - 1; i >= 0; i-- {
		dec, err := ev.evalExpr(n.Decorators[i], env)
		if err != nil {
			return err
		}
		result, err = ev.callValue(dec, []runtime.Value{result}, nil)
		if err != nil {
			return err
		}
	}
	env.Define(n.Name, result)
	return nil
}
