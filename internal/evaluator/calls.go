package evaluator

import (
	"fmt"

	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/runtime"
)

// superSelfKey and superClassKey are reserved frame bindings set on entry to
// a bound method, recording the receiver and the class whose body defined
// it. The zero-argument super() form reads them back to build a SuperValue
// without needing bytecode-level support for an implicit __class__ cell.
const (
	superSelfKey  = "__super_self__"
	superClassKey = "__super_class__"
)

// evalCall evaluates a Call node: resolves the callee, materializes
// positional/starred/keyword arguments, and dispatches through callValue.
func (ev *Evaluator) evalCall(n *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	if id, ok := n.Func.(*ast.Identifier); ok && id.Name == "super" && !env.Has("super") {
		return ev.evalSuperCall(n, env)
	}

	fn, err := ev.evalExpr(n.Func, env)
	if err != nil {
		return nil, err
	}

	var args []runtime.Value
	for _, a := range n.Args {
		if st, ok := a.(*ast.Starred); ok {
			v, err := ev.evalExpr(st.Value, env)
			if err != nil {
				return nil, err
			}
			seq, err := ev.asSequence(v)
			if err != nil {
				return nil, err
			}
			args = append(args, seq...)
			continue
		}
		v, err := ev.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	var kwargs map[string]runtime.Value
	for _, kw := range n.Keywords {
		v, err := ev.evalExpr(kw.Value, env)
		if err != nil {
			return nil, err
		}
		if kw.Name == "" {
			d, ok := v.(*runtime.DictValue)
			if !ok {
				return nil, ev.Raise("TypeError", "argument after ** must be a mapping, not %s", v.Type())
			}
			if kwargs == nil {
				kwargs = make(map[string]runtime.Value)
			}
			for _, k := range d.Keys() {
				sk, ok := k.(*runtime.StrValue)
				if !ok {
					return nil, ev.Raise("TypeError", "keywords must be strings")
				}
				dv, _ := d.Get(k)
				kwargs[sk.Value] = dv
			}
			continue
		}
		if kwargs == nil {
			kwargs = make(map[string]runtime.Value)
		}
		kwargs[kw.Name] = v
	}

	return ev.callValue(fn, args, kwargs)
}

// evalSuperCall implements super() and super(Class, obj). The zero-argument
// form reads the __super_self__/__super_class__ bindings invokeFunction
// leaves in the frame of whichever method is currently executing; it is a
// TypeError outside of one, matching "super(): no arguments" in a module
// with no enclosing method call.
func (ev *Evaluator) evalSuperCall(n *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	if len(n.Args) == 0 {
		selfV, ok := env.Get(superSelfKey)
		if !ok {
			return nil, ev.Raise("TypeError", "super(): no arguments")
		}
		clsV, ok := env.Get(superClassKey)
		if !ok {
			return nil, ev.Raise("TypeError", "super(): no arguments")
		}
		cls, ok := clsV.(*runtime.ClassValue)
		if !ok {
			return nil, ev.Raise("TypeError", "super(): no arguments")
		}
		return &runtime.SuperValue{StartAfter: cls, Receiver: selfV}, nil
	}
	if len(n.Args) != 2 {
		return nil, ev.Raise("TypeError", "super() takes 0 or 2 arguments")
	}
	clsV, err := ev.evalExpr(n.Args[0], env)
	if err != nil {
		return nil, err
	}
	cls, ok := clsV.(*runtime.ClassValue)
	if !ok {
		return nil, ev.Raise("TypeError", "super() argument 1 must be a class")
	}
	obj, err := ev.evalExpr(n.Args[1], env)
	if err != nil {
		return nil, err
	}
	return &runtime.SuperValue{StartAfter: cls, Receiver: obj}, nil
}

// callValue is the universal call dispatcher for every CallableValue kind,
// shared by direct call syntax, operator-dunder dispatch, and
// runtime.Evaluator.CallFunction.
func (ev *Evaluator) callValue(fn runtime.Value, args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
	switch f := fn.(type) {
	case *runtime.FunctionValue:
		return ev.invokeFunction(f, nil, args, kwargs)
	case *runtime.BoundMethodValue:
		return ev.invokeFunction(f.Func, f.Receiver, args, kwargs)
	case *runtime.ClassValue:
		return ev.instantiate(f, args, kwargs)
	case *runtime.BuiltinCallableValue:
		return f.Call(ev, args, kwargs)
	}
	return nil, ev.Raise("TypeError", "'%s' object is not callable", fn.Type())
}

// invokeFunction binds arguments into a fresh frame enclosed over the
// function's closure, spawning a suspended generator/coroutine instead of
// running the body immediately when the function is a generator/async def.
func (ev *Evaluator) invokeFunction(f *runtime.FunctionValue, receiver runtime.Value, args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
	if ev.callDepth >= ev.maxDepth {
		return nil, ev.Raise("RecursionError", "maximum recursion depth exceeded")
	}

	frame := runtime.NewEnclosedEnvironment(f.Closure)
	if err := ev.bindParams(f.Params, receiver, args, kwargs, frame); err != nil {
		return nil, err
	}
	if receiver != nil && f.Owner != nil {
		frame.Define(superSelfKey, receiver)
		frame.Define(superClassKey, f.Owner)
	}

	if f.IsGenerator {
		return ev.spawnGenerator(f, frame), nil
	}
	if f.IsAsync {
		return ev.spawnCoroutine(f, frame), nil
	}

	ev.callDepth++
	defer func() { ev.callDepth-- }()

	if ev.Trace != nil {
		name := f.Name
		if name == "" {
			name = "<lambda>"
		}
		fmt.Fprintf(ev.Trace, "%*s-> %s\n", ev.callDepth*2, "", name)
		defer fmt.Fprintf(ev.Trace, "%*s<- %s\n", ev.callDepth*2, "", name)
	}

	sig, err := ev.execBlock(f.Body, frame)
	if err != nil {
		return nil, err
	}
	if sig != nil && sig.Kind == SigReturn {
		return sig.Value, nil
	}
	return runtime.None, nil
}

// bindParams implements positional-or-keyword binding with defaults,
// bare-`*`/`*args` collection, keyword-only parameters, and `**kwargs`,
// prefixing receiver as the implicit first positional argument for bound
// method calls.
func (ev *Evaluator) bindParams(params []ast.Param, receiver runtime.Value, args []runtime.Value, kwargs map[string]runtime.Value, frame *runtime.Environment) error {
	if receiver != nil {
		args = append([]runtime.Value{receiver}, args...)
	}

	consumed := make(map[string]bool, len(kwargs))
	argi := 0

	for i := 0; i < len(params); i++ {
		p := params[i]
		switch p.Kind {
		case ast.ParamStarArgs:
			if p.Name == "" {
				continue
			}
			rest := append([]runtime.Value{}, args[argi:]...)
			frame.Define(p.Name, runtime.NewTuple(rest))
			argi = len(args)
		case ast.ParamStarStarKwargs:
			d := runtime.NewDict()
			for k, v := range kwargs {
				if !consumed[k] {
					d.Set(runtime.NewStr(k), v)
					consumed[k] = true
				}
			}
			frame.Define(p.Name, d)
		case ast.ParamKeywordOnly:
			if v, ok := kwargs[p.Name]; ok {
				frame.Define(p.Name, v)
				consumed[p.Name] = true
				continue
			}
			if p.Default != nil {
				v, err := ev.evalExpr(p.Default, frame)
				if err != nil {
					return err
				}
				frame.Define(p.Name, v)
				continue
			}
			return ev.Raise("TypeError", "missing required keyword-only argument: '%s'", p.Name)
		default: // ParamPositionalOrKeyword
			if argi < len(args) {
				frame.Define(p.Name, args[argi])
				argi++
				continue
			}
			if v, ok := kwargs[p.Name]; ok {
				frame.Define(p.Name, v)
				consumed[p.Name] = true
				continue
			}
			if p.Default != nil {
				v, err := ev.evalExpr(p.Default, frame)
				if err != nil {
					return err
				}
				frame.Define(p.Name, v)
				continue
			}
			return ev.Raise("TypeError", "missing required argument: '%s'", p.Name)
		}
	}

	if argi < len(args) {
		return ev.Raise("TypeError", "too many positional arguments")
	}
	for k := range kwargs {
		if !consumed[k] {
			if !hasParamNamed(params, k) {
				return ev.Raise("TypeError", "unexpected keyword argument '%s'", k)
			}
		}
	}
	return nil
}

func hasParamNamed(params []ast.Param, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// makeFunction builds a closure value from a `def`/`async def` declaration,
// capturing env (the defining scope) and the first statement's bare-string
// docstring, if present.
func (ev *Evaluator) makeFunction(n *ast.FunctionDecl, env *runtime.Environment) *runtime.FunctionValue {
	fn := &runtime.FunctionValue{
		Name:        n.Name,
		Params:      n.Params,
		Body:        n.Body,
		Closure:     env,
		IsAsync:     n.IsAsync,
		IsGenerator: n.IsGenerator,
		Doc:         docstringOf(n.Body),
	}
	return fn
}

func docstringOf(body []ast.Statement) string {
	if len(body) == 0 {
		return ""
	}
	es, ok := body[0].(*ast.ExprStatement)
	if !ok {
		return ""
	}
	sl, ok := es.X.(*ast.StringLiteral)
	if !ok {
		return ""
	}
	return sl.Value
}

// instantiate implements `Class(...)`: it allocates a fresh InstanceValue
// (exception classes get ExceptionValue instead, so `raise` and `except`
// matching can treat it as a Go error) and calls `__init__` if the class
// or one of its ancestors defines one.
func (ev *Evaluator) instantiate(cls *runtime.ClassValue, args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
	if ev.Exceptions.isExceptionClass(cls) {
		exc := runtime.NewException(cls, args)
		if init, _, ok := cls.LookupMRO("__init__"); ok {
			if fn, ok := init.(*runtime.FunctionValue); ok {
				if _, err := ev.invokeFunction(fn, exc, args, kwargs); err != nil {
					return nil, err
				}
			}
		}
		return exc, nil
	}

	inst := runtime.NewInstance(cls)
	if init, _, ok := cls.LookupMRO("__init__"); ok {
		if fn, ok := init.(*runtime.FunctionValue); ok {
			if _, err := ev.invokeFunction(fn, inst, args, kwargs); err != nil {
				return nil, err
			}
		}
	}
	return inst, nil
}
