package evaluator

import (
	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/runtime"
)

// execBlock runs a sequence of statements, stopping and propagating the
// first non-nil Signal or error.
func (ev *Evaluator) execBlock(body []ast.Statement, env *runtime.Environment) (*Signal, error) {
	for _, stmt := range body {
		sig, err := ev.execStmt(stmt, env)
		if err != nil {
			return nil, err
		}
		if sig != nil && sig.Kind != SigNone {
			return sig, nil
		}
	}
	return nil, nil
}

func (ev *Evaluator) execStmt(stmt ast.Statement, env *runtime.Environment) (*Signal, error) {
	switch n := stmt.(type) {
	case *ast.ExprStatement:
		_, err := ev.evalExpr(n.X, env)
		return nil, err

	case *ast.Pass:
		return nil, nil

	case *ast.Assign:
		val, err := ev.evalExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		for _, target := range n.Targets {
			if err := ev.assignTo(target, val, env); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case *ast.AugAssign:
		return nil, ev.execAugAssign(n, env)

	case *ast.AnnAssign:
		if n.Value == nil {
			return nil, nil
		}
		val, err := ev.evalExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		return nil, ev.assignTo(n.Target, val, env)

	case *ast.Break:
		return &Signal{Kind: SigBreak}, nil

	case *ast.Continue:
		return &Signal{Kind: SigContinue}, nil

	case *ast.Return:
		var val runtime.Value = runtime.None
		if n.Value != nil {
			v, err := ev.evalExpr(n.Value, env)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return &Signal{Kind: SigReturn, Value: val}, nil

	case *ast.YieldStatement:
		_, err := ev.evalExpr(n.X, env)
		return nil, err

	case *ast.Raise:
		return nil, ev.execRaise(n, env)

	case *ast.Global:
		for _, name := range n.Names {
			env.DeclareGlobal(name)
		}
		return nil, nil

	case *ast.Nonlocal:
		for _, name := range n.Names {
			env.DeclareNonlocal(name)
		}
		return nil, nil

	case *ast.Del:
		for _, target := range n.Targets {
			if err := ev.execDel(target, env); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case *ast.Assert:
		cond, err := ev.evalExpr(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if !cond.Truthy() {
			msg := ""
			if n.Msg != nil {
				mv, err := ev.evalExpr(n.Msg, env)
				if err != nil {
					return nil, err
				}
				msg = mv.String()
			}
			return nil, ev.Raise("AssertionError", "%s", msg)
		}
		return nil, nil

	case *ast.Import:
		return nil, ev.execImport(n, env)

	case *ast.If:
		cond, err := ev.evalExpr(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if cond.Truthy() {
			return ev.execBlock(n.Body, env)
		}
		return ev.execBlock(n.Orelse, env)

	case *ast.While:
		for {
			cond, err := ev.evalExpr(n.Cond, env)
			if err != nil {
				return nil, err
			}
			if !cond.Truthy() {
				return ev.execBlock(n.Orelse, env)
			}
			sig, err := ev.execBlock(n.Body, env)
			if err != nil {
				return nil, err
			}
			if sig != nil {
				if sig.Kind == SigBreak {
					return nil, nil
				}
				if sig.Kind == SigReturn {
					return sig, nil
				}
			}
		}

	case *ast.For:
		return ev.execFor(n, env)

	case *ast.Try:
		return ev.execTry(n, env)

	case *ast.With:
		return ev.execWith(n.Items, n.Body, env)

	case *ast.AsyncWith:
		return ev.execWith(n.Items, n.Body, env)

	case *ast.AsyncFor:
		return ev.execFor(&ast.For{Target: n.Target, Iter: n.Iter, Body: n.Body, Orelse: n.Orelse}, env)

	case *ast.FunctionDecl:
		var result runtime.Value = ev.makeFunction(n, env)
		for i := len(n.Decorators) - 1; i >= 0; i-- {
			dec, err := ev.evalExpr(n.Decorators[i], env)
			if err != nil {
				return nil, err
			}
			result, err = ev.callValue(dec, []runtime.Value{result}, nil)
			if err != nil {
				return nil, err
			}
		}
		env.Define(n.Name, result)
		return nil, nil

	case *ast.ClassDecl:
		return nil, ev.execClassDecl(n, env)

	default:
		return nil, nil
	}
}

func (ev *Evaluator) execAugAssign(n *ast.AugAssign, env *runtime.Environment) error {
	cur, err := ev.evalExpr(n.Target, env)
	if err != nil {
		return err
	}
	rhs, err := ev.evalExpr(n.Value, env)
	if err != nil {
		return err
	}
	result, err := ev.applyBinaryOp(n.Op, cur, rhs, true)
	if err != nil {
		return err
	}
	return ev.assignTo(n.Target, result, env)
}

func (ev *Evaluator) execRaise(n *ast.Raise, env *runtime.Environment) error {
	if n.Exc == nil {
		return ev.Raise("RuntimeError", "No active exception to re-raise")
	}
	v, err := ev.evalExpr(n.Exc, env)
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case *runtime.ExceptionValue:
		return val
	case *runtime.ClassValue:
		inst, err := ev.instantiate(val, nil, nil)
		if err != nil {
			return err
		}
		if exc, ok := inst.(*runtime.ExceptionValue); ok {
			return exc
		}
		return ev.Raise("TypeError", "exceptions must derive from BaseException")
	default:
		return ev.Raise("TypeError", "exceptions must derive from BaseException")
	}
}

func (ev *Evaluator) execDel(target ast.Expression, env *runtime.Environment) error {
	switch t := target.(type) {
	case *ast.Identifier:
		for e := env; e != nil; e = e.Outer() {
			if e.Delete(t.Name) {
				return nil
			}
		}
		return ev.Raise("NameError", "name '%s' is not defined", t.Name)
	case *ast.Subscript:
		container, err := ev.evalExpr(t.Value, env)
		if err != nil {
			return err
		}
		return ev.deleteIndex(container, t.Index, env)
	case *ast.Attribute:
		obj, err := ev.evalExpr(t.Value, env)
		if err != nil {
			return err
		}
		if holder, ok := obj.(runtime.AttributeHolder); ok {
			if err := holder.DelAttr(t.Attr); err != nil {
				return ev.Raise("AttributeError", "%s", err.Error())
			}
			return nil
		}
		return ev.Raise("TypeError", "'%s' object has no attributes", obj.Type())
	}
	return ev.Raise("SyntaxError", "cannot delete this expression")
}

func (ev *Evaluator) execImport(n *ast.Import, env *runtime.Environment) error {
	mod, ok := ev.Builtins.GetLocal(n.Module)
	if !ok {
		return ev.Raise("ImportError", "No module named '%s'", n.Module)
	}
	if len(n.Names) == 0 {
		name := n.Module
		if alias, ok := n.Aliases[n.Module]; ok {
			name = alias
		}
		env.Define(name, mod)
		return nil
	}
	holder, ok := mod.(runtime.AttributeHolder)
	if !ok {
		return ev.Raise("ImportError", "module '%s' has no attributes", n.Module)
	}
	for _, name := range n.Names {
		v, ok := holder.GetAttr(name)
		if !ok {
			return ev.Raise("ImportError", "cannot import name '%s' from '%s'", name, n.Module)
		}
		target := name
		if alias, ok := n.Aliases[name]; ok {
			target = alias
		}
		env.Define(target, v)
	}
	return nil
}

func (ev *Evaluator) execFor(n *ast.For, env *runtime.Environment) (*Signal, error) {
	iterVal, err := ev.evalExpr(n.Iter, env)
	if err != nil {
		return nil, err
	}
	it, err := ev.getIterator(iterVal)
	if err != nil {
		return nil, err
	}
	for {
		v, more, err := nextOrErr(it)
		if err != nil {
			return nil, err
		}
		if !more {
			return ev.execBlock(n.Orelse, env)
		}
		if err := ev.assignTo(n.Target, v, env); err != nil {
			return nil, err
		}
		sig, err := ev.execBlock(n.Body, env)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			if sig.Kind == SigBreak {
				return nil, nil
			}
			if sig.Kind == SigReturn {
				return sig, nil
			}
		}
	}
}
