package evaluator

import (
	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/runtime"
)

// runCompClauses drives the nested `for ... [if ...]` clauses of a
// comprehension, invoking body once per combination of loop targets that
// survives every clause's `if` filters. Each clause gets its own child
// scope so comprehension variables never leak into the enclosing scope,
// matching the reference language's comprehension-has-its-own-scope rule.
func (ev *Evaluator) runCompClauses(clauses []ast.CompClause, idx int, env *runtime.Environment, body func(*runtime.Environment) error) error {
	if idx == len(clauses) {
		return body(env)
	}
	c := clauses[idx]
	iterVal, err := ev.evalExpr(c.Iter, env)
	if err != nil {
		return err
	}
	it, err := ev.getIterator(iterVal)
	if err != nil {
		return err
	}
	for {
		v, more, err := nextOrErr(it)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		scope := runtime.NewEnclosedEnvironment(env)
		if err := ev.assignTo(c.Targets, v, scope); err != nil {
			return err
		}
		passed := true
		for _, ifexpr := range c.Ifs {
			cond, err := ev.evalExpr(ifexpr, scope)
			if err != nil {
				return err
			}
			if !cond.Truthy() {
				passed = false
				break
			}
		}
		if !passed {
			continue
		}
		if err := ev.runCompClauses(clauses, idx+1, scope, body); err != nil {
			return err
		}
	}
}

func (ev *Evaluator) evalListComp(n *ast.ListComp, env *runtime.Environment) (runtime.Value, error) {
	var out []runtime.Value
	err := ev.runCompClauses(n.Clauses, 0, env, func(scope *runtime.Environment) error {
		v, err := ev.evalExpr(n.Elt, scope)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewList(out), nil
}

func (ev *Evaluator) evalSetComp(n *ast.SetComp, env *runtime.Environment) (runtime.Value, error) {
	s := runtime.NewSet()
	err := ev.runCompClauses(n.Clauses, 0, env, func(scope *runtime.Environment) error {
		v, err := ev.evalExpr(n.Elt, scope)
		if err != nil {
			return err
		}
		if err := s.Add(v); err != nil {
			return ev.Raise("TypeError", "%s", err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (ev *Evaluator) evalDictComp(n *ast.DictComp, env *runtime.Environment) (runtime.Value, error) {
	d := runtime.NewDict()
	err := ev.runCompClauses(n.Clauses, 0, env, func(scope *runtime.Environment) error {
		k, err := ev.evalExpr(n.Key, scope)
		if err != nil {
			return err
		}
		v, err := ev.evalExpr(n.Value, scope)
		if err != nil {
			return err
		}
		if err := d.Set(k, v); err != nil {
			return ev.Raise("TypeError", "%s", err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// evalGeneratorExp produces a lazily-driven GeneratorValue backed by a
// goroutine that walks the comprehension's clauses the same way
// evalListComp does, yielding one element at a time instead of
// materializing the whole sequence up front.
func (ev *Evaluator) evalGeneratorExp(n *ast.GeneratorExp, env *runtime.Environment) (runtime.Value, error) {
	g := runtime.NewGenerator("<genexpr>")
	go func() {
		_, _, closeRequested := g.WaitResume()
		if closeRequested {
			g.PushYield(runtime.None, nil, true)
			return
		}
		err := ev.runCompClauses(n.Clauses, 0, env, func(scope *runtime.Environment) error {
			v, err := ev.evalExpr(n.Elt, scope)
			if err != nil {
				return err
			}
			g.PushYield(v, nil, false)
			_, raiseErr, _ := g.WaitResume()
			if raiseErr != nil {
				return raiseErr
			}
			return nil
		})
		if err != nil {
			g.PushYield(nil, err, true)
			return
		}
		g.PushYield(runtime.None, nil, true)
	}()
	return g, nil
}
