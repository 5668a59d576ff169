package evaluator

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/lexer"
	"github.com/cwbudde/go-sli/internal/runtime"
)

func (ev *Evaluator) evalExpr(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := expr.(type) {
	case *ast.Identifier:
		if env.IsDeclaredGlobal(n.Name) {
			if v, ok := env.Globals().GetLocal(n.Name); ok {
				return v, nil
			}
			return nil, ev.Raise("NameError", "name '%s' is not defined", n.Name)
		}
		if v, ok := env.Get(n.Name); ok {
			return v, nil
		}
		if v, ok := ev.Builtins.GetLocal(n.Name); ok {
			return v, nil
		}
		return nil, ev.Raise("NameError", "name '%s' is not defined", n.Name)

	case *ast.IntLiteral:
		iv, err := runtime.NewIntFromString(n.Text, 10)
		if err != nil {
			return nil, err
		}
		return iv, nil

	case *ast.FloatLiteral:
		return runtime.NewFloat(n.Value), nil

	case *ast.StringLiteral:
		return runtime.NewStr(n.Value), nil

	case *ast.BytesLiteral:
		return runtime.NewBytes(n.Value), nil

	case *ast.BoolLiteral:
		return runtime.Bool(n.Value), nil

	case *ast.NoneLiteral:
		return runtime.None, nil

	case *ast.FString:
		return ev.evalFString(n, env)

	case *ast.TupleLiteral:
		elems, err := ev.evalExprListWithStars(n.Elements, env)
		if err != nil {
			return nil, err
		}
		return runtime.NewTuple(elems), nil

	case *ast.ListLiteral:
		elems, err := ev.evalExprListWithStars(n.Elements, env)
		if err != nil {
			return nil, err
		}
		return runtime.NewList(elems), nil

	case *ast.SetLiteral:
		elems, err := ev.evalExprListWithStars(n.Elements, env)
		if err != nil {
			return nil, err
		}
		s := runtime.NewSet()
		for _, e := range elems {
			if err := s.Add(e); err != nil {
				return nil, ev.Raise("TypeError", "%s", err.Error())
			}
		}
		return s, nil

	case *ast.DictLiteral:
		d := runtime.NewDict()
		for _, entry := range n.Entries {
			if entry.Key == nil {
				spread, err := ev.evalExpr(entry.Value, env)
				if err != nil {
					return nil, err
				}
				sd, ok := spread.(*runtime.DictValue)
				if !ok {
					return nil, ev.Raise("TypeError", "argument of type '%s' is not a mapping", spread.Type())
				}
				for _, k := range sd.Keys() {
					v, _ := sd.Get(k)
					if err := d.Set(k, v); err != nil {
						return nil, ev.Raise("TypeError", "%s", err.Error())
					}
				}
				continue
			}
			k, err := ev.evalExpr(entry.Key, env)
			if err != nil {
				return nil, err
			}
			v, err := ev.evalExpr(entry.Value, env)
			if err != nil {
				return nil, err
			}
			if err := d.Set(k, v); err != nil {
				return nil, ev.Raise("TypeError", "%s", err.Error())
			}
		}
		return d, nil

	case *ast.ListComp:
		return ev.evalListComp(n, env)
	case *ast.SetComp:
		return ev.evalSetComp(n, env)
	case *ast.DictComp:
		return ev.evalDictComp(n, env)
	case *ast.GeneratorExp:
		return ev.evalGeneratorExp(n, env)

	case *ast.Attribute:
		obj, err := ev.evalExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		return ev.getAttr(obj, n.Attr)

	case *ast.Subscript:
		return ev.evalSubscript(n, env)

	case *ast.Call:
		return ev.evalCall(n, env)

	case *ast.Unary:
		return ev.evalUnary(n, env)

	case *ast.Binary:
		left, err := ev.evalExpr(n.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := ev.evalExpr(n.Right, env)
		if err != nil {
			return nil, err
		}
		return ev.applyBinaryOp(n.Op.String(), left, right, false)

	case *ast.BoolOp:
		return ev.evalBoolOp(n, env)

	case *ast.Compare:
		return ev.evalCompare(n, env)

	case *ast.Ternary:
		cond, err := ev.evalExpr(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if cond.Truthy() {
			return ev.evalExpr(n.Body, env)
		}
		return ev.evalExpr(n.Or, env)

	case *ast.Lambda:
		return &runtime.FunctionValue{Params: n.Params, Body: []ast.Statement{&ast.Return{Value: n.Body}}, Closure: env}, nil

	case *ast.Starred:
		return ev.evalExpr(n.Value, env)
	case *ast.DoubleStarred:
		return ev.evalExpr(n.Value, env)

	case *ast.Yield:
		return ev.evalYield(n, env)
	case *ast.YieldFrom:
		return ev.evalYieldFrom(n, env)
	case *ast.Await:
		return ev.evalAwait(n, env)

	case *ast.Walrus:
		v, err := ev.evalExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		ev.bindName(n.Target.Name, v, env)
		return v, nil
	}
	return nil, fmt.Errorf("evaluator: unhandled expression node %T", expr)
}

func (ev *Evaluator) evalExprListWithStars(elems []ast.Expression, env *runtime.Environment) ([]runtime.Value, error) {
	var out []runtime.Value
	for _, e := range elems {
		if st, ok := e.(*ast.Starred); ok {
			v, err := ev.evalExpr(st.Value, env)
			if err != nil {
				return nil, err
			}
			seq, err := ev.asSequence(v)
			if err != nil {
				return nil, err
			}
			out = append(out, seq...)
			continue
		}
		v, err := ev.evalExpr(e, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (ev *Evaluator) evalUnary(n *ast.Unary, env *runtime.Environment) (runtime.Value, error) {
	x, err := ev.evalExpr(n.X, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case lexer.NOT:
		return runtime.Bool(!x.Truthy()), nil
	case lexer.MINUS:
		switch v := x.(type) {
		case *runtime.IntValue:
			return runtime.NewIntFromBig(new(big.Int).Neg(v.Val)), nil
		case *runtime.FloatValue:
			return runtime.NewFloat(-v.Value), nil
		case *runtime.BoolValue:
			iv, _ := v.AsInt()
			return runtime.NewIntFromBig(new(big.Int).Neg(iv.Int)), nil
		}
		if inst, ok := x.(*runtime.InstanceValue); ok {
			return ev.invokeDunderValue(inst, "__neg__", nil)
		}
		return nil, ev.Raise("TypeError", "bad operand type for unary -: '%s'", x.Type())
	case lexer.PLUS:
		if _, ok := x.(runtime.NumericValue); ok {
			return x, nil
		}
		return nil, ev.Raise("TypeError", "bad operand type for unary +: '%s'", x.Type())
	case lexer.TILDE:
		if iv, ok := x.(*runtime.IntValue); ok {
			return runtime.NewIntFromBig(new(big.Int).Not(iv.Val)), nil
		}
		return nil, ev.Raise("TypeError", "bad operand type for unary ~: '%s'", x.Type())
	}
	return nil, fmt.Errorf("evaluator: unknown unary operator %s", n.Op)
}

func (ev *Evaluator) evalBoolOp(n *ast.BoolOp, env *runtime.Environment) (runtime.Value, error) {
	var last runtime.Value = runtime.None
	for _, e := range n.Values {
		v, err := ev.evalExpr(e, env)
		if err != nil {
			return nil, err
		}
		last = v
		if n.Op == lexer.AND && !v.Truthy() {
			return v, nil
		}
		if n.Op == lexer.OR && v.Truthy() {
			return v, nil
		}
	}
	return last, nil
}

func (ev *Evaluator) evalCompare(n *ast.Compare, env *runtime.Environment) (runtime.Value, error) {
	left, err := ev.evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}
	for i, op := range n.Ops {
		right, err := ev.evalExpr(n.Comps[i], env)
		if err != nil {
			return nil, err
		}
		ok, err := ev.compareOp(op, left, right)
		if err != nil {
			return nil, err
		}
		if !ok {
			return runtime.False, nil
		}
		left = right
	}
	return runtime.True, nil
}

func (ev *Evaluator) compareOp(op lexer.TokenType, left, right runtime.Value) (bool, error) {
	switch op {
	case lexer.EQ:
		return ev.valuesEqual(left, right)
	case lexer.NE:
		eq, err := ev.valuesEqual(left, right)
		return !eq, err
	case lexer.LT, lexer.LE, lexer.GT, lexer.GE:
		ov, ok := left.(runtime.OrderableValue)
		if !ok {
			return false, ev.Raise("TypeError", "'%s' not supported between instances of '%s' and '%s'", op, left.Type(), right.Type())
		}
		c, err := ov.CompareTo(right)
		if err != nil {
			return false, ev.Raise("TypeError", "%s", err.Error())
		}
		switch op {
		case lexer.LT:
			return c < 0, nil
		case lexer.LE:
			return c <= 0, nil
		case lexer.GT:
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	case lexer.IN:
		return ev.containsValue(right, left)
	case lexer.NOT_IN:
		ok, err := ev.containsValue(right, left)
		return !ok, err
	case lexer.IS:
		return ev.isSameObject(left, right), nil
	case lexer.IS_NOT:
		return !ev.isSameObject(left, right), nil
	}
	return false, fmt.Errorf("evaluator: unknown comparison operator %s", op)
}

func (ev *Evaluator) isSameObject(a, b runtime.Value) bool {
	if _, ok := a.(*runtime.NoneValue); ok {
		_, ok2 := b.(*runtime.NoneValue)
		return ok2
	}
	if ab, ok := a.(*runtime.BoolValue); ok {
		if bb, ok2 := b.(*runtime.BoolValue); ok2 {
			return ab.Value == bb.Value
		}
		return false
	}
	return a == b
}

func (ev *Evaluator) valuesEqual(a, b runtime.Value) (bool, error) {
	if inst, ok := a.(*runtime.InstanceValue); ok {
		if _, _, found := inst.Class.LookupMRO("__eq__"); found {
			v, err := ev.invokeDunderValue(inst, "__eq__", []runtime.Value{b})
			if err == nil {
				return v.Truthy(), nil
			}
		}
	}
	if cv, ok := a.(runtime.ComparableValue); ok {
		return cv.Equals(b)
	}
	return a == b, nil
}

func (ev *Evaluator) containsValue(container, item runtime.Value) (bool, error) {
	switch c := container.(type) {
	case *runtime.StrValue:
		sub, ok := item.(*runtime.StrValue)
		if !ok {
			return false, ev.Raise("TypeError", "'in <string>' requires string as left operand, not %s", item.Type())
		}
		return strings.Contains(c.Value, sub.Value), nil
	case *runtime.DictValue:
		_, ok := c.Get(item)
		return ok, nil
	case *runtime.SetValue:
		return c.Contains(item)
	case *runtime.FrozenSetValue:
		return c.Contains(item)
	case runtime.IterableValue:
		it := c.Iterator()
		for {
			v, more, err := nextOrErr(it)
			if err != nil {
				return false, err
			}
			if !more {
				return false, nil
			}
			eq, err := ev.valuesEqual(v, item)
			if err != nil {
				return false, err
			}
			if eq {
				return true, nil
			}
		}
	}
	return false, ev.Raise("TypeError", "argument of type '%s' is not iterable", container.Type())
}

func (ev *Evaluator) toInt64(v runtime.Value) (int64, error) {
	switch n := v.(type) {
	case *runtime.IntValue:
		return n.Val.Int64(), nil
	case *runtime.BoolValue:
		if n.Value {
			return 1, nil
		}
		return 0, nil
	}
	return 0, ev.Raise("TypeError", "indices must be integers, not %s", v.Type())
}

func (ev *Evaluator) evalSubscript(n *ast.Subscript, env *runtime.Environment) (runtime.Value, error) {
	container, err := ev.evalExpr(n.Value, env)
	if err != nil {
		return nil, err
	}
	if sl, ok := n.Index.(*ast.Slice); ok {
		sv, ok := container.(runtime.SliceableValue)
		if !ok {
			return nil, ev.Raise("TypeError", "'%s' object is not subscriptable", container.Type())
		}
		length := int64(0)
		if iv, ok := container.(runtime.IndexableValue); ok {
			length = iv.Length()
		}
		start, stop, step, err := ev.resolveSliceBounds(sl, env, length)
		if err != nil {
			return nil, err
		}
		return sv.GetSlice(start, stop, step)
	}

	idxVal, err := ev.evalExpr(n.Index, env)
	if err != nil {
		return nil, err
	}

	switch c := container.(type) {
	case *runtime.DictValue:
		v, ok := c.Get(idxVal)
		if !ok {
			return nil, ev.Raise("KeyError", "%s", idxVal.Repr())
		}
		return v, nil
	case runtime.IndexableValue:
		idx, err := ev.toInt64(idxVal)
		if err != nil {
			return nil, err
		}
		v, err := c.GetIndex(idx)
		if err != nil {
			return nil, ev.Raise("IndexError", "%s", err.Error())
		}
		return v, nil
	case *runtime.InstanceValue:
		return ev.invokeDunderValue(c, "__getitem__", []runtime.Value{idxVal})
	}
	return nil, ev.Raise("TypeError", "'%s' object is not subscriptable", container.Type())
}

// resolveSliceBounds evaluates a Slice node's (possibly absent) Start,
// Stop, Step expressions against length, defaulting absent bounds the way
// the reference language's slice semantics do.
func (ev *Evaluator) resolveSliceBounds(sl *ast.Slice, env *runtime.Environment, length int64) (start, stop, step int64, err error) {
	step = 1
	if sl.Step != nil {
		v, err := ev.evalExpr(sl.Step, env)
		if err != nil {
			return 0, 0, 0, err
		}
		step, err = ev.toInt64(v)
		if err != nil {
			return 0, 0, 0, err
		}
		if step == 0 {
			return 0, 0, 0, ev.Raise("ValueError", "slice step cannot be zero")
		}
	}
	if step > 0 {
		start, stop = 0, length
	} else {
		start, stop = length-1, -length-1
	}
	if sl.Start != nil {
		v, err := ev.evalExpr(sl.Start, env)
		if err != nil {
			return 0, 0, 0, err
		}
		start, err = ev.toInt64(v)
		if err != nil {
			return 0, 0, 0, err
		}
	}
	if sl.Stop != nil {
		v, err := ev.evalExpr(sl.Stop, env)
		if err != nil {
			return 0, 0, 0, err
		}
		stop, err = ev.toInt64(v)
		if err != nil {
			return 0, 0, 0, err
		}
	}
	return start, stop, step, nil
}

func (ev *Evaluator) getAttr(obj runtime.Value, name string) (runtime.Value, error) {
	return ev.resolveAttr(obj, name)
}
