package evaluator

import (
	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/runtime"
)

// assignTo binds val to an assignment target, handling plain names,
// subscript/attribute targets, and (possibly starred) tuple/list
// destructuring.
func (ev *Evaluator) assignTo(target ast.Expression, val runtime.Value, env *runtime.Environment) error {
	switch t := target.(type) {
	case *ast.Identifier:
		ev.bindName(t.Name, val, env)
		return nil

	case *ast.Subscript:
		container, err := ev.evalExpr(t.Value, env)
		if err != nil {
			return err
		}
		return ev.setIndex(container, t.Index, val, env)

	case *ast.Attribute:
		obj, err := ev.evalExpr(t.Value, env)
		if err != nil {
			return err
		}
		return ev.setAttr(obj, t.Attr, val)

	case *ast.TupleLiteral:
		return ev.destructure(t.Elements, val, env)
	case *ast.ListLiteral:
		return ev.destructure(t.Elements, val, env)

	case *ast.Starred:
		return ev.assignTo(t.Value, val, env)
	}
	return ev.Raise("SyntaxError", "cannot assign to this expression")
}

// bindName honors `global`/`nonlocal` declarations made in this exact
// frame; otherwise it always creates/overwrites a local binding, matching
// the reference language's "assignment makes a name local unless declared
// otherwise" rule.
func (ev *Evaluator) bindName(name string, val runtime.Value, env *runtime.Environment) {
	switch {
	case env.IsDeclaredGlobal(name):
		env.Globals().Define(name, val)
	case env.IsDeclaredNonlocal(name):
		if env.Outer() != nil {
			if err := env.Outer().Set(name, val); err == nil {
				return
			}
		}
		env.Define(name, val)
	default:
		env.Define(name, val)
	}
}

func (ev *Evaluator) destructure(targets []ast.Expression, val runtime.Value, env *runtime.Environment) error {
	seq, err := ev.asSequence(val)
	if err != nil {
		return err
	}

	starIdx := -1
	for i, t := range targets {
		if _, ok := t.(*ast.Starred); ok {
			starIdx = i
			break
		}
	}

	if starIdx == -1 {
		if len(seq) > len(targets) {
			return ev.Raise("ValueError", "too many values to unpack (expected %d, got %d)", len(targets), len(seq))
		}
		if len(seq) < len(targets) {
			return ev.Raise("ValueError", "not enough values to unpack (expected %d, got %d)", len(targets), len(seq))
		}
		for i, t := range targets {
			if err := ev.assignTo(t, seq[i], env); err != nil {
				return err
			}
		}
		return nil
	}

	before := starIdx
	after := len(targets) - starIdx - 1
	if len(seq) < before+after {
		return ev.Raise("ValueError", "not enough values to unpack")
	}
	for i := 0; i < before; i++ {
		if err := ev.assignTo(targets[i], seq[i], env); err != nil {
			return err
		}
	}
	mid := seq[before : len(seq)-after]
	if err := ev.assignTo(targets[starIdx], runtime.NewList(append([]runtime.Value{}, mid...)), env); err != nil {
		return err
	}
	for i := 0; i < after; i++ {
		if err := ev.assignTo(targets[starIdx+1+i], seq[len(seq)-after+i], env); err != nil {
			return err
		}
	}
	return nil
}

// asSequence materializes any iterable value into a slice, for
// destructuring assignment, `*` unpacking at call sites, and the
// list/tuple/set/sorted/reversed builtins, which all call through here.
func (ev *Evaluator) asSequence(val runtime.Value) ([]runtime.Value, error) {
	it, err := ev.getIterator(val)
	if err != nil {
		return nil, ev.Raise("TypeError", "cannot unpack non-iterable '%s' object", val.Type())
	}
	var out []runtime.Value
	for {
		v, more, err := nextOrErr(it)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		out = append(out, v)
	}
	return out, nil
}

func (ev *Evaluator) setIndex(container runtime.Value, indexExpr ast.Expression, val runtime.Value, env *runtime.Environment) error {
	if sl, ok := indexExpr.(*ast.Slice); ok {
		return ev.setSlice(container, sl, val, env)
	}
	idxVal, err := ev.evalExpr(indexExpr, env)
	if err != nil {
		return err
	}

	switch c := container.(type) {
	case runtime.MutableSequenceValue:
		idx, err := ev.toInt64(idxVal)
		if err != nil {
			return err
		}
		if err := c.SetIndex(idx, val); err != nil {
			return ev.Raise("IndexError", "%s", err.Error())
		}
		return nil
	case *runtime.DictValue:
		if err := c.Set(idxVal, val); err != nil {
			return ev.Raise("TypeError", "%s", err.Error())
		}
		return nil
	case *runtime.InstanceValue:
		return ev.invokeDunder(c, "__setitem__", []runtime.Value{idxVal, val})
	}
	return ev.Raise("TypeError", "'%s' object does not support item assignment", container.Type())
}

func (ev *Evaluator) setSlice(container runtime.Value, sl *ast.Slice, val runtime.Value, env *runtime.Environment) error {
	list, ok := container.(*runtime.ListValue)
	if !ok {
		return ev.Raise("TypeError", "'%s' object does not support slice assignment", container.Type())
	}
	start, stop, step, err := ev.resolveSliceBounds(sl, env, int64(len(list.Elements)))
	if err != nil {
		return err
	}
	replacement, err := ev.asSequence(val)
	if err != nil {
		return err
	}
	if step != 1 {
		return ev.Raise("NotImplementedError", "extended slice assignment is not supported")
	}
	lo, hi := clampRange(start, stop, int64(len(list.Elements)))
	out := append([]runtime.Value{}, list.Elements[:lo]...)
	out = append(out, replacement...)
	out = append(out, list.Elements[hi:]...)
	list.Elements = out
	return nil
}

func clampRange(start, stop, length int64) (int64, int64) {
	if start < 0 {
		start = 0
	}
	if start > length {
		start = length
	}
	if stop < start {
		stop = start
	}
	if stop > length {
		stop = length
	}
	return start, stop
}

func (ev *Evaluator) deleteIndex(container runtime.Value, indexExpr ast.Expression, env *runtime.Environment) error {
	idxVal, err := ev.evalExpr(indexExpr, env)
	if err != nil {
		return err
	}
	switch c := container.(type) {
	case *runtime.ListValue:
		idx, err := ev.toInt64(idxVal)
		if err != nil {
			return err
		}
		i, err := normalizeIdxOrErr(ev, idx, int64(len(c.Elements)))
		if err != nil {
			return err
		}
		c.Elements = append(c.Elements[:i], c.Elements[i+1:]...)
		return nil
	case *runtime.DictValue:
		ok, err := c.Delete(idxVal)
		if err != nil {
			return ev.Raise("TypeError", "%s", err.Error())
		}
		if !ok {
			return ev.Raise("KeyError", "%s", idxVal.Repr())
		}
		return nil
	}
	return ev.Raise("TypeError", "'%s' object doesn't support item deletion", container.Type())
}

func normalizeIdxOrErr(ev *Evaluator, idx, length int64) (int64, error) {
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, ev.Raise("IndexError", "list assignment index out of range")
	}
	return idx, nil
}

func (ev *Evaluator) setAttr(obj runtime.Value, name string, val runtime.Value) error {
	if holder, ok := obj.(runtime.AttributeHolder); ok {
		if err := holder.SetAttr(name, val); err != nil {
			return ev.Raise("AttributeError", "%s", err.Error())
		}
		return nil
	}
	return ev.Raise("AttributeError", "'%s' object has no attributes", obj.Type())
}
