package evaluator

import (
	"fmt"
	"hash/fnv"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/go-sli/internal/builtins"
	"github.com/cwbudde/go-sli/internal/lexer"
	"github.com/cwbudde/go-sli/internal/runtime"
)

// installBuiltins populates ev.Builtins with the language's built-in
// function namespace (len, range, map, ...) and the importable json/math
// modules. Core functions live here rather than in internal/builtins
// because they need to call back into the evaluator (ev.Raise,
// ev.callValue) to invoke user-defined __lt__/__iter__/key functions;
// internal/builtins only needs the runtime value model, so it stays free
// of this package to avoid a circular import.
func installBuiltins(ev *Evaluator) {
	def := func(name string, fn func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error)) {
		ev.Builtins.Define(name, runtime.NewBuiltin(name, func(_ runtime.Evaluator, args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
			return fn(args, kwargs)
		}))
	}

	def("len", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, ev.Raise("TypeError", "len() takes exactly one argument (%d given)", len(args))
		}
		iv, ok := args[0].(runtime.IndexableValue)
		if !ok {
			if d, ok := args[0].(*runtime.DictValue); ok {
				return runtime.NewInt(d.Len()), nil
			}
			if s, ok := args[0].(*runtime.SetValue); ok {
				return runtime.NewInt(s.Len()), nil
			}
			if s, ok := args[0].(*runtime.FrozenSetValue); ok {
				return runtime.NewInt(s.Len()), nil
			}
			return nil, ev.Raise("TypeError", "object of type '%s' has no len()", args[0].Type())
		}
		return runtime.NewInt(iv.Length()), nil
	})

	def("range", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		ints := make([]int64, len(args))
		for i, a := range args {
			n, err := ev.toInt64(a)
			if err != nil {
				return nil, err
			}
			ints[i] = n
		}
		switch len(ints) {
		case 1:
			return runtime.NewRange(0, ints[0], 1), nil
		case 2:
			return runtime.NewRange(ints[0], ints[1], 1), nil
		case 3:
			if ints[2] == 0 {
				return nil, ev.Raise("ValueError", "range() arg 3 must not be zero")
			}
			return runtime.NewRange(ints[0], ints[1], ints[2]), nil
		}
		return nil, ev.Raise("TypeError", "range expected 1 to 3 arguments, got %d", len(args))
	})

	def("iter", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) == 2 {
			return ev.makeSentinelIterator(args[0], args[1])
		}
		if len(args) != 1 {
			return nil, ev.Raise("TypeError", "iter() takes 1 or 2 arguments")
		}
		it, err := ev.getIterator(args[0])
		if err != nil {
			return nil, err
		}
		return &iteratorValue{it: it}, nil
	})

	def("next", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, ev.Raise("TypeError", "next expected at least 1 argument, got %d", len(args))
		}
		it, err := ev.getIterator(args[0])
		if err != nil {
			return nil, err
		}
		v, more, err := nextOrErr(it)
		if err != nil {
			return nil, err
		}
		if !more {
			if len(args) == 2 {
				return args[1], nil
			}
			return nil, ev.Raise("StopIteration", "")
		}
		return v, nil
	})

	def("map", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) < 2 {
			return nil, ev.Raise("TypeError", "map() must have at least two arguments")
		}
		fn := args[0]
		its := make([]runtime.Iterator, len(args)-1)
		for i, a := range args[1:] {
			it, err := ev.getIterator(a)
			if err != nil {
				return nil, err
			}
			its[i] = it
		}
		return &lazyIterator{next: func() (runtime.Value, bool, error) {
			row := make([]runtime.Value, len(its))
			for i, it := range its {
				v, more, err := nextOrErr(it)
				if err != nil {
					return nil, false, err
				}
				if !more {
					return nil, false, nil
				}
				row[i] = v
			}
			v, err := ev.callValue(fn, row, nil)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		}}, nil
	})

	def("filter", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 2 {
			return nil, ev.Raise("TypeError", "filter() takes exactly two arguments")
		}
		fn := args[0]
		it, err := ev.getIterator(args[1])
		if err != nil {
			return nil, err
		}
		return &lazyIterator{next: func() (runtime.Value, bool, error) {
			for {
				v, more, err := nextOrErr(it)
				if err != nil {
					return nil, false, err
				}
				if !more {
					return nil, false, nil
				}
				if _, ok := fn.(*runtime.NoneValue); ok {
					if v.Truthy() {
						return v, true, nil
					}
					continue
				}
				keep, err := ev.callValue(fn, []runtime.Value{v}, nil)
				if err != nil {
					return nil, false, err
				}
				if keep.Truthy() {
					return v, true, nil
				}
			}
		}}, nil
	})

	def("zip", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		its := make([]runtime.Iterator, len(args))
		for i, a := range args {
			it, err := ev.getIterator(a)
			if err != nil {
				return nil, err
			}
			its[i] = it
		}
		return &lazyIterator{next: func() (runtime.Value, bool, error) {
			row := make([]runtime.Value, len(its))
			for i, it := range its {
				v, more, err := nextOrErr(it)
				if err != nil {
					return nil, false, err
				}
				if !more {
					return nil, false, nil
				}
				row[i] = v
			}
			return runtime.NewTuple(row), true, nil
		}}, nil
	})

	def("enumerate", func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
		if len(args) < 1 {
			return nil, ev.Raise("TypeError", "enumerate() missing required argument")
		}
		it, err := ev.getIterator(args[0])
		if err != nil {
			return nil, err
		}
		start := int64(0)
		if len(args) > 1 {
			n, err := ev.toInt64(args[1])
			if err != nil {
				return nil, err
			}
			start = n
		} else if v, ok := kwargs["start"]; ok {
			n, err := ev.toInt64(v)
			if err != nil {
				return nil, err
			}
			start = n
		}
		i := start
		return &lazyIterator{next: func() (runtime.Value, bool, error) {
			v, more, err := nextOrErr(it)
			if err != nil {
				return nil, false, err
			}
			if !more {
				return nil, false, nil
			}
			idx := runtime.NewInt(i)
			i++
			return runtime.NewTuple([]runtime.Value{idx, v}), true, nil
		}}, nil
	})

	def("sorted", func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, ev.Raise("TypeError", "sorted() takes exactly one argument")
		}
		seq, err := ev.asSequence(args[0])
		if err != nil {
			return nil, err
		}
		out := append([]runtime.Value{}, seq...)
		if err := ev.sortValues(out, kwargs); err != nil {
			return nil, err
		}
		return runtime.NewList(out), nil
	})

	def("reversed", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, ev.Raise("TypeError", "reversed() takes exactly one argument")
		}
		seq, err := ev.asSequence(args[0])
		if err != nil {
			return nil, err
		}
		out := make([]runtime.Value, len(seq))
		for i, v := range seq {
			out[len(seq)-1-i] = v
		}
		return runtime.NewList(out), nil
	})

	def("print", func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
		sep := " "
		if v, ok := kwargs["sep"]; ok {
			sep = v.String()
		}
		end := "\n"
		if v, ok := kwargs["end"]; ok {
			end = v.String()
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Fprint(ev.Stdout, strings.Join(parts, sep), end)
		return runtime.None, nil
	})

	def("abs", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, ev.Raise("TypeError", "abs() takes exactly one argument")
		}
		switch v := args[0].(type) {
		case *runtime.IntValue:
			return runtime.NewIntFromBig(new(big.Int).Abs(v.Val)), nil
		case *runtime.FloatValue:
			if v.Value < 0 {
				return runtime.NewFloat(-v.Value), nil
			}
			return v, nil
		case *runtime.BoolValue:
			if v.Value {
				return runtime.NewInt(1), nil
			}
			return runtime.NewInt(0), nil
		}
		return nil, ev.Raise("TypeError", "bad operand type for abs(): '%s'", args[0].Type())
	})

	def("min", func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
		return ev.minMax(args, kwargs, true)
	})
	def("max", func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
		return ev.minMax(args, kwargs, false)
	})

	def("sum", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, ev.Raise("TypeError", "sum() takes 1 or 2 arguments")
		}
		seq, err := ev.asSequence(args[0])
		if err != nil {
			return nil, err
		}
		var total runtime.Value = runtime.NewInt(0)
		if len(args) == 2 {
			total = args[1]
		}
		for _, v := range seq {
			total, err = ev.applyBinaryOp("+", total, v, false)
			if err != nil {
				return nil, err
			}
		}
		return total, nil
	})

	def("any", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		seq, err := ev.asSequence(args[0])
		if err != nil {
			return nil, err
		}
		for _, v := range seq {
			if v.Truthy() {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	})

	def("all", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		seq, err := ev.asSequence(args[0])
		if err != nil {
			return nil, err
		}
		for _, v := range seq {
			if !v.Truthy() {
				return runtime.False, nil
			}
		}
		return runtime.True, nil
	})

	def("repr", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		return runtime.NewStr(args[0].Repr()), nil
	})

	def("str", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewStr(""), nil
		}
		return runtime.NewStr(args[0].String()), nil
	})

	def("bool", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.False, nil
		}
		return runtime.Bool(args[0].Truthy()), nil
	})

	def("int", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewInt(0), nil
		}
		return ev.toIntValue(args[0], args[1:])
	})

	def("float", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewFloat(0), nil
		}
		f, ok := asFloat(args[0])
		if ok {
			return runtime.NewFloat(f), nil
		}
		if s, ok := args[0].(*runtime.StrValue); ok {
			fv, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
			if err != nil {
				return nil, ev.Raise("ValueError", "could not convert string to float: %s", s.Repr())
			}
			return runtime.NewFloat(fv), nil
		}
		return nil, ev.Raise("TypeError", "float() argument must be a string or a number, not '%s'", args[0].Type())
	})

	def("list", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewList(nil), nil
		}
		seq, err := ev.asSequence(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.NewList(append([]runtime.Value{}, seq...)), nil
	})

	def("tuple", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewTuple(nil), nil
		}
		seq, err := ev.asSequence(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.NewTuple(seq), nil
	})

	def("set", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		s := runtime.NewSet()
		if len(args) == 0 {
			return s, nil
		}
		seq, err := ev.asSequence(args[0])
		if err != nil {
			return nil, err
		}
		for _, v := range seq {
			if err := s.Add(v); err != nil {
				return nil, ev.Raise("TypeError", "%s", err.Error())
			}
		}
		return s, nil
	})

	def("frozenset", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			fs, _ := runtime.NewFrozenSet(nil)
			return fs, nil
		}
		seq, err := ev.asSequence(args[0])
		if err != nil {
			return nil, err
		}
		fs, err := runtime.NewFrozenSet(seq)
		if err != nil {
			return nil, ev.Raise("TypeError", "%s", err.Error())
		}
		return fs, nil
	})

	def("dict", func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
		d := runtime.NewDict()
		if len(args) == 1 {
			switch src := args[0].(type) {
			case *runtime.DictValue:
				for _, k := range src.Keys() {
					v, _ := src.Get(k)
					d.Set(k, v)
				}
			default:
				seq, err := ev.asSequence(args[0])
				if err != nil {
					return nil, err
				}
				for _, pair := range seq {
					kv, err := ev.asSequence(pair)
					if err != nil || len(kv) != 2 {
						return nil, ev.Raise("ValueError", "dictionary update sequence element is not a pair")
					}
					d.Set(kv[0], kv[1])
				}
			}
		}
		for k, v := range kwargs {
			d.Set(runtime.NewStr(k), v)
		}
		return d, nil
	})

	def("bytes", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewBytes(nil), nil
		}
		switch v := args[0].(type) {
		case *runtime.IntValue:
			return runtime.NewBytes(make([]byte, v.Val.Int64())), nil
		case *runtime.StrValue:
			return runtime.NewBytes([]byte(v.Value)), nil
		case *runtime.ListValue:
			out := make([]byte, len(v.Elements))
			for i, e := range v.Elements {
				n, err := ev.toInt64(e)
				if err != nil {
					return nil, err
				}
				out[i] = byte(n)
			}
			return runtime.NewBytes(out), nil
		}
		return nil, ev.Raise("TypeError", "cannot convert '%s' object to bytes", args[0].Type())
	})

	def("format", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, ev.Raise("TypeError", "format() takes 1 or 2 arguments")
		}
		spec := ""
		if len(args) == 2 {
			s, ok := args[1].(*runtime.StrValue)
			if !ok {
				return nil, ev.Raise("TypeError", "format spec must be a str")
			}
			spec = s.Value
		}
		out, err := ev.applyFormatSpec(args[0].String(), args[0], spec)
		if err != nil {
			return nil, err
		}
		return runtime.NewStr(out), nil
	})

	def("hash", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		h, ok := args[0].(runtime.HashableValue)
		if !ok {
			return nil, ev.Raise("TypeError", "unhashable type: '%s'", args[0].Type())
		}
		key, err := h.HashKey()
		if err != nil {
			return nil, ev.Raise("TypeError", "%s", err.Error())
		}
		if n, ok := key.(int64); ok {
			return runtime.NewInt(n), nil
		}
		f := fnv.New64a()
		fmt.Fprintf(f, "%v", key)
		return runtime.NewInt(int64(f.Sum64())), nil
	})

	def("id", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		addr := strings.TrimPrefix(fmt.Sprintf("%p", args[0]), "0x")
		n, _ := strconv.ParseInt(addr, 16, 64)
		return runtime.NewInt(n), nil
	})

	def("callable", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		_, ok := args[0].(runtime.CallableValue)
		return runtime.Bool(ok), nil
	})

	def("type", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, ev.Raise("TypeError", "type() takes exactly one argument")
		}
		switch v := args[0].(type) {
		case *runtime.ExceptionValue:
			return v.Class, nil
		case *runtime.InstanceValue:
			return v.Class, nil
		default:
			return runtime.BuiltinType(v.Type()), nil
		}
	})

	def("isinstance", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 2 {
			return nil, ev.Raise("TypeError", "isinstance() takes exactly two arguments")
		}
		return runtime.Bool(ev.isInstanceOf(args[0], args[1])), nil
	})

	def("issubclass", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 2 {
			return nil, ev.Raise("TypeError", "issubclass() takes exactly two arguments")
		}
		cls, ok := args[0].(*runtime.ClassValue)
		if !ok {
			return nil, ev.Raise("TypeError", "issubclass() arg 1 must be a class")
		}
		switch other := args[1].(type) {
		case *runtime.ClassValue:
			return runtime.Bool(cls.IsSubclassOf(other)), nil
		}
		return runtime.False, nil
	})

	def("getattr", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) < 2 || len(args) > 3 {
			return nil, ev.Raise("TypeError", "getattr expected 2 or 3 arguments")
		}
		name, ok := args[1].(*runtime.StrValue)
		if !ok {
			return nil, ev.Raise("TypeError", "getattr(): attribute name must be string")
		}
		v, err := ev.resolveAttr(args[0], name.Value)
		if err != nil {
			if len(args) == 3 {
				return args[2], nil
			}
			return nil, err
		}
		return v, nil
	})

	def("setattr", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 3 {
			return nil, ev.Raise("TypeError", "setattr expected 3 arguments")
		}
		name, ok := args[1].(*runtime.StrValue)
		if !ok {
			return nil, ev.Raise("TypeError", "setattr(): attribute name must be string")
		}
		if err := ev.setAttr(args[0], name.Value, args[2]); err != nil {
			return nil, err
		}
		return runtime.None, nil
	})

	def("hasattr", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 2 {
			return nil, ev.Raise("TypeError", "hasattr expected 2 arguments")
		}
		name, ok := args[1].(*runtime.StrValue)
		if !ok {
			return nil, ev.Raise("TypeError", "hasattr(): attribute name must be string")
		}
		_, err := ev.resolveAttr(args[0], name.Value)
		return runtime.Bool(err == nil), nil
	})

	def("delattr", func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		if len(args) != 2 {
			return nil, ev.Raise("TypeError", "delattr expected 2 arguments")
		}
		name, ok := args[1].(*runtime.StrValue)
		if !ok {
			return nil, ev.Raise("TypeError", "delattr(): attribute name must be string")
		}
		holder, ok := args[0].(runtime.AttributeHolder)
		if !ok {
			return nil, ev.Raise("TypeError", "'%s' object has no attributes", args[0].Type())
		}
		if err := holder.DelAttr(name.Value); err != nil {
			return nil, ev.Raise("AttributeError", "%s", err.Error())
		}
		return runtime.None, nil
	})

	installJSONModule(ev)
	installMathModule(ev)
}

// iteratorValue wraps a plain runtime.Iterator as a first-class Value so
// `iter(x)` returns something `next()`/`for` can consume like any other
// iterable.
type iteratorValue struct{ it runtime.Iterator }

func (i *iteratorValue) Type() string           { return "iterator" }
func (i *iteratorValue) String() string         { return "<iterator>" }
func (i *iteratorValue) Repr() string           { return i.String() }
func (i *iteratorValue) Truthy() bool           { return true }
func (i *iteratorValue) Iterator() runtime.Iterator { return i.it }

// lazyIterator backs map/filter/zip/enumerate: next reports (value, true,
// nil) per element, (_, false, nil) on exhaustion, or a non-nil error if
// the driving callable raised.
type lazyIterator struct {
	next func() (runtime.Value, bool, error)
}

func (l *lazyIterator) Type() string   { return "iterator" }
func (l *lazyIterator) String() string { return "<iterator>" }
func (l *lazyIterator) Repr() string   { return l.String() }
func (l *lazyIterator) Truthy() bool   { return true }

func (l *lazyIterator) Iterator() runtime.Iterator { return &lazyIteratorAdapter{l: l} }

// lazyIteratorAdapter exposes lazyIterator's three-value next() through the
// Iterator/FailableIterator protocol, so an error raised by the driving
// callable (or propagated from an underlying generator) survives a generic
// `for`/getIterator consumer instead of looking like plain exhaustion.
type lazyIteratorAdapter struct {
	l   *lazyIterator
	err error
}

func (a *lazyIteratorAdapter) Next() (runtime.Value, bool) {
	v, more, err := a.l.next()
	if err != nil {
		a.err = err
		return nil, false
	}
	return v, more
}

func (a *lazyIteratorAdapter) Err() error { return a.err }

func (ev *Evaluator) makeSentinelIterator(fn, sentinel runtime.Value) (runtime.Value, error) {
	return &lazyIterator{next: func() (runtime.Value, bool, error) {
		v, err := ev.callValue(fn, nil, nil)
		if err != nil {
			return nil, false, err
		}
		eq, err := ev.valuesEqual(v, sentinel)
		if err != nil {
			return nil, false, err
		}
		if eq {
			return nil, false, nil
		}
		return v, true, nil
	}}, nil
}

// sortValues sorts vals in place using `key`/`reverse` kwargs the way
// sorted()/list.sort() accept them, comparing via __lt__/OrderableValue.
func (ev *Evaluator) sortValues(vals []runtime.Value, kwargs map[string]runtime.Value) error {
	keyFn, hasKey := kwargs["key"]
	reverse := false
	if v, ok := kwargs["reverse"]; ok {
		reverse = v.Truthy()
	}
	keyed := make([]runtime.Value, len(vals))
	for i, v := range vals {
		if hasKey {
			kv, err := ev.callValue(keyFn, []runtime.Value{v}, nil)
			if err != nil {
				return err
			}
			keyed[i] = kv
		} else {
			keyed[i] = v
		}
	}
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	var sortErr error
	sort.SliceStable(order, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		i, j := order[a], order[b]
		less, err := ev.compareOp(lexer.LT, keyed[i], keyed[j])
		if err != nil {
			sortErr = err
			return false
		}
		if reverse {
			return !less && !mustEq(ev, keyed[i], keyed[j])
		}
		return less
	})
	if sortErr != nil {
		return sortErr
	}
	out := make([]runtime.Value, len(vals))
	for i, idx := range order {
		out[i] = vals[idx]
	}
	copy(vals, out)
	return nil
}

func mustEq(ev *Evaluator, a, b runtime.Value) bool {
	eq, err := ev.valuesEqual(a, b)
	return err == nil && eq
}

func (ev *Evaluator) minMax(args []runtime.Value, kwargs map[string]runtime.Value, wantMin bool) (runtime.Value, error) {
	var seq []runtime.Value
	if len(args) == 1 {
		s, err := ev.asSequence(args[0])
		if err != nil {
			return nil, err
		}
		seq = s
	} else {
		seq = args
	}
	if len(seq) == 0 {
		if v, ok := kwargs["default"]; ok {
			return v, nil
		}
		return nil, ev.Raise("ValueError", "min()/max() arg is an empty sequence")
	}
	keyFn, hasKey := kwargs["key"]
	keyOf := func(v runtime.Value) (runtime.Value, error) {
		if !hasKey {
			return v, nil
		}
		return ev.callValue(keyFn, []runtime.Value{v}, nil)
	}
	best := seq[0]
	bestKey, err := keyOf(best)
	if err != nil {
		return nil, err
	}
	for _, v := range seq[1:] {
		k, err := keyOf(v)
		if err != nil {
			return nil, err
		}
		less, err := ev.compareOp(lexer.LT, k, bestKey)
		if err != nil {
			return nil, err
		}
		if (wantMin && less) || (!wantMin && !less && !mustEq(ev, k, bestKey)) {
			best, bestKey = v, k
		}
	}
	return best, nil
}

// toIntValue implements int(x) / int(x, base).
func (ev *Evaluator) toIntValue(v runtime.Value, rest []runtime.Value) (runtime.Value, error) {
	base := 10
	if len(rest) == 1 {
		n, err := ev.toInt64(rest[0])
		if err != nil {
			return nil, err
		}
		base = int(n)
	}
	switch x := v.(type) {
	case *runtime.IntValue:
		return x, nil
	case *runtime.BoolValue:
		if x.Value {
			return runtime.NewInt(1), nil
		}
		return runtime.NewInt(0), nil
	case *runtime.FloatValue:
		bi, _ := x.AsInt()
		return runtime.NewIntFromBig(bi.Int), nil
	case *runtime.StrValue:
		iv, err := runtime.NewIntFromString(strings.TrimSpace(x.Value), base)
		if err != nil {
			return nil, ev.Raise("ValueError", "invalid literal for int() with base %d: %s", base, x.Repr())
		}
		return iv, nil
	}
	return nil, ev.Raise("TypeError", "int() argument must be a string or a number, not '%s'", v.Type())
}

// isInstanceOf implements isinstance(), including the language's
// bool-is-a-subtype-of-int rule and tuple-of-types matching.
func (ev *Evaluator) isInstanceOf(obj, cls runtime.Value) bool {
	if t, ok := cls.(*runtime.TupleValue); ok {
		for _, c := range t.Elements {
			if ev.isInstanceOf(obj, c) {
				return true
			}
		}
		return false
	}
	switch c := cls.(type) {
	case *runtime.ClassValue:
		var instCls *runtime.ClassValue
		switch o := obj.(type) {
		case *runtime.ExceptionValue:
			instCls = o.Class
		case *runtime.InstanceValue:
			instCls = o.Class
		default:
			return false
		}
		return instCls.IsSubclassOf(c)
	case *runtime.BuiltinTypeValue:
		if c.Name == "int" {
			if _, ok := obj.(*runtime.BoolValue); ok {
				return true
			}
		}
		return obj.Type() == c.Name
	}
	return false
}

func installJSONModule(ev *Evaluator) {
	mod := runtime.NewModule("json", map[string]runtime.Value{
		"loads": runtime.NewBuiltin("loads", func(_ runtime.Evaluator, args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "loads() takes exactly one argument")
			}
			s, ok := args[0].(*runtime.StrValue)
			if !ok {
				return nil, ev.Raise("TypeError", "the JSON object must be str")
			}
			v, err := builtins.JSONLoads(s.Value)
			if err != nil {
				return nil, ev.Raise("ValueError", "%s", err.Error())
			}
			return v, nil
		}),
		"dumps": runtime.NewBuiltin("dumps", func(_ runtime.Evaluator, args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "dumps() takes exactly one argument")
			}
			indent := -1
			if v, ok := kwargs["indent"]; ok {
				if n, ok := v.(*runtime.IntValue); ok {
					indent = int(n.Val.Int64())
				}
			}
			out, err := builtins.JSONDumps(args[0], indent)
			if err != nil {
				return nil, ev.Raise("TypeError", "%s", err.Error())
			}
			return runtime.NewStr(out), nil
		}),
	})
	ev.Builtins.Define("json", mod)
}

func installMathModule(ev *Evaluator) {
	members := map[string]runtime.Value{}
	for name, v := range builtins.MathConstants() {
		members[name] = v
	}
	for name, fn := range builtins.MathFunctions() {
		fn := fn
		members[name] = runtime.NewBuiltin(name, func(_ runtime.Evaluator, args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			floats := make([]float64, len(args))
			for i, a := range args {
				f, err := builtins.ToFloat(a)
				if err != nil {
					return nil, ev.Raise("TypeError", "%s", err.Error())
				}
				floats[i] = f
			}
			result, err := fn(floats...)
			if err != nil {
				return nil, ev.Raise("ValueError", "%s", err.Error())
			}
			return runtime.NewFloat(result), nil
		})
	}
	members["isnan"] = runtime.NewBuiltin("isnan", func(_ runtime.Evaluator, args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		f, err := builtins.ToFloat(args[0])
		if err != nil {
			return nil, ev.Raise("TypeError", "%s", err.Error())
		}
		return runtime.Bool(builtins.IsNaN(f)), nil
	})
	members["isinf"] = runtime.NewBuiltin("isinf", func(_ runtime.Evaluator, args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
		f, err := builtins.ToFloat(args[0])
		if err != nil {
			return nil, ev.Raise("TypeError", "%s", err.Error())
		}
		return runtime.Bool(builtins.IsInf(f)), nil
	})
	ev.Builtins.Define("math", runtime.NewModule("math", members))
}
