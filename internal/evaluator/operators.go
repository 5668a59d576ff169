package evaluator

import (
	"math"
	"math/big"
	"strings"

	"github.com/cwbudde/go-sli/internal/runtime"
)

// resolveAttr implements attribute lookup with the descriptor protocol: a
// FunctionValue found on a class (rather than on the instance's own Fields)
// is bound to the instance before being handed back, the way method access
// works for ordinary (non-static, non-class) methods.
func (ev *Evaluator) resolveAttr(obj runtime.Value, name string) (runtime.Value, error) {
	switch o := obj.(type) {
	case *runtime.InstanceValue:
		if name == "__class__" {
			return o.Class, nil
		}
		if v, ok := o.Fields[name]; ok {
			return v, nil
		}
		v, _, ok := o.Class.LookupMRO(name)
		if !ok {
			if getattr, _, ok := o.Class.LookupMRO("__getattr__"); ok {
				if fn, ok := getattr.(*runtime.FunctionValue); ok {
					return ev.callValue(fn, []runtime.Value{o, runtime.NewStr(name)}, nil)
				}
			}
			return nil, ev.Raise("AttributeError", "'%s' object has no attribute '%s'", o.Class.Name, name)
		}
		if fn, ok := v.(*runtime.FunctionValue); ok {
			return &runtime.BoundMethodValue{Receiver: o, Func: fn}, nil
		}
		return v, nil
	case *runtime.SuperValue:
		v, ok := o.GetAttr(name)
		if !ok {
			return nil, ev.Raise("AttributeError", "'super' object has no attribute '%s'", name)
		}
		if fn, ok := v.(*runtime.FunctionValue); ok {
			return &runtime.BoundMethodValue{Receiver: o.Receiver, Func: fn}, nil
		}
		return v, nil
	case runtime.AttributeHolder:
		v, ok := o.GetAttr(name)
		if !ok {
			return nil, ev.Raise("AttributeError", "'%s' object has no attribute '%s'", obj.Type(), name)
		}
		if _, ok := obj.(*runtime.ClassValue); ok {
			if fn, ok := v.(*runtime.FunctionValue); ok {
				return fn, nil
			}
		}
		return v, nil
	}
	if m, ok := ev.lookupBuiltinMethod(obj, name); ok {
		return m, nil
	}
	return nil, ev.Raise("AttributeError", "'%s' object has no attribute '%s'", obj.Type(), name)
}

// invokeDunderValue calls a dunder method looked up via an instance's class
// MRO, returning its single result (used for unary operators).
func (ev *Evaluator) invokeDunderValue(inst *runtime.InstanceValue, name string, args []runtime.Value) (runtime.Value, error) {
	fn, _, ok := inst.Class.LookupMRO(name)
	if !ok {
		return nil, ev.Raise("TypeError", "'%s' object does not support this operation", inst.Class.Name)
	}
	full := append([]runtime.Value{inst}, args...)
	return ev.callValue(fn, full, nil)
}

// invokeDunder is the statement-level sibling of invokeDunderValue, used
// where only success/failure (not a return value) matters at the call
// site, e.g. __setitem__.
func (ev *Evaluator) invokeDunder(inst *runtime.InstanceValue, name string, args []runtime.Value) error {
	_, err := ev.invokeDunderValue(inst, name, args)
	return err
}

// dunderNames maps a binary operator's source spelling to its forward,
// reflected, and in-place (augmented-assignment) dunder method names.
var dunderNames = map[string][3]string{
	"+":  {"__add__", "__radd__", "__iadd__"},
	"-":  {"__sub__", "__rsub__", "__isub__"},
	"*":  {"__mul__", "__rmul__", "__imul__"},
	"/":  {"__truediv__", "__rtruediv__", "__itruediv__"},
	"//": {"__floordiv__", "__rfloordiv__", "__ifloordiv__"},
	"%":  {"__mod__", "__rmod__", "__imod__"},
	"**": {"__pow__", "__rpow__", "__ipow__"},
	"&":  {"__and__", "__rand__", "__iand__"},
	"|":  {"__or__", "__ror__", "__ior__"},
	"^":  {"__xor__", "__rxor__", "__ixor__"},
	"<<": {"__lshift__", "__rlshift__", "__ilshift__"},
	">>": {"__rshift__", "__rrshift__", "__irshift__"},
}

// applyBinaryOp implements arithmetic/bitwise/string operators. isAugmented
// selects the in-place dunder (__iadd__ etc.) before falling back to the
// plain one, mirroring the reference language's augmented-assignment
// protocol. Instance operands dispatch through dunderNames; built-in
// operand pairs use the direct Go implementations below.
func (ev *Evaluator) applyBinaryOp(op string, left, right runtime.Value, isAugmented bool) (runtime.Value, error) {
	if linst, ok := left.(*runtime.InstanceValue); ok {
		if names, ok := dunderNames[op]; ok {
			if isAugmented {
				if fn, _, ok := linst.Class.LookupMRO(names[2]); ok {
					return ev.callValue(fn, []runtime.Value{linst, right}, nil)
				}
			}
			if fn, _, ok := linst.Class.LookupMRO(names[0]); ok {
				return ev.callValue(fn, []runtime.Value{linst, right}, nil)
			}
		}
	}
	if rinst, ok := right.(*runtime.InstanceValue); ok {
		if names, ok := dunderNames[op]; ok {
			if fn, _, ok := rinst.Class.LookupMRO(names[1]); ok {
				return ev.callValue(fn, []runtime.Value{rinst, left}, nil)
			}
		}
	}

	switch op {
	case "+":
		return ev.opAdd(left, right)
	case "-":
		return ev.opArith(left, right, func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }, func(a, b float64) float64 { return a - b }, "-")
	case "*":
		return ev.opMul(left, right)
	case "/":
		return ev.opTrueDiv(left, right)
	case "//":
		return ev.opFloorDiv(left, right)
	case "%":
		return ev.opMod(left, right)
	case "**":
		return ev.opPow(left, right)
	case "&":
		return ev.opBitwise(left, right, func(a, b *big.Int) *big.Int { return new(big.Int).And(a, b) }, "&")
	case "|":
		return ev.opBitwise(left, right, func(a, b *big.Int) *big.Int { return new(big.Int).Or(a, b) }, "|")
	case "^":
		return ev.opBitwise(left, right, func(a, b *big.Int) *big.Int { return new(big.Int).Xor(a, b) }, "^")
	case "<<":
		return ev.opShift(left, right, true)
	case ">>":
		return ev.opShift(left, right, false)
	}
	return nil, ev.Raise("TypeError", "unsupported operand type(s) for %s: '%s' and '%s'", op, left.Type(), right.Type())
}

func asBigInt(v runtime.Value) (*big.Int, bool) {
	n, ok := v.(runtime.NumericValue)
	if !ok {
		return nil, false
	}
	iv, ok := n.AsInt()
	if !ok {
		return nil, false
	}
	return iv.Int, true
}

func isFloaty(v runtime.Value) bool {
	_, ok := v.(*runtime.FloatValue)
	return ok
}

func asFloat(v runtime.Value) (float64, bool) {
	n, ok := v.(runtime.NumericValue)
	if !ok {
		return 0, false
	}
	return n.AsFloat()
}

func (ev *Evaluator) opAdd(left, right runtime.Value) (runtime.Value, error) {
	switch l := left.(type) {
	case *runtime.StrValue:
		r, ok := right.(*runtime.StrValue)
		if !ok {
			return nil, ev.Raise("TypeError", "can only concatenate str (not \"%s\") to str", right.Type())
		}
		return runtime.NewStr(l.Value + r.Value), nil
	case *runtime.BytesValue:
		r, ok := right.(*runtime.BytesValue)
		if !ok {
			return nil, ev.Raise("TypeError", "can't concat %s to bytes", right.Type())
		}
		out := append(append([]byte{}, l.Value...), r.Value...)
		return runtime.NewBytes(out), nil
	case *runtime.ListValue:
		r, ok := right.(*runtime.ListValue)
		if !ok {
			return nil, ev.Raise("TypeError", "can only concatenate list (not \"%s\") to list", right.Type())
		}
		out := append(append([]runtime.Value{}, l.Elements...), r.Elements...)
		return runtime.NewList(out), nil
	case *runtime.TupleValue:
		r, ok := right.(*runtime.TupleValue)
		if !ok {
			return nil, ev.Raise("TypeError", "can only concatenate tuple (not \"%s\") to tuple", right.Type())
		}
		out := append(append([]runtime.Value{}, l.Elements...), r.Elements...)
		return runtime.NewTuple(out), nil
	}
	return ev.opArith(left, right, func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }, func(a, b float64) float64 { return a + b }, "+")
}

func (ev *Evaluator) opMul(left, right runtime.Value) (runtime.Value, error) {
	if s, ok := left.(*runtime.StrValue); ok {
		if n, ok := asBigInt(right); ok {
			return runtime.NewStr(strings.Repeat(s.Value, int(n.Int64()))), nil
		}
	}
	if s, ok := right.(*runtime.StrValue); ok {
		if n, ok := asBigInt(left); ok {
			return runtime.NewStr(strings.Repeat(s.Value, int(n.Int64()))), nil
		}
	}
	if l, ok := left.(*runtime.ListValue); ok {
		if n, ok := asBigInt(right); ok {
			return runtime.NewList(repeatValues(l.Elements, int(n.Int64()))), nil
		}
	}
	if l, ok := right.(*runtime.ListValue); ok {
		if n, ok := asBigInt(left); ok {
			return runtime.NewList(repeatValues(l.Elements, int(n.Int64()))), nil
		}
	}
	return ev.opArith(left, right, func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }, func(a, b float64) float64 { return a * b }, "*")
}

func repeatValues(elems []runtime.Value, n int) []runtime.Value {
	if n <= 0 {
		return nil
	}
	out := make([]runtime.Value, 0, len(elems)*n)
	for i := 0; i < n; i++ {
		out = append(out, elems...)
	}
	return out
}

func (ev *Evaluator) opArith(left, right runtime.Value, intOp func(a, b *big.Int) *big.Int, floatOp func(a, b float64) float64, sym string) (runtime.Value, error) {
	if isFloaty(left) || isFloaty(right) {
		lf, ok1 := asFloat(left)
		rf, ok2 := asFloat(right)
		if ok1 && ok2 {
			return runtime.NewFloat(floatOp(lf, rf)), nil
		}
	} else if li, ok1 := asBigInt(left); ok1 {
		if ri, ok2 := asBigInt(right); ok2 {
			return runtime.NewIntFromBig(intOp(li, ri)), nil
		}
	}
	return nil, ev.Raise("TypeError", "unsupported operand type(s) for %s: '%s' and '%s'", sym, left.Type(), right.Type())
}

func (ev *Evaluator) opBitwise(left, right runtime.Value, intOp func(a, b *big.Int) *big.Int, sym string) (runtime.Value, error) {
	li, ok1 := asBigInt(left)
	ri, ok2 := asBigInt(right)
	if !ok1 || !ok2 || isFloaty(left) || isFloaty(right) {
		return nil, ev.Raise("TypeError", "unsupported operand type(s) for %s: '%s' and '%s'", sym, left.Type(), right.Type())
	}
	return runtime.NewIntFromBig(intOp(li, ri)), nil
}

func (ev *Evaluator) opShift(left, right runtime.Value, isLeft bool) (runtime.Value, error) {
	li, ok1 := asBigInt(left)
	ri, ok2 := asBigInt(right)
	if !ok1 || !ok2 {
		sym := "<<"
		if !isLeft {
			sym = ">>"
		}
		return nil, ev.Raise("TypeError", "unsupported operand type(s) for %s: '%s' and '%s'", sym, left.Type(), right.Type())
	}
	if ri.Sign() < 0 {
		return nil, ev.Raise("ValueError", "negative shift count")
	}
	n := uint(ri.Uint64())
	if isLeft {
		return runtime.NewIntFromBig(new(big.Int).Lsh(li, n)), nil
	}
	return runtime.NewIntFromBig(new(big.Int).Rsh(li, n)), nil
}

func (ev *Evaluator) opTrueDiv(left, right runtime.Value) (runtime.Value, error) {
	rf, ok2 := asFloat(right)
	lf, ok1 := asFloat(left)
	if !ok1 || !ok2 {
		return nil, ev.Raise("TypeError", "unsupported operand type(s) for /: '%s' and '%s'", left.Type(), right.Type())
	}
	if rf == 0 {
		return nil, ev.Raise("ZeroDivisionError", "division by zero")
	}
	return runtime.NewFloat(lf / rf), nil
}

func (ev *Evaluator) opFloorDiv(left, right runtime.Value) (runtime.Value, error) {
	if !isFloaty(left) && !isFloaty(right) {
		li, ok1 := asBigInt(left)
		ri, ok2 := asBigInt(right)
		if ok1 && ok2 {
			if ri.Sign() == 0 {
				return nil, ev.Raise("ZeroDivisionError", "integer division or modulo by zero")
			}
			q := new(big.Int)
			m := new(big.Int)
			q.DivMod(li, ri, m)
			if ri.Sign() < 0 && m.Sign() != 0 {
				q.Sub(q, big.NewInt(1))
			}
			return runtime.NewIntFromBig(q), nil
		}
	}
	lf, ok1 := asFloat(left)
	rf, ok2 := asFloat(right)
	if !ok1 || !ok2 {
		return nil, ev.Raise("TypeError", "unsupported operand type(s) for //: '%s' and '%s'", left.Type(), right.Type())
	}
	if rf == 0 {
		return nil, ev.Raise("ZeroDivisionError", "float floor division by zero")
	}
	return runtime.NewFloat(math.Floor(lf / rf)), nil
}

func (ev *Evaluator) opMod(left, right runtime.Value) (runtime.Value, error) {
	if s, ok := left.(*runtime.StrValue); ok {
		return ev.formatPercent(s.Value, right)
	}
	if !isFloaty(left) && !isFloaty(right) {
		li, ok1 := asBigInt(left)
		ri, ok2 := asBigInt(right)
		if ok1 && ok2 {
			if ri.Sign() == 0 {
				return nil, ev.Raise("ZeroDivisionError", "integer division or modulo by zero")
			}
			m := new(big.Int).Mod(li, ri)
			if m.Sign() != 0 && ri.Sign() < 0 {
				m.Add(m, ri)
			}
			return runtime.NewIntFromBig(m), nil
		}
	}
	lf, ok1 := asFloat(left)
	rf, ok2 := asFloat(right)
	if !ok1 || !ok2 {
		return nil, ev.Raise("TypeError", "unsupported operand type(s) for %%: '%s' and '%s'", left.Type(), right.Type())
	}
	if rf == 0 {
		return nil, ev.Raise("ZeroDivisionError", "float modulo")
	}
	m := math.Mod(lf, rf)
	if m != 0 && (m < 0) != (rf < 0) {
		m += rf
	}
	return runtime.NewFloat(m), nil
}

func (ev *Evaluator) opPow(left, right runtime.Value) (runtime.Value, error) {
	if !isFloaty(left) && !isFloaty(right) {
		li, ok1 := asBigInt(left)
		ri, ok2 := asBigInt(right)
		if ok1 && ok2 {
			if ri.Sign() >= 0 {
				return runtime.NewIntFromBig(new(big.Int).Exp(li, ri, nil)), nil
			}
			lf, _ := asFloat(left)
			rf, _ := asFloat(right)
			return runtime.NewFloat(math.Pow(lf, rf)), nil
		}
	}
	lf, ok1 := asFloat(left)
	rf, ok2 := asFloat(right)
	if !ok1 || !ok2 {
		return nil, ev.Raise("TypeError", "unsupported operand type(s) for **: '%s' and '%s'", left.Type(), right.Type())
	}
	return runtime.NewFloat(math.Pow(lf, rf)), nil
}

// formatPercent implements the minimal `%`-style string formatting the
// reference language still supports alongside f-strings: %s, %d, %f, %r,
// %x, %o, %%, applied against a single value or a tuple of values.
func (ev *Evaluator) formatPercent(format string, arg runtime.Value) (runtime.Value, error) {
	var args []runtime.Value
	if t, ok := arg.(*runtime.TupleValue); ok {
		args = t.Elements
	} else {
		args = []runtime.Value{arg}
	}
	var sb strings.Builder
	ai := 0
	next := func() (runtime.Value, error) {
		if ai >= len(args) {
			return nil, ev.Raise("TypeError", "not enough arguments for format string")
		}
		v := args[ai]
		ai++
		return v, nil
	}
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '%' {
			sb.WriteRune(c)
			continue
		}
		i++
		if i >= len(runes) {
			break
		}
		switch runes[i] {
		case '%':
			sb.WriteByte('%')
		case 's':
			v, err := next()
			if err != nil {
				return nil, err
			}
			sb.WriteString(v.String())
		case 'r':
			v, err := next()
			if err != nil {
				return nil, err
			}
			sb.WriteString(v.Repr())
		case 'd':
			v, err := next()
			if err != nil {
				return nil, err
			}
			bi, ok := asBigInt(v)
			if !ok {
				return nil, ev.Raise("TypeError", "%%d format: a number is required, not %s", v.Type())
			}
			sb.WriteString(bi.String())
		case 'f':
			v, err := next()
			if err != nil {
				return nil, err
			}
			f, _ := asFloat(v)
			sb.WriteString(runtime.NewFloat(f).String())
		case 'x':
			v, err := next()
			if err != nil {
				return nil, err
			}
			bi, _ := asBigInt(v)
			sb.WriteString(bi.Text(16))
		case 'o':
			v, err := next()
			if err != nil {
				return nil, err
			}
			bi, _ := asBigInt(v)
			sb.WriteString(bi.Text(8))
		default:
			sb.WriteByte('%')
			sb.WriteRune(runes[i])
		}
	}
	return runtime.NewStr(sb.String()), nil
}
