package runtime

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================================
// None
// ============================================================================

// NoneValue is the single instance of SL's `None`.
type NoneValue struct{}

// None is the shared, interned None value; every use of the literal `None`
// in a program resolves to this same pointer.
var None = &NoneValue{}

func (*NoneValue) Type() string   { return "NoneType" }
func (*NoneValue) String() string { return "None" }
func (*NoneValue) Repr() string   { return "None" }
func (*NoneValue) Truthy() bool   { return false }

func (n *NoneValue) Equals(other Value) (bool, error) {
	_, ok := other.(*NoneValue)
	return ok, nil
}

func (n *NoneValue) HashKey() (any, error) { return "None", nil }

// ============================================================================
// Bool
// ============================================================================

// BoolValue wraps SL's `True`/`False`. Like the reference language, bools
// are a subtype of int: True == 1 and False == 0 in numeric contexts.
type BoolValue struct {
	Value bool
}

var (
	True  = &BoolValue{Value: true}
	False = &BoolValue{Value: false}
)

// Bool returns the canonical interned BoolValue for b.
func Bool(b bool) *BoolValue {
	if b {
		return True
	}
	return False
}

func (b *BoolValue) Type() string { return "bool" }
func (b *BoolValue) String() string {
	if b.Value {
		return "True"
	}
	return "False"
}
func (b *BoolValue) Repr() string { return b.String() }
func (b *BoolValue) Truthy() bool { return b.Value }

func (b *BoolValue) AsInt() (IntValueData, bool) {
	if b.Value {
		return IntValueData{big.NewInt(1)}, true
	}
	return IntValueData{big.NewInt(0)}, true
}

func (b *BoolValue) AsFloat() (float64, bool) {
	if b.Value {
		return 1, true
	}
	return 0, true
}

func (b *BoolValue) Equals(other Value) (bool, error) {
	switch v := other.(type) {
	case *BoolValue:
		return b.Value == v.Value, nil
	case NumericValue:
		bi, _ := b.AsInt()
		oi, ok := v.AsInt()
		if ok {
			return bi.Int.Cmp(oi.Int) == 0, nil
		}
		of, _ := v.AsFloat()
		bf, _ := b.AsFloat()
		return bf == of, nil
	}
	return false, nil
}

func (b *BoolValue) HashKey() (any, error) { return b.Value, nil }

func (b *BoolValue) Copy() Value { return b }

// ============================================================================
// Int — arbitrary precision, backed by math/big.Int
// ============================================================================

// IntValueData holds the big.Int payload shared by IntValue and the
// AsInt() conversion path, so NumericValue implementations that are not
// themselves IntValue (e.g. BoolValue) can still hand back a big.Int.
type IntValueData struct {
	Int *big.Int
}

// IntValue is SL's arbitrary-precision integer type.
type IntValue struct {
	Val *big.Int
}

// NewInt wraps an int64 as an IntValue.
func NewInt(n int64) *IntValue { return &IntValue{Val: big.NewInt(n)} }

// NewIntFromBig wraps a *big.Int directly, taking ownership of it.
func NewIntFromBig(b *big.Int) *IntValue { return &IntValue{Val: b} }

// NewIntFromString parses digits (already underscore-stripped by the lexer)
// in the given base (10, 16, 8, or 2).
func NewIntFromString(digits string, base int) (*IntValue, error) {
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer literal %q", digits)
	}
	return &IntValue{Val: b}, nil
}

func (i *IntValue) Type() string   { return "int" }
func (i *IntValue) String() string { return i.Val.String() }
func (i *IntValue) Repr() string   { return i.Val.String() }
func (i *IntValue) Truthy() bool   { return i.Val.Sign() != 0 }

func (i *IntValue) AsInt() (IntValueData, bool) { return IntValueData{i.Val}, true }
func (i *IntValue) AsFloat() (float64, bool) {
	f := new(big.Float).SetInt(i.Val)
	v, _ := f.Float64()
	return v, true
}

func (i *IntValue) Equals(other Value) (bool, error) {
	switch v := other.(type) {
	case *IntValue:
		return i.Val.Cmp(v.Val) == 0, nil
	case *FloatValue:
		f, _ := i.AsFloat()
		return f == v.Value, nil
	case *BoolValue:
		return v.Equals(i)
	}
	return false, nil
}

func (i *IntValue) CompareTo(other Value) (int, error) {
	switch v := other.(type) {
	case *IntValue:
		return i.Val.Cmp(v.Val), nil
	case *FloatValue:
		f, _ := i.AsFloat()
		return floatCompare(f, v.Value), nil
	case NumericValue:
		if oi, ok := v.AsInt(); ok {
			return i.Val.Cmp(oi.Int), nil
		}
		of, _ := v.AsFloat()
		f, _ := i.AsFloat()
		return floatCompare(f, of), nil
	}
	return 0, fmt.Errorf("'<' not supported between instances of 'int' and '%s'", other.Type())
}

func (i *IntValue) Copy() Value { return &IntValue{Val: new(big.Int).Set(i.Val)} }

func (i *IntValue) HashKey() (any, error) {
	if i.Val.IsInt64() {
		return i.Val.Int64(), nil
	}
	return i.Val.String(), nil
}

func floatCompare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ============================================================================
// Float
// ============================================================================

// FloatValue is SL's IEEE-754 double-precision float type.
type FloatValue struct {
	Value float64
}

func NewFloat(f float64) *FloatValue { return &FloatValue{Value: f} }

func (f *FloatValue) Type() string { return "float" }
func (f *FloatValue) String() string {
	switch {
	case math.IsInf(f.Value, 1):
		return "inf"
	case math.IsInf(f.Value, -1):
		return "-inf"
	case math.IsNaN(f.Value):
		return "nan"
	}
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
func (f *FloatValue) Repr() string { return f.String() }
func (f *FloatValue) Truthy() bool { return f.Value != 0 }

func (f *FloatValue) AsInt() (IntValueData, bool) {
	bi, _ := big.NewFloat(f.Value).Int(nil)
	return IntValueData{bi}, true
}
func (f *FloatValue) AsFloat() (float64, bool) { return f.Value, true }

func (f *FloatValue) Equals(other Value) (bool, error) {
	switch v := other.(type) {
	case *FloatValue:
		return f.Value == v.Value, nil
	case NumericValue:
		of, _ := v.AsFloat()
		return f.Value == of, nil
	}
	return false, nil
}

func (f *FloatValue) CompareTo(other Value) (int, error) {
	switch v := other.(type) {
	case NumericValue:
		of, _ := v.AsFloat()
		return floatCompare(f.Value, of), nil
	}
	return 0, fmt.Errorf("'<' not supported between instances of 'float' and '%s'", other.Type())
}

func (f *FloatValue) Copy() Value { return &FloatValue{Value: f.Value} }

func (f *FloatValue) HashKey() (any, error) { return f.Value, nil }

// ============================================================================
// Str
// ============================================================================

// StrValue is SL's immutable Unicode text type, stored as Go's native UTF-8
// string; indexing/length operations below count Unicode code points, not
// bytes, matching the reference language's str semantics.
type StrValue struct {
	Value string
}

func NewStr(s string) *StrValue { return &StrValue{Value: s} }

func (s *StrValue) Type() string   { return "str" }
func (s *StrValue) String() string { return s.Value }
func (s *StrValue) Repr() string   { return reprString(s.Value) }
func (s *StrValue) Truthy() bool   { return len(s.Value) != 0 }

func (s *StrValue) Equals(other Value) (bool, error) {
	o, ok := other.(*StrValue)
	return ok && s.Value == o.Value, nil
}

func (s *StrValue) CompareTo(other Value) (int, error) {
	o, ok := other.(*StrValue)
	if !ok {
		return 0, fmt.Errorf("'<' not supported between instances of 'str' and '%s'", other.Type())
	}
	return strings.Compare(s.Value, o.Value), nil
}

func (s *StrValue) Copy() Value { return s }

func (s *StrValue) HashKey() (any, error) { return s.Value, nil }

func (s *StrValue) Runes() []rune { return []rune(s.Value) }

func (s *StrValue) GetIndex(index int64) (Value, error) {
	r := s.Runes()
	idx, err := normalizeIndex(index, int64(len(r)))
	if err != nil {
		return nil, err
	}
	return NewStr(string(r[idx])), nil
}

func (s *StrValue) Length() int64 { return int64(len(s.Runes())) }

func (s *StrValue) GetSlice(start, stop, step int64) (Value, error) {
	r := s.Runes()
	idxs := sliceIndices(int64(len(r)), start, stop, step)
	out := make([]rune, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, r[i])
	}
	return NewStr(string(out)), nil
}

func (s *StrValue) Iterator() Iterator {
	r := s.Runes()
	i := 0
	return IteratorFunc(func() (Value, bool) {
		if i >= len(r) {
			return nil, false
		}
		v := NewStr(string(r[i]))
		i++
		return v, true
	})
}

// reprString renders a Python-style quoted string literal: prefers single
// quotes, switching to double quotes if the text contains a single quote
// but no double quote.
func reprString(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range s {
		switch r {
		case rune(quote):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

// ============================================================================
// Bytes
// ============================================================================

// BytesValue is SL's immutable byte-string type.
type BytesValue struct {
	Value []byte
}

func NewBytes(b []byte) *BytesValue { return &BytesValue{Value: b} }

func (b *BytesValue) Type() string   { return "bytes" }
func (b *BytesValue) String() string { return b.Repr() }
func (b *BytesValue) Repr() string {
	var sb strings.Builder
	sb.WriteString("b'")
	for _, c := range b.Value {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '\'':
			sb.WriteString(`\'`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "\\x%02x", c)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
func (b *BytesValue) Truthy() bool { return len(b.Value) != 0 }

func (b *BytesValue) Equals(other Value) (bool, error) {
	o, ok := other.(*BytesValue)
	if !ok {
		return false, nil
	}
	if len(b.Value) != len(o.Value) {
		return false, nil
	}
	for i := range b.Value {
		if b.Value[i] != o.Value[i] {
			return false, nil
		}
	}
	return true, nil
}

func (b *BytesValue) Copy() Value {
	cp := make([]byte, len(b.Value))
	copy(cp, b.Value)
	return &BytesValue{Value: cp}
}

func (b *BytesValue) HashKey() (any, error) { return string(b.Value), nil }

func (b *BytesValue) GetIndex(index int64) (Value, error) {
	idx, err := normalizeIndex(index, int64(len(b.Value)))
	if err != nil {
		return nil, err
	}
	return NewInt(int64(b.Value[idx])), nil
}

func (b *BytesValue) Length() int64 { return int64(len(b.Value)) }

// ============================================================================
// Shared index/slice helpers
// ============================================================================

func normalizeIndex(index, length int64) (int64, error) {
	idx := index
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, fmt.Errorf("index out of range")
	}
	return idx, nil
}

// sliceIndices computes the sequence of element indices for v[start:stop:step]
// against a sequence of the given length, matching the reference language's
// slice semantics including negative step (reverse iteration) and clamping.
func sliceIndices(length, start, stop, step int64) []int64 {
	if step == 0 {
		step = 1
	}
	var lo, hi int64
	if step > 0 {
		lo, hi = 0, length
	} else {
		lo, hi = -1, length-1
	}

	clamp := func(v int64) int64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}

	var s, e int64
	if step > 0 {
		s = 0
		e = length
	} else {
		s = length - 1
		e = -1
	}

	hasStart := start != noIndex
	hasStop := stop != noIndex

	if hasStart {
		v := start
		if v < 0 {
			v += length
		}
		s = clamp(v)
	}
	if hasStop {
		v := stop
		if v < 0 {
			v += length
		}
		e = clamp(v)
	}

	var out []int64
	if step > 0 {
		for i := s; i < e; i += step {
			out = append(out, i)
		}
	} else {
		for i := s; i > e; i += step {
			out = append(out, i)
		}
	}
	return out
}

// noIndex is the sentinel meaning "omitted" for a slice bound. Only callers
// inside this package pass it; the evaluator resolves omitted bounds to
// concrete indices itself (resolveSliceBounds).
const noIndex = int64(math.MinInt64)

// IteratorFunc adapts a plain closure to the Iterator interface.
type IteratorFunc func() (Value, bool)

func (f IteratorFunc) Next() (Value, bool) { return f() }
