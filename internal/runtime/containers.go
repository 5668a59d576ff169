package runtime

import (
	"fmt"
	"strings"
)

// ============================================================================
// Tuple
// ============================================================================

// TupleValue is SL's immutable fixed-size sequence.
type TupleValue struct {
	Elements []Value
}

func NewTuple(elems []Value) *TupleValue { return &TupleValue{Elements: elems} }

func (t *TupleValue) Type() string { return "tuple" }
func (t *TupleValue) String() string {
	return formatSeq(t.Elements, "(", ")", len(t.Elements) == 1)
}
func (t *TupleValue) Repr() string { return t.String() }
func (t *TupleValue) Truthy() bool { return len(t.Elements) != 0 }

func (t *TupleValue) Equals(other Value) (bool, error) {
	o, ok := other.(*TupleValue)
	if !ok || len(o.Elements) != len(t.Elements) {
		return false, nil
	}
	for i := range t.Elements {
		eq, err := valuesEqual(t.Elements[i], o.Elements[i])
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}

func (t *TupleValue) Copy() Value { return t }

func (t *TupleValue) HashKey() (any, error) {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		h, ok := e.(HashableValue)
		if !ok {
			return nil, fmt.Errorf("unhashable type: '%s'", e.Type())
		}
		k, err := h.HashKey()
		if err != nil {
			return nil, err
		}
		parts[i] = fmt.Sprintf("%T:%v", k, k)
	}
	return strings.Join(parts, "\x1f"), nil
}

func (t *TupleValue) GetIndex(index int64) (Value, error) {
	idx, err := normalizeIndex(index, int64(len(t.Elements)))
	if err != nil {
		return nil, err
	}
	return t.Elements[idx], nil
}

func (t *TupleValue) Length() int64 { return int64(len(t.Elements)) }

func (t *TupleValue) GetSlice(start, stop, step int64) (Value, error) {
	idxs := sliceIndices(int64(len(t.Elements)), start, stop, step)
	out := make([]Value, len(idxs))
	for i, idx := range idxs {
		out[i] = t.Elements[idx]
	}
	return NewTuple(out), nil
}

func (t *TupleValue) Iterator() Iterator { return sliceIterator(t.Elements) }

// ============================================================================
// List
// ============================================================================

// ListValue is SL's mutable, growable sequence.
type ListValue struct {
	Elements []Value
}

func NewList(elems []Value) *ListValue { return &ListValue{Elements: elems} }

func (l *ListValue) Type() string { return "list" }
func (l *ListValue) String() string {
	return formatSeq(l.Elements, "[", "]", false)
}
func (l *ListValue) Repr() string { return l.String() }
func (l *ListValue) Truthy() bool { return len(l.Elements) != 0 }

func (l *ListValue) Equals(other Value) (bool, error) {
	o, ok := other.(*ListValue)
	if !ok || len(o.Elements) != len(l.Elements) {
		return false, nil
	}
	for i := range l.Elements {
		eq, err := valuesEqual(l.Elements[i], o.Elements[i])
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}

func (l *ListValue) Copy() Value {
	cp := make([]Value, len(l.Elements))
	copy(cp, l.Elements)
	return &ListValue{Elements: cp}
}

func (l *ListValue) GetIndex(index int64) (Value, error) {
	idx, err := normalizeIndex(index, int64(len(l.Elements)))
	if err != nil {
		return nil, err
	}
	return l.Elements[idx], nil
}

func (l *ListValue) SetIndex(index int64, value Value) error {
	idx, err := normalizeIndex(index, int64(len(l.Elements)))
	if err != nil {
		return err
	}
	l.Elements[idx] = value
	return nil
}

func (l *ListValue) Length() int64 { return int64(len(l.Elements)) }

func (l *ListValue) GetSlice(start, stop, step int64) (Value, error) {
	idxs := sliceIndices(int64(len(l.Elements)), start, stop, step)
	out := make([]Value, len(idxs))
	for i, idx := range idxs {
		out[i] = l.Elements[idx]
	}
	return NewList(out), nil
}

func (l *ListValue) Append(v Value) { l.Elements = append(l.Elements, v) }

func (l *ListValue) Iterator() Iterator { return sliceIterator(l.Elements) }

// ============================================================================
// Dict
// ============================================================================

// dictEntry preserves insertion order, matching the reference language's
// dict iteration guarantee.
type dictEntry struct {
	key   Value
	value Value
}

// DictValue is SL's insertion-ordered hash map. Keys are compared by
// HashKey() so arbitrary hashable values (not just strings) can be keys.
type DictValue struct {
	entries []dictEntry
	index   map[any]int // HashKey() -> position in entries
}

func NewDict() *DictValue {
	return &DictValue{index: make(map[any]int)}
}

func (d *DictValue) Type() string { return "dict" }
func (d *DictValue) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range d.entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.key.Repr())
		sb.WriteString(": ")
		sb.WriteString(e.value.Repr())
	}
	sb.WriteByte('}')
	return sb.String()
}
func (d *DictValue) Repr() string { return d.String() }
func (d *DictValue) Truthy() bool { return len(d.entries) != 0 }

func (d *DictValue) Equals(other Value) (bool, error) {
	o, ok := other.(*DictValue)
	if !ok || len(o.entries) != len(d.entries) {
		return false, nil
	}
	for _, e := range d.entries {
		ov, found := o.Get(e.key)
		if !found {
			return false, nil
		}
		eq, err := valuesEqual(e.value, ov)
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}

func (d *DictValue) Copy() Value {
	cp := NewDict()
	for _, e := range d.entries {
		cp.Set(e.key, e.value)
	}
	return cp
}

func (d *DictValue) hashOf(key Value) (any, error) {
	h, ok := key.(HashableValue)
	if !ok {
		return nil, fmt.Errorf("unhashable type: '%s'", key.Type())
	}
	return h.HashKey()
}

// Get returns the value bound to key, and whether it was present.
func (d *DictValue) Get(key Value) (Value, bool) {
	hk, err := d.hashOf(key)
	if err != nil {
		return nil, false
	}
	i, ok := d.index[hk]
	if !ok {
		return nil, false
	}
	return d.entries[i].value, true
}

// Set inserts or updates the binding for key, preserving the original
// insertion position on update.
func (d *DictValue) Set(key, value Value) error {
	hk, err := d.hashOf(key)
	if err != nil {
		return err
	}
	if i, ok := d.index[hk]; ok {
		d.entries[i].value = value
		return nil
	}
	d.index[hk] = len(d.entries)
	d.entries = append(d.entries, dictEntry{key: key, value: value})
	return nil
}

// Delete removes key, reporting whether it was present.
func (d *DictValue) Delete(key Value) (bool, error) {
	hk, err := d.hashOf(key)
	if err != nil {
		return false, err
	}
	i, ok := d.index[hk]
	if !ok {
		return false, nil
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	delete(d.index, hk)
	for k, idx := range d.index {
		if idx > i {
			d.index[k] = idx - 1
		}
	}
	return true, nil
}

func (d *DictValue) Len() int64 { return int64(len(d.entries)) }

// Keys, Values, and Items return slices in insertion order, backing the
// dict.keys()/.values()/.items() view built-ins.
func (d *DictValue) Keys() []Value {
	out := make([]Value, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.key
	}
	return out
}

func (d *DictValue) Values() []Value {
	out := make([]Value, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.value
	}
	return out
}

func (d *DictValue) Items() []*TupleValue {
	out := make([]*TupleValue, len(d.entries))
	for i, e := range d.entries {
		out[i] = NewTuple([]Value{e.key, e.value})
	}
	return out
}

func (d *DictValue) Iterator() Iterator { return sliceIterator(d.Keys()) }

func (d *DictValue) GetIndex(index int64) (Value, error) { return nil, fmt.Errorf("dict indices must be keys, not int") }

// ============================================================================
// Set / FrozenSet
// ============================================================================

// setCore is the shared storage for SetValue and FrozenSetValue; the two
// differ only in mutability, matching the reference type's set/frozenset
// split.
type setCore struct {
	order []Value
	index map[any]int
}

func newSetCore() setCore { return setCore{index: make(map[any]int)} }

func (s *setCore) hashOf(v Value) (any, error) {
	h, ok := v.(HashableValue)
	if !ok {
		return nil, fmt.Errorf("unhashable type: '%s'", v.Type())
	}
	return h.HashKey()
}

func (s *setCore) add(v Value) error {
	hk, err := s.hashOf(v)
	if err != nil {
		return err
	}
	if _, ok := s.index[hk]; ok {
		return nil
	}
	s.index[hk] = len(s.order)
	s.order = append(s.order, v)
	return nil
}

func (s *setCore) contains(v Value) (bool, error) {
	hk, err := s.hashOf(v)
	if err != nil {
		return false, err
	}
	_, ok := s.index[hk]
	return ok, nil
}

func (s *setCore) remove(v Value) (bool, error) {
	hk, err := s.hashOf(v)
	if err != nil {
		return false, err
	}
	i, ok := s.index[hk]
	if !ok {
		return false, nil
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.index, hk)
	for k, idx := range s.index {
		if idx > i {
			s.index[k] = idx - 1
		}
	}
	return true, nil
}

func (s *setCore) String(open, close string) string {
	if len(s.order) == 0 {
		if open == "{" {
			return "set()"
		}
		return "frozenset()"
	}
	var sb strings.Builder
	sb.WriteString(open)
	for i, v := range s.order {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.Repr())
	}
	sb.WriteString(close)
	return sb.String()
}

// SetValue is SL's mutable set.
type SetValue struct{ setCore }

func NewSet() *SetValue { return &SetValue{newSetCore()} }

func (s *SetValue) Type() string       { return "set" }
func (s *SetValue) String() string     { return s.setCore.String("{", "}") }
func (s *SetValue) Repr() string       { return s.String() }
func (s *SetValue) Truthy() bool       { return len(s.order) != 0 }
func (s *SetValue) Add(v Value) error  { return s.add(v) }
func (s *SetValue) Len() int64         { return int64(len(s.order)) }
func (s *SetValue) Items() []Value     { return s.order }
func (s *SetValue) Iterator() Iterator { return sliceIterator(s.order) }

// Contains reports whether v is a member, for the `in` operator.
func (s *SetValue) Contains(v Value) (bool, error) { return s.contains(v) }

// Remove deletes v, reporting whether it was present.
func (s *SetValue) Remove(v Value) (bool, error) { return s.remove(v) }

func (s *SetValue) Equals(other Value) (bool, error) {
	var o *setCore
	switch v := other.(type) {
	case *SetValue:
		o = &v.setCore
	case *FrozenSetValue:
		o = &v.setCore
	default:
		return false, nil
	}
	if len(o.order) != len(s.order) {
		return false, nil
	}
	for _, v := range s.order {
		ok, err := o.contains(v)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func (s *SetValue) Copy() Value {
	cp := NewSet()
	for _, v := range s.order {
		cp.add(v)
	}
	return cp
}

// FrozenSetValue is SL's immutable set, usable as a dict key or set member.
type FrozenSetValue struct{ setCore }

func NewFrozenSet(items []Value) (*FrozenSetValue, error) {
	fs := &FrozenSetValue{newSetCore()}
	for _, v := range items {
		if err := fs.add(v); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

func (s *FrozenSetValue) Type() string   { return "frozenset" }
func (s *FrozenSetValue) String() string { return s.setCore.String("frozenset({", "})") }
func (s *FrozenSetValue) Repr() string   { return s.String() }
func (s *FrozenSetValue) Truthy() bool   { return len(s.order) != 0 }
func (s *FrozenSetValue) Len() int64     { return int64(len(s.order)) }
func (s *FrozenSetValue) Items() []Value { return s.order }

// Contains reports whether v is a member, for the `in` operator.
func (s *FrozenSetValue) Contains(v Value) (bool, error) { return s.contains(v) }

func (s *FrozenSetValue) Iterator() Iterator { return sliceIterator(s.order) }

func (s *FrozenSetValue) Equals(other Value) (bool, error) {
	var o *setCore
	switch v := other.(type) {
	case *SetValue:
		o = &v.setCore
	case *FrozenSetValue:
		o = &v.setCore
	default:
		return false, nil
	}
	if len(o.order) != len(s.order) {
		return false, nil
	}
	for _, v := range s.order {
		ok, err := o.contains(v)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func (s *FrozenSetValue) HashKey() (any, error) {
	parts := make([]string, 0, len(s.order))
	for _, v := range s.order {
		h, ok := v.(HashableValue)
		if !ok {
			return nil, fmt.Errorf("unhashable type: '%s'", v.Type())
		}
		k, err := h.HashKey()
		if err != nil {
			return nil, err
		}
		parts = append(parts, fmt.Sprintf("%T:%v", k, k))
	}
	return "frozenset:" + strings.Join(parts, "\x1f"), nil
}

// ============================================================================
// Range
// ============================================================================

// RangeValue is the lazy arithmetic sequence produced by the `range()`
// built-in.
type RangeValue struct {
	Start, Stop, Step int64
}

func NewRange(start, stop, step int64) *RangeValue {
	return &RangeValue{Start: start, Stop: stop, Step: step}
}

func (r *RangeValue) Type() string { return "range" }
func (r *RangeValue) String() string {
	if r.Step == 1 {
		return fmt.Sprintf("range(%d, %d)", r.Start, r.Stop)
	}
	return fmt.Sprintf("range(%d, %d, %d)", r.Start, r.Stop, r.Step)
}
func (r *RangeValue) Repr() string { return r.String() }
func (r *RangeValue) Truthy() bool { return r.Length() != 0 }

func (r *RangeValue) Length() int64 {
	if r.Step > 0 {
		if r.Stop <= r.Start {
			return 0
		}
		return (r.Stop - r.Start + r.Step - 1) / r.Step
	}
	if r.Step < 0 {
		if r.Stop >= r.Start {
			return 0
		}
		return (r.Start - r.Stop - r.Step - 1) / -r.Step
	}
	return 0
}

func (r *RangeValue) GetIndex(index int64) (Value, error) {
	idx, err := normalizeIndex(index, r.Length())
	if err != nil {
		return nil, err
	}
	return NewInt(r.Start + idx*r.Step), nil
}

func (r *RangeValue) Equals(other Value) (bool, error) {
	o, ok := other.(*RangeValue)
	if !ok {
		return false, nil
	}
	if r.Length() == 0 && o.Length() == 0 {
		return true, nil
	}
	return r.Start == o.Start && r.Stop == o.Stop && r.Step == o.Step, nil
}

func (r *RangeValue) Iterator() Iterator {
	cur := r.Start
	n := r.Length()
	i := int64(0)
	return IteratorFunc(func() (Value, bool) {
		if i >= n {
			return nil, false
		}
		v := NewInt(cur)
		cur += r.Step
		i++
		return v, true
	})
}

// ============================================================================
// Shared helpers
// ============================================================================

func formatSeq(elems []Value, open, close string, forceTrailingComma bool) string {
	var sb strings.Builder
	sb.WriteString(open)
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Repr())
	}
	if forceTrailingComma {
		sb.WriteByte(',')
	}
	sb.WriteString(close)
	return sb.String()
}

func valuesEqual(a, b Value) (bool, error) {
	if cv, ok := a.(ComparableValue); ok {
		return cv.Equals(b)
	}
	return a == b, nil
}

func sliceIterator(elems []Value) Iterator {
	i := 0
	return IteratorFunc(func() (Value, bool) {
		if i >= len(elems) {
			return nil, false
		}
		v := elems[i]
		i++
		return v, true
	})
}
