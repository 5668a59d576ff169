package runtime

import "testing"

func TestListValue_AppendIndexSlice(t *testing.T) {
	l := NewList([]Value{NewInt(1), NewInt(2), NewInt(3)})
	l.Append(NewInt(4))
	if l.Length() != 4 {
		t.Fatalf("Length() = %d, want 4", l.Length())
	}
	v, err := l.GetIndex(-1)
	if err != nil || v.(*IntValue).Val.Int64() != 4 {
		t.Fatalf("GetIndex(-1) = %v, %v, want 4", v, err)
	}
	sl, err := l.GetSlice(1, 3, 1)
	if err != nil {
		t.Fatalf("GetSlice: %v", err)
	}
	elems := sl.(*ListValue).Elements
	if len(elems) != 2 || elems[0].(*IntValue).Val.Int64() != 2 || elems[1].(*IntValue).Val.Int64() != 3 {
		t.Fatalf("GetSlice(1,3,1) = %v, want [2, 3]", elems)
	}
}

func TestListValue_SetIndex(t *testing.T) {
	l := NewList([]Value{NewInt(1), NewInt(2)})
	if err := l.SetIndex(0, NewInt(99)); err != nil {
		t.Fatalf("SetIndex: %v", err)
	}
	v, _ := l.GetIndex(0)
	if v.(*IntValue).Val.Int64() != 99 {
		t.Fatalf("GetIndex(0) after SetIndex = %v, want 99", v)
	}
}

func TestDictValue_SetGetDelete(t *testing.T) {
	d := NewDict()
	if err := d.Set(NewStr("a"), NewInt(1)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := d.Set(NewStr("b"), NewInt(2)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok := d.Get(NewStr("a"))
	if !ok || v.(*IntValue).Val.Int64() != 1 {
		t.Fatalf("Get('a') = %v, %v, want 1", v, ok)
	}
	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", d.Len())
	}
	removed, err := d.Delete(NewStr("a"))
	if err != nil || !removed {
		t.Fatalf("Delete('a') = %v, %v, want true", removed, err)
	}
	if _, ok := d.Get(NewStr("a")); ok {
		t.Fatalf("expected 'a' to be gone after Delete")
	}
}

func TestDictValue_PreservesInsertionOrder(t *testing.T) {
	d := NewDict()
	d.Set(NewStr("z"), NewInt(1))
	d.Set(NewStr("a"), NewInt(2))
	d.Set(NewStr("m"), NewInt(3))
	keys := d.Keys()
	want := []string{"z", "a", "m"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() length = %d, want %d", len(keys), len(want))
	}
	for i, k := range keys {
		if k.(*StrValue).Value != want[i] {
			t.Fatalf("Keys()[%d] = %q, want %q", i, k.(*StrValue).Value, want[i])
		}
	}
}

func TestSetValue_AddContainsRemove(t *testing.T) {
	s := NewSet()
	if err := s.Add(NewInt(1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(NewInt(1)); err != nil { // duplicate, should be a no-op
		t.Fatalf("Add duplicate: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after duplicate add", s.Len())
	}
	ok, err := s.Contains(NewInt(1))
	if err != nil || !ok {
		t.Fatalf("Contains(1) = %v, %v, want true", ok, err)
	}
	removed, err := s.Remove(NewInt(1))
	if err != nil || !removed {
		t.Fatalf("Remove(1) = %v, %v, want true", removed, err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() after remove = %d, want 0", s.Len())
	}
}

func TestFrozenSetValue_Equals(t *testing.T) {
	a, err := NewFrozenSet([]Value{NewInt(1), NewInt(2)})
	if err != nil {
		t.Fatalf("NewFrozenSet: %v", err)
	}
	b, err := NewFrozenSet([]Value{NewInt(2), NewInt(1)})
	if err != nil {
		t.Fatalf("NewFrozenSet: %v", err)
	}
	eq, err := a.Equals(b)
	if err != nil || !eq {
		t.Fatalf("expected frozensets with same elements to be equal, got eq=%v err=%v", eq, err)
	}
}

func TestRangeValue_LengthAndIndex(t *testing.T) {
	r := NewRange(0, 10, 2)
	if r.Length() != 5 {
		t.Fatalf("Length() = %d, want 5", r.Length())
	}
	v, err := r.GetIndex(2)
	if err != nil || v.(*IntValue).Val.Int64() != 4 {
		t.Fatalf("GetIndex(2) = %v, %v, want 4", v, err)
	}
}

func TestRangeValue_NegativeStep(t *testing.T) {
	r := NewRange(10, 0, -2)
	if r.Length() != 5 {
		t.Fatalf("Length() = %d, want 5", r.Length())
	}
	it := r.Iterator()
	var got []int64
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v.(*IntValue).Val.Int64())
	}
	want := []int64{10, 8, 6, 4, 2}
	if len(got) != len(want) {
		t.Fatalf("iterated %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("iterated %v, want %v", got, want)
		}
	}
}

func TestTupleValue_Immutable_ButEquals(t *testing.T) {
	a := NewTuple([]Value{NewInt(1), NewStr("x")})
	b := NewTuple([]Value{NewInt(1), NewStr("x")})
	eq, err := a.Equals(b)
	if err != nil || !eq {
		t.Fatalf("expected equal tuples, got eq=%v err=%v", eq, err)
	}
}
