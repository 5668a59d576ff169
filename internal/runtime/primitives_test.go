package runtime

import "testing"

func TestIntValue_ArbitraryPrecisionEquality(t *testing.T) {
	a, _ := NewIntFromString("123456789012345678901234567890", 10)
	b, _ := NewIntFromString("123456789012345678901234567890", 10)
	eq, err := a.Equals(b)
	if err != nil || !eq {
		t.Fatalf("expected equal big ints, got eq=%v err=%v", eq, err)
	}
}

func TestIntValue_HexOctBinLiterals(t *testing.T) {
	tests := []struct {
		digits string
		base   int
		want   int64
	}{
		{"1F", 16, 31},
		{"17", 8, 15},
		{"101", 2, 5},
	}
	for _, tt := range tests {
		v, err := NewIntFromString(tt.digits, tt.base)
		if err != nil {
			t.Fatalf("NewIntFromString(%q, %d): %v", tt.digits, tt.base, err)
		}
		if !v.Val.IsInt64() || v.Val.Int64() != tt.want {
			t.Fatalf("NewIntFromString(%q, %d) = %s, want %d", tt.digits, tt.base, v.Val.String(), tt.want)
		}
	}
}

func TestBoolValue_IsIntSubtype(t *testing.T) {
	eq, err := True.Equals(NewInt(1))
	if err != nil || !eq {
		t.Fatalf("True should equal 1, got eq=%v err=%v", eq, err)
	}
	eq, err = False.Equals(NewInt(0))
	if err != nil || !eq {
		t.Fatalf("False should equal 0, got eq=%v err=%v", eq, err)
	}
	eq, _ = True.Equals(NewInt(2))
	if eq {
		t.Fatalf("True should not equal 2")
	}
}

func TestFloatValue_String(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.0, "1.0"},
		{3.5, "3.5"},
		{0.0, "0.0"},
	}
	for _, tt := range tests {
		if got := NewFloat(tt.in).String(); got != tt.want {
			t.Errorf("NewFloat(%v).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStrValue_IndexingCountsCodePoints(t *testing.T) {
	s := NewStr("héllo")
	v, err := s.GetIndex(1)
	if err != nil {
		t.Fatalf("GetIndex: %v", err)
	}
	if v.(*StrValue).Value != "é" {
		t.Fatalf("GetIndex(1) = %q, want %q", v.(*StrValue).Value, "é")
	}
	if s.Length() != 5 {
		t.Fatalf("Length() = %d, want 5", s.Length())
	}
}

func TestStrValue_NegativeIndexAndSlice(t *testing.T) {
	s := NewStr("abcdef")
	v, err := s.GetIndex(-1)
	if err != nil || v.(*StrValue).Value != "f" {
		t.Fatalf("GetIndex(-1) = %v, %v, want 'f'", v, err)
	}
	sl, err := s.GetSlice(1, 4, 1)
	if err != nil || sl.(*StrValue).Value != "bcd" {
		t.Fatalf("GetSlice(1,4,1) = %v, %v, want 'bcd'", sl, err)
	}
	rev, err := s.GetSlice(noIndex, noIndex, -1)
	if err != nil || rev.(*StrValue).Value != "fedcba" {
		t.Fatalf("GetSlice reverse = %v, %v, want 'fedcba'", rev, err)
	}
}

func TestStrValue_Repr(t *testing.T) {
	if got := NewStr("it's").Repr(); got != `"it's"` {
		t.Fatalf("Repr() = %q, want %q", got, `"it's"`)
	}
	if got := NewStr("plain").Repr(); got != "'plain'" {
		t.Fatalf("Repr() = %q, want %q", got, "'plain'")
	}
}

func TestBytesValue_Equals(t *testing.T) {
	a := NewBytes([]byte("abc"))
	b := NewBytes([]byte("abc"))
	c := NewBytes([]byte("abd"))
	if eq, _ := a.Equals(b); !eq {
		t.Fatalf("expected equal byte strings")
	}
	if eq, _ := a.Equals(c); eq {
		t.Fatalf("expected unequal byte strings")
	}
}

func TestNoneValue_Singleton(t *testing.T) {
	if None.Truthy() {
		t.Fatalf("None should be falsy")
	}
	eq, _ := None.Equals(&NoneValue{})
	if !eq {
		t.Fatalf("any NoneValue should equal None")
	}
}
