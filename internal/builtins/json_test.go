package builtins

import (
	"testing"

	"github.com/cwbudde/go-sli/internal/runtime"
)

func TestJSONLoads_ObjectArrayScalars(t *testing.T) {
	v, err := JSONLoads(`{"name": "ada", "age": 36, "tags": ["x", "y"], "active": true, "extra": null}`)
	if err != nil {
		t.Fatalf("JSONLoads: %v", err)
	}
	d, ok := v.(*runtime.DictValue)
	if !ok {
		t.Fatalf("got %T, want *runtime.DictValue", v)
	}
	name, _ := d.Get(runtime.NewStr("name"))
	if sv, ok := name.(*runtime.StrValue); !ok || sv.Value != "ada" {
		t.Fatalf("name = %#v", name)
	}
	age, _ := d.Get(runtime.NewStr("age"))
	iv, ok := age.(*runtime.IntValue)
	if !ok || !iv.Val.IsInt64() || iv.Val.Int64() != 36 {
		t.Fatalf("age = %#v, want int 36", age)
	}
	tags, _ := d.Get(runtime.NewStr("tags"))
	lv, ok := tags.(*runtime.ListValue)
	if !ok || len(lv.Elements) != 2 {
		t.Fatalf("tags = %#v", tags)
	}
	active, _ := d.Get(runtime.NewStr("active"))
	if active != runtime.True {
		t.Fatalf("active = %#v, want True", active)
	}
	extra, _ := d.Get(runtime.NewStr("extra"))
	if extra != runtime.None {
		t.Fatalf("extra = %#v, want None", extra)
	}
}

func TestJSONLoads_RejectsInvalidDocument(t *testing.T) {
	if _, err := JSONLoads(`{not json}`); err == nil {
		t.Fatal("expected an error for an invalid document")
	}
}

func TestJSONLoads_NumberWithFractionBecomesFloat(t *testing.T) {
	v, err := JSONLoads(`3.5`)
	if err != nil {
		t.Fatalf("JSONLoads: %v", err)
	}
	if _, ok := v.(*runtime.FloatValue); !ok {
		t.Fatalf("got %T, want *runtime.FloatValue", v)
	}
}

func TestJSONDumps_RoundTripsThroughLoads(t *testing.T) {
	d := runtime.NewDict()
	d.Set(runtime.NewStr("a"), runtime.NewInt(1))
	d.Set(runtime.NewStr("b"), runtime.NewList([]runtime.Value{runtime.NewStr("x"), runtime.True}))

	text, err := JSONDumps(d, -1)
	if err != nil {
		t.Fatalf("JSONDumps: %v", err)
	}

	back, err := JSONLoads(text)
	if err != nil {
		t.Fatalf("JSONLoads(%q): %v", text, err)
	}
	bd, ok := back.(*runtime.DictValue)
	if !ok {
		t.Fatalf("got %T, want *runtime.DictValue", back)
	}
	a, _ := bd.Get(runtime.NewStr("a"))
	if iv, ok := a.(*runtime.IntValue); !ok || iv.Val.Int64() != 1 {
		t.Fatalf("a = %#v", a)
	}
}

func TestJSONDumps_RejectsNonStringKeys(t *testing.T) {
	d := runtime.NewDict()
	d.Set(runtime.NewInt(1), runtime.NewInt(2))
	if _, err := JSONDumps(d, -1); err == nil {
		t.Fatal("expected an error for a non-str dict key")
	}
}

func TestJSONDumps_IndentProducesMultilineOutput(t *testing.T) {
	d := runtime.NewDict()
	d.Set(runtime.NewStr("a"), runtime.NewInt(1))
	text, err := JSONDumps(d, 2)
	if err != nil {
		t.Fatalf("JSONDumps: %v", err)
	}
	if text == `{"a":1}` {
		t.Fatalf("expected indented output, got compact: %q", text)
	}
}

func TestSortedJSONKeys_SortsAndCopies(t *testing.T) {
	keys := []string{"b", "a", "c"}
	sorted := SortedJSONKeys(keys)
	if sorted[0] != "a" || sorted[1] != "b" || sorted[2] != "c" {
		t.Fatalf("sorted = %v", sorted)
	}
	if keys[0] != "b" {
		t.Fatalf("SortedJSONKeys mutated its input: %v", keys)
	}
}
