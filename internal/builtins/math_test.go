package builtins

import (
	"math"
	"testing"

	"github.com/cwbudde/go-sli/internal/runtime"
)

func TestMathConstants_KnownValues(t *testing.T) {
	c := MathConstants()
	pi, ok := c["pi"].(*runtime.FloatValue)
	if !ok || math.Abs(pi.Value-math.Pi) > 1e-12 {
		t.Fatalf("pi = %#v", c["pi"])
	}
	tau, ok := c["tau"].(*runtime.FloatValue)
	if !ok || math.Abs(tau.Value-2*math.Pi) > 1e-12 {
		t.Fatalf("tau = %#v", c["tau"])
	}
	inf, ok := c["inf"].(*runtime.FloatValue)
	if !ok || !math.IsInf(inf.Value, 1) {
		t.Fatalf("inf = %#v", c["inf"])
	}
	nan, ok := c["nan"].(*runtime.FloatValue)
	if !ok || !math.IsNaN(nan.Value) {
		t.Fatalf("nan = %#v", c["nan"])
	}
}

func TestToFloat_AcceptsIntFloatBool(t *testing.T) {
	cases := []runtime.Value{runtime.NewInt(4), runtime.NewFloat(2.5), runtime.True}
	want := []float64{4, 2.5, 1}
	for i, v := range cases {
		f, err := ToFloat(v)
		if err != nil {
			t.Fatalf("ToFloat(%v): %v", v, err)
		}
		if f != want[i] {
			t.Fatalf("ToFloat(%v) = %v, want %v", v, f, want[i])
		}
	}
}

func TestToFloat_RejectsNonNumeric(t *testing.T) {
	if _, err := ToFloat(runtime.NewStr("x")); err == nil {
		t.Fatal("expected an error for a non-numeric value")
	}
}

func TestMathFunctions_UnaryAndBinary(t *testing.T) {
	fns := MathFunctions()

	sqrt, ok := fns["sqrt"]
	if !ok {
		t.Fatal("missing sqrt")
	}
	if v, err := sqrt(9); err != nil || v != 3 {
		t.Fatalf("sqrt(9) = %v, %v", v, err)
	}

	pow, ok := fns["pow"]
	if !ok {
		t.Fatal("missing pow")
	}
	if v, err := pow(2, 10); err != nil || v != 1024 {
		t.Fatalf("pow(2, 10) = %v, %v", v, err)
	}

	logOneArg, ok := fns["log"]
	if !ok {
		t.Fatal("missing log")
	}
	if v, err := logOneArg(math.E); err != nil || math.Abs(v-1) > 1e-12 {
		t.Fatalf("log(e) = %v, %v", v, err)
	}
	if v, err := logOneArg(8, 2); err != nil || math.Abs(v-3) > 1e-12 {
		t.Fatalf("log(8, 2) = %v, %v", v, err)
	}

	hypot, ok := fns["hypot"]
	if !ok {
		t.Fatal("missing hypot")
	}
	if v, err := hypot(3, 4); err != nil || v != 5 {
		t.Fatalf("hypot(3, 4) = %v, %v", v, err)
	}
}

func TestIsNaNIsInf(t *testing.T) {
	if !IsNaN(math.NaN()) {
		t.Fatal("IsNaN(NaN) = false")
	}
	if IsNaN(1.0) {
		t.Fatal("IsNaN(1.0) = true")
	}
	if !IsInf(math.Inf(-1)) {
		t.Fatal("IsInf(-Inf) = false")
	}
	if IsInf(1.0) {
		t.Fatal("IsInf(1.0) = true")
	}
}
