package builtins

import (
	"fmt"
	"math"

	"github.com/cwbudde/go-sli/internal/runtime"
)

// MathConstants are the module-level constants `math.pi`, `math.e`,
// `math.tau`, `math.inf`, and `math.nan` installed alongside the function
// table below.
func MathConstants() map[string]runtime.Value {
	return map[string]runtime.Value{
		"pi":  runtime.NewFloat(math.Pi),
		"e":   runtime.NewFloat(math.E),
		"tau": runtime.NewFloat(math.Pi * 2),
		"inf": runtime.NewFloat(math.Inf(1)),
		"nan": runtime.NewFloat(math.NaN()),
	}
}

// toFloat coerces any NumericValue (Int, Float, Bool) to float64 for the
// stdlib math functions backing this module; there is no pack library
// offering transcendental functions, so this one corner of the domain
// stack is justified stdlib (see DESIGN.md).
func toFloat(v runtime.Value) (float64, error) {
	n, ok := v.(runtime.NumericValue)
	if !ok {
		return 0, fmt.Errorf("must be real number, not %s", v.Type())
	}
	f, _ := n.AsFloat()
	return f, nil
}

// MathFunctions returns the `math` module's unary and binary function
// table, each entry a plain Go func taking already-unwrapped float64
// arguments; internal/evaluator wraps each as a BuiltinCallableValue that
// unwraps/raises using the evaluator's exception machinery.
func MathFunctions() map[string]func(args ...float64) (float64, error) {
	unary := func(f func(float64) float64) func(args ...float64) (float64, error) {
		return func(args ...float64) (float64, error) { return f(args[0]), nil }
	}
	return map[string]func(args ...float64) (float64, error){
		"sqrt":  unary(math.Sqrt),
		"floor": unary(math.Floor),
		"ceil":  unary(math.Ceil),
		"trunc": unary(math.Trunc),
		"exp":   unary(math.Exp),
		"log2":  unary(math.Log2),
		"log10": unary(math.Log10),
		"sin":   unary(math.Sin),
		"cos":   unary(math.Cos),
		"tan":   unary(math.Tan),
		"asin":  unary(math.Asin),
		"acos":  unary(math.Acos),
		"atan":  unary(math.Atan),
		"degrees": unary(func(x float64) float64 { return x * 180 / math.Pi }),
		"radians": unary(func(x float64) float64 { return x * math.Pi / 180 }),
		"log": func(args ...float64) (float64, error) {
			if len(args) == 2 {
				return math.Log(args[0]) / math.Log(args[1]), nil
			}
			return math.Log(args[0]), nil
		},
		"pow": func(args ...float64) (float64, error) {
			return math.Pow(args[0], args[1]), nil
		},
		"atan2": func(args ...float64) (float64, error) {
			return math.Atan2(args[0], args[1]), nil
		},
		"hypot": func(args ...float64) (float64, error) {
			return math.Hypot(args[0], args[1]), nil
		},
	}
}

// ToFloat is the exported entry point internal/evaluator uses to coerce a
// single SL numeric Value before calling into MathFunctions.
func ToFloat(v runtime.Value) (float64, error) { return toFloat(v) }

// IsNaN and IsInf back math.isnan/math.isinf.
func IsNaN(f float64) bool { return math.IsNaN(f) }
func IsInf(f float64) bool { return math.IsInf(f, 0) }
