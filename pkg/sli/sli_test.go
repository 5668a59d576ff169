package sli

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/cwbudde/go-sli/internal/runtime"
)

func TestRun_TrailingExpressionIsResult(t *testing.T) {
	interp := New()
	v, err := interp.Run("1 + 2 * 3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := ToHost(v); got != int64(7) {
		t.Fatalf("result = %v, want 7", got)
	}
}

func TestRun_FunctionDefinitionAndCall(t *testing.T) {
	interp := New()
	v, err := interp.Run("def add(a, b):\n    return a + b\nadd(3, 4)")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := ToHost(v); got != int64(7) {
		t.Fatalf("result = %v, want 7", got)
	}
}

func TestRun_PrintGoesToConfiguredStdout(t *testing.T) {
	var buf bytes.Buffer
	interp := New(WithStdout(&buf))
	_, err := interp.Run(`print("hello")`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "hello" {
		t.Fatalf("stdout = %q, want %q", buf.String(), "hello")
	}
}

func TestRun_TracingWritesToConfiguredStdout(t *testing.T) {
	var buf bytes.Buffer
	interp := New(WithStdout(&buf), WithTracing(true))
	_, err := interp.Run("def f():\n    return 1\nf()")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(buf.String(), "-> f") {
		t.Fatalf("stdout = %q, want it to contain a trace line for f", buf.String())
	}
}

func TestRun_SyntaxErrorSurfacesAsRunError(t *testing.T) {
	interp := New()
	_, err := interp.Run("x = \n")
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
	re, ok := err.(*RunError)
	if !ok {
		t.Fatalf("expected *RunError, got %T", err)
	}
	if re.Kind != "SyntaxError" {
		t.Fatalf("Kind = %q, want SyntaxError", re.Kind)
	}
}

func TestRun_UncaughtExceptionSurfacesAsRunError(t *testing.T) {
	interp := New()
	_, err := interp.Run(`raise ValueError("bad value")`)
	if err == nil {
		t.Fatalf("expected an uncaught exception")
	}
	re, ok := err.(*RunError)
	if !ok {
		t.Fatalf("expected *RunError, got %T", err)
	}
	if re.Kind != "ValueError" {
		t.Fatalf("Kind = %q, want ValueError", re.Kind)
	}
	if re.Message != "bad value" {
		t.Fatalf("Message = %q, want %q", re.Message, "bad value")
	}
}

func TestRun_CaughtExceptionDoesNotPropagate(t *testing.T) {
	interp := New()
	src := "try:\n    raise ValueError('x')\nexcept ValueError:\n    result = 42\nresult"
	v, err := interp.Run(src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := ToHost(v); got != int64(42) {
		t.Fatalf("result = %v, want 42", got)
	}
}

func TestGlobalScope_SetThenVisibleToScript(t *testing.T) {
	interp := New()
	if err := interp.GlobalScope().Set("seed", int64(10)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := interp.Run("seed + 5")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := ToHost(v); got != int64(15) {
		t.Fatalf("result = %v, want 15", got)
	}
}

func TestGlobalScope_GetAfterRun(t *testing.T) {
	interp := New()
	if _, err := interp.Run("x = 99"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	v, ok := interp.GlobalScope().Get("x")
	if !ok {
		t.Fatalf("expected 'x' to be defined")
	}
	if v != int64(99) {
		t.Fatalf("Get('x') = %v, want 99", v)
	}
}

func TestRunAsync_ResolvesOnChannel(t *testing.T) {
	interp := New()
	res := <-interp.RunAsync("2 * 21")
	if res.Err != nil {
		t.Fatalf("RunAsync: %v", res.Err)
	}
	if got := ToHost(res.Value); got != int64(42) {
		t.Fatalf("result = %v, want 42", got)
	}
}

func TestToHost_Conversions(t *testing.T) {
	if ToHost(runtime.None) != nil {
		t.Fatalf("ToHost(None) should be nil")
	}
	if ToHost(runtime.True) != true {
		t.Fatalf("ToHost(True) should be true")
	}
	if ToHost(runtime.NewStr("hi")) != "hi" {
		t.Fatalf("ToHost(str) mismatch")
	}
	lst := runtime.NewList([]runtime.Value{runtime.NewInt(1), runtime.NewInt(2)})
	got, ok := ToHost(lst).([]any)
	if !ok || len(got) != 2 || got[0] != int64(1) || got[1] != int64(2) {
		t.Fatalf("ToHost(list) = %#v", got)
	}
}

func TestToHost_BigIntBeyondInt64(t *testing.T) {
	huge, _ := runtime.NewIntFromString("123456789012345678901234567890", 10)
	got := ToHost(huge)
	bi, ok := got.(*big.Int)
	if !ok {
		t.Fatalf("expected *big.Int for a value beyond int64 range, got %T", got)
	}
	if bi.String() != "123456789012345678901234567890" {
		t.Fatalf("big.Int value = %s, want 123456789012345678901234567890", bi.String())
	}
}

func TestFromHost_RoundTrip(t *testing.T) {
	v, err := FromHost([]any{int64(1), "two", true, nil})
	if err != nil {
		t.Fatalf("FromHost: %v", err)
	}
	back := ToHost(v)
	arr, ok := back.([]any)
	if !ok || len(arr) != 4 {
		t.Fatalf("round trip mismatch: %#v", back)
	}
	if arr[0] != int64(1) || arr[1] != "two" || arr[2] != true || arr[3] != nil {
		t.Fatalf("round trip values mismatch: %#v", arr)
	}
}

func TestFromHost_RejectsUnsupportedType(t *testing.T) {
	_, err := FromHost(struct{}{})
	if err == nil {
		t.Fatalf("expected an error converting an unsupported type")
	}
}
