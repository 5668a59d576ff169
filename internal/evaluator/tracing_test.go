package evaluator_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/go-sli/internal/evaluator"
	"github.com/cwbudde/go-sli/internal/parser"
)

func TestEval_TracingWritesCallEntryExit(t *testing.T) {
	var trace bytes.Buffer
	ev := evaluator.New(evaluator.WithTracing(&trace))

	mod, errs := parser.ParseModule(`
def add(a, b):
    return a + b

add(1, 2)
`)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if _, err := ev.Run(mod); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	out := trace.String()
	if !strings.Contains(out, "-> add") || !strings.Contains(out, "<- add") {
		t.Fatalf("trace output missing call markers: %q", out)
	}
}

func TestEval_NoTracingByDefault(t *testing.T) {
	ev := evaluator.New()
	mod, errs := parser.ParseModule(`
def f():
    return 1

f()
`)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if _, err := ev.Run(mod); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if ev.Trace != nil {
		t.Fatalf("expected Trace to be nil by default")
	}
}
