package evaluator_test

import (
	"testing"

	"github.com/cwbudde/go-sli/internal/runtime"
)

func TestEval_GeneratorExceptionPropagatesThroughFor(t *testing.T) {
	src := `
def g():
    yield 1
    raise ValueError("boom")

total = 0
for v in g():
    total += v
total
`
	err := runErr(t, src)
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		t.Fatalf("expected *runtime.ExceptionValue, got %T", err)
	}
	if exc.Class.Name != "ValueError" {
		t.Fatalf("exception class = %q, want ValueError", exc.Class.Name)
	}
}

func TestEval_GeneratorExceptionPropagatesThroughNext(t *testing.T) {
	src := `
def g():
    yield 1
    raise ValueError("boom")

it = iter(g())
next(it)
next(it)
`
	err := runErr(t, src)
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		t.Fatalf("expected *runtime.ExceptionValue, got %T", err)
	}
	if exc.Class.Name != "ValueError" {
		t.Fatalf("exception class = %q, want ValueError", exc.Class.Name)
	}
}

func TestEval_GeneratorExceptionPropagatesThroughList(t *testing.T) {
	src := `
def g():
    yield 1
    raise ValueError("boom")

list(g())
`
	err := runErr(t, src)
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		t.Fatalf("expected *runtime.ExceptionValue, got %T", err)
	}
	if exc.Class.Name != "ValueError" {
		t.Fatalf("exception class = %q, want ValueError", exc.Class.Name)
	}
}

func TestEval_GeneratorExceptionPropagatesThroughUnpacking(t *testing.T) {
	src := `
def g():
    yield 1
    yield 2
    raise ValueError("boom")

a, b, c = g()
`
	err := runErr(t, src)
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		t.Fatalf("expected *runtime.ExceptionValue, got %T", err)
	}
	if exc.Class.Name != "ValueError" {
		t.Fatalf("exception class = %q, want ValueError", exc.Class.Name)
	}
}

func TestEval_GeneratorExceptionPropagatesThroughYieldFrom(t *testing.T) {
	src := `
def inner():
    yield 1
    raise ValueError("boom")

def outer():
    yield from inner()

total = 0
for v in outer():
    total += v
total
`
	err := runErr(t, src)
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		t.Fatalf("expected *runtime.ExceptionValue, got %T", err)
	}
	if exc.Class.Name != "ValueError" {
		t.Fatalf("exception class = %q, want ValueError", exc.Class.Name)
	}
}

func TestEval_GeneratorCleanExhaustionHitsElseClause(t *testing.T) {
	// A generator that simply returns (no exception) must still take the
	// for...else branch, proving the fix didn't turn plain exhaustion into
	// an error.
	src := `
def g():
    yield 1
    yield 2

total = 0
for v in g():
    total += v
else:
    total += 100
total
`
	wantInt(t, run(t, src), 103)
}

func TestEval_GeneratorExceptionPropagatesThroughMap(t *testing.T) {
	src := `
def g():
    yield 1
    raise ValueError("boom")

list(map(lambda x: x * 2, g()))
`
	err := runErr(t, src)
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		t.Fatalf("expected *runtime.ExceptionValue, got %T", err)
	}
	if exc.Class.Name != "ValueError" {
		t.Fatalf("exception class = %q, want ValueError", exc.Class.Name)
	}
}

func TestEval_UserDefinedIteratorProtocol(t *testing.T) {
	src := `
class Counter:
    def __init__(self, limit):
        self.limit = limit
        self.n = 0
    def __iter__(self):
        return self
    def __next__(self):
        if self.n >= self.limit:
            raise StopIteration()
        self.n += 1
        return self.n

total = 0
for x in Counter(3):
    total += x
total
`
	wantInt(t, run(t, src), 6)
}

func TestEval_UserDefinedIteratorWithSeparateIterable(t *testing.T) {
	// __iter__ returns a distinct iterator object rather than self, the way
	// a container class commonly does.
	src := `
class CounterIterator:
    def __init__(self, limit):
        self.limit = limit
        self.n = 0
    def __next__(self):
        if self.n >= self.limit:
            raise StopIteration()
        self.n += 1
        return self.n

class Counter:
    def __init__(self, limit):
        self.limit = limit
    def __iter__(self):
        return CounterIterator(self.limit)

list(Counter(3))
`
	v := run(t, src)
	lst, ok := v.(*runtime.ListValue)
	if !ok || lst.Length() != 3 {
		t.Fatalf("expected a 3-element list, got %#v", v)
	}
}

func TestEval_UserDefinedIteratorPropagatesNonStopIterationError(t *testing.T) {
	src := `
class Bomb:
    def __iter__(self):
        return self
    def __next__(self):
        raise ValueError("boom")

for x in Bomb():
    pass
`
	err := runErr(t, src)
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		t.Fatalf("expected *runtime.ExceptionValue, got %T", err)
	}
	if exc.Class.Name != "ValueError" {
		t.Fatalf("exception class = %q, want ValueError", exc.Class.Name)
	}
}

func TestEval_NonIterableRaisesTypeError(t *testing.T) {
	err := runErr(t, `
class Plain:
    pass

for x in Plain():
    pass
`)
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		t.Fatalf("expected *runtime.ExceptionValue, got %T", err)
	}
	if exc.Class.Name != "TypeError" {
		t.Fatalf("exception class = %q, want TypeError", exc.Class.Name)
	}
}

func TestEval_WithStillClosesOuterManagerWhenInnerExitRaises(t *testing.T) {
	// b.__exit__ raises while the body is also unwinding from an exception;
	// a.__exit__ must still run exactly once.
	src := `
class A:
    def __init__(self, log):
        self.log = log
    def __enter__(self):
        return self
    def __exit__(self, exc_type, exc_val, exc_tb):
        self.log.append("a_exit")
        return False

class B:
    def __enter__(self):
        return self
    def __exit__(self, exc_type, exc_val, exc_tb):
        raise RuntimeError("exit failed")

log = []
a = A(log)
with a, B():
    raise ValueError("body failed")
`
	err := runErr(t, src)
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		t.Fatalf("expected *runtime.ExceptionValue, got %T", err)
	}
	if exc.Class.Name != "RuntimeError" {
		t.Fatalf("exception class = %q, want RuntimeError (the last __exit__ failure)", exc.Class.Name)
	}
}

func TestEval_WithCallsEveryExitExactlyOnceOnInnerExitError(t *testing.T) {
	src := `
class Tracking:
    def __init__(self, name, log, fail):
        self.name = name
        self.log = log
        self.fail = fail
    def __enter__(self):
        return self
    def __exit__(self, exc_type, exc_val, exc_tb):
        self.log.append(self.name)
        if self.fail:
            raise RuntimeError(self.name + " failed")
        return False

log = []
a = Tracking("a", log, False)
b = Tracking("b", log, True)
c = Tracking("c", log, False)
try:
    with a, b, c:
        pass
except RuntimeError:
    pass
",".join(log)
`
	// __exit__ runs in reverse acquisition order: c, then b (raises), then a.
	wantStr(t, run(t, src), "c,b,a")
}
