package evaluator_test

import (
	"testing"

	"github.com/cwbudde/go-sli/internal/evaluator"
	"github.com/cwbudde/go-sli/internal/parser"
	"github.com/cwbudde/go-sli/internal/runtime"
	"github.com/kr/pretty"
)

func run(t *testing.T, source string) runtime.Value {
	t.Helper()
	mod, errs := parser.ParseModule(source)
	if len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", source, errs)
	}
	ev := evaluator.New()
	v, err := ev.Run(mod)
	if err != nil {
		t.Fatalf("eval error for %q: %v", source, err)
	}
	return v
}

func runErr(t *testing.T, source string) error {
	t.Helper()
	mod, errs := parser.ParseModule(source)
	if len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", source, errs)
	}
	ev := evaluator.New()
	_, err := ev.Run(mod)
	if err == nil {
		t.Fatalf("expected an evaluation error for %q", source)
	}
	return err
}

func wantInt(t *testing.T, v runtime.Value, want int64) {
	t.Helper()
	iv, ok := v.(*runtime.IntValue)
	if !ok || !iv.Val.IsInt64() || iv.Val.Int64() != want {
		t.Fatalf("value = %# v, want int %d", pretty.Formatter(v), want)
	}
}

func wantStr(t *testing.T, v runtime.Value, want string) {
	t.Helper()
	sv, ok := v.(*runtime.StrValue)
	if !ok || sv.Value != want {
		t.Fatalf("value = %# v, want str %q", pretty.Formatter(v), want)
	}
}

func TestEval_ClosureCapturesEnclosingScope(t *testing.T) {
	src := `
def make_counter():
    count = 0
    def increment():
        nonlocal count
        count += 1
        return count
    return increment

c = make_counter()
c()
c()
c()
`
	wantInt(t, run(t, src), 3)
}

func TestEval_ClassInheritanceAndC3MRO(t *testing.T) {
	// D(B, C) inherits `who` without overriding it; C3 linearization puts B
	// ahead of C, so D's instances should pick up B's version.
	src := `
class A:
    def who(self):
        return "A"

class B(A):
    def who(self):
        return "B"

class C(A):
    def who(self):
        return "C"

class D(B, C):
    pass

D().who()
`
	wantStr(t, run(t, src), "B")
}

func TestEval_SuperCallsNextClassInMRO(t *testing.T) {
	src := `
class Animal:
    def speak(self):
        return "..."

class Dog(Animal):
    def speak(self):
        return "Woof, and also: " + super().speak()

Dog().speak()
`
	wantStr(t, run(t, src), "Woof, and also: ...")
}

func TestEval_SuperCooperativeDiamond(t *testing.T) {
	// Each class's speak() calls super().speak() before adding its own
	// letter; C3 linearization (D -> B -> C -> A) means every ancestor's
	// contribution is visited exactly once, in MRO order.
	src := `
log = []

class A:
    def speak(self):
        log.append("A")

class B(A):
    def speak(self):
        super().speak()
        log.append("B")

class C(A):
    def speak(self):
        super().speak()
        log.append("C")

class D(B, C):
    def speak(self):
        super().speak()
        log.append("D")

D().speak()
"".join(log)
`
	wantStr(t, run(t, src), "ACBD")
}

func TestEval_ClassNameDunder(t *testing.T) {
	src := `
class Widget:
    pass

Widget.__name__
`
	wantStr(t, run(t, src), "Widget")
}

func TestEval_DunderOperatorOverload(t *testing.T) {
	src := `
class Vec:
    def __init__(self, x, y):
        self.x = x
        self.y = y
    def __add__(self, other):
        return Vec(self.x + other.x, self.y + other.y)
    def __eq__(self, other):
        return self.x == other.x and self.y == other.y

a = Vec(1, 2)
b = Vec(3, 4)
c = a + b
c == Vec(4, 6)
`
	v := run(t, src)
	b, ok := v.(*runtime.BoolValue)
	if !ok || !b.Value {
		t.Fatalf("expected True, got %#v", v)
	}
}

func TestEval_ListComprehensionWithFilter(t *testing.T) {
	src := `squares = [x * x for x in range(10) if x % 2 == 0]
sum(squares)`
	// 0^2 + 2^2 + 4^2 + 6^2 + 8^2 = 0+4+16+36+64 = 120
	wantInt(t, run(t, src), 120)
}

func TestEval_GeneratorYieldsLazily(t *testing.T) {
	src := `
def countdown(n):
    while n > 0:
        yield n
        n -= 1

total = 0
for v in countdown(4):
    total += v
total
`
	wantInt(t, run(t, src), 10)
}

func TestEval_FStringFormatting(t *testing.T) {
	src := `name = "world"
f"hello, {name}!"`
	wantStr(t, run(t, src), "hello, world!")
}

func TestEval_WithStatementContextManagerProtocol(t *testing.T) {
	src := `
class Ctx:
    def __init__(self):
        self.entered = False
        self.exited = False
    def __enter__(self):
        self.entered = True
        return self
    def __exit__(self, exc_type, exc_val, exc_tb):
        self.exited = True
        return False

c = Ctx()
with c as handle:
    pass
handle.entered and handle.exited
`
	v := run(t, src)
	b, ok := v.(*runtime.BoolValue)
	if !ok || !b.Value {
		t.Fatalf("expected True, got %#v", v)
	}
}

func TestEval_TryFinallyAlwaysRuns(t *testing.T) {
	src := `
log = []
def f():
    try:
        return 1
    finally:
        log.append("cleanup")

f()
len(log)
`
	wantInt(t, run(t, src), 1)
}

func TestEval_UncaughtExceptionPropagatesAsGoError(t *testing.T) {
	err := runErr(t, `1 / 0`)
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		t.Fatalf("expected *runtime.ExceptionValue, got %T", err)
	}
	if exc.Class.Name != "ZeroDivisionError" {
		t.Fatalf("exception class = %q, want ZeroDivisionError", exc.Class.Name)
	}
}

func TestEval_DiamondInheritanceLinearizesWithoutError(t *testing.T) {
	// A valid C3 linearization exists for B(A), C(A), D(B, C): construction
	// must not error, and isinstance() must see D as an A through either
	// inheritance path.
	src := `
class A:
    pass
class B(A):
    pass
class C(A):
    pass
class D(B, C):
    pass
isinstance(D(), A)
`
	v := run(t, src)
	b, ok := v.(*runtime.BoolValue)
	if !ok || !b.Value {
		t.Fatalf("expected True, got %#v", v)
	}
}
