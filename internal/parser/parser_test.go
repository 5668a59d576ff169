package parser

import (
	"testing"

	"github.com/cwbudde/go-sli/internal/ast"
)

func checkNoErrors(t *testing.T, errs []*Error) {
	t.Helper()
	if len(errs) != 0 {
		for _, e := range errs {
			t.Errorf("parser error: %s", e.Error())
		}
		t.FailNow()
	}
}

func TestParseModule_SimpleAssignment(t *testing.T) {
	mod, errs := ParseModule("x = 1 + 2\n")
	checkNoErrors(t, errs)
	if len(mod.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(mod.Body))
	}
	assign, ok := mod.Body[0].(*ast.Assign)
	if !ok {
		t.Fatalf("statement is not *ast.Assign, got %T", mod.Body[0])
	}
	if len(assign.Targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(assign.Targets))
	}
	ident, ok := assign.Targets[0].(*ast.Identifier)
	if !ok || ident.Name != "x" {
		t.Fatalf("expected target identifier 'x', got %#v", assign.Targets[0])
	}
	bin, ok := assign.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("expected *ast.Binary value, got %T", assign.Value)
	}
	if bin.Op.String() != "+" {
		t.Fatalf("expected '+' operator, got %q", bin.Op.String())
	}
}

func TestParseModule_OperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 must bind as 1 + (2 * 3), not (1 + 2) * 3.
	mod, errs := ParseModule("x = 1 + 2 * 3\n")
	checkNoErrors(t, errs)
	assign := mod.Body[0].(*ast.Assign)
	outer, ok := assign.Value.(*ast.Binary)
	if !ok || outer.Op.String() != "+" {
		t.Fatalf("expected outer '+' binary, got %#v", assign.Value)
	}
	if _, ok := outer.Left.(*ast.IntLiteral); !ok {
		t.Fatalf("expected left operand to be IntLiteral, got %T", outer.Left)
	}
	inner, ok := outer.Right.(*ast.Binary)
	if !ok || inner.Op.String() != "*" {
		t.Fatalf("expected inner '*' binary on the right, got %#v", outer.Right)
	}
}

func TestParseModule_IfElse(t *testing.T) {
	input := "if x:\n    y = 1\nelse:\n    y = 2\n"
	mod, errs := ParseModule(input)
	checkNoErrors(t, errs)
	if len(mod.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(mod.Body))
	}
	ifStmt, ok := mod.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", mod.Body[0])
	}
	if len(ifStmt.Body) != 1 || len(ifStmt.Orelse) != 1 {
		t.Fatalf("expected 1 body stmt and 1 orelse stmt, got %d/%d", len(ifStmt.Body), len(ifStmt.Orelse))
	}
}

func TestParseModule_FunctionDecl(t *testing.T) {
	input := "def add(a, b):\n    return a + b\n"
	mod, errs := ParseModule(input)
	checkNoErrors(t, errs)
	fn, ok := mod.Body[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", mod.Body[0])
	}
	if fn.Name != "add" {
		t.Fatalf("expected name 'add', got %q", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body))
	}
	if _, ok := fn.Body[0].(*ast.Return); !ok {
		t.Fatalf("expected Return statement, got %T", fn.Body[0])
	}
}

func TestParseModule_ClassDecl(t *testing.T) {
	input := "class Animal:\n    def speak(self):\n        pass\n"
	mod, errs := ParseModule(input)
	checkNoErrors(t, errs)
	cls, ok := mod.Body[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected *ast.ClassDecl, got %T", mod.Body[0])
	}
	if cls.Name != "Animal" {
		t.Fatalf("expected name 'Animal', got %q", cls.Name)
	}
	if len(cls.Body) != 1 {
		t.Fatalf("expected 1 class member, got %d", len(cls.Body))
	}
}

func TestParseModule_ListAndCall(t *testing.T) {
	mod, errs := ParseModule("xs = [1, 2, 3]\nprint(xs)\n")
	checkNoErrors(t, errs)
	if len(mod.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(mod.Body))
	}
	assign := mod.Body[0].(*ast.Assign)
	lst, ok := assign.Value.(*ast.ListLiteral)
	if !ok || len(lst.Elements) != 3 {
		t.Fatalf("expected 3-element list literal, got %#v", assign.Value)
	}
	exprStmt, ok := mod.Body[1].(*ast.ExprStatement)
	if !ok {
		t.Fatalf("expected ExprStatement, got %T", mod.Body[1])
	}
	call, ok := exprStmt.X.(*ast.Call)
	if !ok {
		t.Fatalf("expected *ast.Call, got %T", exprStmt.X)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 call arg, got %d", len(call.Args))
	}
}

func TestParseModule_TryExceptFinally(t *testing.T) {
	input := "try:\n    risky()\nexcept ValueError as e:\n    handle(e)\nfinally:\n    cleanup()\n"
	mod, errs := ParseModule(input)
	checkNoErrors(t, errs)
	tryStmt, ok := mod.Body[0].(*ast.Try)
	if !ok {
		t.Fatalf("expected *ast.Try, got %T", mod.Body[0])
	}
	if len(tryStmt.Handlers) != 1 {
		t.Fatalf("expected 1 except handler, got %d", len(tryStmt.Handlers))
	}
	if len(tryStmt.Finally) != 1 {
		t.Fatalf("expected 1 finally statement, got %d", len(tryStmt.Finally))
	}
}

func TestParseModule_ErrorRecoveryReportsPosition(t *testing.T) {
	_, errs := ParseModule("x = \n")
	if len(errs) == 0 {
		t.Fatalf("expected at least one syntax error")
	}
	if errs[0].Pos.Line != 1 {
		t.Fatalf("expected error on line 1, got %d", errs[0].Pos.Line)
	}
}

func TestParseModule_ForLoop(t *testing.T) {
	input := "for x in range(10):\n    print(x)\n"
	mod, errs := ParseModule(input)
	checkNoErrors(t, errs)
	forStmt, ok := mod.Body[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", mod.Body[0])
	}
	if len(forStmt.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(forStmt.Body))
	}
}
