package ast

import "testing"

func TestString_RepresentativeNodes(t *testing.T) {
	cases := []struct {
		name string
		node Node
		want string
	}{
		{"identifier", &Identifier{Name: "x"}, "x"},
		{"int literal", &IntLiteral{Text: "42"}, "42"},
		{"string literal", &StringLiteral{Value: "hi"}, `"hi"`},
		{"bool literal true", &BoolLiteral{Value: true}, "True"},
		{"none literal", &NoneLiteral{}, "None"},
		{
			"attribute",
			&Attribute{Value: &Identifier{Name: "obj"}, Attr: "field"},
			"obj.field",
		},
		{
			"call",
			&Call{Func: &Identifier{Name: "f"}},
			"f(...)",
		},
		{
			"subscript",
			&Subscript{Value: &Identifier{Name: "xs"}, Index: &IntLiteral{Text: "0"}},
			"xs[0]",
		},
		{"class decl", &ClassDecl{Name: "Widget"}, "class Widget"},
		{"function decl", &FunctionDecl{Name: "run"}, "def run(...)"},
		{"import", &Import{Module: "math"}, "import math"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.node.String(); got != c.want {
				t.Fatalf("String() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestModule_StringJoinsStatements(t *testing.T) {
	mod := &Module{
		Body: []Statement{
			&Pass{},
			&Break{},
		},
	}
	got := mod.String()
	if got == "" {
		t.Fatal("Module.String() returned empty output for a non-empty module")
	}
}
