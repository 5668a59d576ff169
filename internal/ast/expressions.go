package ast

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-sli/internal/lexer"
)

func (*Identifier) expressionNode()      {}
func (*IntLiteral) expressionNode()      {}
func (*FloatLiteral) expressionNode()    {}
func (*StringLiteral) expressionNode()   {}
func (*BytesLiteral) expressionNode()    {}
func (*BoolLiteral) expressionNode()     {}
func (*NoneLiteral) expressionNode()     {}
func (*FString) expressionNode()         {}
func (*TupleLiteral) expressionNode()    {}
func (*ListLiteral) expressionNode()     {}
func (*DictLiteral) expressionNode()     {}
func (*SetLiteral) expressionNode()      {}
func (*Attribute) expressionNode()       {}
func (*Subscript) expressionNode()       {}
func (*Slice) expressionNode()           {}
func (*Call) expressionNode()            {}
func (*Unary) expressionNode()           {}
func (*Binary) expressionNode()          {}
func (*BoolOp) expressionNode()          {}
func (*Compare) expressionNode()         {}
func (*Ternary) expressionNode()         {}
func (*Lambda) expressionNode()          {}
func (*ListComp) expressionNode()        {}
func (*DictComp) expressionNode()        {}
func (*SetComp) expressionNode()         {}
func (*GeneratorExp) expressionNode()    {}
func (*Starred) expressionNode()         {}
func (*DoubleStarred) expressionNode()   {}
func (*Yield) expressionNode()           {}
func (*YieldFrom) expressionNode()       {}
func (*Await) expressionNode()           {}
func (*Walrus) expressionNode()          {}

// Identifier is a name reference.
type Identifier struct {
	base
	Name string
}

func (i *Identifier) String() string { return i.Name }

type IntLiteral struct {
	base
	Text string // decimal text; may exceed int64, kept as text for big.Int
}

func (l *IntLiteral) String() string { return l.Text }

type FloatLiteral struct {
	base
	Value float64
}

func (l *FloatLiteral) String() string { return fmt.Sprintf("%g", l.Value) }

type StringLiteral struct {
	base
	Value string
}

func (l *StringLiteral) String() string { return fmt.Sprintf("%q", l.Value) }

type BytesLiteral struct {
	base
	Value []byte
}

func (l *BytesLiteral) String() string { return fmt.Sprintf("b%q", string(l.Value)) }

type BoolLiteral struct {
	base
	Value bool
}

func (l *BoolLiteral) String() string {
	if l.Value {
		return "True"
	}
	return "False"
}

type NoneLiteral struct{ base }

func (*NoneLiteral) String() string { return "None" }

// FStringPart is either a literal text run or an embedded expression hole.
type FStringPart struct {
	Literal    string // valid when Expr == nil
	Expr       Expression
	Conversion byte   // 'r', 's', 'a', or 0
	FormatSpec []FStringPart // nested parts, may itself contain holes
	SelfDoc    bool   // `{x=}` form: render "x=" + repr/str before the value
	RawExpr    string // original source text of Expr, for `{x=}`
}

type FString struct {
	base
	Parts []FStringPart
}

func (f *FString) String() string { return "f\"...\"" }

type TupleLiteral struct {
	base
	Elements []Expression
}

func (t *TupleLiteral) String() string { return exprListString(t.Elements) }

type ListLiteral struct {
	base
	Elements []Expression
}

func (l *ListLiteral) String() string { return "[" + exprListString(l.Elements) + "]" }

type DictEntry struct {
	Key   Expression // nil for a `**expr` spread entry
	Value Expression
}

type DictLiteral struct {
	base
	Entries []DictEntry
}

func (d *DictLiteral) String() string { return "{...}" }

type SetLiteral struct {
	base
	Elements []Expression
}

func (s *SetLiteral) String() string { return "{" + exprListString(s.Elements) + "}" }

func exprListString(es []Expression) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

type Attribute struct {
	base
	Value Expression
	Attr  string
}

func (a *Attribute) String() string { return a.Value.String() + "." + a.Attr }

type Subscript struct {
	base
	Value Expression
	Index Expression
}

func (s *Subscript) String() string { return s.Value.String() + "[" + s.Index.String() + "]" }

// Slice is an expression used inside a Subscript's Index position:
// start:stop:step, any part optional.
type Slice struct {
	base
	Start, Stop, Step Expression
}

func (s *Slice) String() string { return "slice" }

type Call struct {
	base
	Func     Expression
	Args     []Expression
	Keywords []Keyword // kw=val arguments, plus **mapping entries (Name == "")
}

type Keyword struct {
	Name  string // empty for **expr
	Value Expression
}

func (c *Call) String() string { return c.Func.String() + "(...)" }

type Unary struct {
	base
	Op   lexer.TokenType
	X    Expression
}

func (u *Unary) String() string { return u.Op.String() + u.X.String() }

type Binary struct {
	base
	Op          lexer.TokenType
	Left, Right Expression
}

func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.Op.String() + " " + b.Right.String() + ")"
}

// BoolOp is `and`/`or` short-circuit chains (kept distinct from Binary so
// the evaluator can short-circuit without inspecting Op).
type BoolOp struct {
	base
	Op     lexer.TokenType // AND or OR
	Values []Expression
}

func (b *BoolOp) String() string { return "boolop" }

// Compare models a chained comparison `a op1 b op2 c ...`.
type Compare struct {
	base
	Left  Expression
	Ops   []lexer.TokenType
	Comps []Expression
}

func (c *Compare) String() string { return "compare" }

type Ternary struct {
	base
	Body, Cond, Or Expression
}

func (t *Ternary) String() string { return t.Body.String() + " if ... else " + t.Or.String() }

type Lambda struct {
	base
	Params []Param
	Body   Expression
}

func (l *Lambda) String() string { return "lambda" }

// CompClause is one `for TARGETS in ITER [if COND]*` clause of a
// comprehension.
type CompClause struct {
	Targets Expression // Identifier, TupleLiteral/ListLiteral of targets
	Iter    Expression
	Ifs     []Expression
	IsAsync bool
}

type ListComp struct {
	base
	Elt     Expression
	Clauses []CompClause
}

func (*ListComp) String() string { return "listcomp" }

type SetComp struct {
	base
	Elt     Expression
	Clauses []CompClause
}

func (*SetComp) String() string { return "setcomp" }

type DictComp struct {
	base
	Key, Value Expression
	Clauses    []CompClause
}

func (*DictComp) String() string { return "dictcomp" }

type GeneratorExp struct {
	base
	Elt     Expression
	Clauses []CompClause
}

func (*GeneratorExp) String() string { return "genexpr" }

type Starred struct {
	base
	Value Expression
}

func (s *Starred) String() string { return "*" + s.Value.String() }

type DoubleStarred struct {
	base
	Value Expression
}

func (s *DoubleStarred) String() string { return "**" + s.Value.String() }

type Yield struct {
	base
	Value Expression // nil for bare `yield`
}

func (*Yield) String() string { return "yield" }

type YieldFrom struct {
	base
	Value Expression
}

func (*YieldFrom) String() string { return "yield from" }

type Await struct {
	base
	Value Expression
}

func (*Await) String() string { return "await" }

type Walrus struct {
	base
	Target *Identifier
	Value  Expression
}

func (w *Walrus) String() string { return w.Target.Name + " := " + w.Value.String() }
