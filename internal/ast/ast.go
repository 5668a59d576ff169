// Package ast defines the abstract syntax tree node types produced by the
// parser and consumed by the evaluator.
package ast

import (
	"strings"

	"github.com/cwbudde/go-sli/internal/lexer"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() lexer.Position
	String() string
}

// Statement is any node that performs an action but does not itself
// produce a value.
type Statement interface {
	Node
	statementNode()
}

// Expression is any node that evaluates to a Value.
type Expression interface {
	Node
	expressionNode()
}

type base struct {
	Position lexer.Position
}

func (b base) Pos() lexer.Position { return b.Position }

// Module is the root node: a sequence of top-level statements.
type Module struct {
	base
	Body []Statement
}

func (m *Module) String() string {
	var sb strings.Builder
	for _, s := range m.Body {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Param describes one parameter slot of a function-like node.
type ParamKind int

const (
	ParamPositionalOrKeyword ParamKind = iota
	ParamKeywordOnly
	ParamStarArgs
	ParamStarStarKwargs
)

type Param struct {
	Name    string
	Kind    ParamKind
	Default Expression // nil if no default
	Annot   Expression // nil if no annotation
}
