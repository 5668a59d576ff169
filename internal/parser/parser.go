// Package parser turns an SL token stream into an AST, using Pratt
// (operator-precedence) parsing for expressions per §4.2 of the base spec.
package parser

import (
	"fmt"

	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/lexer"
)

// Precedence levels, lowest to highest, matching §4.2's grammar order.
const (
	_ int = iota
	LOWEST
	TERNARY // X if C else Y
	OR_PREC
	AND_PREC
	COMPARE // < > <= >= == != in / not in / is / is not (chained)
	BITOR
	BITXOR
	BITAND
	SHIFT
	SUM
	PRODUCT
	UNARY // unary + - ~
	POWER // ** (right-associative)
	AWAIT_PREC
	CALL // call/index/member postfix suffixes
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:      OR_PREC,
	lexer.AND:     AND_PREC,
	lexer.LT:      COMPARE,
	lexer.GT:      COMPARE,
	lexer.LE:      COMPARE,
	lexer.GE:      COMPARE,
	lexer.EQ:      COMPARE,
	lexer.NE:      COMPARE,
	lexer.IN:      COMPARE,
	lexer.IS:      COMPARE,
	lexer.PIPE:    BITOR,
	lexer.CARET:   BITXOR,
	lexer.AMP:     BITAND,
	lexer.LSHIFT:  SHIFT,
	lexer.RSHIFT:  SHIFT,
	lexer.PLUS:    SUM,
	lexer.MINUS:   SUM,
	lexer.STAR:    PRODUCT,
	lexer.SLASH:   PRODUCT,
	lexer.DSLASH:  PRODUCT,
	lexer.PERCENT: PRODUCT,
	lexer.AT:      PRODUCT,
	lexer.DSTAR:   POWER,
	lexer.LPAREN:  CALL,
	lexer.LBRACKET: CALL,
	lexer.DOT:     CALL,
}

type prefixFn func() ast.Expression
type infixFn func(ast.Expression) ast.Expression

// Parser consumes a lexer.Lexer's token stream and produces an *ast.Module.
type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	errors []*Error

	prefixFns map[lexer.TokenType]prefixFn
	infixFns  map[lexer.TokenType]infixFn
}

// Error is a SyntaxError raised during parsing.
type Error struct {
	Message string
	Pos     lexer.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("SyntaxError: %s at %s", e.Message, e.Pos)
}

// New creates a Parser over l and primes the two-token lookahead buffer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.prefixFns = map[lexer.TokenType]prefixFn{}
	p.infixFns = map[lexer.TokenType]infixFn{}
	p.registerExpressionFns()
	p.advance()
	p.advance()
	return p
}

// Errors returns every SyntaxError accumulated while parsing.
func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) addErrorf(pos lexer.Position, format string, args ...any) {
	p.errors = append(p.errors, &Error{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if !p.curIs(t) {
		p.addErrorf(p.cur.Pos, "expected %s, got %s", t, p.cur.Type)
		tok := p.cur
		return tok
	}
	tok := p.cur
	p.advance()
	return tok
}

func (p *Parser) skipNewlines() {
	for p.curIs(lexer.NEWLINE) || p.curIs(lexer.SEMI) {
		p.advance()
	}
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseModule parses the whole token stream into a Module node.
func ParseModule(source string) (*ast.Module, []*Error) {
	l := lexer.New(source)
	p := New(l)
	mod := p.parseModule()
	for _, le := range l.Errors() {
		p.addErrorf(le.Pos, "%s", le.Message)
	}
	return mod, p.errors
}

func (p *Parser) parseModule() *ast.Module {
	mod := &ast.Module{}
	p.skipNewlines()
	for !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			mod.Body = append(mod.Body, stmt)
		}
		p.skipNewlines()
	}
	return mod
}

// parseBlock parses a colon-introduced suite: either a single simple
// statement on the same line, or an INDENT...DEDENT delimited block.
func (p *Parser) parseBlock() []ast.Statement {
	p.expect(lexer.COLON)
	if p.curIs(lexer.NEWLINE) {
		p.skipNewlines()
		p.expect(lexer.INDENT)
		var body []ast.Statement
		for !p.curIs(lexer.DEDENT) && !p.curIs(lexer.EOF) {
			if s := p.parseStatement(); s != nil {
				body = append(body, s)
			}
			p.skipNewlines()
		}
		p.expect(lexer.DEDENT)
		return body
	}
	// Simple suite: one or more semicolon-separated simple statements.
	var body []ast.Statement
	for {
		if s := p.parseSimpleStatement(); s != nil {
			body = append(body, s)
		}
		if p.curIs(lexer.SEMI) {
			p.advance()
			continue
		}
		break
	}
	if p.curIs(lexer.NEWLINE) {
		p.advance()
	}
	return body
}
