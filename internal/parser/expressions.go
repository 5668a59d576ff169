package parser

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/lexer"
)

func (p *Parser) registerExpressionFns() {
	p.prefixFns[lexer.IDENT] = p.parseIdentifier
	p.prefixFns[lexer.INT] = p.parseIntLiteral
	p.prefixFns[lexer.FLOAT] = p.parseFloatLiteral
	p.prefixFns[lexer.STRING] = p.parseStringLiteral
	p.prefixFns[lexer.BYTES] = p.parseBytesLiteral
	p.prefixFns[lexer.FSTRING_START] = p.parseFString
	p.prefixFns[lexer.TRUE] = p.parseBool
	p.prefixFns[lexer.FALSE] = p.parseBool
	p.prefixFns[lexer.NONE] = p.parseNone
	p.prefixFns[lexer.LPAREN] = p.parseParenOrTuple
	p.prefixFns[lexer.LBRACKET] = p.parseListOrComprehension
	p.prefixFns[lexer.LBRACE] = p.parseDictOrSetOrComprehension
	p.prefixFns[lexer.MINUS] = p.parseUnary
	p.prefixFns[lexer.PLUS] = p.parseUnary
	p.prefixFns[lexer.TILDE] = p.parseUnary
	p.prefixFns[lexer.NOT] = p.parseUnary
	p.prefixFns[lexer.STAR] = p.parseStarred
	p.prefixFns[lexer.DSTAR] = p.parseDoubleStarred
	p.prefixFns[lexer.LAMBDA] = p.parseLambda
	p.prefixFns[lexer.YIELD] = p.parseYield
	p.prefixFns[lexer.AWAIT] = p.parseAwait

	p.infixFns[lexer.PLUS] = p.parseBinary
	p.infixFns[lexer.MINUS] = p.parseBinary
	p.infixFns[lexer.STAR] = p.parseBinary
	p.infixFns[lexer.SLASH] = p.parseBinary
	p.infixFns[lexer.DSLASH] = p.parseBinary
	p.infixFns[lexer.PERCENT] = p.parseBinary
	p.infixFns[lexer.AT] = p.parseBinary
	p.infixFns[lexer.AMP] = p.parseBinary
	p.infixFns[lexer.PIPE] = p.parseBinary
	p.infixFns[lexer.CARET] = p.parseBinary
	p.infixFns[lexer.LSHIFT] = p.parseBinary
	p.infixFns[lexer.RSHIFT] = p.parseBinary
	p.infixFns[lexer.DSTAR] = p.parsePower
	p.infixFns[lexer.AND] = p.parseBoolOp
	p.infixFns[lexer.OR] = p.parseBoolOp
	p.infixFns[lexer.LT] = p.parseCompare
	p.infixFns[lexer.GT] = p.parseCompare
	p.infixFns[lexer.LE] = p.parseCompare
	p.infixFns[lexer.GE] = p.parseCompare
	p.infixFns[lexer.EQ] = p.parseCompare
	p.infixFns[lexer.NE] = p.parseCompare
	p.infixFns[lexer.IN] = p.parseCompare
	p.infixFns[lexer.IS] = p.parseCompare
	p.infixFns[lexer.NOT] = p.parseCompare // `not in`
	p.infixFns[lexer.LPAREN] = p.parseCall
	p.infixFns[lexer.LBRACKET] = p.parseSubscript
	p.infixFns[lexer.DOT] = p.parseAttribute
}

// parseExpression is the Pratt loop: parse a prefix, then repeatedly fold
// in infix operators whose precedence exceeds `precedence`.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		p.addErrorf(p.cur.Pos, "unexpected token %s in expression", p.cur.Type)
		p.advance()
		return nil
	}
	left := prefix()

	for !p.curIs(lexer.NEWLINE) && precedence < p.curPrecedenceForInfix() {
		infix, ok := p.infixFns[p.cur.Type]
		if !ok {
			break
		}
		left = infix(left)
	}

	if p.curIs(lexer.WALRUS) {
		if id, ok := left.(*ast.Identifier); ok && precedence <= TERNARY {
			pos := p.cur.Pos
			p.advance()
			val := p.parseExpression(TERNARY)
			left = &ast.Walrus{Target: id, Value: val}
			_ = pos
		}
	}

	if precedence < TERNARY && p.curIs(lexer.IF) {
		left = p.parseTernaryTail(left)
	}

	return left
}

// curPrecedenceForInfix mirrors peekPrecedence but against the current
// token, since this parser folds infix operators by checking `cur` after
// a full prefix/infix sub-expression has already advanced onto the
// operator (unlike a peek-only design).
func (p *Parser) curPrecedenceForInfix() int {
	if p.curIs(lexer.NOT) && p.peekIs(lexer.IN) {
		return COMPARE
	}
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseExprFull() ast.Expression {
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.cur
	p.advance()
	return &ast.Identifier{Name: tok.Literal}
}

func (p *Parser) parseIntLiteral() ast.Expression {
	tok := p.cur
	p.advance()
	text := tok.IntValue
	if tok.IntBase != 10 && tok.IntBase != 0 {
		if n, err := strconv.ParseUint(text, tok.IntBase, 64); err == nil {
			text = strconv.FormatUint(n, 10)
		}
	}
	return &ast.IntLiteral{Text: text}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.cur
	p.advance()
	return &ast.FloatLiteral{Value: tok.FloatValue}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.cur
	val := tok.StrValue
	p.advance()
	// Adjacent string literal concatenation: "a" "b" == "ab".
	for p.curIs(lexer.STRING) {
		val += p.cur.StrValue
		p.advance()
	}
	return &ast.StringLiteral{Value: val}
}

func (p *Parser) parseBytesLiteral() ast.Expression {
	tok := p.cur
	p.advance()
	return &ast.BytesLiteral{Value: []byte(tok.StrValue)}
}

func (p *Parser) parseBool() ast.Expression {
	v := p.curIs(lexer.TRUE)
	p.advance()
	return &ast.BoolLiteral{Value: v}
}

func (p *Parser) parseNone() ast.Expression {
	p.advance()
	return &ast.NoneLiteral{}
}

// parseFString consumes FSTRING_START, a run of FSTRING_MIDDLE / FSTRING_EXPR
// tokens, and FSTRING_END, recursively parsing each hole's captured source
// text with a fresh Parser instance.
func (p *Parser) parseFString() ast.Expression {
	f := &ast.FString{}
	p.advance() // FSTRING_START
	for {
		switch p.cur.Type {
		case lexer.FSTRING_MIDDLE:
			if p.cur.StrValue != "" {
				f.Parts = append(f.Parts, ast.FStringPart{Literal: p.cur.StrValue})
			}
			p.advance()
		case lexer.FSTRING_EXPR:
			if p.cur.Literal != "" {
				f.Parts = append(f.Parts, ast.FStringPart{Literal: p.cur.Literal})
			}
			f.Parts = append(f.Parts, p.parseFStringHole(p.cur.StrValue))
			p.advance()
		case lexer.FSTRING_END:
			if p.cur.StrValue != "" {
				f.Parts = append(f.Parts, ast.FStringPart{Literal: p.cur.StrValue})
			}
			p.advance()
			return f
		default:
			return f
		}
	}
}

// parseFStringHole parses the raw text of one `{...}` hole: an expression,
// an optional trailing `=` (self-documenting form), an optional `!conv`,
// and an optional `:spec`.
func (p *Parser) parseFStringHole(raw string) ast.FStringPart {
	text := raw
	selfDoc := false
	trimmed := strings.TrimRight(text, " ")
	if strings.HasSuffix(trimmed, "=") && !strings.HasSuffix(trimmed, "==") &&
		!strings.HasSuffix(trimmed, "!=") && !strings.HasSuffix(trimmed, "<=") && !strings.HasSuffix(trimmed, ">=") {
		selfDoc = true
		text = trimmed[:len(trimmed)-1]
	}

	exprText, convByte, specText := splitFormatHole(text)

	exprP := New(lexer.New(exprText))
	expr := exprP.parseExprFull()

	part := ast.FStringPart{Expr: expr, SelfDoc: selfDoc, RawExpr: strings.TrimSpace(exprText), Conversion: convByte}
	if specText != "" {
		specParts := parseFormatSpecParts(specText)
		part.FormatSpec = specParts
	}
	return part
}

// splitFormatHole splits "expr!conv:spec" respecting bracket/quote nesting
// so that a `:` inside a nested string or call doesn't get mistaken for the
// format-spec separator.
func splitFormatHole(s string) (expr string, conv byte, spec string) {
	depth := 0
	var quote rune
	bangIdx, colonIdx := -1, -1
	for i, r := range s {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '!':
			if depth == 0 && bangIdx == -1 && colonIdx == -1 && i+1 < len(s) && s[i+1] != '=' {
				bangIdx = i
			}
		case ':':
			if depth == 0 && colonIdx == -1 {
				colonIdx = i
			}
		}
	}
	switch {
	case bangIdx >= 0 && (colonIdx == -1 || bangIdx < colonIdx):
		expr = s[:bangIdx]
		if colonIdx >= 0 {
			conv = s[bangIdx+1]
			spec = s[colonIdx+1:]
		} else {
			conv = s[bangIdx+1]
		}
	case colonIdx >= 0:
		expr = s[:colonIdx]
		spec = s[colonIdx+1:]
	default:
		expr = s
	}
	return expr, conv, spec
}

// parseFormatSpecParts treats the format-spec text as a tiny f-string of
// its own, so nested `{width}`/`{precision}` placeholders are parsed as
// expression holes too.
func parseFormatSpecParts(spec string) []ast.FStringPart {
	var parts []ast.FStringPart
	var lit strings.Builder
	i := 0
	for i < len(spec) {
		if spec[i] == '{' {
			if lit.Len() > 0 {
				parts = append(parts, ast.FStringPart{Literal: lit.String()})
				lit.Reset()
			}
			depth := 1
			j := i + 1
			for j < len(spec) && depth > 0 {
				if spec[j] == '{' {
					depth++
				} else if spec[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			inner := spec[i+1 : j]
			exprP := New(lexer.New(inner))
			parts = append(parts, ast.FStringPart{Expr: exprP.parseExprFull()})
			i = j + 1
			continue
		}
		lit.WriteByte(spec[i])
		i++
	}
	if lit.Len() > 0 {
		parts = append(parts, ast.FStringPart{Literal: lit.String()})
	}
	return parts
}

func (p *Parser) parseParenOrTuple() ast.Expression {
	p.advance() // (
	if p.curIs(lexer.RPAREN) {
		p.advance()
		return &ast.TupleLiteral{}
	}
	first := p.parseExpression(LOWEST)
	if p.curIs(lexer.COMMA) {
		elems := []ast.Expression{first}
		for p.curIs(lexer.COMMA) {
			p.advance()
			if p.curIs(lexer.RPAREN) {
				break
			}
			elems = append(elems, p.parseExpression(LOWEST))
		}
		p.expect(lexer.RPAREN)
		return &ast.TupleLiteral{Elements: elems}
	}
	if p.curIs(lexer.FOR) || (p.curIs(lexer.ASYNC) && p.peekIs(lexer.FOR)) {
		clauses := p.parseCompClauses()
		p.expect(lexer.RPAREN)
		return &ast.GeneratorExp{Elt: first, Clauses: clauses}
	}
	p.expect(lexer.RPAREN)
	return first
}

func (p *Parser) parseListOrComprehension() ast.Expression {
	p.advance() // [
	if p.curIs(lexer.RBRACKET) {
		p.advance()
		return &ast.ListLiteral{}
	}
	first := p.parseListElement()
	if p.curIs(lexer.FOR) || (p.curIs(lexer.ASYNC) && p.peekIs(lexer.FOR)) {
		clauses := p.parseCompClauses()
		p.expect(lexer.RBRACKET)
		return &ast.ListComp{Elt: first, Clauses: clauses}
	}
	elems := []ast.Expression{first}
	for p.curIs(lexer.COMMA) {
		p.advance()
		if p.curIs(lexer.RBRACKET) {
			break
		}
		elems = append(elems, p.parseListElement())
	}
	p.expect(lexer.RBRACKET)
	return &ast.ListLiteral{Elements: elems}
}

func (p *Parser) parseListElement() ast.Expression {
	if p.curIs(lexer.STAR) {
		p.advance()
		return &ast.Starred{Value: p.parseExpression(TERNARY)}
	}
	return p.parseExpression(TERNARY)
}

func (p *Parser) parseDictOrSetOrComprehension() ast.Expression {
	p.advance() // {
	if p.curIs(lexer.RBRACE) {
		p.advance()
		return &ast.DictLiteral{}
	}
	if p.curIs(lexer.DSTAR) {
		p.advance()
		first := p.parseExpression(TERNARY)
		entries := []ast.DictEntry{{Key: nil, Value: first}}
		for p.curIs(lexer.COMMA) {
			p.advance()
			if p.curIs(lexer.RBRACE) {
				break
			}
			entries = append(entries, p.parseDictEntry())
		}
		p.expect(lexer.RBRACE)
		return &ast.DictLiteral{Entries: entries}
	}

	first := p.parseExpression(TERNARY)
	if p.curIs(lexer.COLON) {
		p.advance()
		val := p.parseExpression(TERNARY)
		if p.curIs(lexer.FOR) || (p.curIs(lexer.ASYNC) && p.peekIs(lexer.FOR)) {
			clauses := p.parseCompClauses()
			p.expect(lexer.RBRACE)
			return &ast.DictComp{Key: first, Value: val, Clauses: clauses}
		}
		entries := []ast.DictEntry{{Key: first, Value: val}}
		for p.curIs(lexer.COMMA) {
			p.advance()
			if p.curIs(lexer.RBRACE) {
				break
			}
			entries = append(entries, p.parseDictEntry())
		}
		p.expect(lexer.RBRACE)
		return &ast.DictLiteral{Entries: entries}
	}

	if p.curIs(lexer.FOR) || (p.curIs(lexer.ASYNC) && p.peekIs(lexer.FOR)) {
		clauses := p.parseCompClauses()
		p.expect(lexer.RBRACE)
		return &ast.SetComp{Elt: first, Clauses: clauses}
	}
	elems := []ast.Expression{first}
	for p.curIs(lexer.COMMA) {
		p.advance()
		if p.curIs(lexer.RBRACE) {
			break
		}
		elems = append(elems, p.parseExpression(TERNARY))
	}
	p.expect(lexer.RBRACE)
	return &ast.SetLiteral{Elements: elems}
}

func (p *Parser) parseDictEntry() ast.DictEntry {
	if p.curIs(lexer.DSTAR) {
		p.advance()
		return ast.DictEntry{Key: nil, Value: p.parseExpression(TERNARY)}
	}
	key := p.parseExpression(TERNARY)
	p.expect(lexer.COLON)
	val := p.parseExpression(TERNARY)
	return ast.DictEntry{Key: key, Value: val}
}

// parseCompClauses parses one or more `for TARGETS in ITER [if COND]*`
// clauses that make up a comprehension.
func (p *Parser) parseCompClauses() []ast.CompClause {
	var clauses []ast.CompClause
	for p.curIs(lexer.FOR) || p.curIs(lexer.ASYNC) {
		isAsync := false
		if p.curIs(lexer.ASYNC) {
			isAsync = true
			p.advance()
		}
		p.expect(lexer.FOR)
		target := p.parseTargetList()
		p.expect(lexer.IN)
		iter := p.parseExpression(OR_PREC)
		clause := ast.CompClause{Targets: target, Iter: iter, IsAsync: isAsync}
		for p.curIs(lexer.IF) {
			p.advance()
			clause.Ifs = append(clause.Ifs, p.parseExpression(OR_PREC))
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

// parseTargetList parses an assignment-target expression, possibly a
// bare tuple of targets (no parens) as in `for a, b in pairs`.
func (p *Parser) parseTargetList() ast.Expression {
	first := p.parseTargetAtom()
	if !p.curIs(lexer.COMMA) {
		return first
	}
	elems := []ast.Expression{first}
	for p.curIs(lexer.COMMA) {
		p.advance()
		if p.curIs(lexer.IN) {
			break
		}
		elems = append(elems, p.parseTargetAtom())
	}
	return &ast.TupleLiteral{Elements: elems}
}

func (p *Parser) parseTargetAtom() ast.Expression {
	if p.curIs(lexer.STAR) {
		p.advance()
		return &ast.Starred{Value: p.parseExpression(CALL)}
	}
	if p.curIs(lexer.LPAREN) || p.curIs(lexer.LBRACKET) {
		closing := lexer.RPAREN
		if p.curIs(lexer.LBRACKET) {
			closing = lexer.RBRACKET
		}
		p.advance()
		var elems []ast.Expression
		for !p.curIs(closing) {
			elems = append(elems, p.parseTargetAtom())
			if p.curIs(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(closing)
		return &ast.TupleLiteral{Elements: elems}
	}
	return p.parseExpression(CALL)
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.cur
	p.advance()
	prec := UNARY
	operand := p.parseExpression(prec)
	return &ast.Unary{Op: tok.Type, X: operand}
}

func (p *Parser) parseStarred() ast.Expression {
	p.advance()
	return &ast.Starred{Value: p.parseExpression(TERNARY)}
}

func (p *Parser) parseDoubleStarred() ast.Expression {
	p.advance()
	return &ast.DoubleStarred{Value: p.parseExpression(TERNARY)}
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	tok := p.cur
	prec := precedences[tok.Type]
	p.advance()
	right := p.parseExpression(prec)
	return &ast.Binary{Op: tok.Type, Left: left, Right: right}
}

// parsePower is right-associative: parse the right operand at POWER-1 so
// a chain `2**3**2` groups as `2**(3**2)`.
func (p *Parser) parsePower(left ast.Expression) ast.Expression {
	p.advance()
	right := p.parseExpression(POWER - 1)
	return &ast.Binary{Op: lexer.DSTAR, Left: left, Right: right}
}

func (p *Parser) parseBoolOp(left ast.Expression) ast.Expression {
	op := p.cur.Type
	prec := precedences[op]
	values := []ast.Expression{left}
	for p.curIs(op) {
		p.advance()
		values = append(values, p.parseExpression(prec))
	}
	return &ast.BoolOp{Op: op, Values: values}
}

// parseCompare parses a (possibly chained) comparison: `a < b <= c` etc,
// including the two-word operators `not in` and `is not`.
func (p *Parser) parseCompare(left ast.Expression) ast.Expression {
	var ops []lexer.TokenType
	var comps []ast.Expression
	for {
		op := p.cur.Type
		switch {
		case op == lexer.NOT && p.peekIs(lexer.IN):
			p.advance()
			p.advance()
			ops = append(ops, lexer.NOT_IN)
		case op == lexer.IS && p.peekIs(lexer.NOT):
			p.advance()
			p.advance()
			ops = append(ops, lexer.IS_NOT)
		default:
			if _, ok := precedences[op]; !ok || precedences[op] != COMPARE {
				goto done
			}
			p.advance()
			ops = append(ops, op)
		}
		comps = append(comps, p.parseExpression(COMPARE+1))
		if !p.isCompareOp() {
			break
		}
	}
done:
	if len(comps) == 0 {
		return left
	}
	return &ast.Compare{Left: left, Ops: ops, Comps: comps}
}

func (p *Parser) isCompareOp() bool {
	if pr, ok := precedences[p.cur.Type]; ok && pr == COMPARE {
		return true
	}
	return p.curIs(lexer.NOT) && p.peekIs(lexer.IN)
}

func (p *Parser) parseTernaryTail(body ast.Expression) ast.Expression {
	p.advance() // if
	cond := p.parseExpression(OR_PREC)
	p.expect(lexer.ELSE)
	orBranch := p.parseExpression(TERNARY)
	return &ast.Ternary{Body: body, Cond: cond, Or: orBranch}
}

func (p *Parser) parseLambda() ast.Expression {
	p.advance()
	params := p.parseParamList(lexer.COLON)
	p.expect(lexer.COLON)
	body := p.parseExpression(TERNARY)
	return &ast.Lambda{Params: params, Body: body}
}

func (p *Parser) parseYield() ast.Expression {
	p.advance()
	if p.curIs(lexer.FROM) {
		p.advance()
		return &ast.YieldFrom{Value: p.parseExpression(TERNARY)}
	}
	if p.curIs(lexer.NEWLINE) || p.curIs(lexer.RPAREN) || p.curIs(lexer.SEMI) || p.curIs(lexer.EOF) {
		return &ast.Yield{}
	}
	return &ast.Yield{Value: p.parseExpression(TERNARY)}
}

func (p *Parser) parseAwait() ast.Expression {
	p.advance()
	return &ast.Await{Value: p.parseExpression(CALL)}
}

func (p *Parser) parseCall(fn ast.Expression) ast.Expression {
	p.advance() // (
	call := &ast.Call{Func: fn}
	for !p.curIs(lexer.RPAREN) {
		if p.curIs(lexer.STAR) {
			p.advance()
			call.Args = append(call.Args, &ast.Starred{Value: p.parseExpression(TERNARY)})
		} else if p.curIs(lexer.DSTAR) {
			p.advance()
			call.Keywords = append(call.Keywords, ast.Keyword{Name: "", Value: p.parseExpression(TERNARY)})
		} else if p.curIs(lexer.IDENT) && p.peekIs(lexer.ASSIGN) {
			name := p.cur.Literal
			p.advance()
			p.advance()
			call.Keywords = append(call.Keywords, ast.Keyword{Name: name, Value: p.parseExpression(TERNARY)})
		} else {
			arg := p.parseExpression(TERNARY)
			if p.curIs(lexer.FOR) && len(call.Args) == 0 && len(call.Keywords) == 0 {
				clauses := p.parseCompClauses()
				call.Args = append(call.Args, &ast.GeneratorExp{Elt: arg, Clauses: clauses})
			} else {
				call.Args = append(call.Args, arg)
			}
		}
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	return call
}

func (p *Parser) parseSubscript(left ast.Expression) ast.Expression {
	p.advance() // [
	idx := p.parseSliceOrIndex()
	p.expect(lexer.RBRACKET)
	return &ast.Subscript{Value: left, Index: idx}
}

func (p *Parser) parseSliceOrIndex() ast.Expression {
	var start, stop, step ast.Expression
	if !p.curIs(lexer.COLON) {
		start = p.parseExpression(LOWEST)
	}
	if !p.curIs(lexer.COLON) {
		return start
	}
	p.advance()
	if !p.curIs(lexer.COLON) && !p.curIs(lexer.RBRACKET) {
		stop = p.parseExpression(LOWEST)
	}
	if p.curIs(lexer.COLON) {
		p.advance()
		if !p.curIs(lexer.RBRACKET) {
			step = p.parseExpression(LOWEST)
		}
	}
	return &ast.Slice{Start: start, Stop: stop, Step: step}
}

func (p *Parser) parseAttribute(left ast.Expression) ast.Expression {
	p.advance() // .
	name := p.cur.Literal
	p.expect(lexer.IDENT)
	return &ast.Attribute{Value: left, Attr: name}
}
