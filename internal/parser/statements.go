package parser

import (
	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/lexer"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.ASYNC:
		return p.parseAsyncStatement()
	case lexer.TRY:
		return p.parseTry()
	case lexer.WITH:
		return p.parseWith()
	case lexer.DEF:
		return p.parseFunctionDecl(nil, false)
	case lexer.CLASS:
		return p.parseClassDecl(nil)
	case lexer.AT:
		return p.parseDecorated()
	default:
		s := p.parseSimpleStatement()
		p.endSimpleStatement()
		return s
	}
}

func (p *Parser) endSimpleStatement() {
	if p.curIs(lexer.SEMI) {
		p.advance()
		if p.curIs(lexer.NEWLINE) {
			p.advance()
		}
		return
	}
	if p.curIs(lexer.NEWLINE) {
		p.advance()
		return
	}
}

// parseSimpleStatement parses one of the statements that can appear on a
// single logical line (possibly semicolon-chained): expression statements,
// assignments, and the simple keyword statements.
func (p *Parser) parseSimpleStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.PASS:
		p.advance()
		return &ast.Pass{}
	case lexer.BREAK:
		p.advance()
		return &ast.Break{}
	case lexer.CONTINUE:
		p.advance()
		return &ast.Continue{}
	case lexer.RETURN:
		p.advance()
		if p.atStatementEnd() {
			return &ast.Return{}
		}
		return &ast.Return{Value: p.parseExprListAsTuple()}
	case lexer.RAISE:
		return p.parseRaise()
	case lexer.GLOBAL:
		return p.parseGlobal()
	case lexer.NONLOCAL:
		return p.parseNonlocal()
	case lexer.DEL:
		p.advance()
		return &ast.Del{Targets: p.parseTargetsCommaList()}
	case lexer.ASSERT:
		return p.parseAssert()
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.FROM:
		return p.parseFromImport()
	case lexer.YIELD:
		val := p.parseExprListAsTuple()
		return &ast.YieldStatement{X: val}
	default:
		return p.parseExprOrAssign()
	}
}

func (p *Parser) atStatementEnd() bool {
	return p.curIs(lexer.NEWLINE) || p.curIs(lexer.SEMI) || p.curIs(lexer.EOF) || p.curIs(lexer.DEDENT)
}

// parseExprListAsTuple parses a comma-separated expression list, wrapping
// as a TupleLiteral if more than one element is present (used by return,
// yield, and assignment RHS positions).
func (p *Parser) parseExprListAsTuple() ast.Expression {
	first := p.parseListElement()
	if !p.curIs(lexer.COMMA) {
		return first
	}
	elems := []ast.Expression{first}
	for p.curIs(lexer.COMMA) {
		p.advance()
		if p.atStatementEnd() {
			break
		}
		elems = append(elems, p.parseListElement())
	}
	return &ast.TupleLiteral{Elements: elems}
}

func (p *Parser) parseTargetsCommaList() []ast.Expression {
	var targets []ast.Expression
	targets = append(targets, p.parseTargetAtom())
	for p.curIs(lexer.COMMA) {
		p.advance()
		if p.atStatementEnd() {
			break
		}
		targets = append(targets, p.parseTargetAtom())
	}
	return targets
}

// parseExprOrAssign parses an expression statement, possibly chained
// assignment, augmented assignment, or annotated assignment, per §4.2's
// "Assignment targets" rules.
func (p *Parser) parseExprOrAssign() ast.Statement {
	first := p.parseExprListAsTuple()

	switch p.cur.Type {
	case lexer.ASSIGN:
		targets := []ast.Expression{first}
		var value ast.Expression
		for p.curIs(lexer.ASSIGN) {
			p.advance()
			value = p.parseExprListAsTuple()
			if p.curIs(lexer.ASSIGN) {
				targets = append(targets, value)
			}
		}
		return &ast.Assign{Targets: targets, Value: value}
	case lexer.COLON:
		p.advance()
		annot := p.parseExpression(TERNARY)
		var value ast.Expression
		if p.curIs(lexer.ASSIGN) {
			p.advance()
			value = p.parseExprListAsTuple()
		}
		return &ast.AnnAssign{Target: first, Annot: annot, Value: value}
	default:
		if op, ok := augOp(p.cur.Type); ok {
			p.advance()
			value := p.parseExprListAsTuple()
			return &ast.AugAssign{Target: first, Op: op, Value: value}
		}
	}
	return &ast.ExprStatement{X: first}
}

func augOp(t lexer.TokenType) (string, bool) {
	switch t {
	case lexer.PLUSEQ:
		return "+", true
	case lexer.MINUSEQ:
		return "-", true
	case lexer.STAREQ:
		return "*", true
	case lexer.SLASHEQ:
		return "/", true
	case lexer.DSLASHEQ:
		return "//", true
	case lexer.PCTEQ:
		return "%", true
	case lexer.DSTAREQ:
		return "**", true
	case lexer.AMPEQ:
		return "&", true
	case lexer.PIPEEQ:
		return "|", true
	case lexer.CARETEQ:
		return "^", true
	case lexer.LSHIFTEQ:
		return "<<", true
	case lexer.RSHIFTEQ:
		return ">>", true
	}
	return "", false
}

func (p *Parser) parseRaise() ast.Statement {
	p.advance()
	if p.atStatementEnd() {
		return &ast.Raise{}
	}
	exc := p.parseExpression(OR_PREC)
	var cause ast.Expression
	if p.curIs(lexer.FROM) {
		p.advance()
		cause = p.parseExpression(OR_PREC)
	}
	return &ast.Raise{Exc: exc, Cause: cause}
}

func (p *Parser) parseGlobal() ast.Statement {
	p.advance()
	names := []string{p.expect(lexer.IDENT).Literal}
	for p.curIs(lexer.COMMA) {
		p.advance()
		names = append(names, p.expect(lexer.IDENT).Literal)
	}
	return &ast.Global{Names: names}
}

func (p *Parser) parseNonlocal() ast.Statement {
	p.advance()
	names := []string{p.expect(lexer.IDENT).Literal}
	for p.curIs(lexer.COMMA) {
		p.advance()
		names = append(names, p.expect(lexer.IDENT).Literal)
	}
	return &ast.Nonlocal{Names: names}
}

func (p *Parser) parseAssert() ast.Statement {
	p.advance()
	cond := p.parseExpression(TERNARY)
	var msg ast.Expression
	if p.curIs(lexer.COMMA) {
		p.advance()
		msg = p.parseExpression(TERNARY)
	}
	return &ast.Assert{Cond: cond, Msg: msg}
}

// parseImport/parseFromImport accept the syntax but the evaluator only
// resolves a closed set of built-in modules (§3 of SPEC_FULL.md); there is
// no filesystem module loader.
func (p *Parser) parseImport() ast.Statement {
	p.advance()
	name := p.expect(lexer.IDENT).Literal
	imp := &ast.Import{Module: name, Aliases: map[string]string{}}
	if p.curIs(lexer.AS) {
		p.advance()
		alias := p.expect(lexer.IDENT).Literal
		imp.Aliases[name] = alias
	}
	return imp
}

func (p *Parser) parseFromImport() ast.Statement {
	p.advance()
	module := p.expect(lexer.IDENT).Literal
	p.expect(lexer.IMPORT)
	imp := &ast.Import{Module: module, Aliases: map[string]string{}}
	if p.curIs(lexer.STAR) {
		p.advance()
		return imp
	}
	paren := p.curIs(lexer.LPAREN)
	if paren {
		p.advance()
	}
	for {
		name := p.expect(lexer.IDENT).Literal
		imp.Names = append(imp.Names, name)
		if p.curIs(lexer.AS) {
			p.advance()
			imp.Aliases[name] = p.expect(lexer.IDENT).Literal
		}
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if paren {
		p.expect(lexer.RPAREN)
	}
	return imp
}

func (p *Parser) parseIf() ast.Statement {
	p.advance()
	cond := p.parseExpression(OR_PREC)
	body := p.parseBlock()
	node := &ast.If{Cond: cond, Body: body}
	if p.curIs(lexer.ELIF) {
		node.Orelse = []ast.Statement{p.parseElif()}
	} else if p.curIs(lexer.ELSE) {
		p.advance()
		node.Orelse = p.parseBlock()
	}
	return node
}

func (p *Parser) parseElif() ast.Statement {
	p.advance() // elif
	cond := p.parseExpression(OR_PREC)
	body := p.parseBlock()
	node := &ast.If{Cond: cond, Body: body}
	if p.curIs(lexer.ELIF) {
		node.Orelse = []ast.Statement{p.parseElif()}
	} else if p.curIs(lexer.ELSE) {
		p.advance()
		node.Orelse = p.parseBlock()
	}
	return node
}

func (p *Parser) parseWhile() ast.Statement {
	p.advance()
	cond := p.parseExpression(OR_PREC)
	body := p.parseBlock()
	node := &ast.While{Cond: cond, Body: body}
	if p.curIs(lexer.ELSE) {
		p.advance()
		node.Orelse = p.parseBlock()
	}
	return node
}

func (p *Parser) parseFor() ast.Statement {
	p.advance()
	target := p.parseTargetList()
	p.expect(lexer.IN)
	iter := p.parseExprListAsTuple()
	body := p.parseBlock()
	node := &ast.For{Target: target, Iter: iter, Body: body}
	if p.curIs(lexer.ELSE) {
		p.advance()
		node.Orelse = p.parseBlock()
	}
	return node
}

func (p *Parser) parseAsyncStatement() ast.Statement {
	p.advance() // async
	switch p.cur.Type {
	case lexer.DEF:
		return p.parseFunctionDecl(nil, true)
	case lexer.FOR:
		p.advance()
		target := p.parseTargetList()
		p.expect(lexer.IN)
		iter := p.parseExprListAsTuple()
		body := p.parseBlock()
		node := &ast.AsyncFor{Target: target, Iter: iter, Body: body}
		if p.curIs(lexer.ELSE) {
			p.advance()
			node.Orelse = p.parseBlock()
		}
		return node
	case lexer.WITH:
		p.advance()
		items := p.parseWithItems()
		body := p.parseBlock()
		return &ast.AsyncWith{Items: items, Body: body}
	default:
		p.addErrorf(p.cur.Pos, "expected def/for/with after async, got %s", p.cur.Type)
		return &ast.Pass{}
	}
}

func (p *Parser) parseTry() ast.Statement {
	p.advance()
	body := p.parseBlock()
	node := &ast.Try{Body: body}
	for p.curIs(lexer.EXCEPT) {
		p.advance()
		var handler ast.ExceptHandler
		if !p.curIs(lexer.COLON) {
			handler.Types = append(handler.Types, p.parseExpression(OR_PREC))
			for p.curIs(lexer.COMMA) {
				p.advance()
				handler.Types = append(handler.Types, p.parseExpression(OR_PREC))
			}
			if p.curIs(lexer.AS) {
				p.advance()
				handler.Name = p.expect(lexer.IDENT).Literal
			}
		}
		handler.Body = p.parseBlock()
		node.Handlers = append(node.Handlers, handler)
	}
	if p.curIs(lexer.ELSE) {
		p.advance()
		node.Orelse = p.parseBlock()
	}
	if p.curIs(lexer.FINALLY) {
		p.advance()
		node.Finally = p.parseBlock()
	}
	return node
}

func (p *Parser) parseWithItems() []ast.WithItem {
	var items []ast.WithItem
	for {
		ctx := p.parseExpression(OR_PREC)
		item := ast.WithItem{Ctx: ctx}
		if p.curIs(lexer.AS) {
			p.advance()
			item.Target = p.parseTargetAtom()
		}
		items = append(items, item)
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return items
}

func (p *Parser) parseWith() ast.Statement {
	p.advance()
	items := p.parseWithItems()
	body := p.parseBlock()
	return &ast.With{Items: items, Body: body}
}

// parseParamList parses a function/lambda parameter list up to (not
// including) `stop`, handling positional-or-keyword params, defaults,
// a bare `*` keyword-only marker, `*args`, and `**kwargs`.
func (p *Parser) parseParamList(stop lexer.TokenType) []ast.Param {
	var params []ast.Param
	seenStar := false
	for !p.curIs(stop) {
		switch {
		case p.curIs(lexer.STAR):
			p.advance()
			if p.curIs(lexer.COMMA) || p.curIs(stop) {
				seenStar = true
			} else {
				name := p.expect(lexer.IDENT).Literal
				params = append(params, ast.Param{Name: name, Kind: ast.ParamStarArgs})
				seenStar = true
			}
		case p.curIs(lexer.DSTAR):
			p.advance()
			name := p.expect(lexer.IDENT).Literal
			params = append(params, ast.Param{Name: name, Kind: ast.ParamStarStarKwargs})
		default:
			name := p.expect(lexer.IDENT).Literal
			param := ast.Param{Name: name}
			if seenStar {
				param.Kind = ast.ParamKeywordOnly
			}
			if p.curIs(lexer.COLON) {
				p.advance()
				param.Annot = p.parseExpression(TERNARY)
			}
			if p.curIs(lexer.ASSIGN) {
				p.advance()
				param.Default = p.parseExpression(TERNARY)
			}
			params = append(params, param)
		}
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return params
}

func (p *Parser) parseFunctionDecl(decorators []ast.Expression, isAsync bool) ast.Statement {
	p.advance() // def
	name := p.expect(lexer.IDENT).Literal
	p.expect(lexer.LPAREN)
	params := p.parseParamList(lexer.RPAREN)
	p.expect(lexer.RPAREN)
	if p.curIs(lexer.ARROW) {
		p.advance()
		p.parseExpression(TERNARY) // return annotation, accepted and discarded
	}
	body := p.parseBlock()
	fn := &ast.FunctionDecl{Name: name, Params: params, Body: body, Decorators: decorators, IsAsync: isAsync}
	fn.IsGenerator = bodyContainsYield(body)
	return fn
}

func bodyContainsYield(body []ast.Statement) bool {
	found := false
	var walkStmt func(ast.Statement)
	var walkExpr func(ast.Expression)
	walkExpr = func(e ast.Expression) {
		if e == nil || found {
			return
		}
		switch n := e.(type) {
		case *ast.Yield, *ast.YieldFrom:
			found = true
		case *ast.Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.Unary:
			walkExpr(n.X)
		case *ast.Call:
			walkExpr(n.Func)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.Ternary:
			walkExpr(n.Body)
			walkExpr(n.Cond)
			walkExpr(n.Or)
		case *ast.BoolOp:
			for _, v := range n.Values {
				walkExpr(v)
			}
		case *ast.Attribute:
			walkExpr(n.Value)
		case *ast.Subscript:
			walkExpr(n.Value)
			walkExpr(n.Index)
		case *ast.TupleLiteral:
			for _, v := range n.Elements {
				walkExpr(v)
			}
		}
	}
	walkStmt = func(s ast.Statement) {
		if found {
			return
		}
		switch n := s.(type) {
		case *ast.YieldStatement:
			found = true
		case *ast.ExprStatement:
			walkExpr(n.X)
		case *ast.If:
			for _, st := range n.Body {
				walkStmt(st)
			}
			for _, st := range n.Orelse {
				walkStmt(st)
			}
		case *ast.While:
			for _, st := range n.Body {
				walkStmt(st)
			}
			for _, st := range n.Orelse {
				walkStmt(st)
			}
		case *ast.For:
			for _, st := range n.Body {
				walkStmt(st)
			}
			for _, st := range n.Orelse {
				walkStmt(st)
			}
		case *ast.Try:
			for _, st := range n.Body {
				walkStmt(st)
			}
			for _, h := range n.Handlers {
				for _, st := range h.Body {
					walkStmt(st)
				}
			}
			for _, st := range n.Orelse {
				walkStmt(st)
			}
			for _, st := range n.Finally {
				walkStmt(st)
			}
		case *ast.With:
			for _, st := range n.Body {
				walkStmt(st)
			}
		case *ast.Assign:
			walkExpr(n.Value)
		}
	}
	for _, s := range body {
		walkStmt(s)
		if found {
			break
		}
	}
	return found
}

func (p *Parser) parseClassDecl(decorators []ast.Expression) ast.Statement {
	p.advance() // class
	name := p.expect(lexer.IDENT).Literal
	var bases []ast.Expression
	if p.curIs(lexer.LPAREN) {
		p.advance()
		for !p.curIs(lexer.RPAREN) {
			bases = append(bases, p.parseExpression(TERNARY))
			if p.curIs(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RPAREN)
	}
	body := p.parseBlock()
	return &ast.ClassDecl{Name: name, Bases: bases, Body: body, Decorators: decorators}
}

func (p *Parser) parseDecorated() ast.Statement {
	var decorators []ast.Expression
	for p.curIs(lexer.AT) {
		p.advance()
		decorators = append(decorators, p.parseExpression(LOWEST))
		p.skipNewlines()
	}
	isAsync := false
	if p.curIs(lexer.ASYNC) {
		isAsync = true
		p.advance()
	}
	if p.curIs(lexer.CLASS) {
		return p.parseClassDecl(decorators)
	}
	return p.parseFunctionDecl(decorators, isAsync)
}
