package parser

import (
	"github.com/meko-tech/jsengine/internal/ir"
	"github.com/meko-tech/jsengine/internal/lexer"
)

// parseStatement dispatches on the current token to one of the
// statement-form parse methods below.
func (p *Parser) parseStatement() *ir.Cell {
	switch p.cur.Kind {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.VAR, lexer.LET, lexer.CONST:
		s := p.parseVarDecl()
		p.consumeSemicolon()
		return s
	case lexer.FUNCTION:
		return p.parseFunctionDecl(false)
	case lexer.CLASS:
		return p.parseClassDecl()
	case lexer.IF:
		return p.parseIf()
	case lexer.FOR:
		return p.parseFor()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.DO:
		return p.parseDoWhile()
	case lexer.SWITCH:
		return p.parseSwitch()
	case lexer.TRY:
		return p.parseTry()
	case lexer.THROW:
		return p.parseThrow()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		return p.parseBreakContinue("break")
	case lexer.CONTINUE:
		return p.parseBreakContinue("continue")
	case lexer.SEMI:
		start := p.cur
		p.advance()
		return p.node(p.ref(start), "empty")
	default:
		if p.atIdent("async") && p.peekIsFunctionKeyword() {
			return p.parseFunctionDecl(true)
		}
		if p.cur.Kind == lexer.IDENT && p.nxt.Kind == lexer.COLON {
			return p.parseLabeled()
		}
		return p.parseExpressionStatement()
	}
}

func (p *Parser) peekIsFunctionKeyword() bool { return p.nxt.Kind == lexer.FUNCTION }

func (p *Parser) parseBlock() *ir.Cell {
	start := p.cur
	p.lx.PushOrdinaryBrace()
	p.expect(lexer.LBRACE, "'{'")
	var stmts []*ir.Cell
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		stmts = append(stmts, p.parseStatement())
	}
	p.lx.PopOrdinaryBrace()
	p.expect(lexer.RBRACE, "'}'")
	return p.node(p.ref(start), "block", stmts...)
}

func (p *Parser) parseExpressionStatement() *ir.Cell {
	start := p.cur
	expr := p.parseExpression()
	p.consumeSemicolon()
	return p.node(p.ref(start), "exprstmt", expr)
}

// parseVarDecl parses `var|let|const binding (, binding)*`, producing
// `(vardecl kind (binding pattern init?)...)`.
func (p *Parser) parseVarDecl() *ir.Cell {
	start := p.cur
	kind := p.cur.Lexeme
	p.advance()

	var bindings []*ir.Cell
	for {
		pattern := p.parseBindingTarget()
		var init *ir.Cell
		if p.at(lexer.ASSIGN) {
			p.advance()
			init = p.parseAssignExpr()
		} else if kind == "const" {
			p.errorf("missing initializer in const declaration")
		}
		bref := p.ref(start)
		if init == nil {
			bindings = append(bindings, p.node(bref, "binding", pattern))
		} else {
			bindings = append(bindings, p.node(bref, "binding", pattern, init))
		}
		if !p.at(lexer.COMMA) {
			break
		}
		p.advance()
	}
	return p.node(p.ref(start), "vardecl", append([]*ir.Cell{p.sym(kind, p.ref(start))}, bindings...)...)
}

func (p *Parser) parseIf() *ir.Cell {
	start := p.cur
	p.advance()
	p.expect(lexer.LPAREN, "'('")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "')'")
	then := p.parseStatement()
	if p.at(lexer.ELSE) {
		p.advance()
		els := p.parseStatement()
		return p.node(p.ref(start), "if", cond, then, els)
	}
	return p.node(p.ref(start), "if", cond, then)
}

func (p *Parser) parseWhile() *ir.Cell {
	start := p.cur
	p.advance()
	p.expect(lexer.LPAREN, "'('")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "')'")
	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--
	return p.node(p.ref(start), "while", cond, body)
}

func (p *Parser) parseDoWhile() *ir.Cell {
	start := p.cur
	p.advance()
	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--
	p.expect(lexer.WHILE, "'while'")
	p.expect(lexer.LPAREN, "'('")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "')'")
	p.consumeSemicolon()
	return p.node(p.ref(start), "dowhile", body, cond)
}

// parseFor disambiguates classic `for(;;)`, `for...in`, and `for...of`
// (optionally `for await...of`) by speculatively parsing the init clause.
func (p *Parser) parseFor() *ir.Cell {
	start := p.cur
	p.advance()
	isAwait := false
	if p.atIdent("await") {
		isAwait = true
		p.advance()
	}
	p.expect(lexer.LPAREN, "'('")

	var declKind string
	var init *ir.Cell
	switch {
	case p.at(lexer.SEMI):
		// no init
	case p.cur.Kind == lexer.VAR || p.cur.Kind == lexer.LET || p.cur.Kind == lexer.CONST:
		declKind = p.cur.Lexeme
		declStart := p.cur
		p.advance()
		pattern := p.parseBindingTarget()
		if p.atIdent("of") {
			p.advance()
			obj := p.parseAssignExpr()
			p.expect(lexer.RPAREN, "')'")
			p.loopDepth++
			body := p.parseStatement()
			p.loopDepth--
			return p.node(p.ref(start), "forof", p.sym(declKind, p.ref(declStart)), pattern, obj, body, p.boolLeaf(isAwait))
		}
		if p.at(lexer.IN) {
			p.advance()
			obj := p.parseExpression()
			p.expect(lexer.RPAREN, "')'")
			p.loopDepth++
			body := p.parseStatement()
			p.loopDepth--
			return p.node(p.ref(start), "forin", p.sym(declKind, p.ref(declStart)), pattern, obj, body)
		}
		var vinit *ir.Cell
		if p.at(lexer.ASSIGN) {
			p.advance()
			vinit = p.parseAssignExpr()
		}
		bref := p.ref(declStart)
		var binding *ir.Cell
		if vinit == nil {
			binding = p.node(bref, "binding", pattern)
		} else {
			binding = p.node(bref, "binding", pattern, vinit)
		}
		bindings := []*ir.Cell{binding}
		for p.at(lexer.COMMA) {
			p.advance()
			pat2 := p.parseBindingTarget()
			var vi2 *ir.Cell
			if p.at(lexer.ASSIGN) {
				p.advance()
				vi2 = p.parseAssignExpr()
			}
			if vi2 == nil {
				bindings = append(bindings, p.node(bref, "binding", pat2))
			} else {
				bindings = append(bindings, p.node(bref, "binding", pat2, vi2))
			}
		}
		init = p.node(p.ref(declStart), "vardecl", append([]*ir.Cell{p.sym(declKind, p.ref(declStart))}, bindings...)...)
	default:
		lhs := p.parseExpression()
		if p.atIdent("of") {
			p.advance()
			obj := p.parseAssignExpr()
			p.expect(lexer.RPAREN, "')'")
			p.loopDepth++
			body := p.parseStatement()
			p.loopDepth--
			return p.node(p.ref(start), "forof", p.sym("", p.ref(start)), lhs, obj, body, p.boolLeaf(isAwait))
		}
		if p.at(lexer.IN) {
			p.advance()
			obj := p.parseExpression()
			p.expect(lexer.RPAREN, "')'")
			p.loopDepth++
			body := p.parseStatement()
			p.loopDepth--
			return p.node(p.ref(start), "forin", p.sym("", p.ref(start)), lhs, obj, body)
		}
		init = p.node(p.ref(start), "exprstmt", lhs)
	}

	p.expect(lexer.SEMI, "';'")
	var cond *ir.Cell
	if !p.at(lexer.SEMI) {
		cond = p.parseExpression()
	}
	p.expect(lexer.SEMI, "';'")
	var update *ir.Cell
	if !p.at(lexer.RPAREN) {
		update = p.parseExpression()
	}
	p.expect(lexer.RPAREN, "')'")
	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--

	children := []*ir.Cell{p.emptyOr(init), p.emptyOr(cond), p.emptyOr(update), body}
	return p.node(p.ref(start), "for", children...)
}

func (p *Parser) emptyOr(c *ir.Cell) *ir.Cell {
	if c == nil {
		return p.arena.Empty()
	}
	return c
}

func (p *Parser) boolLeaf(b bool) *ir.Cell { return p.arena.Leaf(b, p.cur.Source) }

func (p *Parser) parseSwitch() *ir.Cell {
	start := p.cur
	p.advance()
	p.expect(lexer.LPAREN, "'('")
	disc := p.parseExpression()
	p.expect(lexer.RPAREN, "')'")
	p.expect(lexer.LBRACE, "'{'")
	p.switchDepth++
	var cases []*ir.Cell
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		caseStart := p.cur
		var test *ir.Cell
		if p.at(lexer.CASE) {
			p.advance()
			test = p.parseExpression()
		} else {
			p.expect(lexer.DEFAULT, "'default'")
		}
		p.expect(lexer.COLON, "':'")
		var body []*ir.Cell
		for !p.at(lexer.CASE) && !p.at(lexer.DEFAULT) && !p.at(lexer.RBRACE) {
			body = append(body, p.parseStatement())
		}
		cases = append(cases, p.node(p.ref(caseStart), "case", append([]*ir.Cell{p.emptyOr(test)}, body...)...))
	}
	p.switchDepth--
	p.expect(lexer.RBRACE, "'}'")
	return p.node(p.ref(start), "switch", append([]*ir.Cell{disc}, cases...)...)
}

func (p *Parser) parseTry() *ir.Cell {
	start := p.cur
	p.advance()
	block := p.parseBlock()
	var catchParam, catchBody, finallyBody *ir.Cell
	if p.at(lexer.CATCH) {
		p.advance()
		if p.at(lexer.LPAREN) {
			p.advance()
			catchParam = p.parseBindingTarget()
			p.expect(lexer.RPAREN, "')'")
		}
		catchBody = p.parseBlock()
	}
	if p.at(lexer.FINALLY) {
		p.advance()
		finallyBody = p.parseBlock()
	}
	return p.node(p.ref(start), "try", block, p.emptyOr(catchParam), p.emptyOr(catchBody), p.emptyOr(finallyBody))
}

func (p *Parser) parseThrow() *ir.Cell {
	start := p.cur
	p.advance()
	expr := p.parseExpression()
	p.consumeSemicolon()
	return p.node(p.ref(start), "throw", expr)
}

func (p *Parser) parseReturn() *ir.Cell {
	start := p.cur
	p.advance()
	if p.at(lexer.SEMI) || p.at(lexer.RBRACE) || p.at(lexer.EOF) || p.cur.NewlineBefore {
		p.consumeSemicolon()
		return p.node(p.ref(start), "return")
	}
	expr := p.parseExpression()
	p.consumeSemicolon()
	return p.node(p.ref(start), "return", expr)
}

func (p *Parser) parseBreakContinue(tag string) *ir.Cell {
	start := p.cur
	p.advance()
	if p.cur.Kind == lexer.IDENT && !p.cur.NewlineBefore {
		label := p.cur.Lexeme
		p.advance()
		p.consumeSemicolon()
		return p.node(p.ref(start), tag, p.sym(label, p.ref(start)))
	}
	p.consumeSemicolon()
	return p.node(p.ref(start), tag)
}

func (p *Parser) parseLabeled() *ir.Cell {
	start := p.cur
	label := p.cur.Lexeme
	p.advance()
	p.advance() // ':'
	body := p.parseStatement()
	return p.node(p.ref(start), "labeled", p.sym(label, p.ref(start)), body)
}
