package parser

import (
	"github.com/meko-tech/jsengine/internal/ir"
	"github.com/meko-tech/jsengine/internal/lexer"
)

// parseFunctionDecl parses `[async] function [*] name (params) { body }`
// into `(functiondecl name params body isAsync isGenerator)`.
func (p *Parser) parseFunctionDecl(isAsync bool) *ir.Cell {
	start := p.cur
	if isAsync {
		p.advance() // 'async'
	}
	p.expect(lexer.FUNCTION, "'function'")
	isGenerator := false
	if p.at(lexer.STAR) {
		isGenerator = true
		p.advance()
	}
	name := p.cur.Lexeme
	p.expect(lexer.IDENT, "function name")
	params, body := p.parseFunctionTail(isAsync, isGenerator)
	return p.node(p.ref(start), "functiondecl", p.sym(name, p.ref(start)), params, body, p.boolLeaf(isAsync), p.boolLeaf(isGenerator))
}

// parseFunctionExpr parses a function expression (name optional).
func (p *Parser) parseFunctionExpr(isAsync bool) *ir.Cell {
	start := p.cur
	if isAsync {
		p.advance()
	}
	p.expect(lexer.FUNCTION, "'function'")
	isGenerator := false
	if p.at(lexer.STAR) {
		isGenerator = true
		p.advance()
	}
	name := ""
	if p.at(lexer.IDENT) {
		name = p.cur.Lexeme
		p.advance()
	}
	params, body := p.parseFunctionTail(isAsync, isGenerator)
	return p.node(p.ref(start), "function", p.sym(name, p.ref(start)), params, body, p.boolLeaf(isAsync), p.boolLeaf(isGenerator))
}

// parseFunctionTail parses `(params) { body }` shared by declarations,
// expressions, and methods.
func (p *Parser) parseFunctionTail(isAsync, isGenerator bool) (params, body *ir.Cell) {
	_ = isAsync
	prevA, prevG := p.asyncDepth, p.generatorDepth
	if isAsync {
		p.asyncDepth++
	}
	if isGenerator {
		p.generatorDepth++
	}
	params = p.parseParams()
	body = p.parseBlock()
	p.asyncDepth, p.generatorDepth = prevA, prevG
	return params, body
}

func (p *Parser) parseParams() *ir.Cell {
	p.expect(lexer.LPAREN, "'('")
	var params []*ir.Cell
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		pstart := p.cur
		if p.at(lexer.DOTDOTDOT) {
			p.advance()
			target := p.parseBindingTarget()
			params = append(params, p.node(p.ref(pstart), "restparam", target))
		} else {
			params = append(params, p.parseBindingTargetWithDefault())
		}
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN, "')'")
	return p.listOf(params)
}

// tryParseArrow speculatively looks ahead for an arrow-function head
// (`ident =>`, `() =>`, `(a, b) =>`) without committing to consuming the
// parenthesized-expression path if it isn't one. On failure it returns
// (nil, false) having consumed nothing (identifier-only lookahead needs no
// rewind; the parenthesized case snapshots lexer state).
func (p *Parser) tryParseArrow() (*ir.Cell, bool) {
	start := p.cur
	isAsync := false
	mark := p.mark()

	if p.atIdent("async") && !p.nxt.NewlineBefore && (p.nxt.Kind == lexer.IDENT || p.nxt.Kind == lexer.LPAREN) {
		isAsync = true
		p.advance()
	}

	if p.cur.Kind == lexer.IDENT && p.nxt.Kind == lexer.ARROW {
		name := p.cur.Lexeme
		p.advance()
		p.advance() // '=>'
		param := p.node(p.ref(start), "ident", p.sym(name, p.ref(start)))
		body := p.parseArrowBody(isAsync)
		return p.node(p.ref(start), "arrow", p.listOf([]*ir.Cell{param}), body, p.boolLeaf(isAsync)), true
	}

	if p.cur.Kind == lexer.LPAREN {
		if !p.looksLikeArrowParams() {
			p.reset(mark)
			return nil, false
		}
		params := p.parseParams()
		if !p.at(lexer.ARROW) {
			p.reset(mark)
			return nil, false
		}
		p.advance() // '=>'
		body := p.parseArrowBody(isAsync)
		return p.node(p.ref(start), "arrow", params, body, p.boolLeaf(isAsync)), true
	}

	p.reset(mark)
	return nil, false
}

// looksLikeArrowParams does a lightweight bracket-matching scan over the
// upcoming tokens to see whether the parenthesized group is followed by
// `=>`, without building any IR, then rewinds to where it started.
func (p *Parser) looksLikeArrowParams() bool {
	mark := p.mark()
	defer p.reset(mark)

	depth := 0
	for {
		switch p.cur.Kind {
		case lexer.EOF:
			return false
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			depth--
			if depth == 0 {
				p.advance()
				return p.at(lexer.ARROW)
			}
		}
		p.advance()
	}
}

func (p *Parser) parseArrowBody(isAsync bool) *ir.Cell {
	prevA := p.asyncDepth
	if isAsync {
		p.asyncDepth++
	}
	defer func() { p.asyncDepth = prevA }()
	if p.at(lexer.LBRACE) {
		return p.parseBlock()
	}
	expr := p.parseAssignExpr()
	return p.node(expr.SourceRef, "exprbody", expr)
}
