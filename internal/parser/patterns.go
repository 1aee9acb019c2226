package parser

import "github.com/meko-tech/jsengine/internal/lexer"
import "github.com/meko-tech/jsengine/internal/ir"

// parseBindingTarget parses a binding pattern: a plain identifier, an
// array pattern, or an object pattern, each possibly wrapped in an
// `(assignpattern pattern default)` by a caller that already consumed a
// following `=`. Defaults on individual elements are handled here.
func (p *Parser) parseBindingTarget() *ir.Cell {
	switch p.cur.Kind {
	case lexer.LBRACKET:
		return p.parseArrayPattern()
	case lexer.LBRACE:
		return p.parseObjectPattern()
	default:
		start := p.cur
		name := p.cur.Lexeme
		p.advance()
		return p.node(p.ref(start), "ident", p.sym(name, p.ref(start)))
	}
}

func (p *Parser) parseArrayPattern() *ir.Cell {
	start := p.cur
	p.advance()
	var elems []*ir.Cell
	var rest *ir.Cell
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		if p.at(lexer.COMMA) {
			elems = append(elems, p.node(p.ref(start), "hole"))
			p.advance()
			continue
		}
		if p.at(lexer.DOTDOTDOT) {
			p.advance()
			rest = p.parseBindingTarget()
			break
		}
		target := p.parseBindingTargetWithDefault()
		elems = append(elems, target)
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET, "']'")
	return p.node(p.ref(start), "arraypattern", p.listOf(elems), p.emptyOr(rest))
}

func (p *Parser) parseObjectPattern() *ir.Cell {
	start := p.cur
	p.lx.PushOrdinaryBrace()
	p.advance()
	var props []*ir.Cell
	var rest *ir.Cell
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.at(lexer.DOTDOTDOT) {
			p.advance()
			rest = p.parseBindingTarget()
			break
		}
		pstart := p.cur
		key, computed := p.parsePropertyKey()
		var target *ir.Cell
		if p.at(lexer.COLON) {
			p.advance()
			target = p.parseBindingTargetWithDefault()
		} else if p.at(lexer.ASSIGN) {
			p.advance()
			def := p.parseAssignExpr()
			target = p.node(p.ref(pstart), "assignpattern", p.node(p.ref(pstart), "ident", key), def)
		} else {
			target = p.node(p.ref(pstart), "ident", key)
		}
		props = append(props, p.node(p.ref(pstart), "patternprop", key, target, p.boolLeaf(computed)))
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.lx.PopOrdinaryBrace()
	p.expect(lexer.RBRACE, "'}'")
	return p.node(p.ref(start), "objectpattern", p.listOf(props), p.emptyOr(rest))
}

func (p *Parser) parseBindingTargetWithDefault() *ir.Cell {
	start := p.cur
	target := p.parseBindingTarget()
	if p.at(lexer.ASSIGN) {
		p.advance()
		def := p.parseAssignExpr()
		return p.node(p.ref(start), "assignpattern", target, def)
	}
	return target
}
