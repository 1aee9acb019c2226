package parser

import (
	"github.com/meko-tech/jsengine/internal/ir"
	"github.com/meko-tech/jsengine/internal/lexer"
)

// parseClassDecl parses a class declaration statement into
// `(classdecl name superclass (classbody member...))`.
func (p *Parser) parseClassDecl() *ir.Cell {
	start := p.cur
	p.advance() // 'class'
	name := ""
	if p.at(lexer.IDENT) {
		name = p.cur.Lexeme
		p.advance()
	}
	superclass := p.parseClassHeritage()
	body := p.parseClassBody()
	return p.node(p.ref(start), "classdecl", p.sym(name, p.ref(start)), superclass, body)
}

// parseClassExpr parses a class expression (name optional) into
// `(class name superclass (classbody member...))`.
func (p *Parser) parseClassExpr() *ir.Cell {
	start := p.cur
	p.advance() // 'class'
	name := ""
	if p.at(lexer.IDENT) {
		name = p.cur.Lexeme
		p.advance()
	}
	superclass := p.parseClassHeritage()
	body := p.parseClassBody()
	return p.node(p.ref(start), "class", p.sym(name, p.ref(start)), superclass, body)
}

func (p *Parser) parseClassHeritage() *ir.Cell {
	if !p.at(lexer.EXTENDS) {
		return p.arena.Empty()
	}
	p.advance()
	return p.parseCallOrMember(p.parsePrimary())
}

// parseClassBody parses the `{ ... }` member list shared by class
// declarations and expressions.
func (p *Parser) parseClassBody() *ir.Cell {
	start := p.cur
	p.lx.PushOrdinaryBrace()
	p.expect(lexer.LBRACE, "'{'")
	var members []*ir.Cell
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.at(lexer.SEMI) {
			p.advance() // stray semicolons between members are allowed
			continue
		}
		members = append(members, p.parseClassMember())
	}
	p.lx.PopOrdinaryBrace()
	p.expect(lexer.RBRACE, "'}'")
	return p.node(p.ref(start), "classbody", members...)
}

// parseClassMember parses one class element: a method, getter/setter,
// static block, or field, producing one of:
//
//	(classmethod key params body kind computed isStatic isAsync isGenerator)
//	(classfield key value computed isStatic)
//	(staticblock body)
func (p *Parser) parseClassMember() *ir.Cell {
	start := p.cur

	isStatic := false
	if p.at(lexer.STATIC) && !p.peekEndsPropertyName() {
		isStatic = true
		p.advance()
	}

	if isStatic && p.at(lexer.LBRACE) {
		body := p.parseBlock()
		return p.node(p.ref(start), "staticblock", body)
	}

	isAsync, isGenerator := false, false
	accessor := ""
	if p.atIdent("async") && !p.peekEndsPropertyName() && !p.nxt.NewlineBefore {
		isAsync = true
		p.advance()
	}
	if p.at(lexer.STAR) {
		isGenerator = true
		p.advance()
	}
	if (p.atIdent("get") || p.atIdent("set")) && !p.peekEndsPropertyName() {
		accessor = p.cur.Lexeme
		p.advance()
	}

	key, computed := p.parsePropertyKey()

	if p.at(lexer.LPAREN) {
		params, body := p.parseFunctionTail(isAsync, isGenerator)
		kind := "method"
		switch {
		case accessor != "":
			kind = accessor
		case !computed && !isStatic && keyIsConstructor(key):
			kind = "constructor"
		}
		return p.node(p.ref(start), "classmethod", key, params, body,
			p.sym(kind, p.ref(start)), p.boolLeaf(computed), p.boolLeaf(isStatic),
			p.boolLeaf(isAsync), p.boolLeaf(isGenerator))
	}

	// Field declaration: `key`, `key = expr`, terminated by ASI.
	var value *ir.Cell
	if p.at(lexer.ASSIGN) {
		p.advance()
		value = p.parseAssignExpr()
	}
	p.consumeSemicolon()
	return p.node(p.ref(start), "classfield", key, p.emptyOr(value), p.boolLeaf(computed), p.boolLeaf(isStatic))
}

func keyIsConstructor(key *ir.Cell) bool {
	if s, ok := key.Atom.(string); ok {
		return s == "constructor"
	}
	return false
}
