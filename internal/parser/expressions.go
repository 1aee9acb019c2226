package parser

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/meko-tech/jsengine/internal/ir"
	"github.com/meko-tech/jsengine/internal/lexer"
)

// binaryPrecedence gives each binary/logical operator token its
// precedence-climbing level; higher binds tighter. `**` is right-
// associative and handled separately.
var binaryPrecedence = map[lexer.TokenType]int{
	lexer.QUESTION_QUESTION: 1,
	lexer.OR:                2,
	lexer.AND:               3,
	lexer.PIPE:              4,
	lexer.CARET:             5,
	lexer.AMP:               6,
	lexer.EQ:                7, lexer.NEQ: 7, lexer.EQ_STRICT: 7, lexer.NEQ_STRICT: 7,
	lexer.LT: 8, lexer.GT: 8, lexer.LTE: 8, lexer.GTE: 8, lexer.INSTANCEOF: 8, lexer.IN: 8,
	lexer.LSHIFT: 9, lexer.RSHIFT: 9, lexer.URSHIFT: 9,
	lexer.PLUS: 10, lexer.MINUS: 10,
	lexer.STAR: 11, lexer.SLASH: 11, lexer.PERCENT: 11,
}

var assignOps = map[lexer.TokenType]string{
	lexer.ASSIGN: "=", lexer.PLUS_EQ: "+=", lexer.MINUS_EQ: "-=", lexer.STAR_EQ: "*=",
	lexer.SLASH_EQ: "/=", lexer.PERCENT_EQ: "%=", lexer.STAR_STAR_EQ: "**=",
	lexer.AMP_EQ: "&=", lexer.PIPE_EQ: "|=", lexer.CARET_EQ: "^=",
	lexer.LSHIFT_EQ: "<<=", lexer.RSHIFT_EQ: ">>=", lexer.URSHIFT_EQ: ">>>=",
	lexer.AND_EQ: "&&=", lexer.OR_EQ: "||=", lexer.QUESTION_QUESTION_EQ: "??=",
}

// parseExpression parses a full expression including top-level comma
// sequences: `(seq expr...)` when more than one.
func (p *Parser) parseExpression() *ir.Cell {
	start := p.cur
	first := p.parseAssignExpr()
	if !p.at(lexer.COMMA) {
		return first
	}
	exprs := []*ir.Cell{first}
	for p.at(lexer.COMMA) {
		p.advance()
		exprs = append(exprs, p.parseAssignExpr())
	}
	return p.node(p.ref(start), "seq", exprs...)
}

// parseAssignExpr handles assignment (`=`, compound, logical-assignment),
// the conditional operator, arrow functions, and yield, deferring to the
// binary/unary chain otherwise.
func (p *Parser) parseAssignExpr() *ir.Cell {
	start := p.cur

	if p.atIdent("yield") {
		return p.parseYield()
	}

	if arrow, ok := p.tryParseArrow(); ok {
		return arrow
	}

	left := p.parseConditional()

	if op, ok := assignOps[p.cur.Kind]; ok {
		p.advance()
		right := p.parseAssignExpr()
		return p.node(p.ref(start), "assign", p.sym(op, p.ref(start)), left, right)
	}
	return left
}

func (p *Parser) parseYield() *ir.Cell {
	start := p.cur
	p.advance()
	delegate := false
	if p.at(lexer.STAR) {
		delegate = true
		p.advance()
	}
	if p.at(lexer.SEMI) || p.at(lexer.RPAREN) || p.at(lexer.RBRACE) || p.at(lexer.RBRACKET) ||
		p.at(lexer.COMMA) || p.at(lexer.COLON) || p.at(lexer.EOF) || p.cur.NewlineBefore {
		return p.node(p.ref(start), "yield", p.arena.Empty(), p.boolLeaf(delegate))
	}
	arg := p.parseAssignExpr()
	return p.node(p.ref(start), "yield", arg, p.boolLeaf(delegate))
}

func (p *Parser) parseConditional() *ir.Cell {
	start := p.cur
	cond := p.parseBinary(0)
	if p.at(lexer.QUESTION) {
		p.advance()
		then := p.parseAssignExpr()
		p.expect(lexer.COLON, "':'")
		els := p.parseAssignExpr()
		return p.node(p.ref(start), "conditional", cond, then, els)
	}
	return cond
}

// parseBinary implements precedence climbing over binaryPrecedence, plus
// right-associative `**` and short-circuiting `&&`/`||`/`??` tagged
// "logical" rather than "binary".
func (p *Parser) parseBinary(minPrec int) *ir.Cell {
	start := p.cur
	left := p.parseExponent()
	for {
		prec, ok := binaryPrecedence[p.cur.Kind]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.cur
		p.advance()
		right := p.parseBinary(prec + 1)
		tag := "binary"
		if opTok.Kind == lexer.AND || opTok.Kind == lexer.OR || opTok.Kind == lexer.QUESTION_QUESTION {
			tag = "logical"
		}
		left = p.node(p.ref(start), tag, p.sym(opTok.Lexeme, opTok.Source), left, right)
	}
}

func (p *Parser) parseExponent() *ir.Cell {
	start := p.cur
	left := p.parseUnary()
	if p.at(lexer.STAR_STAR) {
		p.advance()
		right := p.parseExponent() // right-associative
		return p.node(p.ref(start), "binary", p.sym("**", p.ref(start)), left, right)
	}
	return left
}

var unaryOps = map[lexer.TokenType]string{
	lexer.PLUS: "+", lexer.MINUS: "-", lexer.BANG: "!", lexer.TILDE: "~",
	lexer.TYPEOF: "typeof", lexer.VOID: "void", lexer.DELETE: "delete",
}

func (p *Parser) parseUnary() *ir.Cell {
	start := p.cur
	if p.atIdent("await") {
		p.advance()
		arg := p.parseUnary()
		return p.node(p.ref(start), "await", arg)
	}
	if op, ok := unaryOps[p.cur.Kind]; ok {
		p.advance()
		arg := p.parseUnary()
		return p.node(p.ref(start), "unary", p.sym(op, p.ref(start)), arg)
	}
	if p.at(lexer.PLUS_PLUS) || p.at(lexer.MINUS_MINUS) {
		op := p.cur.Lexeme
		p.advance()
		arg := p.parseUnary()
		return p.node(p.ref(start), "update", p.sym(op, p.ref(start)), arg, p.boolLeaf(true))
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() *ir.Cell {
	start := p.cur
	expr := p.parseCallOrMember(p.parsePrimary())
	if (p.at(lexer.PLUS_PLUS) || p.at(lexer.MINUS_MINUS)) && !p.cur.NewlineBefore {
		op := p.cur.Lexeme
		p.advance()
		return p.node(p.ref(start), "update", p.sym(op, p.ref(start)), expr, p.boolLeaf(false))
	}
	return expr
}

// parseCallOrMember parses the postfix chain of member access, calls, and
// tagged templates following a primary expression.
func (p *Parser) parseCallOrMember(base *ir.Cell) *ir.Cell {
	start := p.cur
	for {
		switch {
		case p.at(lexer.DOT):
			p.advance()
			name := p.cur.Lexeme
			p.advance()
			base = p.node(p.ref(start), "member", base, p.sym(name, p.ref(start)), p.boolLeaf(false), p.boolLeaf(false))
		case p.at(lexer.PRIVATE_NAME) && false: // private access via '.' handled above; reserved
		case p.at(lexer.QUESTION_DOT):
			p.advance()
			if p.at(lexer.LPAREN) {
				args := p.parseArguments()
				base = p.node(p.ref(start), "call", base, p.boolLeaf(true), p.listOf(args))
				continue
			}
			if p.at(lexer.LBRACKET) {
				p.advance()
				idx := p.parseExpression()
				p.expect(lexer.RBRACKET, "']'")
				base = p.node(p.ref(start), "member", base, idx, p.boolLeaf(true), p.boolLeaf(true))
				continue
			}
			name := p.cur.Lexeme
			p.advance()
			base = p.node(p.ref(start), "member", base, p.sym(name, p.ref(start)), p.boolLeaf(true), p.boolLeaf(false))
		case p.at(lexer.LBRACKET):
			p.advance()
			idx := p.parseExpression()
			p.expect(lexer.RBRACKET, "']'")
			base = p.node(p.ref(start), "member", base, idx, p.boolLeaf(false), p.boolLeaf(true))
		case p.at(lexer.LPAREN):
			args := p.parseArguments()
			base = p.node(p.ref(start), "call", base, p.boolLeaf(false), p.listOf(args))
		case p.at(lexer.TEMPLATE_FULL) || p.at(lexer.TEMPLATE_HEAD):
			tmpl := p.parseTemplateLiteral()
			base = p.node(p.ref(start), "taggedtemplate", base, tmpl)
		default:
			return base
		}
	}
}

func (p *Parser) listOf(items []*ir.Cell) *ir.Cell {
	return p.arena.List(p.cur.Source, items...)
}

func (p *Parser) parseArguments() []*ir.Cell {
	p.expect(lexer.LPAREN, "'('")
	var args []*ir.Cell
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		start := p.cur
		if p.at(lexer.DOTDOTDOT) {
			p.advance()
			arg := p.parseAssignExpr()
			args = append(args, p.node(p.ref(start), "spread", arg))
		} else {
			args = append(args, p.parseAssignExpr())
		}
		if !p.at(lexer.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(lexer.RPAREN, "')'")
	return args
}

func (p *Parser) parsePrimary() *ir.Cell {
	start := p.cur
	switch p.cur.Kind {
	case lexer.NUMBER:
		lexeme := p.cur.Lexeme
		p.advance()
		return p.node(p.ref(start), "literal", p.numberLeaf(lexeme))
	case lexer.BIGINT:
		lexeme := strings.TrimSuffix(p.cur.Lexeme, "n")
		p.advance()
		digits := p.arena.Leaf(parseBigIntLiteral(lexeme), p.ref(start))
		return p.node(p.ref(start), "literal", p.node(p.ref(start), "bigint", digits))
	case lexer.STRING:
		s := p.cur.Lexeme
		p.advance()
		return p.node(p.ref(start), "literal", p.arena.Leaf(s, p.ref(start)))
	case lexer.TRUE_LIT, lexer.FALSE_LIT:
		b := p.cur.Kind == lexer.TRUE_LIT
		p.advance()
		return p.node(p.ref(start), "literal", p.boolLeaf(b))
	case lexer.NULL_LIT:
		p.advance()
		return p.node(p.ref(start), "literal", p.node(p.ref(start), "null"))
	case lexer.REGEXP:
		lexeme := p.cur.Lexeme
		p.advance()
		return p.node(p.ref(start), "regexp", p.arena.Leaf(lexeme, p.ref(start)))
	case lexer.TEMPLATE_FULL, lexer.TEMPLATE_HEAD:
		return p.parseTemplateLiteral()
	case lexer.THIS:
		p.advance()
		return p.node(p.ref(start), "this")
	case lexer.SUPER:
		p.advance()
		return p.node(p.ref(start), "super")
	case lexer.IDENT:
		if p.atIdent("undefined") {
			p.advance()
			return p.node(p.ref(start), "literal", p.node(p.ref(start), "undefined"))
		}
		if p.atIdent("async") && p.nxt.Kind == lexer.FUNCTION {
			return p.parseFunctionExpr(true)
		}
		name := p.cur.Lexeme
		p.advance()
		return p.node(p.ref(start), "ident", p.sym(name, p.ref(start)))
	case lexer.PRIVATE_NAME:
		name := p.cur.Lexeme
		p.advance()
		return p.node(p.ref(start), "ident", p.sym(name, p.ref(start)))
	case lexer.FUNCTION:
		return p.parseFunctionExpr(false)
	case lexer.CLASS:
		return p.parseClassExpr()
	case lexer.NEW:
		return p.parseNew()
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN, "')'")
		return expr
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseObjectLiteral()
	default:
		p.errorf("unexpected token %q", p.cur.Lexeme)
		p.advance()
		return p.node(p.ref(start), "literal", p.node(p.ref(start), "undefined"))
	}
}

func (p *Parser) numberLeaf(lexeme string) *ir.Cell {
	v, _ := parseNumberLiteral(lexeme)
	return p.arena.Leaf(v, p.cur.Source)
}

// parseNumberLiteral decodes a decimal/hex/octal/binary numeric lexeme
// into a float64, following JS's "integer literals exceeding the
// exact-double range become approximate doubles" rule simply by using
// float64 arithmetic throughout.
func parseNumberLiteral(lexeme string) (float64, error) {
	lexeme = strings.ReplaceAll(lexeme, "_", "")
	switch {
	case strings.HasPrefix(lexeme, "0x") || strings.HasPrefix(lexeme, "0X"):
		v, err := strconv.ParseUint(lexeme[2:], 16, 64)
		return float64(v), err
	case strings.HasPrefix(lexeme, "0o") || strings.HasPrefix(lexeme, "0O"):
		v, err := strconv.ParseUint(lexeme[2:], 8, 64)
		return float64(v), err
	case strings.HasPrefix(lexeme, "0b") || strings.HasPrefix(lexeme, "0B"):
		v, err := strconv.ParseUint(lexeme[2:], 2, 64)
		return float64(v), err
	default:
		return strconv.ParseFloat(lexeme, 64)
	}
}

// parseBigIntLiteral decodes the digits of a BigInt literal (suffix `n`
// already stripped) into a decimal string suitable for math/big.Int.SetString,
// normalizing hex/octal/binary prefixes to base 10 text via the same radix
// parse used for Number literals but kept in full precision.
func parseBigIntLiteral(lexeme string) string {
	lexeme = strings.ReplaceAll(lexeme, "_", "")
	base := 10
	digits := lexeme
	switch {
	case strings.HasPrefix(lexeme, "0x") || strings.HasPrefix(lexeme, "0X"):
		base, digits = 16, lexeme[2:]
	case strings.HasPrefix(lexeme, "0o") || strings.HasPrefix(lexeme, "0O"):
		base, digits = 8, lexeme[2:]
	case strings.HasPrefix(lexeme, "0b") || strings.HasPrefix(lexeme, "0B"):
		base, digits = 2, lexeme[2:]
	}
	if base == 10 {
		return digits
	}
	n := new(big.Int)
	n.SetString(digits, base)
	return n.String()
}

func (p *Parser) parseNew() *ir.Cell {
	start := p.cur
	p.advance()
	if p.at(lexer.DOT) { // new.target
		p.advance()
		p.expect(lexer.IDENT, "'target'")
		return p.node(p.ref(start), "newtarget")
	}
	callee := p.parseCallOrMember(p.parsePrimary())
	// If the chain above already consumed a call, split it back into
	// callee+args for `new`.
	if callee.Tag() == "call" {
		items := callee.Items()
		return p.node(p.ref(start), "new", items[1], items[3])
	}
	var args *ir.Cell
	if p.at(lexer.LPAREN) {
		args = p.listOf(p.parseArguments())
	} else {
		args = p.arena.Empty()
	}
	return p.node(p.ref(start), "new", callee, args)
}

func (p *Parser) parseArrayLiteral() *ir.Cell {
	start := p.cur
	p.advance()
	var elems []*ir.Cell
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		if p.at(lexer.COMMA) {
			elems = append(elems, p.node(p.ref(start), "hole"))
			p.advance()
			continue
		}
		estart := p.cur
		if p.at(lexer.DOTDOTDOT) {
			p.advance()
			e := p.parseAssignExpr()
			elems = append(elems, p.node(p.ref(estart), "spread", e))
		} else {
			elems = append(elems, p.parseAssignExpr())
		}
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET, "']'")
	return p.node(p.ref(start), "array", elems...)
}

// parseObjectLiteral parses `{ ...properties }`. Each property is encoded
// as one of:
//
//	(prop key value computed)         - regular/shorthand data property
//	(method key params body kind computed isAsync isGenerator) - method/getter/setter
//	(spreadprop expr)
func (p *Parser) parseObjectLiteral() *ir.Cell {
	start := p.cur
	p.lx.PushOrdinaryBrace()
	p.advance()
	var props []*ir.Cell
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		props = append(props, p.parseObjectMember())
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.lx.PopOrdinaryBrace()
	p.expect(lexer.RBRACE, "'}'")
	return p.node(p.ref(start), "object", props...)
}

func (p *Parser) parseObjectMember() *ir.Cell {
	start := p.cur
	if p.at(lexer.DOTDOTDOT) {
		p.advance()
		e := p.parseAssignExpr()
		return p.node(p.ref(start), "spreadprop", e)
	}

	isAsync, isGenerator := false, false
	accessor := ""
	if p.atIdent("async") && !p.peekEndsPropertyName() {
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
		if accessor != "" {
			kind = accessor
		}
		return p.node(p.ref(start), "method", key, params, body, p.sym(kind, p.ref(start)), p.boolLeaf(computed), p.boolLeaf(isAsync), p.boolLeaf(isGenerator))
	}
	if p.at(lexer.COLON) {
		p.advance()
		val := p.parseAssignExpr()
		return p.node(p.ref(start), "prop", key, val, p.boolLeaf(computed))
	}
	// shorthand, possibly with a default (only valid in destructuring use)
	if p.at(lexer.ASSIGN) {
		p.advance()
		def := p.parseAssignExpr()
		return p.node(p.ref(start), "prop", key, p.node(p.ref(start), "assignpattern", p.node(p.ref(start), "ident", key), def), p.boolLeaf(false))
	}
	return p.node(p.ref(start), "prop", key, p.node(p.ref(start), "ident", key), p.boolLeaf(false))
}

// peekEndsPropertyName reports whether the *next* token terminates a
// property name (so the current `async`/`get`/`set` identifier must itself
// be the property name, not a modifier).
func (p *Parser) peekEndsPropertyName() bool {
	switch p.nxt.Kind {
	case lexer.COLON, lexer.LPAREN, lexer.COMMA, lexer.RBRACE, lexer.ASSIGN:
		return true
	default:
		return false
	}
}

func (p *Parser) parsePropertyKey() (key *ir.Cell, computed bool) {
	start := p.cur
	switch p.cur.Kind {
	case lexer.LBRACKET:
		p.advance()
		k := p.parseAssignExpr()
		p.expect(lexer.RBRACKET, "']'")
		return k, true
	case lexer.STRING:
		s := p.cur.Lexeme
		p.advance()
		return p.arena.Leaf(s, p.ref(start)), false
	case lexer.NUMBER:
		lexeme := p.cur.Lexeme
		p.advance()
		return p.numberLeafFrom(lexeme, start), false
	default:
		name := p.cur.Lexeme
		p.advance()
		return p.arena.Leaf(name, p.ref(start)), false
	}
}

func (p *Parser) numberLeafFrom(lexeme string, start lexer.Token) *ir.Cell {
	v, _ := parseNumberLiteral(lexeme)
	return p.arena.Leaf(v, p.ref(start))
}

func (p *Parser) parseTemplateLiteral() *ir.Cell {
	start := p.cur
	var quasis []*ir.Cell
	var exprs []*ir.Cell

	tok := p.cur
	p.advance()
	raw, cooked := lexer.DecodeTemplateLexeme(tok.Lexeme)
	quasis = append(quasis, p.quasiNode(raw, cooked, tok.Kind == lexer.TEMPLATE_FULL || tok.Kind == lexer.TEMPLATE_TAIL))

	for tok.Kind == lexer.TEMPLATE_HEAD || tok.Kind == lexer.TEMPLATE_MIDDLE {
		exprs = append(exprs, p.parseExpression())
		if !p.lx.InTemplateSubstitution() {
			p.errorf("expected '}' to close template substitution")
			break
		}
		tok = p.lx.ContinueTemplate()
		p.cur = tok
		p.nxt = p.lx.NextToken()
		raw, cooked = lexer.DecodeTemplateLexeme(tok.Lexeme)
		quasis = append(quasis, p.quasiNode(raw, cooked, tok.Kind == lexer.TEMPLATE_TAIL))
	}

	return p.node(p.ref(start), "template", p.listOf(quasis), p.listOf(exprs))
}

func (p *Parser) quasiNode(raw, cooked string, tail bool) *ir.Cell {
	return p.arena.List(p.cur.Source,
		p.arena.Leaf(raw, p.cur.Source),
		p.arena.Leaf(cooked, p.cur.Source),
		p.boolLeaf(tail),
	)
}
