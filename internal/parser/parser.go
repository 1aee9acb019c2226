// Package parser implements a recursive-descent, operator-precedence
// parser that turns a token stream into the untyped IR of internal/ir.
// Node shape follows a small, consistent convention: every non-leaf IR
// cell's head is a symbol naming the construct ("binary", "if",
// "vardecl", ...), and the remainder of the list holds its children in a
// fixed order documented next to each parse method.
package parser

import (
	"fmt"

	"github.com/meko-tech/jsengine/internal/diagnostics"
	"github.com/meko-tech/jsengine/internal/ir"
	"github.com/meko-tech/jsengine/internal/lexer"
)

// Parser builds IR from a token stream produced by internal/lexer.
type Parser struct {
	lx     *lexer.Lexer
	arena  *ir.Arena
	file   string
	source string

	cur, nxt lexer.Token
	errs     []*diagnostics.ParseError

	// asyncDepth/generatorDepth/loopDepth/switchDepth track contexts
	// needed to validate break/continue and `await`/`yield` availability.
	asyncDepth, generatorDepth, loopDepth, switchDepth int
}

// New creates a Parser over source.
func New(source, file string) *Parser {
	lx := lexer.New(source, lexer.WithFile(file))
	p := &Parser{lx: lx, arena: ir.NewArena(), file: file, source: source}
	p.cur = p.lx.NextToken()
	p.nxt = p.lx.NextToken()
	return p
}

// Arena returns the IR arena this parser allocated cells from.
func (p *Parser) Arena() *ir.Arena { return p.arena }

// Errors returns every parse error accumulated while parsing.
func (p *Parser) Errors() []*diagnostics.ParseError {
	return append(append([]*diagnostics.ParseError{}, p.lx.Errors()...), p.errs...)
}

func (p *Parser) advance() {
	p.cur = p.nxt
	if p.lx.InTemplateSubstitution() {
		// handled explicitly by parseTemplateLiteral; NextToken here would
		// mis-scan the literal body as ordinary tokens.
		p.nxt = p.lx.NextToken()
		return
	}
	p.nxt = p.lx.NextToken()
}

// mark/reset give the parser a cheap backtracking point, used by arrow-
// function lookahead to scan ahead through parenthesized groups and abandon
// the attempt without leaving any trace - lexer position, current/peek
// tokens, and any speculative errors are all rewound together.
type mark struct {
	lx       lexer.State
	cur, nxt lexer.Token
	errCount int
}

func (p *Parser) mark() mark {
	return mark{lx: p.lx.Save(), cur: p.cur, nxt: p.nxt, errCount: len(p.errs)}
}

func (p *Parser) reset(m mark) {
	p.lx.Restore(m.lx)
	p.cur, p.nxt = m.cur, m.nxt
	if m.errCount < len(p.errs) {
		p.errs = p.errs[:m.errCount]
	}
}

func (p *Parser) at(kind lexer.TokenType) bool { return p.cur.Kind == kind }

func (p *Parser) atIdent(name string) bool {
	return p.cur.Kind == lexer.IDENT && p.cur.Lexeme == name
}

func (p *Parser) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errs = append(p.errs, diagnostics.NewParseError(msg, p.cur.Source.StartLine, p.cur.Source.StartCol, p.source, p.file))
}

func (p *Parser) expect(kind lexer.TokenType, what string) lexer.Token {
	if !p.at(kind) {
		p.errorf("expected %s, found %q", what, p.cur.Lexeme)
		return p.cur
	}
	t := p.cur
	p.advance()
	return t
}

func (p *Parser) ref(start lexer.Token) ir.SourceRef {
	return ir.NewSourceRef(p.source, p.lx.Handle(), start.Source.Start, p.cur.Source.Start, start.Source.StartLine, start.Source.StartCol)
}

func (p *Parser) sym(s string, ref ir.SourceRef) *ir.Cell { return p.arena.Leaf(s, ref) }

func (p *Parser) node(ref ir.SourceRef, tag string, children ...*ir.Cell) *ir.Cell {
	items := append([]*ir.Cell{p.sym(tag, ref)}, children...)
	return p.arena.List(ref, items...)
}

// consumeSemicolon implements automatic semicolon insertion: an explicit
// `;` is consumed; otherwise a `}`/EOF/newline-before-current-token ends
// the statement silently.
func (p *Parser) consumeSemicolon() {
	if p.at(lexer.SEMI) {
		p.advance()
		return
	}
	if p.at(lexer.RBRACE) || p.at(lexer.EOF) || p.cur.NewlineBefore {
		return
	}
	p.errorf("expected ';', found %q", p.cur.Lexeme)
}

// ParseProgram parses a whole source unit into `(program stmt...)`.
func (p *Parser) ParseProgram() *ir.Cell {
	start := p.cur
	var stmts []*ir.Cell
	for !p.at(lexer.EOF) {
		stmts = append(stmts, p.parseStatement())
	}
	return p.node(p.ref(start), "program", stmts...)
}
