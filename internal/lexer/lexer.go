// Package lexer tokenizes ECMAScript source text into the positioned token
// stream the parser consumes.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/meko-tech/jsengine/internal/diagnostics"
	"github.com/meko-tech/jsengine/internal/ir"
)

// braceKind distinguishes an ordinary `{...}` block/object brace from one
// opened by a template literal's `${`, so the lexer knows whether a `}`
// closes a block or must resume scanning the template's next segment.
type braceKind int

const (
	braceOrdinary braceKind = iota
	braceTemplateSub
)

// Option configures a Lexer at construction time.
type Option func(*Lexer)

// WithFile sets the filename reported in lexer errors.
func WithFile(name string) Option {
	return func(l *Lexer) { l.file = name }
}

// WithSourceHandle binds the lexer (and every token it produces) to a
// pre-allocated source handle, so the parser and typed-AST builder that
// consume the same source share one handle.
func WithSourceHandle(h ir.SourceHandle) Option {
	return func(l *Lexer) { l.handle = h }
}

// Lexer scans ECMAScript source text into tokens.
type Lexer struct {
	input  string
	file   string
	handle ir.SourceHandle

	pos, readPos int
	line, col    int
	ch           rune
	chWidth      int

	braceStack []braceKind
	prevKind   TokenType
	atStart    bool

	errs []*diagnostics.ParseError
}

// New creates a Lexer over source, applying any options.
func New(source string, opts ...Option) *Lexer {
	l := &Lexer{input: source, line: 1, col: 0, atStart: true, prevKind: ILLEGAL}
	l.handle = ir.NewSourceHandle()
	for _, opt := range opts {
		opt(l)
	}
	l.advance()
	return l
}

// Handle returns the source handle every token from this lexer carries.
func (l *Lexer) Handle() ir.SourceHandle { return l.handle }

// State is a snapshot of the Lexer's scan position, sufficient to resume
// scanning exactly where Save was called. Used by the parser to implement
// arrow-function lookahead without committing to a parse path.
type State struct {
	pos, readPos int
	line, col    int
	ch           rune
	chWidth      int
	braceStack   []braceKind
	prevKind     TokenType
	atStart      bool
	errCount     int
}

// Save captures the current scan position.
func (l *Lexer) Save() State {
	return State{
		pos: l.pos, readPos: l.readPos, line: l.line, col: l.col,
		ch: l.ch, chWidth: l.chWidth,
		braceStack: append([]braceKind{}, l.braceStack...),
		prevKind:   l.prevKind, atStart: l.atStart, errCount: len(l.errs),
	}
}

// Restore rewinds the lexer to a previously captured State, discarding any
// errors recorded since.
func (l *Lexer) Restore(s State) {
	l.pos, l.readPos, l.line, l.col = s.pos, s.readPos, s.line, s.col
	l.ch, l.chWidth = s.ch, s.chWidth
	l.braceStack = s.braceStack
	l.prevKind, l.atStart = s.prevKind, s.atStart
	if s.errCount < len(l.errs) {
		l.errs = l.errs[:s.errCount]
	}
}

// Errors returns parse errors accumulated while scanning.
func (l *Lexer) Errors() []*diagnostics.ParseError { return l.errs }

func (l *Lexer) advance() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.chWidth = 0
		l.pos = l.readPos
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	l.pos = l.readPos
	l.ch = r
	l.chWidth = w
	l.readPos += w
	l.col++
}

func (l *Lexer) peekAt(offset int) rune {
	idx := l.pos
	for i := 0; i < offset; i++ {
		if idx >= len(l.input) {
			return 0
		}
		_, w := utf8.DecodeRuneInString(l.input[idx:])
		idx += w
	}
	if idx >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[idx:])
	return r
}

func (l *Lexer) peek() rune { return l.peekAt(1) }

func (l *Lexer) ref(start, startLine, startCol int) ir.SourceRef {
	return ir.NewSourceRef(l.input, l.handle, start, l.pos, startLine, startCol)
}

func (l *Lexer) errorf(format string, args ...any) {
	// Minimal, position-bound error; full formatting lives in
	// diagnostics.ParseError.Format via Errors().
	msg := fmt.Sprintf(format, args...)
	l.errs = append(l.errs, diagnostics.NewParseError(msg, l.line, l.col, l.input, l.file))
}

// NextToken scans and returns the next token, honoring the current
// regex-allowed context implicitly through prevKind.
func (l *Lexer) NextToken() Token {
	newline := l.skipWhitespaceAndComments()
	startLine, startCol, start := l.line, l.col, l.pos

	mk := func(kind TokenType, lexeme string) Token {
		t := Token{Kind: kind, Lexeme: lexeme, Source: l.ref(start, startLine, startCol), NewlineBefore: newline}
		l.prevKind = kind
		l.atStart = false
		return t
	}

	if l.ch == 0 {
		return mk(EOF, "")
	}

	switch {
	case isIdentStart(l.ch):
		return l.scanIdentifier(mk)
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peek())):
		return l.scanNumber(mk)
	case l.ch == '"' || l.ch == '\'':
		return l.scanString(mk)
	case l.ch == '`':
		return l.scanTemplate(mk, true)
	case l.ch == '#':
		return l.scanPrivateName(mk)
	case l.ch == '/' && l.regexAllowed():
		return l.scanRegExp(mk)
	default:
		return l.scanPunct(mk)
	}
}

func (l *Lexer) skipWhitespaceAndComments() (newline bool) {
	for {
		switch {
		case l.ch == '\n':
			newline = true
			l.advance()
		case l.ch == '\r' || l.ch == '\t' || l.ch == ' ' || l.ch == '\v' || l.ch == '\f' || l.ch == 0xFEFF:
			l.advance()
		case unicode.IsSpace(l.ch):
			l.advance()
		case l.ch == '/' && l.peek() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.advance()
			}
		case l.ch == '/' && l.peek() == '*':
			l.advance()
			l.advance()
			for !(l.ch == '*' && l.peek() == '/') && l.ch != 0 {
				if l.ch == '\n' {
					newline = true
				}
				l.advance()
			}
			l.advance()
			l.advance()
		default:
			return newline
		}
	}
}

// regexAllowed reports whether a `/` at the current position starts a
// regex literal rather than a division operator: it does unless the
// previous token was one that can end an expression.
func (l *Lexer) regexAllowed() bool {
	if l.atStart {
		return true
	}
	switch l.prevKind {
	case IDENT, NUMBER, BIGINT, STRING, RPAREN, RBRACKET, TEMPLATE_FULL, TEMPLATE_TAIL,
		THIS, SUPER, NULL_LIT, TRUE_LIT, FALSE_LIT, PLUS_PLUS, MINUS_MINUS, REGEXP, PRIVATE_NAME:
		return false
	default:
		return true
	}
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == 0x200C || r == 0x200D
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (l *Lexer) scanIdentifier(mk func(TokenType, string) Token) Token {
	start := l.pos
	for isIdentPart(l.ch) {
		l.advance()
	}
	lexeme := l.input[start:l.pos]
	if kind, ok := keywords[lexeme]; ok {
		return mk(kind, lexeme)
	}
	return mk(IDENT, lexeme)
}

func (l *Lexer) scanPrivateName(mk func(TokenType, string) Token) Token {
	start := l.pos
	l.advance() // '#'
	for isIdentPart(l.ch) {
		l.advance()
	}
	return mk(PRIVATE_NAME, l.input[start:l.pos])
}
