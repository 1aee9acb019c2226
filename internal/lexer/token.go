package lexer

import "github.com/meko-tech/jsengine/internal/ir"

// TokenType enumerates the lexical token categories produced by the lexer.
// Contextual keywords (async, await, yield, get, set, of, from, as) are
// deliberately NOT their own token types: they come back as IDENT and are
// disambiguated by the parser based on position.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	IDENT
	NUMBER
	BIGINT
	STRING
	TEMPLATE_HEAD
	TEMPLATE_MIDDLE
	TEMPLATE_TAIL
	TEMPLATE_FULL // a template with no substitutions: `hello`
	REGEXP
	PRIVATE_NAME // #name

	literalEnd

	// Punctuators
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	SEMI
	COMMA
	DOT
	DOTDOTDOT
	QUESTION
	QUESTION_DOT
	QUESTION_QUESTION
	QUESTION_QUESTION_EQ
	COLON
	ARROW

	ASSIGN
	PLUS_EQ
	MINUS_EQ
	STAR_EQ
	SLASH_EQ
	PERCENT_EQ
	STAR_STAR_EQ
	AMP_EQ
	PIPE_EQ
	CARET_EQ
	LSHIFT_EQ
	RSHIFT_EQ
	URSHIFT_EQ
	AND_EQ
	OR_EQ

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	STAR_STAR
	PLUS_PLUS
	MINUS_MINUS

	EQ
	NEQ
	EQ_STRICT
	NEQ_STRICT
	LT
	GT
	LTE
	GTE

	AND
	OR
	NOT
	BANG

	AMP
	PIPE
	CARET
	TILDE
	LSHIFT
	RSHIFT
	URSHIFT

	// Keywords (reserved words; unlike contextual keywords these are never
	// valid identifiers)
	keywordStart
	VAR
	LET
	CONST
	FUNCTION
	RETURN
	IF
	ELSE
	FOR
	WHILE
	DO
	BREAK
	CONTINUE
	SWITCH
	CASE
	DEFAULT
	TRY
	CATCH
	FINALLY
	THROW
	NEW
	DELETE
	TYPEOF
	INSTANCEOF
	IN
	VOID
	THIS
	SUPER
	CLASS
	EXTENDS
	STATIC
	IMPORT
	EXPORT
	NULL_LIT
	TRUE_LIT
	FALSE_LIT
	keywordEnd
)

var keywords = map[string]TokenType{
	"var": VAR, "let": LET, "const": CONST, "function": FUNCTION,
	"return": RETURN, "if": IF, "else": ELSE, "for": FOR, "while": WHILE,
	"do": DO, "break": BREAK, "continue": CONTINUE, "switch": SWITCH,
	"case": CASE, "default": DEFAULT, "try": TRY, "catch": CATCH,
	"finally": FINALLY, "throw": THROW, "new": NEW, "delete": DELETE,
	"typeof": TYPEOF, "instanceof": INSTANCEOF, "in": IN, "void": VOID,
	"this": THIS, "super": SUPER, "class": CLASS, "extends": EXTENDS,
	"static": STATIC, "import": IMPORT, "export": EXPORT,
	"null": NULL_LIT, "true": TRUE_LIT, "false": FALSE_LIT,
}

// contextualKeywords lists identifiers that are returned as IDENT and
// disambiguated positionally by the parser.
var contextualKeywords = map[string]bool{
	"async": true, "await": true, "yield": true,
	"get": true, "set": true, "of": true, "from": true, "as": true,
}

// IsContextualKeyword reports whether lexeme is one of the parser-
// disambiguated contextual keywords.
func IsContextualKeyword(lexeme string) bool { return contextualKeywords[lexeme] }

// Token is a single lexical token with source provenance.
type Token struct {
	Kind          TokenType
	Lexeme        string
	Source        ir.SourceRef
	NewlineBefore bool // true if a line terminator appeared since the previous token (for ASI)
}

func (t Token) String() string { return t.Lexeme }
