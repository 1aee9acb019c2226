package ast

import "github.com/meko-tech/jsengine/internal/ir"

func (*Block) statementNode()               {}
func (*ExpressionStatement) statementNode() {}
func (*VariableDeclaration) statementNode() {}
func (*FunctionDeclaration) statementNode() {}
func (*ClassDeclaration) statementNode()    {}
func (*If) statementNode()                  {}
func (*For) statementNode()                 {}
func (*ForIn) statementNode()               {}
func (*ForOf) statementNode()               {}
func (*While) statementNode()               {}
func (*DoWhile) statementNode()             {}
func (*Switch) statementNode()              {}
func (*Try) statementNode()                 {}
func (*Throw) statementNode()               {}
func (*Return) statementNode()              {}
func (*Break) statementNode()               {}
func (*Continue) statementNode()            {}
func (*Labeled) statementNode()             {}
func (*Empty) statementNode()               {}
func (*Unknown) statementNode()             {}

// Block is a brace-delimited statement list; it also backs function bodies.
type Block struct {
	NodeBase
	Body []Statement
}

type ExpressionStatement struct {
	NodeBase
	Expr Expression
}

// VarKind distinguishes var/let/const declaration semantics: var hoists
// to the function frame, let/const do not and are subject to the
// Temporal Dead Zone.
type VarKind string

const (
	VarVar   VarKind = "var"
	VarLet   VarKind = "let"
	VarConst VarKind = "const"
)

// VariableBinding pairs a binding pattern with its optional initializer.
// const bindings always have Init set; the parser enforces this at parse
// time.
type VariableBinding struct {
	NodeBase
	Target Pattern
	Init   Expression // nil when absent
}

type VariableDeclaration struct {
	NodeBase
	Kind     VarKind
	Bindings []VariableBinding
}

// FunctionDeclaration's RestParam is nil unless the parameter list ends in
// `...name`, in which case it is excluded from Params.
type FunctionDeclaration struct {
	NodeBase
	Name        string
	Params      []Pattern
	RestParam   Pattern
	Body        *Block
	IsAsync     bool
	IsGenerator bool
}

type ClassDeclaration struct {
	NodeBase
	Name       string
	SuperClass Expression // nil when no `extends`
	Body       []ClassMember
}

type If struct {
	NodeBase
	Cond Expression
	Then Statement
	Else Statement // nil when absent
}

// For is the classic three-clause loop; Init/Cond/Update are nil when the
// corresponding clause is omitted. Init is either *VariableDeclaration or
// *ExpressionStatement.
type For struct {
	NodeBase
	Init   Statement
	Cond   Expression
	Update Expression
	Body   Statement
}

// ForIn is `for (<decl-or-target> in <right>) <body>`. Kind is "" when
// Left is an existing assignment target rather than a fresh declaration.
type ForIn struct {
	NodeBase
	Kind  VarKind
	Left  Pattern
	Right Expression
	Body  Statement
}

// ForOf additionally supports `for await (... of ...)`.
type ForOf struct {
	NodeBase
	Kind    VarKind
	Left    Pattern
	Right   Expression
	Body    Statement
	IsAwait bool
}

type While struct {
	NodeBase
	Cond Expression
	Body Statement
}

type DoWhile struct {
	NodeBase
	Body Statement
	Cond Expression
}

// SwitchCase's Test is nil for the default clause.
type SwitchCase struct {
	NodeBase
	Test Expression
	Body []Statement
}

type Switch struct {
	NodeBase
	Disc  Expression
	Cases []SwitchCase
}

// Try models `try { } catch (param) { } finally { }`; CatchBody is nil
// when there is no catch clause, CatchParam is nil for a parameterless
// catch, Finally is nil when there is no finally clause.
type Try struct {
	NodeBase
	Block      *Block
	CatchParam Pattern
	CatchBody  *Block
	Finally    *Block
}

type Throw struct {
	NodeBase
	Arg Expression
}

// Return's Arg is nil for a bare `return;`.
type Return struct {
	NodeBase
	Arg Expression
}

type Break struct {
	NodeBase
	Label string
}

type Continue struct {
	NodeBase
	Label string
}

type Labeled struct {
	NodeBase
	Label string
	Body  Statement
}

type Empty struct {
	NodeBase
}

// Unknown is the IR→AST builder's safety hatch: a shape the typed
// builder does not yet recognize is carried forward as raw IR rather
// than rejected, and the evaluator falls back to interpreting it
// directly.
type Unknown struct {
	NodeBase
	Raw *ir.Cell
}
