// Package ast defines the typed, tagged-variant syntax tree the evaluator
// walks. Unlike internal/ir's untyped cons cells, every node here is a
// concrete Go type; internal/astbuilder is the only place that bridges
// from one to the other.
package ast

import "github.com/meko-tech/jsengine/internal/ir"

// Node is implemented by every AST node; it carries the source span the
// node was parsed from, when known.
type Node interface {
	Source() ir.SourceRef
}

// NodeBase gives concrete node types their Source() method, source span
// storage, and an optional Origin back-pointer. Origin mirrors
// internal/ir.Cell's Origin field: a transform that synthesizes a new
// node - the CPS rewriter in particular - sets Origin to the
// pre-transform node so diagnostics can trace a rewritten node back to
// the source construct it replaced.
type NodeBase struct {
	SourceRef ir.SourceRef
	Origin    Node
}

func (n NodeBase) Source() ir.SourceRef { return n.SourceRef }

// OriginNode resolves n's Origin back-pointer, or nil if none is set.
func (n NodeBase) OriginNode() Node { return n.Origin }

// Statement is implemented by every statement-position node.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by every expression-position node.
type Expression interface {
	Node
	expressionNode()
}

// Pattern is implemented by every binding/assignment-target node
// (identifiers, array/object destructuring, defaults, member targets).
type Pattern interface {
	Node
	patternNode()
}

// Program is the root of a parsed source unit.
type Program struct {
	NodeBase
	Body   []Statement
	Strict bool
}
