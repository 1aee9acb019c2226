// Package astbuilder lifts internal/ir's untyped cons-cell trees into the
// typed internal/ast tree. Every recognized IR shape gets a concrete
// node; anything else becomes ast.Unknown, carrying the raw cell forward
// so the evaluator can fall back to interpreting IR directly. This is a
// deliberate escape hatch, not a gap: new syntax forms can land in the
// parser well before the typed builder and evaluator learn them.
package astbuilder

import (
	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/ir"
)

// Build walks a `(program stmt...)` cell produced by internal/parser into
// an *ast.Program.
func Build(program *ir.Cell) *ast.Program {
	items := program.Items()
	var body []ast.Statement
	for _, c := range items[1:] {
		body = append(body, buildStatement(c))
	}
	return &ast.Program{NodeBase: ast.NodeBase{SourceRef: program.SourceRef}, Body: body, Strict: true}
}

// children returns a list cell's elements after its leading tag symbol.
func children(c *ir.Cell) []*ir.Cell {
	items := c.Items()
	if len(items) == 0 {
		return nil
	}
	return items[1:]
}

func base(c *ir.Cell) ast.NodeBase { return ast.NodeBase{SourceRef: c.SourceRef} }

func unknown(c *ir.Cell) *ast.Unknown { return &ast.Unknown{NodeBase: base(c), Raw: c} }

func symOf(c *ir.Cell) string {
	s, _ := c.Symbol()
	return s
}

func boolOf(c *ir.Cell) bool {
	b, _ := c.Atom.(bool)
	return b
}

func numOf(c *ir.Cell) float64 {
	switch v := c.Atom.(type) {
	case float64:
		return v
	default:
		return 0
	}
}

func strOf(c *ir.Cell) string {
	switch v := c.Atom.(type) {
	case string:
		return v
	default:
		return ""
	}
}
