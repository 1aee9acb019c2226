package astbuilder

import (
	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/ir"
)

// buildPattern builds a binding/assignment-target pattern. It also accepts
// plain expression shapes ("ident", "member") produced when a for-in/
// for-of head or a destructuring assignment reuses an existing expression
// as its target, converting them to the corresponding Pattern variant.
func buildPattern(c *ir.Cell) ast.Pattern {
	switch c.Tag() {
	case "ident":
		ch := children(c)
		return &ast.IdentifierPattern{NodeBase: base(c), Name: symOf(ch[0])}
	case "arraypattern":
		return buildArrayPattern(c)
	case "objectpattern":
		return buildObjectPattern(c)
	case "assignpattern":
		ch := children(c)
		return &ast.AssignmentPattern{NodeBase: base(c), Target: buildPattern(ch[0]), Default: buildExpression(ch[1])}
	case "member":
		return &ast.MemberTarget{NodeBase: base(c), Expr: buildMember(c)}
	case "array":
		return arrayExprAsPattern(c)
	case "object":
		return objectExprAsPattern(c)
	default:
		return unknown(c)
	}
}

func buildArrayPattern(c *ir.Cell) *ast.ArrayPattern {
	ch := children(c)
	n := &ast.ArrayPattern{NodeBase: base(c)}
	for _, e := range ch[0].Items() {
		if e.Tag() == "hole" {
			n.Elements = append(n.Elements, nil)
			continue
		}
		n.Elements = append(n.Elements, buildPattern(e))
	}
	if !ch[1].IsEmpty() {
		n.Rest = buildPattern(ch[1])
	}
	return n
}

func buildObjectPattern(c *ir.Cell) *ast.ObjectPattern {
	ch := children(c)
	n := &ast.ObjectPattern{NodeBase: base(c)}
	for _, p := range ch[0].Items() {
		pch := children(p)
		n.Properties = append(n.Properties, ast.ObjectPatternProperty{
			NodeBase: base(p), Key: buildPropertyKey(pch[0]), Value: buildPattern(pch[1]), Computed: boolOf(pch[2]),
		})
	}
	if !ch[1].IsEmpty() {
		n.Rest = buildPattern(ch[1])
	}
	return n
}

// arrayExprAsPattern converts a parsed array-literal shape into an
// ArrayPattern, used when a destructuring assignment's left side was
// parsed as an ordinary expression (`[a, b] = rhs`).
func arrayExprAsPattern(c *ir.Cell) *ast.ArrayPattern {
	n := &ast.ArrayPattern{NodeBase: base(c)}
	for _, e := range children(c) {
		switch e.Tag() {
		case "hole":
			n.Elements = append(n.Elements, nil)
		case "spread":
			ch := children(e)
			n.Rest = buildPattern(ch[0])
		default:
			n.Elements = append(n.Elements, buildPattern(e))
		}
	}
	return n
}

// objectExprAsPattern converts a parsed object-literal shape into an
// ObjectPattern, used when a destructuring assignment's left side was
// parsed as an ordinary expression (`{a, b} = rhs`).
func objectExprAsPattern(c *ir.Cell) *ast.ObjectPattern {
	n := &ast.ObjectPattern{NodeBase: base(c)}
	for _, p := range children(c) {
		switch p.Tag() {
		case "spreadprop":
			ch := children(p)
			n.Rest = buildPattern(ch[0])
		case "prop":
			ch := children(p)
			n.Properties = append(n.Properties, ast.ObjectPatternProperty{
				NodeBase: base(p), Key: buildPropertyKey(ch[0]), Value: buildPattern(ch[1]), Computed: boolOf(ch[2]),
			})
		}
	}
	return n
}
