package fold

import (
	"testing"

	"github.com/meko-tech/jsengine/internal/ast"
)

func numberLit(v float64) *ast.Literal { return &ast.Literal{Kind: ast.LitNumber, Value: v} }
func stringLit(v string) *ast.Literal  { return &ast.Literal{Kind: ast.LitString, Value: v} }
func boolLitV(v bool) *ast.Literal     { return &ast.Literal{Kind: ast.LitBool, Value: v} }

func TestFoldBinaryArithmetic(t *testing.T) {
	tests := []struct {
		name      string
		op        string
		left      *ast.Literal
		right     *ast.Literal
		wantValue float64
		wantOk    bool
	}{
		{"add numbers", "+", numberLit(3), numberLit(2.5), 5.5, true},
		{"subtract numbers", "-", numberLit(10), numberLit(4), 6, true},
		{"multiply numbers", "*", numberLit(3), numberLit(4), 12, true},
		{"divide numbers", "/", numberLit(10), numberLit(4), 2.5, true},
		{"modulo numbers", "%", numberLit(10), numberLit(3), 1, true},
		{"exponent numbers", "**", numberLit(2), numberLit(10), 1024, true},
		{"bitwise and", "&", numberLit(6), numberLit(3), 2, true},
		{"bitwise or", "|", numberLit(6), numberLit(1), 7, true},
		{"left shift", "<<", numberLit(1), numberLit(4), 16, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := foldBinary(tt.op, tt.left, tt.right)
			if ok != tt.wantOk {
				t.Fatalf("foldBinary(%q) ok = %v, want %v", tt.op, ok, tt.wantOk)
			}
			if ok && got.Value.(float64) != tt.wantValue {
				t.Errorf("foldBinary(%q) = %v, want %v", tt.op, got.Value, tt.wantValue)
			}
		})
	}
}

func TestFoldBinaryStringConcat(t *testing.T) {
	got, ok := foldBinary("+", stringLit("foo"), stringLit("bar"))
	if !ok || got.Value.(string) != "foobar" {
		t.Fatalf("foldBinary(+) = %v, %v; want foobar, true", got, ok)
	}

	got, ok = foldBinary("+", stringLit("count: "), numberLit(3))
	if !ok || got.Value.(string) != "count: 3" {
		t.Fatalf("foldBinary(+) string/number = %v, %v; want %q, true", got, ok, "count: 3")
	}
}

func TestFoldBinaryComparisons(t *testing.T) {
	got, ok := foldBinary("===", numberLit(1), numberLit(1))
	if !ok || got.Value.(bool) != true {
		t.Fatalf("1 === 1 = %v, %v", got, ok)
	}
	got, ok = foldBinary("===", numberLit(1), stringLit("1"))
	if !ok || got.Value.(bool) != false {
		t.Fatalf("1 === '1' = %v, %v; want false", got, ok)
	}
	got, ok = foldBinary("==", numberLit(1), stringLit("1"))
	if !ok || got.Value.(bool) != true {
		t.Fatalf("1 == '1' = %v, %v; want true", got, ok)
	}
}

func TestFoldUnary(t *testing.T) {
	got, ok := foldUnary("-", numberLit(5))
	if !ok || got.Value.(float64) != -5 {
		t.Fatalf("-5 = %v, %v", got, ok)
	}
	got, ok = foldUnary("!", boolLitV(false))
	if !ok || got.Value.(bool) != true {
		t.Fatalf("!false = %v, %v", got, ok)
	}
}

// TestProgramIdentityStable checks that folding a program with nothing to
// fold returns the exact same *ast.Program pointer.
func TestProgramIdentityStable(t *testing.T) {
	id := &ast.Identifier{Name: "x"}
	stmt := &ast.ExpressionStatement{Expr: id}
	p := &ast.Program{Body: []ast.Statement{stmt}}

	got := Program(p)
	if got != p {
		t.Fatalf("Program() returned a new pointer for an unfoldable tree")
	}
}

// TestProgramFoldsConstantExpression checks end-to-end folding collapses
// `1 + 2` inside an expression statement into a single Literal(3).
func TestProgramFoldsConstantExpression(t *testing.T) {
	bin := &ast.Binary{Op: "+", Left: numberLit(1), Right: numberLit(2)}
	stmt := &ast.ExpressionStatement{Expr: bin}
	p := &ast.Program{Body: []ast.Statement{stmt}}

	got := Program(p)
	if got == p {
		t.Fatalf("Program() did not fold a foldable tree")
	}
	es, ok := got.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("Body[0] is %T, want *ast.ExpressionStatement", got.Body[0])
	}
	lit, ok := es.Expr.(*ast.Literal)
	if !ok {
		t.Fatalf("Expr is %T, want *ast.Literal", es.Expr)
	}
	if lit.Value.(float64) != 3 {
		t.Errorf("folded value = %v, want 3", lit.Value)
	}
}

// TestConditionalFoldsAwayDeadBranch checks that a literal condition
// collapses `cond ? a : b` into the taken branch directly.
func TestConditionalFoldsAwayDeadBranch(t *testing.T) {
	cond := &ast.Conditional{Cond: boolLitV(true), Then: numberLit(1), Else: numberLit(2)}
	got := foldExpr(cond)
	lit, ok := got.(*ast.Literal)
	if !ok || lit.Value.(float64) != 1 {
		t.Fatalf("foldExpr(true ? 1 : 2) = %#v, want Literal(1)", got)
	}
}
