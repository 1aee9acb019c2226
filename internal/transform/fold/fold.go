// Package fold implements the constant folder: a pure, identity-stable
// rewrite over the typed AST that collapses fully-constant
// Binary/Logical/Unary expressions into Literal nodes, dispatching per
// operator group (equality, comparison, arithmetic) over JavaScript's
// single Number type plus string/bool/bigint operands.
package fold

import (
	"math"
	"strconv"
	"strings"

	"github.com/meko-tech/jsengine/internal/ast"
)

// Program folds every statement in p, returning p unchanged (same pointer)
// if nothing in it could be folded.
func Program(p *ast.Program) *ast.Program {
	body, changed := foldStatements(p.Body)
	if !changed {
		return p
	}
	np := *p
	np.Body = body
	return &np
}

func foldStatements(stmts []ast.Statement) ([]ast.Statement, bool) {
	changed := false
	out := make([]ast.Statement, len(stmts))
	for i, s := range stmts {
		fs := foldStatement(s)
		if fs != s {
			changed = true
		}
		out[i] = fs
	}
	if !changed {
		return stmts, false
	}
	return out, true
}

func foldStatement(s ast.Statement) ast.Statement {
	switch n := s.(type) {
	case *ast.Block:
		body, changed := foldStatements(n.Body)
		if !changed {
			return n
		}
		nn := *n
		nn.Body = body
		return &nn
	case *ast.ExpressionStatement:
		e := foldExpr(n.Expr)
		if e == n.Expr {
			return n
		}
		nn := *n
		nn.Expr = e
		return &nn
	case *ast.VariableDeclaration:
		changed := false
		bindings := make([]ast.VariableBinding, len(n.Bindings))
		for i, b := range n.Bindings {
			nb := b
			if b.Init != nil {
				fi := foldExpr(b.Init)
				if fi != b.Init {
					nb.Init = fi
					changed = true
				}
			}
			bindings[i] = nb
		}
		if !changed {
			return n
		}
		nn := *n
		nn.Bindings = bindings
		return &nn
	case *ast.If:
		cond := foldExpr(n.Cond)
		then := foldStatement(n.Then)
		var els ast.Statement
		if n.Else != nil {
			els = foldStatement(n.Else)
		}
		if cond == n.Cond && then == n.Then && els == n.Else {
			return n
		}
		nn := *n
		nn.Cond, nn.Then, nn.Else = cond, then, els
		return &nn
	case *ast.For:
		var init ast.Statement
		if n.Init != nil {
			init = foldStatement(n.Init)
		}
		var cond ast.Expression
		if n.Cond != nil {
			cond = foldExpr(n.Cond)
		}
		var update ast.Expression
		if n.Update != nil {
			update = foldExpr(n.Update)
		}
		body := foldStatement(n.Body)
		if init == n.Init && cond == n.Cond && update == n.Update && body == n.Body {
			return n
		}
		nn := *n
		nn.Init, nn.Cond, nn.Update, nn.Body = init, cond, update, body
		return &nn
	case *ast.ForIn:
		right := foldExpr(n.Right)
		body := foldStatement(n.Body)
		if right == n.Right && body == n.Body {
			return n
		}
		nn := *n
		nn.Right, nn.Body = right, body
		return &nn
	case *ast.ForOf:
		right := foldExpr(n.Right)
		body := foldStatement(n.Body)
		if right == n.Right && body == n.Body {
			return n
		}
		nn := *n
		nn.Right, nn.Body = right, body
		return &nn
	case *ast.While:
		cond := foldExpr(n.Cond)
		body := foldStatement(n.Body)
		if cond == n.Cond && body == n.Body {
			return n
		}
		nn := *n
		nn.Cond, nn.Body = cond, body
		return &nn
	case *ast.DoWhile:
		body := foldStatement(n.Body)
		cond := foldExpr(n.Cond)
		if body == n.Body && cond == n.Cond {
			return n
		}
		nn := *n
		nn.Body, nn.Cond = body, cond
		return &nn
	case *ast.Switch:
		disc := foldExpr(n.Disc)
		changed := disc != n.Disc
		cases := make([]ast.SwitchCase, len(n.Cases))
		for i, c := range n.Cases {
			nc := c
			if c.Test != nil {
				ft := foldExpr(c.Test)
				if ft != c.Test {
					nc.Test = ft
					changed = true
				}
			}
			fb, bc := foldStatements(c.Body)
			if bc {
				nc.Body = fb
				changed = true
			}
			cases[i] = nc
		}
		if !changed {
			return n
		}
		nn := *n
		nn.Disc, nn.Cases = disc, cases
		return &nn
	case *ast.Try:
		block := foldStatement(n.Block).(*ast.Block)
		var catchBody *ast.Block
		if n.CatchBody != nil {
			catchBody = foldStatement(n.CatchBody).(*ast.Block)
		}
		var fin *ast.Block
		if n.Finally != nil {
			fin = foldStatement(n.Finally).(*ast.Block)
		}
		if block == n.Block && catchBody == n.CatchBody && fin == n.Finally {
			return n
		}
		nn := *n
		nn.Block, nn.CatchBody, nn.Finally = block, catchBody, fin
		return &nn
	case *ast.Throw:
		arg := foldExpr(n.Arg)
		if arg == n.Arg {
			return n
		}
		nn := *n
		nn.Arg = arg
		return &nn
	case *ast.Return:
		if n.Arg == nil {
			return n
		}
		arg := foldExpr(n.Arg)
		if arg == n.Arg {
			return n
		}
		nn := *n
		nn.Arg = arg
		return &nn
	case *ast.Labeled:
		body := foldStatement(n.Body)
		if body == n.Body {
			return n
		}
		nn := *n
		nn.Body = body
		return &nn
	case *ast.FunctionDeclaration:
		body := foldStatement(n.Body).(*ast.Block)
		if body == n.Body {
			return n
		}
		nn := *n
		nn.Body = body
		return &nn
	case *ast.ClassDeclaration:
		members, changed := foldClassMembers(n.Body)
		if !changed {
			return n
		}
		nn := *n
		nn.Body = members
		return &nn
	default:
		return s
	}
}

func foldClassMembers(members []ast.ClassMember) ([]ast.ClassMember, bool) {
	changed := false
	out := make([]ast.ClassMember, len(members))
	for i, m := range members {
		nm := m
		if m.Body != nil {
			fb := foldStatement(m.Body).(*ast.Block)
			if fb != m.Body {
				nm.Body = fb
				changed = true
			}
		}
		if m.Value != nil {
			fv := foldExpr(m.Value)
			if fv != m.Value {
				nm.Value = fv
				changed = true
			}
		}
		out[i] = nm
	}
	if !changed {
		return members, false
	}
	return out, true
}

// foldExpr folds e, returning e unchanged when nothing in its subtree
// could be folded.
func foldExpr(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case *ast.Unary:
		arg := foldExpr(n.Arg)
		if lit, ok := arg.(*ast.Literal); ok {
			if v, ok := foldUnary(n.Op, lit); ok {
				return v
			}
		}
		if arg == n.Arg {
			return n
		}
		nn := *n
		nn.Arg = arg
		return &nn
	case *ast.Binary:
		left, right := foldExpr(n.Left), foldExpr(n.Right)
		if ll, ok := left.(*ast.Literal); ok {
			if rl, ok := right.(*ast.Literal); ok {
				if v, ok := foldBinary(n.Op, ll, rl); ok {
					return v
				}
			}
		}
		if left == n.Left && right == n.Right {
			return n
		}
		nn := *n
		nn.Left, nn.Right = left, right
		return &nn
	case *ast.Logical:
		left, right := foldExpr(n.Left), foldExpr(n.Right)
		if ll, ok := left.(*ast.Literal); ok {
			if _, ok := right.(*ast.Literal); ok {
				nullish := ll.Kind == ast.LitNull || ll.Kind == ast.LitUndefined
				if (n.Op == "&&" && !truthyLiteral(ll)) || (n.Op == "||" && truthyLiteral(ll)) || (n.Op == "??" && !nullish) {
					return ll
				}
				if n.Op == "&&" || n.Op == "||" || n.Op == "??" {
					return right
				}
			}
		}
		if left == n.Left && right == n.Right {
			return n
		}
		nn := *n
		nn.Left, nn.Right = left, right
		return &nn
	case *ast.Conditional:
		cond, then, els := foldExpr(n.Cond), foldExpr(n.Then), foldExpr(n.Else)
		if cl, ok := cond.(*ast.Literal); ok {
			if truthyLiteral(cl) {
				return then
			}
			return els
		}
		if cond == n.Cond && then == n.Then && els == n.Else {
			return n
		}
		nn := *n
		nn.Cond, nn.Then, nn.Else = cond, then, els
		return &nn
	case *ast.Sequence:
		changed := false
		exprs := make([]ast.Expression, len(n.Exprs))
		for i, e := range n.Exprs {
			fe := foldExpr(e)
			if fe != e {
				changed = true
			}
			exprs[i] = fe
		}
		if !changed {
			return n
		}
		nn := *n
		nn.Exprs = exprs
		return &nn
	case *ast.Assignment:
		value := foldExpr(n.Value)
		if value == n.Value {
			return n
		}
		nn := *n
		nn.Value = value
		return &nn
	case *ast.Call:
		changed := false
		callee := foldExpr(n.Callee)
		if callee != n.Callee {
			changed = true
		}
		args := make([]ast.Expression, len(n.Args))
		for i, a := range n.Args {
			fa := foldExpr(a)
			if fa != a {
				changed = true
			}
			args[i] = fa
		}
		if !changed {
			return n
		}
		nn := *n
		nn.Callee, nn.Args = callee, args
		return &nn
	case *ast.Member:
		obj := foldExpr(n.Object)
		var prop ast.Expression = n.Property
		if n.Computed {
			prop = foldExpr(n.Property)
		}
		if obj == n.Object && prop == n.Property {
			return n
		}
		nn := *n
		nn.Object, nn.Property = obj, prop
		return &nn
	case *ast.ArrayExpr:
		changed := false
		elems := make([]ast.Expression, len(n.Elements))
		for i, e := range n.Elements {
			if e == nil {
				continue
			}
			fe := foldExpr(e)
			if fe != e {
				changed = true
			}
			elems[i] = fe
		}
		if !changed {
			return n
		}
		nn := *n
		nn.Elements = elems
		return &nn
	case *ast.Spread:
		arg := foldExpr(n.Arg)
		if arg == n.Arg {
			return n
		}
		nn := *n
		nn.Arg = arg
		return &nn
	case *ast.Await:
		arg := foldExpr(n.Arg)
		if arg == n.Arg {
			return n
		}
		nn := *n
		nn.Arg = arg
		return &nn
	case *ast.FunctionExpr:
		body := foldStatement(n.Body).(*ast.Block)
		if body == n.Body {
			return n
		}
		nn := *n
		nn.Body = body
		return &nn
	case *ast.Arrow:
		switch b := n.Body.(type) {
		case *ast.Block:
			fb := foldStatement(b).(*ast.Block)
			if fb == b {
				return n
			}
			nn := *n
			nn.Body = fb
			return &nn
		case ast.Expression:
			fb := foldExpr(b)
			if fb == b {
				return n
			}
			nn := *n
			nn.Body = fb
			return &nn
		}
		return n
	case *ast.ClassExpr:
		members, changed := foldClassMembers(n.Body)
		if !changed {
			return n
		}
		nn := *n
		nn.Body = members
		return &nn
	case *ast.ObjectExpr:
		changed := false
		props := make([]ast.ObjectProperty, len(n.Properties))
		for i, p := range n.Properties {
			np := p
			if p.Value != nil {
				fv := foldExpr(p.Value)
				if fv != p.Value {
					np.Value = fv
					changed = true
				}
			}
			props[i] = np
		}
		if !changed {
			return n
		}
		nn := *n
		nn.Properties = props
		return &nn
	default:
		// Literal, Identifier, This, Super, New, Update, Template,
		// TaggedTemplate, Yield, RegExp, Unknown: no
		// further constant structure to fold, or folding would risk
		// observable side effects (object/array identity, getters).
		return e
	}
}

func truthyLiteral(l *ast.Literal) bool {
	switch l.Kind {
	case ast.LitNull, ast.LitUndefined:
		return false
	case ast.LitBool:
		return l.Value.(bool)
	case ast.LitNumber:
		v := l.Value.(float64)
		return v != 0 && !math.IsNaN(v)
	case ast.LitString:
		return l.Value.(string) != ""
	case ast.LitBigInt:
		return l.Value.(string) != "0"
	default:
		return true
	}
}

// foldUnary folds `+x -x !x ~x` over a literal operand; `typeof`, `void`,
// and `delete` are left alone since they either have no constant form
// worth precomputing here or (delete) require an lvalue.
func foldUnary(op string, arg *ast.Literal) (*ast.Literal, bool) {
	switch op {
	case "-":
		if arg.Kind == ast.LitNumber {
			return numLit(arg, -arg.Value.(float64)), true
		}
	case "+":
		if arg.Kind == ast.LitNumber {
			return arg, true
		}
	case "!":
		return boolLit(arg, !truthyLiteral(arg)), true
	case "~":
		if arg.Kind == ast.LitNumber {
			return numLit(arg, float64(^toInt32(arg.Value.(float64)))), true
		}
	}
	return nil, false
}

// foldBinary folds deterministic arithmetic/comparison/string-concat
// operators over two literal operands. Operators that can invoke user code
// through coercion of non-primitive operands never reach here - both
// operands are already Literal - so only the primitive operator rules
// apply.
func foldBinary(op string, l, r *ast.Literal) (*ast.Literal, bool) {
	switch op {
	case "+":
		if l.Kind == ast.LitString || r.Kind == ast.LitString {
			return strLit(l, litToString(l)+litToString(r)), true
		}
		if l.Kind == ast.LitNumber && r.Kind == ast.LitNumber {
			return numLit(l, l.Value.(float64)+r.Value.(float64)), true
		}
		return nil, false
	case "-", "*", "/", "%", "**":
		if l.Kind != ast.LitNumber || r.Kind != ast.LitNumber {
			return nil, false
		}
		a, b := l.Value.(float64), r.Value.(float64)
		switch op {
		case "-":
			return numLit(l, a-b), true
		case "*":
			return numLit(l, a*b), true
		case "/":
			return numLit(l, a/b), true
		case "%":
			return numLit(l, math.Mod(a, b)), true
		case "**":
			return numLit(l, math.Pow(a, b)), true
		}
	case "&", "|", "^", "<<", ">>", ">>>":
		if l.Kind != ast.LitNumber || r.Kind != ast.LitNumber {
			return nil, false
		}
		a, b := toInt32(l.Value.(float64)), toInt32(r.Value.(float64))
		switch op {
		case "&":
			return numLit(l, float64(a&b)), true
		case "|":
			return numLit(l, float64(a|b)), true
		case "^":
			return numLit(l, float64(a^b)), true
		case "<<":
			return numLit(l, float64(a<<(uint32(b)&31))), true
		case ">>":
			return numLit(l, float64(a>>(uint32(b)&31))), true
		case ">>>":
			return numLit(l, float64(uint32(a)>>(uint32(b)&31))), true
		}
	case "<", ">", "<=", ">=":
		if l.Kind == ast.LitString && r.Kind == ast.LitString {
			a, b := l.Value.(string), r.Value.(string)
			return boolLit(l, strCompare(op, a, b)), true
		}
		if l.Kind != ast.LitNumber || r.Kind != ast.LitNumber {
			return nil, false
		}
		a, b := l.Value.(float64), r.Value.(float64)
		switch op {
		case "<":
			return boolLit(l, a < b), true
		case ">":
			return boolLit(l, a > b), true
		case "<=":
			return boolLit(l, a <= b), true
		case ">=":
			return boolLit(l, a >= b), true
		}
	case "===", "!==":
		eq := strictEqual(l, r)
		if op == "!==" {
			eq = !eq
		}
		return boolLit(l, eq), true
	case "==", "!=":
		eq := looseEqual(l, r)
		if op == "!=" {
			eq = !eq
		}
		return boolLit(l, eq), true
	}
	return nil, false
}

func strCompare(op, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	default:
		return a >= b
	}
}

// strictEqual implements `===` for literal operands only: no type
// coercion, and NaN is never equal to itself.
func strictEqual(l, r *ast.Literal) bool {
	if l.Kind != r.Kind {
		// LitNull and LitUndefined are different IR kinds but still never
		// === to anything but their own kind.
		return false
	}
	switch l.Kind {
	case ast.LitNull, ast.LitUndefined:
		return true
	case ast.LitNumber:
		a, b := l.Value.(float64), r.Value.(float64)
		return a == b
	case ast.LitString:
		return l.Value.(string) == r.Value.(string)
	case ast.LitBool:
		return l.Value.(bool) == r.Value.(bool)
	case ast.LitBigInt:
		return l.Value.(string) == r.Value.(string)
	}
	return false
}

// looseEqual implements a conservative subset of `==`'s coercion rules
// sufficient for literal folding: null/undefined are mutually loosely
// equal and equal only to each other; numbers and strings coerce to
// number; everything else falls back to strict equality.
func looseEqual(l, r *ast.Literal) bool {
	lNullish := l.Kind == ast.LitNull || l.Kind == ast.LitUndefined
	rNullish := r.Kind == ast.LitNull || r.Kind == ast.LitUndefined
	if lNullish || rNullish {
		return lNullish && rNullish
	}
	if l.Kind == r.Kind {
		return strictEqual(l, r)
	}
	if isNumeric(l) && isNumeric(r) {
		return toNumber(l) == toNumber(r)
	}
	return false
}

func isNumeric(l *ast.Literal) bool {
	return l.Kind == ast.LitNumber || l.Kind == ast.LitString || l.Kind == ast.LitBool
}

func toNumber(l *ast.Literal) float64 {
	switch l.Kind {
	case ast.LitNumber:
		return l.Value.(float64)
	case ast.LitBool:
		if l.Value.(bool) {
			return 1
		}
		return 0
	case ast.LitString:
		s := strings.TrimSpace(l.Value.(string))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func litToString(l *ast.Literal) string {
	switch l.Kind {
	case ast.LitString, ast.LitBigInt:
		return l.Value.(string)
	case ast.LitNumber:
		return formatNumber(l.Value.(float64))
	case ast.LitBool:
		if l.Value.(bool) {
			return "true"
		}
		return "false"
	case ast.LitNull:
		return "null"
	case ast.LitUndefined:
		return "undefined"
	default:
		return ""
	}
}

// formatNumber renders a float64 the way JS's Number::toString does for
// the common cases folding will actually see: integral values print
// without a decimal point, NaN/Infinity print as their JS literal spelling.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0" // both +0 and -0
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func numLit(like *ast.Literal, v float64) *ast.Literal {
	return &ast.Literal{NodeBase: like.NodeBase, Kind: ast.LitNumber, Value: v}
}

func strLit(like *ast.Literal, v string) *ast.Literal {
	return &ast.Literal{NodeBase: like.NodeBase, Kind: ast.LitString, Value: v}
}

func boolLit(like *ast.Literal, v bool) *ast.Literal {
	return &ast.Literal{NodeBase: like.NodeBase, Kind: ast.LitBool, Value: v}
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(f)))
}
