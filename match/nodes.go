package match

import (
	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/internal/token"
)

// Node is a matcher over syntax tree nodes.
type Node = Matcher[ast.Node]

// Kind matches any node of kind k.
func Kind(k ast.Kind) Node {
	return Func[ast.Node](func(n ast.Node) bool {
		return n != nil && n.Kind() == k
	})
}

// AnyExpression matches any expression node.
func AnyExpression() Node {
	return Func[ast.Node](func(n ast.Node) bool {
		_, ok := n.(ast.Expr)
		return ok
	})
}

// Identifier matches an identifier whose name satisfies name.
func Identifier(name Matcher[string]) Node {
	name = orAny(name)
	return Func[ast.Node](func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		return ok && id != nil && name.Match(id.Name)
	})
}

// Name matches the identifier with exactly the given name.
func Name(name string) Node {
	return Identifier(Equal(name))
}

// StringLiteral matches a string literal whose value satisfies value.
func StringLiteral(value Matcher[string]) Node {
	value = orAny(value)
	return Func[ast.Node](func(n ast.Node) bool {
		s, ok := n.(*ast.String)
		return ok && value.Match(s.Value)
	})
}

// AnyString matches any string literal.
func AnyString() Node {
	return StringLiteral(nil)
}

// NumericLiteral matches a numeric literal whose value satisfies value.
func NumericLiteral(value Matcher[float64]) Node {
	value = orAny(value)
	return Func[ast.Node](func(n ast.Node) bool {
		num, ok := n.(*ast.Number)
		return ok && value.Match(num.Value)
	})
}

// Literal matches string and numeric literals.
func Literal() Node {
	return Or(AnyString(), NumericLiteral(nil))
}

// TemplateLiteral matches any template literal.
func TemplateLiteral() Node {
	return Kind(ast.TemplateLiteral)
}

// Sequence matches a comma expression whose operands satisfy exprs.
func Sequence(exprs Matcher[[]ast.Expr]) Node {
	exprs = orAny(exprs)
	return Func[ast.Node](func(n ast.Node) bool {
		seq, ok := n.(*ast.Sequence)
		return ok && exprs.Match(seq.Exprs)
	})
}

// Binary matches a binary expression.
func Binary(op Matcher[token.Type], x, y Node) Node {
	op, x, y = orAny(op), orAny(x), orAny(y)
	return Func[ast.Node](func(n ast.Node) bool {
		b, ok := n.(*ast.Binary)
		return ok && op.Match(b.Op) && x.Match(b.X) && y.Match(b.Y)
	})
}

// Assignment matches an assignment expression.
func Assignment(op Matcher[token.Type], target, value Node) Node {
	op, target, value = orAny(op), orAny(target), orAny(value)
	return Func[ast.Node](func(n ast.Node) bool {
		a, ok := n.(*ast.Assign)
		return ok && op.Match(a.Op) && target.Match(a.Target) && value.Match(a.Value)
	})
}

// Call matches a call expression whose callee and argument list satisfy the
// given matchers.
func Call(callee Node, args Matcher[[]ast.Expr]) Node {
	callee, args = orAny(callee), orAny(args)
	return Func[ast.Node](func(n ast.Node) bool {
		c, ok := n.(*ast.Call)
		return ok && callee.Match(c.Callee) && args.Match(c.Args)
	})
}

// Member matches a property access.
func Member(object, property Node, computed Matcher[bool]) Node {
	object, property, computed = orAny(object), orAny(property), orAny(computed)
	return Func[ast.Node](func(n ast.Node) bool {
		m, ok := n.(*ast.Member)
		return ok && object.Match(m.Object) && property.Match(m.Property) && computed.Match(m.Computed)
	})
}

// ConstMember matches a property access with a statically known name, either
// object.name or object["name"].
func ConstMember(object Node, name string) Node {
	object = orAny(object)
	return Func[ast.Node](func(n ast.Node) bool {
		m, ok := n.(*ast.Member)
		if !ok || !object.Match(m.Object) {
			return false
		}
		prop, ok := m.PropertyName()
		return ok && prop == name
	})
}

// Each matches an expression list in which every element satisfies m. An
// empty list matches.
func Each(m Node) Matcher[[]ast.Expr] {
	m = orAny(m)
	return Func[[]ast.Expr](func(list []ast.Expr) bool {
		for _, e := range list {
			if !m.Match(e) {
				return false
			}
		}
		return true
	})
}

// Exprs matches an expression list element by element; the list must have
// exactly len(ms) elements.
func Exprs(ms ...Node) Matcher[[]ast.Expr] {
	return Func[[]ast.Expr](func(list []ast.Expr) bool {
		if len(list) != len(ms) {
			return false
		}
		for i, m := range ms {
			if !orAny(m).Match(list[i]) {
				return false
			}
		}
		return true
	})
}
