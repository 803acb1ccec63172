package ast

import (
	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/untangle/errz"
)

// Validate checks the structural invariants every pass relies on:
//
//   - template literals have exactly one more quasi than expressions
//   - sequence expressions are not empty
//   - required children are present and list slots hold no nil entries
//   - no node is reachable from two parents
//
// Violations are reported as errz invariant errors, all of them at once.
func Validate(root Node) error {
	v := &validator{seen: map[Node]bool{}}
	v.check(root)
	return v.errs.ErrorOrNil()
}

type validator struct {
	seen map[Node]bool
	errs *multierror.Error
}

func (v *validator) fail(format string, args ...any) {
	v.errs = multierror.Append(v.errs, errz.Newf(errz.ErrInvariant, format, args...))
}

func (v *validator) check(node Node) {
	if IsNil(node) {
		return
	}
	// Zero-size nodes may share an address, so identity says nothing about
	// ownership for them.
	switch node.(type) {
	case *Null, *This, *Empty:
	default:
		if v.seen[node] {
			v.fail("%s is shared between two parents", node.Kind())
			return
		}
		v.seen[node] = true
	}

	switch n := node.(type) {
	case *Program:
		v.noNilStmts(n.Kind(), n.Body)
	case *Block:
		v.noNilStmts(n.Kind(), n.Body)
	case *Case:
		v.noNilStmts(n.Kind(), n.Body)
	case *Template:
		if len(n.Quasis) != len(n.Exprs)+1 {
			v.fail("template literal has %d quasis for %d expressions", len(n.Quasis), len(n.Exprs))
		}
		v.noNilExprs(n.Kind(), n.Exprs)
	case *Sequence:
		if len(n.Exprs) == 0 {
			v.fail("empty sequence expression")
		}
		v.noNilExprs(n.Kind(), n.Exprs)
	case *Binary:
		v.required(n.Kind(), "operands", n.X, n.Y)
	case *Assign:
		v.required(n.Kind(), "target and value", n.Target, n.Value)
	case *Unary:
		v.required(n.Kind(), "operand", n.X)
	case *Conditional:
		v.required(n.Kind(), "branches", n.Test, n.Consequent, n.Alternate)
	case *Call:
		v.required(n.Kind(), "callee", n.Callee)
		v.noNilExprs(n.Kind(), n.Args)
	case *New:
		v.required(n.Kind(), "callee", n.Callee)
		v.noNilExprs(n.Kind(), n.Args)
	case *Member:
		v.required(n.Kind(), "object and property", n.Object, n.Property)
		if _, ok := n.Property.(*Ident); n.Property != nil && !n.Computed && !ok {
			v.fail("non-computed member property is %s, not an identifier", n.Property.Kind())
		}
	case *Func:
		v.required(n.Kind(), "body", n.Body)
	case *FuncDecl:
		v.required(n.Kind(), "name and body", n.Name, n.Body)
	case *ExprStmt:
		v.required(n.Kind(), "expression", n.X)
	case *If:
		v.required(n.Kind(), "test and consequent", n.Test, n.Consequent)
	case *For:
		v.required(n.Kind(), "body", n.Body)
	case *ForIn:
		v.required(n.Kind(), "left, right and body", n.Left, n.Right, n.Body)
	case *While:
		v.required(n.Kind(), "test and body", n.Test, n.Body)
	case *DoWhile:
		v.required(n.Kind(), "test and body", n.Test, n.Body)
	case *Switch:
		v.required(n.Kind(), "discriminant", n.Discriminant)
	case *Throw:
		v.required(n.Kind(), "argument", n.Argument)
	case *Try:
		v.required(n.Kind(), "block", n.Block)
		if n.Handler == nil && n.Finalizer == nil {
			v.fail("try statement without catch or finally")
		}
	case *Var:
		if len(n.Decls) == 0 {
			v.fail("variable declaration without declarators")
		}
	case *Declarator:
		v.required(n.Kind(), "target", n.Target)
	}

	for _, child := range Children(node) {
		v.check(child)
	}
}

func (v *validator) required(kind Kind, what string, children ...Node) {
	for _, c := range children {
		if IsNil(c) {
			v.fail("%s is missing its %s", kind, what)
			return
		}
	}
}

func (v *validator) noNilStmts(kind Kind, list []Stmt) {
	for _, s := range list {
		if s == nil {
			v.fail("%s holds a nil statement", kind)
			return
		}
	}
}

func (v *validator) noNilExprs(kind Kind, list []Expr) {
	for _, e := range list {
		if e == nil {
			v.fail("%s holds a nil expression", kind)
			return
		}
	}
}
