package ast

// Visitor defines the interface for read-only traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor is
// used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a tree in depth-first document order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
//
// Walk must not be used to mutate the tree; traverse.Traverse is the mutating
// counterpart.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range Children(node) {
		Walk(v, child)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses a tree in depth-first order, calling f for each node.
// If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Children returns the non-nil direct children of node in document order.
func Children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		if !IsNil(n) {
			out = append(out, n)
		}
	}
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Body {
			add(s)
		}
	case *Template:
		for _, e := range n.Exprs {
			add(e)
		}
	case *Sequence:
		for _, e := range n.Exprs {
			add(e)
		}
	case *Binary:
		add(n.X)
		add(n.Y)
	case *Assign:
		add(n.Target)
		add(n.Value)
	case *Unary:
		add(n.X)
	case *Conditional:
		add(n.Test)
		add(n.Consequent)
		add(n.Alternate)
	case *Call:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *New:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *Member:
		add(n.Object)
		add(n.Property)
	case *Func:
		add(n.Name)
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *Array:
		for _, e := range n.Elements {
			add(e)
		}
	case *Object:
		for _, p := range n.Props {
			add(p.Value)
		}
	case *ExprStmt:
		add(n.X)
	case *Block:
		for _, s := range n.Body {
			add(s)
		}
	case *If:
		add(n.Test)
		add(n.Consequent)
		add(n.Alternate)
	case *For:
		add(n.Init)
		add(n.Test)
		add(n.Update)
		add(n.Body)
	case *ForIn:
		add(n.Left)
		add(n.Right)
		add(n.Body)
	case *While:
		add(n.Test)
		add(n.Body)
	case *DoWhile:
		add(n.Body)
		add(n.Test)
	case *Switch:
		add(n.Discriminant)
		for _, c := range n.Cases {
			add(c)
		}
	case *Case:
		add(n.Test)
		for _, s := range n.Body {
			add(s)
		}
	case *Throw:
		add(n.Argument)
	case *Try:
		add(n.Block)
		add(n.Param)
		add(n.Handler)
		add(n.Finalizer)
	case *Return:
		add(n.Argument)
	case *Break:
		add(n.Label)
	case *Continue:
		add(n.Label)
	case *Var:
		for _, d := range n.Decls {
			add(d)
		}
	case *Declarator:
		add(n.Target)
		add(n.Init)
	case *FuncDecl:
		add(n.Name)
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	}
	return out
}

// IsNil reports whether n is nil or a typed nil pointer stored in the
// interface, which is how optional fields such as *Ident are left empty.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Ident:
		return v == nil
	case *Block:
		return v == nil
	case *Var:
		return v == nil
	case *Case:
		return v == nil
	case *Declarator:
		return v == nil
	}
	return false
}
