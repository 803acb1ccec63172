package traverse

import (
	"fmt"
	"reflect"

	"github.com/deepnoodle-ai/untangle/ast"
)

// Path is a node together with the slot it occupies in its parent. All tree
// mutations made by transforms go through a Path, so the parent always owns
// the node it points at.
type Path struct {
	node   ast.Node
	parent *Path
	key    string

	// Exactly one of list and set is used. Lists are statement bodies,
	// argument lists and the like; set writes a single-child field.
	list  list
	index int
	set   func(ast.Node)

	// stmt is true when the slot holds a statement.
	stmt     bool
	detached bool
}

// Node returns the node currently held by this path.
func (p *Path) Node() ast.Node { return p.node }

// Parent returns the path of the parent node, or nil at the root.
func (p *Path) Parent() *Path { return p.parent }

// ParentNode returns the parent node, or nil at the root.
func (p *Path) ParentNode() ast.Node {
	if p.parent == nil {
		return nil
	}
	return p.parent.node
}

// Key returns the name of the parent field holding this node.
func (p *Path) Key() string { return p.key }

// InList reports whether the node is an element of a list, such as a block
// body or an argument list.
func (p *Path) InList() bool { return p.list != nil }

// Index returns the position of the node within its list, or -1.
func (p *Path) Index() int {
	if p.list == nil {
		return -1
	}
	return p.index
}

// IsStatement reports whether the slot holds a statement.
func (p *Path) IsStatement() bool { return p.stmt }

// Replace puts n in this path's slot. It panics if n is nil or does not belong
// to the node family the slot accepts, for example a statement in an
// expression position.
func (p *Path) Replace(n ast.Node) {
	p.mustBeAttached("Replace")
	if ast.IsNil(n) {
		panic("traverse: Replace with nil node")
	}
	switch {
	case p.list != nil:
		p.list.set(p.index, n)
	case p.set != nil:
		p.set(n)
	default:
		panic("traverse: cannot replace the root")
	}
	p.node = n
}

// ReplaceWithMultiple replaces a statement with a list of statements. In a
// single-statement slot, such as the body of an if, the statements are
// wrapped in a block. The path is detached afterwards and the new statements
// are not visited by the current traversal.
func (p *Path) ReplaceWithMultiple(stmts []ast.Stmt) {
	p.mustBeAttached("ReplaceWithMultiple")
	p.mustBeStatement("ReplaceWithMultiple")
	if len(stmts) == 0 {
		p.Remove()
		return
	}
	if p.list != nil {
		p.list.splice(p.index, 1, stmts)
		p.index += len(stmts) - 1
	} else {
		p.set(&ast.Block{Body: stmts})
	}
	p.detached = true
}

// InsertBefore inserts statements immediately before this one. In a
// single-statement slot, the slot is replaced by a block holding the inserted
// statements followed by the current one, and the path moves into that block.
func (p *Path) InsertBefore(stmts ...ast.Stmt) {
	p.mustBeAttached("InsertBefore")
	p.mustBeStatement("InsertBefore")
	if len(stmts) == 0 {
		return
	}
	if p.list != nil {
		p.list.splice(p.index, 0, stmts)
		p.index += len(stmts)
		return
	}
	body := make([]ast.Stmt, 0, len(stmts)+1)
	body = append(body, stmts...)
	block := &ast.Block{Body: append(body, p.node.(ast.Stmt))}
	p.set(block)
	p.parent = &Path{
		node:   block,
		parent: p.parent,
		key:    p.key,
		set:    p.set,
		stmt:   true,
	}
	p.key = "Body"
	p.list = nodeList[ast.Stmt]{s: &block.Body}
	p.index = len(stmts)
	p.set = nil
}

// Remove deletes the node. Statements in a single-statement slot become an
// empty statement. Removing an expression that is not a list element panics.
func (p *Path) Remove() {
	p.mustBeAttached("Remove")
	switch {
	case p.list != nil:
		p.list.splice(p.index, 1, nil)
		p.index--
	case p.stmt:
		p.set(&ast.Empty{})
	default:
		panic(fmt.Sprintf("traverse: cannot remove %s from field %s", p.node.Kind(), p.key))
	}
	p.detached = true
}

func (p *Path) mustBeAttached(op string) {
	if p.detached {
		panic(fmt.Sprintf("traverse: %s on a removed or replaced path", op))
	}
}

func (p *Path) mustBeStatement(op string) {
	if !p.stmt {
		panic(fmt.Sprintf("traverse: %s requires a statement, found %s in field %s", op, p.node.Kind(), p.key))
	}
}

type list interface {
	set(i int, n ast.Node)
	splice(i, del int, stmts []ast.Stmt)
}

type nodeList[T ast.Node] struct {
	s *[]T
}

func (l nodeList[T]) set(i int, n ast.Node) {
	(*l.s)[i] = convert[T](n)
}

func (l nodeList[T]) splice(i, del int, stmts []ast.Stmt) {
	items := make([]T, 0, len(stmts))
	for _, s := range stmts {
		items = append(items, convert[T](s))
	}
	old := *l.s
	out := make([]T, 0, len(old)-del+len(items))
	out = append(out, old[:i]...)
	out = append(out, items...)
	out = append(out, old[i+del:]...)
	*l.s = out
}

func convert[T ast.Node](n ast.Node) T {
	v, ok := n.(T)
	if !ok {
		panic(fmt.Sprintf("traverse: %s does not fit a slot of type %s", n.Kind(), reflect.TypeFor[T]()))
	}
	return v
}

func slot[T ast.Node](dst *T) func(ast.Node) {
	return func(n ast.Node) { *dst = convert[T](n) }
}
