// Package traverse drives mutating, visitor-based passes over a syntax tree.
//
// A Visitor maps node kinds to enter and exit handlers. Traverse walks the
// tree in document order, calling enter before a node's children and exit
// after them. Handlers rewrite the tree only through the Path they are given
// and count their rewrites on the shared State.
package traverse

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/untangle/ast"
)

// Handler is called for a node of a kind the visitor subscribes to.
type Handler func(p *Path, s *State)

// Hooks holds the handlers for one node kind. Either may be nil.
type Hooks struct {
	Enter Handler
	Exit  Handler
}

// Visitor maps node kinds to their hooks.
type Visitor map[ast.Kind]Hooks

// State is shared by all handlers of one traversal.
type State struct {
	// Changes counts the rewrites made so far. Handlers increment it once
	// for each effective mutation.
	Changes int

	ctx context.Context
	log zerolog.Logger
}

// NewState returns a state bound to ctx and log.
func NewState(ctx context.Context, log zerolog.Logger) *State {
	return &State{ctx: ctx, log: log}
}

// Context returns the context of the traversal.
func (s *State) Context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// Logger returns the logger of the traversal.
func (s *State) Logger() *zerolog.Logger { return &s.log }

// Traverse walks root with v and returns the number of changes the handlers
// reported.
//
// If an enter handler replaces its node, the replacement is not dispatched to
// any enter handler during this traversal, but its children are walked and
// the exit handler for the replacement's kind runs. Statements inserted before
// the current one, and statements that replace it, are not visited until the
// next traversal.
func Traverse(ctx context.Context, root ast.Node, v Visitor, log zerolog.Logger) int {
	s := NewState(ctx, log)
	Run(root, v, s)
	return s.Changes
}

// Run is like Traverse but accumulates into an existing state.
func Run(root ast.Node, v Visitor, s *State) {
	if ast.IsNil(root) || len(v) == 0 {
		return
	}
	t := &traverser{visitor: v, state: s}
	t.visit(&Path{node: root, index: -1})
}

type traverser struct {
	visitor Visitor
	state   *State
}

func (t *traverser) visit(p *Path) {
	if hooks := t.visitor[p.node.Kind()]; hooks.Enter != nil {
		hooks.Enter(p, t.state)
		if p.detached {
			return
		}
	}
	t.children(p)
	if p.detached {
		return
	}
	if hooks := t.visitor[p.node.Kind()]; hooks.Exit != nil {
		hooks.Exit(p, t.state)
	}
}

// field visits the single-child field dst of parent.
func field[T ast.Node](t *traverser, parent *Path, key string, dst *T, stmt bool) {
	if ast.IsNil(*dst) {
		return
	}
	t.visit(&Path{
		node:   *dst,
		parent: parent,
		key:    key,
		index:  -1,
		set:    slot(dst),
		stmt:   stmt,
	})
}

// elements visits each element of the list dst. The loop index follows the
// path so that insertions and removals made by handlers are skipped over.
func elements[T ast.Node](t *traverser, parent *Path, key string, dst *[]T, stmt bool) {
	for i := 0; i < len(*dst); i++ {
		n := (*dst)[i]
		if ast.IsNil(n) {
			continue
		}
		p := &Path{
			node:   n,
			parent: parent,
			key:    key,
			list:   nodeList[T]{s: dst},
			index:  i,
			stmt:   stmt,
		}
		t.visit(p)
		i = p.index
	}
}

func (t *traverser) children(p *Path) {
	switch n := p.node.(type) {
	case *ast.Program:
		elements(t, p, "Body", &n.Body, true)
	case *ast.Template:
		elements(t, p, "Exprs", &n.Exprs, false)
	case *ast.Sequence:
		elements(t, p, "Exprs", &n.Exprs, false)
	case *ast.Binary:
		field(t, p, "X", &n.X, false)
		field(t, p, "Y", &n.Y, false)
	case *ast.Assign:
		field(t, p, "Target", &n.Target, false)
		field(t, p, "Value", &n.Value, false)
	case *ast.Unary:
		field(t, p, "X", &n.X, false)
	case *ast.Conditional:
		field(t, p, "Test", &n.Test, false)
		field(t, p, "Consequent", &n.Consequent, false)
		field(t, p, "Alternate", &n.Alternate, false)
	case *ast.Call:
		field(t, p, "Callee", &n.Callee, false)
		elements(t, p, "Args", &n.Args, false)
	case *ast.New:
		field(t, p, "Callee", &n.Callee, false)
		elements(t, p, "Args", &n.Args, false)
	case *ast.Member:
		field(t, p, "Object", &n.Object, false)
		field(t, p, "Property", &n.Property, false)
	case *ast.Func:
		field(t, p, "Name", &n.Name, false)
		elements(t, p, "Params", &n.Params, false)
		field(t, p, "Body", &n.Body, false)
	case *ast.Array:
		elements(t, p, "Elements", &n.Elements, false)
	case *ast.Object:
		for _, prop := range n.Props {
			field(t, p, "Props", &prop.Value, false)
		}
	case *ast.ExprStmt:
		field(t, p, "X", &n.X, false)
	case *ast.Block:
		elements(t, p, "Body", &n.Body, true)
	case *ast.If:
		field(t, p, "Test", &n.Test, false)
		field(t, p, "Consequent", &n.Consequent, true)
		field(t, p, "Alternate", &n.Alternate, true)
	case *ast.For:
		field(t, p, "Init", &n.Init, false)
		field(t, p, "Test", &n.Test, false)
		field(t, p, "Update", &n.Update, false)
		field(t, p, "Body", &n.Body, true)
	case *ast.ForIn:
		field(t, p, "Left", &n.Left, false)
		field(t, p, "Right", &n.Right, false)
		field(t, p, "Body", &n.Body, true)
	case *ast.While:
		field(t, p, "Test", &n.Test, false)
		field(t, p, "Body", &n.Body, true)
	case *ast.DoWhile:
		field(t, p, "Body", &n.Body, true)
		field(t, p, "Test", &n.Test, false)
	case *ast.Switch:
		field(t, p, "Discriminant", &n.Discriminant, false)
		elements(t, p, "Cases", &n.Cases, false)
	case *ast.Case:
		field(t, p, "Test", &n.Test, false)
		elements(t, p, "Body", &n.Body, true)
	case *ast.Throw:
		field(t, p, "Argument", &n.Argument, false)
	case *ast.Try:
		field(t, p, "Block", &n.Block, false)
		field(t, p, "Param", &n.Param, false)
		field(t, p, "Handler", &n.Handler, false)
		field(t, p, "Finalizer", &n.Finalizer, false)
	case *ast.Return:
		field(t, p, "Argument", &n.Argument, false)
	case *ast.Break:
		field(t, p, "Label", &n.Label, false)
	case *ast.Continue:
		field(t, p, "Label", &n.Label, false)
	case *ast.Var:
		elements(t, p, "Decls", &n.Decls, false)
	case *ast.Declarator:
		field(t, p, "Target", &n.Target, false)
		field(t, p, "Init", &n.Init, false)
	case *ast.FuncDecl:
		field(t, p, "Name", &n.Name, false)
		elements(t, p, "Params", &n.Params, false)
		field(t, p, "Body", &n.Body, false)
	}
}
