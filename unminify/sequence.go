package unminify

import (
	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/internal/token"
	"github.com/deepnoodle-ai/untangle/match"
	"github.com/deepnoodle-ai/untangle/transform"
	"github.com/deepnoodle-ai/untangle/traverse"
)

// Sequence splits comma expressions into separate statements wherever the
// surrounding statement can express the same evaluation order:
//
//	if (a) b(), c();      =>  if (a) { b(); c(); }
//	return a(), b();      =>  a(); return b();
//	for (; t; a(), i++);  =>  for (; t; i++) { a(); }
//
// Plain assignments whose value is a sequence are rewritten in place so that
// the sequence leads, "a = (b(), c())" becoming "(b(), a = c())", which the
// enclosing statement then splits. Compound and logical assignments, and
// member targets whose evaluation could observe the hoisted operands, are
// left unchanged.
func Sequence() *transform.Transform {
	return &transform.Transform{
		Name:    "sequence",
		Tags:    []transform.Tag{transform.Safe},
		Visitor: sequenceVisitor,
	}
}

func sequenceVisitor(any) traverse.Visitor {
	// Targets that can be evaluated after the hoisted operands without a
	// visible difference: identifiers, and properties of identifiers or
	// this with a static or literal key.
	object := match.Or(match.Identifier(nil), match.Kind(ast.ThisExpression))
	target := match.Or(
		match.Identifier(nil),
		match.Member(object, nil, match.Equal(false)),
		match.Member(object, match.Literal(), match.Equal(true)),
	)
	hoistable := match.Assignment(match.Equal(token.ASSIGN), target, match.Sequence(nil))

	return traverse.Visitor{
		ast.ExpressionStatement: {Exit: func(p *traverse.Path, s *traverse.State) {
			stmt := p.Node().(*ast.ExprStmt)
			seq, ok := stmt.X.(*ast.Sequence)
			if !ok {
				return
			}
			p.ReplaceWithMultiple(exprStmts(seq.Exprs))
			s.Changes++
		}},
		ast.ReturnStatement: {Exit: func(p *traverse.Path, s *traverse.State) {
			stmt := p.Node().(*ast.Return)
			if hoistLeading(p, &stmt.Argument) {
				s.Changes++
			}
		}},
		ast.ThrowStatement: {Exit: func(p *traverse.Path, s *traverse.State) {
			stmt := p.Node().(*ast.Throw)
			if hoistLeading(p, &stmt.Argument) {
				s.Changes++
			}
		}},
		ast.IfStatement: {Exit: func(p *traverse.Path, s *traverse.State) {
			stmt := p.Node().(*ast.If)
			if hoistLeading(p, &stmt.Test) {
				s.Changes++
			}
		}},
		ast.WhileStatement: {Exit: func(p *traverse.Path, s *traverse.State) {
			stmt := p.Node().(*ast.While)
			if hoistLeading(p, &stmt.Test) {
				s.Changes++
			}
		}},
		ast.SwitchStatement: {Exit: func(p *traverse.Path, s *traverse.State) {
			stmt := p.Node().(*ast.Switch)
			if hoistLeading(p, &stmt.Discriminant) {
				s.Changes++
			}
		}},
		ast.ForInStatement: {Exit: func(p *traverse.Path, s *traverse.State) {
			stmt := p.Node().(*ast.ForIn)
			if hoistLeading(p, &stmt.Right) {
				s.Changes++
			}
		}},
		ast.ForStatement: {Exit: func(p *traverse.Path, s *traverse.State) {
			stmt := p.Node().(*ast.For)
			if hoistForInit(p, stmt) {
				s.Changes++
			}
			if moveForUpdate(stmt) {
				s.Changes++
			}
		}},
		ast.VariableDeclaration: {Exit: func(p *traverse.Path, s *traverse.State) {
			// A declaration in a for initializer is handled by the loop.
			if !p.IsStatement() {
				return
			}
			decl := p.Node().(*ast.Var)
			if len(decl.Decls) > 0 && hoistLeading(p, &decl.Decls[0].Init) {
				s.Changes++
			}
		}},
		ast.AssignmentExpression: {Exit: func(p *traverse.Path, s *traverse.State) {
			if !hoistable.Match(p.Node()) {
				return
			}
			assign := p.Node().(*ast.Assign)
			leading, last := splitLast(assign.Value.(*ast.Sequence))
			assign.Value = last
			p.Replace(&ast.Sequence{Exprs: append(leading, assign)})
			// The enclosing statement splits the new sequence on its exit
			// and counts that as the change.
			if !splitByStatement(p) {
				s.Changes++
			}
		}},
	}
}

// hoistLeading moves all but the last operand of the sequence in *slot to
// statements before p, leaving the last operand in the slot.
func hoistLeading(p *traverse.Path, slot *ast.Expr) bool {
	seq, ok := (*slot).(*ast.Sequence)
	if !ok {
		return false
	}
	leading, last := splitLast(seq)
	p.InsertBefore(exprStmts(leading)...)
	*slot = last
	return true
}

// hoistForInit moves a sequence initializer in front of the loop, or the
// leading operands of the first declarator's initializer.
func hoistForInit(p *traverse.Path, loop *ast.For) bool {
	switch init := loop.Init.(type) {
	case *ast.Sequence:
		p.InsertBefore(exprStmts(init.Exprs)...)
		loop.Init = nil
		return true
	case *ast.Var:
		if len(init.Decls) == 0 {
			return false
		}
		return hoistLeading(p, &init.Decls[0].Init)
	}
	return false
}

// moveForUpdate keeps the last operand of a sequence update and appends the
// rest to the end of the body. A continue statement in the body would skip
// the moved operands, so such loops are left alone.
func moveForUpdate(loop *ast.For) bool {
	seq, ok := loop.Update.(*ast.Sequence)
	if !ok || continuesLoop(loop.Body) {
		return false
	}
	leading, last := splitLast(seq)
	moved := exprStmts(leading)
	switch body := loop.Body.(type) {
	case *ast.Block:
		body.Body = append(body.Body, moved...)
	case *ast.Empty:
		loop.Body = &ast.Block{Body: moved}
	default:
		loop.Body = &ast.Block{Body: append([]ast.Stmt{body}, moved...)}
	}
	loop.Update = last
	return true
}

// continuesLoop reports whether body contains a continue statement that
// targets the enclosing loop. Any labelled continue counts, since labels are
// not resolved.
func continuesLoop(body ast.Stmt) bool {
	found := false
	var visit func(n ast.Node, nested bool) bool
	visit = func(n ast.Node, nested bool) bool {
		switch n := n.(type) {
		case *ast.Continue:
			if !nested || n.Label != nil {
				found = true
			}
			return false
		case *ast.Func, *ast.FuncDecl:
			return false
		case *ast.For, *ast.ForIn, *ast.While, *ast.DoWhile:
			for _, child := range ast.Children(n) {
				ast.Inspect(child, func(c ast.Node) bool { return visit(c, true) })
			}
			return false
		}
		return !found
	}
	ast.Inspect(body, func(n ast.Node) bool { return visit(n, false) })
	return found
}

// splitByStatement reports whether the expression at p sits in a slot whose
// statement handler above hoists a sequence found there.
func splitByStatement(p *traverse.Path) bool {
	switch parent := p.ParentNode().(type) {
	case *ast.ExprStmt:
		return true
	case *ast.Return, *ast.Throw:
		return p.Key() == "Argument"
	case *ast.If, *ast.While:
		return p.Key() == "Test"
	case *ast.Switch:
		return p.Key() == "Discriminant"
	case *ast.ForIn:
		return p.Key() == "Right"
	case *ast.For:
		switch p.Key() {
		case "Init":
			return true
		case "Update":
			return !continuesLoop(parent.Body)
		}
	case *ast.Declarator:
		decl := p.Parent()
		if p.Key() != "Init" || decl.Index() != 0 || decl.Parent() == nil {
			return false
		}
		v := decl.Parent()
		return v.IsStatement() || v.Key() == "Init"
	}
	return false
}

func splitLast(seq *ast.Sequence) ([]ast.Expr, ast.Expr) {
	n := len(seq.Exprs)
	leading := make([]ast.Expr, n-1, n)
	copy(leading, seq.Exprs[:n-1])
	return leading, seq.Exprs[n-1]
}

func exprStmts(exprs []ast.Expr) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, &ast.ExprStmt{X: e})
	}
	return out
}
