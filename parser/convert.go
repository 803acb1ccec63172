package parser

import (
	ottoast "github.com/robertkrimen/otto/ast"
	ottotoken "github.com/robertkrimen/otto/token"

	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/internal/token"
)

func (p *Parser) stmts(list []ottoast.Statement) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(list))
	for _, s := range list {
		out = append(out, p.stmt(s))
	}
	return out
}

func (p *Parser) stmt(s ottoast.Statement) ast.Stmt {
	p.enter()
	defer p.leave()

	switch s := s.(type) {
	case *ottoast.ExpressionStatement:
		return &ast.ExprStmt{X: p.expr(s.Expression)}
	case *ottoast.BlockStatement:
		return p.block(s)
	case *ottoast.EmptyStatement:
		return &ast.Empty{}
	case *ottoast.IfStatement:
		return &ast.If{
			Test:       p.expr(s.Test),
			Consequent: p.stmt(s.Consequent),
			Alternate:  p.optStmt(s.Alternate),
		}
	case *ottoast.ForStatement:
		return &ast.For{
			Init:   p.forInit(s.Initializer),
			Test:   p.optExpr(s.Test),
			Update: p.optExpr(s.Update),
			Body:   p.stmt(s.Body),
		}
	case *ottoast.ForInStatement:
		return &ast.ForIn{
			Left:  p.forInLeft(s.Into),
			Right: p.expr(s.Source),
			Body:  p.stmt(s.Body),
		}
	case *ottoast.WhileStatement:
		return &ast.While{Test: p.expr(s.Test), Body: p.stmt(s.Body)}
	case *ottoast.DoWhileStatement:
		return &ast.DoWhile{Body: p.stmt(s.Body), Test: p.expr(s.Test)}
	case *ottoast.SwitchStatement:
		out := &ast.Switch{Discriminant: p.expr(s.Discriminant)}
		for _, c := range s.Body {
			out.Cases = append(out.Cases, &ast.Case{
				Test: p.optExpr(c.Test),
				Body: p.stmts(c.Consequent),
			})
		}
		return out
	case *ottoast.ThrowStatement:
		return &ast.Throw{Argument: p.expr(s.Argument)}
	case *ottoast.TryStatement:
		out := &ast.Try{Block: p.blockOf(s.Body)}
		if s.Catch != nil {
			if s.Catch.Parameter != nil {
				out.Param = ast.NewIdent(s.Catch.Parameter.Name)
			}
			out.Handler = p.blockOf(s.Catch.Body)
		}
		if s.Finally != nil {
			out.Finalizer = p.blockOf(s.Finally)
		}
		return out
	case *ottoast.ReturnStatement:
		return &ast.Return{Argument: p.optExpr(s.Argument)}
	case *ottoast.BranchStatement:
		var label *ast.Ident
		if s.Label != nil {
			label = ast.NewIdent(s.Label.Name)
		}
		if s.Token == ottotoken.CONTINUE {
			return &ast.Continue{Label: label}
		}
		return &ast.Break{Label: label}
	case *ottoast.VariableStatement:
		return p.varDecl(s.List)
	case *ottoast.FunctionStatement:
		fn := p.function(s.Function)
		return &ast.FuncDecl{Name: fn.Name, Params: fn.Params, Body: fn.Body}
	case *ottoast.LabelledStatement:
		p.fail("unsupported labelled statement at offset %d", position(s))
	case *ottoast.WithStatement:
		p.fail("unsupported with statement at offset %d", position(s))
	case *ottoast.DebuggerStatement:
		p.fail("unsupported debugger statement at offset %d", position(s))
	case nil:
		p.fail("missing statement")
	default:
		p.fail("unsupported statement %T at offset %d", s, position(s))
	}
	return nil
}

func (p *Parser) optStmt(s ottoast.Statement) ast.Stmt {
	if s == nil {
		return nil
	}
	return p.stmt(s)
}

func (p *Parser) block(s *ottoast.BlockStatement) *ast.Block {
	return &ast.Block{Body: p.stmts(s.List)}
}

// blockOf converts statements that the grammar requires to be blocks, such
// as function and try bodies.
func (p *Parser) blockOf(s ottoast.Statement) *ast.Block {
	switch s := s.(type) {
	case *ottoast.BlockStatement:
		return p.block(s)
	case nil:
		return &ast.Block{}
	default:
		return &ast.Block{Body: []ast.Stmt{p.stmt(s)}}
	}
}

func (p *Parser) varDecl(list []ottoast.Expression) *ast.Var {
	out := &ast.Var{Keyword: "var"}
	for _, item := range list {
		v, ok := item.(*ottoast.VariableExpression)
		if !ok {
			p.fail("unexpected %T in variable declaration", item)
		}
		out.Decls = append(out.Decls, &ast.Declarator{
			Target: ast.NewIdent(v.Name),
			Init:   p.optExpr(v.Initializer),
		})
	}
	return out
}

// forInit converts the initializer of a for statement. otto wraps it in a
// sequence expression that is empty when there is no initializer and holds
// variable expressions for a var declaration.
func (p *Parser) forInit(init ottoast.Expression) ast.Node {
	seq, ok := init.(*ottoast.SequenceExpression)
	if !ok {
		return p.optExpr(init)
	}
	if len(seq.Sequence) == 0 {
		return nil
	}
	if _, isVar := seq.Sequence[0].(*ottoast.VariableExpression); isVar {
		return p.varDecl(seq.Sequence)
	}
	if len(seq.Sequence) == 1 {
		return p.expr(seq.Sequence[0])
	}
	return p.expr(seq)
}

func (p *Parser) forInLeft(into ottoast.Expression) ast.Node {
	if v, ok := into.(*ottoast.VariableExpression); ok {
		return p.varDecl([]ottoast.Expression{v})
	}
	return p.expr(into)
}

func (p *Parser) optExpr(e ottoast.Expression) ast.Expr {
	if e == nil {
		return nil
	}
	if _, ok := e.(*ottoast.EmptyExpression); ok {
		return nil
	}
	return p.expr(e)
}

func (p *Parser) exprs(list []ottoast.Expression) []ast.Expr {
	out := make([]ast.Expr, 0, len(list))
	for _, e := range list {
		out = append(out, p.expr(e))
	}
	return out
}

func (p *Parser) expr(e ottoast.Expression) ast.Expr {
	p.enter()
	defer p.leave()

	switch e := e.(type) {
	case *ottoast.StringLiteral:
		return &ast.String{Value: e.Value}
	case *ottoast.NumberLiteral:
		return number(e)
	case *ottoast.BooleanLiteral:
		return &ast.Bool{Value: e.Value}
	case *ottoast.NullLiteral:
		return &ast.Null{}
	case *ottoast.RegExpLiteral:
		// The tree has no regular expression node; the constructor call
		// builds an equivalent object.
		args := []ast.Expr{&ast.String{Value: e.Pattern}}
		if e.Flags != "" {
			args = append(args, &ast.String{Value: e.Flags})
		}
		return &ast.New{Callee: ast.NewIdent("RegExp"), Args: args}
	case *ottoast.Identifier:
		return ast.NewIdent(e.Name)
	case *ottoast.ThisExpression:
		return &ast.This{}
	case *ottoast.SequenceExpression:
		if len(e.Sequence) == 0 {
			p.fail("empty sequence expression at offset %d", position(e))
		}
		return &ast.Sequence{Exprs: p.exprs(e.Sequence)}
	case *ottoast.BinaryExpression:
		return &ast.Binary{
			Op: token.Type(e.Operator.String()),
			X:  p.expr(e.Left),
			Y:  p.expr(e.Right),
		}
	case *ottoast.AssignExpression:
		return &ast.Assign{
			Op:     assignOp(e.Operator),
			Target: p.expr(e.Left),
			Value:  p.expr(e.Right),
		}
	case *ottoast.UnaryExpression:
		return &ast.Unary{
			Op:      token.Type(e.Operator.String()),
			X:       p.expr(e.Operand),
			Postfix: e.Postfix,
		}
	case *ottoast.ConditionalExpression:
		return &ast.Conditional{
			Test:       p.expr(e.Test),
			Consequent: p.expr(e.Consequent),
			Alternate:  p.expr(e.Alternate),
		}
	case *ottoast.CallExpression:
		return &ast.Call{Callee: p.expr(e.Callee), Args: p.exprs(e.ArgumentList)}
	case *ottoast.NewExpression:
		return &ast.New{Callee: p.expr(e.Callee), Args: p.exprs(e.ArgumentList)}
	case *ottoast.DotExpression:
		return &ast.Member{
			Object:   p.expr(e.Left),
			Property: ast.NewIdent(e.Identifier.Name),
		}
	case *ottoast.BracketExpression:
		return &ast.Member{
			Object:   p.expr(e.Left),
			Property: p.expr(e.Member),
			Computed: true,
		}
	case *ottoast.FunctionLiteral:
		return p.function(e)
	case *ottoast.ArrayLiteral:
		out := &ast.Array{Elements: make([]ast.Expr, 0, len(e.Value))}
		for _, el := range e.Value {
			out.Elements = append(out.Elements, p.optExpr(el))
		}
		return out
	case *ottoast.ObjectLiteral:
		out := &ast.Object{}
		for _, prop := range e.Value {
			if prop.Kind != "" && prop.Kind != "init" && prop.Kind != "value" {
				p.fail("unsupported %s accessor for property %q", prop.Kind, prop.Key)
			}
			out.Props = append(out.Props, &ast.Property{Key: prop.Key, Value: p.expr(prop.Value)})
		}
		return out
	case *ottoast.VariableExpression:
		p.fail("unexpected variable declaration at offset %d", position(e))
	case nil:
		p.fail("missing expression")
	default:
		p.fail("unsupported expression %T at offset %d", e, position(e))
	}
	return nil
}

func (p *Parser) function(fn *ottoast.FunctionLiteral) *ast.Func {
	out := &ast.Func{Body: p.blockOf(fn.Body)}
	if fn.Name != nil {
		out.Name = ast.NewIdent(fn.Name.Name)
	}
	if fn.ParameterList != nil {
		for _, param := range fn.ParameterList.List {
			out.Params = append(out.Params, ast.NewIdent(param.Name))
		}
	}
	return out
}

func number(e *ottoast.NumberLiteral) *ast.Number {
	out := &ast.Number{Raw: e.Literal}
	switch v := e.Value.(type) {
	case int64:
		out.Value = float64(v)
	case float64:
		out.Value = v
	}
	return out
}

// assignOp maps otto's assignment operator, which for compound assignment is
// the underlying binary operator, to the spelled-out assignment operator.
func assignOp(op ottotoken.Token) token.Type {
	if op == ottotoken.ASSIGN {
		return token.ASSIGN
	}
	return token.Type(op.String() + "=")
}
