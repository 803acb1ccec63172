package ast

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/deepnoodle-ai/untangle/internal/token"
)

const indentUnit = "  "

// Format renders node as JavaScript source. Blocks are indented with two
// spaces and expressions are parenthesized only where precedence requires it.
func Format(node Node) string {
	p := &printer{}
	p.node(node)
	return p.out.String()
}

type printer struct {
	out    strings.Builder
	indent int
}

func (p *printer) write(s string) { p.out.WriteString(s) }

func (p *printer) newline() {
	p.out.WriteByte('\n')
	p.out.WriteString(strings.Repeat(indentUnit, p.indent))
}

func (p *printer) node(node Node) {
	switch n := node.(type) {
	case *Program:
		for i, s := range n.Body {
			if i > 0 {
				p.newline()
			}
			p.stmt(s)
		}
	case *Case:
		p.switchCase(n)
	case *Declarator:
		p.declarator(n)
	case Stmt:
		p.stmt(n)
	case Expr:
		p.expr(n, token.LOWEST)
	}
}

func (p *printer) stmt(s Stmt) {
	switch n := s.(type) {
	case *ExprStmt:
		if startsAmbiguously(n.X) {
			p.write("(")
			p.expr(n.X, token.LOWEST)
			p.write(")")
		} else {
			p.expr(n.X, token.LOWEST)
		}
		p.write(";")
	case *Block:
		p.block(n)
	case *Empty:
		p.write(";")
	case *If:
		p.write("if (")
		p.expr(n.Test, token.LOWEST)
		p.write(")")
		p.body(n.Consequent)
		if n.Alternate != nil {
			p.write(" else")
			if _, ok := n.Alternate.(*Empty); ok {
				p.write(";")
			} else {
				p.write(" ")
				p.stmt(n.Alternate)
			}
		}
	case *For:
		p.write("for (")
		switch init := n.Init.(type) {
		case nil:
		case *Var:
			p.varDecl(init)
		case Expr:
			p.expr(init, token.LOWEST)
		}
		p.write(";")
		if n.Test != nil {
			p.write(" ")
			p.expr(n.Test, token.LOWEST)
		}
		p.write(";")
		if n.Update != nil {
			p.write(" ")
			p.expr(n.Update, token.LOWEST)
		}
		p.write(")")
		p.body(n.Body)
	case *ForIn:
		p.write("for (")
		switch left := n.Left.(type) {
		case *Var:
			p.varDecl(left)
		case Expr:
			p.expr(left, token.MEMBER)
		}
		p.write(" in ")
		p.expr(n.Right, token.LOWEST)
		p.write(")")
		p.body(n.Body)
	case *While:
		p.write("while (")
		p.expr(n.Test, token.LOWEST)
		p.write(")")
		p.body(n.Body)
	case *DoWhile:
		p.write("do")
		p.body(n.Body)
		p.write(" while (")
		p.expr(n.Test, token.LOWEST)
		p.write(");")
	case *Switch:
		p.write("switch (")
		p.expr(n.Discriminant, token.LOWEST)
		p.write(") {")
		if len(n.Cases) > 0 {
			p.indent++
			for _, c := range n.Cases {
				p.newline()
				p.switchCase(c)
			}
			p.indent--
			p.newline()
		}
		p.write("}")
	case *Throw:
		p.write("throw ")
		p.expr(n.Argument, token.LOWEST)
		p.write(";")
	case *Try:
		p.write("try ")
		p.block(n.Block)
		if n.Handler != nil {
			p.write(" catch ")
			if n.Param != nil {
				p.write("(" + n.Param.Name + ") ")
			}
			p.block(n.Handler)
		}
		if n.Finalizer != nil {
			p.write(" finally ")
			p.block(n.Finalizer)
		}
	case *Return:
		p.write("return")
		if n.Argument != nil {
			p.write(" ")
			p.expr(n.Argument, token.LOWEST)
		}
		p.write(";")
	case *Break:
		p.write("break")
		if n.Label != nil {
			p.write(" " + n.Label.Name)
		}
		p.write(";")
	case *Continue:
		p.write("continue")
		if n.Label != nil {
			p.write(" " + n.Label.Name)
		}
		p.write(";")
	case *Var:
		p.varDecl(n)
		p.write(";")
	case *FuncDecl:
		p.function(n.Name, n.Params, n.Body)
	}
}

// body writes a statement in a nested position such as a loop body.
func (p *printer) body(s Stmt) {
	if _, ok := s.(*Empty); ok {
		p.write(";")
		return
	}
	p.write(" ")
	p.stmt(s)
}

func (p *printer) block(b *Block) {
	if len(b.Body) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.indent++
	for _, s := range b.Body {
		p.newline()
		p.stmt(s)
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *printer) switchCase(c *Case) {
	if c.Test == nil {
		p.write("default:")
	} else {
		p.write("case ")
		p.expr(c.Test, token.LOWEST)
		p.write(":")
	}
	p.indent++
	for _, s := range c.Body {
		p.newline()
		p.stmt(s)
	}
	p.indent--
}

func (p *printer) varDecl(v *Var) {
	p.write(v.Keyword)
	p.write(" ")
	for i, d := range v.Decls {
		if i > 0 {
			p.write(", ")
		}
		p.declarator(d)
	}
}

func (p *printer) declarator(d *Declarator) {
	p.write(d.Target.Name)
	if d.Init != nil {
		p.write(" = ")
		p.expr(d.Init, token.ASSIGNMENT)
	}
}

func (p *printer) function(name *Ident, params []*Ident, body *Block) {
	p.write("function ")
	if name != nil {
		p.write(name.Name)
	}
	p.write("(")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name)
	}
	p.write(") ")
	p.block(body)
}

// expr writes e, wrapping it in parentheses when its precedence is lower
// than min.
func (p *printer) expr(e Expr, min int) {
	if precedence(e) < min {
		p.write("(")
		p.expr(e, token.LOWEST)
		p.write(")")
		return
	}
	switch n := e.(type) {
	case *String:
		p.write(Quote(n.Value))
	case *Number:
		if n.Raw != "" {
			p.write(n.Raw)
		} else {
			p.write(FormatNumber(n.Value))
		}
	case *Bool:
		p.write(strconv.FormatBool(n.Value))
	case *Null:
		p.write("null")
	case *Template:
		p.write("`")
		p.write(n.Quasis[0])
		for i, x := range n.Exprs {
			p.write("${")
			p.expr(x, token.LOWEST)
			p.write("}")
			p.write(n.Quasis[i+1])
		}
		p.write("`")
	case *Ident:
		p.write(n.Name)
	case *This:
		p.write("this")
	case *Sequence:
		for i, x := range n.Exprs {
			if i > 0 {
				p.write(", ")
			}
			p.expr(x, token.ASSIGNMENT)
		}
	case *Binary:
		prec := token.BinaryPrecedence(n.Op)
		left, right := prec, prec+1
		if token.IsRightAssociative(n.Op) {
			left, right = prec+1, prec
		}
		p.expr(n.X, left)
		p.write(" " + string(n.Op) + " ")
		p.expr(n.Y, right)
	case *Assign:
		p.expr(n.Target, token.POSTFIX)
		p.write(" " + string(n.Op) + " ")
		p.expr(n.Value, token.ASSIGNMENT)
	case *Unary:
		if n.Postfix {
			p.expr(n.X, token.POSTFIX)
			p.write(string(n.Op))
			return
		}
		p.write(string(n.Op))
		if token.IsWord(n.Op) || needsUnarySpace(n.Op, n.X) {
			p.write(" ")
		}
		p.expr(n.X, token.PREFIX)
	case *Conditional:
		p.expr(n.Test, token.NULLISHPREC)
		p.write(" ? ")
		p.expr(n.Consequent, token.ASSIGNMENT)
		p.write(" : ")
		p.expr(n.Alternate, token.ASSIGNMENT)
	case *Call:
		p.expr(n.Callee, token.CALL)
		p.args(n.Args)
	case *New:
		p.write("new ")
		p.expr(n.Callee, token.MEMBER)
		p.args(n.Args)
	case *Member:
		if _, ok := n.Object.(*Number); ok {
			p.write("(")
			p.expr(n.Object, token.LOWEST)
			p.write(")")
		} else {
			p.expr(n.Object, token.CALL)
		}
		if n.Computed {
			p.write("[")
			p.expr(n.Property, token.LOWEST)
			p.write("]")
		} else {
			p.write(".")
			p.expr(n.Property, token.PRIMARY)
		}
	case *Func:
		p.function(n.Name, n.Params, n.Body)
	case *Array:
		p.write("[")
		for i, x := range n.Elements {
			if i > 0 {
				p.write(", ")
			}
			if x != nil {
				p.expr(x, token.ASSIGNMENT)
			}
		}
		if len(n.Elements) > 0 && n.Elements[len(n.Elements)-1] == nil {
			p.write(",")
		}
		p.write("]")
	case *Object:
		if len(n.Props) == 0 {
			p.write("{}")
			return
		}
		p.write("{ ")
		for i, prop := range n.Props {
			if i > 0 {
				p.write(", ")
			}
			if isIdentifierName(prop.Key) {
				p.write(prop.Key)
			} else {
				p.write(Quote(prop.Key))
			}
			p.write(": ")
			p.expr(prop.Value, token.ASSIGNMENT)
		}
		p.write(" }")
	}
}

func (p *printer) args(args []Expr) {
	p.write("(")
	for i, a := range args {
		if i > 0 {
			p.write(", ")
		}
		p.expr(a, token.ASSIGNMENT)
	}
	p.write(")")
}

func precedence(e Expr) int {
	switch n := e.(type) {
	case *Sequence:
		return token.SEQUENCE
	case *Assign:
		return token.ASSIGNMENT
	case *Conditional:
		return token.CONDITIONAL
	case *Binary:
		return token.BinaryPrecedence(n.Op)
	case *Unary:
		if n.Postfix {
			return token.POSTFIX
		}
		return token.PREFIX
	case *Call, *New:
		return token.CALL
	case *Member:
		return token.MEMBER
	}
	return token.PRIMARY
}

// needsUnarySpace prevents "- -x" and "+ +x" from collapsing into the
// decrement and increment operators.
func needsUnarySpace(op token.Type, operand Expr) bool {
	if op != token.MINUS && op != token.PLUS {
		return false
	}
	switch x := operand.(type) {
	case *Unary:
		return !x.Postfix && len(x.Op) > 0 && x.Op[0] == op[0]
	case *Number:
		return x.Value < 0 && op == token.MINUS
	}
	return false
}

// startsAmbiguously reports whether an expression statement would begin with
// "{" or "function", which a parser would read as a block or declaration.
func startsAmbiguously(e Expr) bool {
	for {
		switch n := e.(type) {
		case *Object, *Func:
			return true
		case *Sequence:
			e = n.Exprs[0]
		case *Binary:
			e = n.X
		case *Assign:
			e = n.Target
		case *Conditional:
			e = n.Test
		case *Call:
			e = n.Callee
		case *Member:
			e = n.Object
		case *Unary:
			if !n.Postfix {
				return false
			}
			e = n.X
		default:
			return false
		}
	}
}

// Quote returns s as a double-quoted JavaScript string literal.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case '\u2028', '\u2029':
			b.WriteString(`\u` + strconv.FormatInt(int64(r), 16))
		default:
			if r < 0x20 || r == 0x7f {
				b.WriteString(`\x`)
				hex := strconv.FormatInt(int64(r), 16)
				if len(hex) < 2 {
					b.WriteByte('0')
				}
				b.WriteString(hex)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// FormatNumber renders v the way JavaScript's Number#toString does for the
// common cases.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == math.Trunc(v) && math.Abs(v) < 1e21:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '$' || r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
