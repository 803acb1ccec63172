package ast

import "github.com/deepnoodle-ai/untangle/internal/token"

// Ident is an expression node that refers to a binding by name.
type Ident struct {
	Name string
}

func (x *Ident) exprNode()      {}
func (x *Ident) Kind() Kind     { return Identifier }
func (x *Ident) String() string { return x.Name }

// NewIdent returns an identifier node.
func NewIdent(name string) *Ident { return &Ident{Name: name} }

// This is the "this" keyword.
type This struct{}

func (x *This) exprNode()      {}
func (x *This) Kind() Kind     { return ThisExpression }
func (x *This) String() string { return "this" }

// Sequence is a comma-operator expression. Operands evaluate left to right
// and the value of the whole is the last operand. Exprs is never empty.
type Sequence struct {
	Exprs []Expr
}

func (x *Sequence) exprNode()      {}
func (x *Sequence) Kind() Kind     { return SequenceExpression }
func (x *Sequence) String() string { return Format(x) }

// NewSequence returns a sequence of the given expressions, or the sole
// expression itself when only one is given. It panics when exprs is empty.
func NewSequence(exprs ...Expr) Expr {
	switch len(exprs) {
	case 0:
		panic("ast: empty sequence expression")
	case 1:
		return exprs[0]
	}
	return &Sequence{Exprs: exprs}
}

// Binary is a binary or logical operator expression such as "x + y" or
// "a && b".
type Binary struct {
	Op token.Type
	X  Expr
	Y  Expr
}

func (x *Binary) exprNode()      {}
func (x *Binary) Kind() Kind     { return BinaryExpression }
func (x *Binary) String() string { return Format(x) }

// Assign is an assignment expression. Op is "=" or a compound operator such
// as "+=" or "||=".
type Assign struct {
	Op     token.Type
	Target Expr
	Value  Expr
}

func (x *Assign) exprNode()      {}
func (x *Assign) Kind() Kind     { return AssignmentExpression }
func (x *Assign) String() string { return Format(x) }

// Unary is a prefix or postfix operator expression, including the update
// operators "++" and "--".
type Unary struct {
	Op      token.Type
	X       Expr
	Postfix bool
}

func (x *Unary) exprNode()      {}
func (x *Unary) Kind() Kind     { return UnaryExpression }
func (x *Unary) String() string { return Format(x) }

// Conditional is a ternary "test ? consequent : alternate" expression.
type Conditional struct {
	Test       Expr
	Consequent Expr
	Alternate  Expr
}

func (x *Conditional) exprNode()      {}
func (x *Conditional) Kind() Kind     { return ConditionalExpression }
func (x *Conditional) String() string { return Format(x) }

// Call is a function call expression.
type Call struct {
	Callee Expr
	Args   []Expr
}

func (x *Call) exprNode()      {}
func (x *Call) Kind() Kind     { return CallExpression }
func (x *Call) String() string { return Format(x) }

// New is a constructor call such as "new Foo(x)".
type New struct {
	Callee Expr
	Args   []Expr
}

func (x *New) exprNode()      {}
func (x *New) Kind() Kind     { return NewExpression }
func (x *New) String() string { return Format(x) }

// Member is a property access. When Computed is false the property is an
// *Ident and the access reads "object.name"; otherwise it reads
// "object[property]".
type Member struct {
	Object   Expr
	Property Expr
	Computed bool
}

func (x *Member) exprNode()      {}
func (x *Member) Kind() Kind     { return MemberExpression }
func (x *Member) String() string { return Format(x) }

// PropertyName returns the statically known property name of the access:
// the identifier of a dotted access or the value of a string literal key.
func (x *Member) PropertyName() (string, bool) {
	switch p := x.Property.(type) {
	case *Ident:
		if !x.Computed {
			return p.Name, true
		}
	case *String:
		if x.Computed {
			return p.Value, true
		}
	}
	return "", false
}

// Func is a function expression. Name is optional.
type Func struct {
	Name   *Ident
	Params []*Ident
	Body   *Block
}

func (x *Func) exprNode()      {}
func (x *Func) Kind() Kind     { return FunctionExpression }
func (x *Func) String() string { return Format(x) }

// Array is an array literal. A nil element denotes a hole.
type Array struct {
	Elements []Expr
}

func (x *Array) exprNode()      {}
func (x *Array) Kind() Kind     { return ArrayExpression }
func (x *Array) String() string { return Format(x) }

// Property is a key/value pair inside an object literal.
type Property struct {
	Key   string
	Value Expr
}

// Object is an object literal.
type Object struct {
	Props []*Property
}

func (x *Object) exprNode()      {}
func (x *Object) Kind() Kind     { return ObjectExpression }
func (x *Object) String() string { return Format(x) }
