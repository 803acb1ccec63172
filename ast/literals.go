package ast

// String is a string literal. Value holds the cooked (unescaped) text.
type String struct {
	Value string
}

func (x *String) exprNode()      {}
func (x *String) Kind() Kind     { return StringLiteral }
func (x *String) String() string { return Format(x) }

// Number is a numeric literal. Raw preserves the source spelling when the
// literal came from the parser; it is empty for synthesized numbers.
type Number struct {
	Value float64
	Raw   string
}

func (x *Number) exprNode()      {}
func (x *Number) Kind() Kind     { return NumericLiteral }
func (x *Number) String() string { return Format(x) }

// Bool is a boolean literal.
type Bool struct {
	Value bool
}

func (x *Bool) exprNode()      {}
func (x *Bool) Kind() Kind     { return BooleanLiteral }
func (x *Bool) String() string { return Format(x) }

// Null is the null literal.
type Null struct{}

func (x *Null) exprNode()      {}
func (x *Null) Kind() Kind     { return NullLiteral }
func (x *Null) String() string { return "null" }

// Template is a template literal such as `a${b}c`. Quasis hold the raw text
// between embedded expressions, so len(Quasis) == len(Exprs)+1 always holds.
type Template struct {
	Quasis []string
	Exprs  []Expr
}

func (x *Template) exprNode()      {}
func (x *Template) Kind() Kind     { return TemplateLiteral }
func (x *Template) String() string { return Format(x) }

// NewTemplate returns a template literal holding a single raw quasi.
func NewTemplate(raw string) *Template {
	return &Template{Quasis: []string{raw}}
}

// IsLiteral reports whether e is a string or numeric literal.
func IsLiteral(e Node) bool {
	switch e.(type) {
	case *String, *Number:
		return true
	}
	return false
}
