// Package ast defines the syntax tree that JavaScript programs are rewritten
// on.
//
// The tree is mutable and singly owned: every node belongs to exactly one
// parent field or list slot, and a Program is the single root. Nodes carry no
// back-pointers; parent navigation is provided by traverse.Path while a
// traversal is in progress.
package ast

// Node represents a portion of the syntax tree.
type Node interface {
	// Kind identifies the concrete node type.
	Kind() Kind

	// String returns JavaScript source for the node. The output is valid
	// source, but formatting is not preserved from the original input.
	String() string
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Kind identifies the type of a node. Kinds are used as visitor keys.
type Kind uint8

// Node kinds
const (
	InvalidKind Kind = iota

	ProgramKind

	StringLiteral
	NumericLiteral
	BooleanLiteral
	NullLiteral
	TemplateLiteral
	Identifier
	ThisExpression
	SequenceExpression
	BinaryExpression
	AssignmentExpression
	UnaryExpression
	ConditionalExpression
	CallExpression
	NewExpression
	MemberExpression
	FunctionExpression
	ArrayExpression
	ObjectExpression

	ExpressionStatement
	BlockStatement
	EmptyStatement
	IfStatement
	ForStatement
	ForInStatement
	WhileStatement
	DoWhileStatement
	SwitchStatement
	SwitchCase
	ThrowStatement
	TryStatement
	ReturnStatement
	BreakStatement
	ContinueStatement
	VariableDeclaration
	VariableDeclarator
	FunctionDeclaration

	kindCount
)

var kindNames = [kindCount]string{
	InvalidKind:           "Invalid",
	ProgramKind:           "Program",
	StringLiteral:         "StringLiteral",
	NumericLiteral:        "NumericLiteral",
	BooleanLiteral:        "BooleanLiteral",
	NullLiteral:           "NullLiteral",
	TemplateLiteral:       "TemplateLiteral",
	Identifier:            "Identifier",
	ThisExpression:        "ThisExpression",
	SequenceExpression:    "SequenceExpression",
	BinaryExpression:      "BinaryExpression",
	AssignmentExpression:  "AssignmentExpression",
	UnaryExpression:       "UnaryExpression",
	ConditionalExpression: "ConditionalExpression",
	CallExpression:        "CallExpression",
	NewExpression:         "NewExpression",
	MemberExpression:      "MemberExpression",
	FunctionExpression:    "FunctionExpression",
	ArrayExpression:       "ArrayExpression",
	ObjectExpression:      "ObjectExpression",
	ExpressionStatement:   "ExpressionStatement",
	BlockStatement:        "BlockStatement",
	EmptyStatement:        "EmptyStatement",
	IfStatement:           "IfStatement",
	ForStatement:          "ForStatement",
	ForInStatement:        "ForInStatement",
	WhileStatement:        "WhileStatement",
	DoWhileStatement:      "DoWhileStatement",
	SwitchStatement:       "SwitchStatement",
	SwitchCase:            "SwitchCase",
	ThrowStatement:        "ThrowStatement",
	TryStatement:          "TryStatement",
	ReturnStatement:       "ReturnStatement",
	BreakStatement:        "BreakStatement",
	ContinueStatement:     "ContinueStatement",
	VariableDeclaration:   "VariableDeclaration",
	VariableDeclarator:    "VariableDeclarator",
	FunctionDeclaration:   "FunctionDeclaration",
}

// String returns the kind's name, e.g. "CallExpression".
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return kindNames[InvalidKind]
}

// Kinds returns every valid node kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount-1)
	for k := ProgramKind; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Program is the root of a syntax tree.
type Program struct {
	Body []Stmt
}

func (p *Program) Kind() Kind     { return ProgramKind }
func (p *Program) String() string { return Format(p) }
