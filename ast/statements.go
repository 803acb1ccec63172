package ast

// ExprStmt is a statement consisting of a single expression.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) stmtNode()      {}
func (s *ExprStmt) Kind() Kind     { return ExpressionStatement }
func (s *ExprStmt) String() string { return Format(s) }

// Block is a braced list of statements.
type Block struct {
	Body []Stmt
}

func (s *Block) stmtNode()      {}
func (s *Block) Kind() Kind     { return BlockStatement }
func (s *Block) String() string { return Format(s) }

// Empty is the empty statement ";".
type Empty struct{}

func (s *Empty) stmtNode()      {}
func (s *Empty) Kind() Kind     { return EmptyStatement }
func (s *Empty) String() string { return ";" }

// If is an if statement. Alternate is nil when there is no else branch.
type If struct {
	Test       Expr
	Consequent Stmt
	Alternate  Stmt
}

func (s *If) stmtNode()      {}
func (s *If) Kind() Kind     { return IfStatement }
func (s *If) String() string { return Format(s) }

// For is a classic three-clause for loop. Init is nil, an Expr, or a *Var.
// Test and Update are optional.
type For struct {
	Init   Node
	Test   Expr
	Update Expr
	Body   Stmt
}

func (s *For) stmtNode()      {}
func (s *For) Kind() Kind     { return ForStatement }
func (s *For) String() string { return Format(s) }

// ForIn is a "for (left in right)" loop. Left is an Expr or a *Var holding a
// single declarator.
type ForIn struct {
	Left  Node
	Right Expr
	Body  Stmt
}

func (s *ForIn) stmtNode()      {}
func (s *ForIn) Kind() Kind     { return ForInStatement }
func (s *ForIn) String() string { return Format(s) }

// While is a while loop.
type While struct {
	Test Expr
	Body Stmt
}

func (s *While) stmtNode()      {}
func (s *While) Kind() Kind     { return WhileStatement }
func (s *While) String() string { return Format(s) }

// DoWhile is a do/while loop.
type DoWhile struct {
	Body Stmt
	Test Expr
}

func (s *DoWhile) stmtNode()      {}
func (s *DoWhile) Kind() Kind     { return DoWhileStatement }
func (s *DoWhile) String() string { return Format(s) }

// Switch is a switch statement.
type Switch struct {
	Discriminant Expr
	Cases        []*Case
}

func (s *Switch) stmtNode()      {}
func (s *Switch) Kind() Kind     { return SwitchStatement }
func (s *Switch) String() string { return Format(s) }

// Case is one clause of a switch statement. Test is nil for "default".
type Case struct {
	Test Expr
	Body []Stmt
}

func (s *Case) Kind() Kind     { return SwitchCase }
func (s *Case) String() string { return Format(s) }

// Throw is a throw statement.
type Throw struct {
	Argument Expr
}

func (s *Throw) stmtNode()      {}
func (s *Throw) Kind() Kind     { return ThrowStatement }
func (s *Throw) String() string { return Format(s) }

// Try is a try statement. Handler and Finalizer are optional, but at least
// one of them is present. Param is optional even when Handler is set.
type Try struct {
	Block     *Block
	Param     *Ident
	Handler   *Block
	Finalizer *Block
}

func (s *Try) stmtNode()      {}
func (s *Try) Kind() Kind     { return TryStatement }
func (s *Try) String() string { return Format(s) }

// Return is a return statement with an optional argument.
type Return struct {
	Argument Expr
}

func (s *Return) stmtNode()      {}
func (s *Return) Kind() Kind     { return ReturnStatement }
func (s *Return) String() string { return Format(s) }

// Break is a break statement with an optional label.
type Break struct {
	Label *Ident
}

func (s *Break) stmtNode()      {}
func (s *Break) Kind() Kind     { return BreakStatement }
func (s *Break) String() string { return Format(s) }

// Continue is a continue statement with an optional label.
type Continue struct {
	Label *Ident
}

func (s *Continue) stmtNode()      {}
func (s *Continue) Kind() Kind     { return ContinueStatement }
func (s *Continue) String() string { return Format(s) }

// Var declares one or more variables. Keyword is "var", "let" or "const".
type Var struct {
	Keyword string
	Decls   []*Declarator
}

func (s *Var) stmtNode()      {}
func (s *Var) Kind() Kind     { return VariableDeclaration }
func (s *Var) String() string { return Format(s) }

// Declarator binds Target to the optional Init expression.
type Declarator struct {
	Target *Ident
	Init   Expr
}

func (s *Declarator) Kind() Kind     { return VariableDeclarator }
func (s *Declarator) String() string { return Format(s) }

// FuncDecl is a function declaration statement.
type FuncDecl struct {
	Name   *Ident
	Params []*Ident
	Body   *Block
}

func (s *FuncDecl) stmtNode()      {}
func (s *FuncDecl) Kind() Kind     { return FunctionDeclaration }
func (s *FuncDecl) String() string { return Format(s) }
