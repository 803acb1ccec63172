// Package token defines the JavaScript operators understood by the syntax tree
// along with their binding precedence.
package token

// Type describes an operator as it appears in source code.
type Type string

// Operators
const (
	ASSIGN          Type = "="
	PLUS_EQUALS     Type = "+="
	MINUS_EQUALS    Type = "-="
	ASTERISK_EQUALS Type = "*="
	SLASH_EQUALS    Type = "/="
	MOD_EQUALS      Type = "%="
	POW_EQUALS      Type = "**="
	LT_LT_EQUALS    Type = "<<="
	GT_GT_EQUALS    Type = ">>="
	GT_GT_GT_EQUALS Type = ">>>="
	AMP_EQUALS      Type = "&="
	BITOR_EQUALS    Type = "|="
	CARET_EQUALS    Type = "^="
	AND_EQUALS      Type = "&&="
	OR_EQUALS       Type = "||="
	NULLISH_EQUALS  Type = "??="

	NULLISH    Type = "??"
	OR         Type = "||"
	AND        Type = "&&"
	BITOR      Type = "|"
	CARET      Type = "^"
	AMPERSAND  Type = "&"
	EQ         Type = "=="
	NOT_EQ     Type = "!="
	STRICT_EQ  Type = "==="
	STRICT_NEQ Type = "!=="
	LT         Type = "<"
	GT         Type = ">"
	LT_EQUALS  Type = "<="
	GT_EQUALS  Type = ">="
	IN         Type = "in"
	INSTANCEOF Type = "instanceof"
	LT_LT      Type = "<<"
	GT_GT      Type = ">>"
	GT_GT_GT   Type = ">>>"
	PLUS       Type = "+"
	MINUS      Type = "-"
	ASTERISK   Type = "*"
	SLASH      Type = "/"
	MOD        Type = "%"
	POW        Type = "**"

	BANG        Type = "!"
	TILDE       Type = "~"
	TYPEOF      Type = "typeof"
	VOID        Type = "void"
	DELETE      Type = "delete"
	PLUS_PLUS   Type = "++"
	MINUS_MINUS Type = "--"
)

// Precedence levels, loosely binding first.
const (
	_ int = iota
	LOWEST
	SEQUENCE    // a, b
	ASSIGNMENT  // = += ...
	CONDITIONAL // ? :
	NULLISHPREC // ??
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	EQUALITY    // == != === !==
	RELATIONAL  // < > <= >= in instanceof
	SHIFT       // << >> >>>
	SUM         // + -
	PRODUCT     // * / %
	EXPONENT    // **
	PREFIX      // !x -x typeof x ++x
	POSTFIX     // x++
	CALL        // f(x) new F(x)
	MEMBER      // a.b a[b]
	PRIMARY     // literals, identifiers, parenthesised expressions
)

var binaryPrecedences = map[Type]int{
	NULLISH:    NULLISHPREC,
	OR:         LOGICAL_OR,
	AND:        LOGICAL_AND,
	BITOR:      BIT_OR,
	CARET:      BIT_XOR,
	AMPERSAND:  BIT_AND,
	EQ:         EQUALITY,
	NOT_EQ:     EQUALITY,
	STRICT_EQ:  EQUALITY,
	STRICT_NEQ: EQUALITY,
	LT:         RELATIONAL,
	GT:         RELATIONAL,
	LT_EQUALS:  RELATIONAL,
	GT_EQUALS:  RELATIONAL,
	IN:         RELATIONAL,
	INSTANCEOF: RELATIONAL,
	LT_LT:      SHIFT,
	GT_GT:      SHIFT,
	GT_GT_GT:   SHIFT,
	PLUS:       SUM,
	MINUS:      SUM,
	ASTERISK:   PRODUCT,
	SLASH:      PRODUCT,
	MOD:        PRODUCT,
	POW:        EXPONENT,
}

var assignments = map[Type]bool{
	ASSIGN:          true,
	PLUS_EQUALS:     true,
	MINUS_EQUALS:    true,
	ASTERISK_EQUALS: true,
	SLASH_EQUALS:    true,
	MOD_EQUALS:      true,
	POW_EQUALS:      true,
	LT_LT_EQUALS:    true,
	GT_GT_EQUALS:    true,
	GT_GT_GT_EQUALS: true,
	AMP_EQUALS:      true,
	BITOR_EQUALS:    true,
	CARET_EQUALS:    true,
	AND_EQUALS:      true,
	OR_EQUALS:       true,
	NULLISH_EQUALS:  true,
}

// BinaryPrecedence returns the precedence of a binary or logical operator.
// Unknown operators report LOWEST.
func BinaryPrecedence(op Type) int {
	if p, ok := binaryPrecedences[op]; ok {
		return p
	}
	return LOWEST
}

// IsBinary reports whether op is a binary or logical operator.
func IsBinary(op Type) bool {
	_, ok := binaryPrecedences[op]
	return ok
}

// IsAssignment reports whether op is an assignment operator.
func IsAssignment(op Type) bool {
	return assignments[op]
}

// IsLogicalAssignment reports whether op is one of the short-circuiting
// assignment operators "||=", "&&=" and "??=".
func IsLogicalAssignment(op Type) bool {
	return op == AND_EQUALS || op == OR_EQUALS || op == NULLISH_EQUALS
}

// IsRightAssociative reports whether chains of op group from the right.
func IsRightAssociative(op Type) bool {
	return op == POW
}

// IsWord reports whether op is spelled as a keyword and must be separated from
// its operand by a space.
func IsWord(op Type) bool {
	switch op {
	case TYPEOF, VOID, DELETE, IN, INSTANCEOF:
		return true
	}
	return false
}
