package ast

import (
	"testing"

	"github.com/deepnoodle-ai/untangle/internal/token"
)

func TestWalk(t *testing.T) {
	// Build: var x = 1 + 2;
	program := &Program{
		Body: []Stmt{
			&Var{
				Keyword: "var",
				Decls: []*Declarator{{
					Target: NewIdent("x"),
					Init: &Binary{
						Op: token.PLUS,
						X:  &Number{Value: 1},
						Y:  &Number{Value: 2},
					},
				}},
			},
		},
	}

	var visited []string
	Inspect(program, func(n Node) bool {
		switch node := n.(type) {
		case *Binary:
			visited = append(visited, "Binary:"+string(node.Op))
		default:
			visited = append(visited, n.Kind().String())
		}
		return true
	})

	expected := []string{
		"Program",
		"VariableDeclaration",
		"VariableDeclarator",
		"Identifier",
		"Binary:+",
		"NumericLiteral",
		"NumericLiteral",
	}
	if len(visited) != len(expected) {
		t.Errorf("expected %d nodes, got %d: %v", len(expected), len(visited), visited)
		return
	}
	for i, v := range expected {
		if visited[i] != v {
			t.Errorf("expected %q at index %d, got %q", v, i, visited[i])
		}
	}
}

func TestInspectSkipsChildren(t *testing.T) {
	// Build: if (a) { b(); }
	program := &Program{
		Body: []Stmt{
			&If{
				Test: NewIdent("a"),
				Consequent: &Block{Body: []Stmt{
					&ExprStmt{X: &Call{Callee: NewIdent("b")}},
				}},
			},
		},
	}

	var count int
	Inspect(program, func(n Node) bool {
		count++
		_, isBlock := n.(*Block)
		return !isBlock
	})
	// Program, If, Ident a, Block
	if count != 4 {
		t.Errorf("expected 4 nodes, got %d", count)
	}
}

func TestChildrenSkipsOptionalFields(t *testing.T) {
	fn := &Func{Body: &Block{}}
	children := Children(fn)
	if len(children) != 1 {
		t.Fatalf("expected only the body, got %d children", len(children))
	}
	if children[0].Kind() != BlockStatement {
		t.Errorf("expected block, got %s", children[0].Kind())
	}

	loop := &For{Body: &Empty{}}
	if n := len(Children(loop)); n != 1 {
		t.Errorf("expected 1 child for an empty for loop, got %d", n)
	}
}

func TestKindNames(t *testing.T) {
	for _, k := range Kinds() {
		if k.String() == "Invalid" || k.String() == "" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if Kind(250).String() != "Invalid" {
		t.Errorf("out of range kind should be Invalid")
	}
}
