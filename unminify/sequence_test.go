package unminify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/internal/token"
	"github.com/deepnoodle-ai/untangle/parser"
	"github.com/deepnoodle-ai/untangle/transform"
)

// apply runs tr to a fixed point on the parsed input and returns the
// formatted result along with the pipeline result.
func apply(t *testing.T, tr *transform.Transform, input string) (string, *transform.Result) {
	t.Helper()
	program, err := parser.Parse(context.Background(), input)
	require.NoError(t, err)
	return applyTree(t, tr, program)
}

func applyTree(t *testing.T, tr *transform.Transform, program *ast.Program) (string, *transform.Result) {
	t.Helper()
	result, err := transform.New([]*transform.Transform{tr}, transform.WithStrictValidation()).
		Run(context.Background(), program)
	require.NoError(t, err)
	require.True(t, result.Converged)
	return ast.Format(program), result
}

func TestSequence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "to statements",
			input:    "if (a) b(), c();",
			expected: "if (a) {\n  b();\n  c();\n}",
		},
		{
			name:     "return",
			input:    "function f() { return a(), b(), c(); }",
			expected: "function f() {\n  a();\n  b();\n  return c();\n}",
		},
		{
			name:     "if test",
			input:    "if (a(), b()) c();",
			expected: "a();\nif (b()) c();",
		},
		{
			name:     "switch discriminant",
			input:    "switch (a(), b()) {}",
			expected: "a();\nswitch (b()) {}",
		},
		{
			name:     "throw",
			input:    "throw a(), b();",
			expected: "a();\nthrow b();",
		},
		{
			name:     "for-in right side",
			input:    "for (var key in a = 1, object) {}",
			expected: "a = 1;\nfor (var key in object) {}",
		},
		{
			name:     "for init",
			input:    "for ((a(), b());;);",
			expected: "a();\nb();\nfor (;;);",
		},
		{
			name:     "for init in single statement slot",
			input:    "if (1) for ((a(), b());;) {}",
			expected: "if (1) {\n  a();\n  b();\n  for (;;) {}\n}",
		},
		{
			name:     "for update",
			input:    "for (; i < 10; a(), b(), i++);",
			expected: "for (; i < 10; i++) {\n  a();\n  b();\n}",
		},
		{
			name:     "for update appended after body",
			input:    "for (; t; a(), i++) x();",
			expected: "for (; t; i++) {\n  x();\n  a();\n}",
		},
		{
			name:     "for update with continue",
			input:    "for (; t; a(), i++) { if (x) continue; }",
			expected: "for (; t; a(), i++) {\n  if (x) continue;\n}",
		},
		{
			name:     "for update with continue in nested loop",
			input:    "for (; t; a(), i++) { while (x) continue; }",
			expected: "for (; t; i++) {\n  while (x) continue;\n  a();\n}",
		},
		{
			name:     "while test",
			input:    "while (a(), b()) c();",
			expected: "a();\nwhile (b()) c();",
		},
		{
			name:     "variable declarator",
			input:    "var a = (b(), c());",
			expected: "b();\nvar a = c();",
		},
		{
			name:     "variable declarator in for init",
			input:    "for (var a = (b(), c());;) {}",
			expected: "b();\nfor (var a = c();;) {}",
		},
		{
			name:     "assignment",
			input:    "a = (b(), c());",
			expected: "b();\na = c();",
		},
		{
			name:     "member assignment",
			input:    "a.x = (b(), c());",
			expected: "b();\na.x = c();",
		},
		{
			name:     "literal key assignment",
			input:    "a[1] = (b(), c());",
			expected: "b();\na[1] = c();",
		},
		{
			name:     "this member assignment",
			input:    "this.x = (b(), c());",
			expected: "b();\nthis.x = c();",
		},
		{
			name:     "computed key assignment",
			input:    "a[x()] = (b(), c());",
			expected: "a[x()] = (b(), c());",
		},
		{
			name:     "call object assignment",
			input:    "f().x = (b(), c());",
			expected: "f().x = (b(), c());",
		},
		{
			name:     "compound assignment",
			input:    "a += (b(), c());",
			expected: "a += (b(), c());",
		},
		{
			name:     "assignment in call argument",
			input:    "console.log(a = (b(), c()));",
			expected: "console.log((b(), a = c()));",
		},
		{
			name:     "assignment in while test",
			input:    "while (a = (b(), c()));",
			expected: "b();\nwhile (a = c());",
		},
		{
			name:     "assignment in loop body",
			input:    "for (;;) a = (b(), c());",
			expected: "for (;;) {\n  b();\n  a = c();\n}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := apply(t, Sequence(), tt.input)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestSequenceLogicalAssignmentUnchanged(t *testing.T) {
	var body []ast.Stmt
	for _, op := range []token.Type{token.OR_EQUALS, token.AND_EQUALS, token.NULLISH_EQUALS} {
		body = append(body, &ast.ExprStmt{X: &ast.Assign{
			Op:     op,
			Target: ast.NewIdent("a"),
			Value: &ast.Sequence{Exprs: []ast.Expr{
				&ast.Call{Callee: ast.NewIdent("b")},
				&ast.Call{Callee: ast.NewIdent("c")},
			}},
		}})
	}
	got, result := applyTree(t, Sequence(), &ast.Program{Body: body})
	require.Equal(t, "a ||= (b(), c());\na &&= (b(), c());\na ??= (b(), c());", got)
	require.Zero(t, result.Total())
}

func TestSequenceCountsOncePerSequence(t *testing.T) {
	_, result := apply(t, Sequence(), "if (a) b(), c(); return_(); throw x(), y();")
	require.Equal(t, 2, result.Changes("sequence"))
	require.Equal(t, 2, result.Iterations)
}

func TestSequenceForUpdateLabelledContinue(t *testing.T) {
	update := &ast.Sequence{Exprs: []ast.Expr{
		&ast.Call{Callee: ast.NewIdent("a")},
		&ast.Unary{Op: token.PLUS_PLUS, X: ast.NewIdent("i"), Postfix: true},
	}}
	program := &ast.Program{Body: []ast.Stmt{&ast.For{
		Test:   ast.NewIdent("t"),
		Update: update,
		Body: &ast.Block{Body: []ast.Stmt{&ast.While{
			Test: ast.NewIdent("x"),
			Body: &ast.Continue{Label: ast.NewIdent("outer")},
		}}},
	}}}
	got, result := applyTree(t, Sequence(), program)
	require.Equal(t, "for (; t; a(), i++) {\n  while (x) continue outer;\n}", got)
	require.Zero(t, result.Total())
}

func TestContinuesLoop(t *testing.T) {
	loop := func(body ast.Stmt) ast.Stmt {
		return &ast.While{Test: ast.NewIdent("x"), Body: body}
	}
	fn := func(body ast.Stmt) ast.Stmt {
		return &ast.ExprStmt{X: &ast.Func{Body: &ast.Block{Body: []ast.Stmt{body}}}}
	}
	tests := []struct {
		name     string
		body     ast.Stmt
		expected bool
	}{
		{"none", &ast.Block{}, false},
		{"unlabelled", &ast.Continue{}, true},
		{"labelled", &ast.Continue{Label: ast.NewIdent("outer")}, true},
		{"unlabelled in nested loop", loop(&ast.Continue{}), false},
		{"labelled in nested loop", loop(&ast.Continue{Label: ast.NewIdent("outer")}), true},
		{"labelled in doubly nested loop", loop(loop(&ast.Continue{Label: ast.NewIdent("outer")})), true},
		{"in function", fn(&ast.Continue{Label: ast.NewIdent("outer")}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, continuesLoop(tt.body))
		})
	}
}

func TestSequenceAssignmentCounts(t *testing.T) {
	tests := []struct {
		input   string
		changes int
	}{
		{"a = (b(), c());", 1},
		{"while (a = (b(), c()));", 1},
		{"if (a = (b(), c())) d();", 1},
		{"function f() { return a = (b(), c()); }", 1},
		{"var x = (a = (b(), c()));", 1},
		{"for (a = (b(), c());;);", 1},
		{"for (;; i = (b(), c()));", 1},
		{"f(a = (b(), c()));", 1},
		{"for (;; i = (b(), c())) { continue; }", 1},
		{"a = (b = (c(), d()));", 2},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, result := apply(t, Sequence(), tt.input)
			require.Equal(t, tt.changes, result.Changes("sequence"))
		})
	}
}

func TestSequenceIdempotent(t *testing.T) {
	program, err := parser.Parse(context.Background(),
		"if (a(), b()) c(), d(); for (var i = (x(), 0); i < 3; y(), i++) z(); e = (f(), g());")
	require.NoError(t, err)

	pipeline := transform.New([]*transform.Transform{Sequence()})
	first, err := pipeline.Run(context.Background(), program)
	require.NoError(t, err)
	require.Positive(t, first.Total())
	formatted := ast.Format(program)

	second, err := pipeline.Run(context.Background(), program)
	require.NoError(t, err)
	require.Zero(t, second.Total())
	require.Equal(t, formatted, ast.Format(program))
}

func TestSequencePreservesCallOrder(t *testing.T) {
	program, err := parser.Parse(context.Background(),
		"if (a(), b()) c(), d(); e = (f(), g()); for (h(), i(); j(); k(), l()) m();")
	require.NoError(t, err)

	before := callOrder(program)
	_, err = transform.New([]*transform.Transform{Sequence()}).Run(context.Background(), program)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d", "f", "g", "h", "i", "j", "k", "l", "m"}, before)

	// Statement order after hoisting follows evaluation order. The loop
	// update moves behind the body, matching when it runs.
	require.Equal(t, []string{"a", "b", "c", "d", "f", "g", "h", "i", "j", "l", "m", "k"}, callOrder(program))
}

func callOrder(root ast.Node) []string {
	var names []string
	ast.Inspect(root, func(n ast.Node) bool {
		if call, ok := n.(*ast.Call); ok {
			if id, ok := call.Callee.(*ast.Ident); ok {
				names = append(names, id.Name)
			}
		}
		return true
	})
	return names
}
