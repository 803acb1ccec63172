package transform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/errz"
	"github.com/deepnoodle-ai/untangle/traverse"
)

// renameTransform renames identifier "from" to "to"; it stops changing the
// tree once no "from" is left.
func renameTransform(name, from, to string, tags ...Tag) *Transform {
	if len(tags) == 0 {
		tags = []Tag{Safe}
	}
	return &Transform{
		Name: name,
		Tags: tags,
		Visitor: func(any) traverse.Visitor {
			return traverse.Visitor{
				ast.Identifier: {Enter: func(p *traverse.Path, s *traverse.State) {
					if id := p.Node().(*ast.Ident); id.Name == from {
						id.Name = to
						s.Changes++
					}
				}},
			}
		},
	}
}

// flipTransform changes the tree on every traversal and never converges.
func flipTransform() *Transform {
	return &Transform{
		Name: "flip",
		Tags: []Tag{Safe},
		Visitor: func(any) traverse.Visitor {
			return traverse.Visitor{
				ast.BooleanLiteral: {Enter: func(p *traverse.Path, s *traverse.State) {
					b := p.Node().(*ast.Bool)
					b.Value = !b.Value
					s.Changes++
				}},
			}
		},
	}
}

func program(stmts ...ast.Expr) *ast.Program {
	out := &ast.Program{}
	for _, e := range stmts {
		out.Body = append(out.Body, &ast.ExprStmt{X: e})
	}
	return out
}

func TestRegistrySelect(t *testing.T) {
	registry, err := NewRegistry(
		renameTransform("a", "x", "y"),
		renameTransform("b", "y", "z", Unsafe),
		renameTransform("c", "z", "w"),
	)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, registry.Names())

	selected, err := registry.Select(nil, []Tag{Safe})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, New(selected).Transforms())

	selected, err = registry.Select(nil, []Tag{Safe, Unsafe})
	require.NoError(t, err)
	require.Len(t, selected, 3)

	selected, err = registry.Select([]string{"c", "a", "c"}, []Tag{Safe})
	require.NoError(t, err)
	require.Equal(t, []string{"c", "a"}, New(selected).Transforms())

	_, ok := registry.Get("b")
	require.True(t, ok)
	_, ok = registry.Get("missing")
	require.False(t, ok)
}

func TestRegistrySelectErrors(t *testing.T) {
	registry, err := NewRegistry(
		renameTransform("a", "x", "y"),
		renameTransform("b", "y", "z", Unsafe),
	)
	require.NoError(t, err)

	_, err = registry.Select([]string{"nope", "b", "other"}, []Tag{Safe})
	require.Error(t, err)
	require.True(t, errors.Is(err, errz.Config))
	msg := err.Error()
	require.Contains(t, msg, `unknown transform "nope"`)
	require.Contains(t, msg, `unknown transform "other"`)
	require.Contains(t, msg, `transform "b" requires tags [unsafe]`)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(renameTransform("a", "x", "y"), renameTransform("a", "y", "z"))
	require.Error(t, err)
	require.True(t, errors.Is(err, errz.Config))

	registry, err := NewRegistry()
	require.NoError(t, err)
	require.Error(t, registry.Register(&Transform{Name: "empty"}))
	require.Error(t, registry.Register(&Transform{}))
}

func TestPipelineFixedPoint(t *testing.T) {
	root := program(ast.NewIdent("x"), ast.NewIdent("x"))
	// c runs before a in each iteration, so the chain x -> y -> z -> w
	// needs several iterations to settle.
	p := New([]*Transform{
		renameTransform("c", "z", "w"),
		renameTransform("b", "y", "z"),
		renameTransform("a", "x", "y"),
	})
	result, err := p.Run(context.Background(), root)
	require.NoError(t, err)
	require.True(t, result.Converged)
	require.Equal(t, 4, result.Iterations)
	require.Equal(t, 2, result.Changes("a"))
	require.Equal(t, 2, result.Changes("b"))
	require.Equal(t, 2, result.Changes("c"))
	require.Equal(t, 6, result.Total())
	require.NotEmpty(t, result.RunID)
	require.Equal(t, "w;\nw;", ast.Format(root))

	// Running again on the simplified tree changes nothing.
	again, err := p.Run(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, 1, again.Iterations)
	require.Zero(t, again.Total())
	require.NotEqual(t, result.RunID, again.RunID)
}

func TestPipelineNonConvergence(t *testing.T) {
	root := program(&ast.Bool{Value: true})
	result, err := New([]*Transform{flipTransform()}, WithMaxIterations(5)).Run(context.Background(), root)
	require.NoError(t, err)
	require.False(t, result.Converged)
	require.Equal(t, 5, result.Iterations)
	require.Equal(t, 5, result.Changes("flip"))
	require.NotNil(t, root.Body[0])
}

func TestPipelineRejectsInvalidTree(t *testing.T) {
	root := program(&ast.Template{Quasis: []string{"a"}, Exprs: []ast.Expr{ast.NewIdent("x")}})
	_, err := New([]*Transform{renameTransform("a", "x", "y")}).Run(context.Background(), root)
	require.Error(t, err)
	require.True(t, errors.Is(err, errz.Invariant))
	require.Equal(t, "x", root.Body[0].(*ast.ExprStmt).X.(*ast.Template).Exprs[0].(*ast.Ident).Name)
}

func TestPipelineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancelling := &Transform{
		Name: "cancel",
		Tags: []Tag{Safe},
		Visitor: func(any) traverse.Visitor {
			return traverse.Visitor{
				ast.ProgramKind: {Enter: func(p *traverse.Path, s *traverse.State) {
					cancel()
					s.Changes++
				}},
			}
		},
	}
	root := program(ast.NewIdent("x"))
	result, err := New([]*Transform{cancelling, renameTransform("a", "x", "y")}).Run(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, result.Iterations)
	require.Equal(t, 1, result.Changes("cancel"))
	require.Zero(t, result.Changes("a"))
	require.Equal(t, "x;", ast.Format(root))
}

func TestPipelinePassConfig(t *testing.T) {
	var got any
	configured := &Transform{
		Name: "configured",
		Tags: []Tag{Safe},
		Visitor: func(config any) traverse.Visitor {
			got = config
			return traverse.Visitor{}
		},
	}
	_, err := New([]*Transform{configured}, WithPassConfig("configured", 42)).Run(context.Background(), program())
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestPipelineStrictValidation(t *testing.T) {
	shared := &ast.Call{Callee: ast.NewIdent("f")}
	duplicating := &Transform{
		Name: "duplicate",
		Tags: []Tag{Safe},
		Visitor: func(any) traverse.Visitor {
			return traverse.Visitor{
				ast.ExpressionStatement: {Enter: func(p *traverse.Path, s *traverse.State) {
					p.Node().(*ast.ExprStmt).X = shared
				}},
			}
		},
	}
	root := program(ast.NewIdent("a"), ast.NewIdent("b"))
	_, err := New([]*Transform{duplicating}, WithStrictValidation()).Run(context.Background(), root)
	require.Error(t, err)
	require.True(t, errors.Is(err, errz.Invariant))
}

type fakeRecorder struct {
	passes     map[string]int
	iterations int
	converged  bool
}

func (r *fakeRecorder) PassFinished(name string, changes int, elapsed time.Duration) {
	r.passes[name] += changes
}

func (r *fakeRecorder) RunFinished(iterations int, converged bool) {
	r.iterations, r.converged = iterations, converged
}

func TestPipelineRecorder(t *testing.T) {
	rec := &fakeRecorder{passes: map[string]int{}}
	root := program(ast.NewIdent("x"))
	_, err := New([]*Transform{renameTransform("a", "x", "y")}, WithRecorder(rec)).Run(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"a": 1}, rec.passes)
	require.Equal(t, 2, rec.iterations)
	require.True(t, rec.converged)
}
