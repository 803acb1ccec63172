package untangle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/deobfuscate"
	"github.com/deepnoodle-ai/untangle/errz"
	"github.com/deepnoodle-ai/untangle/metrics"
	"github.com/deepnoodle-ai/untangle/transform"
)

func decoders(t *testing.T) *deobfuscate.Catalog {
	t.Helper()
	c, err := deobfuscate.NewCatalog(deobfuscate.Decoder{
		Name:   "decode",
		Source: "function decode(n) { return String(n * 2); }",
	})
	require.NoError(t, err)
	return c
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sequence in if body",
			input:    "if (a) b(), c();",
			expected: "if (a) {\n  b();\n  c();\n}",
		},
		{
			name:     "for update",
			input:    "for(; i < 10; a(), b(), i++);",
			expected: "for (; i < 10; i++) {\n  a();\n  b();\n}",
		},
		{
			name:     "concat",
			input:    `"a".concat(b, "c");`,
			expected: "`a${b}c`;",
		},
		{
			name:     "decoder",
			input:    "x = decode(21);",
			expected: `x = "42";`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, result, err := DeobfuscateSource(context.Background(), tt.input,
				WithUnsafe(), WithDecoders(decoders(t)), WithStrictValidation())
			require.NoError(t, err)
			require.True(t, result.Converged)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestSafeOnlyByDefault(t *testing.T) {
	got, result, err := DeobfuscateSource(context.Background(),
		`x = "a".concat(b); y = decode(1); if (a) b(), c();`, WithDecoders(decoders(t)))
	require.NoError(t, err)
	require.Equal(t, "x = \"a\".concat(b);\ny = decode(1);\nif (a) {\n  b();\n  c();\n}", got)
	require.Equal(t, []string{"sequence"}, passNames(result))
}

func TestWithPasses(t *testing.T) {
	got, result, err := DeobfuscateSource(context.Background(),
		`x = "a".concat(b); if (a) b(), c();`, WithUnsafe(), WithPasses("template-literals"))
	require.NoError(t, err)
	require.Equal(t, "x = `a${b}`;\nif (a) b(), c();", got)
	require.Equal(t, []string{"template-literals"}, passNames(result))
}

func TestUnknownPass(t *testing.T) {
	_, _, err := DeobfuscateSource(context.Background(), "x;", WithPasses("nope"))
	require.Error(t, err)
	require.True(t, errors.Is(err, errz.Config))
}

func TestUnsafePassRequiresTag(t *testing.T) {
	_, _, err := DeobfuscateSource(context.Background(), "x;", WithPasses("template-literals"))
	require.Error(t, err)
	require.True(t, errors.Is(err, errz.Config))
}

func TestSyntaxError(t *testing.T) {
	_, result, err := DeobfuscateSource(context.Background(), "x = ;", WithFilename("in.js"))
	require.Nil(t, result)
	require.True(t, errors.Is(err, errz.Syntax))
	require.ErrorContains(t, err, "in.js:")
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.Equal(t, []string{"inline-decoded-strings", "sequence", "template-literals"}, names(r.All()))
	require.Equal(t, names(Transforms()), names(r.All()))
}

func TestRecorderObservesSandbox(t *testing.T) {
	rec := metrics.NewRecorder(nil)
	_, result, err := DeobfuscateSource(context.Background(), "x = decode(1); y = decode(z);",
		WithUnsafe(), WithDecoders(decoders(t)), WithRecorder(rec), WithSandboxTimeout(time.Second))
	require.NoError(t, err)
	require.Equal(t, 1, result.Changes("inline-decoded-strings"))

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "untangle_sandbox_evaluations_total" {
			found = true
			require.Equal(t, 1.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	require.True(t, found)
}

func TestMaxIterations(t *testing.T) {
	program, err := Parse(context.Background(), "if (a) b(), c();")
	require.NoError(t, err)
	result, err := Deobfuscate(context.Background(), program, WithMaxIterations(1))
	require.NoError(t, err)
	require.Equal(t, 1, result.Iterations)
	require.False(t, result.Converged)
}

func TestIdempotent(t *testing.T) {
	program, err := Parse(context.Background(),
		`if (a(), b()) x = "p".concat(q, "r"), y = decode(4); for (var i = 0; i < n; f(), i++) g();`)
	require.NoError(t, err)
	opts := []Option{WithUnsafe(), WithDecoders(decoders(t))}

	result, err := Deobfuscate(context.Background(), program, opts...)
	require.NoError(t, err)
	require.Positive(t, result.Total())
	first := ast.Format(program)

	result, err = Deobfuscate(context.Background(), program, opts...)
	require.NoError(t, err)
	require.Zero(t, result.Total())
	require.Equal(t, first, ast.Format(program))
}

func passNames(r *transform.Result) []string {
	var out []string
	for _, p := range r.Passes {
		out = append(out, p.Name)
	}
	return out
}

func names(ts []*transform.Transform) []string {
	var out []string
	for _, t := range ts {
		out = append(out, t.Name)
	}
	return out
}
