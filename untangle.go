// Package untangle rewrites obfuscated and minified JavaScript back into
// readable code.
//
// A run parses the source, applies the selected passes to a fixed point and
// prints the result:
//
//	out, result, err := untangle.DeobfuscateSource(ctx, src, untangle.WithUnsafe())
//
// Passes tagged safe always run. Passes tagged unsafe can change behavior in
// rare cases and must be enabled with WithUnsafe.
package untangle

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/deobfuscate"
	"github.com/deepnoodle-ai/untangle/parser"
	"github.com/deepnoodle-ai/untangle/transform"
	"github.com/deepnoodle-ai/untangle/unminify"
)

// Transforms returns every built-in pass in its default pipeline order.
// Decoded strings are inlined first so the unminify passes see literals.
func Transforms() []*transform.Transform {
	var ts []*transform.Transform
	ts = append(ts, deobfuscate.Transforms()...)
	ts = append(ts, unminify.Transforms()...)
	return ts
}

// DefaultRegistry returns a registry holding the built-in passes.
func DefaultRegistry() *transform.Registry {
	r, err := transform.NewRegistry(Transforms()...)
	if err != nil {
		panic(fmt.Sprintf("untangle: invalid built-in registry: %v", err))
	}
	return r
}

// Parse parses source into a program tree.
func Parse(ctx context.Context, source string, opts ...Option) (*ast.Program, error) {
	o := collectOptions(opts...)
	var parserOpts []parser.Option
	if o.filename != "" {
		parserOpts = append(parserOpts, parser.WithFilename(o.filename))
	}
	return parser.Parse(ctx, source, parserOpts...)
}

// Deobfuscate rewrites program in place. The returned result holds the
// per-pass change counts. A run that hits the iteration cap is not an error;
// check Result.Converged.
func Deobfuscate(ctx context.Context, program *ast.Program, opts ...Option) (*transform.Result, error) {
	o := collectOptions(opts...)
	registry := o.registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	passes, err := registry.Select(o.passes, o.tags())
	if err != nil {
		return nil, err
	}
	if o.decoders.Len() > 0 && !o.unsafe {
		o.log.Warn().Msg("decoders supplied without unsafe passes enabled; strings will not be inlined")
	}
	return transform.New(passes, o.pipelineOpts()...).Run(ctx, program)
}

// DeobfuscateSource parses source, rewrites it and returns the printed
// result.
func DeobfuscateSource(ctx context.Context, source string, opts ...Option) (string, *transform.Result, error) {
	program, err := Parse(ctx, source, opts...)
	if err != nil {
		return "", nil, err
	}
	result, err := Deobfuscate(ctx, program, opts...)
	if err != nil {
		return "", result, err
	}
	return ast.Format(program), result, nil
}
