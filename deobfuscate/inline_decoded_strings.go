package deobfuscate

import (
	"fmt"

	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/match"
	"github.com/deepnoodle-ai/untangle/sandbox"
	"github.com/deepnoodle-ai/untangle/transform"
	"github.com/deepnoodle-ai/untangle/traverse"
)

// Options is the config of the inline-decoded-strings transform.
type Options struct {
	Decoders *Catalog
	// Sandbox evaluates decoders. A default sandbox is used when nil.
	Sandbox *sandbox.Sandbox
}

// InlineDecodedStrings replaces calls to cataloged decoders with the string
// they return:
//
//	decode(21)  =>  "42"
//
// Only calls whose arguments are all string or numeric literals are
// evaluated. Calls that fail to evaluate are left alone. Decoders run
// untrusted code, so the transform is unsafe.
func InlineDecodedStrings() *transform.Transform {
	return &transform.Transform{
		Name:    "inline-decoded-strings",
		Tags:    []transform.Tag{transform.Unsafe},
		Visitor: inlineVisitor,
	}
}

func inlineVisitor(config any) traverse.Visitor {
	opts, ok := config.(*Options)
	if !ok || opts == nil || opts.Decoders.Len() == 0 {
		return traverse.Visitor{}
	}
	sb := opts.Sandbox
	if sb == nil {
		sb = sandbox.New()
	}

	decoderCall := match.Call(
		match.Identifier(match.Func[string](opts.Decoders.Has)),
		match.Each(match.Or(match.AnyString(), match.NumericLiteral(nil))),
	)

	type outcome struct {
		value string
		ok    bool
	}
	memo := map[string]outcome{}

	return traverse.Visitor{
		ast.CallExpression: {Exit: func(p *traverse.Path, s *traverse.State) {
			if !decoderCall.Match(p.Node()) {
				return
			}
			call := p.Node().(*ast.Call)
			decoder, _ := opts.Decoders.Lookup(call.Callee.(*ast.Ident).Name)
			args := literalArgs(call.Args)

			key := fmt.Sprintf("%s%#v", decoder.Name, args)
			result, seen := memo[key]
			if !seen {
				value, err := sb.Call(s.Context(), decoder.Source, decoder.Name, args...)
				if err != nil {
					s.Logger().Debug().Err(err).
						Str("decoder", decoder.Name).
						Str("call", ast.Format(call)).
						Msg("decoder evaluation failed")
				}
				result = outcome{value: value, ok: err == nil}
				memo[key] = result
			}
			if !result.ok {
				return
			}
			p.Replace(&ast.String{Value: result.value})
			s.Changes++
		}},
	}
}

func literalArgs(exprs []ast.Expr) []any {
	args := make([]any, len(exprs))
	for i, e := range exprs {
		switch lit := e.(type) {
		case *ast.String:
			args[i] = lit.Value
		case *ast.Number:
			args[i] = lit.Value
		}
	}
	return args
}
