package unminify

import (
	"strings"

	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/internal/token"
	"github.com/deepnoodle-ai/untangle/match"
	"github.com/deepnoodle-ai/untangle/transform"
	"github.com/deepnoodle-ai/untangle/traverse"
)

// TemplateLiterals folds string concatenation back into template literals:
//
//	`a${b}` + "c"          =>  `a${b}c`
//	"a".concat(b, "c")     =>  `a${b}c`
//
// Multi-line string literals are promoted to templates first, since source
// code most likely wrote them as templates. The rewrite can change behavior
// for objects with a custom primitive conversion, so the transform is unsafe.
func TemplateLiterals() *transform.Transform {
	return &transform.Transform{
		Name:    "template-literals",
		Tags:    []transform.Tag{transform.Unsafe},
		Visitor: templateVisitor,
	}
}

// ConcatChain returns a matcher for calls of the form
// X.concat(...).concat(...) where X is a string or template literal. Chains
// of any length match.
func ConcatChain() match.Node {
	chain := match.Declare[ast.Node]()
	chain.Bind(match.Call(
		match.ConstMember(match.Or(match.AnyString(), match.TemplateLiteral(), chain), "concat"),
		match.Each(match.AnyExpression()),
	))
	return chain
}

func templateVisitor(any) traverse.Visitor {
	concat := ConcatChain()

	// receiverOfChain reports whether the node at p is the receiver of a
	// call that is itself a concat chain, in which case the outermost call
	// folds it.
	receiverOfChain := func(p *traverse.Path) bool {
		parent := p.Parent()
		if p.Key() != "Object" || parent == nil || parent.Key() != "Callee" || parent.Parent() == nil {
			return false
		}
		return concat.Match(parent.Parent().Node())
	}

	return traverse.Visitor{
		ast.StringLiteral: {Enter: func(p *traverse.Path, s *traverse.State) {
			str := p.Node().(*ast.String)
			if !isMultiline(str.Value) || receiverOfChain(p) {
				return
			}
			p.Replace(ast.NewTemplate(Escape(str.Value)))
			s.Changes++
		}},
		ast.BinaryExpression: {Exit: func(p *traverse.Path, s *traverse.State) {
			bin := p.Node().(*ast.Binary)
			if bin.Op != token.PLUS || receiverOfChain(p) {
				return
			}
			if left, ok := bin.X.(*ast.Template); ok {
				Append(left, bin.Y)
				p.Replace(left)
				s.Changes++
			} else if right, ok := bin.Y.(*ast.Template); ok {
				Prepend(right, bin.X)
				p.Replace(right)
				s.Changes++
			}
		}},
		ast.CallExpression: {Exit: func(p *traverse.Path, s *traverse.State) {
			if !concat.Match(p.Node()) || receiverOfChain(p) {
				return
			}
			tmpl := &ast.Template{Quasis: []string{""}}
			var current ast.Expr = p.Node().(*ast.Call)
			for {
				call, ok := current.(*ast.Call)
				if !ok {
					break
				}
				for i := len(call.Args) - 1; i >= 0; i-- {
					Prepend(tmpl, call.Args[i])
				}
				current = call.Callee.(*ast.Member).Object
			}
			Prepend(tmpl, current)
			p.Replace(tmpl)
			s.Changes++
		}},
	}
}

// isMultiline reports whether s has a line break with text on both sides.
func isMultiline(s string) bool {
	return strings.Contains(strings.Trim(s, "\n"), "\n")
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"$", `\$`,
	"\t", `\t`,
	"\r", `\r`,
)

// Escape returns s as raw template literal text.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Append adds value to the end of t. String literals and templates are merged
// into the adjacent text; other expressions become a new embedded slot.
func Append(t *ast.Template, value ast.Expr) {
	last := len(t.Quasis) - 1
	switch v := value.(type) {
	case *ast.String:
		t.Quasis[last] += Escape(v.Value)
	case *ast.Template:
		t.Quasis[last] += v.Quasis[0]
		t.Exprs = append(t.Exprs, v.Exprs...)
		t.Quasis = append(t.Quasis, v.Quasis[1:]...)
	default:
		t.Exprs = append(t.Exprs, value)
		t.Quasis = append(t.Quasis, "")
	}
}

// Prepend adds value to the start of t, mirroring Append.
func Prepend(t *ast.Template, value ast.Expr) {
	switch v := value.(type) {
	case *ast.String:
		t.Quasis[0] = Escape(v.Value) + t.Quasis[0]
	case *ast.Template:
		last := len(v.Quasis) - 1
		t.Quasis[0] = v.Quasis[last] + t.Quasis[0]
		t.Exprs = append(append([]ast.Expr(nil), v.Exprs...), t.Exprs...)
		t.Quasis = append(append([]string(nil), v.Quasis[:last]...), t.Quasis...)
	default:
		t.Exprs = append([]ast.Expr{value}, t.Exprs...)
		t.Quasis = append([]string{""}, t.Quasis...)
	}
}
