// Package parser turns JavaScript source into the syntax tree used by the
// transforms.
//
// Parsing itself is done by the ECMAScript 5 parser of
// github.com/robertkrimen/otto. This package converts otto's tree into an
// ast.Program and reports constructs the rewrite engine does not model, such
// as labelled statements or accessor properties, as syntax errors.
package parser

import (
	"context"
	"errors"

	ottoast "github.com/robertkrimen/otto/ast"
	ottoparser "github.com/robertkrimen/otto/parser"

	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/errz"
)

// DefaultMaxDepth is the default maximum nesting depth of the converted tree.
const DefaultMaxDepth = 1000

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name used in error messages.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth. This prevents stack overflow
// on deeply nested input.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// Parser converts one source file. A Parser should be used only once.
type Parser struct {
	ctx      context.Context
	filename string
	depth    int
	maxDepth int
}

// New returns a Parser configured with the given options.
func New(options ...Option) *Parser {
	p := &Parser{maxDepth: DefaultMaxDepth}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Parse the provided input as JavaScript source and return the tree. This is
// shorthand for New(options...).Parse(ctx, input).
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	return New(options...).Parse(ctx, input)
}

// Parse parses input. Syntax errors, including unsupported constructs, are
// returned as errz.ErrSyntax errors.
func (p *Parser) Parse(ctx context.Context, input string) (program *ast.Program, err error) {
	p.ctx = ctx
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := ottoparser.ParseFile(nil, p.filename, input, 0)
	if err != nil {
		return nil, p.syntaxError(err)
	}

	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(conversionError)
			if !ok {
				panic(r)
			}
			program, err = nil, ce.err
		}
	}()
	program = &ast.Program{Body: p.stmts(parsed.Body)}
	return program, nil
}

// conversionError carries an error out of the recursive conversion.
type conversionError struct {
	err error
}

func (p *Parser) fail(format string, args ...any) {
	msg := errz.Newf(errz.ErrSyntax, format, args...)
	if p.filename != "" {
		msg.Message = p.filename + ": " + msg.Message
	}
	panic(conversionError{err: msg})
}

func (p *Parser) enter() {
	p.depth++
	if p.depth > p.maxDepth {
		p.fail("maximum nesting depth of %d exceeded", p.maxDepth)
	}
	if p.depth%64 == 0 {
		if err := p.ctx.Err(); err != nil {
			panic(conversionError{err: err})
		}
	}
}

func (p *Parser) leave() { p.depth-- }

func (p *Parser) syntaxError(err error) error {
	var list *ottoparser.ErrorList
	if errors.As(err, &list) && list.Len() > 0 {
		first := (*list)[0]
		e := errz.Newf(errz.ErrSyntax, "%d:%d: %s", first.Position.Line, first.Position.Column, first.Message)
		if p.filename != "" {
			e.Message = p.filename + ":" + e.Message
		}
		if list.Len() > 1 {
			e.Message += " (and more errors)"
		}
		return e
	}
	return errz.New(errz.ErrSyntax, "parse failed").WithCause(err)
}

func position(n ottoast.Node) int {
	if n == nil {
		return 0
	}
	return int(n.Idx0())
}
