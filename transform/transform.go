// Package transform defines rewrite passes and the pipeline that runs them to
// a fixed point.
package transform

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/traverse"
)

// Tag classifies a transform. Only transforms whose tags are all enabled are
// run by a pipeline.
type Tag string

const (
	// Safe transforms preserve program behavior.
	Safe Tag = "safe"
	// Unsafe transforms rely on heuristics or evaluate program code.
	Unsafe Tag = "unsafe"
)

// Transform is a named rewrite pass.
type Transform struct {
	// Name is unique within a registry, e.g. "sequence".
	Name string

	// Tags must all be enabled for the pipeline to select the transform.
	Tags []Tag

	// Visitor builds the visitor for one traversal. Config carries
	// pass-specific data such as a decoder catalog and is nil otherwise.
	Visitor func(config any) traverse.Visitor
}

// HasTag reports whether t carries tag.
func (t *Transform) HasTag(tag Tag) bool {
	return slices.Contains(t.Tags, tag)
}

// Run applies the transform to root once and returns the number of changes.
func (t *Transform) Run(ctx context.Context, root ast.Node, config any, log zerolog.Logger) int {
	return traverse.Traverse(ctx, root, t.Visitor(config), log)
}

func (t *Transform) enabledBy(tags []Tag) bool {
	for _, tag := range t.Tags {
		if !slices.Contains(tags, tag) {
			return false
		}
	}
	return true
}
