// Package unminify contains transforms that undo common minifier output.
package unminify

import "github.com/deepnoodle-ai/untangle/transform"

// Transforms returns the unminify transforms in their pipeline order.
func Transforms() []*transform.Transform {
	return []*transform.Transform{
		Sequence(),
		TemplateLiterals(),
	}
}
