// Package deobfuscate contains transforms that undo obfuscator output.
package deobfuscate

import "github.com/deepnoodle-ai/untangle/transform"

// Transforms returns the deobfuscate transforms in their pipeline order.
func Transforms() []*transform.Transform {
	return []*transform.Transform{
		InlineDecodedStrings(),
	}
}
