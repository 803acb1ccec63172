// Untangle rewrites obfuscated and minified JavaScript into readable code.
//
// Usage:
//
//	# Print the unminified form of a file
//	untangle bundle.min.js
//
//	# Enable unsafe passes and inline decoded strings
//	untangle --unsafe --decoders decoders.yaml obfuscated.js
//
//	# Process many files in parallel into a directory
//	untangle -j 8 -o out/ src/*.js
//
//	# List the available passes
//	untangle passes
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fatal(err)
	}
}
