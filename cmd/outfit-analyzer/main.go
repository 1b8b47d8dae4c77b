// Command outfit-analyzer analyzes garment photos and recommends outfits.
//
// It runs as an HTTP API (serve), as an MCP server on stdio (mcp), or
// analyzes a single file from the command line (analyze).
package main

import (
	"os"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
