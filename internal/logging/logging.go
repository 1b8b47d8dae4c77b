// Package logging builds the root hclog logger shared by all components.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "outfit-analyzer"

// Options configures the root logger.
type Options struct {
	// Level is an hclog level name. Unknown or empty names select info.
	Level string

	// JSON switches to JSON lines output.
	JSON bool

	// Output defaults to stderr; stdout carries the MCP stream.
	Output io.Writer
}

// New creates the root logger.
func New(opts Options) hclog.Logger {
	level := hclog.LevelFromString(opts.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       Name,
		Level:      level,
		Output:     out,
		JSONFormat: opts.JSON,
	})
}
