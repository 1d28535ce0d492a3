// Package console implements the listener's IO on top of a writer.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Console writes lines to an output stream.
type Console struct {
	out       io.Writer
	verbose   bool
	decorated bool
}

// Option configures a Console.
type Option func(*Console)

// WithVerbose sets verbose mode.
func WithVerbose(v bool) Option {
	return func(c *Console) {
		c.verbose = v
	}
}

// WithDecorated forces color output on or off.
func WithDecorated(v bool) Option {
	return func(c *Console) {
		c.decorated = v
	}
}

// New creates a Console writing to out. Color output follows color.NoColor,
// which is false only on a terminal without NO_COLOR set.
func New(out io.Writer, opts ...Option) *Console {
	c := &Console{
		out:       out,
		decorated: !color.NoColor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stdout returns a Console writing to the standard output.
func Stdout(opts ...Option) *Console {
	return New(os.Stdout, opts...)
}

// WriteLine writes text followed by a newline.
func (c *Console) WriteLine(text string) {
	fmt.Fprintln(c.out, text)
}

// IsVerbose reports whether verbose mode is on.
func (c *Console) IsVerbose() bool {
	return c.verbose
}

// IsDecorated reports whether color output is enabled.
func (c *Console) IsDecorated() bool {
	return c.decorated
}

// Success writes a green status line.
func (c *Console) Success(format string, args ...any) {
	c.status(color.FgGreen, format, args...)
}

// Warning writes a yellow status line.
func (c *Console) Warning(format string, args ...any) {
	c.status(color.FgYellow, format, args...)
}

func (c *Console) status(attr color.Attribute, format string, args ...any) {
	s := color.New(attr)
	if c.decorated {
		s.EnableColor()
	} else {
		s.DisableColor()
	}
	c.WriteLine(s.Sprintf(format, args...))
}
