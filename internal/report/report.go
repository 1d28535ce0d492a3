package report

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/zjy-dev/covspec/internal/coverage"
)

// Known report formats. Any other name can be registered and looked up too.
const (
	FormatText     = "text"
	FormatHTML     = "html"
	FormatClover   = "clover"
	FormatXML      = "xml"
	FormatYAML     = "yaml"
	FormatProfile  = "profile"
	FormatMarkdown = "markdown"
)

// ErrFormatNotFound is returned when no generator exists for a format.
var ErrFormatNotFound = errors.New("report format not found")

// Target tells a generator where its output goes.
// File based generators use Path; the text generator uses Colorize and
// returns the rendered report instead of writing it.
type Target struct {
	Path     string
	Colorize bool
}

// Generator renders the coverage of a session in one format.
type Generator interface {
	// Process renders the report. File based generators write to target.Path
	// and return an empty string.
	Process(session coverage.Session, target Target) (string, error)
}

// Generators maps format names to generators.
type Generators map[string]Generator

// Lookup returns the generator registered for format.
func (g Generators) Lookup(format string) (Generator, error) {
	gen, ok := g[format]
	if !ok || gen == nil {
		return nil, errors.WithHintf(
			errors.Wrapf(ErrFormatNotFound, "no generator for format %q", format),
			"known formats: %s", strings.Join(Registered(), ", "),
		)
	}
	return gen, nil
}

// targetOr returns path, or def when path is empty.
func targetOr(path, def string) string {
	if path == "" {
		return def
	}
	return path
}
