// Package listener drives a coverage session and its report generators from
// the lifecycle signals of a spec-style test runner.
package listener

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/coverage"
	"github.com/zjy-dev/covspec/internal/logger"
	"github.com/zjy-dev/covspec/internal/report"
)

// DisabledMessage is written at suite end, in verbose mode, when no coverage
// backend was detected.
const DisabledMessage = "Did not detect a coverage backend. No code coverage will be generated."

// IO is the console the listener reports to.
type IO interface {
	WriteLine(text string)
	IsVerbose() bool
	// IsDecorated reports whether color output is enabled.
	IsDecorated() bool
}

// Example identifies one example of a specification.
type Example struct {
	Specification string
	Name          string
}

// Label returns the session label of the example, "<specification>::<example>".
// Reports use it to map coverage back to the example that produced it.
func (e Example) Label() string {
	return e.Specification + "::" + e.Name
}

// Option configures a Listener at construction.
type Option func(*Listener)

// WithProbe replaces the coverage backend probe (coverage.Detect by default).
func WithProbe(probe func() bool) Option {
	return func(l *Listener) {
		l.probe = probe
	}
}

// Listener measures every example and writes the configured reports when the
// suite ends. It is not safe for concurrent use: the host calls it sequentially.
type Listener struct {
	io         IO
	session    coverage.Session
	generators report.Generators
	probe      func() bool

	options config.Options
	enabled bool
}

// New creates a Listener with the default options. The backend probe runs
// once, here.
func New(io IO, session coverage.Session, generators report.Generators, opts ...Option) *Listener {
	l := &Listener{
		io:         io,
		session:    session,
		generators: generators,
		probe:      coverage.Detect,
		options:    config.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.enabled = l.probe()
	logger.Debug("listener created", "enabled", l.enabled)
	return l
}

// Configure overlays raw on the built-in defaults and replaces the active
// options with the result. Format names are not checked against the generators.
func (l *Listener) Configure(raw config.Raw) error {
	opts, err := config.Resolve(raw)
	if err != nil {
		return errors.Wrap(err, "failed to configure code coverage")
	}
	l.options = opts
	return nil
}

// SetOptions replaces the active options.
func (l *Listener) SetOptions(opts config.Options) {
	l.options = opts
}

// Options returns the active options.
func (l *Listener) Options() config.Options {
	return l.options
}

// Enabled reports whether a coverage backend was detected at construction.
func (l *Listener) Enabled() bool {
	return l.enabled
}

// BeforeSuite applies the source filter lists to the session: directories
// before files, includes before excludes.
func (l *Listener) BeforeSuite() error {
	if !l.enabled {
		return nil
	}
	filter := l.session.Filter()
	for _, dir := range l.options.Whitelist {
		filter.AddIncludedDirectory(dir)
	}
	for _, dir := range l.options.Blacklist {
		filter.RemoveIncludedDirectory(dir)
	}
	for _, file := range l.options.WhitelistFiles {
		filter.AddIncludedFile(file)
	}
	for _, file := range l.options.BlacklistFiles {
		filter.RemoveIncludedFile(file)
	}
	return nil
}

// BeforeExample starts measuring ex.
func (l *Listener) BeforeExample(ex Example) error {
	if !l.enabled {
		return nil
	}
	if err := l.session.Start(ex.Label()); err != nil {
		return errors.Wrapf(err, "failed to start coverage for %s", ex.Label())
	}
	return nil
}

// AfterExample stops measuring the running example. The host must call it
// once for every BeforeExample, whatever the outcome of the example.
func (l *Listener) AfterExample(ex Example) error {
	if !l.enabled {
		return nil
	}
	if err := l.session.Stop(); err != nil {
		return errors.Wrapf(err, "failed to stop coverage for %s", ex.Label())
	}
	return nil
}

// AfterSuite runs the generator of every configured format, in order.
// The text report is written to the console; every other generator writes
// to the output target configured for its format.
func (l *Listener) AfterSuite() error {
	if !l.enabled {
		if l.io.IsVerbose() {
			l.io.WriteLine(DisabledMessage)
		}
		return nil
	}

	if l.io.IsVerbose() {
		l.io.WriteLine("")
	}

	for _, format := range l.options.Format {
		if l.io.IsVerbose() {
			l.io.WriteLine(fmt.Sprintf("Generating code coverage report in %s format ...", format))
		}

		gen, err := l.generators.Lookup(format)
		if err != nil {
			return err
		}

		if format == report.FormatText {
			out, err := gen.Process(l.session, report.Target{Colorize: l.io.IsDecorated()})
			if err != nil {
				return errors.Wrap(err, "failed to generate text report")
			}
			l.io.WriteLine(out)
			continue
		}

		target := l.options.Target(format)
		logger.Debug("generating report", "format", format, "target", target)
		if _, err := gen.Process(l.session, report.Target{Path: target}); err != nil {
			return errors.Wrapf(err, "failed to generate %s report", format)
		}
	}
	return nil
}
