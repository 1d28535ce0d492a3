package report

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/logger"
)

// Factory creates a generator from the resolved options.
// Generators that write files must do so through fs.
type Factory func(opts config.Options, fs afero.Fs) (Generator, error)

var (
	registry = make(map[string]Factory)
)

// Register adds a generator factory to the registry.
func Register(format string, factory Factory) {
	registry[format] = factory
}

// New creates a generator by format name.
func New(format string, opts config.Options, fs afero.Fs) (Generator, error) {
	factory, ok := registry[format]
	if !ok {
		return nil, errors.Wrapf(ErrFormatNotFound, "no generator registered for %q", format)
	}
	return factory(opts, fs)
}

// Registered returns the registered format names in sorted order.
func Registered() []string {
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}

// Build creates a generator for every configured format that has a factory.
// Formats without one are left out, so the failure surfaces when the report
// is generated rather than at configuration time.
func Build(opts config.Options, fs afero.Fs) (Generators, error) {
	gens := make(Generators, len(opts.Format))
	for _, format := range opts.Format {
		if _, ok := registry[format]; !ok {
			logger.Warn("no generator registered for format", "format", format)
			continue
		}
		gen, err := New(format, opts, fs)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create %s generator", format)
		}
		gens[format] = gen
	}
	return gens, nil
}
