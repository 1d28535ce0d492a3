package config

import (
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// Keys accepted in the code_coverage section.
const (
	KeyWhitelist          = "whitelist"
	KeyBlacklist          = "blacklist"
	KeyWhitelistFiles     = "whitelist_files"
	KeyBlacklistFiles     = "blacklist_files"
	KeyOutput             = "output"
	KeyFormat             = "format"
	KeyLowerUpperBound    = "lower_upper_bound"
	KeyHighLowerBound     = "high_lower_bound"
	KeyShowUncoveredFiles = "show_uncovered_files"
	KeyShowOnlySummary    = "show_only_summary"
	KeyProfile            = "profile"
	KeyModule             = "module"
)

// ErrInvalidOption is returned when a raw option has a shape that cannot be normalized.
var ErrInvalidOption = errors.New("invalid code coverage option")

// Raw is a partial option record as supplied by the caller or a config file.
type Raw map[string]any

// Options holds the resolved code coverage configuration.
// A value is never mutated after Resolve returns it.
type Options struct {
	Whitelist      []string          `mapstructure:"whitelist" yaml:"whitelist"`
	Blacklist      []string          `mapstructure:"blacklist" yaml:"blacklist"`
	WhitelistFiles []string          `mapstructure:"whitelist_files" yaml:"whitelist_files"`
	BlacklistFiles []string          `mapstructure:"blacklist_files" yaml:"blacklist_files"`
	Output         map[string]string `mapstructure:"output" yaml:"output"`
	Format         []string          `mapstructure:"format" yaml:"format"`

	// Thresholds (in percent) used by the text report to color coverage levels.
	LowerUpperBound int `mapstructure:"lower_upper_bound" yaml:"lower_upper_bound"`
	HighLowerBound  int `mapstructure:"high_lower_bound" yaml:"high_lower_bound"`

	ShowUncoveredFiles bool `mapstructure:"show_uncovered_files" yaml:"show_uncovered_files"`
	ShowOnlySummary    bool `mapstructure:"show_only_summary" yaml:"show_only_summary"`

	// Profile is the cover profile each example writes; Module is the module
	// path stripped from profile file names. Empty Module means "read go.mod".
	Profile string `mapstructure:"profile" yaml:"profile"`
	Module  string `mapstructure:"module" yaml:"module"`
}

// Defaults returns a fresh copy of the built-in option record.
func Defaults() Raw {
	return Raw{
		KeyWhitelist:          []string{"src", "lib"},
		KeyBlacklist:          []string{"test", "vendor", "spec"},
		KeyWhitelistFiles:     []string{},
		KeyBlacklistFiles:     []string{},
		KeyOutput:             map[string]string{"html": "coverage"},
		KeyFormat:             []string{"html"},
		KeyLowerUpperBound:    35,
		KeyHighLowerBound:     70,
		KeyShowUncoveredFiles: true,
		KeyShowOnlySummary:    false,
		KeyProfile:            "coverage.out",
		KeyModule:             "",
	}
}

// DefaultOptions returns the options that result from an empty record.
func DefaultOptions() Options {
	opts, err := Resolve(nil)
	if err != nil {
		// The built-in record always decodes.
		panic(err)
	}
	return opts
}

// Merge overlays raw on the defaults. Only top-level keys are merged: a key the
// caller supplies replaces the default value completely.
func Merge(raw Raw) Raw {
	return Raw(lo.Assign(map[string]any(Defaults()), map[string]any(raw)))
}

// Normalize rewrites the shorthand forms of format and output:
// a bare format string becomes a one-element list, and a bare scalar output
// becomes a map keyed by the first configured format. Scalar targets are
// converted to strings.
// Formats are de-duplicated, keeping the first occurrence.
func Normalize(raw Raw) (Raw, error) {
	out := lo.Assign(map[string]any(raw))

	formats, err := toStrings(KeyFormat, raw[KeyFormat])
	if err != nil {
		return nil, err
	}
	formats = lo.Uniq(formats)
	out[KeyFormat] = formats

	switch v := raw[KeyOutput].(type) {
	case nil:
	case map[string]string:
	case map[string]any:
		targets := make(map[string]string, len(v))
		for format, target := range v {
			s, err := cast.ToStringE(target)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidOption, "output for %q must be a scalar, got %T", format, target)
			}
			targets[format] = s
		}
		out[KeyOutput] = targets
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidOption, "output must be a scalar or a map, got %T", v)
		}
		if len(formats) == 0 {
			return nil, errors.Wrapf(ErrInvalidOption, "output %q given without a format", s)
		}
		out[KeyOutput] = map[string]string{formats[0]: s}
	}

	return Raw(out), nil
}

// Decode converts a normalized record into Options.
func Decode(raw Raw) (Options, error) {
	var opts Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Options{}, errors.Wrap(err, "failed to create option decoder")
	}
	if err := decoder.Decode(map[string]any(raw)); err != nil {
		return Options{}, errors.Wrap(errors.Mark(err, ErrInvalidOption), "failed to decode code coverage options")
	}
	return opts, nil
}

// Resolve merges raw with the defaults, normalizes and decodes the result.
func Resolve(raw Raw) (Options, error) {
	normalized, err := Normalize(Merge(raw))
	if err != nil {
		return Options{}, err
	}
	return Decode(normalized)
}

// Target returns the output target configured for format, or "" if none is.
func (o Options) Target(format string) string {
	return o.Output[format]
}

// toStrings accepts a string, []string or []any of strings.
func toStrings(key string, v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidOption, "%s entries must be strings, got %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.Wrapf(ErrInvalidOption, "%s must be a string or a list, got %T", key, v)
	}
}
