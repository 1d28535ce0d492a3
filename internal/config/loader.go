package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// SectionName is the top-level key holding the code coverage options.
const SectionName = "code_coverage"

// ConfigName is the base name searched for when no explicit path is given.
const ConfigName = "covspec"

// Load reads the code_coverage section of a configuration file on the real filesystem.
// See LoadWithFs.
func Load(path string) (Raw, error) {
	return LoadWithFs(path, afero.NewOsFs())
}

// LoadWithFs reads the code_coverage section of a YAML configuration file.
// With an empty path it looks for covspec.yml in ".", "configs" and "../configs"
// and returns an empty record when none exists. An explicit path must exist.
func LoadWithFs(path string, fs afero.Fs) (Raw, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
		v.AddConfigPath("../configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return Raw{}, nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if !v.IsSet(SectionName) {
		return Raw{}, nil
	}
	raw := Raw(v.GetStringMap(SectionName))
	// viper lowercases map keys, so output keys only match lowercase format names.
	if formats, ok := raw[KeyFormat]; ok {
		raw[KeyFormat] = lowerFormats(formats)
	}
	return raw, nil
}

func lowerFormats(v any) any {
	switch t := v.(type) {
	case string:
		return strings.ToLower(t)
	case []any:
		return lo.Map(t, func(item any, _ int) any {
			if s, ok := item.(string); ok {
				return strings.ToLower(s)
			}
			return item
		})
	default:
		return v
	}
}
