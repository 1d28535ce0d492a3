package coverage

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"golang.org/x/mod/modfile"
)

// EnvEnabled forces the backend probe on or off when set to a boolean value.
const EnvEnabled = "COVSPEC_ENABLED"

// Detect reports whether a coverage backend is available: the go tool must be
// on PATH unless COVSPEC_ENABLED says otherwise.
func Detect() bool {
	return DetectWith(os.Getenv, exec.LookPath)
}

// DetectWith is Detect with injectable environment and PATH lookups.
func DetectWith(getenv func(string) string, lookPath func(string) (string, error)) bool {
	if v := getenv(EnvEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			return enabled
		}
	}
	_, err := lookPath("go")
	return err == nil
}

// ModulePath reads the module path from the go.mod file in dir.
func ModulePath(fs afero.Fs, dir string) (string, error) {
	gomod := filepath.Join(dir, "go.mod")
	data, err := afero.ReadFile(fs, gomod)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", gomod)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", errors.Wrapf(ErrNoModule, "in %s", gomod)
	}
	return path, nil
}
