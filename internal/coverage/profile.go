package coverage

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"golang.org/x/tools/cover"

	"github.com/zjy-dev/covspec/internal/logger"
)

// ProfileSession implements Session on top of Go cover profiles.
//
// Each example is expected to write a cover profile to profilePath
// (for instance via `go test -coverprofile`). Start removes the stale profile
// and Stop merges whatever the example wrote.
type ProfileSession struct {
	fs          afero.Fs
	profilePath string
	modulePath  string

	filter  *Filter
	data    *Data
	current string
	started bool
}

// NewProfileSession creates a session reading profiles from profilePath.
// modulePath is stripped from profile file names so that filter rules can be
// written relative to the module root; it may be empty.
func NewProfileSession(fs afero.Fs, profilePath, modulePath string) *ProfileSession {
	return &ProfileSession{
		fs:          fs,
		profilePath: profilePath,
		modulePath:  strings.TrimSuffix(modulePath, "/"),
		filter:      NewFilter(),
		data:        NewData(),
	}
}

// ProfilePath returns the path examples must write their profile to.
func (s *ProfileSession) ProfilePath() string {
	return s.profilePath
}

// ModulePath returns the module path stripped from profile file names.
func (s *ProfileSession) ModulePath() string {
	return s.modulePath
}

// Start begins a measurement attributed to label.
func (s *ProfileSession) Start(label string) error {
	if s.started {
		return errors.Wrapf(ErrSessionStarted, "cannot start %q while %q is running", label, s.current)
	}
	if err := s.fs.Remove(s.profilePath); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove stale profile %s", s.profilePath)
	}
	s.started = true
	s.current = label
	logger.Debug("coverage started", "label", label)
	return nil
}

// Stop ends the running measurement and merges the profile the example wrote.
// A missing profile means the example covered nothing.
func (s *ProfileSession) Stop() error {
	if !s.started {
		return ErrSessionNotStarted
	}
	label := s.current
	s.started = false
	s.current = ""

	f, err := s.fs.Open(s.profilePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no profile written", "label", label, "path", s.profilePath)
			return nil
		}
		return errors.Wrapf(err, "failed to open profile %s", s.profilePath)
	}
	defer f.Close()

	if err := s.merge(f, label); err != nil {
		return err
	}
	logger.Debug("coverage stopped", "label", label)
	return nil
}

// Import merges an existing profile, attributing executed blocks to label.
func (s *ProfileSession) Import(r io.Reader, label string) error {
	if s.started {
		return errors.Wrapf(ErrSessionStarted, "cannot import %q while %q is running", label, s.current)
	}
	return s.merge(r, label)
}

func (s *ProfileSession) merge(r io.Reader, label string) error {
	profiles, err := cover.ParseProfilesFromReader(r)
	if err != nil {
		return errors.Wrapf(err, "failed to parse cover profile for %q", label)
	}
	s.data.Merge(profiles, label, s.relPath)
	return nil
}

// Filter returns the filter applied by Data.
func (s *ProfileSession) Filter() FilterHandle {
	return s.filter
}

// Data returns the accumulated coverage of the files the filter includes.
func (s *ProfileSession) Data() *Data {
	data := s.data.Restrict(s.filter.IsIncluded)
	logger.Debug("coverage data filtered", "rules", s.filter.Len(), "files", len(data.files), "measured", len(s.data.files))
	return data
}

// relPath converts a profile file name into a module-relative path.
func (s *ProfileSession) relPath(name string) string {
	if s.modulePath == "" {
		return name
	}
	if rel, ok := strings.CutPrefix(name, s.modulePath+"/"); ok {
		return rel
	}
	return name
}
