// Package extension assembles the coverage listener from a raw option record.
package extension

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/coverage"
	"github.com/zjy-dev/covspec/internal/listener"
	"github.com/zjy-dev/covspec/internal/logger"
	"github.com/zjy-dev/covspec/internal/report"
)

// Dependencies are the host services the extension is built on.
type Dependencies struct {
	IO listener.IO
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Probe defaults to coverage.Detect.
	Probe func() bool
	// WorkDir is the module root; it defaults to the current directory.
	WorkDir string
}

// Extension is a configured listener together with its collaborators.
type Extension struct {
	Listener   *listener.Listener
	Session    *coverage.ProfileSession
	Generators report.Generators
	Options    config.Options
}

// Load resolves raw against the defaults and wires the session, the
// generators and the listener. Formats without a registered generator are
// left out so that the listener reports them when the suite ends.
func Load(raw config.Raw, deps Dependencies) (*Extension, error) {
	if deps.IO == nil {
		return nil, errors.New("extension requires an IO")
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get working directory")
		}
		deps.WorkDir = wd
	}

	opts, err := config.Resolve(raw)
	if err != nil {
		return nil, err
	}

	module := opts.Module
	if module == "" {
		module, err = coverage.ModulePath(deps.Fs, deps.WorkDir)
		if err != nil {
			logger.Warn("module path unknown, reporting profile file names as is", "err", err)
			module = ""
		}
	}

	profile := opts.Profile
	if !filepath.IsAbs(profile) {
		profile = filepath.Join(deps.WorkDir, profile)
	}
	session := coverage.NewProfileSession(deps.Fs, profile, module)

	gens, err := report.Build(opts, deps.Fs)
	if err != nil {
		return nil, err
	}

	var listenerOpts []listener.Option
	if deps.Probe != nil {
		listenerOpts = append(listenerOpts, listener.WithProbe(deps.Probe))
	}
	l := listener.New(deps.IO, session, gens, listenerOpts...)
	l.SetOptions(opts)

	logger.Debug("extension loaded", "formats", opts.Format, "profile", profile, "module", module)
	return &Extension{
		Listener:   l,
		Session:    session,
		Generators: gens,
		Options:    opts,
	}, nil
}
