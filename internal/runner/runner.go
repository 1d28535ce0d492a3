// Package runner runs Go tests one at a time and reports each one to the
// coverage listener as an example.
package runner

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/zjy-dev/covspec/internal/exec"
	"github.com/zjy-dev/covspec/internal/listener"
	"github.com/zjy-dev/covspec/internal/logger"
)

// Lifecycle receives the suite and example signals.
type Lifecycle interface {
	BeforeSuite() error
	BeforeExample(ex listener.Example) error
	AfterExample(ex listener.Example) error
	AfterSuite() error
}

// Config holds configuration for the runner.
type Config struct {
	Executor  exec.Executor
	Lifecycle Lifecycle

	// Dir is the module root the go command runs in.
	Dir string
	// Profile is the cover profile every test run writes, relative to Dir.
	Profile string
	// CoverPkg is passed to -coverpkg; empty measures only the tested package.
	CoverPkg string
	// GoBin is the go command (default "go").
	GoBin string
}

// Result lists the examples by outcome.
type Result struct {
	Passed []listener.Example
	Failed []listener.Example
}

// OK reports whether every example passed.
func (r Result) OK() bool {
	return len(r.Failed) == 0
}

// Runner drives a suite run.
type Runner struct {
	cfg Config
}

// New creates a Runner.
func New(cfg Config) *Runner {
	if cfg.GoBin == "" {
		cfg.GoBin = "go"
	}
	return &Runner{cfg: cfg}
}

var testName = regexp.MustCompile(`^(Test|Example|Fuzz)\w*$`)

// Run executes every test of packages as one example each, in the order
// `go test -list` prints them. AfterExample is called for every started
// example, and AfterSuite once all examples ran.
func (r *Runner) Run(ctx context.Context, packages []string) (Result, error) {
	var result Result
	if len(packages) == 0 {
		packages = []string{"./..."}
	}

	examples, err := r.list(ctx, packages)
	if err != nil {
		return result, err
	}
	logger.Infof("Found %d examples in %d package patterns", len(examples), len(packages))

	if err := r.cfg.Lifecycle.BeforeSuite(); err != nil {
		return result, err
	}

	for _, ex := range examples {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, "suite interrupted")
		}

		passed, err := r.runExample(ctx, ex)
		if err != nil {
			return result, err
		}
		if passed {
			result.Passed = append(result.Passed, ex)
		} else {
			logger.Warnf("Example %s failed", ex.Label())
			result.Failed = append(result.Failed, ex)
		}
	}

	if err := r.cfg.Lifecycle.AfterSuite(); err != nil {
		return result, err
	}
	return result, nil
}

func (r *Runner) runExample(ctx context.Context, ex listener.Example) (bool, error) {
	if err := r.cfg.Lifecycle.BeforeExample(ex); err != nil {
		return false, err
	}

	res, runErr := r.cfg.Executor.Run(ctx, r.testCommand(ex))
	if afterErr := r.cfg.Lifecycle.AfterExample(ex); afterErr != nil {
		return false, errors.CombineErrors(afterErr, runErr)
	}
	if runErr != nil {
		return false, errors.Wrapf(runErr, "failed to run %s", ex.Label())
	}
	return res.Success(), nil
}

func (r *Runner) testCommand(ex listener.Example) exec.Command {
	args := []string{
		"test",
		"-count=1",
		"-run", "^" + regexp.QuoteMeta(ex.Name) + "$",
		"-coverprofile=" + r.profilePath(),
	}
	if r.cfg.CoverPkg != "" {
		args = append(args, "-coverpkg="+r.cfg.CoverPkg)
	}
	args = append(args, ex.Specification)
	return exec.Command{Name: r.cfg.GoBin, Args: args, Dir: r.cfg.Dir}
}

func (r *Runner) profilePath() string {
	if filepath.IsAbs(r.cfg.Profile) || r.cfg.Dir == "" {
		return r.cfg.Profile
	}
	return filepath.Join(r.cfg.Dir, r.cfg.Profile)
}

// list resolves packages and their tests. The specification of an example is
// its import path.
func (r *Runner) list(ctx context.Context, patterns []string) ([]listener.Example, error) {
	pkgs, err := r.goOutput(ctx, append([]string{"list"}, patterns...))
	if err != nil {
		return nil, err
	}

	var examples []listener.Example
	for _, pkg := range pkgs {
		names, err := r.goOutput(ctx, []string{"test", "-list", ".", pkg})
		if err != nil {
			return nil, err
		}
		names = lo.Filter(names, func(name string, _ int) bool {
			return testName.MatchString(name)
		})
		for _, name := range names {
			examples = append(examples, listener.Example{Specification: pkg, Name: name})
		}
	}
	return examples, nil
}

// goOutput runs the go command and returns its non-empty stdout lines.
func (r *Runner) goOutput(ctx context.Context, args []string) ([]string, error) {
	cmd := exec.Command{Name: r.cfg.GoBin, Args: args, Dir: r.cfg.Dir}
	res, err := r.cfg.Executor.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, errors.Newf("%s exited with status %d: %s", cmd, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	lines := lo.Map(strings.Split(res.Stdout, "\n"), func(l string, _ int) string {
		return strings.TrimSpace(l)
	})
	return lo.Compact(lines), nil
}
