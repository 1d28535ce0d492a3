package runner

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/covspec/internal/exec"
	"github.com/zjy-dev/covspec/internal/listener"
)

// fakeExecutor answers go commands from a table keyed by the joined arguments.
type fakeExecutor struct {
	responses map[string]*exec.ExecutionResult
	errs      map[string]error
	commands  []exec.Command
	events    *[]string
}

func (f *fakeExecutor) Run(_ context.Context, cmd exec.Command) (*exec.ExecutionResult, error) {
	f.commands = append(f.commands, cmd)
	key := strings.Join(cmd.Args, " ")
	if f.events != nil && cmd.Args[0] == "test" && !strings.Contains(key, "-list") {
		*f.events = append(*f.events, "run "+key)
	}
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	if res, ok := f.responses[key]; ok {
		return res, nil
	}
	return &exec.ExecutionResult{}, nil
}

type recordingLifecycle struct {
	events   []string
	afterErr error
}

func (r *recordingLifecycle) BeforeSuite() error {
	r.events = append(r.events, "beforeSuite")
	return nil
}

func (r *recordingLifecycle) BeforeExample(ex listener.Example) error {
	r.events = append(r.events, "beforeExample "+ex.Label())
	return nil
}

func (r *recordingLifecycle) AfterExample(ex listener.Example) error {
	r.events = append(r.events, "afterExample "+ex.Label())
	return r.afterErr
}

func (r *recordingLifecycle) AfterSuite() error {
	r.events = append(r.events, "afterSuite")
	return nil
}

const (
	runAdd = "test -count=1 -run ^TestAdd$ -coverprofile=/mod/coverage.out example.com/app/calc"
	runSub = "test -count=1 -run ^TestSub$ -coverprofile=/mod/coverage.out example.com/app/calc"
)

func newFixture() (*fakeExecutor, *recordingLifecycle) {
	lc := &recordingLifecycle{}
	ex := &fakeExecutor{
		responses: map[string]*exec.ExecutionResult{
			"list ./...": {Stdout: "example.com/app/calc\nexample.com/app/cmd\n"},
			"test -list . example.com/app/calc": {
				Stdout: "TestAdd\nTestSub\nok  \texample.com/app/calc\t0.002s\n",
			},
			"test -list . example.com/app/cmd": {
				Stdout: "ok  \texample.com/app/cmd\t0.001s [no tests to run]\n",
			},
			runSub: {ExitCode: 1, Stdout: "--- FAIL: TestSub"},
		},
		errs:   map[string]error{},
		events: &lc.events,
	}
	return ex, lc
}

func TestRunner_Run(t *testing.T) {
	executor, lc := newFixture()
	r := New(Config{Executor: executor, Lifecycle: lc, Dir: "/mod", Profile: "coverage.out"})

	result, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []listener.Example{{Specification: "example.com/app/calc", Name: "TestAdd"}}, result.Passed)
	assert.Equal(t, []listener.Example{{Specification: "example.com/app/calc", Name: "TestSub"}}, result.Failed)
	assert.False(t, result.OK())

	assert.Equal(t, []string{
		"beforeSuite",
		"beforeExample example.com/app/calc::TestAdd",
		"run " + runAdd,
		"afterExample example.com/app/calc::TestAdd",
		"beforeExample example.com/app/calc::TestSub",
		"run " + runSub,
		"afterExample example.com/app/calc::TestSub",
		"afterSuite",
	}, lc.events)

	for _, cmd := range executor.commands {
		assert.Equal(t, "go", cmd.Name)
		assert.Equal(t, "/mod", cmd.Dir)
	}
}

func TestRunner_CoverPkgAndAbsoluteProfile(t *testing.T) {
	executor, lc := newFixture()
	r := New(Config{
		Executor:  executor,
		Lifecycle: lc,
		Dir:       "/mod",
		Profile:   "/tmp/c.out",
		CoverPkg:  "./...",
		GoBin:     "/usr/local/go/bin/go",
	})

	cmd := r.testCommand(listener.Example{Specification: "example.com/app/calc", Name: "TestAdd"})
	assert.Equal(t, "/usr/local/go/bin/go", cmd.Name)
	assert.Equal(t, []string{
		"test", "-count=1", "-run", "^TestAdd$", "-coverprofile=/tmp/c.out", "-coverpkg=./...", "example.com/app/calc",
	}, cmd.Args)
}

func TestRunner_AfterExampleAlwaysCalled(t *testing.T) {
	executor, lc := newFixture()
	boom := errors.New("exec failed")
	executor.errs[runAdd] = boom
	r := New(Config{Executor: executor, Lifecycle: lc, Dir: "/mod", Profile: "coverage.out"})

	_, err := r.Run(context.Background(), []string{"./..."})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []string{
		"beforeSuite",
		"beforeExample example.com/app/calc::TestAdd",
		"run " + runAdd,
		"afterExample example.com/app/calc::TestAdd",
	}, lc.events)
}

func TestRunner_AfterExampleError(t *testing.T) {
	executor, lc := newFixture()
	lc.afterErr = errors.New("stop failed")
	r := New(Config{Executor: executor, Lifecycle: lc, Dir: "/mod", Profile: "coverage.out"})

	_, err := r.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lc.afterErr))
	assert.NotContains(t, lc.events, "afterSuite")
}

func TestRunner_ListFailure(t *testing.T) {
	executor, lc := newFixture()
	executor.responses["list ./..."] = &exec.ExecutionResult{ExitCode: 1, Stderr: "no Go files\n"}
	r := New(Config{Executor: executor, Lifecycle: lc})

	_, err := r.Run(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Go files")
	assert.Empty(t, lc.events)
}

func TestRunner_Cancelled(t *testing.T) {
	executor, lc := newFixture()
	r := New(Config{Executor: executor, Lifecycle: lc, Dir: "/mod", Profile: "coverage.out"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"beforeSuite"}, lc.events)
}
