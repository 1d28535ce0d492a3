package extension

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/listener"
	"github.com/zjy-dev/covspec/internal/report"
)

type bufferIO struct {
	lines   []string
	verbose bool
}

func (b *bufferIO) WriteLine(text string) { b.lines = append(b.lines, text) }
func (b *bufferIO) IsVerbose() bool       { return b.verbose }
func (b *bufferIO) IsDecorated() bool     { return false }

func newFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/mod/go.mod", []byte("module example.com/app\n\ngo 1.22\n"), 0644))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	ext, err := Load(nil, Dependencies{IO: &bufferIO{}, Fs: newFs(t), Probe: func() bool { return true }, WorkDir: "/mod"})
	require.NoError(t, err)

	assert.Equal(t, config.DefaultOptions(), ext.Options)
	assert.Equal(t, ext.Options, ext.Listener.Options())
	assert.True(t, ext.Listener.Enabled())
	assert.Equal(t, "/mod/coverage.out", ext.Session.ProfilePath())
	assert.Equal(t, "example.com/app", ext.Session.ModulePath())
	assert.IsType(t, &report.HTMLGenerator{}, ext.Generators[report.FormatHTML])
}

func TestLoad_ExplicitModuleAndProfile(t *testing.T) {
	ext, err := Load(config.Raw{
		config.KeyModule:  "example.com/other",
		config.KeyProfile: "/tmp/c.out",
	}, Dependencies{IO: &bufferIO{}, Fs: afero.NewMemMapFs(), WorkDir: "/nowhere"})
	require.NoError(t, err)

	assert.Equal(t, "example.com/other", ext.Session.ModulePath())
	assert.Equal(t, "/tmp/c.out", ext.Session.ProfilePath())
}

func TestLoad_MissingGoMod(t *testing.T) {
	ext, err := Load(nil, Dependencies{IO: &bufferIO{}, Fs: afero.NewMemMapFs(), WorkDir: "/nowhere"})
	require.NoError(t, err)
	assert.Empty(t, ext.Session.ModulePath())
}

func TestLoad_InvalidOptions(t *testing.T) {
	_, err := Load(config.Raw{config.KeyOutput: []string{"coverage"}}, Dependencies{IO: &bufferIO{}, Fs: newFs(t), WorkDir: "/mod"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidOption))
}

func TestLoad_NumericOutput(t *testing.T) {
	ext, err := Load(config.Raw{config.KeyFormat: "html", config.KeyOutput: 2024},
		Dependencies{IO: &bufferIO{}, Fs: newFs(t), WorkDir: "/mod"})
	require.NoError(t, err)
	assert.Equal(t, "2024", ext.Options.Target(report.FormatHTML))
}

func TestLoad_RequiresIO(t *testing.T) {
	_, err := Load(nil, Dependencies{})
	assert.Error(t, err)
}

func TestLoad_UnknownFormatFailsAtSuiteEnd(t *testing.T) {
	ext, err := Load(config.Raw{config.KeyFormat: []string{"text", "php"}},
		Dependencies{IO: &bufferIO{}, Fs: newFs(t), Probe: func() bool { return true }, WorkDir: "/mod"})
	require.NoError(t, err)
	assert.Len(t, ext.Generators, 1)

	err = ext.Listener.AfterSuite()
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrFormatNotFound))
}

func TestLoad_EndToEnd(t *testing.T) {
	fs := newFs(t)
	io := &bufferIO{verbose: true}
	ext, err := Load(config.Raw{
		config.KeyFormat:    []string{"text", "clover"},
		config.KeyOutput:    map[string]any{"clover": "/mod/build/clover.xml"},
		config.KeyWhitelist: []string{"calc"},
		config.KeyBlacklist: []string{},
	}, Dependencies{IO: io, Fs: fs, Probe: func() bool { return true }, WorkDir: "/mod"})
	require.NoError(t, err)

	l := ext.Listener
	ex := listener.Example{Specification: "example.com/app/calc", Name: "TestAdd"}
	require.NoError(t, l.BeforeSuite())
	require.NoError(t, l.BeforeExample(ex))
	// what `go test -coverprofile` would have written
	require.NoError(t, afero.WriteFile(fs, "/mod/coverage.out", []byte(
		"mode: set\n"+
			"example.com/app/calc/calc.go:3.24,5.2 1 1\n"+
			"example.com/app/main.go:3.13,5.2 1 0\n"), 0644))
	require.NoError(t, l.AfterExample(ex))
	require.NoError(t, l.AfterSuite())

	require.Len(t, io.lines, 4)
	assert.Equal(t, "", io.lines[0])
	assert.Equal(t, "Generating code coverage report in text format ...", io.lines[1])
	assert.True(t, strings.HasPrefix(io.lines[2], "Code Coverage Report:"))
	assert.Contains(t, io.lines[2], "calc/calc.go")
	assert.NotContains(t, io.lines[2], "main.go")
	assert.Equal(t, "Generating code coverage report in clover format ...", io.lines[3])

	exists, err := afero.Exists(fs, "/mod/build/clover.xml")
	require.NoError(t, err)
	assert.True(t, exists)
}
