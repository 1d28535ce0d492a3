package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "covspec.yml")
	require.NoError(t, os.WriteFile(path, []byte(`code_coverage:
  format: clover
  output: build/clover.xml
  whitelist: [internal]
`), 0644))

	var out bytes.Buffer
	cmd := NewCovspecCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--config", path, "--no-color"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "code_coverage:")
	assert.Contains(t, out.String(), "clover: build/clover.xml")
	assert.Contains(t, out.String(), "- internal")
	assert.Contains(t, out.String(), "- vendor")
}

func TestConfigCommand_MissingFile(t *testing.T) {
	cmd := NewCovspecCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "--config", filepath.Join(t.TempDir(), "absent.yml")})
	assert.Error(t, cmd.Execute())
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "coverage.out")
	require.NoError(t, os.WriteFile(profile, []byte("mode: set\nexample.com/app/calc/calc.go:3.24,5.2 1 1\n"), 0644))
	yamlOut := filepath.Join(dir, "out", "coverage.yaml")
	cfg := filepath.Join(dir, "covspec.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("code_coverage:\n  format: yaml\n  output: "+yamlOut+"\n  whitelist: []\n  blacklist: []\n  module: example.com/app\n"), 0644))

	cmd := NewCovspecCommand()
	cmd.SetArgs([]string{"report", "--config", cfg, "--profile", profile, "--label", "ci::all"})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(yamlOut)
	require.NoError(t, err)
	assert.Contains(t, string(content), "calc/calc.go")
	assert.Contains(t, string(content), "ci::all")
}
