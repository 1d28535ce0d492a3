package report

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/coverage"
)

func init() {
	Register(FormatYAML, func(opts config.Options, fs afero.Fs) (Generator, error) {
		return NewYAMLGenerator(fs), nil
	})
}

const defaultYAMLTarget = "coverage.yaml"

type yamlTotals struct {
	Files             int     `yaml:"files"`
	Lines             int     `yaml:"lines"`
	CoveredLines      int     `yaml:"covered_lines"`
	Percent           float64 `yaml:"percent"`
	Statements        int     `yaml:"statements"`
	CoveredStatements int     `yaml:"covered_statements"`
}

type yamlDump struct {
	Generated time.Time            `yaml:"generated"`
	Mode      string               `yaml:"mode"`
	Totals    yamlTotals           `yaml:"totals"`
	Tests     []string             `yaml:"tests"`
	Files     []*coverage.FileData `yaml:"files"`
}

// YAMLGenerator serializes the raw coverage data so other tools can merge or
// post-process it.
type YAMLGenerator struct {
	fs  afero.Fs
	now func() time.Time
}

// NewYAMLGenerator creates a YAMLGenerator writing through fs.
func NewYAMLGenerator(fs afero.Fs) *YAMLGenerator {
	return &YAMLGenerator{fs: fs, now: time.Now}
}

// Process writes the dump to target.Path (default "coverage.yaml").
func (g *YAMLGenerator) Process(session coverage.Session, target Target) (string, error) {
	path := targetOr(target.Path, defaultYAMLTarget)
	data := session.Data()
	stats := data.Stats()

	dump := yamlDump{
		Generated: g.now().UTC(),
		Mode:      data.Mode,
		Totals: yamlTotals{
			Files:             stats.Files,
			Lines:             stats.TotalLines,
			CoveredLines:      stats.TotalCoveredLines,
			Percent:           stats.CoveragePercentage,
			Statements:        stats.TotalStatements,
			CoveredStatements: stats.TotalCoveredStatements,
		},
		Tests: data.Tests(),
		Files: data.Files(),
	}

	out, err := yaml.Marshal(dump)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode yaml report")
	}
	return "", writeFile(g.fs, path, out)
}
