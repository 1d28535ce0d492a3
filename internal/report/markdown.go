package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nao1215/markdown"
	"github.com/spf13/afero"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/coverage"
)

func init() {
	Register(FormatMarkdown, func(opts config.Options, fs afero.Fs) (Generator, error) {
		return NewMarkdownGenerator(fs, opts), nil
	})
}

const defaultMarkdownTarget = "coverage.md"

// MarkdownGenerator writes a summary suitable for pull request comments.
type MarkdownGenerator struct {
	fs                 afero.Fs
	showUncoveredFiles bool
	showOnlySummary    bool
	now                func() time.Time
}

// NewMarkdownGenerator creates a MarkdownGenerator writing through fs.
func NewMarkdownGenerator(fs afero.Fs, opts config.Options) *MarkdownGenerator {
	return &MarkdownGenerator{
		fs:                 fs,
		showUncoveredFiles: opts.ShowUncoveredFiles,
		showOnlySummary:    opts.ShowOnlySummary,
		now:                time.Now,
	}
}

// Process writes the report to target.Path (default "coverage.md").
func (g *MarkdownGenerator) Process(session coverage.Session, target Target) (string, error) {
	path := targetOr(target.Path, defaultMarkdownTarget)
	data := session.Data()

	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)
	g.writeSummary(md, data)
	if !g.showOnlySummary {
		g.writeFiles(md, data)
	}
	if err := md.Build(); err != nil {
		return "", errors.Wrap(err, "failed to render markdown report")
	}

	return "", writeFile(g.fs, path, buf.Bytes())
}

func (g *MarkdownGenerator) writeSummary(md *markdown.Markdown, data *coverage.Data) {
	stats := data.Stats()

	md.H1("Code Coverage Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Generated", g.now().UTC().Format(time.RFC3339)},
			{"Lines", fmt.Sprintf("%.2f%% (%d/%d)", stats.CoveragePercentage, stats.TotalCoveredLines, stats.TotalLines)},
			{"Statements", fmt.Sprintf("%.2f%% (%d/%d)", stats.StatementPercentage(), stats.TotalCoveredStatements, stats.TotalStatements)},
			{"Files", strconv.Itoa(stats.Files)},
			{"Examples", strconv.Itoa(len(data.Tests()))},
		},
	})
	md.PlainText("")
}

func (g *MarkdownGenerator) writeFiles(md *markdown.Markdown, data *coverage.Data) {
	var rows [][]string
	for _, fd := range data.Files() {
		s := fd.Stats()
		if !g.showUncoveredFiles && s.TotalCoveredLines == 0 {
			continue
		}
		rows = append(rows, []string{
			"`" + fd.Path + "`",
			fmt.Sprintf("%.2f%%", s.CoveragePercentage),
			fmt.Sprintf("%.2f%%", s.StatementPercentage()),
		})
	}
	if len(rows) == 0 {
		return
	}

	md.H2("Files")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"File", "Lines", "Statements"},
		Rows:   rows,
	})
}
