package report

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/coverage"
)

func init() {
	Register(FormatHTML, func(opts config.Options, fs afero.Fs) (Generator, error) {
		return NewHTMLGenerator(fs, opts), nil
	})
}

const defaultHTMLTarget = "coverage"

var htmlTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"pct": func(f float64) string { return fmt.Sprintf("%.2f%%", f) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Code Coverage</title>
<style>
body { font-family: sans-serif; }
.low { background: #f2dede; } .medium { background: #fcf8e3; } .high { background: #dff0d8; }
.covered { background: #dff0d8; } .uncovered { background: #f2dede; }
td, th { padding: 2px 8px; text-align: left; }
</style>
</head>
<body>
<h1>Code Coverage</h1>
<p>Generated {{.Generated}}</p>
<table>
<tr><th>File</th><th>Lines</th><th>Statements</th></tr>
<tr class="{{.Level .Total.CoveragePercentage}}"><td><strong>Total</strong></td><td>{{pct .Total.CoveragePercentage}} ({{.Total.TotalCoveredLines}}/{{.Total.TotalLines}})</td><td>{{pct .Total.StatementPercentage}} ({{.Total.TotalCoveredStatements}}/{{.Total.TotalStatements}})</td></tr>
{{- range .Files}}
<tr class="{{$.Level .Stats.CoveragePercentage}}"><td><a href="#{{.Anchor}}">{{.Path}}</a></td><td>{{pct .Stats.CoveragePercentage}} ({{.Stats.TotalCoveredLines}}/{{.Stats.TotalLines}})</td><td>{{pct .Stats.StatementPercentage}} ({{.Stats.TotalCoveredStatements}}/{{.Stats.TotalStatements}})</td></tr>
{{- end}}
</table>
{{- range .Files}}
<h2 id="{{.Anchor}}">{{.Path}}</h2>
<table>
<tr><th>Line</th><th>Hits</th><th>Covered by</th></tr>
{{- range .Lines}}
<tr class="{{if .Covered}}covered{{else}}uncovered{{end}}"><td>{{.Number}}</td><td>{{.Count}}</td><td>{{range $i, $t := .Tests}}{{if $i}}, {{end}}{{$t}}{{end}}</td></tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`))

type htmlFile struct {
	Path   string
	Anchor string
	Stats  coverage.CoverageStats
	Lines  []coverage.Line
}

type htmlPage struct {
	Generated string
	Total     coverage.CoverageStats
	Files     []htmlFile
	low, high float64
}

// Level returns the CSS class for a coverage percentage.
func (p htmlPage) Level(pct float64) string {
	switch {
	case pct < p.low:
		return "low"
	case pct >= p.high:
		return "high"
	default:
		return "medium"
	}
}

// HTMLGenerator writes a browsable report to index.html inside the target directory.
type HTMLGenerator struct {
	fs        afero.Fs
	low, high float64
	now       func() time.Time
}

// NewHTMLGenerator creates an HTMLGenerator writing through fs.
func NewHTMLGenerator(fs afero.Fs, opts config.Options) *HTMLGenerator {
	return &HTMLGenerator{
		fs:   fs,
		low:  float64(opts.LowerUpperBound),
		high: float64(opts.HighLowerBound),
		now:  time.Now,
	}
}

// Process renders the report into target.Path (default "coverage").
func (g *HTMLGenerator) Process(session coverage.Session, target Target) (string, error) {
	dir := targetOr(target.Path, defaultHTMLTarget)
	data := session.Data()

	page := htmlPage{
		Generated: g.now().Format(time.RFC3339),
		Total:     data.Stats(),
		low:       g.low,
		high:      g.high,
	}
	for i, fd := range data.Files() {
		page.Files = append(page.Files, htmlFile{
			Path:   fd.Path,
			Anchor: fmt.Sprintf("file-%d", i),
			Stats:  fd.Stats(),
			Lines:  fd.Lines(),
		})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, page); err != nil {
		return "", errors.Wrap(err, "failed to render html report")
	}
	return "", writeFile(g.fs, filepath.Join(dir, "index.html"), buf.Bytes())
}
