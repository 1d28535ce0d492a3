package report

import (
	"encoding/xml"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/coverage"
)

func init() {
	Register(FormatClover, func(opts config.Options, fs afero.Fs) (Generator, error) {
		return NewCloverGenerator(fs, opts.Module), nil
	})
}

const defaultCloverTarget = "coverage.xml"

type cloverCoverage struct {
	XMLName   xml.Name      `xml:"coverage"`
	Generated int64         `xml:"generated,attr"`
	Project   cloverProject `xml:"project"`
}

type cloverProject struct {
	Timestamp int64         `xml:"timestamp,attr"`
	Name      string        `xml:"name,attr,omitempty"`
	Files     []cloverFile  `xml:"file"`
	Metrics   cloverMetrics `xml:"metrics"`
}

type cloverFile struct {
	Name    string        `xml:"name,attr"`
	Path    string        `xml:"path,attr"`
	Lines   []cloverLine  `xml:"line"`
	Metrics cloverMetrics `xml:"metrics"`
}

type cloverLine struct {
	Num   int    `xml:"num,attr"`
	Type  string `xml:"type,attr"`
	Count int    `xml:"count,attr"`
}

type cloverMetrics struct {
	Files             int `xml:"files,attr,omitempty"`
	Loc               int `xml:"loc,attr"`
	Ncloc             int `xml:"ncloc,attr"`
	Statements        int `xml:"statements,attr"`
	CoveredStatements int `xml:"coveredstatements,attr"`
	Elements          int `xml:"elements,attr"`
	CoveredElements   int `xml:"coveredelements,attr"`
}

func newCloverMetrics(s coverage.CoverageStats, files int) cloverMetrics {
	return cloverMetrics{
		Files:             files,
		Loc:               s.TotalLines,
		Ncloc:             s.TotalLines,
		Statements:        s.TotalStatements,
		CoveredStatements: s.TotalCoveredStatements,
		Elements:          s.TotalStatements,
		CoveredElements:   s.TotalCoveredStatements,
	}
}

// CloverGenerator writes a Clover XML report to a single file.
type CloverGenerator struct {
	fs      afero.Fs
	project string
	now     func() time.Time
}

// NewCloverGenerator creates a CloverGenerator; project names the report and may be empty.
func NewCloverGenerator(fs afero.Fs, project string) *CloverGenerator {
	return &CloverGenerator{fs: fs, project: project, now: time.Now}
}

// Process writes the report to target.Path (default "coverage.xml").
func (g *CloverGenerator) Process(session coverage.Session, target Target) (string, error) {
	path := targetOr(target.Path, defaultCloverTarget)
	data := session.Data()
	ts := g.now().Unix()

	doc := cloverCoverage{
		Generated: ts,
		Project: cloverProject{
			Timestamp: ts,
			Name:      g.project,
			Metrics:   newCloverMetrics(data.Stats(), data.Stats().Files),
		},
	}
	for _, fd := range data.Files() {
		file := cloverFile{
			Name:    filepath.Base(fd.Path),
			Path:    fd.Path,
			Metrics: newCloverMetrics(fd.Stats(), 0),
		}
		for _, l := range fd.Lines() {
			if l.Statements == 0 {
				continue
			}
			file.Lines = append(file.Lines, cloverLine{Num: l.Number, Type: "stmt", Count: l.Count})
		}
		doc.Project.Files = append(doc.Project.Files, file)
	}

	return "", writeXML(g.fs, path, doc)
}

// writeXML marshals v with an XML header and writes it to path, creating parent directories.
func writeXML(fs afero.Fs, path string, v any) error {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}
	return writeFile(fs, path, append([]byte(xml.Header), append(out, '\n')...))
}

// writeFile writes content to path, creating parent directories.
func writeFile(fs afero.Fs, path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	if err := afero.WriteFile(fs, path, content, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
