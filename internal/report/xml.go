package report

import (
	"encoding/xml"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/coverage"
)

func init() {
	Register(FormatXML, func(opts config.Options, fs afero.Fs) (Generator, error) {
		return NewXMLGenerator(fs), nil
	})
}

const defaultXMLTarget = "coverage-xml"

type xmlTotals struct {
	Lines             int     `xml:"lines,attr"`
	CoveredLines      int     `xml:"covered,attr"`
	Percent           float64 `xml:"percent,attr"`
	Statements        int     `xml:"statements,attr"`
	CoveredStatements int     `xml:"coveredStatements,attr"`
}

func newXMLTotals(s coverage.CoverageStats) xmlTotals {
	return xmlTotals{
		Lines:             s.TotalLines,
		CoveredLines:      s.TotalCoveredLines,
		Percent:           s.CoveragePercentage,
		Statements:        s.TotalStatements,
		CoveredStatements: s.TotalCoveredStatements,
	}
}

type xmlIndex struct {
	XMLName xml.Name   `xml:"covspec"`
	Project xmlProject `xml:"project"`
}

type xmlProject struct {
	Tests  []xmlTest    `xml:"tests>test"`
	Totals xmlTotals    `xml:"totals"`
	Files  []xmlFileRef `xml:"file"`
}

type xmlTest struct {
	Name string `xml:"name,attr"`
}

type xmlFileRef struct {
	Name   string    `xml:"name,attr"`
	Href   string    `xml:"href,attr"`
	Totals xmlTotals `xml:"totals"`
}

type xmlFileReport struct {
	XMLName xml.Name      `xml:"covspec"`
	File    xmlFileDetail `xml:"file"`
}

type xmlFileDetail struct {
	Name   string    `xml:"name,attr"`
	Totals xmlTotals `xml:"totals"`
	Lines  []xmlLine `xml:"coverage>line"`
}

type xmlLine struct {
	Number    int          `xml:"nr,attr"`
	Count     int          `xml:"count,attr"`
	CoveredBy []xmlCovered `xml:"covered"`
}

type xmlCovered struct {
	By string `xml:"by,attr"`
}

// XMLGenerator writes an index.xml plus one detail file per source file into
// the target directory. Detail files record which examples covered each line.
type XMLGenerator struct {
	fs afero.Fs
}

// NewXMLGenerator creates an XMLGenerator writing through fs.
func NewXMLGenerator(fs afero.Fs) *XMLGenerator {
	return &XMLGenerator{fs: fs}
}

// Process writes the report into target.Path (default "coverage-xml").
func (g *XMLGenerator) Process(session coverage.Session, target Target) (string, error) {
	dir := targetOr(target.Path, defaultXMLTarget)
	data := session.Data()

	project := xmlProject{Totals: newXMLTotals(data.Stats())}
	for _, label := range data.Tests() {
		project.Tests = append(project.Tests, xmlTest{Name: label})
	}

	for _, fd := range data.Files() {
		stats := fd.Stats()
		href := fd.Path + ".xml"
		project.Files = append(project.Files, xmlFileRef{Name: fd.Path, Href: href, Totals: newXMLTotals(stats)})

		detail := xmlFileDetail{Name: fd.Path, Totals: newXMLTotals(stats)}
		for _, l := range fd.Lines() {
			line := xmlLine{Number: l.Number, Count: l.Count}
			for _, label := range l.Tests {
				line.CoveredBy = append(line.CoveredBy, xmlCovered{By: label})
			}
			detail.Lines = append(detail.Lines, line)
		}
		if err := writeXML(g.fs, filepath.Join(dir, filepath.FromSlash(href)), xmlFileReport{File: detail}); err != nil {
			return "", err
		}
	}

	return "", writeXML(g.fs, filepath.Join(dir, "index.xml"), xmlIndex{Project: project})
}
