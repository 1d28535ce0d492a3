package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/coverage"
)

func init() {
	Register(FormatText, func(opts config.Options, _ afero.Fs) (Generator, error) {
		return NewTextGenerator(opts), nil
	})
}

// TextGenerator renders a console summary. It never writes files: the
// rendered report is returned to the caller.
type TextGenerator struct {
	lowerUpperBound    float64
	highLowerBound     float64
	showUncoveredFiles bool
	showOnlySummary    bool
}

// NewTextGenerator creates a TextGenerator using the bounds and toggles of opts.
func NewTextGenerator(opts config.Options) *TextGenerator {
	return &TextGenerator{
		lowerUpperBound:    float64(opts.LowerUpperBound),
		highLowerBound:     float64(opts.HighLowerBound),
		showUncoveredFiles: opts.ShowUncoveredFiles,
		showOnlySummary:    opts.ShowOnlySummary,
	}
}

// palette holds the styles of one rendering; colors are dropped when the
// renderer uses the ASCII profile.
type palette struct {
	header lipgloss.Style
	low    lipgloss.Style
	medium lipgloss.Style
	high   lipgloss.Style
}

func newPalette(colorize bool) palette {
	r := lipgloss.NewRenderer(io.Discard)
	if colorize {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return palette{
		header: r.NewStyle().Bold(true),
		low:    r.NewStyle().Foreground(lipgloss.Color("1")),
		medium: r.NewStyle().Foreground(lipgloss.Color("3")),
		high:   r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// level picks the style for a coverage percentage.
func (g *TextGenerator) level(p palette, pct float64) lipgloss.Style {
	switch {
	case pct < g.lowerUpperBound:
		return p.low
	case pct >= g.highLowerBound:
		return p.high
	default:
		return p.medium
	}
}

// Process renders the report; target.Path is ignored.
func (g *TextGenerator) Process(session coverage.Session, target Target) (string, error) {
	data := session.Data()
	p := newPalette(target.Colorize)
	stats := data.Stats()

	var b strings.Builder
	b.WriteString(p.header.Render("Code Coverage Report:") + "\n")
	b.WriteString(" " + p.header.Render("Summary:") + "\n")
	fmt.Fprintf(&b, "  %s\n", g.level(p, stats.CoveragePercentage).Render(
		fmt.Sprintf("Lines:      %6.2f%% (%d/%d)", stats.CoveragePercentage, stats.TotalCoveredLines, stats.TotalLines)))
	fmt.Fprintf(&b, "  %s\n", g.level(p, stats.StatementPercentage()).Render(
		fmt.Sprintf("Statements: %6.2f%% (%d/%d)", stats.StatementPercentage(), stats.TotalCoveredStatements, stats.TotalStatements)))
	fmt.Fprintf(&b, "  Files:      %d\n", stats.Files)

	if !g.showOnlySummary {
		for _, fd := range data.Files() {
			s := fd.Stats()
			if !g.showUncoveredFiles && s.TotalCoveredLines == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n%s\n", fd.Path)
			fmt.Fprintf(&b, "  %s\n", g.level(p, s.CoveragePercentage).Render(
				fmt.Sprintf("Lines: %6.2f%% (%d/%d)", s.CoveragePercentage, s.TotalCoveredLines, s.TotalLines)))
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
