package coverage

import (
	"sort"

	"github.com/samber/lo"
	"golang.org/x/tools/cover"
)

// Block is one basic block of a cover profile, accumulated across examples.
type Block struct {
	StartLine int `yaml:"start_line"`
	StartCol  int `yaml:"start_col"`
	EndLine   int `yaml:"end_line"`
	EndCol    int `yaml:"end_col"`
	NumStmt   int `yaml:"statements"`
	Count     int `yaml:"count"`

	// Tests lists the labels of the examples that executed the block.
	Tests []string `yaml:"tests,omitempty"`
}

type blockKey struct {
	startLine, startCol, endLine, endCol int
}

// FileData holds the blocks of one source file.
type FileData struct {
	// Path is relative to the module root.
	Path string `yaml:"path"`
	// Name is the file name as it appears in the cover profile.
	Name   string   `yaml:"name"`
	Blocks []*Block `yaml:"blocks"`

	index map[blockKey]*Block
}

// Line is the coverage state of a single source line.
type Line struct {
	Number     int
	Statements int
	Count      int
	Covered    bool
	Tests      []string
}

// Data is the coverage accumulated over a suite run.
type Data struct {
	Mode  string
	files map[string]*FileData
}

// NewData returns empty coverage data.
func NewData() *Data {
	return &Data{files: make(map[string]*FileData)}
}

// Merge adds the blocks of profiles to d. Blocks executed at least once are
// attributed to label. relPath maps profile file names to module-relative paths.
func (d *Data) Merge(profiles []*cover.Profile, label string, relPath func(string) string) {
	for _, p := range profiles {
		if d.Mode == "" {
			d.Mode = p.Mode
		}
		path := relPath(p.FileName)
		fd, ok := d.files[path]
		if !ok {
			fd = &FileData{Path: path, Name: p.FileName, index: make(map[blockKey]*Block)}
			d.files[path] = fd
		}
		for _, pb := range p.Blocks {
			fd.add(pb, label)
		}
	}
}

func (f *FileData) add(pb cover.ProfileBlock, label string) {
	key := blockKey{pb.StartLine, pb.StartCol, pb.EndLine, pb.EndCol}
	b, ok := f.index[key]
	if !ok {
		b = &Block{
			StartLine: pb.StartLine,
			StartCol:  pb.StartCol,
			EndLine:   pb.EndLine,
			EndCol:    pb.EndCol,
			NumStmt:   pb.NumStmt,
		}
		f.index[key] = b
		f.Blocks = append(f.Blocks, b)
	}
	if pb.Count == 0 {
		return
	}
	b.Count += pb.Count
	if label != "" && !lo.Contains(b.Tests, label) {
		b.Tests = append(b.Tests, label)
	}
}

// Files returns the files sorted by path.
func (d *Data) Files() []*FileData {
	paths := lo.Keys(d.files)
	sort.Strings(paths)
	return lo.Map(paths, func(p string, _ int) *FileData { return d.files[p] })
}

func (d *Data) file(path string) (*FileData, bool) {
	fd, ok := d.files[path]
	return fd, ok
}

// Restrict returns a view of d holding only the files keep accepts.
// Block values are shared with d.
func (d *Data) Restrict(keep func(path string) bool) *Data {
	out := &Data{Mode: d.Mode, files: make(map[string]*FileData, len(d.files))}
	for path, fd := range d.files {
		if keep(path) {
			out.files[path] = fd
		}
	}
	return out
}

// Stats returns totals over every file.
func (d *Data) Stats() CoverageStats {
	var total CoverageStats
	for _, fd := range d.files {
		s := fd.Stats()
		total.TotalLines += s.TotalLines
		total.TotalCoveredLines += s.TotalCoveredLines
		total.TotalStatements += s.TotalStatements
		total.TotalCoveredStatements += s.TotalCoveredStatements
		total.Files++
	}
	total.CoveragePercentage = percent(total.TotalCoveredLines, total.TotalLines)
	return total
}

// Stats returns the totals of a single file.
func (f *FileData) Stats() CoverageStats {
	var s CoverageStats
	for _, b := range f.Blocks {
		s.TotalStatements += b.NumStmt
		if b.Count > 0 {
			s.TotalCoveredStatements += b.NumStmt
		}
	}
	lines := f.Lines()
	s.TotalLines = len(lines)
	s.TotalCoveredLines = lo.CountBy(lines, func(l Line) bool { return l.Covered })
	s.CoveragePercentage = percent(s.TotalCoveredLines, s.TotalLines)
	s.Files = 1
	return s
}

// Lines returns the executable lines of the file in ascending order.
// A line is covered when any block spanning it was executed.
func (f *FileData) Lines() []Line {
	byNumber := make(map[int]*Line)
	for _, b := range f.Blocks {
		for n := b.StartLine; n <= b.EndLine; n++ {
			l, ok := byNumber[n]
			if !ok {
				l = &Line{Number: n}
				byNumber[n] = l
			}
			if n == b.StartLine {
				l.Statements += b.NumStmt
			}
			if b.Count > l.Count {
				l.Count = b.Count
			}
			if b.Count > 0 {
				l.Covered = true
				l.Tests = lo.Union(l.Tests, b.Tests)
			}
		}
	}
	lines := lo.MapToSlice(byNumber, func(_ int, l *Line) Line { return *l })
	sort.Slice(lines, func(i, j int) bool { return lines[i].Number < lines[j].Number })
	return lines
}

// Tests returns every example label recorded in d, sorted.
func (d *Data) Tests() []string {
	var labels []string
	for _, fd := range d.files {
		for _, b := range fd.Blocks {
			labels = append(labels, b.Tests...)
		}
	}
	labels = lo.Uniq(labels)
	sort.Strings(labels)
	return labels
}
