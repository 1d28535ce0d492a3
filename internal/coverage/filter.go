package coverage

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
)

type rule struct {
	pattern string
	dir     bool
	include bool
}

// Filter decides which source files are reported.
//
// Rules are kept in the order they were added and the last matching rule wins,
// which gives the same result as applying them as set operations in order.
// Without any include rule every file starts out included.
// Paths are slash-separated and relative to the module root; entries with glob
// meta characters are matched with doublestar.
type Filter struct {
	rules []rule
}

// NewFilter returns an empty filter that includes everything.
func NewFilter() *Filter {
	return &Filter{}
}

// AddIncludedDirectory includes every file under dir.
func (f *Filter) AddIncludedDirectory(dir string) {
	f.rules = append(f.rules, rule{pattern: cleanPath(dir), dir: true, include: true})
}

// RemoveIncludedDirectory excludes every file under dir.
func (f *Filter) RemoveIncludedDirectory(dir string) {
	f.rules = append(f.rules, rule{pattern: cleanPath(dir), dir: true})
}

// AddIncludedFile includes a single file.
func (f *Filter) AddIncludedFile(file string) {
	f.rules = append(f.rules, rule{pattern: cleanPath(file), include: true})
}

// RemoveIncludedFile excludes a single file.
func (f *Filter) RemoveIncludedFile(file string) {
	f.rules = append(f.rules, rule{pattern: cleanPath(file)})
}

// IsIncluded reports whether file is included.
func (f *Filter) IsIncluded(file string) bool {
	file = cleanPath(file)
	included := !lo.ContainsBy(f.rules, func(r rule) bool { return r.include })
	for _, r := range f.rules {
		if r.matches(file) {
			included = r.include
		}
	}
	return included
}

// Len returns the number of rules added so far.
func (f *Filter) Len() int {
	return len(f.rules)
}

func (r rule) matches(file string) bool {
	if strings.ContainsAny(r.pattern, "*?[{") {
		if ok, _ := doublestar.Match(r.pattern, file); ok {
			return true
		}
		if r.dir {
			ok, _ := doublestar.Match(r.pattern+"/**", file)
			return ok
		}
		return false
	}
	if r.dir {
		return r.pattern == "." || file == r.pattern || strings.HasPrefix(file, r.pattern+"/")
	}
	return file == r.pattern
}

func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "./")
}
