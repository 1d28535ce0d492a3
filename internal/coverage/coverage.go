package coverage

import "github.com/cockroachdb/errors"

var (
	// ErrSessionStarted is returned by Start when a measurement is already running.
	ErrSessionStarted = errors.New("coverage session already started")
	// ErrSessionNotStarted is returned by Stop when no measurement is running.
	ErrSessionNotStarted = errors.New("coverage session not started")
	// ErrNoModule is returned when no module path can be found in go.mod.
	ErrNoModule = errors.New("no module path found")
)

// FilterHandle tracks which source paths are included in measurement and reporting.
type FilterHandle interface {
	AddIncludedDirectory(path string)
	RemoveIncludedDirectory(path string)
	AddIncludedFile(path string)
	RemoveIncludedFile(path string)
}

// Session records which statements execute between Start and the matching Stop.
// Start is not reentrant: calling it while a measurement runs is an error.
type Session interface {
	// Start begins a measurement attributed to label.
	Start(label string) error

	// Stop ends the running measurement and merges its result.
	Stop() error

	// Filter returns the handle controlling which paths are reported.
	Filter() FilterHandle

	// Data returns the accumulated coverage restricted to included paths.
	Data() *Data
}

// CoverageStats holds coverage statistics for display and decision making.
type CoverageStats struct {
	// Overall line coverage percentage (0-100)
	CoveragePercentage float64

	// Line coverage
	TotalLines        int
	TotalCoveredLines int

	// Statement coverage
	TotalStatements        int
	TotalCoveredStatements int

	Files int
}

// StatementPercentage returns statement coverage in percent (0-100).
func (s CoverageStats) StatementPercentage() float64 {
	return percent(s.TotalCoveredStatements, s.TotalStatements)
}

func percent(covered, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(covered) * 100 / float64(total)
}
