package report

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"

	"github.com/zjy-dev/covspec/internal/config"
	"github.com/zjy-dev/covspec/internal/coverage"
)

func init() {
	Register(FormatProfile, func(opts config.Options, fs afero.Fs) (Generator, error) {
		return NewProfileGenerator(fs), nil
	})
}

const defaultProfileTarget = "coverage-merged.out"

// ProfileGenerator writes the merged coverage back out as a Go cover profile,
// readable by `go tool cover`.
type ProfileGenerator struct {
	fs afero.Fs
}

// NewProfileGenerator creates a ProfileGenerator writing through fs.
func NewProfileGenerator(fs afero.Fs) *ProfileGenerator {
	return &ProfileGenerator{fs: fs}
}

// Process writes the profile to target.Path (default "coverage-merged.out").
func (g *ProfileGenerator) Process(session coverage.Session, target Target) (string, error) {
	path := targetOr(target.Path, defaultProfileTarget)
	data := session.Data()

	mode := data.Mode
	if mode == "" {
		mode = "set"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "mode: %s\n", mode)
	for _, fd := range data.Files() {
		for _, b := range fd.Blocks {
			count := b.Count
			if mode == "set" && count > 1 {
				count = 1
			}
			fmt.Fprintf(&buf, "%s:%d.%d,%d.%d %d %d\n", fd.Name, b.StartLine, b.StartCol, b.EndLine, b.EndCol, b.NumStmt, count)
		}
	}

	return "", writeFile(g.fs, path, buf.Bytes())
}
