package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_EmptyIncludesEverything(t *testing.T) {
	f := NewFilter()
	assert.True(t, f.IsIncluded("internal/a.go"))
	assert.True(t, f.IsIncluded("main.go"))
}

func TestFilter_OnlyExclusions(t *testing.T) {
	f := NewFilter()
	f.RemoveIncludedDirectory("vendor")

	assert.True(t, f.IsIncluded("internal/a.go"))
	assert.False(t, f.IsIncluded("vendor/x/y.go"))
}

func TestFilter_IncludeThenExclude(t *testing.T) {
	f := NewFilter()
	f.AddIncludedDirectory("src")
	f.RemoveIncludedDirectory("src/filter")
	f.AddIncludedFile("src/filter/whitelisted_file.go")
	f.RemoveIncludedFile("src/filtered_file.go")

	tests := []struct {
		path string
		want bool
	}{
		{"src/a.go", true},
		{"src/deep/b.go", true},
		{"src/filter/c.go", false},
		{"src/filter/whitelisted_file.go", true},
		{"src/filtered_file.go", false},
		{"lib/d.go", false},
		{"srcx/e.go", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IsIncluded(tt.path))
		})
	}
}

func TestFilter_LaterRuleWins(t *testing.T) {
	f := NewFilter()
	f.RemoveIncludedDirectory("internal")
	f.AddIncludedDirectory("internal")

	assert.True(t, f.IsIncluded("internal/a.go"))
}

func TestFilter_CleansPaths(t *testing.T) {
	f := NewFilter()
	f.AddIncludedDirectory("./internal/")
	f.RemoveIncludedFile("./internal/gen.go")

	assert.True(t, f.IsIncluded("internal/a.go"))
	assert.False(t, f.IsIncluded("internal/gen.go"))
	assert.True(t, f.IsIncluded("./internal/b.go"))
}

func TestFilter_Globs(t *testing.T) {
	f := NewFilter()
	f.AddIncludedDirectory("internal/*")
	f.RemoveIncludedFile("**/*_mock.go")

	assert.True(t, f.IsIncluded("internal/config/config.go"))
	assert.False(t, f.IsIncluded("internal/config/store_mock.go"))
	assert.False(t, f.IsIncluded("cmd/main.go"))
}

func TestFilter_DotDirectory(t *testing.T) {
	f := NewFilter()
	f.AddIncludedDirectory(".")

	assert.True(t, f.IsIncluded("any/file.go"))
	assert.Equal(t, 1, f.Len())
}
