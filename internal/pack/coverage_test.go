package pack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// coverageFixture builds an index holding file X with a public function foo
// spanning lines 45-80, with branchy source at the uncovered lines.
func coverageFixture() *graph.Index {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "    value += 1"
	}
	for i := 49; i < 60; i++ {
		lines[i] = "    if value > 0 and flag:"
	}
	for i := 69; i < 75; i++ {
		lines[i] = "    try:"
	}

	idx := graph.NewIndex()
	file := entity.New("python://X.py", "X.py", entity.KindFile,
		entity.Location{FilePath: "X.py", StartLine: 1, EndLine: 100}, "python")
	file.RawText = strings.Join(lines, "\n")
	foo := entity.New("python://X.py::foo", "foo", entity.KindFunction,
		entity.Location{FilePath: "X.py", StartLine: 45, EndLine: 80}, "python")
	foo.ParentID = file.ID
	file.Children = append(file.Children, foo.ID)
	idx.AddEntity(file)
	idx.AddEntity(foo)
	idx.RebuildCaches()
	return idx
}

func uncoveredRange(spans ...[2]int) []int {
	var out []int
	for _, s := range spans {
		for l := s[0]; l <= s[1]; l++ {
			out = append(out, l)
		}
	}
	return out
}

func TestBuildCoveragePacks_TwoSegmentsInOneFunction(t *testing.T) {
	idx := coverageFixture()
	report := &CoverageReport{
		Files: map[string]FileCoverage{
			"X.py": {
				UncoveredLines:     uncoveredRange([2]int{50, 60}, [2]int{70, 75}),
				TotalLines:         100,
				CoveredLines:       83,
				CoveragePercentage: 83,
			},
		},
	}

	packs := BuildCoveragePacks(idx, report, DefaultCoverageConfig())
	require.Len(t, packs, 1)

	p := packs[0]
	assert.Equal(t, KindCoverageImprovement, p.Kind)
	require.Len(t, p.Coverage.Segments, 2)

	first, second := p.Coverage.Segments[0], p.Coverage.Segments[1]
	assert.Equal(t, 50, first.StartLine)
	assert.Equal(t, 60, first.EndLine)
	assert.Equal(t, 70, second.StartLine)
	assert.Equal(t, 75, second.EndLine)
	assert.Equal(t, "foo", first.EntityName)
	assert.Equal(t, "foo", second.EntityName)
	assert.NotEmpty(t, first.ComplexityHints, "conditional lines must yield hints")
	assert.NotEmpty(t, second.ComplexityHints, "exception-handler lines must yield hints")
	assert.GreaterOrEqual(t, p.Effort.LOCTouched, 34, "test code is roughly twice the 17 uncovered lines")
}

func TestBuildCoveragePacks_ContextLinesCarryLineNumbers(t *testing.T) {
	idx := coverageFixture()
	report := &CoverageReport{
		Files: map[string]FileCoverage{
			"X.py": {UncoveredLines: uncoveredRange([2]int{50, 60}), TotalLines: 100},
		},
	}

	packs := BuildCoveragePacks(idx, report, DefaultCoverageConfig())
	require.Len(t, packs, 1)
	seg := packs[0].Coverage.Segments[0]
	require.NotEmpty(t, seg.ContextLines)
	assert.True(t, strings.HasPrefix(seg.ContextLines[0], "50: "), "context line should be annotated with its number: %q", seg.ContextLines[0])
	// First, middle, last for an 11-line segment.
	assert.Len(t, seg.ContextLines, 3)
}

func TestBuildCoveragePacks_ShortRunsAreSkipped(t *testing.T) {
	idx := coverageFixture()
	report := &CoverageReport{
		Files: map[string]FileCoverage{
			"X.py": {UncoveredLines: []int{50, 51, 53, 55}, TotalLines: 100},
		},
	}
	assert.Empty(t, BuildCoveragePacks(idx, report, DefaultCoverageConfig()),
		"runs shorter than 3 consecutive lines must not form segments")
}

func TestBuildCoveragePacks_FullyUncoveredFile(t *testing.T) {
	idx := coverageFixture()
	report := &CoverageReport{
		Files: map[string]FileCoverage{
			"X.py": {UncoveredLines: uncoveredRange([2]int{1, 100}), TotalLines: 100},
		},
	}

	packs := BuildCoveragePacks(idx, report, DefaultCoverageConfig())
	require.Len(t, packs, 1)
	require.Len(t, packs[0].Coverage.Segments, 1)
	seg := packs[0].Coverage.Segments[0]
	assert.Equal(t, 1, seg.StartLine)
	assert.Equal(t, 100, seg.EndLine)
	assert.InDelta(t, 100.0, packs[0].Value.CoverageGainPct, 1e-9)
}

func TestSegmentRuns(t *testing.T) {
	runs := segmentRuns([]int{1, 2, 3, 7, 8, 9, 10, 20}, 3)
	require.Len(t, runs, 2)
	assert.Equal(t, [2]int{1, 3}, runs[0])
	assert.Equal(t, [2]int{7, 10}, runs[1])
}
