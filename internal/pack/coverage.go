package pack

import (
	"os"
	"sort"
	"strings"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// FileCoverage is one file's pre-parsed line coverage. UncoveredLines is
// sorted ascending, 1-based.
type FileCoverage struct {
	UncoveredLines     []int
	TotalLines         int
	CoveredLines       int
	CoveragePercentage float64
}

// CoverageReport is the pre-parsed coverage structure the builder consumes.
// Coverage-report file parsing itself is an external collaborator.
type CoverageReport struct {
	Files                   map[string]FileCoverage
	TotalCoveragePercentage float64
}

// CoverageSegment is a run of >= 3 consecutive uncovered lines, mapped back
// to its enclosing entity by location containment.
type CoverageSegment struct {
	FilePath        string
	StartLine       int
	EndLine         int
	EntityID        string
	EntityName      string
	EntityKind      entity.Kind
	ContextLines    []string
	ComplexityHints []string
	Priority        float64
}

// CoveragePayload is the coverage-improvement pack's kind-specific data.
type CoveragePayload struct {
	FilePath              string
	Segments              []CoverageSegment
	EstimatedLinesToCover float64
}

// CoverageConfig configures the coverage-pack family.
type CoverageConfig struct {
	MinSegmentLines    int     // default 3
	MinSegmentPriority float64 // default 0.4
}

func DefaultCoverageConfig() CoverageConfig {
	return CoverageConfig{MinSegmentLines: 3, MinSegmentPriority: 0.4}
}

// BuildCoveragePacks implements CoveragePackBuilder.build_coverage_packs:
// group consecutive uncovered lines into segments, score each segment,
// then emit one pack per file holding its high-priority segments.
func BuildCoveragePacks(idx *graph.Index, report *CoverageReport, cfg CoverageConfig) []*Pack {
	if report == nil || len(report.Files) == 0 {
		return nil
	}

	paths := make([]string, 0, len(report.Files))
	for p := range report.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var packs []*Pack
	for _, path := range paths {
		fc := report.Files[path]
		lines := sourceLines(idx, path)

		var segments []CoverageSegment
		for _, span := range segmentRuns(fc.UncoveredLines, cfg.MinSegmentLines) {
			seg := buildSegment(idx, path, span[0], span[1], lines)
			if seg.Priority >= cfg.MinSegmentPriority {
				segments = append(segments, seg)
			}
		}
		if len(segments) == 0 {
			continue
		}

		uncovered := 0
		for _, s := range segments {
			uncovered += s.EndLine - s.StartLine + 1
		}
		gain := 0.0
		if fc.TotalLines > 0 {
			gain = float64(uncovered) / float64(fc.TotalLines) * 100.0
		}

		packs = append(packs, &Pack{
			ID:   idFor("coveragepack", "FILE", len(packs)),
			Kind: KindCoverageImprovement,
			Value: Value{
				CoverageGainPct: gain,
			},
			Effort: Effort{
				// Test code is roughly twice the source it covers.
				LOCTouched: 2 * uncovered,
			},
			Steps:        coverageSteps(path, segments),
			Explanations: coverageExplanations(fc, segments),
			Coverage: &CoveragePayload{
				FilePath:              path,
				Segments:              segments,
				EstimatedLinesToCover: float64(uncovered),
			},
		})
	}
	return packs
}

// segmentRuns groups a sorted line list into [start, end] runs of
// consecutive lines, keeping only runs of at least minLines.
func segmentRuns(sortedLines []int, minLines int) [][2]int {
	var runs [][2]int
	var start, prev int
	for i, line := range sortedLines {
		if i == 0 {
			start, prev = line, line
			continue
		}
		if line == prev+1 {
			prev = line
			continue
		}
		if prev-start+1 >= minLines {
			runs = append(runs, [2]int{start, prev})
		}
		start, prev = line, line
	}
	if len(sortedLines) > 0 && prev-start+1 >= minLines {
		runs = append(runs, [2]int{start, prev})
	}
	return runs
}

func buildSegment(idx *graph.Index, path string, startLine, endLine int, lines []string) CoverageSegment {
	seg := CoverageSegment{FilePath: path, StartLine: startLine, EndLine: endLine}

	if e := idx.EntityAt(path, startLine); e != nil && e.Kind != entity.KindFile {
		seg.EntityID = e.ID
		seg.EntityName = e.Name
		seg.EntityKind = e.Kind
	}

	seg.ContextLines = contextLines(lines, startLine, endLine)
	seg.ComplexityHints = complexityHints(lines, startLine, endLine)
	seg.Priority = segmentPriority(seg)
	return seg
}

// contextLines extracts up to 5 annotated lines: the segment's first line,
// its middle when the segment spans >= 5 lines, and its last line, each
// prefixed with its line number.
func contextLines(lines []string, startLine, endLine int) []string {
	pick := []int{startLine}
	if endLine-startLine+1 >= 5 {
		pick = append(pick, (startLine+endLine)/2)
	}
	if endLine != startLine {
		pick = append(pick, endLine)
	}

	var out []string
	for _, n := range pick {
		if n-1 < 0 || n-1 >= len(lines) {
			continue
		}
		out = append(out, intStr(n)+": "+strings.TrimRight(lines[n-1], " \t"))
		if len(out) == 5 {
			break
		}
	}
	return out
}

var hintPatterns = []struct {
	hint   string
	tokens []string
}{
	{"conditional", []string{"if ", "elif ", "else if", "switch ", "match "}},
	{"exception handler", []string{"try", "except", "catch", "finally", "recover("}},
	{"definition", []string{"def ", "func ", "fn ", "class ", "interface "}},
	{"control flow", []string{"for ", "while ", "break", "continue", "return"}},
	{"logical operation", []string{"&&", "||", " and ", " or ", " not "}},
}

// complexityHints infers what kind of code sits in the uncovered segment by
// scanning line content, so the pack can hint at what the missing tests
// need to exercise.
func complexityHints(lines []string, startLine, endLine int) []string {
	found := map[string]bool{}
	for n := startLine; n <= endLine; n++ {
		if n-1 < 0 || n-1 >= len(lines) {
			continue
		}
		line := lines[n-1]
		for _, hp := range hintPatterns {
			if found[hp.hint] {
				continue
			}
			for _, tok := range hp.tokens {
				if strings.Contains(line, tok) {
					found[hp.hint] = true
					break
				}
			}
		}
	}
	var out []string
	for _, hp := range hintPatterns {
		if found[hp.hint] {
			out = append(out, hp.hint)
		}
	}
	return out
}

// segmentPriority weights size, entity kind,
// complexity hints, and public visibility.
func segmentPriority(seg CoverageSegment) float64 {
	size := float64(seg.EndLine-seg.StartLine+1) / 20.0
	if size > 1 {
		size = 1
	}
	hints := float64(len(seg.ComplexityHints)) / 10.0
	if hints > 1 {
		hints = 1
	}

	p := 0.4 * size
	switch seg.EntityKind {
	case entity.KindFunction, entity.KindMethod:
		p += 0.3
	case entity.KindClass:
		p += 0.2
	}
	p += 0.3 * hints
	if entity.IsPublic(seg.EntityName) {
		p += 0.1
	}
	return p
}

func coverageSteps(path string, segments []CoverageSegment) []string {
	steps := []string{
		"Add tests exercising " + intStr(len(segments)) + " uncovered regions in " + path + ".",
	}
	for _, s := range segments {
		target := "lines " + intStr(s.StartLine) + "-" + intStr(s.EndLine)
		if s.EntityName != "" {
			target += " in " + s.EntityName
		}
		steps = append(steps, "Cover "+target+".")
	}
	return steps
}

func coverageExplanations(fc FileCoverage, segments []CoverageSegment) []string {
	return []string{
		"File sits at " + intStr(int(fc.CoveragePercentage)) + "% coverage with " +
			intStr(len(segments)) + " contiguous untested regions of 3+ lines.",
	}
}

// sourceLines returns the file's lines, preferring the file entity's
// retained raw text and falling back to a direct read. An unreadable file
// yields nil; context lines and hints simply come back empty.
func sourceLines(idx *graph.Index, path string) []string {
	if id, ok := idx.FileEntityID(path); ok {
		if e, ok := idx.Entity(id); ok && e.RawText != "" {
			return strings.Split(e.RawText, "\n")
		}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return strings.Split(string(content), "\n")
}
