package feature

import (
	"regexp"
	"strings"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

const (
	longMethodLOC       = 50
	complexConditionals = 4
	largeClassLOC       = 200
	largeClassMembers   = 12
	paramBloatCount     = 6
	depthBloatNesting   = 4
)

// logicalOpPattern matches the && / || / and / or tokens counted on one line, to
// approximate "logical operators inside any single predicate" without a
// retained parse tree.
var logicalOpPattern = regexp.MustCompile(`&&|\|\||\band\b|\bor\b`)

// Refactoring surfaces the five refactor-smell flags: long
// method, complex conditional, large class, parameter bloat, depth bloat.
// Each flag is 0/1 plus a magnitude (excess over threshold, clamped).
type Refactoring struct{}

func NewRefactoring() *Refactoring { return &Refactoring{} }

func (r *Refactoring) Name() string { return "refactoring" }

func (r *Refactoring) Features() []Feature {
	return []Feature{
		{Name: "refactoring.long_method", Description: "LOC >= 50", Min: 0, Max: 1, Default: 0},
		{Name: "refactoring.long_method_magnitude", Description: "LOC excess over 50", Min: 0, Max: 1, Default: 0},
		{Name: "refactoring.complex_conditional", Description: "logical operators >= 4 in one predicate", Min: 0, Max: 1, Default: 0},
		{Name: "refactoring.complex_conditional_magnitude", Description: "operator excess over 4", Min: 0, Max: 1, Default: 0},
		{Name: "refactoring.large_class", Description: "class LOC >= 200 and members >= 12", Min: 0, Max: 1, Default: 0},
		{Name: "refactoring.large_class_magnitude", Description: "member-count excess over 12", Min: 0, Max: 1, Default: 0},
		{Name: "refactoring.parameter_bloat", Description: "param count >= 6", Min: 0, Max: 1, Default: 0},
		{Name: "refactoring.parameter_bloat_magnitude", Description: "param excess over 6", Min: 0, Max: 1, Default: 0},
		{Name: "refactoring.depth_bloat", Description: "nesting >= 4", Min: 0, Max: 1, Default: 0},
		{Name: "refactoring.depth_bloat_magnitude", Description: "nesting excess over 4", Min: 0, Max: 1, Default: 0},
	}
}

func (r *Refactoring) Supports(kind entity.Kind) bool {
	return kind == entity.KindFunction || kind == entity.KindMethod || kind == entity.KindClass
}

func (r *Refactoring) Extract(e *entity.Entity, idx *graph.Index) (map[string]float64, error) {
	out := map[string]float64{}

	loc := e.LOC()
	out["refactoring.long_method"] = flag(loc >= longMethodLOC)
	out["refactoring.long_method_magnitude"] = magnitude(loc, longMethodLOC, 500)

	maxLogical := maxLogicalOperatorsPerLine(e.RawText)
	out["refactoring.complex_conditional"] = flag(maxLogical >= complexConditionals)
	out["refactoring.complex_conditional_magnitude"] = magnitude(maxLogical, complexConditionals, 20)

	members := len(e.Children)
	isLargeClass := e.Kind == entity.KindClass && loc >= largeClassLOC && members >= largeClassMembers
	out["refactoring.large_class"] = flag(isLargeClass)
	out["refactoring.large_class_magnitude"] = magnitude(members, largeClassMembers, 100)

	params := len(e.Parameters)
	out["refactoring.parameter_bloat"] = flag(params >= paramBloatCount)
	out["refactoring.parameter_bloat_magnitude"] = magnitude(params, paramBloatCount, 30)

	nesting := maxNestingDepth(e.RawText)
	out["refactoring.depth_bloat"] = flag(nesting >= depthBloatNesting)
	out["refactoring.depth_bloat_magnitude"] = magnitude(nesting, depthBloatNesting, 20)

	return out, nil
}

func maxLogicalOperatorsPerLine(text string) int {
	max := 0
	for _, line := range strings.Split(text, "\n") {
		n := len(logicalOpPattern.FindAllStringIndex(line, -1))
		if n > max {
			max = n
		}
	}
	return max
}

func flag(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// magnitude clamps (value - threshold) into [0,1] scaled against a
// reasonable ceiling for the feature, so a wildly over-threshold entity
// doesn't blow out the raw value before normalization.
func magnitude(value, threshold, ceiling int) float64 {
	excess := value - threshold
	if excess <= 0 {
		return 0
	}
	v := float64(excess) / float64(ceiling-threshold)
	if v > 1 {
		return 1
	}
	return v
}
