package feature

import (
	"regexp"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// decisionPointPattern matches the decision-point keywords/operators that
// count toward cyclomatic complexity across the supported languages:
// branching, looping, exception handling, and short-circuit operators.
var decisionPointPattern = regexp.MustCompile(
	`\b(if|elif|else if|for|while|case|catch|except|and|or)\b|&&|\|\|`)

// Complexity computes cyclomatic/cognitive complexity, nesting depth,
// parameter count, and LOC for function/method/class entities.
// It works directly off an entity's raw text rather than a retained parse
// tree; the adapter contract only guarantees entity metadata plus raw text.
type Complexity struct{}

func NewComplexity() *Complexity { return &Complexity{} }

func (c *Complexity) Name() string { return "complexity" }

func (c *Complexity) Features() []Feature {
	return []Feature{
		{Name: "complexity.cyclomatic", Description: "cyclomatic complexity", Min: 1, Max: 1000, Default: 1},
		{Name: "complexity.cognitive", Description: "cognitive complexity", Min: 0, Max: 2000, Default: 0},
		{Name: "complexity.nesting", Description: "max nesting depth", Min: 0, Max: 64, Default: 0},
		{Name: "complexity.params", Description: "parameter count", Min: 0, Max: 256, Default: 0},
		{Name: "complexity.loc", Description: "lines of code", Min: 0, Max: 1e6, Default: 0},
	}
}

func (c *Complexity) Supports(kind entity.Kind) bool {
	return kind == entity.KindFunction || kind == entity.KindMethod || kind == entity.KindClass
}

func (c *Complexity) Extract(e *entity.Entity, _ *graph.Index) (map[string]float64, error) {
	decisions := decisionPointPattern.FindAllStringIndex(e.RawText, -1)
	cyclomatic := 1 + len(decisions)
	nesting := maxNestingDepth(e.RawText)
	cognitive := cyclomaticWeightedByNesting(e.RawText, decisions)

	return map[string]float64{
		"complexity.cyclomatic": float64(cyclomatic),
		"complexity.cognitive":  float64(cognitive),
		"complexity.nesting":    float64(nesting),
		"complexity.params":     float64(len(e.Parameters)),
		"complexity.loc":        float64(e.LOC()),
	}, nil
}

// maxNestingDepth approximates block nesting by tracking the running
// balance of brace/indent openers across the entity's raw text.
func maxNestingDepth(text string) int {
	depth, max := 0, 0
	for _, r := range text {
		switch r {
		case '{', '(', '[':
			depth++
			if depth > max {
				max = depth
			}
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		}
	}
	return max
}

// cyclomaticWeightedByNesting gives each decision point a weight of
// (1 + depth-at-that-point), approximating nesting-weighted cyclomatic
// complexity without a retained parse tree.
func cyclomaticWeightedByNesting(text string, decisions [][]int) int {
	depthAt := make([]int, len(text)+1)
	depth := 0
	for i, r := range text {
		switch r {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		}
		depthAt[i] = depth
	}

	total := 0
	for _, span := range decisions {
		pos := span[0]
		if pos >= len(depthAt) {
			pos = len(depthAt) - 1
		}
		total += 1 + depthAt[pos]
	}
	return total
}
