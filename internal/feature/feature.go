// Package feature implements the per-entity feature extractors: each
// declares a registry of named features with bounds and a default, and
// computes raw values for one entity at a time over a frozen parse index.
package feature

import (
	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/errs"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// Feature describes one named, bounded metric an extractor contributes.
type Feature struct {
	Name        string
	Description string
	Min         float64
	Max         float64
	Default     float64
}

// Extractor is implemented by each of the four extractor families
// (Complexity, Graph, Refactoring, Clone).
type Extractor interface {
	Name() string
	Features() []Feature
	Supports(kind entity.Kind) bool
	Extract(e *entity.Entity, idx *graph.Index) (map[string]float64, error)
}

// Run applies every extractor to every entity in idx, writing results into
// e.Metrics. A failed feature is replaced by its declared default and
// recorded as a diagnostic.
func Run(extractors []Extractor, idx *graph.Index, diags *errs.Diagnostics) {
	for _, e := range idx.AllEntities() {
		extractOne(extractors, e, idx, diags)
	}
}

// AllFeatures flattens the registries of a set of extractors, in the order
// the extractors were given.
func AllFeatures(extractors []Extractor) []Feature {
	var out []Feature
	for _, ex := range extractors {
		out = append(out, ex.Features()...)
	}
	return out
}

func clamp(v, min, max float64) float64 {
	if max > min {
		if v < min {
			return min
		}
		if v > max {
			return max
		}
	}
	return v
}
