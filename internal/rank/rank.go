// Package rank combines normalized features
// into a composite score and sort entities, deterministically.
package rank

import (
	"sort"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
)

// Scored pairs an entity with its composite score for output.
type Scored struct {
	Entity *entity.Entity
	Score  float64
}

// Score computes the weighted composite score for one entity's normalized
// feature map. Composite = Σ(weight_f · normalized_f) / Σ(weight_f).
// A feature absent from weights contributes nothing (weight defaults to
// 0). If no weight is nonzero, the score is 0.
func Score(normalized map[string]float64, weights map[string]float64) float64 {
	var weightedSum, weightTotal float64
	for feature, weight := range weights {
		if weight == 0 {
			continue
		}
		weightedSum += weight * normalized[feature]
		weightTotal += weight
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}

// Rank scores every entity and returns them sorted descending by score,
// truncated to topK (0 means unlimited). Ties break by LOC descending,
// then by entity id ascending, for determinism across runs.
func Rank(entities []*entity.Entity, weights map[string]float64, topK int) []Scored {
	scored := make([]Scored, len(entities))
	for i, e := range entities {
		scored[i] = Scored{Entity: e, Score: Score(e.Normalized, weights)}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		locI, locJ := scored[i].Entity.LOC(), scored[j].Entity.LOC()
		if locI != locJ {
			return locI > locJ
		}
		return scored[i].Entity.ID < scored[j].Entity.ID
	})

	if topK > 0 && topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}
