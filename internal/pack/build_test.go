package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

func cycleIndex() *graph.Index {
	idx := graph.NewIndex()
	for _, name := range []string{"A.py", "B.py", "C.py"} {
		e := entity.New("python://"+name, name, entity.KindFile,
			entity.Location{FilePath: name, StartLine: 1, EndLine: 50}, "python")
		idx.AddEntity(e)
	}
	idx.ImportGraph.AddEdge("python://A.py", "python://B.py")
	idx.ImportGraph.AddEdge("python://B.py", "python://C.py")
	idx.ImportGraph.AddEdge("python://C.py", "python://A.py")
	idx.RebuildCaches()
	return idx
}

func TestBuild_EnabledFamiliesOnly(t *testing.T) {
	idx := cycleIndex()

	cfg := DefaultConfig()
	cfg.EnableCycle = false
	cfg.EnableChokepoint = false
	packs := Build(idx, cfg, Inputs{})
	assert.Empty(t, packs, "with cycle and chokepoint disabled, a bare cycle graph yields nothing")

	cfg.EnableCycle = true
	packs = Build(idx, cfg, Inputs{})
	require.NotEmpty(t, packs)
	assert.Equal(t, KindCycleCut, packs[0].Kind)
}

func TestBuild_NonOverlapKeepsDisjointEntitySets(t *testing.T) {
	idx := cycleIndex()

	cfg := DefaultConfig()
	packs := Build(idx, cfg, Inputs{})

	claimed := map[string]bool{}
	for _, p := range packs {
		for id := range p.InvolvedEntities() {
			assert.False(t, claimed[id], "entity %s appears in two selected packs", id)
			claimed[id] = true
		}
	}
}

func TestBuild_MaxPacksTruncates(t *testing.T) {
	// Several disjoint clone groups, all above thresholds.
	var groups []CloneGroup
	for i := 0; i < 5; i++ {
		a := string(rune('a' + i))
		groups = append(groups, CloneGroup{Members: []CloneMember{
			{EntityID: "python://" + a + "1.py::f", Path: a + "1.py", StartLine: 1, EndLine: 40, Similarity: 1.0},
			{EntityID: "python://" + a + "2.py::f", Path: a + "2.py", StartLine: 1, EndLine: 40, Similarity: 1.0},
		}})
	}

	cfg := DefaultConfig()
	cfg.MaxPacks = 2
	packs := Build(graph.NewIndex(), cfg, Inputs{CloneGroups: groups})
	assert.Len(t, packs, 2)
}

func TestRankPacks_OrdersByValueEffortRatio(t *testing.T) {
	cheap := &Pack{
		ID:   "clonepack:SET0",
		Kind: KindCloneConsolidation,
		Value: Value{DupLOCRemoved: 500, ScoreDropEstimate: 0.2},
		Effort: Effort{LOCTouched: 10, CallSites: 1},
		Clone:  &ClonePayload{},
	}
	expensive := &Pack{
		ID:   "clonepack:SET1",
		Kind: KindCloneConsolidation,
		Value: Value{DupLOCRemoved: 100, ScoreDropEstimate: 0.0},
		Effort: Effort{LOCTouched: 900, CallSites: 30},
		Clone:  &ClonePayload{},
	}

	packs := []*Pack{expensive, cheap}
	RankPacks(packs)
	assert.Equal(t, "clonepack:SET0", packs[0].ID)
	assert.Greater(t, Ratio(cheap), Ratio(expensive))
}

func TestInvolvedEntities_PerFamily(t *testing.T) {
	clone := &Pack{Clone: &ClonePayload{Members: []CloneMember{{EntityID: "e1"}, {EntityID: "e2"}}}}
	assert.Len(t, clone.InvolvedEntities(), 2)

	cycle := &Pack{Cycle: &CyclePayload{SCCMembers: []string{"a", "b"}, CutNodes: []string{"a"}}}
	assert.Len(t, cycle.InvolvedEntities(), 2)

	choke := &Pack{Chokepoint: &ChokepointPayload{Node: "hub"}}
	assert.Len(t, choke.InvolvedEntities(), 1)
}
