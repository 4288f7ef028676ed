package pack

import (
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// CyclePayload is the cycle-cut pack's kind-specific data.
type CyclePayload struct {
	SCCMembers []string
	CutNodes   []string
}

// CycleConfig configures the cycle-cut family.
type CycleConfig struct {
	CentralitySamples int // default 64
}

func DefaultCycleConfig() CycleConfig {
	return CycleConfig{CentralitySamples: 64}
}

// BuildCyclePacks implements CycleCutter.build_cycle_packs: one pack per
// strongly-connected component of size >= 2 in the import graph, with a
// greedy feedback-vertex-set cut.
func BuildCyclePacks(importGraph *graph.DiGraph, cfg CycleConfig) []*Pack {
	var sccs [][]string
	for _, scc := range graph.StronglyConnectedComponents(importGraph) {
		if len(scc) >= 2 {
			sccs = append(sccs, scc)
		}
	}
	if len(sccs) == 0 {
		return nil
	}

	packs := make([]*Pack, 0, len(sccs))
	for i, scc := range sccs {
		if p := buildOneCyclePack(importGraph, scc, cfg, i); p != nil {
			packs = append(packs, p)
		}
	}
	return packs
}

func buildOneCyclePack(full *graph.DiGraph, scc []string, cfg CycleConfig, index int) *Pack {
	cutNodes := findFeedbackVertexSet(full, scc, cfg)
	if len(cutNodes) == 0 {
		return nil
	}

	cyclesRemoved := len(cutNodes) * 2
	sccDelta := len(cutNodes) - 1
	pathDelta := minFloat(0.5, float64(len(cutNodes))*0.1)

	modulesTouched := len(cutNodes)
	importsToRehome := 0
	for _, n := range cutNodes {
		importsToRehome += full.InDegree(n) + full.OutDegree(n)
	}
	importsToRehome = minInt(importsToRehome, 20)

	return &Pack{
		ID:   idFor("cyclepack", "SCC", index),
		Kind: KindCycleCut,
		Value: Value{
			CyclesRemoved:   cyclesRemoved,
			SCCCountDelta:   sccDelta,
			AvgPathLenDelta: pathDelta,
		},
		Effort: Effort{
			ModulesTouched:  modulesTouched,
			ImportsToRehome: importsToRehome,
		},
		Steps:        cycleSteps(cutNodes),
		Explanations: cycleExplanations(scc, cutNodes),
		Cycle: &CyclePayload{
			SCCMembers: append([]string(nil), scc...),
			CutNodes:   cutNodes,
		},
	}
}

// findFeedbackVertexSet greedily removes the highest-scored node —
// score = 0.5*betweenness + 0.3*(in+out degree) + 0.2*edges-to-outside-SCC —
// until the remaining subgraph is acyclic, capped at 100 iterations to
// guarantee termination on pathological inputs.
func findFeedbackVertexSet(full *graph.DiGraph, scc []string, cfg CycleConfig) []string {
	remaining := full.Subgraph(scc)
	var cut []string

	for iter := 0; iter < 100 && graph.HasCycle(remaining); iter++ {
		nodes := remaining.Nodes()
		if len(nodes) == 0 {
			break
		}
		centrality := graph.BetweennessCentrality(remaining, cfg.CentralitySamples)

		best, bestScore := "", -1.0
		for _, n := range nodes {
			degree := float64(remaining.InDegree(n) + remaining.OutDegree(n))
			boundary := float64(full.InDegree(n) + full.OutDegree(n) - remaining.InDegree(n) - remaining.OutDegree(n))
			score := 0.5*centrality[n] + 0.3*degree + 0.2*boundary
			if score > bestScore || (score == bestScore && n < best) {
				bestScore = score
				best = n
			}
		}
		if best == "" {
			break
		}
		cut = append(cut, best)
		remaining.RemoveNode(best)
	}

	return cut
}

func cycleSteps(cutNodes []string) []string {
	if len(cutNodes) == 0 {
		return nil
	}
	steps := []string{
		"Extract interface or facade for functionality in " + cutNodes[0] + ".",
		"Invert dependencies to use the interface instead of direct imports.",
	}
	if len(cutNodes) > 1 {
		steps = append(steps, "Move shared utilities to common module if needed.")
	}
	return steps
}

func cycleExplanations(scc, cutNodes []string) []string {
	primary := "target module"
	if len(cutNodes) > 0 {
		primary = cutNodes[0]
	}
	return []string{
		"Cutting " + primary + " breaks circular dependency in " + intStr(len(scc)) + "-node SCC and improves modularity.",
	}
}
