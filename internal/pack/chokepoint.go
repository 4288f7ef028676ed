package pack

import (
	"sort"

	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// ChokepointPayload is the chokepoint-elimination pack's kind-specific data.
type ChokepointPayload struct {
	Node                string
	Centrality          float64
	AffectedCommunities int
}

// ChokepointConfig configures the chokepoint family.
type ChokepointConfig struct {
	MaxChokepoints    int     // default 3
	MinCentrality     float64 // default 0.05
	CentralitySamples int     // default 64
}

func DefaultChokepointConfig() ChokepointConfig {
	return ChokepointConfig{MaxChokepoints: 3, MinCentrality: 0.05, CentralitySamples: 64}
}

// BuildChokepointPacks implements ChokepointDetector.build_chokepoint_packs:
// compute betweenness centrality over the import graph (sampled for large
// graphs), take the top-5% nodes up to MaxChokepoints, and emit one pack
// per node above MinCentrality.
func BuildChokepointPacks(importGraph *graph.DiGraph, cfg ChokepointConfig) []*Pack {
	nodes := importGraph.Nodes()
	if len(nodes) < 2 {
		return nil
	}
	centrality := graph.BetweennessCentrality(importGraph, cfg.CentralitySamples)

	ranked := append([]string(nil), nodes...)
	sort.Slice(ranked, func(i, j int) bool {
		if centrality[ranked[i]] != centrality[ranked[j]] {
			return centrality[ranked[i]] > centrality[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	topPercentile := maxInt(1, len(ranked)/20)
	limit := minInt(topPercentile, cfg.MaxChokepoints)

	var packs []*Pack
	for i := 0; i < limit && i < len(ranked); i++ {
		node := ranked[i]
		c := centrality[node]
		if c < cfg.MinCentrality {
			break
		}
		packs = append(packs, buildOneChokepointPack(importGraph, node, c, len(packs)))
	}
	return packs
}

func buildOneChokepointPack(g *graph.DiGraph, node string, centrality float64, index int) *Pack {
	neighbors := map[string]struct{}{}
	for _, n := range g.Predecessors(node) {
		neighbors[n] = struct{}{}
	}
	for _, n := range g.Successors(node) {
		neighbors[n] = struct{}{}
	}
	neighborCount := len(neighbors)

	communities := neighborCount / 3
	edgesReduced := neighborCount / 2

	return &Pack{
		ID:   idFor("chokepointpack", "NODE", index),
		Kind: KindChokepointElim,
		Value: Value{
			CrossCommunityEdgesCut: edgesReduced,
		},
		Effort: Effort{
			ModulesTouched:  1,
			ImportsToRehome: neighborCount,
		},
		Steps: []string{
			"Split " + node + " along its responsibility seams into per-community facades.",
			"Redirect " + intStr(neighborCount) + " importing modules to the facade closest to their community.",
		},
		Explanations: []string{
			"Module sits on a disproportionate share of shortest import paths; decomposing it reduces global coupling.",
		},
		Chokepoint: &ChokepointPayload{
			Node:                node,
			Centrality:          centrality,
			AffectedCommunities: communities,
		},
	}
}
