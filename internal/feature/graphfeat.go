package feature

import (
	"sync"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// Graph computes fan-in/fan-out, betweenness centrality, and SCC
// participation/size from the import graph (file entities) and, when
// present, the call graph (function/method entities).
//
// Centrality and SCC membership are whole-graph computations; Graph
// memoizes them per parse index so that N per-entity Extract calls cost
// one graph traversal rather than N.
type Graph struct {
	mu    sync.Mutex
	cache map[*graph.Index]*graphCache
}

type graphCache struct {
	importCentrality map[string]float64
	callCentrality   map[string]float64
	importSCC        map[string]int // node id -> SCC size (>=2 only)
	callSCC          map[string]int
}

const centralitySampleCap = 64

func NewGraph() *Graph {
	return &Graph{cache: make(map[*graph.Index]*graphCache)}
}

func (g *Graph) Name() string { return "graph" }

func (g *Graph) Features() []Feature {
	return []Feature{
		{Name: "graph.fan_in", Description: "in-degree", Min: 0, Max: 1e6, Default: 0},
		{Name: "graph.fan_out", Description: "out-degree", Min: 0, Max: 1e6, Default: 0},
		{Name: "graph.betweenness", Description: "betweenness centrality", Min: 0, Max: 1, Default: 0},
		{Name: "graph.in_scc", Description: "participates in a cycle", Min: 0, Max: 1, Default: 0},
		{Name: "graph.scc_size", Description: "size of containing SCC", Min: 0, Max: 1e6, Default: 0},
	}
}

func (g *Graph) Supports(kind entity.Kind) bool {
	return kind == entity.KindFile || kind == entity.KindFunction || kind == entity.KindMethod
}

func (g *Graph) Extract(e *entity.Entity, idx *graph.Index) (map[string]float64, error) {
	c := g.cacheFor(idx)

	var g2 *graphLookup
	if e.Kind == entity.KindFile {
		g2 = &graphLookup{dg: idx.ImportGraph, centrality: c.importCentrality, scc: c.importSCC}
	} else {
		g2 = &graphLookup{dg: idx.CallGraph, centrality: c.callCentrality, scc: c.callSCC}
	}

	if !g2.dg.HasNode(e.ID) {
		return map[string]float64{
			"graph.fan_in": 0, "graph.fan_out": 0, "graph.betweenness": 0,
			"graph.in_scc": 0, "graph.scc_size": 0,
		}, nil
	}

	sccSize := g2.scc[e.ID]
	inSCC := 0.0
	if sccSize >= 2 {
		inSCC = 1.0
	}

	return map[string]float64{
		"graph.fan_in":      float64(g2.dg.InDegree(e.ID)),
		"graph.fan_out":     float64(g2.dg.OutDegree(e.ID)),
		"graph.betweenness": g2.centrality[e.ID],
		"graph.in_scc":      inSCC,
		"graph.scc_size":    float64(sccSize),
	}, nil
}

type graphLookup struct {
	dg         *graph.DiGraph
	centrality map[string]float64
	scc        map[string]int
}

func (g *Graph) cacheFor(idx *graph.Index) *graphCache {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.cache[idx]; ok {
		return c
	}
	c := &graphCache{
		importCentrality: graph.BetweennessCentrality(idx.ImportGraph, centralitySampleCap),
		callCentrality:   graph.BetweennessCentrality(idx.CallGraph, centralitySampleCap),
		importSCC:        sccSizeByNode(idx.ImportGraph),
		callSCC:          sccSizeByNode(idx.CallGraph),
	}
	g.cache[idx] = c
	return c
}

func sccSizeByNode(dg *graph.DiGraph) map[string]int {
	out := make(map[string]int)
	for _, scc := range graph.StronglyConnectedComponents(dg) {
		for _, n := range scc {
			out[n] = len(scc)
		}
	}
	return out
}
