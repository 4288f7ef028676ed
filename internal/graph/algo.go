package graph

import "sort"

// StronglyConnectedComponents returns the strongly connected components of
// g using Tarjan's algorithm, each as a sorted slice of node ids. The
// result order is deterministic: components are emitted in the order
// Tarjan discovers them, and nodes within each are sorted.
func StronglyConnectedComponents(g *DiGraph) [][]string {
	t := &tarjan{
		g:       g,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}
	for _, n := range g.Nodes() {
		if _, visited := t.index[n]; !visited {
			t.strongconnect(n)
		}
	}
	return t.result
}

type tarjan struct {
	g          *DiGraph
	indexCount int
	index      map[string]int
	lowlink    map[string]int
	onStack    map[string]bool
	stack      []string
	result     [][]string
}

func (t *tarjan) strongconnect(v string) {
	t.index[v] = t.indexCount
	t.lowlink[v] = t.indexCount
	t.indexCount++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.Successors(v) {
		if _, visited := t.index[w]; !visited {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var component []string
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		sort.Strings(component)
		t.result = append(t.result, component)
	}
}

// HasCycle reports whether g contains at least one cycle, phrased as an
// explicit emptiness test over StronglyConnectedComponents (any SCC of
// size >= 2, or a node with a self-loop).
func HasCycle(g *DiGraph) bool {
	for _, scc := range StronglyConnectedComponents(g) {
		if len(scc) > 1 {
			return true
		}
	}
	for _, n := range g.Nodes() {
		if _, self := g.out[n][n]; self {
			return true
		}
	}
	return false
}

// BetweennessCentrality computes (approximate) betweenness centrality for
// every node in g. For |V| <= 10 it computes exactly via Brandes' algorithm
// from every source; for larger graphs it samples k = min(sampleCap, 64, |V|)
// source nodes deterministically (the first k nodes in sorted order), where a
// sampleCap <= 0 counts as |V|.
func BetweennessCentrality(g *DiGraph, sampleCap int) map[string]float64 {
	nodes := g.Nodes()
	n := len(nodes)
	centrality := make(map[string]float64, n)
	for _, v := range nodes {
		centrality[v] = 0
	}
	if n == 0 {
		return centrality
	}

	sources := nodes
	scaleFactor := 1.0
	if n > 10 {
		k := sampleCap
		if k <= 0 || k > n {
			k = n
		}
		if k > 64 {
			k = 64
		}
		if k < n {
			sources = nodes[:k]
			scaleFactor = float64(n) / float64(k)
		}
	}

	for _, s := range sources {
		brandesSingleSource(g, s, centrality)
	}

	if scaleFactor != 1.0 {
		for k := range centrality {
			centrality[k] *= scaleFactor
		}
	}

	// Normalize by the number of ordered pairs, like networkx's default.
	if n > 2 {
		norm := 1.0 / float64((n-1)*(n-2))
		for k := range centrality {
			centrality[k] *= norm
		}
	}

	return centrality
}

// brandesSingleSource accumulates betweenness contributions from a single
// source node using Brandes' algorithm for unweighted directed graphs.
func brandesSingleSource(g *DiGraph, s string, centrality map[string]float64) {
	var stack []string
	pred := make(map[string][]string)
	sigma := make(map[string]float64)
	dist := make(map[string]int)

	for _, v := range g.Nodes() {
		pred[v] = nil
		sigma[v] = 0
		dist[v] = -1
	}
	sigma[s] = 1
	dist[s] = 0

	queue := []string{s}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)
		for _, w := range g.Successors(v) {
			if dist[w] < 0 {
				queue = append(queue, w)
				dist[w] = dist[v] + 1
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				pred[w] = append(pred[w], v)
			}
		}
	}

	delta := make(map[string]float64)
	for i := len(stack) - 1; i >= 0; i-- {
		w := stack[i]
		for _, v := range pred[w] {
			if sigma[w] != 0 {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
		}
		if w != s {
			centrality[w] += delta[w]
		}
	}
}
