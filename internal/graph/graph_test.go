package graph

import (
	"testing"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
)

func TestIndexInvariants_ChildParentConsistency(t *testing.T) {
	idx := NewIndex()
	parent := entity.New("go://a.go", "a", entity.KindFile, entity.Location{FilePath: "a.go", StartLine: 1, EndLine: 10}, "go")
	child := entity.New("go://a.go::Foo", "Foo", entity.KindFunction, entity.Location{FilePath: "a.go", StartLine: 2, EndLine: 4}, "go")
	child.ParentID = parent.ID
	parent.Children = append(parent.Children, child.ID)

	idx.AddEntity(parent)
	idx.AddEntity(child)
	idx.RebuildCaches()

	children := idx.Children(parent.ID)
	if len(children) != 1 || children[0].ID != child.ID {
		t.Fatalf("expected parent to list child, got %v", children)
	}
	got := idx.Parent(child.ID)
	if got == nil || got.ID != parent.ID {
		t.Fatalf("expected child to resolve parent, got %v", got)
	}
}

func TestEntityAt_PicksMostNestedEntity(t *testing.T) {
	idx := NewIndex()
	file := entity.New("go://a.go", "a", entity.KindFile, entity.Location{FilePath: "a.go", StartLine: 1, EndLine: 100}, "go")
	fn := entity.New("go://a.go::Foo", "Foo", entity.KindFunction, entity.Location{FilePath: "a.go", StartLine: 10, EndLine: 20}, "go")
	idx.AddEntity(file)
	idx.AddEntity(fn)
	idx.RebuildCaches()

	got := idx.EntityAt("a.go", 15)
	if got == nil || got.ID != fn.ID {
		t.Fatalf("expected to find innermost entity Foo, got %v", got)
	}
}

func TestStronglyConnectedComponents_SimpleCycle(t *testing.T) {
	g := NewDiGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("C", "A")

	sccs := StronglyConnectedComponents(g)
	found := false
	for _, scc := range sccs {
		if len(scc) == 3 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected one SCC of size 3, got %v", sccs)
	}
	if !HasCycle(g) {
		t.Fatal("expected HasCycle true for a 3-cycle")
	}
}

func TestHasCycle_AcyclicGraphReturnsFalse(t *testing.T) {
	g := NewDiGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	if HasCycle(g) {
		t.Fatal("expected acyclic graph to report no cycle")
	}
}

func TestBetweennessCentrality_HubHasHighestScore(t *testing.T) {
	g := NewDiGraph()
	// Star graph: hub imported by 5 siblings, and hub imports one leaf per sibling.
	for i := 0; i < 5; i++ {
		sib := string(rune('A' + i))
		g.AddEdge(sib, "hub")
		g.AddEdge("hub", sib+"2")
	}

	c := BetweennessCentrality(g, 64)
	hubScore := c["hub"]
	for k, v := range c {
		if k != "hub" && v > hubScore {
			t.Fatalf("expected hub to have highest centrality, but %s (%f) > hub (%f)", k, v, hubScore)
		}
	}
}

func TestMerge_UnionsEntitiesFilesAndGraphs(t *testing.T) {
	a := NewIndex()
	fa := entity.New("go://a.go", "a", entity.KindFile, entity.Location{FilePath: "a.go", StartLine: 1, EndLine: 1}, "go")
	a.AddEntity(fa)
	a.ImportGraph.AddEdge(fa.ID, "go://b.go")

	b := NewIndex()
	fb := entity.New("go://b.go", "b", entity.KindFile, entity.Location{FilePath: "b.go", StartLine: 1, EndLine: 1}, "go")
	b.AddEntity(fb)

	a.Merge(b)
	a.RebuildCaches()

	if a.Count() != 2 {
		t.Fatalf("expected 2 entities after merge, got %d", a.Count())
	}
	if !a.ImportGraph.HasNode("go://b.go") {
		t.Fatal("expected merged import graph to retain edge to go://b.go")
	}
}
