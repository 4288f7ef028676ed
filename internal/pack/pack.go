// Package pack implements the impact pack builder: five constructors, one
// per pack family, each consuming the parse index plus a family-specific
// external input (clone groups, coverage, community assignments) and
// emitting ranked refactor recommendations. Packs from every family are
// ranked together by value/effort ratio, then filtered for non-overlap.
package pack

// Kind is the closed set of impact pack families.
type Kind string

const (
	KindCloneConsolidation  Kind = "clone-consolidation"
	KindCycleCut            Kind = "cycle-cut"
	KindChokepointElim      Kind = "chokepoint-elimination"
	KindCoverageImprovement Kind = "coverage-improvement"
	KindStructureSplit      Kind = "structure-split"
)

// Value carries the kind-dependent value metrics a pack claims.
type Value struct {
	DupLOCRemoved          int
	ScoreDropEstimate      float64
	CyclesRemoved          int
	SCCCountDelta          int
	AvgPathLenDelta        float64
	CrossCommunityEdgesCut int
	CoverageGainPct        float64
	ImbalanceGain          float64
}

// Effort carries the kind-dependent effort metrics a pack claims.
type Effort struct {
	LOCTouched      int
	CallSites       int
	ModulesTouched  int
	ImportsToRehome int
}

// Pack is the tagged union every family builder emits. Ranking and
// non-overlap operate on the shared fields; kind-specific payloads are
// carried in the optional pointer fields, exactly one of which is non-nil
// for any given pack.
type Pack struct {
	ID           string
	Kind         Kind
	Value        Value
	Effort       Effort
	Steps        []string
	Explanations []string

	Clone      *ClonePayload
	Cycle      *CyclePayload
	Chokepoint *ChokepointPayload
	Coverage   *CoveragePayload
	Structure  *StructurePayload
}

// InvolvedEntities returns the set of entity/file identifiers this pack
// touches, used by the non-overlap filter.
func (p *Pack) InvolvedEntities() map[string]struct{} {
	out := map[string]struct{}{}
	add := func(id string) {
		if id != "" {
			out[id] = struct{}{}
		}
	}
	switch {
	case p.Clone != nil:
		for _, m := range p.Clone.Members {
			add(m.EntityID)
		}
	case p.Cycle != nil:
		for _, n := range p.Cycle.SCCMembers {
			add(n)
		}
		for _, n := range p.Cycle.CutNodes {
			add(n)
		}
	case p.Chokepoint != nil:
		add(p.Chokepoint.Node)
	case p.Coverage != nil:
		for _, seg := range p.Coverage.Segments {
			add(seg.FilePath)
			add(seg.EntityID)
		}
	case p.Structure != nil:
		add(p.Structure.Path)
	}
	return out
}

// valueScore and effortScore are the per-family scalar formulas the
// ranking ratio is built from; the constants differ per family because
// each family's value and effort are measured in different units.
func valueScore(p *Pack) float64 {
	switch {
	case p.Clone != nil:
		return float64(p.Value.DupLOCRemoved)/100.0 + p.Value.ScoreDropEstimate*10
	case p.Cycle != nil:
		return float64(p.Value.CyclesRemoved) + 0.5*float64(p.Value.SCCCountDelta) + 10*p.Value.AvgPathLenDelta
	case p.Chokepoint != nil:
		return float64(p.Value.CrossCommunityEdgesCut) * 2.0
	case p.Coverage != nil:
		linesFactor := p.Coverage.EstimatedLinesToCover / 50.0
		if linesFactor > 2.0 {
			linesFactor = 2.0
		}
		return p.Value.CoverageGainPct*0.1 + linesFactor*0.5
	case p.Structure != nil:
		return p.Value.ImbalanceGain
	}
	return 1.0
}

func effortScore(p *Pack) float64 {
	switch {
	case p.Clone != nil:
		return float64(p.Effort.LOCTouched)/10.0 + float64(p.Effort.CallSites)
	case p.Cycle != nil:
		return float64(p.Effort.ModulesTouched) + float64(p.Effort.ImportsToRehome)/3.0
	case p.Chokepoint != nil:
		return float64(p.Effort.ModulesTouched) + float64(p.Effort.ImportsToRehome)/5.0
	case p.Coverage != nil:
		return float64(p.Effort.LOCTouched) / 20.0
	case p.Structure != nil:
		return float64(p.Effort.ModulesTouched)
	}
	return 1.0
}
