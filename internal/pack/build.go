package pack

import (
	"sort"

	"github.com/sibyllinesoft/refactorlens/internal/debug"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// Config selects which pack families run and how the final list is shaped.
type Config struct {
	EnableClone      bool
	EnableCycle      bool
	EnableChokepoint bool
	EnableCoverage   bool
	EnableStructure  bool

	MaxPacks          int // default 20
	NonOverlap        bool
	CentralitySamples int // default 64

	Clone      CloneConfig
	Chokepoint ChokepointConfig
	Coverage   CoverageConfig
	Structure  StructureConfig
}

func DefaultConfig() Config {
	return Config{
		EnableClone:       true,
		EnableCycle:       true,
		EnableChokepoint:  true,
		EnableCoverage:    true,
		EnableStructure:   true,
		MaxPacks:          20,
		NonOverlap:        true,
		CentralitySamples: 64,
		Clone:             DefaultCloneConfig(),
		Chokepoint:        DefaultChokepointConfig(),
		Coverage:          DefaultCoverageConfig(),
		Structure:         DefaultStructureConfig(),
	}
}

// Inputs bundles the external collaborator data the families consume.
type Inputs struct {
	CloneGroups []CloneGroup
	Coverage    *CoverageReport
	Structure   *StructureInput
}

// Build runs every enabled family against the frozen parse index, ranks the
// union by value/effort ratio, applies the non-overlap filter, and
// truncates to MaxPacks.
func Build(idx *graph.Index, cfg Config, in Inputs) []*Pack {
	var packs []*Pack

	if cfg.EnableClone {
		packs = append(packs, BuildClonePacks(idx, in.CloneGroups, cfg.Clone)...)
	}
	if cfg.EnableCycle {
		cycleCfg := DefaultCycleConfig()
		cycleCfg.CentralitySamples = cfg.CentralitySamples
		packs = append(packs, BuildCyclePacks(idx.ImportGraph, cycleCfg)...)
	}
	if cfg.EnableChokepoint {
		chokeCfg := cfg.Chokepoint
		chokeCfg.CentralitySamples = cfg.CentralitySamples
		packs = append(packs, BuildChokepointPacks(idx.ImportGraph, chokeCfg)...)
	}
	if cfg.EnableCoverage {
		packs = append(packs, BuildCoveragePacks(idx, in.Coverage, cfg.Coverage)...)
	}
	if cfg.EnableStructure {
		packs = append(packs, BuildStructurePacks(idx, in.Structure, cfg.Structure)...)
	}

	RankPacks(packs)
	if cfg.NonOverlap {
		packs = filterNonOverlap(packs)
	}
	if cfg.MaxPacks > 0 && len(packs) > cfg.MaxPacks {
		packs = packs[:cfg.MaxPacks]
	}
	debug.LogPack("built %d packs", len(packs))
	return packs
}

// RankPacks sorts packs in place by descending value/effort ratio, breaking
// ties by pack id for determinism.
func RankPacks(packs []*Pack) {
	sort.SliceStable(packs, func(i, j int) bool {
		ri, rj := Ratio(packs[i]), Ratio(packs[j])
		if ri != rj {
			return ri > rj
		}
		return packs[i].ID < packs[j].ID
	})
}

// Ratio is the value/effort score used for ranking. Effort is floored at a
// small epsilon so a near-free pack ranks high rather than dividing by
// zero.
func Ratio(p *Pack) float64 {
	effort := effortScore(p)
	if effort < 0.1 {
		effort = 0.1
	}
	return valueScore(p) / effort
}

// filterNonOverlap keeps packs in ranked order, dropping any pack whose
// involved-entity set intersects an already-selected pack's set.
func filterNonOverlap(packs []*Pack) []*Pack {
	claimed := map[string]struct{}{}
	var out []*Pack
	for _, p := range packs {
		involved := p.InvolvedEntities()
		overlap := false
		for id := range involved {
			if _, ok := claimed[id]; ok {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		for id := range involved {
			claimed[id] = struct{}{}
		}
		out = append(out, p)
	}
	return out
}
