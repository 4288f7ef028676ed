package pack

import (
	"path/filepath"
	"sort"

	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// StructureInput carries externally computed community assignments; the
// partitioning itself is an external collaborator, the core consumes its
// output.
type StructureInput struct {
	// FileCommunities maps file path -> entity id -> community label, for
	// files whose internal entity graph has been partitioned.
	FileCommunities map[string]map[string]int

	// DirCommunities maps directory -> file path -> community label, for
	// directories whose files have been clustered.
	DirCommunities map[string]map[string]int
}

// StructureConfig holds the size thresholds for the structure family.
type StructureConfig struct {
	LargeFileLines int // default 800
	MaxFilesPerDir int // default 25
}

func DefaultStructureConfig() StructureConfig {
	return StructureConfig{LargeFileLines: 800, MaxFilesPerDir: 25}
}

// StructurePayload is the structure-split pack's kind-specific data. Mode
// distinguishes the two shapes: "file-split" proposes splitting one large
// file along its entity communities, "branch-reorg" proposes subdirectories
// for an overcrowded directory.
type StructurePayload struct {
	Mode        string
	Path        string
	Communities map[int][]string
}

// BuildStructurePacks emits one file-split pack per oversized file with a
// multi-community entity partition, and one branch-reorg pack per
// overcrowded directory.
func BuildStructurePacks(idx *graph.Index, in *StructureInput, cfg StructureConfig) []*Pack {
	if in == nil {
		return nil
	}
	var packs []*Pack
	packs = append(packs, buildFileSplitPacks(idx, in, cfg, len(packs))...)
	packs = append(packs, buildBranchReorgPacks(in, cfg, len(packs))...)
	return packs
}

func buildFileSplitPacks(idx *graph.Index, in *StructureInput, cfg StructureConfig, startIndex int) []*Pack {
	paths := sortedMapKeys(in.FileCommunities)

	var packs []*Pack
	for _, path := range paths {
		fileID, ok := idx.FileEntityID(path)
		if !ok {
			continue
		}
		fileEnt, ok := idx.Entity(fileID)
		if !ok || fileEnt.LOC() < cfg.LargeFileLines {
			continue
		}
		communities := groupByCommunity(in.FileCommunities[path])
		if len(communities) < 2 {
			continue
		}

		gain := imbalanceGain(communities)
		packs = append(packs, &Pack{
			ID:   idFor("structurepack", "SPLIT", startIndex+len(packs)),
			Kind: KindStructureSplit,
			Value: Value{
				ImbalanceGain: gain,
			},
			Effort: Effort{
				ModulesTouched: len(communities),
				LOCTouched:     fileEnt.LOC(),
			},
			Steps:        fileSplitSteps(path, communities),
			Explanations: []string{"File exceeds " + intStr(cfg.LargeFileLines) + " lines and its entities cluster into " + intStr(len(communities)) + " cohesive groups."},
			Structure: &StructurePayload{
				Mode:        "file-split",
				Path:        path,
				Communities: communities,
			},
		})
	}
	return packs
}

func buildBranchReorgPacks(in *StructureInput, cfg StructureConfig, startIndex int) []*Pack {
	dirs := sortedMapKeys(in.DirCommunities)

	var packs []*Pack
	for _, dir := range dirs {
		files := in.DirCommunities[dir]
		if len(files) <= cfg.MaxFilesPerDir {
			continue
		}
		communities := groupByCommunity(files)
		if len(communities) < 2 {
			continue
		}

		gain := imbalanceGain(communities)
		packs = append(packs, &Pack{
			ID:   idFor("structurepack", "DIR", startIndex+len(packs)),
			Kind: KindStructureSplit,
			Value: Value{
				ImbalanceGain: gain,
			},
			Effort: Effort{
				ModulesTouched: len(communities),
			},
			Steps:        branchReorgSteps(dir, communities),
			Explanations: []string{"Directory holds " + intStr(len(files)) + " files (threshold " + intStr(cfg.MaxFilesPerDir) + "); clustering suggests " + intStr(len(communities)) + " subdirectories."},
			Structure: &StructurePayload{
				Mode:        "branch-reorg",
				Path:        dir,
				Communities: communities,
			},
		})
	}
	return packs
}

func groupByCommunity(assignments map[string]int) map[int][]string {
	out := map[int][]string{}
	for member, community := range assignments {
		out[community] = append(out[community], member)
	}
	for c := range out {
		sort.Strings(out[c])
	}
	return out
}

// imbalanceGain estimates how much more evenly the members would be
// distributed after the split: 1 minus the largest community's share.
func imbalanceGain(communities map[int][]string) float64 {
	total, largest := 0, 0
	for _, members := range communities {
		total += len(members)
		if len(members) > largest {
			largest = len(members)
		}
	}
	if total == 0 {
		return 0
	}
	return 1.0 - float64(largest)/float64(total)
}

func fileSplitSteps(path string, communities map[int][]string) []string {
	base := filepath.Base(path)
	steps := []string{
		"Split " + base + " into " + intStr(len(communities)) + " files, one per cohesive entity group.",
		"Move each group's entities together; keep the public surface re-exported from the original path during migration.",
		"Update imports in dependent modules.",
	}
	return steps
}

func branchReorgSteps(dir string, communities map[int][]string) []string {
	return []string{
		"Create " + intStr(len(communities)) + " subdirectories under " + dir + ", one per file cluster.",
		"Move each cluster's files into its subdirectory.",
		"Rehome imports referencing the moved files.",
	}
}

func sortedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
