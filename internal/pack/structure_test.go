package pack

import (
	"fmt"
	"testing"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

func TestBuildStructurePacks_FileSplitForOversizedFile(t *testing.T) {
	idx := graph.NewIndex()
	big := entity.New("python://big.py", "big.py", entity.KindFile,
		entity.Location{FilePath: "big.py", StartLine: 1, EndLine: 1200}, "python")
	idx.AddEntity(big)
	idx.RebuildCaches()

	in := &StructureInput{
		FileCommunities: map[string]map[string]int{
			"big.py": {
				"python://big.py::a": 0,
				"python://big.py::b": 0,
				"python://big.py::c": 1,
				"python://big.py::d": 1,
			},
		},
	}

	packs := BuildStructurePacks(idx, in, DefaultStructureConfig())
	if len(packs) != 1 {
		t.Fatalf("expected one file-split pack, got %d", len(packs))
	}
	p := packs[0]
	if p.Kind != KindStructureSplit || p.Structure.Mode != "file-split" {
		t.Errorf("unexpected pack shape: kind=%s mode=%s", p.Kind, p.Structure.Mode)
	}
	if p.Value.ImbalanceGain != 0.5 {
		t.Errorf("even 2-way split should gain 0.5, got %f", p.Value.ImbalanceGain)
	}
	if p.Effort.ModulesTouched != 2 {
		t.Errorf("expected 2 modules touched, got %d", p.Effort.ModulesTouched)
	}
}

func TestBuildStructurePacks_SmallFileIsSkipped(t *testing.T) {
	idx := graph.NewIndex()
	small := entity.New("python://small.py", "small.py", entity.KindFile,
		entity.Location{FilePath: "small.py", StartLine: 1, EndLine: 100}, "python")
	idx.AddEntity(small)
	idx.RebuildCaches()

	in := &StructureInput{
		FileCommunities: map[string]map[string]int{
			"small.py": {"python://small.py::a": 0, "python://small.py::b": 1},
		},
	}
	if packs := BuildStructurePacks(idx, in, DefaultStructureConfig()); len(packs) != 0 {
		t.Fatalf("file under the large-file threshold must not split, got %d packs", len(packs))
	}
}

func TestBuildStructurePacks_BranchReorgForOvercrowdedDir(t *testing.T) {
	files := map[string]int{}
	for i := 0; i < 30; i++ {
		files[fmt.Sprintf("pkg/f%02d.py", i)] = i % 3
	}
	in := &StructureInput{DirCommunities: map[string]map[string]int{"pkg": files}}

	packs := BuildStructurePacks(graph.NewIndex(), in, DefaultStructureConfig())
	if len(packs) != 1 {
		t.Fatalf("expected one branch-reorg pack, got %d", len(packs))
	}
	p := packs[0]
	if p.Structure.Mode != "branch-reorg" || p.Structure.Path != "pkg" {
		t.Errorf("unexpected payload: %+v", p.Structure)
	}
	if len(p.Structure.Communities) != 3 {
		t.Errorf("expected 3 communities, got %d", len(p.Structure.Communities))
	}
}

func TestBuildStructurePacks_NilInputEmitsNothing(t *testing.T) {
	if packs := BuildStructurePacks(graph.NewIndex(), nil, DefaultStructureConfig()); packs != nil {
		t.Fatalf("nil structure input must yield no packs, got %v", packs)
	}
}
