package pack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// cloneSourceIndex builds an index holding one file entity per path with
// the given raw text, the way adapters retain file content.
func cloneSourceIndex(files map[string]string) *graph.Index {
	idx := graph.NewIndex()
	for path, text := range files {
		e := entity.New("python://"+path, path, entity.KindFile,
			entity.Location{FilePath: path, StartLine: 1, EndLine: strings.Count(text, "\n") + 1}, "python")
		e.RawText = text
		idx.AddEntity(e)
	}
	idx.RebuildCaches()
	return idx
}

func repeatedLines(line string, n int) string {
	return strings.TrimSuffix(strings.Repeat(line+"\n", n), "\n")
}

func TestBuildClonePacks_TwoIdenticalFunctions(t *testing.T) {
	// Two identical 30-line functions in A.py and B.py, similarity 1.0.
	group := CloneGroup{Members: []CloneMember{
		{EntityID: "python://A.py::f", Path: "A.py", StartLine: 1, EndLine: 30, Similarity: 1.0},
		{EntityID: "python://B.py::f", Path: "B.py", StartLine: 1, EndLine: 30, Similarity: 1.0},
	}}

	packs := BuildClonePacks(graph.NewIndex(), []CloneGroup{group}, DefaultCloneConfig())
	require.Len(t, packs, 1)

	p := packs[0]
	assert.Equal(t, KindCloneConsolidation, p.Kind)
	assert.Len(t, p.Clone.Members, 2)
	assert.Empty(t, p.Clone.Template.Parameters, "identical clones need no parameters")
	assert.Equal(t, 60, p.Value.DupLOCRemoved)
	assert.Equal(t, 2, p.Effort.CallSites)
	require.NotEmpty(t, p.Steps)
	assert.True(t, strings.HasPrefix(p.Steps[0], "Extract"), "first step should begin with Extract, got %q", p.Steps[0])
}

func TestBuildClonePacks_FiltersBySimilarityAndLOC(t *testing.T) {
	lowSim := CloneGroup{Members: []CloneMember{
		{Path: "a.py", StartLine: 1, EndLine: 40, Similarity: 0.5},
		{Path: "b.py", StartLine: 1, EndLine: 40, Similarity: 0.5},
	}}
	tooSmall := CloneGroup{Members: []CloneMember{
		{Path: "a.py", StartLine: 1, EndLine: 10, Similarity: 0.95},
		{Path: "b.py", StartLine: 1, EndLine: 10, Similarity: 0.95},
	}}

	assert.Empty(t, BuildClonePacks(graph.NewIndex(), []CloneGroup{lowSim, tooSmall}, DefaultCloneConfig()))
}

func TestBuildClonePacks_NearDuplicatesGetParameters(t *testing.T) {
	group := CloneGroup{Members: []CloneMember{
		{Path: "a.py", StartLine: 1, EndLine: 40, Similarity: 0.9},
		{Path: "b.py", StartLine: 1, EndLine: 40, Similarity: 0.9},
	}}

	packs := BuildClonePacks(graph.NewIndex(), []CloneGroup{group}, DefaultCloneConfig())
	require.Len(t, packs, 1)
	assert.NotEmpty(t, packs[0].Clone.Template.Parameters)

	hasParamStep := false
	for _, s := range packs[0].Steps {
		if strings.HasPrefix(s, "Add parameters") {
			hasParamStep = true
		}
	}
	assert.True(t, hasParamStep)
}

func TestBuildClonePacks_ParameterCapCollapsesToConfigObject(t *testing.T) {
	group := CloneGroup{Members: []CloneMember{
		{Path: "a.py", StartLine: 1, EndLine: 40, Similarity: 0.85},
		{Path: "b.py", StartLine: 1, EndLine: 40, Similarity: 0.85},
	}}
	cfg := DefaultCloneConfig()
	cfg.MaxParameters = 2

	packs := BuildClonePacks(graph.NewIndex(), []CloneGroup{group}, cfg)
	require.Len(t, packs, 1)
	params := packs[0].Clone.Template.Parameters
	require.Len(t, params, 1)
	assert.Equal(t, "config", params[0].Name)
}

func TestMedoidIndex_MaximizesSummedSimilarity(t *testing.T) {
	members := []CloneMember{
		{Path: "a.py", Similarity: 0.86},
		{Path: "b.py", Similarity: 0.99},
		{Path: "c.py", Similarity: 0.9},
	}
	// The medoid is the member maximizing summed similarity to the others,
	// i.e. the one whose own (lower) similarity is excluded from its total.
	assert.Equal(t, 0, medoidIndex(graph.NewIndex(), members))
}

func TestMedoidIndex_TextBreaksFlatSimilarityTie(t *testing.T) {
	body := repeatedLines("    total += compute(item)", 10)
	divergent := repeatedLines("    result = frobnicate(widget)", 10)
	idx := cloneSourceIndex(map[string]string{
		"a.py": body,
		"b.py": body,
		"c.py": divergent,
	})
	// Flat similarity matrix: only member text can separate the candidates.
	members := []CloneMember{
		{Path: "a.py", StartLine: 1, EndLine: 10, Similarity: 0.9},
		{Path: "b.py", StartLine: 1, EndLine: 10, Similarity: 0.9},
		{Path: "c.py", StartLine: 1, EndLine: 10, Similarity: 0.9},
	}

	got := medoidIndex(idx, members)
	assert.NotEqual(t, 2, got, "the textual outlier must not be picked as medoid")
}

func TestExtractOptionalBlocks_SubsetLineIsOptional(t *testing.T) {
	shared := repeatedLines("    total += compute(item)", 5)
	withExtra := shared + "\n    audit_log(item)"
	idx := cloneSourceIndex(map[string]string{
		"a.py": withExtra,
		"b.py": withExtra,
		"c.py": shared + "\n    pass",
	})
	members := []CloneMember{
		{Path: "a.py", StartLine: 1, EndLine: 6, Similarity: 0.9},
		{Path: "b.py", StartLine: 1, EndLine: 6, Similarity: 0.9},
		{Path: "c.py", StartLine: 1, EndLine: 6, Similarity: 0.9},
	}

	blocks := extractOptionalBlocks(idx, members)
	require.NotEmpty(t, blocks)
	for _, b := range blocks {
		assert.Less(t, len(b.AppearsIn), len(members), "an optional block must be absent from at least one member")
	}
}

func TestExtractOptionalBlocks_UniformGroupYieldsNothing(t *testing.T) {
	body := repeatedLines("    total += compute(item)", 6)
	idx := cloneSourceIndex(map[string]string{
		"a.py": body,
		"b.py": body,
		"c.py": body,
	})
	members := []CloneMember{
		{Path: "a.py", StartLine: 1, EndLine: 6, Similarity: 1.0},
		{Path: "b.py", StartLine: 1, EndLine: 6, Similarity: 1.0},
		{Path: "c.py", StartLine: 1, EndLine: 6, Similarity: 1.0},
	}

	assert.Empty(t, extractOptionalBlocks(idx, members),
		"members sharing every line digest have no optional blocks")
}

func TestExtractOptionalBlocks_NoSourceTextYieldsNothing(t *testing.T) {
	members := []CloneMember{
		{Path: "a.py", StartLine: 1, EndLine: 6, Similarity: 0.9},
		{Path: "b.py", StartLine: 1, EndLine: 6, Similarity: 0.9},
		{Path: "c.py", StartLine: 1, EndLine: 6, Similarity: 0.9},
	}

	assert.Empty(t, extractOptionalBlocks(graph.NewIndex(), members),
		"without indexed member text the subset test cannot run")
}

func TestSuggestTarget_FollowsLanguageConvention(t *testing.T) {
	members := []CloneMember{{Path: "src/a.ts"}, {Path: "src/b.ts"}}
	target := suggestTarget(members)
	assert.Equal(t, "typescript", target.Language)
	assert.Equal(t, "sharedTransform", target.Export)
}
