package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibyllinesoft/refactorlens/internal/config"
	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
	"github.com/sibyllinesoft/refactorlens/internal/normalize"
)

func TestAnalyze_EmptyRepository(t *testing.T) {
	RegisterLanguages()

	cfg := config.Default()
	cfg.Roots = []string{t.TempDir()}

	result, err := Analyze(context.Background(), Options{Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, 0, result.FileCount)
	assert.Equal(t, 0, result.EntityCount)
	assert.Empty(t, result.TopEntities)
	assert.Empty(t, result.Packs)
	assert.NotEmpty(t, result.RunID)
}

func TestAnalyze_MissingRootIsConfigError(t *testing.T) {
	RegisterLanguages()

	cfg := config.Default()
	cfg.Roots = []string{"/definitely/does/not/exist"}

	_, err := Analyze(context.Background(), Options{Config: cfg})
	assert.Error(t, err)
}

func TestAnalyze_UnknownLanguageIsFatalWhenAlone(t *testing.T) {
	RegisterLanguages()

	cfg := config.Default()
	cfg.Roots = []string{t.TempDir()}
	cfg.Languages = []string{"cobol"}

	_, err := Analyze(context.Background(), Options{Config: cfg})
	assert.Error(t, err, "no usable adapter at all must be fatal")
}

func TestAnalyze_UnknownLanguageIsPartialWhenOthersRemain(t *testing.T) {
	RegisterLanguages()

	cfg := config.Default()
	cfg.Roots = []string{t.TempDir()}
	cfg.Languages = []string{"python", "cobol"}

	result, err := Analyze(context.Background(), Options{Config: cfg})
	require.NoError(t, err)
	assert.True(t, result.PartialFailure)
}

func zeroVarianceIndex() *graph.Index {
	idx := graph.NewIndex()
	for _, name := range []string{"a", "b", "c"} {
		e := entity.New("python://"+name+".py::f", "f", entity.KindFunction,
			entity.Location{FilePath: name + ".py", StartLine: 1, EndLine: 10 + len(name)}, "python")
		e.Metrics["complexity.cyclomatic"] = 1
		e.Metrics["complexity.loc"] = float64(10 + len(name))
		idx.AddEntity(e)
	}
	idx.RebuildCaches()
	return idx
}

func TestNormalizeAll_ZeroVarianceFeatureMapsToNeutral(t *testing.T) {
	idx := zeroVarianceIndex()
	normalizeAll(idx, normalize.StrategyBayesian)

	for _, e := range idx.AllEntities() {
		assert.Equal(t, 0.5, e.Normalized["complexity.cyclomatic"],
			"zero-variance feature must map every entity to exactly 0.5")
		assert.GreaterOrEqual(t, e.Normalized["complexity.loc"], 0.0)
		assert.LessOrEqual(t, e.Normalized["complexity.loc"], 1.0)
	}
}

func TestRankEntities_DeterministicTieBreak(t *testing.T) {
	idx := zeroVarianceIndex()
	normalizeAll(idx, normalize.StrategyBayesian)

	cfg := config.Default()
	cfg.Weights = map[string]float64{"complexity.cyclomatic": 1.0}

	first := rankEntities(idx, cfg)
	second := rankEntities(idx, cfg)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Score, second[i].Score)
	}
	// All scores tie at 0.5; LOC descending breaks the tie, id ascending after.
	require.Len(t, first, 3)
	assert.Equal(t, "python://a.py::f", first[0].ID, "equal LOC ties resolve by id ascending")
}

func TestRankEntities_GranularityFileFiltersKinds(t *testing.T) {
	idx := zeroVarianceIndex()
	file := entity.New("python://a.py", "a.py", entity.KindFile,
		entity.Location{FilePath: "a.py", StartLine: 1, EndLine: 100}, "python")
	file.Metrics["complexity.cyclomatic"] = 1
	idx.AddEntity(file)
	idx.RebuildCaches()
	normalizeAll(idx, normalize.StrategyBayesian)

	cfg := config.Default()
	cfg.Granularity = config.GranularityFile

	ranked := rankEntities(idx, cfg)
	require.Len(t, ranked, 1)
	assert.Equal(t, entity.KindFile, ranked[0].Kind)
}

func TestChunkFiles_PreservesOrderAndCoversAll(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e"}
	chunks := chunkFiles(files, 2)

	var flat []string
	for _, c := range chunks {
		flat = append(flat, c...)
	}
	assert.Equal(t, files, flat)
}

func TestDefaultCoverageReportCandidates_WellKnownPaths(t *testing.T) {
	candidates := DefaultCoverageReportCandidates()
	assert.Contains(t, candidates, "coverage.json")
	assert.Contains(t, candidates, "coverage/lcov.info")
}
