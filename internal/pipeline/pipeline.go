// Package pipeline wires the analysis stages end to end: discovery,
// per-language parsing, index merge, feature extraction, normalization,
// ranking, and impact-pack building.
package pipeline

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sibyllinesoft/refactorlens/internal/adapter"
	"github.com/sibyllinesoft/refactorlens/internal/config"
	"github.com/sibyllinesoft/refactorlens/internal/debug"
	"github.com/sibyllinesoft/refactorlens/internal/discover"
	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/errs"
	"github.com/sibyllinesoft/refactorlens/internal/feature"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
	"github.com/sibyllinesoft/refactorlens/internal/normalize"
	"github.com/sibyllinesoft/refactorlens/internal/pack"
	"github.com/sibyllinesoft/refactorlens/internal/rank"
)

// Options bundles the configuration and the externally supplied
// collaborator inputs for one run.
type Options struct {
	Config      *config.Config
	CloneGroups []pack.CloneGroup
	Coverage    *pack.CoverageReport
	Structure   *pack.StructureInput

	// Workers caps the parse/extract pools; 0 means NumCPU.
	Workers int
}

// RankedEntity is one top-K row in the result envelope.
type RankedEntity struct {
	ID       string
	Name     string
	Kind     entity.Kind
	Score    float64
	Features map[string]float64
}

// Result is the analysis-result envelope.
type Result struct {
	RunID       string
	Config      *config.Config
	FileCount   int
	EntityCount int
	Elapsed     time.Duration
	TopEntities []RankedEntity
	Packs       []*pack.Pack
	Diagnostics *errs.Diagnostics

	// PartialFailure is set when some requested adapters were unavailable
	// but the analysis still completed (CLI exit code 2).
	PartialFailure bool
}

// Analyze runs the full pipeline over a snapshot. Configuration errors and
// the absence of any usable adapter are fatal; everything else is recovered
// locally and recorded as a diagnostic.
func Analyze(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	diags := &errs.Diagnostics{}

	languages, partial, err := resolveLanguages(cfg.Languages, diags)
	if err != nil {
		return nil, err
	}

	files, err := discover.Discover(discover.Options{
		Roots:     cfg.Roots,
		Include:   cfg.Include,
		Exclude:   cfg.Exclude,
		Languages: languages,
	}, diags)
	if err != nil {
		return nil, err
	}

	idx, err := parseAll(ctx, files, opts.Workers)
	if err != nil {
		return nil, err
	}
	mergeDiags(diags, idx)
	debug.Log("PIPELINE", "merged index: %d entities, import graph %d nodes / %d edges, call graph %d nodes / %d edges",
		idx.index.Count(),
		len(idx.index.ImportGraph.Nodes()), idx.index.ImportGraph.EdgeCount(),
		len(idx.index.CallGraph.Nodes()), idx.index.CallGraph.EdgeCount())

	extractors := buildExtractors(opts.CloneGroups)
	active := filterExtractors(extractors, cfg.DisabledExtractors)
	if err := feature.RunParallel(ctx, active, idx.index, diags, opts.Workers); err != nil {
		return nil, err
	}
	// FillDefaults sees the full registry, so a disabled extractor's
	// features still land at their declared defaults.
	feature.FillDefaults(extractors, idx.index)

	// Raw text dominates peak memory; pack building only needs it on file
	// entities (coverage context lines), so child entities shed theirs now.
	for _, e := range idx.index.AllEntities() {
		if e.Kind != entity.KindFile {
			e.RawText = ""
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalizeAll(idx.index, normalize.Strategy(cfg.Normalizer))
	top := rankEntities(idx.index, cfg)

	packs := pack.Build(idx.index, packConfig(cfg), pack.Inputs{
		CloneGroups: opts.CloneGroups,
		Coverage:    opts.Coverage,
		Structure:   opts.Structure,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{
		RunID:          uuid.NewString(),
		Config:         cfg,
		FileCount:      idx.index.FileCount(),
		EntityCount:    idx.index.Count(),
		Elapsed:        time.Since(start),
		TopEntities:    top,
		Packs:          packs,
		Diagnostics:    diags,
		PartialFailure: partial,
	}, nil
}

// resolveLanguages maps the requested language set onto available adapters.
// Unsupported languages are warnings while at least one requested language
// has an adapter; if none does, the run is fatal.
func resolveLanguages(requested []string, diags *errs.Diagnostics) ([]string, bool, error) {
	if len(requested) == 0 {
		var all []string
		for _, st := range adapter.All() {
			if st.Available {
				all = append(all, st.Language)
			}
		}
		sort.Strings(all)
		if len(all) == 0 {
			return nil, false, errs.NewConfigError("languages", "", &errs.LanguageNotSupportedError{Language: "*"})
		}
		return all, false, nil
	}

	var usable []string
	partial := false
	for _, lang := range requested {
		if _, ok := adapter.Get(lang); ok {
			usable = append(usable, lang)
			continue
		}
		partial = true
		diags.Warning(errs.KindLanguageNotSupported, "",
			(&errs.LanguageNotSupportedError{Language: lang}).Error())
	}
	if len(usable) == 0 {
		return nil, false, errs.NewConfigError("languages", "",
			&errs.LanguageNotSupportedError{Language: requested[0]})
	}
	sort.Strings(usable)
	return usable, partial, nil
}

// mergedIndex pairs the merged parse index with the per-language
// diagnostics collected while building it.
type mergedIndex struct {
	index *graph.Index
	diags []*errs.Diagnostics
}

// parseAll parses every discovered file, chunking each language's file list
// across a worker pool
// and merging each chunk's partial index under a mutex as the chunk finishes.
func parseAll(ctx context.Context, files *discover.Result, workers int) (*mergedIndex, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	merged := &mergedIndex{index: graph.NewIndex()}
	var mu sync.Mutex

	langs := make([]string, 0, len(files.ByLanguage))
	for lang := range files.ByLanguage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, lang := range langs {
		a, ok := adapter.Get(lang)
		if !ok {
			continue
		}
		for _, chunk := range chunkFiles(files.ByLanguage[lang], workers) {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				partial, pdiags := a.ParseIndex(chunk)
				mu.Lock()
				merged.index.Merge(partial)
				merged.diags = append(merged.diags, pdiags)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged.index.RebuildCaches()
	return merged, nil
}

func mergeDiags(diags *errs.Diagnostics, idx *mergedIndex) {
	for _, pd := range idx.diags {
		for _, d := range pd.All() {
			diags.Add(d.Severity, d.Kind, d.FilePath, d.Message)
		}
	}
}

// chunkFiles splits a sorted file list into up to n contiguous chunks,
// preserving order so entity emission stays deterministic.
func chunkFiles(files []string, n int) [][]string {
	if len(files) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	size := (len(files) + n - 1) / n
	var chunks [][]string
	for start := 0; start < len(files); start += size {
		end := start + size
		if end > len(files) {
			end = len(files)
		}
		chunks = append(chunks, files[start:end])
	}
	return chunks
}

func buildExtractors(cloneGroups []pack.CloneGroup) []feature.Extractor {
	featGroups := make([]feature.CloneGroup, len(cloneGroups))
	for i, g := range cloneGroups {
		members := make([]feature.CloneMember, len(g.Members))
		for j, m := range g.Members {
			members[j] = feature.CloneMember{
				EntityID:   m.EntityID,
				Path:       m.Path,
				StartLine:  m.StartLine,
				EndLine:    m.EndLine,
				Similarity: m.Similarity,
			}
		}
		featGroups[i] = feature.CloneGroup{Members: members}
	}

	return []feature.Extractor{
		feature.NewComplexity(),
		feature.NewGraph(),
		feature.NewRefactoring(),
		feature.NewClone(featGroups),
	}
}

func filterExtractors(extractors []feature.Extractor, disabled []string) []feature.Extractor {
	if len(disabled) == 0 {
		return extractors
	}
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}
	var active []feature.Extractor
	for _, ex := range extractors {
		if !skip[ex.Name()] {
			active = append(active, ex)
		}
	}
	return active
}

// normalizeAll fits every feature across the corpus and writes each
// entity's [0,1] vector. Fit and transform are pure; the snapshot is
// taken by value from the metrics maps.
func normalizeAll(idx *graph.Index, strategy normalize.Strategy) {
	entities := idx.AllEntities()
	raw := make(map[string][]float64)
	for _, e := range entities {
		for name, v := range e.Metrics {
			raw[name] = append(raw[name], v)
		}
	}
	corpus := normalize.NewCorpus(raw, nil, strategy)
	for _, e := range entities {
		e.Normalized = corpus.TransformAll(e.Metrics)
	}
}

// rankEntities applies the granularity filter then ranks to top-K.
func rankEntities(idx *graph.Index, cfg *config.Config) []RankedEntity {
	var candidates []*entity.Entity
	for _, e := range idx.AllEntities() {
		switch cfg.Granularity {
		case config.GranularityFile:
			if e.Kind == entity.KindFile {
				candidates = append(candidates, e)
			}
		default:
			if e.Kind == entity.KindFunction || e.Kind == entity.KindMethod {
				candidates = append(candidates, e)
			}
		}
	}

	weights := cfg.Weights
	if len(weights) == 0 {
		weights = config.DefaultWeights()
	}

	scored := rank.Rank(candidates, weights, cfg.TopK)
	out := make([]RankedEntity, len(scored))
	for i, s := range scored {
		features := make(map[string]float64)
		for name, w := range weights {
			if w > 0 {
				features[name] = s.Entity.Normalized[name]
			}
		}
		out[i] = RankedEntity{
			ID:       s.Entity.ID,
			Name:     s.Entity.Name,
			Kind:     s.Entity.Kind,
			Score:    s.Score,
			Features: features,
		}
	}
	return out
}

func packConfig(cfg *config.Config) pack.Config {
	pc := pack.DefaultConfig()
	pc.EnableClone = cfg.Packs.EnableClone
	pc.EnableCycle = cfg.Packs.EnableCycle
	pc.EnableChokepoint = cfg.Packs.EnableChokepoint
	pc.EnableCoverage = cfg.Packs.EnableCoverage
	pc.EnableStructure = cfg.Packs.EnableStructure
	pc.MaxPacks = cfg.Packs.MaxPacks
	pc.NonOverlap = cfg.Packs.NonOverlap
	if cfg.Packs.CentralitySamples > 0 {
		pc.CentralitySamples = cfg.Packs.CentralitySamples
	}
	pc.Clone.MinSimilarity = cfg.Packs.Clone.MinSimilarity
	pc.Clone.MinTotalLOC = cfg.Packs.Clone.MinTotalLOC
	pc.Clone.MaxParameters = cfg.Packs.Clone.MaxParameters
	pc.Structure.LargeFileLines = cfg.Structure.LargeFileLines
	pc.Structure.MaxFilesPerDir = cfg.Structure.MaxFilesPerDir
	return pc
}

// DefaultCoverageReportCandidates lists the well-known report locations a
// calling collaborator should probe, relative to the repository root.
func DefaultCoverageReportCandidates() []string {
	return []string{
		"coverage.json",
		".coverage",
		"coverage/coverage.json",
		"coverage/lcov.info",
		"coverage/cobertura.xml",
		"nyc_output/coverage-final.json",
		"htmlcov/coverage.json",
		"build/reports/jacoco/test/jacocoTestReport.xml",
	}
}
