package feature

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/errs"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// RunParallel extracts features for every entity across a worker pool. The
// parse index is frozen at this point; each entity's Metrics map is written
// by exactly one worker, so writes never race. Diagnostics are accumulated
// per worker and merged afterwards.
//
// Cancellation is polled between entities: once ctx is done, no new entity
// is picked up, in-flight entities finish, and RunParallel returns the
// context's error.
func RunParallel(ctx context.Context, extractors []Extractor, idx *graph.Index, diags *errs.Diagnostics, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	entities := idx.AllEntities()
	if len(entities) == 0 {
		return ctx.Err()
	}

	work := make(chan *entity.Entity)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			local := &errs.Diagnostics{}
			for e := range work {
				extractOne(extractors, e, idx, local)
			}
			mu.Lock()
			for _, d := range local.All() {
				diags.Add(d.Severity, d.Kind, d.FilePath, d.Message)
			}
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		defer close(work)
		for _, e := range entities {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case work <- e:
			}
		}
		return nil
	})

	return g.Wait()
}

func extractOne(extractors []Extractor, e *entity.Entity, idx *graph.Index, diags *errs.Diagnostics) {
	for _, ex := range extractors {
		if !ex.Supports(e.Kind) {
			continue
		}
		values, err := ex.Extract(e, idx)
		if err != nil {
			diags.Warning(errs.KindFeatureExtraction, e.Location.FilePath,
				errs.NewFeatureExtractionError(ex.Name(), "*", e.ID, err).Error())
			for _, f := range ex.Features() {
				e.Metrics[f.Name] = f.Default
			}
			continue
		}
		for _, f := range ex.Features() {
			if v, ok := values[f.Name]; ok {
				e.Metrics[f.Name] = clamp(v, f.Min, f.Max)
			} else {
				e.Metrics[f.Name] = f.Default
			}
		}
	}
}

// FillDefaults gives every entity a value for every registered feature,
// substituting the declared default where the supporting extractor never
// ran.
func FillDefaults(extractors []Extractor, idx *graph.Index) {
	features := AllFeatures(extractors)
	for _, e := range idx.AllEntities() {
		for _, f := range features {
			if _, ok := e.Metrics[f.Name]; !ok {
				e.Metrics[f.Name] = f.Default
			}
		}
	}
}
