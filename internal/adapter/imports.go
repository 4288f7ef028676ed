package adapter

import (
	"path/filepath"
	"strings"

	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

type parsedFile struct {
	relPath  string
	fileID   string
	content  []byte
	entities []*entity.Entity
}

// resolveImports resolves each file's import statements to edges: relative
// imports resolve against the importer's directory and package-init
// convention; absolute imports try four strategies in order. A match with
// no candidate is silently dropped.
func (b *Base) resolveImports(idx *graph.Index, records []parsedFile) {
	if b.spec.ImportLinePattern == nil {
		return
	}

	allPaths := make([]string, 0, len(records))
	for _, r := range records {
		allPaths = append(allPaths, r.relPath)
	}

	relGroup := b.spec.ImportLinePattern.SubexpIndex("rel")
	modGroup := b.spec.ImportLinePattern.SubexpIndex("module")

	for _, r := range records {
		for _, line := range strings.Split(string(r.content), "\n") {
			m := b.spec.ImportLinePattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			module := ""
			if modGroup >= 0 {
				module = m[modGroup]
			}
			rel := ""
			if relGroup >= 0 {
				rel = m[relGroup]
			}
			if module == "" && rel == "" {
				continue
			}

			var target string
			if rel != "" {
				target = b.resolveRelativeImport(r.relPath, rel, module, allPaths)
			} else {
				target = b.resolveAbsoluteImport(module, allPaths)
			}
			if target == "" {
				continue
			}
			targetID := entity.ID(b.spec.Language, target, "")
			idx.ImportGraph.AddEdge(r.fileID, targetID)
		}
	}
}

// resolveRelativeImport strips leading dots, resolves against the
// importer's directory, and tries each of the adapter's extensions plus
// the package-init convention.
func (b *Base) resolveRelativeImport(importerPath, dots, module string, allPaths []string) string {
	dir := filepath.Dir(importerPath)
	up := strings.Count(dots, ".") - 1
	for i := 0; i < up; i++ {
		dir = filepath.Dir(dir)
	}
	modPath := strings.ReplaceAll(module, ".", "/")
	base := modPath
	if dir != "." {
		base = filepath.Join(dir, modPath)
	}

	for _, ext := range b.spec.Extensions {
		candidate := filepath.ToSlash(base + ext)
		if contains(allPaths, candidate) {
			return candidate
		}
	}
	if b.spec.PackageInitBase != "" {
		for _, ext := range b.spec.Extensions {
			candidate := filepath.ToSlash(filepath.Join(base, b.spec.PackageInitBase+ext))
			if contains(allPaths, candidate) {
				return candidate
			}
			candidate = filepath.ToSlash(filepath.Join(dir, b.spec.PackageInitBase+ext))
			if contains(allPaths, candidate) {
				return candidate
			}
		}
	}
	return ""
}

// resolveAbsoluteImport tries, in order: direct filename-stem match, full
// dotted-path-as-slash-path substring match, last-two-segments match,
// package-init match.
func (b *Base) resolveAbsoluteImport(module string, allPaths []string) string {
	segments := strings.Split(module, ".")
	stem := segments[len(segments)-1]

	// 1. direct filename stem match
	for _, p := range allPaths {
		if fileStem(p) == stem {
			return p
		}
	}

	// 2. full dotted path -> slash path substring match
	slashPath := strings.ReplaceAll(module, ".", "/")
	for _, p := range allPaths {
		if strings.Contains(filepath.ToSlash(p), slashPath) {
			return p
		}
	}

	// 3. last-two-segments path match
	if len(segments) >= 2 {
		lastTwo := strings.Join(segments[len(segments)-2:], "/")
		for _, p := range allPaths {
			if strings.Contains(filepath.ToSlash(p), lastTwo) {
				return p
			}
		}
	}

	// 4. package-init match
	if b.spec.PackageInitBase != "" {
		for _, ext := range b.spec.Extensions {
			want := filepath.ToSlash(filepath.Join(slashPath, b.spec.PackageInitBase+ext))
			for _, p := range allPaths {
				if strings.HasSuffix(filepath.ToSlash(p), want) {
					return p
				}
			}
		}
	}
	return ""
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

// buildCallGraph builds the best-effort call graph: for each
// function/method entity, scan its raw text for bareword "name(" and
// dotted ".name(" calls against every other known function/method name.
// Self-edges are suppressed unless the call text re-appears after the
// first line of the entity's own text, its definition line (the recursion
// heuristic).
func (b *Base) buildCallGraph(idx *graph.Index, records []parsedFile) {
	var callables []*entity.Entity
	for _, r := range records {
		for _, e := range r.entities {
			if e.Kind == entity.KindFunction || e.Kind == entity.KindMethod {
				callables = append(callables, e)
			}
		}
	}
	if len(callables) == 0 {
		return
	}

	for _, caller := range callables {
		for _, callee := range callables {
			bare := callee.Name + "("
			dotted := "." + callee.Name + "("
			if !strings.Contains(caller.RawText, bare) && !strings.Contains(caller.RawText, dotted) {
				continue
			}
			if caller.ID == callee.ID {
				firstNewline := strings.IndexByte(caller.RawText, '\n')
				if firstNewline < 0 {
					continue
				}
				body := caller.RawText[firstNewline:]
				if !strings.Contains(body, bare) && !strings.Contains(body, dotted) {
					continue
				}
			}
			idx.CallGraph.AddEdge(caller.ID, callee.ID)
		}
	}
}
