// Package discover implements file discovery: enumerate candidate
// source files from root paths, respecting include/exclude globs and the
// enabled-language set, grouped by language via extension lookup.
package discover

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sibyllinesoft/refactorlens/internal/adapter"
	"github.com/sibyllinesoft/refactorlens/internal/debug"
	"github.com/sibyllinesoft/refactorlens/internal/errs"
)

// Options configures one discovery run.
type Options struct {
	Roots     []string
	Include   []string
	Exclude   []string
	Languages []string // empty means "every registered language"
}

// Result is the discovered file set, grouped by language tag.
type Result struct {
	ByLanguage map[string][]string
	Total      int
}

// Discover enumerates files under Roots, applying include/exclude globs
// and the language filter, and honoring .gitignore files found along the
// way. Returns ConfigError if no root is given or any root does not exist;
// when no file matches it records a non-fatal NoFilesFound warning in diags.
func Discover(opts Options, diags *errs.Diagnostics) (*Result, error) {
	if len(opts.Roots) == 0 {
		return nil, errs.NewConfigError("roots", "", errOneOf("at least one root path is required"))
	}
	for _, root := range opts.Roots {
		if _, err := os.Stat(root); err != nil {
			return nil, errs.NewConfigError("roots", root, err)
		}
	}

	wanted := make(map[string]bool, len(opts.Languages))
	for _, l := range opts.Languages {
		wanted[l] = true
	}

	ignorer := newGitignoreSet(opts.Roots)

	result := &Result{ByLanguage: make(map[string][]string)}
	seen := make(map[string]bool)

	for _, root := range opts.Roots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				diags.Warning(errs.KindConfig, path, err.Error())
				return nil
			}
			if info.IsDir() {
				if ignorer.ignoresDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if seen[path] {
				return nil
			}
			if ignorer.ignoresFile(path) {
				return nil
			}
			if !matchesGlobs(path, opts.Include, opts.Exclude) {
				return nil
			}
			ext := filepath.Ext(path)
			lang, ok := adapter.ExtensionLanguage(ext)
			if !ok {
				return nil
			}
			if len(wanted) > 0 && !wanted[lang] {
				return nil
			}
			seen[path] = true
			result.ByLanguage[lang] = append(result.ByLanguage[lang], path)
			result.Total++
			return nil
		})
		if err != nil {
			diags.Error(errs.KindConfig, root, err.Error())
		}
	}

	for lang := range result.ByLanguage {
		sort.Strings(result.ByLanguage[lang])
	}

	if result.Total == 0 {
		diags.Warning(errs.KindConfig, "", "NoFilesFound: discovery matched zero files")
	}
	debug.LogDiscover("discovered %d files across %d languages", result.Total, len(result.ByLanguage))

	return result, nil
}

// matchesGlobs reports whether path should be included: it must match an
// include pattern (or include is empty, meaning "match everything") and
// must not match any exclude pattern.
func matchesGlobs(path string, include, exclude []string) bool {
	slash := filepath.ToSlash(path)
	if len(include) > 0 {
		matched := false
		for _, pat := range include {
			if ok, _ := doublestar.Match(pat, slash); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pat := range exclude {
		if ok, _ := doublestar.Match(pat, slash); ok {
			return false
		}
	}
	return true
}

type configErr struct{ msg string }

func (e configErr) Error() string { return e.msg }

func errOneOf(msg string) error { return configErr{msg: msg} }
