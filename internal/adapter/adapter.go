// Package adapter defines the language-adapter contract: one adapter
// per language, each mapping a concrete syntax tree into a partial parse
// index. Adapters are tracked in a process-wide, init-once/read-many
// registry keyed by language tag.
package adapter

import (
	"sync"

	"github.com/sibyllinesoft/refactorlens/internal/errs"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// LanguageAdapter is the trait-like interface every per-language adapter
// implements. There is no inheritance hierarchy: the registry holds a flat,
// tagged-variant map keyed by language string.
type LanguageAdapter interface {
	// Language returns the adapter's language tag, e.g. "go", "python".
	Language() string

	// FileExtensions lists the extensions (with leading dot) this adapter
	// claims, e.g. [".go"].
	FileExtensions() []string

	// ParseIndex parses files and returns a partial index scoped to this
	// language. A per-file parse failure is recorded as an error-level
	// diagnostic and the file is skipped; the rest of the batch completes.
	ParseIndex(files []string) (*graph.Index, *errs.Diagnostics)
}

// AdapterStatus is the lifecycle record every adapter registers on
// construction: availability, supported features, initialization error, and
// a running diagnostic list. The core tolerates unavailable adapters.
type AdapterStatus struct {
	Language          string
	Available         bool
	FeaturesSupported []string
	InitError         error
	Diagnostics       []string
}

// registryEntry pairs a constructed adapter with its status snapshot.
type registryEntry struct {
	adapter LanguageAdapter
	status  AdapterStatus
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*registryEntry{}
)

// Register installs an adapter under its language tag, replacing any
// previous registration for that tag. Intended to be called once per
// language during process init (or explicit setup in cmd/refactorlens).
func Register(a LanguageAdapter, status AdapterStatus) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[a.Language()] = &registryEntry{adapter: a, status: status}
}

// Get returns the adapter registered for a language tag, if any.
func Get(language string) (LanguageAdapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[language]
	if !ok || !e.status.Available {
		return nil, false
	}
	return e.adapter, true
}

// Status returns the registered status for a language tag.
func Status(language string) (AdapterStatus, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[language]
	if !ok {
		return AdapterStatus{}, false
	}
	return e.status, true
}

// All returns every registered adapter's status, for observability output.
func All() []AdapterStatus {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]AdapterStatus, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.status)
	}
	return out
}

// ExtensionLanguage maps a file extension (with leading dot) to the
// language tag of whichever registered, available adapter claims it.
func ExtensionLanguage(ext string) (string, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for lang, e := range registry {
		if !e.status.Available {
			continue
		}
		for _, want := range e.adapter.FileExtensions() {
			if want == ext {
				return lang, true
			}
		}
	}
	return "", false
}
