package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sibyllinesoft/refactorlens/internal/adapter"
	"github.com/sibyllinesoft/refactorlens/internal/errs"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

type stubAdapter struct {
	lang string
	exts []string
}

func (s *stubAdapter) Language() string         { return s.lang }
func (s *stubAdapter) FileExtensions() []string { return s.exts }
func (s *stubAdapter) ParseIndex([]string) (*graph.Index, *errs.Diagnostics) {
	return graph.NewIndex(), &errs.Diagnostics{}
}

func writeFile(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func registerStub(lang string, exts ...string) {
	adapter.Register(&stubAdapter{lang: lang, exts: exts},
		adapter.AdapterStatus{Language: lang, Available: true})
}

func TestDiscover_GroupsByLanguage(t *testing.T) {
	registerStub("pystub", ".pys")
	registerStub("tsstub", ".tss")

	root := t.TempDir()
	writeFile(t, root, "a.pys")
	writeFile(t, root, "sub/b.pys")
	writeFile(t, root, "c.tss")
	writeFile(t, root, "ignored.txt")

	diags := &errs.Diagnostics{}
	result, err := Discover(Options{Roots: []string{root}}, diags)
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 3 {
		t.Fatalf("expected 3 files, got %d", result.Total)
	}
	if len(result.ByLanguage["pystub"]) != 2 || len(result.ByLanguage["tsstub"]) != 1 {
		t.Fatalf("unexpected grouping: %v", result.ByLanguage)
	}
}

func TestDiscover_ExcludeGlobWins(t *testing.T) {
	registerStub("pystub", ".pys")

	root := t.TempDir()
	writeFile(t, root, "keep.pys")
	writeFile(t, root, "vendor/skip.pys")

	diags := &errs.Diagnostics{}
	result, err := Discover(Options{
		Roots:   []string{root},
		Exclude: []string{"**/vendor/**"},
	}, diags)
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 1 {
		t.Fatalf("expected vendor file excluded, got %d files", result.Total)
	}
}

func TestDiscover_LanguageFilter(t *testing.T) {
	registerStub("pystub", ".pys")
	registerStub("tsstub", ".tss")

	root := t.TempDir()
	writeFile(t, root, "a.pys")
	writeFile(t, root, "b.tss")

	diags := &errs.Diagnostics{}
	result, err := Discover(Options{Roots: []string{root}, Languages: []string{"pystub"}}, diags)
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 1 || len(result.ByLanguage["tsstub"]) != 0 {
		t.Fatalf("language filter leaked: %v", result.ByLanguage)
	}
}

func TestDiscover_GitignoreHonored(t *testing.T) {
	registerStub("pystub", ".pys")

	root := t.TempDir()
	writeFile(t, root, "keep.pys")
	writeFile(t, root, "build/generated.pys")
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	diags := &errs.Diagnostics{}
	result, err := Discover(Options{Roots: []string{root}}, diags)
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 1 {
		t.Fatalf("expected gitignored build/ skipped, got %d files", result.Total)
	}
}

func TestDiscover_MissingRootIsConfigError(t *testing.T) {
	diags := &errs.Diagnostics{}
	_, err := Discover(Options{Roots: []string{"/no/such/root"}}, diags)
	if err == nil {
		t.Fatal("expected ConfigError for missing root")
	}
}

func TestDiscover_EmptyResultWarnsNoFilesFound(t *testing.T) {
	registerStub("pystub", ".pys")

	diags := &errs.Diagnostics{}
	result, err := Discover(Options{Roots: []string{t.TempDir()}}, diags)
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 0 {
		t.Fatalf("expected empty result, got %d", result.Total)
	}
	warned := false
	for _, d := range diags.All() {
		if d.Severity == errs.SeverityWarning {
			warned = true
		}
	}
	if !warned {
		t.Fatal("expected NoFilesFound warning")
	}
}
