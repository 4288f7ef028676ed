package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sibyllinesoft/refactorlens/internal/debug"
	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/errs"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// NodeSpec describes how one tree-sitter node kind maps onto an entity.
// IsContainer marks kinds whose children should be parented to the new
// entity rather than to its enclosing scope (classes, functions, modules).
type NodeSpec struct {
	Kind        entity.Kind
	IsContainer bool
}

// LanguageSpec is the per-language configuration the shared walker needs.
// Each concrete adapter (goadapter, pyadapter, tsadapter, rustadapter)
// builds one of these from its grammar package and hands it to Base.
type LanguageSpec struct {
	Language   string
	Extensions []string
	Grammar    *tree_sitter.Language

	// NodeKinds maps a tree-sitter node Kind() string to the entity it
	// produces. Node kinds absent from this map are walked through but
	// never materialized as entities.
	NodeKinds map[string]NodeSpec

	// ImportLinePattern matches one import statement per line (or
	// logical line) of raw source. Named capture groups recognized:
	// "rel" (leading dots, empty if absolute), "module" (dotted or
	// slashed module path).
	ImportLinePattern *regexp.Regexp

	// PackageInitBase is the filename stem (without extension) that
	// represents a package/module's implicit init file, e.g. "__init__"
	// for Python or "mod" for Rust. Empty if the language has none.
	PackageInitBase string
}

// Base is a tree-sitter-backed LanguageAdapter shared by every concrete
// language adapter. Entity extraction walks the tree directly with a
// node-Kind switch rather than tree-sitter's Query/capture machinery:
// map node-type tags to entity kinds, take names from the first
// identifier-typed child, signatures from the text before the body opener.
type Base struct {
	spec LanguageSpec
}

// NewBase constructs a Base adapter from a fully populated LanguageSpec.
func NewBase(spec LanguageSpec) *Base {
	return &Base{spec: spec}
}

func (b *Base) Language() string         { return b.spec.Language }
func (b *Base) FileExtensions() []string { return b.spec.Extensions }

// ParseIndex implements LanguageAdapter. One file's failure to parse is
// recorded as a diagnostic and skipped; the rest of the batch completes.
func (b *Base) ParseIndex(files []string) (*graph.Index, *errs.Diagnostics) {
	idx := graph.NewIndex()
	diags := &errs.Diagnostics{}

	var records []parsedFile

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			diags.Error(errs.KindParse, path, err.Error())
			continue
		}

		parser := tree_sitter.NewParser()
		if err := parser.SetLanguage(b.spec.Grammar); err != nil {
			diags.Error(errs.KindParse, path, fmt.Sprintf("set language: %v", err))
			continue
		}
		tree := parser.Parse(content, nil)
		if tree == nil {
			diags.Error(errs.KindParse, path, "parser returned no tree")
			continue
		}

		fileID := entity.ID(b.spec.Language, path, "")
		fileEnt := entity.New(fileID, filepath.Base(path), entity.KindFile,
			entity.Location{FilePath: path, StartLine: 1, EndLine: lineCount(content)}, b.spec.Language)
		fileEnt.RawText = string(content)
		idx.AddEntity(fileEnt)
		debug.LogParse("%s: parsed %s (%d bytes)", b.spec.Language, path, len(content))

		w := &walker{spec: b.spec, content: content, path: path, idx: idx}
		w.walk(tree.RootNode(), fileEnt)

		records = append(records, parsedFile{relPath: path, fileID: fileID, content: content, entities: w.created})
	}

	idx.RebuildCaches()
	b.resolveImports(idx, records)
	b.buildCallGraph(idx, records)
	idx.RebuildCaches()

	return idx, diags
}

type walker struct {
	spec    LanguageSpec
	content []byte
	path    string
	idx     *graph.Index
	created []*entity.Entity
}

// walk descends the tree; parent is the nearest enclosing entity (initially
// the file entity). Every node whose Kind() is in spec.NodeKinds becomes a
// child entity of parent; container kinds (class, function, module) become
// the parent for their own descendants.
func (w *walker) walk(node *tree_sitter.Node, parent *entity.Entity) {
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		spec, ok := w.spec.NodeKinds[child.Kind()]
		if !ok {
			w.walk(child, parent)
			continue
		}

		name := fieldText(child, "name", w.content)
		if name == "" {
			name = firstIdentifierText(child, w.content)
		}
		if name == "" {
			name = fmt.Sprintf("%s@%d", spec.Kind, child.StartPosition().Row+1)
		}

		qualified := name
		if parent.Kind != entity.KindFile {
			qualified = parent.QualifiedName() + "." + name
		}
		id := entity.ID(w.spec.Language, w.path, qualified)

		loc := entity.Location{
			FilePath:    w.path,
			StartLine:   int(child.StartPosition().Row) + 1,
			EndLine:     int(child.EndPosition().Row) + 1,
			StartColumn: int(child.StartPosition().Column) + 1,
			EndColumn:   int(child.EndPosition().Column) + 1,
		}
		e := entity.New(id, name, spec.Kind, loc, w.spec.Language)
		e.ParentID = parent.ID
		e.RawText = string(w.content[child.StartByte():child.EndByte()])
		e.Signature = signatureBeforeBody(child, w.content)
		e.Parameters = parameterNames(child, w.content)

		parent.Children = append(parent.Children, e.ID)
		w.idx.AddEntity(e)
		w.created = append(w.created, e)

		nextParent := parent
		if spec.IsContainer {
			nextParent = e
		}
		w.walk(child, nextParent)
	}
}

func fieldText(node *tree_sitter.Node, field string, content []byte) string {
	f := node.ChildByFieldName(field)
	if f == nil {
		return ""
	}
	return string(content[f.StartByte():f.EndByte()])
}

// firstIdentifierText finds the first identifier-typed descendant, the
// naming fallback when a node has no "name" field.
func firstIdentifierText(node *tree_sitter.Node, content []byte) string {
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier", "field_identifier", "type_identifier", "property_identifier":
			return string(content[c.StartByte():c.EndByte()])
		}
	}
	return ""
}

// signatureBeforeBody slices the textual span from the node's start up to
// the byte offset where its "body" field begins. Nodes without a
// body field (e.g. a plain variable) fall back to their full text.
func signatureBeforeBody(node *tree_sitter.Node, content []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return strings.TrimSpace(string(content[node.StartByte():node.EndByte()]))
	}
	return strings.TrimSpace(string(content[node.StartByte():body.StartByte()]))
}

// parameterNames reads identifier-typed children out of the node's
// "parameters" field.
func parameterNames(node *tree_sitter.Node, content []byte) []string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var names []string
	count := params.ChildCount()
	for i := uint(0); i < count; i++ {
		c := params.Child(i)
		if c == nil {
			continue
		}
		name := fieldText(c, "name", content)
		if name == "" {
			name = firstIdentifierText(c, content)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func lineCount(content []byte) int {
	n := 1
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	return n
}
