// Package goadapter parses Go source into the uniform entity model.
package goadapter

import (
	"regexp"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/sibyllinesoft/refactorlens/internal/adapter"
	"github.com/sibyllinesoft/refactorlens/internal/entity"
)

// importPattern recognizes one import-spec line inside or outside an
// import(...) block: optional alias, then a quoted path.
var importPattern = regexp.MustCompile(`^\s*(?:\w+\s+)?"(?P<module>[^"]+)"\s*$`)

// New constructs the Go language adapter.
func New() *adapter.Base {
	return adapter.NewBase(adapter.LanguageSpec{
		Language:   "go",
		Extensions: []string{".go"},
		Grammar:    tree_sitter.NewLanguage(tree_sitter_go.Language()),
		NodeKinds: map[string]adapter.NodeSpec{
			"function_declaration": {Kind: entity.KindFunction, IsContainer: true},
			"method_declaration":   {Kind: entity.KindMethod, IsContainer: true},
			"func_literal":         {Kind: entity.KindFunction, IsContainer: true},
			"type_spec":            {Kind: entity.KindStruct, IsContainer: true},
		},
		ImportLinePattern: importPattern,
		PackageInitBase:   "",
	})
}
