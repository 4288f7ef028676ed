// Package zigadapter parses Zig source into the uniform entity model,
// using the community tree-sitter grammar.
package zigadapter

import (
	"regexp"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sibyllinesoft/refactorlens/internal/adapter"
	"github.com/sibyllinesoft/refactorlens/internal/entity"
)

// importPattern recognizes @import("std") and @import("util.zig"); the
// trailing ".zig" is stripped so stem matching resolves sibling files.
var importPattern = regexp.MustCompile(`@import\("(?P<module>[^"]+?)(?:\.zig)?"\)`)

// New constructs the Zig language adapter.
func New() *adapter.Base {
	return adapter.NewBase(adapter.LanguageSpec{
		Language:   "zig",
		Extensions: []string{".zig"},
		Grammar:    tree_sitter.NewLanguage(tree_sitter_zig.Language()),
		NodeKinds: map[string]adapter.NodeSpec{
			"function_declaration": {Kind: entity.KindFunction, IsContainer: true},
			"struct_declaration":   {Kind: entity.KindStruct, IsContainer: true},
			"union_declaration":    {Kind: entity.KindStruct, IsContainer: true},
			"enum_declaration":     {Kind: entity.KindEnum, IsContainer: true},
			"test_declaration":     {Kind: entity.KindFunction, IsContainer: true},
		},
		ImportLinePattern: importPattern,
		PackageInitBase:   "",
	})
}
