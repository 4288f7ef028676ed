// Package rustadapter parses Rust source into the uniform entity model.
package rustadapter

import (
	"regexp"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/sibyllinesoft/refactorlens/internal/adapter"
	"github.com/sibyllinesoft/refactorlens/internal/entity"
)

// importPattern recognizes "use crate::a::b;" / "use super::a;" /
// "use self::a;" / "use a::b::c;", treating "self"/"super" prefixes as
// relative markers the same way leading dots are for Python.
var importPattern = regexp.MustCompile(`^\s*use\s+(?P<rel>self::|super::)?(?P<module>[\w:]+)`)

// New constructs the Rust language adapter.
func New() *adapter.Base {
	return adapter.NewBase(adapter.LanguageSpec{
		Language:   "rust",
		Extensions: []string{".rs"},
		Grammar:    tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		NodeKinds: map[string]adapter.NodeSpec{
			"function_item": {Kind: entity.KindFunction, IsContainer: true},
			"struct_item":   {Kind: entity.KindStruct, IsContainer: true},
			"enum_item":     {Kind: entity.KindEnum, IsContainer: true},
			"trait_item":    {Kind: entity.KindTrait, IsContainer: true},
			"impl_item":     {Kind: entity.KindClass, IsContainer: true},
			"mod_item":      {Kind: entity.KindModule, IsContainer: true},
		},
		ImportLinePattern: importPattern,
		PackageInitBase:   "mod",
	})
}
