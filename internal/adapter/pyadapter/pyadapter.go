// Package pyadapter parses Python source into the uniform entity model.
package pyadapter

import (
	"regexp"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/sibyllinesoft/refactorlens/internal/adapter"
	"github.com/sibyllinesoft/refactorlens/internal/entity"
)

// importPattern recognizes both "import a.b.c" and "from .a.b import c",
// with the relative-dots and dotted-module captured separately.
var importPattern = regexp.MustCompile(`^\s*(?:import|from)\s+(?P<rel>\.*)(?P<module>[\w.]*)`)

// New constructs the Python language adapter.
func New() *adapter.Base {
	return adapter.NewBase(adapter.LanguageSpec{
		Language:   "python",
		Extensions: []string{".py"},
		Grammar:    tree_sitter.NewLanguage(tree_sitter_python.Language()),
		NodeKinds: map[string]adapter.NodeSpec{
			"function_definition": {Kind: entity.KindFunction, IsContainer: true},
			"class_definition":    {Kind: entity.KindClass, IsContainer: true},
		},
		ImportLinePattern: importPattern,
		PackageInitBase:   "__init__",
	})
}
