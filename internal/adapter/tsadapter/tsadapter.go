// Package tsadapter parses JavaScript and TypeScript source into the
// uniform entity model. It provides two adapters, one per language, each
// bound to its own grammar and extensions; they share the node-kind map and
// the import pattern.
package tsadapter

import (
	"regexp"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/sibyllinesoft/refactorlens/internal/adapter"
	"github.com/sibyllinesoft/refactorlens/internal/entity"
)

// importPattern recognizes ES module imports: "import ... from './a/b'" or
// "import ... from 'pkg'". A leading "./" or "../" marks a relative import.
var importPattern = regexp.MustCompile(`^\s*import\s+.*from\s+['"](?P<rel>\.{1,2}/)?(?P<module>[^'"]+)['"]`)

var nodeKinds = map[string]adapter.NodeSpec{
	"function_declaration":           {Kind: entity.KindFunction, IsContainer: true},
	"generator_function_declaration": {Kind: entity.KindFunction, IsContainer: true},
	"method_definition":              {Kind: entity.KindMethod, IsContainer: true},
	"class_declaration":              {Kind: entity.KindClass, IsContainer: true},
	"interface_declaration":          {Kind: entity.KindInterface, IsContainer: true},
	"enum_declaration":               {Kind: entity.KindEnum, IsContainer: true},
}

// NewJavaScript constructs the JavaScript variant of the adapter.
func NewJavaScript() *adapter.Base {
	return adapter.NewBase(adapter.LanguageSpec{
		Language:          "javascript",
		Extensions:        []string{".js", ".jsx"},
		Grammar:           tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		NodeKinds:         nodeKinds,
		ImportLinePattern: importPattern,
		PackageInitBase:   "index",
	})
}

// NewTypeScript constructs the TypeScript variant of the adapter.
func NewTypeScript() *adapter.Base {
	return adapter.NewBase(adapter.LanguageSpec{
		Language:          "typescript",
		Extensions:        []string{".ts", ".tsx"},
		Grammar:           tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		NodeKinds:         nodeKinds,
		ImportLinePattern: importPattern,
		PackageInitBase:   "index",
	})
}
