// Package entity defines the uniform code-unit representation every
// language adapter parses into and every extractor scores.
package entity

import "strings"

// Kind is the closed set of entity kinds the pipeline recognizes.
type Kind string

const (
	KindFile      Kind = "file"
	KindModule    Kind = "module"
	KindClass     Kind = "class"
	KindMethod    Kind = "method"
	KindFunction  Kind = "function"
	KindProperty  Kind = "property"
	KindVariable  Kind = "variable"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindStruct    Kind = "struct"
	KindTrait     Kind = "trait"
)

// Location is a source span: file path plus 1-based inclusive line/column
// bounds.
type Location struct {
	FilePath    string
	StartLine   int
	EndLine     int
	StartColumn int
	EndColumn   int
}

// LineCount returns the number of lines spanned by the location.
func (l Location) LineCount() int {
	return l.EndLine - l.StartLine + 1
}

// Contains reports whether l fully contains other: same file, and other's
// bounds dominated on both ends (line first, column as tiebreak).
func (l Location) Contains(other Location) bool {
	if l.FilePath != other.FilePath {
		return false
	}
	if l.StartLine > other.StartLine || l.EndLine < other.EndLine {
		return false
	}
	startOK := l.StartLine < other.StartLine || l.StartColumn <= other.StartColumn
	endOK := l.EndLine > other.EndLine || l.EndColumn >= other.EndColumn
	return startOK && endOK
}

// ID builds the normative identifier <lang>://<relative-path>::<qualified-name>.
// File entities omit the "::<qualified-name>" suffix.
func ID(language, relPath, qualifiedName string) string {
	if qualifiedName == "" {
		return language + "://" + relPath
	}
	return language + "://" + relPath + "::" + qualifiedName
}

// Entity is a single scored code unit: file, class, function, ...
type Entity struct {
	ID       string
	Name     string
	Kind     Kind
	Location Location
	Language string

	ParentID string
	Children []string

	RawText    string
	Signature  string
	Docstring  string
	Parameters []string
	ReturnType string
	Fields     []string
	Imports    []string

	// Metrics is the mutable key->value map feature extractors populate.
	// Every extractor writes only the keys it owns.
	Metrics map[string]float64

	// Normalized holds the post-normalization [0,1] values, keyed the same
	// way as Metrics. Populated by the normalizer, read by the ranker.
	Normalized map[string]float64
}

// New creates an Entity with its metric maps initialized.
func New(id, name string, kind Kind, loc Location, language string) *Entity {
	return &Entity{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Location: loc,
		Language: language,
		Metrics:  make(map[string]float64),
	}
}

// LOC returns lines of code spanned by the entity.
func (e *Entity) LOC() int {
	return e.Location.LineCount()
}

// QualifiedName extracts the name portion after "::" in the id, falling
// back to Name for file entities (which carry no "::" suffix).
func (e *Entity) QualifiedName() string {
	if idx := strings.Index(e.ID, "::"); idx >= 0 {
		return e.ID[idx+2:]
	}
	return e.Name
}

// IsPublic applies a simple visibility heuristic: a name that doesn't
// start with an underscore is considered public/exported.
func IsPublic(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}
